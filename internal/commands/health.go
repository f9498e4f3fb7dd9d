package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the gateway is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			spin := startSpinner(deps.Stderr, "Checking gateway")
			status, err := deps.Client.Health(cmd.Context())
			if spin != nil {
				if err != nil {
					spin.halt()
				} else {
					spin.stopWithSuccess(fmt.Sprintf("Gateway answered in %s", time.Since(started).Round(time.Millisecond)))
				}
			}
			if err != nil {
				fmt.Fprintln(deps.Stdout, failureLine("Gateway unreachable at "+deps.Client.BaseURL()))
				return err
			}

			docs := "no"
			if status.HasDocuments {
				docs = "yes"
			}
			fmt.Fprintln(deps.Stdout, successLine("Gateway is up"))
			fmt.Fprintf(deps.Stdout, "  URL:       %s\n", deps.Client.BaseURL())
			fmt.Fprintf(deps.Stdout, "  Status:    %s\n", status.Status)
			fmt.Fprintf(deps.Stdout, "  Documents: %s\n", docs)
			return nil
		},
	}
}
