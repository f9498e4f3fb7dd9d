package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/ragchat/internal/credential"
)

func newKeyCmd(deps *Dependencies) *cobra.Command {
	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the OpenAI API key",
		Long: `Store, check and remove the API key sent with every gateway request.
The key is kept in ~/.ragchat/credential.json or the OS keyring,
depending on the credential_store setting.`,
	}

	var skipValidate bool
	setCmd := &cobra.Command{
		Use:   "set [key]",
		Short: "Store an API key (prompts when no key is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := ""
			if len(args) > 0 {
				value = args[0]
			} else {
				v, err := deps.ReadSecret("OpenAI API key: ")
				if err != nil {
					return err
				}
				value = v
			}

			if err := deps.Credentials.Save(value); err != nil {
				return err
			}
			fmt.Fprintln(deps.Stdout, successLine("API key saved"))

			if skipValidate {
				return nil
			}
			return reportValidation(cmd, deps, deps.Credentials.Value())
		},
	}
	setCmd.Flags().BoolVar(&skipValidate, "no-validate", false, "Save without checking the key")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.Credentials.Clear(); err != nil {
				return fmt.Errorf("failed to clear API key: %w", err)
			}
			fmt.Fprintln(deps.Stdout, successLine("API key cleared"))
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether an API key is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !deps.Credentials.HasCredential() {
				fmt.Fprintln(deps.Stdout, failureLine("Not Connected"))
				fmt.Fprintln(deps.Stdout, dimLine("  Run 'ragchat key set' to store your API key"))
				return nil
			}
			fmt.Fprintln(deps.Stdout, successLine("Connected"))
			fmt.Fprintf(deps.Stdout, "  Key:   %s\n", maskKey(deps.Credentials.Value()))
			store := deps.Config.CredentialStore
			if deps.NoPersist {
				store = "memory"
			}
			fmt.Fprintf(deps.Stdout, "  Store: %s\n", store)
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate [key]",
		Short: "Check a key against the gateway without saving it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := deps.Credentials.Value()
			if len(args) > 0 {
				value = args[0]
			}
			return reportValidation(cmd, deps, value)
		},
	}

	keyCmd.AddCommand(setCmd, clearCmd, statusCmd, validateCmd)
	return keyCmd
}

// reportValidation probes value and prints the outcome. Anything but a
// valid key is returned as an error so the exit status reflects it.
func reportValidation(cmd *cobra.Command, deps *Dependencies, value string) error {
	spin := startSpinner(deps.Stderr, "Validating API key")
	status := deps.Credentials.Validate(cmd.Context(), value)
	if spin != nil {
		spin.halt()
	}
	deps.verbosef("Validation status: %s", status)

	if status == credential.StatusValid {
		fmt.Fprintln(deps.Stdout, successLine(status.Message()))
		return nil
	}
	fmt.Fprintln(deps.Stdout, failureLine(status.Message()))
	return fmt.Errorf("API key validation failed: %s", status)
}
