// Package commands provides CLI commands for ragchat.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/diogo/ragchat/internal/tui"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ragchat",
		Short: "Terminal client for a RAG chat gateway",
		Long: `ragchat talks to an LLM gateway that answers questions, optionally
grounded in documents you upload. Without a subcommand it opens the
interactive interface with Chat, Documents and Settings tabs.

Examples:
  ragchat                               Open the interactive interface
  ragchat key set                       Store your OpenAI API key
  ragchat ask "What is Go?"             Stream a single answer
  cat notes.md | ragchat ask            Read the question from stdin
  ragchat docs upload ./papers/*.pdf    Upload documents
  ragchat rag query "Summarize" --k 6   Ask about uploaded documents
  ragchat history export @last          Print the last saved chat as markdown`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return deps.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			deps.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "ragchat %s (built %s)\n", Version, BuildTime)
				return nil
			}
			store, err := deps.OpenHistory()
			if err != nil {
				fmt.Fprintln(deps.Stderr, warningLine(fmt.Sprintf("History disabled: %v", err)))
				store = nil
			}
			return deps.RunTUI(tui.Deps{
				Client:      deps.Client,
				Credentials: deps.Credentials,
				Config:      *deps.Config,
				Clipboard:   deps.Clipboard,
				SaveConfig:  deps.SaveConfig,
				History:     store,
			})
		},
	}

	rootCmd.SetIn(deps.Stdin)
	rootCmd.SetOut(deps.Stdout)
	rootCmd.SetErr(deps.Stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&deps.APIURL, "api-url", "", "Gateway base URL (overrides config and RAGCHAT_API_URL)")
	flags.StringVarP(&deps.Model, "model", "m", "", "Model to use (gpt-4.1-mini, gpt-4, gpt-3.5-turbo)")
	flags.BoolVar(&deps.Verbose, "verbose", false, "Print diagnostic output to stderr")
	flags.BoolVar(&deps.NoPersist, "no-persist", false, "Keep the API key in memory only")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(
		newAskCmd(deps),
		newDocsCmd(deps),
		newRAGCmd(deps),
		newKeyCmd(deps),
		newHealthCmd(deps),
		newConfigCmd(deps),
		newHistoryCmd(deps),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := NewRootCmd(NewDependencies()).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, tui.FormatError(err))
		os.Exit(1)
	}
}
