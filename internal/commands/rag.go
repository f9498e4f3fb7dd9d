package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apierrors "github.com/diogo/ragchat/internal/errors"
	"github.com/diogo/ragchat/internal/models"
	"github.com/diogo/ragchat/internal/render"
)

type ragOptions struct {
	k     int
	style string
	raw   bool
}

func newRAGCmd(deps *Dependencies) *cobra.Command {
	ragCmd := &cobra.Command{
		Use:   "rag",
		Short: "Query uploaded documents",
	}

	var opts ragOptions
	queryCmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Answer a question from the uploaded documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRAGQuery(cmd, deps, strings.Join(args, " "), opts)
		},
	}
	queryCmd.Flags().IntVarP(&opts.k, "k", "k", models.DefaultRAGK, "Number of context chunks to retrieve")
	queryCmd.Flags().StringVar(&opts.style, "style", models.DefaultRAGResponseStyle, "Response style (e.g. detailed, concise)")
	queryCmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the answer without markdown rendering")

	ragCmd.AddCommand(queryCmd)
	return ragCmd
}

func runRAGQuery(cmd *cobra.Command, deps *Dependencies, question string, opts ragOptions) error {
	if !deps.Credentials.HasCredential() {
		return fmt.Errorf("%w: run 'ragchat key set' first", apierrors.ErrNoCredential)
	}
	if opts.k <= 0 {
		return apierrors.NewValidationError("k", "must be a positive number")
	}

	spin := startSpinner(deps.Stderr, "Searching documents")
	answer, err := deps.Client.RAGQuery(cmd.Context(), models.RAGQuery{
		Query:         question,
		APIKey:        deps.Credentials.Value(),
		K:             opts.k,
		ResponseStyle: opts.style,
	})
	if spin != nil {
		spin.halt()
	}
	if err != nil {
		return err
	}

	text := answer.Answer
	if !opts.raw && isTerminal(deps.Stdout) {
		rendered, err := render.Markdown(text, render.OptionsFromConfig(deps.Config.Markdown, terminalWidth(deps.Stdout)-4))
		if err == nil {
			text = strings.TrimRight(rendered, "\n")
		}
	}
	fmt.Fprintln(deps.Stdout, text)

	fmt.Fprintln(deps.Stderr, dimLine(fmt.Sprintf("\n%d context(s) used", answer.ContextCount)))
	if len(answer.SimilarityScores) > 0 {
		deps.verbosef("Similarity scores: %s", strings.Join(answer.SimilarityScores, ", "))
	}
	for i, c := range answer.Contexts {
		deps.verbosef("Context %d (%.3f): %s", i+1, c.Score, truncate(strings.Join(strings.Fields(c.Content), " "), 100))
	}
	return nil
}
