package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/ragchat/internal/documents"
	apierrors "github.com/diogo/ragchat/internal/errors"
)

func newDocsCmd(deps *Dependencies) *cobra.Command {
	docsCmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage documents on the gateway",
		Long:  `Upload, list and clear the documents the gateway answers from.`,
	}

	uploadCmd := &cobra.Command{
		Use:   "upload <file|glob>...",
		Short: "Upload .txt, .pdf or .md documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocsUpload(cmd, deps, args)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List documents known to the gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocsList(cmd, deps)
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every document on the gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocsClear(cmd, deps, yes)
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	docsCmd.AddCommand(uploadCmd, listCmd, clearCmd)
	return docsCmd
}

func runDocsUpload(cmd *cobra.Command, deps *Dependencies, patterns []string) error {
	if !deps.Credentials.HasCredential() {
		return fmt.Errorf("%w: run 'ragchat key set' first", apierrors.ErrNoCredential)
	}

	paths, err := documents.ExpandPaths(patterns)
	if err != nil {
		return err
	}
	deps.verbosef("Uploading %d file(s)", len(paths))

	uploader := documents.NewUploader(deps.Client)
	spin := startSpinner(deps.Stderr, fmt.Sprintf("Uploading %d file(s)", len(paths)))
	results, err := uploader.UploadFiles(cmd.Context(), paths, deps.Credentials.Value())
	if spin != nil {
		spin.halt()
	}
	if err != nil {
		return err
	}

	uploaded := 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintln(deps.Stderr, failureLine(r.Err.Error()))
			continue
		}
		uploaded++
		doc := r.Document
		line := fmt.Sprintf("%s (%s", doc.Name, documents.FormatSize(doc.Size))
		if doc.Chunks > 0 {
			line += fmt.Sprintf(", %d chunks", doc.Chunks)
		}
		fmt.Fprintln(deps.Stdout, successLine(line+")"))
		deps.verbosef("%s: %s", doc.Name, truncate(doc.Content, 80))
	}

	fmt.Fprintf(deps.Stdout, "Uploaded %d of %d document(s)\n", uploaded, len(results))
	if uploaded == 0 {
		return fmt.Errorf("no documents were uploaded")
	}
	return nil
}

func runDocsList(cmd *cobra.Command, deps *Dependencies) error {
	list, err := deps.Client.ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(list.Documents) == 0 {
		fmt.Fprintln(deps.Stdout, "No documents yet.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tNAME")
	_, _ = fmt.Fprintln(w, "-\t----")
	for i, name := range list.Documents {
		_, _ = fmt.Fprintf(w, "%d\t%s\n", i+1, name)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	total := list.Total
	if total < len(list.Documents) {
		total = len(list.Documents)
	}
	fmt.Fprintf(deps.Stdout, "\n%d document(s)\n", total)
	return nil
}

func runDocsClear(cmd *cobra.Command, deps *Dependencies, yes bool) error {
	if !yes && !confirm(deps.Stdin, deps.Stderr, "Delete every document on the gateway?") {
		fmt.Fprintln(deps.Stderr, "Cancelled.")
		return nil
	}

	message, err := deps.Client.ClearDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}
	if message == "" {
		message = "Documents cleared"
	}
	fmt.Fprintln(deps.Stdout, successLine(message))
	return nil
}
