package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/ragchat/internal/documents"
	"github.com/diogo/ragchat/internal/history"
	"github.com/diogo/ragchat/internal/render"
)

func newHistoryCmd(deps *Dependencies) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse saved chat transcripts",
		Long: `Chats saved with Ctrl+S in the interface or with 'ask --save'.

References accepted by show, export and delete:
  @last          Most recent conversation
  1, 2, 3        Position in 'history list'
  3f2a...        ID or unique ID prefix
  "text"         Title substring`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved conversations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := deps.OpenHistory()
			if err != nil {
				return err
			}
			return runHistoryList(deps, store)
		},
	}

	var raw bool
	showCmd := &cobra.Command{
		Use:   "show <ref>",
		Short: "Print a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := resolveConversation(deps, args[0])
			if err != nil {
				return err
			}
			text := history.Markdown(conv)
			if !raw && isTerminal(deps.Stdout) {
				rendered, err := render.Markdown(text, render.OptionsFromConfig(deps.Config.Markdown, terminalWidth(deps.Stdout)-4))
				if err == nil {
					text = rendered
				}
			}
			fmt.Fprintln(deps.Stdout, strings.TrimRight(text, "\n"))
			return nil
		},
	}
	showCmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without rendering")

	var format, output string
	exportCmd := &cobra.Command{
		Use:   "export <ref>",
		Short: "Export a saved conversation as markdown or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := history.ParseFormat(format)
			if err != nil {
				return err
			}
			conv, err := resolveConversation(deps, args[0])
			if err != nil {
				return err
			}
			data, err := history.Export(conv, f)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprintln(deps.Stdout, strings.TrimRight(string(data), "\n"))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintln(deps.Stderr, successLine(fmt.Sprintf("Exported to %s", output)))
			return nil
		},
	}
	exportCmd.Flags().StringVar(&format, "format", "markdown", "Export format (markdown, json)")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	deleteCmd := &cobra.Command{
		Use:   "delete <ref>",
		Short: "Delete a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := deps.OpenHistory()
			if err != nil {
				return err
			}
			conv, err := store.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := store.Delete(conv.ID); err != nil {
				return err
			}
			fmt.Fprintln(deps.Stdout, successLine(fmt.Sprintf("Deleted \"%s\"", conv.Title)))
			return nil
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := deps.OpenHistory()
			if err != nil {
				return err
			}
			if !yes && !confirm(deps.Stdin, deps.Stderr, "Delete every saved conversation?") {
				fmt.Fprintln(deps.Stderr, "Cancelled.")
				return nil
			}
			n, err := store.ClearAll()
			if err != nil {
				return err
			}
			fmt.Fprintln(deps.Stdout, successLine(fmt.Sprintf("Deleted %d conversation(s)", n)))
			return nil
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	historyCmd.AddCommand(listCmd, showCmd, exportCmd, deleteCmd, clearCmd)
	return historyCmd
}

func runHistoryList(deps *Dependencies, store *history.Store) error {
	convs, err := store.List()
	if err != nil {
		return err
	}
	if len(convs) == 0 {
		fmt.Fprintln(deps.Stdout, "No saved conversations.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tID\tTITLE\tMODEL\tMESSAGES\tSAVED")
	for i, c := range convs {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
			i+1, shortID(c.ID), truncate(c.Title, 40), c.Model, len(c.Messages), documents.FormatDate(c.CreatedAt))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	deps.verbosef("History directory: %s", store.Dir())
	return nil
}

func resolveConversation(deps *Dependencies, ref string) (*history.Conversation, error) {
	store, err := deps.OpenHistory()
	if err != nil {
		return nil, err
	}
	return store.Resolve(ref)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
