package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/ragchat/internal/chat"
	apierrors "github.com/diogo/ragchat/internal/errors"
	"github.com/diogo/ragchat/internal/models"
)

type askOptions struct {
	file   string
	output string
	system string
	copy   bool
	save   bool
}

func newAskCmd(deps *Dependencies) *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Ask a single question and stream the answer",
		Long: `Send one message to the gateway and stream the answer to stdout.
The prompt comes from the argument, from -f, or from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(deps.Stdin, opts.file, args)
			if err != nil {
				return err
			}
			return runAsk(cmd.Context(), deps, prompt, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read prompt from file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save the answer to a file instead of printing it")
	cmd.Flags().StringVar(&opts.system, "system", "", "System (developer) message for this request")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the answer to the clipboard")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Save the exchange to history")
	return cmd
}

// readPrompt picks the prompt from a file, the argument or piped stdin
func readPrompt(stdin io.Reader, file string, args []string) (string, error) {
	var prompt string
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		prompt = string(data)
	case len(args) > 0:
		prompt = args[0]
	case stdin != nil && !isTerminal(stdin):
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		prompt = string(data)
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", apierrors.NewEmptyInputError("prompt")
	}
	return prompt, nil
}

func runAsk(ctx context.Context, deps *Dependencies, prompt string, opts askOptions) error {
	if !deps.Credentials.HasCredential() {
		return fmt.Errorf("%w: run 'ragchat key set' first", apierrors.ErrNoCredential)
	}

	developer := opts.system
	if developer == "" {
		developer = deps.Config.DeveloperMessage
	}
	if strings.TrimSpace(developer) == "" {
		developer = models.DefaultDeveloperMessage
	}

	model := models.ModelFromName(deps.Config.DefaultModel)
	req := models.ChatRequest{
		DeveloperMessage: developer,
		UserMessage:      prompt,
		Model:            model.Name,
		APIKey:           deps.Credentials.Value(),
	}

	transcript := chat.NewTranscript()
	id, err := transcript.Begin(prompt)
	if err != nil {
		return err
	}
	deps.verbosef("Exchange %s with %s", id, model.Name)

	toStdout := opts.output == ""
	spin := startSpinner(deps.Stderr, "Waiting for "+model.Label)

	var streamErr error
	start := time.Now()
	for ev := range chat.Stream(ctx, deps.Client, id, req) {
		if spin != nil {
			spin.halt()
			spin = nil
		}
		transcript.Apply(ev)
		if ev.Err != nil {
			streamErr = ev.Err
		}
		if toStdout && ev.Chunk != "" {
			fmt.Fprint(deps.Stdout, ev.Chunk)
		}
	}
	if spin != nil {
		spin.halt()
	}
	deps.verbosef("Request took %s", time.Since(start).Round(time.Millisecond))

	answer, _ := transcript.LastAnswer()
	if toStdout && answer != "" {
		fmt.Fprintln(deps.Stdout)
	}

	switch transcript.Phase() {
	case chat.PhaseFailed:
		return streamErr
	case chat.PhaseSettled:
	default:
		// The stream closed without a final event: ctx ended.
		return apierrors.ErrCancelled
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(answer), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintln(deps.Stderr, successLine(fmt.Sprintf("Response saved to %s", opts.output)))
	}

	if opts.save {
		if err := saveExchange(deps, model.Name, developer, transcript); err != nil {
			fmt.Fprintln(deps.Stderr, warningLine(fmt.Sprintf("Failed to save history: %v", err)))
		}
	}

	if opts.copy || deps.Config.CopyToClipboard {
		if err := deps.Clipboard(answer); err != nil {
			fmt.Fprintln(deps.Stderr, warningLine(fmt.Sprintf("Failed to copy to clipboard: %v", err)))
		} else {
			fmt.Fprintln(deps.Stderr, successLine("Copied to clipboard"))
		}
	}
	return nil
}

func saveExchange(deps *Dependencies, model, developer string, transcript *chat.Transcript) error {
	store, err := deps.OpenHistory()
	if err != nil {
		return err
	}
	conv, err := store.Save(model, developer, transcript.Messages())
	if err != nil {
		return err
	}
	fmt.Fprintln(deps.Stderr, successLine(fmt.Sprintf("Saved to history (%s)", shortID(conv.ID))))
	return nil
}
