package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/rag/ingest"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

// loadConfig reads the environment and sends logs to stderr so they do not
// mix with command output.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger_i.Init(level, cfg.LogFormat, cmd.ErrOrStderr())
	return cfg, nil
}

type respondFunc func(ctx context.Context, input string) (string, error)

// repl prompts for lines until EOF or "exit". A failed turn is printed and
// the loop goes on. Lines have no length limit.
func repl(ctx context.Context, in io.Reader, out io.Writer, respond respondFunc) error {
	reader := bufio.NewReader(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, "You: ")
		line, readErr := reader.ReadString('\n')
		if readErr != nil && (readErr != io.EOF || line == "") {
			fmt.Fprintln(out)
			if readErr == io.EOF {
				return nil
			}
			return readErr
		}

		input := strings.TrimSpace(line)
		if strings.EqualFold(input, "exit") {
			return nil
		}
		if input != "" {
			reply, err := respond(ctx, input)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			} else {
				fmt.Fprintf(out, "AI: %s\n", reply)
			}
		}

		// last line without a trailing newline
		if readErr == io.EOF {
			fmt.Fprintln(out)
			return nil
		}
	}
}

func printReport(w io.Writer, report ingest.Report) {
	fmt.Fprintln(w, "\n--- Document Chunks Information ---")
	fmt.Fprintf(w, "Number of document chunks: %d\n", report.Chunks)
	if report.Sample != "" {
		fmt.Fprintf(w, "Sample chunk:\n%s\n", report.Sample)
	}
	fmt.Fprintf(w, "\nCollection now holds %d chunk(s)\n", report.Total)
}

func printPassages(w io.Writer, passages commonModels.RetrievalResult) {
	fmt.Fprintln(w, "\n--- Relevant Documents ---")
	if len(passages) == 0 {
		fmt.Fprintln(w, "No documents passed the score threshold.")
		return
	}
	for i, p := range passages {
		fmt.Fprintf(w, "Document %d (score %.3f):\n%s\n\n", i+1, p.Score, p.Content)
		source := p.Metadata.String("source")
		if source == "" {
			source = "Unknown"
		}
		fmt.Fprintf(w, "Source: %s\n\n", source)
	}
}
