package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/akolanti/ragchain/internal/app"
	"github.com/akolanti/ragchain/internal/config"
)

var (
	ingestForce bool
	ingestName  string
)

// NewIngestCmd creates ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <path|url>",
		Short: "Index a document",
		Long: `Load a file (txt, md, pdf, docx, odt, rtf) or a web page, split it into
chunks, embed them and store them in the vector collection.

The collection is only built when it does not exist yet, unless --force
is given.

Examples:
  ragchat ingest books/odyssey.txt
  ragchat ingest --force --name "apple" https://www.apple.com/`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().BoolVar(&ingestForce, "force", false, "Add to the collection even if it already exists")
	cmd.Flags().StringVar(&ingestName, "name", "", "Document name stored as metadata (default: file or host name)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	proceed, err := checkCollection(ctx, cfg, out, ingestForce)
	if err != nil || !proceed {
		return err
	}

	sess, err := app.Open(ctx, cfg, app.NeedRetrieval)
	if err != nil {
		return err
	}
	defer sess.Close()

	ingester, err := sess.Ingester()
	if err != nil {
		return err
	}

	report, err := ingester.Ingest(ctx, args[0], ingestName)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", args[0], err)
	}
	printReport(out, report)
	return nil
}

// checkCollection reports whether ingestion should go ahead. Credentials are
// checked before the vector store is contacted.
func checkCollection(ctx context.Context, cfg *config.Config, out io.Writer, force bool) (bool, error) {
	if err := cfg.RequireKeys(cfg.EmbeddingVendor); err != nil {
		return false, err
	}
	if force {
		return true, nil
	}

	exists, err := app.IndexExists(ctx, cfg)
	if err != nil {
		return false, fmt.Errorf("checking collection: %w", err)
	}
	if exists {
		fmt.Fprintf(out, "Vector store %q already exists. No need to initialize.\n", cfg.Collection)
		return false, nil
	}
	fmt.Fprintln(out, "Vector store does not exist. Initializing vector store...")
	return true, nil
}
