package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dataroomhq/dataroom/internal/model"
	"github.com/dataroomhq/dataroom/internal/pipeline"
)

var ingestTimeout time.Duration

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest documents into the dataroom",
	Long: `Ingest chunks each file into citation-addressable units, embeds them
and stores the result in the modality's vector store.

Supported types:
  .pdf  paginated, one chunk per page (requires pdftotext)
  .txt  paginated, pages separated by form feeds
  .csv  tabular, one chunk per data row (header excluded)

A file that cannot be decoded fails as a whole; other files on the
command line are unaffected.

Example:
  dataroom ingest contract.pdf assets.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", 10*time.Minute, "overall ingestion timeout")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	cfg := loadConfig()
	if cfg.Embedding.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	p, err := pipeline.New(cfg, false)
	if err != nil {
		return err
	}
	defer p.Close()

	failed := 0
	for _, path := range args {
		result, err := p.Ingest(ctx, path)
		if err != nil {
			failed++
			var ingErr *model.IngestionError
			if errors.As(err, &ingErr) {
				fmt.Fprintf(os.Stderr, "✗ %s\n", ingErr)
			} else {
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
			}
			continue
		}
		fmt.Printf("✓ %s: %d %s chunks\n", result.DocumentID, result.ChunkCount, result.Modality)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(args))
	}
	return nil
}
