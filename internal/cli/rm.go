package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dataroomhq/dataroom/internal/pipeline"
)

// rmCmd represents the rm command
var rmCmd = &cobra.Command{
	Use:   "rm <filename>",
	Short: "Remove an ingested document",
	Long: `Remove deletes a document's chunks from its modality store.
The raw file is untouched; re-ingesting it restores the document.

Example:
  dataroom rm contract.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	p, err := pipeline.New(cfg, false)
	if err != nil {
		return err
	}
	defer p.Close()

	removed, err := p.Remove(context.Background(), args[0])
	if err != nil {
		return err
	}

	if removed == 0 {
		fmt.Printf("No document named %s found.\n", args[0])
		return nil
	}

	fmt.Printf("✓ Removed %s (%d chunks)\n", args[0], removed)
	return nil
}
