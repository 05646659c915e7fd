package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dataroomhq/dataroom/internal/pipeline"
)

var listStats bool

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listStats, "stats", false, "also print per-store totals")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	p, err := pipeline.New(cfg, false)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx := context.Background()

	summaries, err := p.ListDocuments(ctx)
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		fmt.Println("No documents ingested.")
	}
	for _, s := range summaries {
		fmt.Printf("%-40s %-10s %d chunks\n", s.Filename, s.Modality, s.ChunkCount)
	}

	if listStats {
		stats, err := p.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Println()
		for _, st := range stats {
			fmt.Printf("%s store: %d documents, %d chunks\n", st.Modality, st.Documents, st.Chunks)
		}
	}

	return nil
}
