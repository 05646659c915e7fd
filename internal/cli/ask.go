package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dataroomhq/dataroom/internal/pipeline"
)

var (
	askKPDF    int
	askKCSV    int
	askTimeout time.Duration
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question over the ingested documents",
	Long: `Ask runs one reasoning-loop turn: the model decides whether to search
the dataroom, retrieves at most once, and answers with literal citation
tags for every fragment it used.

When nothing relevant is stored the answer states uncertainty; the
system never invents facts or citations.

Example:
  dataroom ask "Is there a rent escalation clause?"
  dataroom ask "Which asset has the highest NOI?" --k-csv 10`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().IntVar(&askKPDF, "k-pdf", -1, "top-K candidates from the document store (-1: config default)")
	askCmd.Flags().IntVar(&askKCSV, "k-csv", -1, "top-K candidates from the table store (-1: config default)")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "overall turn timeout")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(args[0])
	if question == "" {
		return fmt.Errorf("question must not be empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	cfg := loadConfig()
	if cfg.LLM.Provider != "ollama" && cfg.LLM.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	p, err := pipeline.New(cfg, true)
	if err != nil {
		return err
	}
	defer p.Close()

	turn, err := p.Ask(ctx, question, askKPDF, askKCSV)
	if err != nil {
		return err
	}

	fmt.Println(turn.Answer)

	if len(turn.Citations) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, c := range turn.Citations {
			fmt.Printf("  %s\n", c.Tag())
		}
	}

	return nil
}
