package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dataroomhq/dataroom/internal/pipeline"
)

var chatTurnTimeout time.Duration

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive multi-turn session over the dataroom",
	Long: `Chat starts an interactive session: each line is one reasoning-loop
turn, and earlier questions and answers stay visible to later turns.

Type "exit", "quit" or press Ctrl-D to leave.

Example:
  dataroom chat`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().DurationVar(&chatTurnTimeout, "turn-timeout", 2*time.Minute, "timeout per turn")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if cfg.LLM.Provider != "ollama" && cfg.LLM.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	p, err := pipeline.New(cfg, true)
	if err != nil {
		return err
	}
	defer p.Close()

	fmt.Println(`Interactive session. Type "exit" or press Ctrl-D to leave.`)
	return chatSession(context.Background(), p, chatTurnTimeout, os.Stdin, os.Stdout)
}

// chatSession runs turns against one pipeline, so the reasoning loop's
// conversation history carries across questions. A failed turn is
// reported and the session continues.
func chatSession(ctx context.Context, p *pipeline.Pipeline, turnTimeout time.Duration, in io.Reader, out io.Writer) error {
	if turnTimeout <= 0 {
		turnTimeout = 2 * time.Minute
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		turnCtx, cancel := context.WithTimeout(ctx, turnTimeout)
		turn, err := p.Ask(turnCtx, question, -1, -1)
		cancel()
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		fmt.Fprintln(out, turn.Answer)
		for _, c := range turn.Citations {
			fmt.Fprintf(out, "  %s\n", c.Tag())
		}
		fmt.Fprintln(out)
	}

	return scanner.Err()
}
