package answer

import (
	"fmt"
	"strings"

	"github.com/dataroomhq/dataroom/internal/model"
	"github.com/dataroomhq/dataroom/internal/worker"
)

// NewComposer creates a composer for the configured provider.
func NewComposer(cfg model.LLMConfig, limiter *worker.Limiter) (Composer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		return NewOpenAIComposer(cfg, limiter)

	case "ollama":
		// Ollama speaks the OpenAI chat API; it only needs a base URL
		// and ignores the key.
		ollamaCfg := cfg
		if ollamaCfg.BaseURL == "" {
			ollamaCfg.BaseURL = "http://localhost:11434/v1"
		}
		if ollamaCfg.APIKey == "" {
			ollamaCfg.APIKey = "ollama"
		}
		c, err := NewOpenAIComposer(ollamaCfg, limiter)
		if err != nil {
			return nil, err
		}
		c.name = "ollama"
		return c, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", cfg.Provider)
	}
}
