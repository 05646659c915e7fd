package embed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dataroomhq/dataroom/internal/model"
	"github.com/dataroomhq/dataroom/internal/worker"
)

// OpenAIEmbedder produces embeddings through an OpenAI-compatible
// embeddings endpoint.
type OpenAIEmbedder struct {
	client  *openai.Client
	model   string
	dim     int
	timeout time.Duration
	limiter *worker.Limiter
}

// NewOpenAIEmbedder creates an embedder from configuration. The
// limiter is optional; pass nil to disable throttling.
func NewOpenAIEmbedder(cfg model.EmbeddingConfig, limiter *worker.Limiter) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("embedding API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	// Dimension depends on the model.
	dim := 1536 // text-embedding-3-small, ada-002
	if cfg.Model == "text-embedding-3-large" {
		dim = 3072
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		dim:     dim,
		timeout: timeout,
		limiter: limiter,
	}, nil
}

// Embed returns the L2-normalized embedding of content, so cosine
// similarity reduces to a dot product downstream.
func (e *OpenAIEmbedder) Embed(ctx context.Context, content string) ([]float32, error) {
	if content == "" {
		return nil, errors.New("cannot embed empty content")
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, "embed"); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{content},
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings API: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	raw := resp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i := range raw {
		vec[i] = float32(raw[i])
	}

	l2normalize(vec)

	return vec, nil
}

// Dimension returns the embedding dimension.
func (e *OpenAIEmbedder) Dimension() int { return e.dim }

// Model returns the embedding model name.
func (e *OpenAIEmbedder) Model() string { return e.model }

// l2normalize scales a vector to unit length in place.
func l2normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}
