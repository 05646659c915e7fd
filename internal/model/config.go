package model

import (
	"os"
	"path/filepath"
)

// Config holds the complete application configuration.
type Config struct {
	Data        DataConfig        `yaml:"data"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	LLM         LLMConfig         `yaml:"llm"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// DataConfig locates the on-disk state. Each modality store lives in
// its own subdirectory of Dir; the stores are a cache of ingestion and
// can always be rebuilt from the raw documents.
type DataConfig struct {
	Dir string `yaml:"dir"` // default: ~/.dataroom/data
}

// DocumentStoreDir returns the directory of the paginated-document store.
func (d DataConfig) DocumentStoreDir() string { return filepath.Join(d.Dir, "pdf_db") }

// TableStoreDir returns the directory of the tabular store.
func (d DataConfig) TableStoreDir() string { return filepath.Join(d.Dir, "csv_db") }

// EmbeddingConfig configures the embedding model endpoint. Ingestion
// and query paths share one embedder instance built from this config;
// two separately configured embedders would silently degrade recall.
type EmbeddingConfig struct {
	Model        string `yaml:"model"`
	APIKey       string `yaml:"api_key,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
	Timeout      int    `yaml:"timeout"` // seconds
	CacheEnabled bool   `yaml:"cache_enabled"`
	CacheDir     string `yaml:"cache_dir"`
}

// LLMConfig configures the answer-composition service.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "openai" or "ollama"
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`

	// SystemPrompt overrides the built-in instruction. Leave empty to
	// keep the default retrieve-when-unsure / never-fabricate prompt.
	SystemPrompt string `yaml:"system_prompt,omitempty"`
}

// RetrievalConfig holds the per-store top-K defaults.
type RetrievalConfig struct {
	KPDF int `yaml:"k_pdf"`
	KCSV int `yaml:"k_csv"`
}

// ConcurrencyConfig bounds outbound API usage during ingestion.
type ConcurrencyConfig struct {
	EmbedWorkers      int     `yaml:"embed_workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// OutputConfig controls diagnostics.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults. API keys are expected
// from the environment, not from this struct.
func DefaultConfig() *Config {
	dataDir := "./dataroom-data"
	cacheDir := "./dataroom-cache"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".dataroom", "data")
		cacheDir = filepath.Join(home, ".dataroom", "cache")
	}

	return &Config{
		Data: DataConfig{Dir: dataDir},
		Embedding: EmbeddingConfig{
			Model:        "text-embedding-3-small",
			Timeout:      30,
			CacheEnabled: true,
			CacheDir:     cacheDir,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   30,
			MaxTokens: 1000,
		},
		Retrieval: RetrievalConfig{
			KPDF: 5,
			KCSV: 5,
		},
		Concurrency: ConcurrencyConfig{
			EmbedWorkers:      4,
			RequestsPerSecond: 5,
			Burst:             5,
		},
	}
}
