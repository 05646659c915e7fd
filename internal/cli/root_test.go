package cli

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("DATAROOM_DATA_DIR", "/srv/dataroom")
	t.Setenv("DATAROOM_LLM_PROVIDER", "ollama")
	t.Setenv("DATAROOM_RETRIEVAL_K_PDF", "9")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	initConfig()
	cfg := loadConfig()

	if cfg.Data.Dir != "/srv/dataroom" {
		t.Errorf("data.dir = %q, want env override", cfg.Data.Dir)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("llm.provider = %q, want env override", cfg.LLM.Provider)
	}
	if cfg.Retrieval.KPDF != 9 {
		t.Errorf("retrieval.k_pdf = %d, want 9", cfg.Retrieval.KPDF)
	}
	if cfg.Embedding.APIKey != "sk-test" || cfg.LLM.APIKey != "sk-test" {
		t.Error("OPENAI_API_KEY not propagated to both API key fields")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("OPENAI_API_KEY", "")

	initConfig()
	cfg := loadConfig()

	if cfg.Retrieval.KPDF != 5 || cfg.Retrieval.KCSV != 5 {
		t.Errorf("retrieval defaults = %d/%d, want 5/5", cfg.Retrieval.KPDF, cfg.Retrieval.KCSV)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("llm.provider default = %q", cfg.LLM.Provider)
	}
	if cfg.Embedding.APIKey != "" {
		t.Error("API key set without environment")
	}
}
