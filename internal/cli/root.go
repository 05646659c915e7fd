package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dataroomhq/dataroom/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dataroom",
	Short: "Dataroom - cited Q&A over real-estate documents",
	Long: `Dataroom answers natural-language questions over a set of uploaded
real-estate documents: contracts as paginated text and tabular data as rows.

Documents are chunked into citation-addressable units (pages and rows),
embedded, and stored per modality. Questions run through a bounded reasoning
loop that retrieves relevant fragments at most once per turn and produces an
answer carrying literal citation tags like [contract.pdf p.1] and
[assets.csv row 2].

Answers never assert facts absent from retrieved content; "I don't know"
is a valid outcome, a fabricated citation is not.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("dataroom v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.dataroom/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.dataroom")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match DATAROOM_*. Nested keys
	// map dots to underscores: data.dir becomes DATAROOM_DATA_DIR.
	viper.SetEnvPrefix("DATAROOM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the effective configuration: defaults, then
// config file / environment overrides, then API keys from the
// environment.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	setString := func(dst *string, key string) {
		if viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}
	setInt := func(dst *int, key string) {
		if viper.IsSet(key) {
			*dst = viper.GetInt(key)
		}
	}

	setString(&cfg.Data.Dir, "data.dir")
	setString(&cfg.Embedding.Model, "embedding.model")
	setString(&cfg.Embedding.BaseURL, "embedding.base_url")
	setString(&cfg.Embedding.CacheDir, "embedding.cache_dir")
	setInt(&cfg.Embedding.Timeout, "embedding.timeout")
	if viper.IsSet("embedding.cache_enabled") {
		cfg.Embedding.CacheEnabled = viper.GetBool("embedding.cache_enabled")
	}

	setString(&cfg.LLM.Provider, "llm.provider")
	setString(&cfg.LLM.Model, "llm.model")
	setString(&cfg.LLM.BaseURL, "llm.base_url")
	setString(&cfg.LLM.SystemPrompt, "llm.system_prompt")
	setInt(&cfg.LLM.Timeout, "llm.timeout")
	setInt(&cfg.LLM.MaxTokens, "llm.max_tokens")

	setInt(&cfg.Retrieval.KPDF, "retrieval.k_pdf")
	setInt(&cfg.Retrieval.KCSV, "retrieval.k_csv")

	setInt(&cfg.Concurrency.EmbedWorkers, "concurrency.embed_workers")
	if viper.IsSet("concurrency.requests_per_second") {
		cfg.Concurrency.RequestsPerSecond = viper.GetFloat64("concurrency.requests_per_second")
	}
	setInt(&cfg.Concurrency.Burst, "concurrency.burst")

	cfg.Output.Verbose = verbose

	// API keys come from the environment, never from the config file.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Embedding.APIKey = key
		cfg.LLM.APIKey = key
	}

	return cfg
}
