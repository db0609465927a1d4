// Package cli implements the cobra commands that drive the application.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	configfile "github.com/clearclaim/patra/internal/adapters/driven/config/file"
	embeddinggemini "github.com/clearclaim/patra/internal/adapters/driven/embedding/gemini"
	embeddingollama "github.com/clearclaim/patra/internal/adapters/driven/embedding/ollama"
	"github.com/clearclaim/patra/internal/adapters/driven/extractor/pdf"
	llmgemini "github.com/clearclaim/patra/internal/adapters/driven/llm/gemini"
	llmollama "github.com/clearclaim/patra/internal/adapters/driven/llm/ollama"
	"github.com/clearclaim/patra/internal/adapters/driven/vectorstore/chroma"
	"github.com/clearclaim/patra/internal/core/ports/driven"
	"github.com/clearclaim/patra/internal/core/ports/driving"
	"github.com/clearclaim/patra/internal/core/services"
	"github.com/clearclaim/patra/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services are package-level so commands can reach them and tests can
// substitute fakes before calling a command's RunE.
var (
	ingestService   driving.IngestService
	queryService    driving.QueryService
	analysisService driving.AnalysisService
)

var (
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "patra",
	Short: "Patent retrieval assistant",
	Long: `Patra ingests PDF patent documents into a vector index and answers
questions or produces structured analyses over them using
retrieval-augmented generation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		if needsServices(cmd) && ingestService == nil {
			return initServices()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ~/.patra/config.toml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// needsServices reports whether the command touches the pipeline at all.
func needsServices(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return false
	}
	return true
}

// initServices wires adapters into core services from configuration.
// Secrets come only from the environment.
func initServices() error {
	path := flagConfig
	if path == "" {
		var err error
		if path, err = configfile.DefaultPath(); err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
	}

	cfg, err := configfile.Load(path)
	if err != nil {
		return err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	llm, err := buildLLM(cfg)
	if err != nil {
		return err
	}

	store := chroma.NewStore(chroma.Config{
		BaseURL:    cfg.Chroma.URL,
		Collection: cfg.Chroma.Collection,
	})

	chunker := services.NewChunker(cfg.Chunking.Size, cfg.Chunking.Overlap)
	retriever := services.NewRetriever(embedder, store)

	topK := cfg.Retrieval.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	ingestService = services.NewIngestService(pdf.NewExtractor(), embedder, store, chunker)
	queryService = services.NewQueryService(retriever, llm, topK)
	analysisService = services.NewAnalysisService(store, llm, retriever)

	logger.Debug("Wired %s embeddings and %s generation against %s",
		embedder.ModelName(), llm.ModelName(), cfg.Chroma.URL)
	return nil
}

func buildEmbedder(cfg *configfile.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case configfile.ProviderGemini:
		return embeddinggemini.NewEmbeddingService(embeddinggemini.Config{
			BaseURL: cfg.Embedding.BaseURL,
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:   cfg.Embedding.Model,
		})
	case configfile.ProviderOllama:
		return embeddingollama.NewEmbeddingService(embeddingollama.Config{
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

func buildLLM(cfg *configfile.Config) (driven.LLMService, error) {
	switch cfg.LLM.Provider {
	case configfile.ProviderGemini:
		return llmgemini.NewLLMService(llmgemini.Config{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:   cfg.LLM.Model,
		})
	case configfile.ProviderOllama:
		return llmollama.NewLLMService(llmollama.Config{
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}
