// Package cli provides the cobra command tree for the lectern binary.
// Commands are wired to core services through the driving ports; adapter
// selection (vector backend, embedding provider, session backend) comes
// from the TOML config store.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	configfile "github.com/lectern-labs/lectern-cli/internal/adapters/driven/config/file"
	"github.com/lectern-labs/lectern-cli/internal/adapters/driven/embedding/ollama"
	"github.com/lectern-labs/lectern-cli/internal/adapters/driven/embedding/openai"
	"github.com/lectern-labs/lectern-cli/internal/adapters/driven/llm/anthropic"
	redissession "github.com/lectern-labs/lectern-cli/internal/adapters/driven/session/redis"
	storagememory "github.com/lectern-labs/lectern-cli/internal/adapters/driven/storage/memory"
	"github.com/lectern-labs/lectern-cli/internal/adapters/driven/storage/sqlite"
	"github.com/lectern-labs/lectern-cli/internal/adapters/driven/vectorstore/chroma"
	vectormemory "github.com/lectern-labs/lectern-cli/internal/adapters/driven/vectorstore/memory"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
	"github.com/lectern-labs/lectern-cli/internal/core/services"
	"github.com/lectern-labs/lectern-cli/internal/logger"
	"github.com/lectern-labs/lectern-cli/internal/postprocessors/chunker"
)

// version is set from main via Execute.
var version = "dev"

// Configuration keys.
const (
	keyAnthropicAPIKey    = "anthropic.api_key"
	keyAnthropicModel     = "anthropic.model"
	keyEmbeddingProvider  = "embedding.provider" // "openai" or "ollama"
	keyOpenAIAPIKey       = "embedding.openai_api_key"
	keyOpenAIModel        = "embedding.openai_model"
	keyOllamaURL          = "embedding.ollama_url"
	keyOllamaModel        = "embedding.ollama_model"
	keyVectorBackend      = "vector.backend" // "chroma" or "memory"
	keyChromaURL          = "vector.chroma_url"
	keyMaxResults         = "vector.max_results"
	keyMaxDistance        = "vector.max_distance"
	keySessionBackend     = "session.backend" // "memory" or "redis"
	keyRedisAddr          = "session.redis_addr"
	keyMaxHistory         = "session.max_history"
	keyChunkSize          = "chunker.chunk_size"
	keyChunkOverlap       = "chunker.chunk_overlap"
	keyMCPShutdownTimeout = "mcp.shutdown_timeout" // seconds
)

// Package-level services shared by the commands. Populated by wireServices
// in the root PersistentPreRunE.
var (
	configStore    *configfile.ConfigStore
	promptStore    driven.PromptStore
	vectorStore    driven.VectorStore
	courseStore    driven.CourseStore
	sessionStore   driven.SessionStore
	searchService  *services.SearchService
	ingestService  *services.IngestService
	assistService  *services.AssistantService
	verboseLogging bool
)

var rootCmd = &cobra.Command{
	Use:   "lectern",
	Short: "Course material search and question answering",
	Long: `Lectern indexes course documents into a semantic search index and
answers questions about them through a tool-calling assistant.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseLogging)
		// config command manages the store itself; skip full wiring so
		// `lectern config set anthropic.api_key ...` works before any
		// backend is reachable.
		if isConfigOnlyCommand(cmd) {
			return wireConfigStore()
		}
		return wireServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseLogging, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute(v string) {
	version = v
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isConfigOnlyCommand reports whether cmd needs only the config store.
func isConfigOnlyCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" || c.Name() == "version" {
			return true
		}
	}
	return false
}

// wireConfigStore initialises just the config store.
func wireConfigStore() error {
	if configStore != nil {
		return nil
	}
	store, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}
	configStore = store
	return nil
}

// wireServices builds the adapter stack and core services from config.
func wireServices() error {
	if err := wireConfigStore(); err != nil {
		return err
	}

	prompts, err := configfile.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("open prompt store: %w", err)
	}
	promptStore = prompts

	embedder, err := buildEmbeddingService()
	if err != nil {
		return err
	}

	vectorStore, err = buildVectorStore(embedder)
	if err != nil {
		return err
	}

	courseStore, err = sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("open course store: %w", err)
	}

	sessionStore = buildSessionStore()

	searchService = services.NewSearchService(vectorStore)
	ingestService = services.NewIngestService(vectorStore, courseStore, chunkerOptions()...)

	completion, err := anthropic.NewCompletionService(anthropic.Config{
		APIKey: configStore.GetString(keyAnthropicAPIKey),
		Model:  configStore.GetString(keyAnthropicModel),
	})
	if err != nil {
		// ingest/courses/search work without a completion service; only
		// ask/chat need one. Defer the failure to those commands.
		logger.Debug("Completion service unavailable: %v", err)
		return nil
	}

	registry := services.NewToolRegistry()
	registry.Register(services.NewCourseSearchTool(vectorStore, registry))
	registry.Register(services.NewCourseOutlineTool(vectorStore, registry))

	generator := services.NewAnswerGenerator(completion, registry)
	assistService = services.NewAssistantService(
		generator, registry, vectorStore, sessionStore, promptStore,
	)
	return nil
}

// buildEmbeddingService selects the embedding provider from config.
func buildEmbeddingService() (driven.EmbeddingService, error) {
	provider := configStore.GetString(keyEmbeddingProvider)
	switch provider {
	case "", "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: configStore.GetString(keyOllamaURL),
			Model:   configStore.GetString(keyOllamaModel),
		}), nil
	case "openai":
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey: configStore.GetString(keyOpenAIAPIKey),
			Model:  configStore.GetString(keyOpenAIModel),
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedding service: %w", err)
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// buildVectorStore selects the vector backend from config.
func buildVectorStore(embedder driven.EmbeddingService) (driven.VectorStore, error) {
	backend := configStore.GetString(keyVectorBackend)
	switch backend {
	case "", "chroma":
		store, err := chroma.NewStore(chroma.Config{
			BaseURL:     configStore.GetString(keyChromaURL),
			MaxResults:  configStore.GetInt(keyMaxResults),
			MaxDistance: configStore.GetFloat(keyMaxDistance),
		}, embedder)
		if err != nil {
			return nil, fmt.Errorf("chroma store: %w", err)
		}
		return store, nil
	case "memory":
		store, err := vectormemory.NewStore(vectormemory.Config{
			MaxResults:  configStore.GetInt(keyMaxResults),
			MaxDistance: configStore.GetFloat(keyMaxDistance),
		}, embedder)
		if err != nil {
			return nil, fmt.Errorf("memory store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown vector backend %q", backend)
	}
}

// buildSessionStore selects the session backend from config.
func buildSessionStore() driven.SessionStore {
	maxHistory := configStore.GetInt(keyMaxHistory)

	if configStore.GetString(keySessionBackend) == "redis" {
		cfg := redissession.DefaultConfig()
		if addr := configStore.GetString(keyRedisAddr); addr != "" {
			cfg.Addr = addr
		}
		if maxHistory > 0 {
			cfg.MaxHistory = maxHistory
		}
		return redissession.NewStore(cfg)
	}
	return storagememory.NewSessionStore(maxHistory)
}

// chunkerOptions reads chunker tuning from config.
func chunkerOptions() []chunker.Option {
	var opts []chunker.Option
	if size := configStore.GetInt(keyChunkSize); size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap := configStore.GetInt(keyChunkOverlap); overlap > 0 {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	return opts
}

// requireAssistant fails commands that need the completion service.
func requireAssistant() error {
	if assistService == nil {
		return fmt.Errorf("anthropic API key not configured; run: lectern config set %s <key>", keyAnthropicAPIKey)
	}
	return nil
}
