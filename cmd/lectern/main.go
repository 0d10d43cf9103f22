// Command lectern is a retrieval-augmented question answering CLI for
// indexed documents.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/lectern/internal/adapters/driven/config/file"
	ollamaembed "github.com/custodia-labs/lectern/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/lectern/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/lectern/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/lectern/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/lectern/internal/adapters/driven/llm/openai"
	memstorage "github.com/custodia-labs/lectern/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lectern/internal/adapters/driven/storage/sqlite"
	vecmemory "github.com/custodia-labs/lectern/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/lectern/internal/adapters/driving/cli"
	"github.com/custodia-labs/lectern/internal/cache"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/services"
	"github.com/custodia-labs/lectern/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore(os.Getenv("LECTERN_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := file.PipelineConfig(configStore)

	embeddingService, err := newEmbeddingService(configStore)
	if err != nil {
		return err
	}
	defer embeddingService.Close()

	llmService, err := newLLMService(configStore)
	if err != nil {
		return err
	}
	defer llmService.Close()

	vectorIndex := vecmemory.NewIndex()
	defer vectorIndex.Close()

	caches := cache.NewManager(cfg)

	var docStore driven.DocumentStore
	var convStore driven.ConversationStore
	if configStore.GetBool("storage.in_memory") {
		docStore = memstorage.NewDocumentStore()
		convStore = memstorage.NewConversationStore()
	} else {
		store, err := sqlite.NewStore(configStore.GetString("storage.data_dir"))
		if err != nil {
			return fmt.Errorf("opening metadata store: %w", err)
		}
		defer store.Close()
		docStore = store.DocumentStore()
		convStore = store.ConversationStore()
	}

	ragService := services.NewRAGService(cfg, caches, vectorIndex, embeddingService, llmService, docStore)
	ragService.SetConversationStore(convStore)

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if err := configStore.Watch(watchCtx, func() {
		ragService.Reconfigure(file.PipelineConfig(configStore))
	}); err != nil {
		logger.Warn("Config hot reload unavailable: %v", err)
	}

	indexingService := services.NewIndexingService(cfg, embeddingService, vectorIndex, docStore, caches)
	defer func() {
		if err := indexingService.Close(); err != nil {
			logger.Warn("Indexing shutdown: %v", err)
		}
	}()

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Answer:   ragService,
		Indexing: indexingService,
		Caches:   caches,
	})

	return cli.Execute()
}

func newEmbeddingService(store *file.ConfigStore) (driven.EmbeddingService, error) {
	if store.GetString("embedding.provider") == "openai" {
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     apiKey(store, "embedding.api_key"),
			BaseURL:    store.GetString("embedding.base_url"),
			Model:      store.GetString("embedding.model"),
			Dimensions: store.GetInt("embedding.dimensions"),
			Timeout:    seconds(store.GetInt("embedding.timeout_seconds")),
		})
		if err != nil {
			return nil, fmt.Errorf("embedding service: %w", err)
		}
		return svc, nil
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    store.GetString("embedding.base_url"),
		Model:      store.GetString("embedding.model"),
		Dimensions: store.GetInt("embedding.dimensions"),
		Timeout:    seconds(store.GetInt("embedding.timeout_seconds")),
	}), nil
}

func newLLMService(store *file.ConfigStore) (driven.LLMService, error) {
	switch store.GetString("llm.provider") {
	case "openai":
		svc, err := openaillm.NewLLMService(openaillm.Config{
			APIKey:  apiKey(store, "llm.api_key"),
			BaseURL: store.GetString("llm.base_url"),
			Model:   store.GetString("llm.model"),
			Timeout: seconds(store.GetInt("llm.timeout_seconds")),
		})
		if err != nil {
			return nil, fmt.Errorf("llm service: %w", err)
		}
		return svc, nil

	case "anthropic":
		svc, err := anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  anthropicKey(store),
			BaseURL: store.GetString("llm.base_url"),
			Model:   store.GetString("llm.model"),
			Timeout: seconds(store.GetInt("llm.timeout_seconds")),
		})
		if err != nil {
			return nil, fmt.Errorf("llm service: %w", err)
		}
		return svc, nil
	}

	return ollamallm.NewLLMService(ollamallm.Config{
		BaseURL: store.GetString("llm.base_url"),
		Model:   store.GetString("llm.model"),
		Timeout: seconds(store.GetInt("llm.timeout_seconds")),
	}), nil
}

// apiKey reads a key from config, falling back to OPENAI_API_KEY.
func apiKey(store *file.ConfigStore, key string) string {
	if v := store.GetString(key); v != "" {
		return v
	}
	return os.Getenv("OPENAI_API_KEY")
}

// anthropicKey reads the LLM key from config, falling back to ANTHROPIC_API_KEY.
func anthropicKey(store *file.ConfigStore) string {
	if v := store.GetString("llm.api_key"); v != "" {
		return v
	}
	return os.Getenv("ANTHROPIC_API_KEY")
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
