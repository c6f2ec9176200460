package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/lectern/internal/adapters/driven/ai"
	"github.com/custodia-labs/lectern/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lectern/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lectern/internal/adapters/driven/storage/qdrant"
	"github.com/custodia-labs/lectern/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lectern/internal/adapters/driving/cli"
	"github.com/custodia-labs/lectern/internal/core/domain"
	"github.com/custodia-labs/lectern/internal/core/ports/driven"
	"github.com/custodia-labs/lectern/internal/core/services"
	"github.com/custodia-labs/lectern/internal/logger"
	"github.com/custodia-labs/lectern/internal/metrics"
	"github.com/custodia-labs/lectern/internal/normalisers"
	"github.com/custodia-labs/lectern/internal/postprocessors"
)

// stores bundles the storage adapters selected by settings.
type stores struct {
	docs    driven.DocumentStore
	chunks  driven.ChunkStore
	label   string
	closers []func() error
}

// bootstrap wires every service from the data directory and settings.
func bootstrap(_ context.Context, opts cli.Options) (*cli.Services, error) {
	dataDir, err := resolveDataDir(opts.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("Data directory: %s", dataDir)

	configStore, err := file.NewConfigStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("config store: %w", err)
	}
	promptStore, err := file.NewPromptStore(filepath.Join(dataDir, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("prompt store: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	st, err := openStores(dataDir, settings.Store)
	if err != nil {
		return nil, err
	}

	// Commands that never embed (settings, document list) still work
	// when the AI services are misconfigured.
	var embedding driven.EmbeddingService
	var llm driven.LLMService
	aiResult, err := ai.Init(settings)
	if err != nil {
		logger.Warn("%v", err)
	} else {
		embedding = aiResult.EmbeddingService
		llm = aiResult.LLMService
		for _, w := range aiResult.Warnings {
			logger.Warn("%s", w)
		}
	}

	m := metrics.New(metrics.Config{EnableDefaultCollectors: true})

	embedder := services.NewBatchEmbedder(embedding, settings.Embedding.Concurrency, settings.Embedding.RequestsPerSecond)
	embedder.SetMetrics(m)

	processors := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(processors)

	indexService := services.NewIndexService(st.docs, st.chunks, processors, embedder)
	indexService.SetDefaults(settings.Chunking)
	indexService.SetMetrics(m)

	documentService := services.NewDocumentService(st.docs, normalisers.DefaultRegistry(), indexService)

	askService := services.NewAskService(st.docs, st.chunks, embedder, llm)
	askService.SetPromptStore(promptStore)
	askService.SetGeneration(settings.Generation)
	askService.SetMetrics(m)

	healthService := services.NewHealthService(embedding, llm, st.docs, st.label)

	return &cli.Services{
		Document: documentService,
		Index:    indexService,
		Ask:      askService,
		Health:   healthService,
		Settings: settingsService,
		Metrics:  m.Handler(),
		Close: func() error {
			if aiResult != nil {
				aiResult.Close()
			}
			var errs []error
			for _, c := range st.closers {
				errs = append(errs, c())
			}
			return errors.Join(errs...)
		},
	}, nil
}

// resolveDataDir returns dir, or ~/.lectern when dir is empty.
func resolveDataDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".lectern"), nil
}

// openStores builds the document and chunk stores for the configured backend.
// Documents stay in SQLite when chunks live in Qdrant.
func openStores(dataDir string, cfg domain.StoreSettings) (*stores, error) {
	dbDir := cfg.DataDir
	if dbDir == "" {
		dbDir = dataDir
	}

	switch cfg.Backend {
	case domain.StoreBackendMemory:
		return &stores{
			docs:   memory.NewDocumentStore(),
			chunks: memory.NewChunkStore(),
			label:  "memory",
		}, nil

	case domain.StoreBackendQdrant:
		db, err := sqlite.NewStore(dbDir)
		if err != nil {
			return nil, fmt.Errorf("sqlite store: %w", err)
		}
		chunks, err := qdrant.NewChunkStore(qdrant.Config{
			Host:       cfg.QdrantHost,
			Port:       cfg.QdrantPort,
			APIKey:     cfg.QdrantAPIKey,
			UseTLS:     cfg.QdrantAPIKey != "",
			Collection: cfg.QdrantCollection,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("qdrant store: %w", err)
		}
		return &stores{
			docs:    db.DocumentStore(),
			chunks:  chunks,
			label:   fmt.Sprintf("qdrant %s:%d/%s", cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantCollection),
			closers: []func() error{chunks.Close, db.Close},
		}, nil

	case domain.StoreBackendSQLite, "":
		db, err := sqlite.NewStore(dbDir)
		if err != nil {
			return nil, fmt.Errorf("sqlite store: %w", err)
		}
		return &stores{
			docs:    db.DocumentStore(),
			chunks:  db.ChunkStore(),
			label:   "sqlite " + db.Path(),
			closers: []func() error{db.Close},
		}, nil

	default:
		return nil, fmt.Errorf("%w: store backend %q", domain.ErrUnsupportedType, cfg.Backend)
	}
}
