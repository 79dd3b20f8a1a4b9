package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ttutta/dcma/internal/config"
	"github.com/ttutta/dcma/internal/conventions"
	"github.com/ttutta/dcma/internal/db"
	"github.com/ttutta/dcma/internal/domains"
	"github.com/ttutta/dcma/internal/embeddings"
	"github.com/ttutta/dcma/internal/impact"
	"github.com/ttutta/dcma/internal/search"
)

// app bundles the wired services shared by the server, serve and
// backfill commands.
type app struct {
	cfg         *config.Config
	database    *db.DB
	domains     *domains.Service
	conventions *conventions.Service
	impact      *impact.Analyzer
	search      *search.Service
}

func (a *app) Close() error {
	return a.database.Close()
}

// buildApp loads the config, opens the database, rebuilds the vector
// index from stored embeddings and wires the services together.
func buildApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `dcma init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	database, err := db.Open(filepath.Join(cfg.DataDir, "dcma.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	index, err := search.NewIndex(embeddings.ToChromemFunc(embedder))
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("creating vector index: %w", err)
	}

	docStore := domains.NewStore(database)
	convStore := conventions.NewStore(database)
	searchSvc := search.NewService(embedder, index, docStore, convStore)
	searchSvc.SetDefaults(cfg.TopK, cfg.SimilarityThreshold)

	n, err := searchSvc.Rebuild(context.Background())
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("rebuilding vector index: %w", err)
	}
	fmt.Fprintf(os.Stderr, "dcma: indexed %d embedded records\n", n)

	domainSvc := domains.NewService(docStore, searchSvc.DocumentSaved, searchSvc.DocumentsDeleted)
	convSvc := conventions.NewService(convStore, searchSvc.ConventionSaved, searchSvc.ConventionsDeleted)

	return &app{
		cfg:         cfg,
		database:    database,
		domains:     domainSvc,
		conventions: convSvc,
		impact:      impact.NewAnalyzer(domainSvc),
		search:      searchSvc,
	}, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, cfg.EmbeddingDimensions, cfg.OllamaBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
