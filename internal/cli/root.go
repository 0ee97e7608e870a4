// Package cli implements the medlit command line interface.
package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"medlit/internal/chunker"
	"medlit/internal/config"
	"medlit/internal/embed"
	"medlit/internal/index"
	"medlit/internal/indexer"
	"medlit/internal/search"
	"medlit/internal/storage"
	"medlit/internal/tokenizer"
)

var rootCmd = &cobra.Command{
	Use:   "medlit",
	Short: "Section-aware retrieval over biomedical literature",
	Long: `medlit chunks normalized literature abstracts by section, indexes
them into Qdrant, and serves hybrid lexical/semantic search with
document reconstruction.`,
	SilenceUsage: true,
}

// app holds the wired services shared by commands. Populated by setup.
type app struct {
	cfg      *config.Config
	db       *sql.DB
	docRepo  *storage.DocumentRepo
	chkRepo  *storage.ChunkRepo
	idx      *index.QdrantIndex
	embedder *embed.Client
	chunker  *chunker.AbstractChunker
	pipeline *indexer.Pipeline
	engine   *search.Engine
}

var services *app

// setup loads configuration, configures logging, and wires the services.
// Commands that touch the index or database call it from RunE.
func setup() (*app, error) {
	if services != nil {
		return services, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	idx, err := index.NewQdrantIndex(cfg.QdrantURL, cfg.QdrantCollection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	embedder := embed.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)

	tok := tokenizer.NewWithFallback(cfg.TokenizerEncoding, slog.Default())
	ch := chunker.New(chunker.Config{
		TargetTokens:     cfg.ChunkTargetTokens,
		HardMaxTokens:    cfg.ChunkHardMaxTokens,
		MinSectionTokens: cfg.ChunkMinSectionTokens,
		OverlapTokens:    cfg.ChunkOverlapTokens,
	}, tok)

	docRepo := storage.NewDocumentRepo(db)
	chkRepo := storage.NewChunkRepo(db)

	pipeline, err := indexer.NewPipeline(docRepo, chkRepo, ch, embedder, idx, cfg.IndexerConcurrency)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create indexing pipeline: %w", err)
	}

	services = &app{
		cfg:      cfg,
		db:       db,
		docRepo:  docRepo,
		chkRepo:  chkRepo,
		idx:      idx,
		embedder: embedder,
		chunker:  ch,
		pipeline: pipeline,
		engine:   search.NewEngine(idx, embedder),
	}
	return services, nil
}

// Execute runs the root command.
func Execute() {
	defer func() {
		if services != nil {
			services.pipeline.Release()
			_ = services.db.Close()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
