package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"medlit/internal/chunker"
	"medlit/internal/indexer"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index size and version",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	app, err := setup()
	if err != nil {
		return err
	}

	count, err := app.idx.Count(context.Background())
	if err != nil {
		return fmt.Errorf("failed to count points: %w", err)
	}

	version := indexer.IndexVersion(app.cfg.EmbeddingModelName, chunker.Config{
		TargetTokens:     app.cfg.ChunkTargetTokens,
		HardMaxTokens:    app.cfg.ChunkHardMaxTokens,
		MinSectionTokens: app.cfg.ChunkMinSectionTokens,
		OverlapTokens:    app.cfg.ChunkOverlapTokens,
	})

	cmd.Printf("Collection:    %s\n", app.cfg.QdrantCollection)
	cmd.Printf("Points:        %d\n", count)
	cmd.Printf("Index version: %s\n", version)
	cmd.Printf("Chunker:       %s\n", chunker.Version)
	cmd.Printf("Embedding:     %s (%d dims)\n", app.cfg.EmbeddingModelName, app.cfg.QdrantVectorSize)
	return nil
}
