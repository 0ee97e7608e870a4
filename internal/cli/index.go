package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"medlit/internal/contextutil"
	"medlit/internal/models"
)

var indexCmd = &cobra.Command{
	Use:   "index [documents.jsonl]",
	Short: "Index normalized documents from a JSONL file",
	Long: `Reads one normalized document per line, chunks each abstract by
section, embeds the chunks, and upserts them into the index. Documents
whose content is unchanged since the last run are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [uid]",
	Short: "Remove a document and its chunks from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	app, err := setup()
	if err != nil {
		return err
	}
	ctx := contextutil.WithLogger(context.Background(), slog.Default().With("cmd", "index"))

	if err := app.idx.EnsureCollection(ctx, app.cfg.QdrantVectorSize); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	docs, err := readDocuments(args[0])
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		cmd.Println("No documents to index.")
		return nil
	}

	stats, err := app.pipeline.IndexAll(ctx, docs)
	if stats != nil {
		data, merr := json.MarshalIndent(stats, "", "  ")
		if merr == nil {
			cmd.Println(string(data))
		}
	}
	return err
}

func runDelete(cmd *cobra.Command, args []string) error {
	app, err := setup()
	if err != nil {
		return err
	}
	if err := app.pipeline.DeleteDocument(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}

// readDocuments parses a JSONL file of normalized documents.
func readDocuments(path string) ([]models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	var docs []models.Document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var doc models.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("invalid document on line %d: %w", line, err)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return docs, nil
}
