package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"medlit/internal/search"
)

var (
	searchMode       string
	searchAlpha      float64
	searchLimit      int
	searchDocs       bool
	searchJSON       bool
	searchSource     string
	searchSection    string
	searchYearFrom   int
	searchYearTo     int
	searchMinQuality float64
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed literature",
	Long: `Searches indexed chunks. Hybrid mode blends semantic similarity
with lexical term matching; --alpha 1 is purely semantic, 0 purely
lexical. With --docs, chunk hits are reassembled into whole documents.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchMode, "mode", "hybrid", "search mode: semantic, lexical, or hybrid")
	searchCmd.Flags().Float64Var(&searchAlpha, "alpha", -1, "hybrid blend weight in [0,1]; default from config")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchDocs, "docs", false, "return reconstructed documents instead of chunks")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "restrict to one source corpus")
	searchCmd.Flags().StringVar(&searchSection, "section", "", "restrict to one section label")
	searchCmd.Flags().IntVar(&searchYearFrom, "year-from", 0, "earliest publication year")
	searchCmd.Flags().IntVar(&searchYearTo, "year-to", 0, "latest publication year")
	searchCmd.Flags().Float64Var(&searchMinQuality, "min-quality", 0, "minimum document quality score")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	app, err := setup()
	if err != nil {
		return err
	}
	query := args[0]
	ctx := context.Background()

	builder := search.NewFilterBuilder()
	if searchSource != "" {
		builder.Source(searchSource)
	}
	if searchSection != "" {
		builder.Section(searchSection)
	}
	if searchYearFrom != 0 || searchYearTo != 0 {
		builder.YearRange(searchYearFrom, searchYearTo)
	}
	if searchMinQuality > 0 {
		builder.MinQuality(searchMinQuality)
	}
	filters, err := builder.Build()
	if err != nil {
		return fmt.Errorf("invalid filters: %w", err)
	}

	limit := searchLimit
	if limit <= 0 {
		limit = app.cfg.SearchLimit
	}
	alpha := app.cfg.SearchAlpha
	if searchAlpha >= 0 {
		alpha = searchAlpha
	}

	opts := search.Options{
		Mode:    search.Mode(searchMode),
		Alpha:   &alpha,
		Filters: filters,
		Limit:   limit,
	}

	if searchDocs {
		docs, err := app.engine.SearchDocuments(ctx, query, opts)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if searchJSON {
			return printJSON(cmd, docs)
		}
		if len(docs) == 0 {
			cmd.Println("No results found.")
			return nil
		}
		for i, doc := range docs {
			cmd.Printf("  [%d] %s (%.3f)\n", i+1, doc.Title, doc.BestScore)
			cmd.Printf("      %s", doc.UID)
			if doc.SourceURL != "" {
				cmd.Printf("  %s", doc.SourceURL)
			}
			cmd.Println()
			cmd.Printf("      %s\n\n", truncate(doc.Abstract, 200))
		}
		return nil
	}

	hits, err := app.engine.SearchChunks(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if searchJSON {
		return printJSON(cmd, hits)
	}
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for i, hit := range hits {
		cmd.Printf("  [%d] %s [%s] (%.3f)\n", i+1, hit.Chunk.Title, hit.Chunk.Section, hit.Score)
		cmd.Printf("      %s #%s\n", hit.Chunk.ParentUID, hit.Chunk.ChunkID)
		cmd.Printf("      %s\n\n", truncate(hit.Chunk.Text, 200))
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
