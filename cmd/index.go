package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"prism/internal/indexer"

	"github.com/spf13/cobra"
)

var (
	flagWorkers int
	flagNoCache bool
)

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Scan a source tree and build the component index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		indexPath := flagIndex
		if indexPath == "" {
			indexPath = filepath.Join(root, ".prism", "index.json")
		}
		if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
			return fmt.Errorf("create index directory: %w", err)
		}

		cachePath := ""
		if !flagNoCache {
			cachePath = filepath.Join(filepath.Dir(indexPath), "cache.db")
		}

		ix, err := indexer.New(indexer.Config{
			Root:        root,
			IndexPath:   indexPath,
			CachePath:   cachePath,
			CatalogPath: filepath.Join(filepath.Dir(indexPath), "catalog.md"),
			Workers:     flagWorkers,
			Embed:       embedConfig(),
		})
		if err != nil {
			return err
		}
		defer ix.Close()

		fmt.Printf("Indexing %s...\n", root)
		stats, err := ix.Run(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("\nDone in %s\n", stats.Elapsed.Round(time.Millisecond))
		fmt.Printf("  Files:      %d walked, %d parsed, %d skipped\n",
			stats.FilesWalked, stats.FilesParsed, stats.FilesSkipped)
		fmt.Printf("  Components: %d\n", stats.Components)
		fmt.Printf("  Embeddings: %d computed, %d cached, %d fallback\n",
			stats.Embedded, stats.CacheHits, stats.Fallbacks)
		fmt.Printf("  Index:      %s\n", indexPath)
		return nil
	},
}

func init() {
	indexCmd.Flags().IntVar(&flagWorkers, "workers", runtime.NumCPU(), "parallel workers")
	indexCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "skip the embedding cache")
	rootCmd.AddCommand(indexCmd)
}
