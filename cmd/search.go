package cmd

import (
	"fmt"
	"strings"

	"prism/internal/search"

	"github.com/spf13/cobra"
)

var (
	flagScope string
	flagK     int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank indexed components against a natural-language query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		engine, err := loadEngine(false)
		if err != nil {
			return err
		}

		resp, err := engine.Search(cmd.Context(), query, search.ParseScope(flagScope), flagK)
		if err != nil {
			return err
		}

		if len(resp.Results) == 0 {
			fmt.Printf("No results for %q (pool: %d components)\n", query, resp.Pool)
			return nil
		}

		fmt.Printf("Top %d of %d components in scope %q:\n\n", len(resp.Results), resp.Pool, search.ParseScope(flagScope))
		for i, r := range resp.Results {
			fmt.Printf("%2d. %-24s %.3f  %s\n", i+1, r.Record.Name, r.Score, r.Record.FilePath)
			fmt.Printf("    %s\n", r.Record.Summary)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&flagScope, "scope", "all", "scope filter: all, samples, or core")
	searchCmd.Flags().IntVar(&flagK, "k", 10, "number of results")
	rootCmd.AddCommand(searchCmd)
}
