package cmd

import (
	"fmt"
	"strings"

	"prism/internal/search"

	"github.com/spf13/cobra"
)

var (
	flagAskScope string
	flagAskK     int
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question grounded in the indexed components",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		engine, err := loadEngine(true)
		if err != nil {
			return err
		}

		resp, err := engine.Answer(cmd.Context(), question, search.ParseScope(flagAskScope), flagAskK)
		if err != nil {
			return err
		}

		fmt.Println(resp.Answer)
		if len(resp.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, s := range resp.Sources {
				fmt.Printf("  %-24s %.3f  %s\n", s.Name, s.Score, s.File)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&flagAskScope, "scope", "all", "scope filter: all, samples, or core")
	askCmd.Flags().IntVar(&flagAskK, "k", 5, "number of components to ground the answer on")
	rootCmd.AddCommand(askCmd)
}
