package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"prism/internal/embed"
	"prism/internal/index"
	"prism/internal/llm"
	"prism/internal/rag"

	"github.com/spf13/cobra"
)

var (
	flagIndex      string
	flagOllama     string
	flagEmbedModel string
	flagChatModel  string
	flagBackend    string
	flagOpenAIURL  string
	flagDim        int
)

var rootCmd = &cobra.Command{
	Use:   "prism",
	Short: "Extract UI components from a source tree and query them semantically",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagIndex, "index", "", "index path (default <cwd>/.prism/index.json)")
	rootCmd.PersistentFlags().StringVar(&flagOllama, "ollama", "http://localhost:11434", "ollama base URL")
	rootCmd.PersistentFlags().StringVar(&flagEmbedModel, "embed-model", "nomic-embed-text", "embedding model")
	rootCmd.PersistentFlags().StringVar(&flagChatModel, "chat-model", "qwen3:8b", "generative model for answers")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "ollama", "embedding backend: ollama, openai, or offline")
	rootCmd.PersistentFlags().StringVar(&flagOpenAIURL, "openai-url", "", "base URL for the openai backend (default hosted API)")
	rootCmd.PersistentFlags().IntVar(&flagDim, "dim", embed.DefaultDim, "offline fallback vector width")
}

// resolveIndexPath applies the --index default.
func resolveIndexPath() (string, error) {
	if flagIndex != "" {
		return flagIndex, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, ".prism", "index.json"), nil
}

func embedConfig() embed.Config {
	return embed.Config{
		Backend:    embed.Backend(flagBackend),
		OllamaURL:  flagOllama,
		Model:      flagEmbedModel,
		OpenAIBase: flagOpenAIURL,
		OpenAIKey:  os.Getenv("OPENAI_API_KEY"),
		Dim:        flagDim,
	}
}

// loadEngine opens the persisted index and wires the query surface.
// The generation backend is attached only when the caller needs the
// answer path.
func loadEngine(withGenerator bool) (*rag.Engine, error) {
	indexPath, err := resolveIndexPath()
	if err != nil {
		return nil, err
	}

	idx, err := index.Load(indexPath)
	if err != nil {
		return nil, fmt.Errorf("%w\nRun 'prism index <path>' first to build the index", err)
	}

	provider, err := embed.New(embedConfig())
	if err != nil {
		return nil, err
	}

	var gen llm.Generator
	if withGenerator {
		gen = llm.NewOllama(flagOllama, flagChatModel, llm.DefaultOptions(), 0)
	}

	return rag.NewEngine(idx, provider, gen, rag.Options{}), nil
}
