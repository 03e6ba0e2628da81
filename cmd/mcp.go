package cmd

import (
	"context"
	"fmt"
	"strings"

	"prism/internal/rag"
	"prism/internal/search"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing component search and answer tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(true)
		if err != nil {
			return err
		}

		s := mcpserver.NewMCPServer("prism", "1.0.0", mcpserver.WithToolCapabilities(false))
		s.AddTool(searchComponentsTool(), makeSearchHandler(engine))
		s.AddTool(askComponentsTool(), makeAskHandler(engine))

		return mcpserver.ServeStdio(s)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func searchComponentsTool() mcp.Tool {
	return mcp.NewTool("search_components",
		mcp.WithDescription("Semantically search the indexed UI components. Returns ranked components with file paths, summaries, and similarity scores."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language query describing the component you're looking for"),
		),
		mcp.WithString("scope",
			mcp.Description("Scope filter: all, samples, or core (default all)"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of components to return (default 10)"),
		),
	)
}

func askComponentsTool() mcp.Tool {
	return mcp.NewTool("ask_components",
		mcp.WithDescription("Answer a question about the indexed UI components, grounded in retrieved component context."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Question about the component library"),
		),
		mcp.WithString("scope",
			mcp.Description("Scope filter: all, samples, or core (default all)"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of components to ground the answer on (default 5)"),
		),
	)
}

func makeSearchHandler(engine *rag.Engine) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		scope := search.ParseScope(req.GetString("scope", "all"))
		k := req.GetInt("k", 10)

		resp, err := engine.Search(ctx, query, scope, k)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatResults(query, resp)), nil
	}
}

func makeAskHandler(engine *rag.Engine) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		scope := search.ParseScope(req.GetString("scope", "all"))
		k := req.GetInt("k", 5)

		resp, err := engine.Answer(ctx, query, scope, k)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("answer failed: %v", err)), nil
		}

		var sb strings.Builder
		sb.WriteString(resp.Answer)
		if len(resp.Sources) > 0 {
			sb.WriteString("\n\n**Sources:**\n")
			for _, s := range resp.Sources {
				fmt.Fprintf(&sb, "- %s (%s, score %.3f)\n", s.Name, s.File, s.Score)
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func formatResults(query string, resp *rag.SearchResponse) string {
	if len(resp.Results) == 0 {
		return fmt.Sprintf("No components found for query: %q (pool: %d)", query, resp.Pool)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Results for %q (%d of %d in scope)\n\n", query, len(resp.Results), resp.Pool)
	for i, r := range resp.Results {
		rec := r.Record
		fmt.Fprintf(&sb, "### %d. `%s` — %s (score %.3f)\n\n", i+1, rec.Name, rec.FilePath, r.Score)
		sb.WriteString(rec.Summary)
		sb.WriteString("\n\n```jsx\n")
		sb.WriteString(rec.CodeSnippet)
		sb.WriteString("\n```\n\n")
	}
	return sb.String()
}
