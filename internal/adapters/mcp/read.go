package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"budgetree/internal/application/commands"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// RegisterReadTools adds all read-only budget tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, repo ports.BudgetRepository, searcher ports.CatalogSearcher) {
	s.AddTool(treeTool(), treeHandler(repo))
	s.AddTool(getNodeTool(), getNodeHandler(repo))
	s.AddTool(searchCatalogTool(), searchCatalogHandler(repo, searcher))
	s.AddTool(listBlocksTool(), listBlocksHandler(repo))
	s.AddTool(listCatalogTool(), listCatalogHandler(repo))
}

// --- tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("tree",
		mcp.WithDescription("Display the budget as an indented tree with paths, node ids and values. Stage values are the sum of their items."),
	)
}

func treeHandler(repo ports.BudgetRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewShowTreeCommand(repo, nil).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(result.All) == 0 {
			return mcp.NewToolResultText("Budget is empty."), nil
		}

		var sb strings.Builder
		if result.Project.Name != "" {
			fmt.Fprintf(&sb, "%s (reference %s)\n", result.Project.Name, formatDate(result.Project.ReferenceDate))
		}
		domain.Walk(result.Forest, func(tn *domain.TreeNode, depth int) bool {
			sb.WriteString(strings.Repeat("  ", depth))
			sb.WriteString(formatNode(tn.Node))
			sb.WriteByte('\n')
			return true
		})
		fmt.Fprintf(&sb, "Total: %s\n", result.Total.StringFixed(2))
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- get_node ---

func getNodeTool() mcp.Tool {
	return mcp.NewTool("get_node",
		mcp.WithDescription("Show every field of a node, including its catalog reference and calculation memory."),
		mcp.WithString("node",
			mcp.Description("Node id or dotted path (e.g. 1.2.3)"),
			mcp.Required(),
		),
	)
}

func getNodeHandler(repo ports.BudgetRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		n, err := commands.NewGetNodeCommand(repo, req.GetString("node", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "id: %s\npath: %s\nkind: %s\nlabel: %s\nvalue: %s\n", n.ID, n.Path, n.Kind, n.Label, n.Value.StringFixed(2))
		if n.IsItem() {
			fmt.Fprintf(&sb, "quantity: %s\nunit: %s\nunit price: %s\n", n.Quantity, n.Unit, n.UnitPrice.StringFixed(2))
			if n.Ref != nil {
				fmt.Fprintf(&sb, "reference: %s\n", formatEntry(*n.Ref))
			}
			if b := n.Breakdown; b != nil {
				fmt.Fprintf(&sb, "breakdown: material %s%%, labor %s%%, others %s%%\n", b.Material, b.Labor, b.Others)
			}
			if n.Memory != "" {
				fmt.Fprintf(&sb, "memory:\n%s\n", n.Memory)
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- search_catalog ---

func searchCatalogTool() mcp.Tool {
	return mcp.NewTool("search_catalog",
		mcp.WithDescription("Search the price catalog (user entries first, then SINAPI/SICRO). Use the returned code with add_item or replace_item."),
		mcp.WithString("query",
			mcp.Description("Search query, at least 3 characters"),
			mcp.Required(),
		),
	)
}

func searchCatalogHandler(repo ports.BudgetRepository, searcher ports.CatalogSearcher) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewSearchCatalogCommand(repo, searcher, req.GetString("query", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(result.Entries, formatEntry)
	}
}

// --- list_blocks ---

func listBlocksTool() mcp.Tool {
	return mcp.NewTool("list_blocks",
		mcp.WithDescription("List saved blocks (reusable stage templates), newest first."),
		mcp.WithString("filter",
			mcp.Description("Only blocks whose name contains this text"),
		),
	)
}

func listBlocksHandler(repo ports.BudgetRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		blocks, err := commands.NewListBlocksCommand(repo, req.GetString("filter", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(blocks, formatBlock)
	}
}

// --- list_catalog ---

func listCatalogTool() mcp.Tool {
	return mcp.NewTool("list_catalog",
		mcp.WithDescription("List the user's own catalog entries."),
	)
}

func listCatalogHandler(repo ports.BudgetRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entries, err := commands.NewListCatalogCommand(repo).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(entries, formatEntry)
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatNode(n domain.Node) string {
	if n.IsStage() {
		return fmt.Sprintf("%s  %s  (stage, %s)  [%s]", n.Path, n.Label, n.Value.StringFixed(2), n.ID)
	}
	return fmt.Sprintf("%s  %s  %s %s x %s = %s  [%s]",
		n.Path, n.Label, n.Quantity, n.Unit, n.UnitPrice.StringFixed(2), n.Value.StringFixed(2), n.ID)
}

func formatEntry(e domain.CatalogEntry) string {
	return fmt.Sprintf("%s  %s  %s  %s/%s  %s", e.Source, e.Code, e.Description, e.Price.StringFixed(2), e.Unit, formatDate(e.Date))
}

func formatBlock(b domain.Block) string {
	return fmt.Sprintf("%s  %s  (%d nodes, %s)", b.ID, b.Name, b.ItemCount(), b.CreatedAt.Format("2006-01-02 15:04"))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "undated"
	}
	return t.Format(domain.DateLayout)
}
