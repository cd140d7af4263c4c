package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"budgetree/internal/application"
	"budgetree/internal/application/commands"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

const onConflictDescription = "What to do when the catalog price is newer than the project reference date: use (accept it) or keep (abort). Omit to fail with an explanation."

// RegisterWriteTools adds all budget-changing tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, repo ports.BudgetRepository, searcher ports.CatalogSearcher, store ports.DocumentStore) {
	s.AddTool(addStageTool(), addStageHandler(repo))
	s.AddTool(addItemTool(), addItemHandler(repo, searcher))
	s.AddTool(replaceItemTool(), replaceItemHandler(repo, searcher))
	s.AddTool(moveTool(), moveHandler(repo))
	s.AddTool(updateTool(), updateHandler(repo))
	s.AddTool(deleteTool(), deleteHandler(repo))
	s.AddTool(saveBlockTool(), saveBlockHandler(repo))
	s.AddTool(insertBlockTool(), insertBlockHandler(repo))
	s.AddTool(deleteBlockTool(), deleteBlockHandler(repo))
	s.AddTool(saveToCatalogTool(), saveToCatalogHandler(repo))
	s.AddTool(deleteCatalogEntryTool(), deleteCatalogEntryHandler(repo))
	s.AddTool(exportTool(), exportHandler(repo, store))
	s.AddTool(importTool(), importHandler(repo, store))
}

// --- add_stage ---

func addStageTool() mcp.Tool {
	return mcp.NewTool("add_stage",
		mcp.WithDescription("Create a stage (grouping node). Relation root appends a top-level stage; sibling and child are relative to target."),
		mcp.WithString("label",
			mcp.Description("Stage label"),
			mcp.Required(),
		),
		relationOption(),
		mcp.WithString("target",
			mcp.Description("Target node id or path (required for sibling and child)"),
		),
	)
}

func addStageHandler(repo ports.BudgetRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rel, target, err := relationArgs(ctx, repo, req)
		if err != nil {
			return toolError(err)
		}
		result, err := commands.NewCreateStageCommand(repo, target, rel, req.GetString("label", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- add_item ---

func addItemTool() mcp.Tool {
	return mcp.NewTool("add_item",
		mcp.WithDescription("Create an item. Pass code to price it from the catalog (see search_catalog), or label for a manual item."),
		mcp.WithString("code",
			mcp.Description("Catalog entry code or id"),
		),
		mcp.WithString("label",
			mcp.Description("Label for a manual item (ignored when code is set)"),
		),
		relationOption(),
		mcp.WithString("target",
			mcp.Description("Target node id or path (required for sibling and child)"),
		),
		onConflictOption(),
	)
}

func addItemHandler(repo ports.BudgetRepository, searcher ports.CatalogSearcher) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rel, target, err := relationArgs(ctx, repo, req)
		if err != nil {
			return toolError(err)
		}

		code := req.GetString("code", "")
		if code == "" {
			result, err := commands.NewCreateItemCommand(repo, target, rel, req.GetString("label", "")).Execute(ctx)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(result.Message), nil
		}

		resolver, err := resolverArg(req)
		if err != nil {
			return toolError(err)
		}
		entry, err := commands.NewLookupEntryCommand(repo, searcher, code).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		result, err := commands.NewCreateCatalogItemCommand(repo, resolver, target, rel, entry).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- replace_item ---

func replaceItemTool() mcp.Tool {
	return mcp.NewTool("replace_item",
		mcp.WithDescription("Re-price an existing item from a catalog entry, keeping its id, position, quantity and memory."),
		mcp.WithString("node",
			mcp.Description("Item id or path"),
			mcp.Required(),
		),
		mcp.WithString("code",
			mcp.Description("Catalog entry code or id"),
			mcp.Required(),
		),
		onConflictOption(),
	)
}

func replaceItemHandler(repo ports.BudgetRepository, searcher ports.CatalogSearcher) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		node := req.GetString("node", "")
		if err := commands.ResolveRefs(ctx, repo, &node); err != nil {
			return toolError(err)
		}
		resolver, err := resolverArg(req)
		if err != nil {
			return toolError(err)
		}
		entry, err := commands.NewLookupEntryCommand(repo, searcher, req.GetString("code", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		result, err := commands.NewReplaceItemCommand(repo, resolver, node, entry).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- move ---

func moveTool() mcp.Tool {
	return mcp.NewTool("move",
		mcp.WithDescription("Move a node and its subtree before, after or inside a target. A node can never be moved into its own subtree and items cannot contain nodes."),
		mcp.WithString("node",
			mcp.Description("Id or path of the node to move"),
			mcp.Required(),
		),
		mcp.WithString("target",
			mcp.Description("Id or path of the target node"),
			mcp.Required(),
		),
		mcp.WithString("mode",
			mcp.Description("Where to place the node relative to target"),
			mcp.Enum("before", "after", "inside"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Alternative to mode: vertical drop position within the target row, 0 (top) to 1 (bottom)"),
		),
	)
}

func moveHandler(repo ports.BudgetRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		node, target := req.GetString("node", ""), req.GetString("target", "")
		if err := commands.ResolveRefs(ctx, repo, &node, &target); err != nil {
			return toolError(err)
		}

		var cmd *commands.MoveNodeCommand
		if _, ok := req.GetArguments()["offset"]; ok {
			cmd = commands.NewDropCommand(repo, node, target, req.GetFloat("offset", 0))
		} else {
			mode, err := application.ParseInsertMode(req.GetString("mode", ""))
			if err != nil {
				return toolError(err)
			}
			cmd = commands.NewMoveNodeCommand(repo, node, target, mode)
		}

		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- update ---

func updateTool() mcp.Tool {
	return mcp.NewTool("update",
		mcp.WithDescription("Edit a node. Stages only accept label; items accept every field. Omitted fields are left unchanged."),
		mcp.WithString("node",
			mcp.Description("Node id or path"),
			mcp.Required(),
		),
		mcp.WithString("label", mcp.Description("New label")),
		mcp.WithString("quantity", mcp.Description("Quantity (comma or dot decimal)")),
		mcp.WithString("unit", mcp.Description("Unit of measure")),
		mcp.WithString("unit_price", mcp.Description("Unit price")),
		mcp.WithString("memory", mcp.Description("Calculation memory text")),
		mcp.WithString("material", mcp.Description("Material share of the cost, in percent")),
		mcp.WithString("labor", mcp.Description("Labor share of the cost, in percent")),
		mcp.WithString("others", mcp.Description("Other costs share, in percent")),
	)
}

func updateHandler(repo ports.BudgetRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		node := req.GetString("node", "")
		if err := commands.ResolveRefs(ctx, repo, &node); err != nil {
			return toolError(err)
		}

		cmd := commands.NewUpdateNodeCommand(repo, node)
		cmd.Label = optionalString(req, "label")
		cmd.Quantity = optionalString(req, "quantity")
		cmd.Unit = optionalString(req, "unit")
		cmd.UnitPrice = optionalString(req, "unit_price")
		cmd.Memory = optionalString(req, "memory")

		breakdown, err := application.ParseBreakdown(
			req.GetString("material", ""), req.GetString("labor", ""), req.GetString("others", ""))
		if err != nil {
			return toolError(err)
		}
		cmd.Breakdown = breakdown

		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- delete ---

func deleteTool() mcp.Tool {
	return mcp.NewTool("delete",
		mcp.WithDescription("Delete a node together with all of its descendants. Remaining nodes are renumbered."),
		mcp.WithString("node",
			mcp.Description("Node id or path"),
			mcp.Required(),
		),
	)
}

func deleteHandler(repo ports.BudgetRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		node := req.GetString("node", "")
		if err := commands.ResolveRefs(ctx, repo, &node); err != nil {
			return toolError(err)
		}
		result, err := commands.NewDeleteCommand(repo, node).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- blocks ---

func saveBlockTool() mcp.Tool {
	return mcp.NewTool("save_block",
		mcp.WithDescription("Save a stage and its subtree as a reusable block. Values are zeroed and quantities reset to 1."),
		mcp.WithString("node",
			mcp.Description("Stage id or path"),
			mcp.Required(),
		),
		mcp.WithString("name",
			mcp.Description("Block name (defaults to the stage label)"),
		),
	)
}

func saveBlockHandler(repo ports.BudgetRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		node := req.GetString("node", "")
		if err := commands.ResolveRefs(ctx, repo, &node); err != nil {
			return toolError(err)
		}
		result, err := commands.NewSaveBlockCommand(repo, node, req.GetString("name", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

func insertBlockTool() mcp.Tool {
	return mcp.NewTool("insert_block",
		mcp.WithDescription("Insert a fresh copy of a saved block as the last child of a stage."),
		mcp.WithString("block",
			mcp.Description("Block id (see list_blocks)"),
			mcp.Required(),
		),
		mcp.WithString("target",
			mcp.Description("Stage id or path"),
			mcp.Required(),
		),
	)
}

func insertBlockHandler(repo ports.BudgetRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target := req.GetString("target", "")
		if err := commands.ResolveRefs(ctx, repo, &target); err != nil {
			return toolError(err)
		}
		result, err := commands.NewInsertBlockCommand(repo, req.GetString("block", ""), target).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

func deleteBlockTool() mcp.Tool {
	return mcp.NewTool("delete_block",
		mcp.WithDescription("Delete a saved block from the library."),
		mcp.WithString("block",
			mcp.Description("Block id"),
			mcp.Required(),
		),
	)
}

func deleteBlockHandler(repo ports.BudgetRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewDeleteBlockCommand(repo, req.GetString("block", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- user catalog ---

func saveToCatalogTool() mcp.Tool {
	return mcp.NewTool("save_to_catalog",
		mcp.WithDescription("Copy an item's current pricing into the user's own catalog."),
		mcp.WithString("node",
			mcp.Description("Item id or path"),
			mcp.Required(),
		),
	)
}

func saveToCatalogHandler(repo ports.BudgetRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		node := req.GetString("node", "")
		if err := commands.ResolveRefs(ctx, repo, &node); err != nil {
			return toolError(err)
		}
		result, err := commands.NewSaveToCatalogCommand(repo, node).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

func deleteCatalogEntryTool() mcp.Tool {
	return mcp.NewTool("delete_catalog_entry",
		mcp.WithDescription("Remove an entry from the user's own catalog."),
		mcp.WithString("entry",
			mcp.Description("Entry id (see list_catalog)"),
			mcp.Required(),
		),
	)
}

func deleteCatalogEntryHandler(repo ports.BudgetRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewDeleteCatalogEntryCommand(repo, req.GetString("entry", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- import/export ---

func exportTool() mcp.Tool {
	return mcp.NewTool("export",
		mcp.WithDescription("Write the whole budget (project, nodes, blocks, user catalog) to a JSON file."),
		mcp.WithString("path",
			mcp.Description("Destination file"),
			mcp.Required(),
		),
	)
}

func exportHandler(repo ports.BudgetRepository, store ports.DocumentStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewExportCommand(repo, store, req.GetString("path", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

func importTool() mcp.Tool {
	return mcp.NewTool("import",
		mcp.WithDescription("Replace the budget with the contents of a JSON file written by export."),
		mcp.WithString("path",
			mcp.Description("Source file"),
			mcp.Required(),
		),
	)
}

func importHandler(repo ports.BudgetRepository, store ports.DocumentStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewImportCommand(repo, store, req.GetString("path", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- argument helpers ---

func relationOption() mcp.ToolOption {
	return mcp.WithString("relation",
		mcp.Description("Placement relative to target (default root)"),
		mcp.Enum("root", "sibling", "child"),
	)
}

func onConflictOption() mcp.ToolOption {
	return mcp.WithString("on_conflict",
		mcp.Description(onConflictDescription),
		mcp.Enum("use", "keep"),
	)
}

// relationArgs parses relation and resolves target to a node id
func relationArgs(ctx context.Context, repo ports.BudgetRepository, req mcp.CallToolRequest) (domain.Relation, string, error) {
	rel, err := application.ParseRelation(req.GetString("relation", "root"))
	if err != nil {
		return rel, "", err
	}
	target := req.GetString("target", "")
	if rel == domain.RelationRoot {
		return rel, "", nil
	}
	if err := commands.ResolveRefs(ctx, repo, &target); err != nil {
		return rel, "", err
	}
	return rel, target, nil
}

// resolverArg maps on_conflict to a resolver; nil makes conflicts fail
func resolverArg(req mcp.CallToolRequest) (ports.ConflictResolver, error) {
	value := req.GetString("on_conflict", "")
	if value == "" {
		return nil, nil
	}
	decision, err := application.ParseConflictDecision(value)
	if err != nil {
		return nil, err
	}
	return application.StaticResolver{Decision: decision}, nil
}

func optionalString(req mcp.CallToolRequest, key string) *string {
	v, ok := req.GetArguments()[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	return &s
}
