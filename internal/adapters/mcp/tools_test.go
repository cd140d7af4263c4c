package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"budgetree/internal/adapters/sqlite"
	"budgetree/internal/domain"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "budget.db"),
		sqlite.WithDefaultProject(domain.Project{
			Name:          "Obra teste",
			ReferenceDate: time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC),
		}))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func call(t *testing.T, handler server.ToolHandlerFunc, args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned a protocol error: %v", err)
	}
	var sb strings.Builder
	for _, c := range res.Content {
		if text, ok := c.(mcp.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String(), res.IsError
}

func TestTools_BuildAndMove(t *testing.T) {
	store := newTestStore(t)

	if out, isErr := call(t, addStageHandler(store), map[string]any{"label": "Fundação"}); isErr {
		t.Fatalf("add_stage failed: %s", out)
	}
	if out, isErr := call(t, addStageHandler(store), map[string]any{"label": "Estrutura"}); isErr {
		t.Fatalf("add_stage failed: %s", out)
	}
	if out, isErr := call(t, addItemHandler(store, nil), map[string]any{"label": "Estaca", "relation": "child", "target": "1"}); isErr {
		t.Fatalf("add_item failed: %s", out)
	}

	// Move stage 1 inside stage 2 through a drop offset
	if out, isErr := call(t, moveHandler(store), map[string]any{"node": "1", "target": "2", "offset": 0.5}); isErr {
		t.Fatalf("move failed: %s", out)
	}

	tree, _ := call(t, treeHandler(store), nil)
	for _, want := range []string{"1  Estrutura", "  1.1  Fundação", "    1.1.1  Estaca"} {
		if !strings.Contains(tree, want) {
			t.Errorf("tree missing %q:\n%s", want, tree)
		}
	}

	// Moving a stage into its own descendant is refused
	if out, isErr := call(t, moveHandler(store), map[string]any{"node": "1", "target": "1.1", "mode": "inside"}); !isErr {
		t.Errorf("expected a cycle error, got %s", out)
	}
}

func TestTools_CatalogConflict(t *testing.T) {
	store := newTestStore(t)
	call(t, addStageHandler(store), map[string]any{"label": "Canteiro"})

	// 98568 is dated after the project reference date
	args := map[string]any{"code": "98568", "relation": "child", "target": "1"}
	out, isErr := call(t, addItemHandler(store, nil), args)
	if !isErr || !strings.Contains(out, "98568") {
		t.Fatalf("expected a version conflict, got %q", out)
	}

	args["on_conflict"] = "keep"
	if _, isErr := call(t, addItemHandler(store, nil), args); !isErr {
		t.Error("keep should abandon the insertion")
	}

	args["on_conflict"] = "use"
	if out, isErr := call(t, addItemHandler(store, nil), args); isErr {
		t.Fatalf("use should accept the entry: %s", out)
	}

	node, _ := call(t, getNodeHandler(store), map[string]any{"node": "1.1"})
	if !strings.Contains(node, "unit price: 285.50") || !strings.Contains(node, "98568") {
		t.Errorf("unexpected node:\n%s", node)
	}
}

func TestTools_UpdateAndDelete(t *testing.T) {
	store := newTestStore(t)
	call(t, addStageHandler(store), map[string]any{"label": "Pintura"})
	call(t, addItemHandler(store, nil), map[string]any{"label": "Látex", "relation": "child", "target": "1"})

	out, isErr := call(t, updateHandler(store), map[string]any{"node": "1.1", "quantity": "10", "unit_price": "12,50", "unit": "m²"})
	if isErr {
		t.Fatalf("update failed: %s", out)
	}

	tree, _ := call(t, treeHandler(store), nil)
	if !strings.Contains(tree, "Total: 125.00") {
		t.Errorf("expected total 125.00:\n%s", tree)
	}

	if out, isErr := call(t, updateHandler(store), map[string]any{"node": "1", "quantity": "2"}); !isErr {
		t.Errorf("stages should reject item fields, got %s", out)
	}

	out, isErr = call(t, deleteHandler(store), map[string]any{"node": "1"})
	if isErr || !strings.Contains(out, "1 nested") {
		t.Errorf("unexpected delete result %q", out)
	}
	if tree, _ := call(t, treeHandler(store), nil); !strings.Contains(tree, "empty") {
		t.Errorf("expected an empty budget, got:\n%s", tree)
	}
}

func TestTools_Blocks(t *testing.T) {
	store := newTestStore(t)
	call(t, addStageHandler(store), map[string]any{"label": "Canteiro"})
	call(t, addItemHandler(store, nil), map[string]any{"label": "Placa", "relation": "child", "target": "1"})
	call(t, addStageHandler(store), map[string]any{"label": "Obra B"})

	if out, isErr := call(t, saveBlockHandler(store), map[string]any{"node": "1", "name": "Canteiro padrão"}); isErr {
		t.Fatalf("save_block failed: %s", out)
	}
	blocks, err := store.ListBlocks(context.Background())
	if err != nil || len(blocks) != 1 {
		t.Fatalf("expected one block, got %v, %v", blocks, err)
	}

	if out, isErr := call(t, insertBlockHandler(store), map[string]any{"block": blocks[0].ID, "target": "2"}); isErr {
		t.Fatalf("insert_block failed: %s", out)
	}
	tree, _ := call(t, treeHandler(store), nil)
	if !strings.Contains(tree, "2.1  Canteiro") || !strings.Contains(tree, "2.1.1  Placa") {
		t.Errorf("block not grafted:\n%s", tree)
	}

	list, _ := call(t, listBlocksHandler(store), map[string]any{"filter": "padrão"})
	if !strings.Contains(list, "Canteiro padrão") {
		t.Errorf("unexpected block list %q", list)
	}
}
