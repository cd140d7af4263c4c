package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func pricedBudget() []Node {
	nodes := sampleBudget()
	for i := range nodes {
		if nodes[i].Kind != KindItem {
			continue
		}
		nodes[i].Quantity = decimal.NewFromInt(4)
		nodes[i].UnitPrice = decimal.RequireFromString("12.50")
		nodes[i].Value = decimal.RequireFromString("50.00")
		nodes[i].Ref = &CatalogEntry{Code: "98567", Price: decimal.RequireFromString("12.50")}
	}
	return nodes
}

func TestExtractBlock(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	block, err := ExtractBlock(pricedBudget(), "b", "", now)
	if err != nil {
		t.Fatalf("ExtractBlock failed: %v", err)
	}

	if block.Name != "stage b" {
		t.Errorf("expected the name to default to the root label, got %q", block.Name)
	}
	if block.ItemCount() != 3 {
		t.Fatalf("expected 3 nodes, got %d", block.ItemCount())
	}

	wantPaths := map[string]string{"b": "1", "c": "1.1", "d": "1.2"}
	for _, n := range block.Nodes {
		if wantPaths[n.ID] != n.Path {
			t.Errorf("node %s: got path %s, want %s", n.ID, n.Path, wantPaths[n.ID])
		}
		if !n.Value.IsZero() || !n.UnitPrice.IsZero() {
			t.Errorf("node %s: values not zeroed (value %s, unit price %s)", n.ID, n.Value, n.UnitPrice)
		}
		if n.Kind == KindItem && !n.Quantity.Equal(decimal.NewFromInt(1)) {
			t.Errorf("node %s: expected quantity 1, got %s", n.ID, n.Quantity)
		}
		if n.Ref != nil && !n.Ref.Price.IsZero() {
			t.Errorf("node %s: reference price not zeroed", n.ID)
		}
	}
}

func TestExtractBlock_LeavesSourceUntouched(t *testing.T) {
	nodes := pricedBudget()
	if _, err := ExtractBlock(nodes, "b", "walls", time.Now()); err != nil {
		t.Fatalf("ExtractBlock failed: %v", err)
	}
	c, _ := FindNode(nodes, "c")
	if !c.UnitPrice.Equal(decimal.RequireFromString("12.50")) || !c.Ref.Price.Equal(decimal.RequireFromString("12.50")) {
		t.Error("extraction modified the live budget")
	}
}

func TestExtractBlock_Idempotent(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	first, err := ExtractBlock(pricedBudget(), "a", "x", now)
	if err != nil {
		t.Fatalf("ExtractBlock failed: %v", err)
	}
	second, err := ExtractBlock(pricedBudget(), "a", "x", now)
	if err != nil {
		t.Fatalf("ExtractBlock failed: %v", err)
	}

	if len(first.Nodes) != len(second.Nodes) {
		t.Fatalf("node counts differ: %d vs %d", len(first.Nodes), len(second.Nodes))
	}
	for i := range first.Nodes {
		a, b := first.Nodes[i], second.Nodes[i]
		if a.ID != b.ID || a.Path != b.Path || a.Kind != b.Kind || a.Label != b.Label {
			t.Errorf("node %d differs: %+v vs %+v", i, a, b)
		}
		if !a.Value.Equal(b.Value) || !a.Quantity.Equal(b.Quantity) || !a.UnitPrice.Equal(b.UnitPrice) {
			t.Errorf("node %d values differ", i)
		}
	}
}

func TestExtractBlock_Errors(t *testing.T) {
	if _, err := ExtractBlock(sampleBudget(), "c", "", time.Now()); !errors.Is(err, ErrNotStage) {
		t.Errorf("expected ErrNotStage for an item root, got %v", err)
	}
	if _, err := ExtractBlock(sampleBudget(), "zz", "", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func counter() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
}

func TestGraftBlock_Twice(t *testing.T) {
	block, err := ExtractBlock(pricedBudget(), "b", "", time.Now())
	if err != nil {
		t.Fatalf("ExtractBlock failed: %v", err)
	}
	templateIDs := map[string]bool{}
	for _, n := range block.Nodes {
		templateIDs[n.ID] = true
	}

	nodes := pricedBudget()
	var fresh []string
	for range 2 {
		var ids []string
		nodes, ids, err = GraftBlock(nodes, block, "f", nil)
		if err != nil {
			t.Fatalf("GraftBlock failed: %v", err)
		}
		fresh = append(fresh, ids...)
	}

	if len(nodes) != len(pricedBudget())+6 {
		t.Fatalf("expected 6 new nodes, got %d total", len(nodes))
	}
	if len(fresh) != 6 {
		t.Fatalf("expected 6 fresh ids, got %d", len(fresh))
	}
	seen := map[string]bool{}
	for _, id := range fresh {
		if seen[id] {
			t.Errorf("id %s issued twice", id)
		}
		if templateIDs[id] {
			t.Errorf("id %s reuses a template id", id)
		}
		seen[id] = true
	}
	for _, n := range block.Nodes {
		if !templateIDs[n.ID] {
			t.Errorf("stored block was modified: unexpected id %s", n.ID)
		}
	}
	assertInvariants(t, nodes)
}

func TestGraftBlock_Paths(t *testing.T) {
	block, err := ExtractBlock(sampleBudget(), "b", "", time.Now())
	if err != nil {
		t.Fatalf("ExtractBlock failed: %v", err)
	}

	got, ids, err := GraftBlock(sampleBudget(), block, "f", counter())
	if err != nil {
		t.Fatalf("GraftBlock failed: %v", err)
	}
	if fmt.Sprint(ids) != "[new-1 new-2 new-3]" {
		t.Errorf("unexpected ids %v", ids)
	}

	paths := pathsByID(got)
	want := map[string]string{"g": "2.1", "new-1": "2.2", "new-2": "2.2.1", "new-3": "2.2.2"}
	for id, p := range want {
		if paths[id] != p {
			t.Errorf("node %s: got %s, want %s", id, paths[id], p)
		}
	}
}

func TestGraftBlock_MultiRoot(t *testing.T) {
	block := Block{
		ID:   "blk",
		Name: "two roots",
		Nodes: []Node{
			stage("x", "1"),
			item("y", "1.1"),
			item("z", "2"),
		},
	}

	got, _, err := GraftBlock(sampleBudget(), block, "a", counter())
	if err != nil {
		t.Fatalf("GraftBlock failed: %v", err)
	}

	paths := pathsByID(got)
	want := map[string]string{"b": "1.1", "e": "1.2", "new-1": "1.3", "new-2": "1.3.1", "new-3": "1.4", "f": "2"}
	for id, p := range want {
		if paths[id] != p {
			t.Errorf("node %s: got %s, want %s", id, paths[id], p)
		}
	}
	assertInvariants(t, got)
}

func TestGraftBlock_Errors(t *testing.T) {
	block := Block{Nodes: []Node{stage("x", "1")}}

	tests := []struct {
		name    string
		block   Block
		target  string
		wantErr error
	}{
		{"empty block", Block{}, "a", ErrEmptyBlock},
		{"unknown target", block, "zz", ErrNotFound},
		{"item target", block, "c", ErrItemHasNoChildren},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ids, err := GraftBlock(sampleBudget(), tt.block, tt.target, counter())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if ids != nil || len(got) != len(sampleBudget()) {
				t.Error("expected the list back unchanged")
			}
		})
	}
}
