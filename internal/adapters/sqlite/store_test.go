package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleNodes() []domain.Node {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Node{
		{ID: "s1", Path: "1", Kind: domain.KindStage, Label: "Serviços preliminares", Value: decimal.RequireFromString("480.00")},
		{
			ID:        "i1",
			Path:      "1.1",
			Kind:      domain.KindItem,
			Label:     "Tapume metálico",
			Quantity:  decimal.RequireFromString("1.6812"),
			Unit:      "m²",
			UnitPrice: decimal.RequireFromString("285.50"),
			Value:     decimal.RequireFromString("479.98260"),
			Memory:    "2 x 0,8406",
			Ref: &domain.CatalogEntry{
				ID:          "m2",
				Code:        "98568",
				Source:      domain.SourceSINAPI,
				Description: "Tapume metálico modular",
				Unit:        "m²",
				Price:       decimal.RequireFromString("285.50"),
				Type:        domain.TypeInput,
				Date:        date,
			},
			Breakdown: &domain.CostBreakdown{
				Material: decimal.NewFromInt(60),
				Labor:    decimal.RequireFromString("35.5"),
				Others:   decimal.RequireFromString("4.5"),
			},
		},
		{ID: "i2", Path: "1.2", Kind: domain.KindItem, Label: "Placa de obra", Quantity: decimal.NewFromInt(1), Unit: "un"},
	}
}

func TestStore_NodesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	want := sampleNodes()
	if err := s.ReplaceNodes(ctx, want); err != nil {
		t.Fatalf("ReplaceNodes failed: %v", err)
	}

	got, err := s.LoadNodes(ctx)
	if err != nil {
		t.Fatalf("LoadNodes failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d nodes, want %d", len(got), len(want))
	}

	for i := range want {
		w, g := want[i], got[i]
		if g.ID != w.ID || g.Path != w.Path || g.Kind != w.Kind || g.Label != w.Label || g.Unit != w.Unit || g.Memory != w.Memory {
			t.Errorf("node %d: got %+v, want %+v", i, g, w)
		}
		if !g.Value.Equal(w.Value) || !g.Quantity.Equal(w.Quantity) || !g.UnitPrice.Equal(w.UnitPrice) {
			t.Errorf("node %s: amounts differ: %s/%s/%s vs %s/%s/%s", w.ID, g.Value, g.Quantity, g.UnitPrice, w.Value, w.Quantity, w.UnitPrice)
		}
		if (g.Ref == nil) != (w.Ref == nil) || (g.Breakdown == nil) != (w.Breakdown == nil) {
			t.Errorf("node %s: optional parts differ", w.ID)
		}
	}

	ref := got[1].Ref
	if ref.Code != "98568" || !ref.Price.Equal(decimal.RequireFromString("285.5")) || !ref.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("reference not restored: %+v", ref)
	}
	if !got[1].Breakdown.Labor.Equal(decimal.RequireFromString("35.5")) {
		t.Errorf("breakdown not restored: %+v", got[1].Breakdown)
	}
}

func TestStore_ReplaceIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.ReplaceNodes(ctx, sampleNodes()); err != nil {
		t.Fatalf("ReplaceNodes failed: %v", err)
	}

	// Duplicate paths violate the unique index halfway through the insert
	broken := []domain.Node{
		{ID: "x", Path: "1", Kind: domain.KindStage, Label: "x"},
		{ID: "y", Path: "1", Kind: domain.KindStage, Label: "y"},
	}
	if err := s.ReplaceNodes(ctx, broken); err == nil {
		t.Fatal("expected an error for duplicate paths")
	}

	got, err := s.LoadNodes(ctx)
	if err != nil {
		t.Fatalf("LoadNodes failed: %v", err)
	}
	if len(got) != 3 || got[0].ID != "s1" {
		t.Errorf("a failed replace must leave the old list in place, got %v", got)
	}
}

func TestStore_LoadNodesSortsByPath(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	nodes := []domain.Node{
		{ID: "c", Path: "1.10", Kind: domain.KindItem},
		{ID: "a", Path: "1", Kind: domain.KindStage},
		{ID: "b", Path: "1.9", Kind: domain.KindItem},
	}
	if err := s.ReplaceNodes(ctx, nodes); err != nil {
		t.Fatalf("ReplaceNodes failed: %v", err)
	}
	got, _ := s.LoadNodes(ctx)
	if got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Errorf("unexpected order %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestStore_Project(t *testing.T) {
	ctx := context.Background()
	ref := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
	s, err := Open(filepath.Join(t.TempDir(), "p.db"), WithDefaultProject(domain.Project{Name: "default", ReferenceDate: ref}))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	p, err := s.LoadProject(ctx)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if p.Name != "default" || !p.ReferenceDate.Equal(ref) {
		t.Errorf("expected the default project, got %+v", p)
	}

	saved := domain.Project{Name: "Residencial Aurora", Area: "1.250 m²", Status: "draft", Version: "3", ReferenceDate: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)}
	if err := s.SaveProject(ctx, saved); err != nil {
		t.Fatalf("SaveProject failed: %v", err)
	}
	p, _ = s.LoadProject(ctx)
	if p.Name != saved.Name || p.Area != saved.Area || p.Version != "3" || !p.ReferenceDate.Equal(saved.ReferenceDate) {
		t.Errorf("got %+v, want %+v", p, saved)
	}
}

func TestStore_Blocks(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	block, err := domain.ExtractBlock(sampleNodes(), "s1", "Preliminares", created)
	if err != nil {
		t.Fatalf("ExtractBlock failed: %v", err)
	}
	if err := s.SaveBlock(ctx, block); err != nil {
		t.Fatalf("SaveBlock failed: %v", err)
	}

	got, err := s.GetBlock(ctx, block.ID)
	if err != nil {
		t.Fatalf("GetBlock failed: %v", err)
	}
	if got.Name != "Preliminares" || !got.CreatedAt.Equal(created) || got.ItemCount() != 3 {
		t.Errorf("unexpected block %+v", got)
	}
	for i, n := range got.Nodes {
		if n.ID != block.Nodes[i].ID || n.Path != block.Nodes[i].Path {
			t.Errorf("node %d: got %s@%s, want %s@%s", i, n.ID, n.Path, block.Nodes[i].ID, block.Nodes[i].Path)
		}
	}

	// Saving again with the same id replaces the block
	block.Name = "Renamed"
	if err := s.SaveBlock(ctx, block); err != nil {
		t.Fatalf("SaveBlock failed: %v", err)
	}
	all, err := s.ListBlocks(ctx)
	if err != nil {
		t.Fatalf("ListBlocks failed: %v", err)
	}
	if len(all) != 1 || all[0].Name != "Renamed" || len(all[0].Nodes) != 3 {
		t.Errorf("unexpected blocks %+v", all)
	}

	if err := s.DeleteBlock(ctx, block.ID); err != nil {
		t.Fatalf("DeleteBlock failed: %v", err)
	}
	if _, err := s.GetBlock(ctx, block.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteBlock(ctx, block.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestStore_UserCatalog(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	entry := domain.CatalogEntry{
		ID:          "u1",
		Code:        "P-98568",
		Source:      domain.SourceUser,
		Description: "Tapume metálico (preço negociado)",
		Unit:        "m²",
		Price:       decimal.RequireFromString("250.10"),
		Type:        domain.TypeInput,
		Date:        time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := s.SaveUserEntry(ctx, entry); err != nil {
		t.Fatalf("SaveUserEntry failed: %v", err)
	}

	entries, err := s.ListUserEntries(ctx)
	if err != nil {
		t.Fatalf("ListUserEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0]
	if got.Code != entry.Code || got.Source != domain.SourceUser || !got.Price.Equal(entry.Price) || !got.Date.Equal(entry.Date) {
		t.Errorf("got %+v, want %+v", got, entry)
	}

	if err := s.DeleteUserEntry(ctx, "u1"); err != nil {
		t.Fatalf("DeleteUserEntry failed: %v", err)
	}
	if err := s.DeleteUserEntry(ctx, "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ImportDocument(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	doc := ports.Document{
		Project:     domain.Project{Name: "Importado", ReferenceDate: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)},
		Nodes:       sampleNodes(),
		Blocks:      []domain.Block{{ID: "b1", Name: "Canteiro", CreatedAt: time.Now(), Nodes: sampleNodes()[:1]}},
		UserCatalog: []domain.CatalogEntry{{ID: "u1", Code: "P-1", Source: domain.SourceUser, Unit: "un", Type: domain.TypeInput}},
	}
	if err := s.ImportDocument(ctx, doc); err != nil {
		t.Fatalf("ImportDocument failed: %v", err)
	}

	nodes, _ := s.LoadNodes(ctx)
	blocks, _ := s.ListBlocks(ctx)
	entries, _ := s.ListUserEntries(ctx)
	p, _ := s.LoadProject(ctx)
	if len(nodes) != 3 || len(blocks) != 1 || len(entries) != 1 || p.Name != "Importado" {
		t.Errorf("import stored %d nodes, %d blocks, %d entries, project %q", len(nodes), len(blocks), len(entries), p.Name)
	}
}

func TestStore_ImportDocumentRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if err := s.ReplaceNodes(ctx, sampleNodes()); err != nil {
		t.Fatalf("ReplaceNodes failed: %v", err)
	}
	before, _ := s.LoadProject(ctx)

	doc := ports.Document{
		Project: domain.Project{Name: "Importado"},
		Nodes: []domain.Node{
			{ID: "dup", Path: "1", Kind: domain.KindStage, Label: "a"},
			{ID: "dup", Path: "2", Kind: domain.KindStage, Label: "b"},
		},
		UserCatalog: []domain.CatalogEntry{{ID: "u1", Code: "P-1"}},
	}
	if err := s.ImportDocument(ctx, doc); err == nil {
		t.Fatal("expected a constraint error for duplicate ids")
	}

	after, _ := s.LoadProject(ctx)
	if after.Name != before.Name {
		t.Errorf("project name = %q after a failed import, want %q", after.Name, before.Name)
	}
	nodes, _ := s.LoadNodes(ctx)
	if len(nodes) != 3 || nodes[0].ID != "s1" {
		t.Errorf("nodes changed after a failed import: %+v", nodes)
	}
	if entries, _ := s.ListUserEntries(ctx); len(entries) != 0 {
		t.Errorf("catalog changed after a failed import: %d entries", len(entries))
	}
}
