package views

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"budgetree/internal/application/search"
	"budgetree/internal/domain"
)

// openSearch returns a search view for inserting a root item, with the
// project and the reference catalog already loaded as the latest result
func openSearch(t *testing.T, purpose SearchPurpose, target *domain.Node, rel domain.Relation, nodes ...domain.Node) (*SearchModel, func() []domain.Node) {
	t.Helper()
	store := openTestStore(t, nodes...)
	m := NewSearchModel(store, nil)
	m.Open(purpose, target, rel)

	project, err := store.LoadProject(context.Background())
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	m.Update(searchProjectMsg{project})
	m.Update(SearchResultMsg(search.Result{Seq: m.seq, Query: "tapume", Entries: domain.ReferenceCatalog()}))

	load := func() []domain.Node {
		nodes, err := store.LoadNodes(context.Background())
		if err != nil {
			t.Fatalf("LoadNodes failed: %v", err)
		}
		return nodes
	}
	return m, load
}

func TestSearchModel_DropsStaleResults(t *testing.T) {
	m, _ := openSearch(t, SearchInsert, nil, domain.RelationRoot)
	want := len(m.entries)

	m.Update(SearchResultMsg(search.Result{Seq: m.seq + 1, Query: "old"}))
	if len(m.entries) != want {
		t.Errorf("stale result replaced the entries: got %d, want %d", len(m.entries), want)
	}
}

func TestSearchModel_InsertWithoutConflict(t *testing.T) {
	m, load := openSearch(t, SearchInsert, nil, domain.RelationRoot)

	// First reference entry is dated on the reference date itself
	_, cmd := m.Update(keyPress("enter"))
	if cmd == nil {
		t.Fatal("expected an insert command")
	}
	reload, ok := cmd().(ReloadMsg)
	if !ok || reload.IsErr {
		t.Fatalf("unexpected result %#v", reload)
	}

	nodes := load()
	if len(nodes) != 1 || nodes[0].ID != reload.SelectID {
		t.Fatalf("nodes = %+v, want the new item selected", nodes)
	}
	if nodes[0].Ref == nil || nodes[0].Ref.Code != "98567" {
		t.Errorf("item not linked to the picked entry: %+v", nodes[0].Ref)
	}
}

func TestSearchModel_ConflictModal(t *testing.T) {
	tests := []struct {
		name      string
		answer    string
		wantNodes int
		wantMsg   string
	}{
		{"use newer price", "y", 1, "Created item"},
		{"keep budget", "n", 0, "Kept the budget as it is"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, load := openSearch(t, SearchInsert, nil, domain.RelationRoot)

			m.Update(keyPress("down")) // 98568, priced in 2024
			_, cmd := m.Update(keyPress("enter"))
			if cmd != nil {
				t.Fatal("a newer entry must ask before inserting")
			}
			if !strings.Contains(m.View(), "Newer price version") {
				t.Fatal("conflict modal not shown")
			}

			_, cmd = m.Update(keyPress(tt.answer))
			if cmd == nil {
				t.Fatal("expected a command after answering")
			}
			reload := cmd().(ReloadMsg)
			if !strings.Contains(reload.Message, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", reload.Message, tt.wantMsg)
			}
			if got := len(load()); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
		})
	}
}

func TestSearchModel_ReplaceKeepsQuantity(t *testing.T) {
	item := domain.Node{
		ID: "i1", Path: "1", Kind: domain.KindItem, Label: "Manual", Unit: "un",
		Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(10),
	}
	m, load := openSearch(t, SearchReplace, &item, domain.RelationReplace, item)

	m.Update(keyPress("down"))
	m.Update(keyPress("down")) // 98569, dated on the reference date
	_, cmd := m.Update(keyPress("enter"))
	if cmd == nil {
		t.Fatal("expected a replace command")
	}
	if reload := cmd().(ReloadMsg); reload.IsErr {
		t.Fatalf("replace failed: %s", reload.Message)
	}

	nodes := load()
	if len(nodes) != 1 {
		t.Fatalf("nodes = %d, want 1", len(nodes))
	}
	got := nodes[0]
	if got.ID != "i1" || !got.Quantity.Equal(decimal.NewFromInt(3)) {
		t.Errorf("replace lost identity or quantity: %+v", got)
	}
	if got.Ref == nil || got.Ref.Code != "98569" {
		t.Errorf("item not repriced from 98569: %+v", got.Ref)
	}
}

func TestSearchModel_TabCyclesInsertPosition(t *testing.T) {
	stage := domain.Node{ID: "s1", Path: "1", Kind: domain.KindStage, Label: "Fundação"}
	m, _ := openSearch(t, SearchInsert, &stage, domain.RelationChild, stage)

	if got := m.relations[m.relation]; got != domain.RelationChild {
		t.Fatalf("initial relation = %s, want child", got)
	}
	m.Update(keyPress("tab"))
	if got := m.relations[m.relation]; got != domain.RelationSibling {
		t.Errorf("relation after tab = %s, want sibling", got)
	}
}
