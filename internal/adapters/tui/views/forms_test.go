package views

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"budgetree/internal/application/commands"
	"budgetree/internal/domain"
)

func TestAvailableRelations(t *testing.T) {
	stage := &domain.Node{ID: "s1", Kind: domain.KindStage}
	item := &domain.Node{ID: "i1", Kind: domain.KindItem}

	tests := []struct {
		name   string
		target *domain.Node
		want   []domain.Relation
	}{
		{"nothing selected", nil, []domain.Relation{domain.RelationRoot}},
		{"stage", stage, []domain.Relation{domain.RelationChild, domain.RelationSibling, domain.RelationRoot}},
		{"item", item, []domain.Relation{domain.RelationSibling, domain.RelationRoot}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := availableRelations(tt.target)
			if len(got) != len(tt.want) {
				t.Fatalf("availableRelations = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCreateModel_CreatesChildStage(t *testing.T) {
	store := openTestStore(t, twoStages()...)
	target := twoStages()[0]

	m := NewCreateModel(store)
	m.Reset(&target, domain.KindStage)
	m.form.SetValue(0, "Sapatas")

	_, cmd := m.Update(keyPress("enter"))
	if cmd == nil {
		t.Fatal("expected a create command")
	}
	reload, ok := cmd().(ReloadMsg)
	if !ok {
		t.Fatal("create should reload the tree")
	}

	nodes, err := store.LoadNodes(context.Background())
	if err != nil {
		t.Fatalf("LoadNodes failed: %v", err)
	}
	created, found := domain.FindNode(nodes, reload.SelectID)
	if !found {
		t.Fatal("created node not selected")
	}
	if created.Path != "1.2" || !created.IsStage() || created.Label != "Sapatas" {
		t.Errorf("created = %+v, want stage 1.2 Sapatas", created)
	}
}

func TestCreateModel_RequiresLabel(t *testing.T) {
	m := NewCreateModel(openTestStore(t))
	m.Reset(nil, domain.KindItem)

	_, cmd := m.Update(keyPress("enter"))
	if cmd != nil {
		t.Error("an empty label must not create anything")
	}
	if !m.MessageErr {
		t.Error("expected an error message")
	}
	if !strings.Contains(m.View(), "new root") {
		t.Error("without a selection the node goes to the root")
	}
}

func TestEditModel_BuildCommand(t *testing.T) {
	item := domain.Node{
		ID: "i1", Path: "1", Kind: domain.KindItem, Label: "Estaca", Unit: "m",
		Quantity:  decimal.NewFromInt(10),
		UnitPrice: decimal.RequireFromString("50.00"),
		Breakdown: &domain.CostBreakdown{Material: decimal.NewFromInt(60), Labor: decimal.NewFromInt(40)},
	}

	tests := []struct {
		name    string
		set     map[int]string
		check   func(*commands.UpdateNodeCommand) bool
		wantErr bool
	}{
		{
			name:  "unchanged",
			check: func(c *commands.UpdateNodeCommand) bool { return c == nil },
		},
		{
			name: "same quantity written differently",
			set:  map[int]string{editQuantity: "10,00"},
			check: func(c *commands.UpdateNodeCommand) bool {
				return c == nil
			},
		},
		{
			name: "quantity only",
			set:  map[int]string{editQuantity: "2,5"},
			check: func(c *commands.UpdateNodeCommand) bool {
				return c.Quantity != nil && *c.Quantity == "2,5" && c.Label == nil && c.UnitPrice == nil && c.Breakdown == nil
			},
		},
		{
			name: "breakdown",
			set:  map[int]string{editMaterial: "50", editLabor: "30", editOthers: "20"},
			check: func(c *commands.UpdateNodeCommand) bool {
				return c.Breakdown != nil && c.Breakdown.Others.Equal(decimal.NewFromInt(20)) && c.Quantity == nil
			},
		},
		{
			name:    "breakdown over 100",
			set:     map[int]string{editMaterial: "80"},
			wantErr: true,
		},
		{
			name:    "bad price",
			set:     map[int]string{editUnitPrice: "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewEditModel(openTestStore(t, item))
			m.SetNode(item)
			for index, value := range tt.set {
				m.form.SetValue(index, value)
			}

			cmd, err := m.buildCommand()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildCommand failed: %v", err)
			}
			if !tt.check(cmd) {
				t.Errorf("unexpected command %+v", cmd)
			}
		})
	}
}

func TestEditModel_StageHasLabelOnly(t *testing.T) {
	stage := twoStages()[0]
	m := NewEditModel(openTestStore(t, twoStages()...))
	m.SetNode(stage)

	if len(m.form.Fields) != 1 {
		t.Fatalf("stage form has %d fields, want 1", len(m.form.Fields))
	}
	m.form.SetValue(editLabel, "Fundações")
	cmd, err := m.buildCommand()
	if err != nil || cmd == nil || cmd.Label == nil || *cmd.Label != "Fundações" {
		t.Errorf("buildCommand = %+v, %v", cmd, err)
	}
}

func TestDeleteModel_ShowsNestedCount(t *testing.T) {
	store := openTestStore(t, twoStages()...)
	m := NewDeleteModel(store)

	m.Update(m.SetNode(twoStages()[0])())
	if !strings.Contains(m.View(), "and 1 nested nodes") {
		t.Errorf("view should show the nested count:\n%s", m.View())
	}

	_, cmd := m.Update(keyPress("y"))
	if _, ok := cmd().(ReloadMsg); !ok {
		t.Fatal("confirming should delete and reload")
	}
	nodes, _ := store.LoadNodes(context.Background())
	if len(nodes) != 2 {
		t.Errorf("nodes after delete = %d, want 2", len(nodes))
	}
}

func TestBlocksModel_SaveAndInsert(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, twoStages()...)
	nodes := twoStages()

	save := NewSaveBlockModel(store)
	save.SetNode(nodes[0])
	save.form.SetValue(0, "Fundação padrão")
	_, cmd := save.Update(keyPress("enter"))
	if reload, ok := cmd().(ReloadMsg); !ok || reload.IsErr {
		t.Fatalf("save block failed: %#v", reload)
	}

	target := nodes[2] // s2
	m := NewBlocksModel(store)
	m.Open(&target)
	m.Update(m.load()())
	if len(m.blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(m.blocks))
	}
	if !strings.Contains(m.View(), "Preview") {
		t.Error("the selected block should be previewed")
	}

	_, cmd = m.Update(keyPress("enter"))
	reload, ok := cmd().(ReloadMsg)
	if !ok || reload.IsErr {
		t.Fatalf("insert failed: %#v", reload)
	}

	all, err := store.LoadNodes(ctx)
	if err != nil {
		t.Fatalf("LoadNodes failed: %v", err)
	}
	grafted, found := domain.FindNode(all, reload.SelectID)
	if !found || grafted.Path != "2.2" || grafted.Label != "Fundação" {
		t.Errorf("grafted root = %+v, want stage 2.2 Fundação", grafted)
	}
	if len(all) != 6 {
		t.Errorf("nodes = %d, want 6", len(all))
	}
}

func TestBlocksModel_DeleteAsksFirst(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, twoStages()...)
	if _, err := commands.NewSaveBlockCommand(store, "s1", "Fundação").Execute(ctx); err != nil {
		t.Fatalf("save block failed: %v", err)
	}

	m := NewBlocksModel(store)
	m.Open(nil)
	m.Update(m.load()())

	m.Update(keyPress("ctrl+d"))
	if !strings.Contains(m.View(), "Delete block") {
		t.Fatal("delete should ask for confirmation")
	}
	_, cmd := m.Update(keyPress("y"))
	m.Update(cmd())

	blocks, _ := store.ListBlocks(ctx)
	if len(blocks) != 0 {
		t.Errorf("blocks = %d, want 0", len(blocks))
	}
}
