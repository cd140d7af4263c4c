package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgetree/internal/application"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

func TestCreateStageCommand_Validate(t *testing.T) {
	tests := []struct {
		name     string
		targetID string
		rel      domain.Relation
		label    string
		wantErr  bool
		errMsg   string
	}{
		{
			name:    "root stage",
			rel:     domain.RelationRoot,
			label:   "Fundações",
			wantErr: false,
		},
		{
			name:     "child stage",
			targetID: "s1",
			rel:      domain.RelationChild,
			label:    "Canteiro",
			wantErr:  false,
		},
		{
			name:    "empty label",
			rel:     domain.RelationRoot,
			label:   "  ",
			wantErr: true,
			errMsg:  "label is required",
		},
		{
			name:    "child without target",
			rel:     domain.RelationChild,
			label:   "Canteiro",
			wantErr: true,
			errMsg:  "target ID is required",
		},
		{
			name:     "replace is not a create relation",
			targetID: "s1",
			rel:      domain.RelationReplace,
			label:    "x",
			wantErr:  true,
			errMsg:   "cannot create with relation replace",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &CreateStageCommand{
				TargetID: tt.targetID,
				Relation: tt.rel,
				Label:    tt.label,
			}
			err := cmd.Validate()

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errMsg)
					return
				}
				if !contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateStageCommand_Execute(t *testing.T) {
	tests := []struct {
		name     string
		targetID string
		rel      domain.Relation
		wantPath string
	}{
		{"root", "", domain.RelationRoot, "3"},
		{"sibling of a nested item", "i121", domain.RelationSibling, "1.2.2"},
		{"child of an empty stage", "s2", domain.RelationChild, "2.1"},
		{"child after existing children", "s1", domain.RelationChild, "1.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo(budget()...)
			result, err := NewCreateStageCommand(repo, tt.targetID, tt.rel, " Nova etapa ").Execute(context.Background())
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if result.Node.Path != tt.wantPath {
				t.Errorf("path = %s, want %s", result.Node.Path, tt.wantPath)
			}
			if result.Node.Label != "Nova etapa" || !result.Node.IsStage() {
				t.Errorf("unexpected node %+v", result.Node)
			}
			if len(repo.nodes) != len(budget())+1 {
				t.Errorf("expected one more node, got %d", len(repo.nodes))
			}
		})
	}
}

func TestCreateItemCommand_ChildOfItem(t *testing.T) {
	repo := newMemRepo(budget()...)

	_, err := NewCreateItemCommand(repo, "i11", domain.RelationChild, "Pintura").Execute(context.Background())
	if !errors.Is(err, domain.ErrNotStage) {
		t.Fatalf("expected ErrNotStage, got %v", err)
	}
	if repo.replaces != 0 {
		t.Error("a failed create must not touch the repository")
	}
}

func TestCreateItemCommand_Manual(t *testing.T) {
	repo := newMemRepo(budget()...)

	result, err := NewCreateItemCommand(repo, "s2", domain.RelationChild, "Estaca").Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	n := result.Node
	if n.Kind != domain.KindItem || n.Path != "2.1" || n.Unit != domain.DefaultUnit {
		t.Errorf("unexpected item %+v", n)
	}
	if !n.Quantity.Equal(decimal.NewFromInt(1)) || !n.UnitPrice.IsZero() || n.Ref != nil {
		t.Errorf("manual items start at quantity 1, price 0 and no reference: %+v", n)
	}
}

func catalogEntry(code, date string) domain.CatalogEntry {
	d, _ := time.Parse(domain.DateLayout, date)
	return domain.CatalogEntry{
		ID:          "e-" + code,
		Code:        code,
		Source:      domain.SourceSINAPI,
		Description: "Tapume " + code,
		Unit:        "m²",
		Price:       decimal.RequireFromString("240.00"),
		Type:        domain.TypeInput,
		Date:        d,
	}
}

func TestCreateItemCommand_Catalog(t *testing.T) {
	tests := []struct {
		name     string
		entry    domain.CatalogEntry
		resolver ports.ConflictResolver
		wantErr  bool
	}{
		{"same date needs no resolver", catalogEntry("98567", "2019-06-01"), nil, false},
		{"newer without resolver", catalogEntry("98568", "2024-01-01"), nil, true},
		{"newer accepted", catalogEntry("98568", "2024-01-01"), application.StaticResolver{Decision: ports.DecisionUseCandidate}, false},
		{"newer declined", catalogEntry("98568", "2024-01-01"), application.StaticResolver{Decision: ports.DecisionKeepPrior}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo(budget()...)
			result, err := NewCreateCatalogItemCommand(repo, tt.resolver, "s1", domain.RelationChild, tt.entry).Execute(context.Background())

			if tt.wantErr {
				if !errors.Is(err, application.ErrConflictDeclined) {
					t.Fatalf("expected a declined conflict, got %v", err)
				}
				if repo.replaces != 0 {
					t.Error("an abandoned insertion must not touch the repository")
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			n := result.Node
			if n.Ref == nil || n.Ref.Code != tt.entry.Code {
				t.Fatalf("expected a reference to %s, got %+v", tt.entry.Code, n.Ref)
			}
			if n.Label != tt.entry.Description || !n.UnitPrice.Equal(tt.entry.Price) || n.Path != "1.3" {
				t.Errorf("unexpected item %+v", n)
			}
		})
	}
}

func TestReplaceItemCommand(t *testing.T) {
	repo := newMemRepo(budget()...)
	repo.nodes[1].Memory = "2 x 1"
	entry := catalogEntry("98569", "2019-06-01")

	result, err := NewReplaceItemCommand(repo, nil, "i11", entry).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	n := result.Node
	if n.ID != "i11" || n.Path != "1.1" {
		t.Errorf("replace must keep id and path, got %s at %s", n.ID, n.Path)
	}
	if !n.Quantity.Equal(decimal.NewFromInt(2)) || n.Memory != "2 x 1" {
		t.Errorf("replace must keep quantity and memory, got %s / %q", n.Quantity, n.Memory)
	}
	if n.Label != entry.Description || !n.UnitPrice.Equal(entry.Price) {
		t.Errorf("expected the entry's pricing, got %+v", n)
	}
	if !n.Value.Equal(decimal.RequireFromString("480")) {
		t.Errorf("value = %s, want 480", n.Value)
	}

	if _, err := NewReplaceItemCommand(repo, nil, "s1", entry).Execute(context.Background()); err == nil {
		t.Error("expected an error when replacing a stage")
	}
	if _, err := NewReplaceItemCommand(repo, nil, "zz", entry).Execute(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
