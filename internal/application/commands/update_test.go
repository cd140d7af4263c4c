package commands

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"budgetree/internal/domain"
)

func ptr(s string) *string { return &s }

func TestUpdateNodeCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     UpdateNodeCommand
		wantErr bool
		errMsg  string
	}{
		{
			name:    "rename",
			cmd:     UpdateNodeCommand{ID: "a", Label: ptr("New")},
			wantErr: false,
		},
		{
			name:    "quantity with comma",
			cmd:     UpdateNodeCommand{ID: "a", Quantity: ptr("2,5")},
			wantErr: false,
		},
		{
			name:    "empty ID",
			cmd:     UpdateNodeCommand{Label: ptr("New")},
			wantErr: true,
			errMsg:  "ID is required",
		},
		{
			name:    "nothing to update",
			cmd:     UpdateNodeCommand{ID: "a"},
			wantErr: true,
			errMsg:  "nothing to update",
		},
		{
			name:    "blank label",
			cmd:     UpdateNodeCommand{ID: "a", Label: ptr("  ")},
			wantErr: true,
			errMsg:  "label is required",
		},
		{
			name:    "negative price",
			cmd:     UpdateNodeCommand{ID: "a", UnitPrice: ptr("-3")},
			wantErr: true,
			errMsg:  "unit price cannot be negative",
		},
		{
			name: "breakdown over 100",
			cmd: UpdateNodeCommand{ID: "a", Breakdown: &domain.CostBreakdown{
				Material: decimal.NewFromInt(60),
				Labor:    decimal.NewFromInt(50),
			}},
			wantErr: true,
			errMsg:  "add up to at most 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()

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

func TestUpdateNodeCommand_Execute(t *testing.T) {
	repo := newMemRepo(budget()...)

	cmd := NewUpdateNodeCommand(repo, "i11")
	cmd.Quantity = ptr("3,5")
	cmd.UnitPrice = ptr("12")
	cmd.Unit = ptr("m")
	cmd.Memory = ptr("3,5 m of fencing")

	result, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	n := result.Node
	if !n.Quantity.Equal(decimal.RequireFromString("3.5")) || !n.UnitPrice.Equal(decimal.NewFromInt(12)) {
		t.Errorf("unexpected amounts %s x %s", n.Quantity, n.UnitPrice)
	}
	if !n.Value.Equal(decimal.NewFromInt(42)) {
		t.Errorf("value = %s, want 42", n.Value)
	}
	if n.Unit != "m" || n.Memory != "3,5 m of fencing" || n.Path != "1.1" {
		t.Errorf("unexpected node %+v", n)
	}
}

func TestUpdateNodeCommand_StageFields(t *testing.T) {
	repo := newMemRepo(budget()...)

	if _, err := NewRenameCommand(repo, "s1", "Preliminares").Execute(context.Background()); err != nil {
		t.Fatalf("renaming a stage failed: %v", err)
	}
	if got, _ := domain.FindNode(repo.nodes, "s1"); got.Label != "Preliminares" {
		t.Errorf("label = %q", got.Label)
	}

	cmd := NewUpdateNodeCommand(repo, "s1")
	cmd.Quantity = ptr("2")
	if _, err := cmd.Execute(context.Background()); err == nil || !contains(err.Error(), "only its label can change") {
		t.Errorf("expected a stage field error, got %v", err)
	}
}

func TestDeleteCommand(t *testing.T) {
	repo := newMemRepo(budget()...)
	cmd := NewDeleteCommand(repo, "s1")

	n, descendants, err := cmd.Preview(context.Background())
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if n.ID != "s1" || descendants != 3 {
		t.Errorf("preview = %s with %d descendants, want s1 with 3", n.ID, descendants)
	}
	if repo.replaces != 0 {
		t.Error("preview must not touch the repository")
	}

	result, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Removed != 4 {
		t.Errorf("removed = %d, want 4", result.Removed)
	}
	if len(repo.nodes) != 1 || repo.path("s2") != "1" {
		t.Errorf("expected s2 alone at 1, got %v", repo.nodes)
	}
	if !contains(result.Message, "3 nested nodes") {
		t.Errorf("unexpected message %q", result.Message)
	}

	if _, err := NewDeleteCommand(repo, "s1").Execute(context.Background()); err == nil {
		t.Error("expected an error deleting a missing node")
	}
}
