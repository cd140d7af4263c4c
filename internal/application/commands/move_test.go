package commands

import (
	"context"
	"errors"
	"testing"

	"budgetree/internal/application"
	"budgetree/internal/domain"
)

func TestMoveNodeCommand_Validate(t *testing.T) {
	offset := 0.5
	bad := 1.5

	tests := []struct {
		name    string
		cmd     MoveNodeCommand
		wantErr bool
		errMsg  string
	}{
		{
			name:    "explicit mode",
			cmd:     MoveNodeCommand{DraggedID: "a", TargetID: "b", Mode: domain.ModeInside},
			wantErr: false,
		},
		{
			name:    "offset",
			cmd:     MoveNodeCommand{DraggedID: "a", TargetID: "b", Offset: &offset},
			wantErr: false,
		},
		{
			name:    "empty dragged ID",
			cmd:     MoveNodeCommand{TargetID: "b", Mode: domain.ModeAfter},
			wantErr: true,
			errMsg:  "dragged node ID is required",
		},
		{
			name:    "empty target ID",
			cmd:     MoveNodeCommand{DraggedID: "a", Mode: domain.ModeAfter},
			wantErr: true,
			errMsg:  "target node ID is required",
		},
		{
			name:    "no mode and no offset",
			cmd:     MoveNodeCommand{DraggedID: "a", TargetID: "b"},
			wantErr: true,
			errMsg:  "insert mode is required",
		},
		{
			name:    "offset out of range",
			cmd:     MoveNodeCommand{DraggedID: "a", TargetID: "b", Offset: &bad},
			wantErr: true,
			errMsg:  "offset must be between 0 and 1",
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

func TestMoveNodeCommand_Execute(t *testing.T) {
	repo := newMemRepo(budget()...)

	result, err := NewMoveNodeCommand(repo, "s2", "s12", domain.ModeInside).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Node.Path != "1.2.2" {
		t.Errorf("expected s2 at 1.2.2, got %s", result.Node.Path)
	}
	if repo.replaces != 1 {
		t.Errorf("expected one atomic replace, got %d", repo.replaces)
	}
	if !contains(result.Message, "Fundações") {
		t.Errorf("unexpected message %q", result.Message)
	}
}

func TestMoveNodeCommand_Drop(t *testing.T) {
	tests := []struct {
		name     string
		dragged  string
		target   string
		offset   float64
		wantMode domain.InsertMode
		wantPath string
	}{
		{"top of a stage", "i121", "s1", 0.1, domain.ModeBefore, "1"},
		{"middle of a stage", "i121", "s2", 0.5, domain.ModeInside, "2.1"},
		{"bottom of a stage", "i11", "s2", 0.9, domain.ModeAfter, "3"},
		{"top half of an item", "i121", "i11", 0.3, domain.ModeBefore, "1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo(budget()...)
			result, err := NewDropCommand(repo, tt.dragged, tt.target, tt.offset).Execute(context.Background())
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if result.Mode != tt.wantMode {
				t.Errorf("mode = %s, want %s", result.Mode, tt.wantMode)
			}
			if got := repo.path(tt.dragged); got != tt.wantPath {
				t.Errorf("path = %s, want %s", got, tt.wantPath)
			}
		})
	}
}

func TestMoveNodeCommand_RejectsCycle(t *testing.T) {
	repo := newMemRepo(budget()...)

	_, err := NewDropCommand(repo, "s1", "i121", 0.1).Execute(context.Background())

	var moveErr *application.MoveError
	if !errors.As(err, &moveErr) {
		t.Fatalf("expected MoveError, got %v", err)
	}
	if !errors.Is(err, domain.ErrCycle) {
		t.Errorf("expected the cause to be ErrCycle, got %v", moveErr.Err)
	}
	if repo.replaces != 0 {
		t.Error("a rejected move must not touch the repository")
	}
}

func TestMoveNodeCommand_InsideItem(t *testing.T) {
	repo := newMemRepo(budget()...)

	_, err := NewMoveNodeCommand(repo, "s2", "i11", domain.ModeInside).Execute(context.Background())
	if !errors.Is(err, domain.ErrItemHasNoChildren) {
		t.Fatalf("expected ErrItemHasNoChildren, got %v", err)
	}
	if repo.replaces != 0 {
		t.Error("a rejected move must not touch the repository")
	}
}
