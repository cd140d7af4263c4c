package commands

import (
	"context"
	"errors"
	"fmt"

	"budgetree/internal/application"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// MoveNodeResult contains the result of moving a node
type MoveNodeResult struct {
	Node    domain.Node // the moved node, with its new path
	Mode    domain.InsertMode
	Nodes   []domain.Node
	Message string
}

// MoveNodeCommand moves a node (and its subtree) relative to a target.
// Either Mode is set explicitly, or Offset carries the pointer's vertical
// position over the target row and the mode is resolved from it.
type MoveNodeCommand struct {
	repo      ports.BudgetRepository
	DraggedID string
	TargetID  string
	Mode      domain.InsertMode
	Offset    *float64
}

// NewMoveNodeCommand creates a new MoveNodeCommand with an explicit mode
func NewMoveNodeCommand(repo ports.BudgetRepository, draggedID, targetID string, mode domain.InsertMode) *MoveNodeCommand {
	return &MoveNodeCommand{
		repo:      repo,
		DraggedID: draggedID,
		TargetID:  targetID,
		Mode:      mode,
	}
}

// NewDropCommand creates a MoveNodeCommand that resolves its mode from a
// drop offset, the way a drag gesture does
func NewDropCommand(repo ports.BudgetRepository, draggedID, targetID string, offset float64) *MoveNodeCommand {
	return &MoveNodeCommand{
		repo:      repo,
		DraggedID: draggedID,
		TargetID:  targetID,
		Offset:    &offset,
	}
}

// Validate checks if the move operation is valid
func (c *MoveNodeCommand) Validate() error {
	if c.DraggedID == "" {
		return &application.ValidationError{
			Field:   "draggedID",
			Message: "dragged node ID is required",
		}
	}

	if c.TargetID == "" {
		return &application.ValidationError{
			Field:   "targetID",
			Message: "target node ID is required",
		}
	}

	if c.Offset != nil {
		return application.ValidateOffset("offset", *c.Offset)
	}

	if c.Mode == domain.ModeNone {
		return &application.ValidationError{
			Field:   "mode",
			Message: "insert mode is required (before, after or inside)",
		}
	}

	return nil
}

// Execute runs the move command
func (c *MoveNodeCommand) Execute(ctx context.Context) (*MoveNodeResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	nodes, err := c.repo.LoadNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}

	if err := domain.CheckMove(nodes, c.DraggedID, c.TargetID); err != nil {
		return nil, c.moveError(err)
	}

	mode := c.Mode
	if c.Offset != nil {
		mode = domain.ResolveDrop(nodes, c.DraggedID, c.TargetID, *c.Offset)
	}

	updated, err := domain.Move(nodes, c.DraggedID, c.TargetID, mode)
	if err != nil {
		return nil, c.moveError(err)
	}

	if err := c.repo.ReplaceNodes(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	moved, _ := domain.FindNode(updated, c.DraggedID)
	target, _ := domain.FindNode(updated, c.TargetID)
	return &MoveNodeResult{
		Node:    moved,
		Mode:    mode,
		Nodes:   updated,
		Message: fmt.Sprintf("Moved %s %s %s (now %s)", moved.Label, mode, target.Label, moved.Path),
	}, nil
}

func (c *MoveNodeCommand) moveError(err error) error {
	reason := err.Error()
	switch {
	case errors.Is(err, domain.ErrCycle):
		reason = "a node cannot be moved into itself or its descendants"
	case errors.Is(err, domain.ErrItemHasNoChildren):
		reason = "items cannot contain other nodes"
	case errors.Is(err, domain.ErrNotFound):
		reason = "node not found"
	}
	return &application.MoveError{
		SourceID: c.DraggedID,
		DestID:   c.TargetID,
		Reason:   reason,
		Err:      err,
	}
}
