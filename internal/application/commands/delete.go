package commands

import (
	"context"
	"fmt"

	"budgetree/internal/application"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// DeleteResult contains the result of a delete operation
type DeleteResult struct {
	DeletedID string
	Removed   int // the node plus its descendants
	Nodes     []domain.Node
	Message   string
}

// DeleteCommand deletes a node together with its subtree
type DeleteCommand struct {
	repo ports.BudgetRepository
	ID   string
}

// NewDeleteCommand creates a new DeleteCommand
func NewDeleteCommand(repo ports.BudgetRepository, id string) *DeleteCommand {
	return &DeleteCommand{
		repo: repo,
		ID:   id,
	}
}

// Validate checks if the delete operation is valid
func (c *DeleteCommand) Validate() error {
	if c.ID == "" {
		return &application.ValidationError{
			Field:   "id",
			Message: "ID is required",
		}
	}
	return nil
}

// Preview returns the node that would be deleted and how many descendants
// go with it, for confirmation prompts
func (c *DeleteCommand) Preview(ctx context.Context) (domain.Node, int, error) {
	if err := c.Validate(); err != nil {
		return domain.Node{}, 0, err
	}

	nodes, err := c.repo.LoadNodes(ctx)
	if err != nil {
		return domain.Node{}, 0, fmt.Errorf("failed to load budget: %w", err)
	}
	n, ok := domain.FindNode(nodes, c.ID)
	if !ok {
		return domain.Node{}, 0, fmt.Errorf("%w: %s", domain.ErrNotFound, c.ID)
	}
	return n, domain.CountDescendants(nodes, c.ID), nil
}

// Execute runs the delete command
func (c *DeleteCommand) Execute(ctx context.Context) (*DeleteResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	nodes, err := c.repo.LoadNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}
	target, _ := domain.FindNode(nodes, c.ID)

	updated, removed, err := domain.RemoveSubtree(nodes, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete %s: %w", c.ID, err)
	}

	if err := c.repo.ReplaceNodes(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	msg := fmt.Sprintf("Deleted %s %s", target.Path, target.Label)
	if removed > 1 {
		msg = fmt.Sprintf("%s and %d nested nodes", msg, removed-1)
	}
	return &DeleteResult{
		DeletedID: c.ID,
		Removed:   removed,
		Nodes:     updated,
		Message:   msg,
	}, nil
}
