package commands

import (
	"context"
	"fmt"

	"budgetree/internal/application"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// ReplaceItemCommand re-prices an item from a catalog entry in place. The
// item keeps its id, path, quantity and calculation memory.
type ReplaceItemCommand struct {
	repo     ports.BudgetRepository
	resolver ports.ConflictResolver
	TargetID string
	Entry    domain.CatalogEntry
}

// NewReplaceItemCommand creates a new ReplaceItemCommand
func NewReplaceItemCommand(repo ports.BudgetRepository, resolver ports.ConflictResolver, targetID string, entry domain.CatalogEntry) *ReplaceItemCommand {
	return &ReplaceItemCommand{
		repo:     repo,
		resolver: resolver,
		TargetID: targetID,
		Entry:    entry,
	}
}

// Validate checks if the replace operation is valid
func (c *ReplaceItemCommand) Validate() error {
	if err := application.ValidateRequired("targetID", c.TargetID); err != nil {
		return err
	}
	return application.ValidateRequired("entry", c.Entry.Description)
}

// Execute runs the replace command
func (c *ReplaceItemCommand) Execute(ctx context.Context) (*CreateResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	nodes, err := c.repo.LoadNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}

	if _, err := domain.Allocate(nodes, c.TargetID, domain.RelationReplace); err != nil {
		return nil, fmt.Errorf("failed to replace: %w", err)
	}
	target, _ := domain.FindNode(nodes, c.TargetID)
	if target.Kind != domain.KindItem {
		return nil, &application.ValidationError{
			Field:   "targetID",
			Message: fmt.Sprintf("only items can be replaced, %s is a stage", target.Path),
		}
	}

	project, err := c.repo.LoadProject(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if err := application.CheckVersion(ctx, c.resolver, c.Entry, project); err != nil {
		return nil, err
	}

	updated, err := domain.UpdateNode(nodes, c.TargetID, func(n domain.Node) domain.Node {
		return n.ApplyEntry(c.Entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to replace: %w", err)
	}

	if err := c.repo.ReplaceNodes(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	replaced, _ := domain.FindNode(updated, c.TargetID)
	return &CreateResult{
		Node:    replaced,
		Nodes:   updated,
		Message: fmt.Sprintf("Replaced %s with %s", replaced.Path, c.Entry.Title()),
	}, nil
}
