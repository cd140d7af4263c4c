package commands

import (
	"context"
	"fmt"
	"time"

	"budgetree/internal/application"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// SaveToCatalogResult contains the result of saving an item to the user catalog
type SaveToCatalogResult struct {
	Entry   domain.CatalogEntry
	Message string
}

// SaveToCatalogCommand copies an item into the user's private catalog
type SaveToCatalogCommand struct {
	repo   ports.BudgetRepository
	NodeID string
	Now    func() time.Time
}

// NewSaveToCatalogCommand creates a new SaveToCatalogCommand
func NewSaveToCatalogCommand(repo ports.BudgetRepository, nodeID string) *SaveToCatalogCommand {
	return &SaveToCatalogCommand{
		repo:   repo,
		NodeID: nodeID,
		Now:    time.Now,
	}
}

// Execute runs the save to catalog command
func (c *SaveToCatalogCommand) Execute(ctx context.Context) (*SaveToCatalogResult, error) {
	if err := application.ValidateRequired("nodeID", c.NodeID); err != nil {
		return nil, err
	}

	nodes, err := c.repo.LoadNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}
	n, ok := domain.FindNode(nodes, c.NodeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, c.NodeID)
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	entry, err := domain.UserEntryFromNode(n, now())
	if err != nil {
		return nil, err
	}

	if err := c.repo.SaveUserEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save catalog entry: %w", err)
	}

	return &SaveToCatalogResult{
		Entry:   entry,
		Message: fmt.Sprintf("Saved %s to your catalog", entry.Title()),
	}, nil
}

// ListCatalogCommand lists the user's private catalog
type ListCatalogCommand struct {
	repo ports.BudgetRepository
}

// NewListCatalogCommand creates a new ListCatalogCommand
func NewListCatalogCommand(repo ports.BudgetRepository) *ListCatalogCommand {
	return &ListCatalogCommand{repo: repo}
}

// Execute runs the list catalog command
func (c *ListCatalogCommand) Execute(ctx context.Context) ([]domain.CatalogEntry, error) {
	return c.repo.ListUserEntries(ctx)
}

// DeleteCatalogEntryCommand removes an entry from the user catalog
type DeleteCatalogEntryCommand struct {
	repo    ports.BudgetRepository
	EntryID string
}

// NewDeleteCatalogEntryCommand creates a new DeleteCatalogEntryCommand
func NewDeleteCatalogEntryCommand(repo ports.BudgetRepository, entryID string) *DeleteCatalogEntryCommand {
	return &DeleteCatalogEntryCommand{
		repo:    repo,
		EntryID: entryID,
	}
}

// Execute runs the delete catalog entry command
func (c *DeleteCatalogEntryCommand) Execute(ctx context.Context) (*DeleteResult, error) {
	if err := application.ValidateRequired("entryID", c.EntryID); err != nil {
		return nil, err
	}
	if err := c.repo.DeleteUserEntry(ctx, c.EntryID); err != nil {
		return nil, fmt.Errorf("failed to delete catalog entry %s: %w", c.EntryID, err)
	}
	return &DeleteResult{
		DeletedID: c.EntryID,
		Removed:   1,
		Message:   fmt.Sprintf("Deleted catalog entry %s", c.EntryID),
	}, nil
}
