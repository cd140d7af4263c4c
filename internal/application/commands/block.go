package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"budgetree/internal/application"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// SaveBlockResult contains the result of saving a block
type SaveBlockResult struct {
	Block   domain.Block
	Message string
}

// SaveBlockCommand stores a stage's subtree as a reusable, value-zeroed block
type SaveBlockCommand struct {
	repo   ports.BudgetRepository
	RootID string
	Name   string
	Now    func() time.Time
}

// NewSaveBlockCommand creates a new SaveBlockCommand
func NewSaveBlockCommand(repo ports.BudgetRepository, rootID, name string) *SaveBlockCommand {
	return &SaveBlockCommand{
		repo:   repo,
		RootID: rootID,
		Name:   name,
		Now:    time.Now,
	}
}

// Validate checks if the save operation is valid
func (c *SaveBlockCommand) Validate() error {
	return application.ValidateRequired("nodeID", c.RootID)
}

// Execute runs the save block command
func (c *SaveBlockCommand) Execute(ctx context.Context) (*SaveBlockResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	nodes, err := c.repo.LoadNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	block, err := domain.ExtractBlock(nodes, c.RootID, strings.TrimSpace(c.Name), now())
	if err != nil {
		return nil, fmt.Errorf("failed to extract block: %w", err)
	}

	if err := c.repo.SaveBlock(ctx, block); err != nil {
		return nil, fmt.Errorf("failed to save block: %w", err)
	}

	return &SaveBlockResult{
		Block:   block,
		Message: fmt.Sprintf("Saved block %q (%d nodes)", block.Name, block.ItemCount()),
	}, nil
}

// InsertBlockResult contains the result of grafting a block
type InsertBlockResult struct {
	TargetID string
	NewIDs   []string // roots first, in block order
	Nodes    []domain.Node
	Message  string
}

// InsertBlockCommand grafts a saved block inside a stage with fresh ids.
// Collapse state belongs to the renderer: callers expand TargetID themselves.
type InsertBlockCommand struct {
	repo     ports.BudgetRepository
	BlockID  string
	TargetID string
}

// NewInsertBlockCommand creates a new InsertBlockCommand
func NewInsertBlockCommand(repo ports.BudgetRepository, blockID, targetID string) *InsertBlockCommand {
	return &InsertBlockCommand{
		repo:     repo,
		BlockID:  blockID,
		TargetID: targetID,
	}
}

// Validate checks if the insert operation is valid
func (c *InsertBlockCommand) Validate() error {
	if err := application.ValidateRequired("blockID", c.BlockID); err != nil {
		return err
	}
	return application.ValidateRequired("targetID", c.TargetID)
}

// Execute runs the insert block command
func (c *InsertBlockCommand) Execute(ctx context.Context) (*InsertBlockResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	block, err := c.repo.GetBlock(ctx, c.BlockID)
	if err != nil {
		return nil, fmt.Errorf("failed to load block: %w", err)
	}

	nodes, err := c.repo.LoadNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}

	updated, ids, err := domain.GraftBlock(nodes, *block, c.TargetID, domain.NewID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert block: %w", err)
	}

	if err := c.repo.ReplaceNodes(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	target, _ := domain.FindNode(updated, c.TargetID)
	return &InsertBlockResult{
		TargetID: c.TargetID,
		NewIDs:   ids,
		Nodes:    updated,
		Message:  fmt.Sprintf("Inserted block %q into %s %s", block.Name, target.Path, target.Label),
	}, nil
}

// ListBlocksCommand lists saved blocks, optionally filtered by name
type ListBlocksCommand struct {
	repo   ports.BudgetRepository
	Filter string
}

// NewListBlocksCommand creates a new ListBlocksCommand
func NewListBlocksCommand(repo ports.BudgetRepository, filter string) *ListBlocksCommand {
	return &ListBlocksCommand{
		repo:   repo,
		Filter: filter,
	}
}

// Execute runs the list blocks command
func (c *ListBlocksCommand) Execute(ctx context.Context) ([]domain.Block, error) {
	blocks, err := c.repo.ListBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}

	filter := strings.ToLower(strings.TrimSpace(c.Filter))
	if filter == "" {
		return blocks, nil
	}
	var out []domain.Block
	for _, b := range blocks {
		if strings.Contains(strings.ToLower(b.Name), filter) {
			out = append(out, b)
		}
	}
	return out, nil
}

// DeleteBlockCommand removes a block from the library
type DeleteBlockCommand struct {
	repo    ports.BudgetRepository
	BlockID string
}

// NewDeleteBlockCommand creates a new DeleteBlockCommand
func NewDeleteBlockCommand(repo ports.BudgetRepository, blockID string) *DeleteBlockCommand {
	return &DeleteBlockCommand{
		repo:    repo,
		BlockID: blockID,
	}
}

// Execute runs the delete block command
func (c *DeleteBlockCommand) Execute(ctx context.Context) (*DeleteResult, error) {
	if err := application.ValidateRequired("blockID", c.BlockID); err != nil {
		return nil, err
	}
	if err := c.repo.DeleteBlock(ctx, c.BlockID); err != nil {
		return nil, fmt.Errorf("failed to delete block %s: %w", c.BlockID, err)
	}
	return &DeleteResult{
		DeletedID: c.BlockID,
		Removed:   1,
		Message:   fmt.Sprintf("Deleted block %s", c.BlockID),
	}, nil
}
