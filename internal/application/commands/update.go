package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"budgetree/internal/application"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// UpdateResult contains the result of an update operation
type UpdateResult struct {
	Node    domain.Node
	Nodes   []domain.Node
	Message string
}

// UpdateNodeCommand edits a node's fields in place. Nil fields are left
// untouched. Amounts are strings so that "3,5" typed by a user is accepted.
type UpdateNodeCommand struct {
	repo      ports.BudgetRepository
	ID        string
	Label     *string
	Quantity  *string
	Unit      *string
	UnitPrice *string
	Memory    *string
	Breakdown *domain.CostBreakdown
}

// NewUpdateNodeCommand creates a new UpdateNodeCommand; set the fields to change
func NewUpdateNodeCommand(repo ports.BudgetRepository, id string) *UpdateNodeCommand {
	return &UpdateNodeCommand{
		repo: repo,
		ID:   id,
	}
}

// NewRenameCommand creates an UpdateNodeCommand that only changes the label
func NewRenameCommand(repo ports.BudgetRepository, id, label string) *UpdateNodeCommand {
	return &UpdateNodeCommand{
		repo:  repo,
		ID:    id,
		Label: &label,
	}
}

func (c *UpdateNodeCommand) itemFieldsSet() bool {
	return c.Quantity != nil || c.Unit != nil || c.UnitPrice != nil || c.Memory != nil || c.Breakdown != nil
}

// Validate checks if the update operation is valid
func (c *UpdateNodeCommand) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return &application.ValidationError{
			Field:   "id",
			Message: "ID is required",
		}
	}

	if c.Label == nil && !c.itemFieldsSet() {
		return &application.ValidationError{
			Field:   "id",
			Message: "nothing to update",
		}
	}

	if c.Label != nil {
		if err := application.ValidateRequired("label", *c.Label); err != nil {
			return err
		}
	}
	if c.Quantity != nil {
		if _, err := application.ParseAmount("quantity", *c.Quantity); err != nil {
			return err
		}
	}
	if c.UnitPrice != nil {
		if _, err := application.ParseAmount("unitPrice", *c.UnitPrice); err != nil {
			return err
		}
	}
	if c.Unit != nil {
		if err := application.ValidateRequired("unit", *c.Unit); err != nil {
			return err
		}
	}
	if b := c.Breakdown; b != nil {
		sum := b.Material.Add(b.Labor).Add(b.Others)
		if b.Material.IsNegative() || b.Labor.IsNegative() || b.Others.IsNegative() || sum.GreaterThan(decimal.NewFromInt(100)) {
			return &application.ValidationError{
				Field:   "breakdown",
				Message: fmt.Sprintf("percentages must be non-negative and add up to at most 100, got %s", sum),
			}
		}
	}

	return nil
}

// Execute runs the update command
func (c *UpdateNodeCommand) Execute(ctx context.Context) (*UpdateResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	nodes, err := c.repo.LoadNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}

	target, ok := domain.FindNode(nodes, c.ID)
	if !ok {
		return nil, fmt.Errorf("failed to update: %w: %s", domain.ErrNotFound, c.ID)
	}
	if target.IsStage() && c.itemFieldsSet() {
		return nil, &application.ValidationError{
			Field:   "id",
			Message: fmt.Sprintf("%s is a stage; only its label can change", target.Path),
		}
	}

	updated, err := domain.UpdateNode(nodes, c.ID, c.apply)
	if err != nil {
		return nil, fmt.Errorf("failed to update: %w", err)
	}

	if err := c.repo.ReplaceNodes(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	n, _ := domain.FindNode(updated, c.ID)
	return &UpdateResult{
		Node:    n,
		Nodes:   updated,
		Message: fmt.Sprintf("Updated %s %s", n.Path, n.Label),
	}, nil
}

// apply runs after Validate, so amount parsing cannot fail here
func (c *UpdateNodeCommand) apply(n domain.Node) domain.Node {
	if c.Label != nil {
		n.Label = strings.TrimSpace(*c.Label)
	}
	if c.Quantity != nil {
		n.Quantity, _ = application.ParseAmount("quantity", *c.Quantity)
	}
	if c.Unit != nil {
		n.Unit = strings.TrimSpace(*c.Unit)
	}
	if c.UnitPrice != nil {
		n.UnitPrice, _ = application.ParseAmount("unitPrice", *c.UnitPrice)
	}
	if c.Memory != nil {
		n.Memory = *c.Memory
	}
	if c.Breakdown != nil {
		b := *c.Breakdown
		n.Breakdown = &b
	}
	if n.Kind == domain.KindItem {
		n.Value = domain.ItemTotal(n)
	}
	return n
}
