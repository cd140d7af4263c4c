package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// TreeResult is a rendered view of the budget
type TreeResult struct {
	Nodes   []domain.Node // visible nodes in path order, values recomputed
	All     []domain.Node // every node, values recomputed
	Forest  []*domain.TreeNode
	Total   decimal.Decimal
	Project domain.Project
}

// ShowTreeCommand loads the budget and computes what a renderer shows
type ShowTreeCommand struct {
	repo      ports.BudgetRepository
	Collapsed domain.CollapseSet
}

// NewShowTreeCommand creates a new ShowTreeCommand
func NewShowTreeCommand(repo ports.BudgetRepository, collapsed domain.CollapseSet) *ShowTreeCommand {
	return &ShowTreeCommand{
		repo:      repo,
		Collapsed: collapsed,
	}
}

// Execute runs the show tree command
func (c *ShowTreeCommand) Execute(ctx context.Context) (*TreeResult, error) {
	nodes, err := c.repo.LoadNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}
	project, err := c.repo.LoadProject(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	all := domain.RecomputeValues(domain.SortedByPath(nodes))
	return &TreeResult{
		Nodes:   domain.VisibleNodes(all, c.Collapsed),
		All:     all,
		Forest:  domain.BuildTree(all),
		Total:   domain.GrandTotal(all),
		Project: project,
	}, nil
}

// GetNodeCommand looks up one node by id or path
type GetNodeCommand struct {
	repo ports.BudgetRepository
	Ref  string
}

// NewGetNodeCommand creates a new GetNodeCommand
func NewGetNodeCommand(repo ports.BudgetRepository, ref string) *GetNodeCommand {
	return &GetNodeCommand{repo: repo, Ref: ref}
}

// Execute runs the get node command
func (c *GetNodeCommand) Execute(ctx context.Context) (*domain.Node, error) {
	nodes, err := c.repo.LoadNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}
	n, err := ResolveRef(domain.RecomputeValues(nodes), c.Ref)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ResolveRef finds a node by id, falling back to its path. Paths change on
// every mutation, so interactive callers should prefer ids.
func ResolveRef(nodes []domain.Node, ref string) (domain.Node, error) {
	if n, ok := domain.FindNode(nodes, ref); ok {
		return n, nil
	}
	if n, ok := domain.FindByPath(nodes, ref); ok {
		return n, nil
	}
	return domain.Node{}, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
}

// ResolveRefs maps every reference to a node id, leaving empty refs empty
func ResolveRefs(ctx context.Context, repo ports.BudgetRepository, refs ...*string) error {
	nodes, err := repo.LoadNodes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load budget: %w", err)
	}
	for _, ref := range refs {
		if ref == nil || *ref == "" {
			continue
		}
		n, err := ResolveRef(nodes, *ref)
		if err != nil {
			return err
		}
		*ref = n.ID
	}
	return nil
}
