package commands

import (
	"context"
	"fmt"
	"strings"

	"budgetree/internal/application"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// CreateResult contains the result of creating a node
type CreateResult struct {
	Node    domain.Node
	Nodes   []domain.Node
	Message string
}

// validateRelation checks the target/relation pair shared by every create
func validateRelation(targetID string, rel domain.Relation) error {
	switch rel {
	case domain.RelationRoot:
		return nil
	case domain.RelationSibling:
		return nil // no target means a new root
	case domain.RelationChild:
		return application.ValidateRequired("targetID", targetID)
	default:
		return &application.ValidationError{
			Field:   "relation",
			Message: fmt.Sprintf("cannot create with relation %s (expected root, sibling or child)", rel),
		}
	}
}

// insertNode allocates a path for n relative to the target and stores the
// renumbered list
func insertNode(ctx context.Context, repo ports.BudgetRepository, nodes []domain.Node, n domain.Node, targetID string, rel domain.Relation) (*CreateResult, error) {
	path, err := domain.Allocate(nodes, targetID, rel)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate path: %w", err)
	}
	n.Path = path

	updated, err := domain.InsertAllocated(nodes, n)
	if err != nil {
		return nil, fmt.Errorf("failed to insert node: %w", err)
	}

	if err := repo.ReplaceNodes(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	created, _ := domain.FindNode(updated, n.ID)
	return &CreateResult{
		Node:    created,
		Nodes:   updated,
		Message: fmt.Sprintf("Created %s %s %s", strings.ToLower(created.Kind.String()), created.Path, created.Label),
	}, nil
}

// CreateStageCommand creates a stage
type CreateStageCommand struct {
	repo     ports.BudgetRepository
	TargetID string
	Relation domain.Relation
	Label    string
}

// NewCreateStageCommand creates a new CreateStageCommand
func NewCreateStageCommand(repo ports.BudgetRepository, targetID string, rel domain.Relation, label string) *CreateStageCommand {
	return &CreateStageCommand{
		repo:     repo,
		TargetID: targetID,
		Relation: rel,
		Label:    label,
	}
}

// Validate checks if the create operation is valid
func (c *CreateStageCommand) Validate() error {
	if err := application.ValidateRequired("label", c.Label); err != nil {
		return err
	}
	return validateRelation(c.TargetID, c.Relation)
}

// Execute runs the create stage command
func (c *CreateStageCommand) Execute(ctx context.Context) (*CreateResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	nodes, err := c.repo.LoadNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}

	stage := domain.NewStage("", strings.TrimSpace(c.Label))
	return insertNode(ctx, c.repo, nodes, stage, c.TargetID, c.Relation)
}

// CreateItemCommand creates an item, either manual or priced from a catalog
// entry. Entries priced after the project's reference date go through the
// conflict resolver first.
type CreateItemCommand struct {
	repo     ports.BudgetRepository
	resolver ports.ConflictResolver
	TargetID string
	Relation domain.Relation
	Label    string
	Entry    *domain.CatalogEntry
}

// NewCreateItemCommand creates a manual item command
func NewCreateItemCommand(repo ports.BudgetRepository, targetID string, rel domain.Relation, label string) *CreateItemCommand {
	return &CreateItemCommand{
		repo:     repo,
		TargetID: targetID,
		Relation: rel,
		Label:    label,
	}
}

// NewCreateCatalogItemCommand creates an item command priced from a catalog entry
func NewCreateCatalogItemCommand(repo ports.BudgetRepository, resolver ports.ConflictResolver, targetID string, rel domain.Relation, entry domain.CatalogEntry) *CreateItemCommand {
	return &CreateItemCommand{
		repo:     repo,
		resolver: resolver,
		TargetID: targetID,
		Relation: rel,
		Entry:    &entry,
	}
}

// Validate checks if the create operation is valid
func (c *CreateItemCommand) Validate() error {
	if c.Entry == nil {
		if err := application.ValidateRequired("label", c.Label); err != nil {
			return err
		}
	} else if strings.TrimSpace(c.Entry.Description) == "" {
		return &application.ValidationError{
			Field:   "entry",
			Message: "catalog entry has no description",
		}
	}
	return validateRelation(c.TargetID, c.Relation)
}

// Execute runs the create item command
func (c *CreateItemCommand) Execute(ctx context.Context) (*CreateResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	nodes, err := c.repo.LoadNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}

	var item domain.Node
	if c.Entry != nil {
		project, err := c.repo.LoadProject(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load project: %w", err)
		}
		if err := application.CheckVersion(ctx, c.resolver, *c.Entry, project); err != nil {
			return nil, err
		}
		item = domain.NewCatalogItem("", *c.Entry)
	} else {
		item = domain.NewManualItem("", strings.TrimSpace(c.Label))
	}

	return insertNode(ctx, c.repo, nodes, item, c.TargetID, c.Relation)
}
