package ports

import (
	"context"

	"budgetree/internal/domain"
)

// BudgetRepository is the state of record for one budget
type BudgetRepository interface {
	// Nodes. ReplaceNodes swaps the whole flat list atomically.
	LoadNodes(ctx context.Context) ([]domain.Node, error)
	ReplaceNodes(ctx context.Context, nodes []domain.Node) error

	// Project metadata
	LoadProject(ctx context.Context) (domain.Project, error)
	SaveProject(ctx context.Context, project domain.Project) error

	// Block library
	ListBlocks(ctx context.Context) ([]domain.Block, error)
	GetBlock(ctx context.Context, id string) (*domain.Block, error)
	SaveBlock(ctx context.Context, block domain.Block) error
	DeleteBlock(ctx context.Context, id string) error

	// User catalog
	ListUserEntries(ctx context.Context) ([]domain.CatalogEntry, error)
	SaveUserEntry(ctx context.Context, entry domain.CatalogEntry) error
	DeleteUserEntry(ctx context.Context, id string) error

	// ImportDocument stores a whole snapshot atomically: either every part
	// lands or nothing changes
	ImportDocument(ctx context.Context, doc Document) error

	Close() error
}

// Document is a complete, portable snapshot of a budget
type Document struct {
	Project     domain.Project
	Nodes       []domain.Node
	Blocks      []domain.Block
	UserCatalog []domain.CatalogEntry
}

// DocumentStore reads and writes budget snapshots outside the repository
type DocumentStore interface {
	Export(path string, doc Document) error
	Import(path string) (*Document, error)
}
