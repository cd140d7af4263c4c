package commands

import (
	"context"
	"fmt"

	"budgetree/internal/application"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// TransferResult contains the result of an import or export
type TransferResult struct {
	Path    string
	Nodes   int
	Blocks  int
	Entries int
	Message string
}

// ExportCommand writes the whole budget to a portable document
type ExportCommand struct {
	repo  ports.BudgetRepository
	store ports.DocumentStore
	Path  string
}

// NewExportCommand creates a new ExportCommand
func NewExportCommand(repo ports.BudgetRepository, store ports.DocumentStore, path string) *ExportCommand {
	return &ExportCommand{repo: repo, store: store, Path: path}
}

// Execute runs the export command
func (c *ExportCommand) Execute(ctx context.Context) (*TransferResult, error) {
	if err := application.ValidateRequired("path", c.Path); err != nil {
		return nil, err
	}

	var doc ports.Document
	var err error
	if doc.Project, err = c.repo.LoadProject(ctx); err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if doc.Nodes, err = c.repo.LoadNodes(ctx); err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}
	if doc.Blocks, err = c.repo.ListBlocks(ctx); err != nil {
		return nil, fmt.Errorf("failed to load blocks: %w", err)
	}
	if doc.UserCatalog, err = c.repo.ListUserEntries(ctx); err != nil {
		return nil, fmt.Errorf("failed to load user catalog: %w", err)
	}

	if err := c.store.Export(c.Path, doc); err != nil {
		return nil, fmt.Errorf("failed to export: %w", err)
	}

	return &TransferResult{
		Path:    c.Path,
		Nodes:   len(doc.Nodes),
		Blocks:  len(doc.Blocks),
		Entries: len(doc.UserCatalog),
		Message: fmt.Sprintf("Exported %d nodes and %d blocks to %s", len(doc.Nodes), len(doc.Blocks), c.Path),
	}, nil
}

// ImportCommand replaces the budget with the contents of a document.
// Orphaned or gapped paths are normalized on the way in.
type ImportCommand struct {
	repo  ports.BudgetRepository
	store ports.DocumentStore
	Path  string
}

// NewImportCommand creates a new ImportCommand
func NewImportCommand(repo ports.BudgetRepository, store ports.DocumentStore, path string) *ImportCommand {
	return &ImportCommand{repo: repo, store: store, Path: path}
}

// Execute runs the import command
func (c *ImportCommand) Execute(ctx context.Context) (*TransferResult, error) {
	if err := application.ValidateRequired("path", c.Path); err != nil {
		return nil, err
	}

	doc, err := c.store.Import(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to import: %w", err)
	}

	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	doc.Nodes = domain.Normalize(doc.Nodes)
	if err := c.repo.ImportDocument(ctx, *doc); err != nil {
		return nil, fmt.Errorf("failed to store imported budget: %w", err)
	}

	return &TransferResult{
		Path:    c.Path,
		Nodes:   len(doc.Nodes),
		Blocks:  len(doc.Blocks),
		Entries: len(doc.UserCatalog),
		Message: fmt.Sprintf("Imported %d nodes and %d blocks from %s", len(doc.Nodes), len(doc.Blocks), c.Path),
	}, nil
}

// validateDocument rejects documents the store would only partly accept
func validateDocument(doc *ports.Document) error {
	ids := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if err := application.ValidateRequired("id", n.ID); err != nil {
			return fmt.Errorf("node at %s: %w", n.Path, err)
		}
		if ids[n.ID] {
			return &application.ValidationError{Field: "id", Message: fmt.Sprintf("duplicate node id: %s", n.ID)}
		}
		ids[n.ID] = true

		if err := application.ValidatePath("path", n.Path); err != nil {
			return fmt.Errorf("node %s: %w", n.ID, err)
		}
		if n.Kind != domain.KindStage && n.Kind != domain.KindItem {
			return &application.ValidationError{Field: "kind", Message: fmt.Sprintf("node %s has no known kind", n.ID)}
		}
	}

	blocks := make(map[string]bool, len(doc.Blocks))
	for _, b := range doc.Blocks {
		if blocks[b.ID] {
			return &application.ValidationError{Field: "block", Message: fmt.Sprintf("duplicate block id: %s", b.ID)}
		}
		blocks[b.ID] = true
	}
	return nil
}
