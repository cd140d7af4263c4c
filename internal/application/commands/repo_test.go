package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// memRepo is an in-memory ports.BudgetRepository
type memRepo struct {
	nodes    []domain.Node
	project  domain.Project
	blocks   []domain.Block
	entries  []domain.CatalogEntry
	replaces int
	imports  int
}

var _ ports.BudgetRepository = (*memRepo)(nil)

func newMemRepo(nodes ...domain.Node) *memRepo {
	return &memRepo{
		nodes: nodes,
		project: domain.Project{
			Name:          "Obra teste",
			ReferenceDate: time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func (r *memRepo) LoadNodes(ctx context.Context) ([]domain.Node, error) {
	return slices.Clone(r.nodes), nil
}

func (r *memRepo) ReplaceNodes(ctx context.Context, nodes []domain.Node) error {
	r.nodes = slices.Clone(nodes)
	r.replaces++
	return nil
}

func (r *memRepo) LoadProject(ctx context.Context) (domain.Project, error) {
	return r.project, nil
}

func (r *memRepo) SaveProject(ctx context.Context, project domain.Project) error {
	r.project = project
	return nil
}

func (r *memRepo) ListBlocks(ctx context.Context) ([]domain.Block, error) {
	return slices.Clone(r.blocks), nil
}

func (r *memRepo) GetBlock(ctx context.Context, id string) (*domain.Block, error) {
	for _, b := range r.blocks {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, fmt.Errorf("block %s: %w", id, domain.ErrNotFound)
}

func (r *memRepo) SaveBlock(ctx context.Context, block domain.Block) error {
	r.blocks = append(r.blocks, block)
	return nil
}

func (r *memRepo) DeleteBlock(ctx context.Context, id string) error {
	for i, b := range r.blocks {
		if b.ID == id {
			r.blocks = slices.Delete(r.blocks, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("block %s: %w", id, domain.ErrNotFound)
}

func (r *memRepo) ListUserEntries(ctx context.Context) ([]domain.CatalogEntry, error) {
	return slices.Clone(r.entries), nil
}

func (r *memRepo) SaveUserEntry(ctx context.Context, entry domain.CatalogEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memRepo) DeleteUserEntry(ctx context.Context, id string) error {
	for i, e := range r.entries {
		if e.ID == id {
			r.entries = slices.Delete(r.entries, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("entry %s: %w", id, domain.ErrNotFound)
}

func (r *memRepo) ImportDocument(ctx context.Context, doc ports.Document) error {
	r.project = doc.Project
	r.nodes = slices.Clone(doc.Nodes)
	r.blocks = append(r.blocks, doc.Blocks...)
	r.entries = append(r.entries, doc.UserCatalog...)
	r.imports++
	return nil
}

func (r *memRepo) Close() error { return nil }

func (r *memRepo) path(id string) string {
	n, _ := domain.FindNode(r.nodes, id)
	return n.Path
}

func stage(id, path, label string) domain.Node {
	return domain.Node{ID: id, Path: path, Kind: domain.KindStage, Label: label}
}

func item(id, path, label string) domain.Node {
	return domain.Node{
		ID:        id,
		Path:      path,
		Kind:      domain.KindItem,
		Label:     label,
		Quantity:  decimal.NewFromInt(2),
		Unit:      "m²",
		UnitPrice: decimal.RequireFromString("10.00"),
	}
}

// budget returns
//
//	1     s1  Serviços preliminares
//	1.1   i11 Tapume
//	1.2   s12 Canteiro
//	1.2.1 i121 Barracão
//	2     s2  Fundações
func budget() []domain.Node {
	return []domain.Node{
		stage("s1", "1", "Serviços preliminares"),
		item("i11", "1.1", "Tapume"),
		stage("s12", "1.2", "Canteiro"),
		item("i121", "1.2.1", "Barracão"),
		stage("s2", "2", "Fundações"),
	}
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
