package application

import "budgetree/internal/domain"

// Re-export domain types for use by adapters
type (
	Node         = domain.Node
	TreeNode     = domain.TreeNode
	Block        = domain.Block
	CatalogEntry = domain.CatalogEntry
	Project      = domain.Project
	CollapseSet  = domain.CollapseSet
	Kind         = domain.Kind
	InsertMode   = domain.InsertMode
	Relation     = domain.Relation
)

const (
	KindStage = domain.KindStage
	KindItem  = domain.KindItem
)

// Re-export insert modes
const (
	ModeNone   = domain.ModeNone
	ModeBefore = domain.ModeBefore
	ModeAfter  = domain.ModeAfter
	ModeInside = domain.ModeInside
)

// ParseInsertMode parses "before", "after" or "inside"
func ParseInsertMode(s string) (InsertMode, error) {
	return domain.ParseInsertMode(s)
}

// ParseRelation parses "root", "sibling", "child" or "replace"
func ParseRelation(s string) (Relation, error) {
	return domain.ParseRelation(s)
}
