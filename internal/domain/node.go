package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes grouping nodes from priced leaves
type Kind int

const (
	KindUnknown Kind = iota
	KindStage        // grouping node ("synthetic"), may have children
	KindItem         // priced leaf ("analytic"), never has children
)

func (k Kind) String() string {
	switch k {
	case KindStage:
		return "Stage"
	case KindItem:
		return "Item"
	default:
		return "Unknown"
	}
}

// ParseKind is the inverse of Kind.String, case-insensitive.
// The original budget vocabulary (synthetic/analytic) is accepted too.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stage", "synthetic":
		return KindStage
	case "item", "analytic":
		return KindItem
	default:
		return KindUnknown
	}
}

// DefaultUnit is used for items created without a unit
const DefaultUnit = "un"

// CostBreakdown holds the share of an item's cost per category, in percent
type CostBreakdown struct {
	Material decimal.Decimal
	Labor    decimal.Decimal
	Others   decimal.Decimal
}

// Node is a budget entry: a stage or an item
type Node struct {
	ID    string // stable across moves
	Path  string // e.g., "1.2.3"; rewritten by FlattenTree only
	Kind  Kind
	Label string

	// Aggregate for stages, quantity x unit price for items (see RecomputeValues)
	Value decimal.Decimal

	// Item-only fields
	Quantity  decimal.Decimal
	Unit      string
	UnitPrice decimal.Decimal
	Ref       *CatalogEntry
	Memory    string // calculation memory
	Breakdown *CostBreakdown
}

// IsStage reports whether the node may hold children
func (n Node) IsStage() bool {
	return n.Kind == KindStage
}

// IsItem reports whether the node is a priced leaf
func (n Node) IsItem() bool {
	return n.Kind == KindItem
}

// Clone returns a deep copy so that callers never share Ref or Breakdown
func (n Node) Clone() Node {
	c := n
	if n.Ref != nil {
		ref := *n.Ref
		c.Ref = &ref
	}
	if n.Breakdown != nil {
		b := *n.Breakdown
		c.Breakdown = &b
	}
	return c
}

// NewStage creates a stage node with a fresh id
func NewStage(path, label string) Node {
	return Node{
		ID:    NewID(),
		Path:  path,
		Kind:  KindStage,
		Label: label,
	}
}

// NewManualItem creates an item that is not linked to the catalog
func NewManualItem(path, label string) Node {
	return Node{
		ID:       NewID(),
		Path:     path,
		Kind:     KindItem,
		Label:    label,
		Quantity: decimal.NewFromInt(1),
		Unit:     DefaultUnit,
	}
}

// NewCatalogItem creates an item priced from a catalog entry
func NewCatalogItem(path string, entry CatalogEntry) Node {
	ref := entry
	return Node{
		ID:        NewID(),
		Path:      path,
		Kind:      KindItem,
		Label:     entry.Description,
		Quantity:  decimal.NewFromInt(1),
		Unit:      entry.Unit,
		UnitPrice: entry.Price,
		Value:     entry.Price,
		Ref:       &ref,
	}
}

// ApplyEntry replaces an item's pricing with a catalog entry, keeping id, path
// and quantity
func (n Node) ApplyEntry(entry CatalogEntry) Node {
	c := n.Clone()
	ref := entry
	c.Label = entry.Description
	c.Unit = entry.Unit
	c.UnitPrice = entry.Price
	c.Ref = &ref
	if c.Quantity.IsZero() {
		c.Quantity = decimal.NewFromInt(1)
	}
	c.Value = ItemTotal(c)
	return c
}

// Project holds the budget metadata
type Project struct {
	Name          string
	Area          string
	Status        string
	Version       string
	ReferenceDate time.Time // prices effective after this date need confirmation
}

// FindNode returns the node with the given id
func FindNode(nodes []Node, id string) (Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// FindByPath returns the node at the given path
func FindByPath(nodes []Node, path string) (Node, bool) {
	for _, n := range nodes {
		if n.Path == path {
			return n, true
		}
	}
	return Node{}, false
}

// UpdateNode returns a copy of nodes with fn applied to the node matching id
func UpdateNode(nodes []Node, id string, fn func(Node) Node) ([]Node, error) {
	out := make([]Node, len(nodes))
	found := false
	for i, n := range nodes {
		if n.ID == id && !found {
			out[i] = fn(n.Clone())
			out[i].ID = n.ID
			out[i].Path = n.Path
			found = true
			continue
		}
		out[i] = n
	}
	if !found {
		return nodes, ErrNotFound
	}
	return out, nil
}
