package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Block is a saved, value-zeroed copy of a stage's subtree.
// Node paths are local to the block: the extracted root is "1".
type Block struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Nodes     []Node
}

// ItemCount returns the number of nodes in the block
func (b Block) ItemCount() int {
	return len(b.Nodes)
}

// zeroValues strips monetary values from a node for use in a template
func zeroValues(n Node) Node {
	c := n.Clone()
	c.Value = decimal.Zero
	c.UnitPrice = decimal.Zero
	if c.Kind == KindItem {
		c.Quantity = decimal.NewFromInt(1)
		if c.Unit == "" {
			c.Unit = DefaultUnit
		}
	}
	if c.Ref != nil {
		c.Ref.Price = decimal.Zero
	}
	return c
}

// Subtree returns the node with the given id and all of its descendants,
// sorted by path
func Subtree(nodes []Node, rootID string) ([]Node, error) {
	root, ok := FindNode(nodes, rootID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rootID)
	}
	var out []Node
	for _, n := range nodes {
		if n.ID == root.ID || IsDescendantOf(n.Path, root.Path) {
			out = append(out, n.Clone())
		}
	}
	SortByPath(out)
	return out, nil
}

// ExtractBlock copies a stage and its descendants into a template.
// Values are zeroed and paths are rebased so the root becomes "1". Template
// node ids are the live ids; grafting never reuses them.
func ExtractBlock(nodes []Node, rootID, name string, now time.Time) (Block, error) {
	root, ok := FindNode(nodes, rootID)
	if !ok {
		return Block{}, fmt.Errorf("%w: %s", ErrNotFound, rootID)
	}
	if !root.IsStage() {
		return Block{}, fmt.Errorf("%w: %s", ErrNotStage, root.Path)
	}

	sub, err := Subtree(nodes, rootID)
	if err != nil {
		return Block{}, err
	}

	// Rebuilding from the subset alone makes the root the only root, so
	// flattening rebases every path under "1"
	local := Normalize(sub)
	for i := range local {
		local[i] = zeroValues(local[i])
	}

	if name == "" {
		name = root.Label
	}
	return Block{
		ID:        NewID(),
		Name:      name,
		CreatedAt: now,
		Nodes:     local,
	}, nil
}

// GraftBlock inserts a fresh copy of the block inside the target stage.
//
// Every block node gets a new id from newID (one-to-one, so parent/child
// relations survive), the block forest is rebuilt and each of its roots is
// appended inside the target on a single working forest, which is flattened
// once at the end. The block itself is not modified. The new ids are
// returned in block order.
func GraftBlock(nodes []Node, block Block, targetID string, newID func() string) ([]Node, []string, error) {
	if len(block.Nodes) == 0 {
		return nodes, nil, ErrEmptyBlock
	}
	target, ok := FindNode(nodes, targetID)
	if !ok {
		return nodes, nil, fmt.Errorf("%w: %s", ErrNotFound, targetID)
	}
	if !target.IsStage() {
		return nodes, nil, fmt.Errorf("%w: %s is an item", ErrItemHasNoChildren, target.Label)
	}
	if newID == nil {
		newID = NewID
	}

	idMap := make(map[string]string, len(block.Nodes))
	fresh := make([]Node, len(block.Nodes))
	ids := make([]string, len(block.Nodes))
	for i, bn := range block.Nodes {
		id, seen := idMap[bn.ID]
		if !seen {
			id = newID()
			idMap[bn.ID] = id
		}
		c := bn.Clone()
		c.ID = id
		fresh[i] = c
		ids[i] = id
	}

	forest := BuildTree(nodes)
	for _, root := range BuildTree(fresh) {
		updated, err := Insert(forest, root, targetID, ModeInside)
		if err != nil {
			return nodes, nil, err
		}
		forest = updated
	}
	return FlattenTree(forest), ids, nil
}
