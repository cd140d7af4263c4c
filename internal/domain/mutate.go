package domain

import (
	"fmt"
	"slices"
)

// InsertMode says where a subtree lands relative to its target
type InsertMode int

const (
	ModeNone InsertMode = iota // gesture resolves to nothing
	ModeBefore
	ModeAfter
	ModeInside
)

func (m InsertMode) String() string {
	switch m {
	case ModeBefore:
		return "before"
	case ModeAfter:
		return "after"
	case ModeInside:
		return "inside"
	default:
		return "none"
	}
}

// ParseInsertMode is the inverse of InsertMode.String
func ParseInsertMode(s string) (InsertMode, error) {
	switch s {
	case "before":
		return ModeBefore, nil
	case "after":
		return ModeAfter, nil
	case "inside":
		return ModeInside, nil
	default:
		return ModeNone, fmt.Errorf("invalid insert mode %q (expected before, after or inside)", s)
	}
}

// Remove detaches the first node matching id, together with its subtree.
// The forest passed in is not modified; nodes along the path to the removed
// node are copied. When id is absent the removed subtree is nil and the
// original forest is returned.
func Remove(forest []*TreeNode, id string) (*TreeNode, []*TreeNode) {
	for i, tn := range forest {
		if tn.Node.ID == id {
			cleaned := slices.Delete(slices.Clone(forest), i, i+1)
			return tn, cleaned
		}

		if len(tn.Children) == 0 {
			continue
		}
		removed, children := Remove(tn.Children, id)
		if removed != nil {
			cleaned := slices.Clone(forest)
			cleaned[i] = &TreeNode{Node: tn.Node, Children: children}
			return removed, cleaned
		}
	}
	return nil, forest
}

// Insert places sub relative to the node matching targetID.
//
// ModeInside appends sub as the last child of the target and fails with
// ErrItemHasNoChildren when the target is an item. ModeBefore and ModeAfter
// insert sub as the target's adjacent sibling, at the root list when the
// target is a root. A missing target yields ErrNotFound. On error the
// original forest is returned unchanged.
func Insert(forest []*TreeNode, sub *TreeNode, targetID string, mode InsertMode) ([]*TreeNode, error) {
	if sub == nil {
		return forest, fmt.Errorf("%w: nothing to insert", ErrNotFound)
	}
	if mode == ModeNone {
		return forest, fmt.Errorf("insert %s: no insert mode", targetID)
	}

	out, err := insertRecursive(forest, sub, targetID, mode)
	if err != nil {
		return forest, err
	}
	if out == nil {
		return forest, fmt.Errorf("%w: %s", ErrNotFound, targetID)
	}
	return out, nil
}

// insertRecursive returns a nil slice when the target is not in nodes
func insertRecursive(nodes []*TreeNode, sub *TreeNode, targetID string, mode InsertMode) ([]*TreeNode, error) {
	for i, tn := range nodes {
		if tn.Node.ID == targetID {
			switch mode {
			case ModeInside:
				if !tn.Node.IsStage() {
					return nil, fmt.Errorf("%w: %s is an item", ErrItemHasNoChildren, tn.Node.Label)
				}
				out := slices.Clone(nodes)
				children := append(slices.Clone(tn.Children), sub)
				out[i] = &TreeNode{Node: tn.Node, Children: children}
				return out, nil
			case ModeBefore:
				return slices.Insert(slices.Clone(nodes), i, sub), nil
			default:
				return slices.Insert(slices.Clone(nodes), i+1, sub), nil
			}
		}

		if len(tn.Children) == 0 {
			continue
		}
		children, err := insertRecursive(tn.Children, sub, targetID, mode)
		if err != nil {
			return nil, err
		}
		if children != nil {
			out := slices.Clone(nodes)
			out[i] = &TreeNode{Node: tn.Node, Children: children}
			return out, nil
		}
	}
	return nil, nil
}

// CheckMove applies the cycle guard on the original paths: a node cannot be
// placed relative to itself or to any of its descendants.
func CheckMove(nodes []Node, draggedID, targetID string) error {
	dragged, ok := FindNode(nodes, draggedID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, draggedID)
	}
	target, ok := FindNode(nodes, targetID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, targetID)
	}
	if dragged.ID == target.ID || IsDescendantOf(target.Path, dragged.Path) {
		return ErrCycle
	}
	return nil
}

// Move relocates a node (and its subtree) relative to a target and returns
// the renumbered flat list. On any error the input list is returned as is.
func Move(nodes []Node, draggedID, targetID string, mode InsertMode) ([]Node, error) {
	if err := CheckMove(nodes, draggedID, targetID); err != nil {
		return nodes, err
	}

	target, _ := FindNode(nodes, targetID)
	if mode == ModeInside && !target.IsStage() {
		return nodes, fmt.Errorf("%w: %s is an item", ErrItemHasNoChildren, target.Label)
	}

	forest := BuildTree(nodes)
	sub, cleaned := Remove(forest, draggedID)
	if sub == nil {
		return nodes, fmt.Errorf("%w: %s", ErrNotFound, draggedID)
	}

	updated, err := Insert(cleaned, sub, targetID, mode)
	if err != nil {
		return nodes, err
	}
	return FlattenTree(updated), nil
}

// RemoveSubtree deletes a node and all of its descendants and renumbers the
// remaining nodes. It returns how many nodes were removed.
func RemoveSubtree(nodes []Node, id string) ([]Node, int, error) {
	removed, cleaned := Remove(BuildTree(nodes), id)
	if removed == nil {
		return nodes, 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return FlattenTree(cleaned), countTree([]*TreeNode{removed}), nil
}

// CountDescendants returns the number of nodes strictly below id
func CountDescendants(nodes []Node, id string) int {
	n, ok := FindNode(nodes, id)
	if !ok {
		return 0
	}
	count := 0
	for _, other := range nodes {
		if IsDescendantOf(other.Path, n.Path) {
			count++
		}
	}
	return count
}
