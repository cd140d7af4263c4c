package domain

import (
	"fmt"
	"slices"
)

// Relation says where a manually created node goes relative to a target
type Relation int

const (
	RelationRoot Relation = iota
	RelationSibling
	RelationChild
	RelationReplace
)

func (r Relation) String() string {
	switch r {
	case RelationRoot:
		return "root"
	case RelationSibling:
		return "sibling"
	case RelationChild:
		return "child"
	case RelationReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// ParseRelation is the inverse of Relation.String
func ParseRelation(s string) (Relation, error) {
	switch s {
	case "root":
		return RelationRoot, nil
	case "sibling":
		return RelationSibling, nil
	case "child":
		return RelationChild, nil
	case "replace":
		return RelationReplace, nil
	default:
		return RelationRoot, fmt.Errorf("invalid relation %q (expected root, sibling, child or replace)", s)
	}
}

// childrenOf returns the direct children of parent ("" = roots), path-sorted
func childrenOf(nodes []Node, parent string) []Node {
	var out []Node
	for _, n := range nodes {
		if IsChildOf(n.Path, parent) {
			out = append(out, n)
		}
	}
	SortByPath(out)
	return out
}

// Children returns the direct children of the node with the given id
func Children(nodes []Node, id string) []Node {
	n, ok := FindNode(nodes, id)
	if !ok {
		return nil
	}
	return childrenOf(nodes, n.Path)
}

// Roots returns the root nodes in path order
func Roots(nodes []Node) []Node {
	return childrenOf(nodes, "")
}

// NextRootPath returns the path for a new root appended after the last one
func NextRootPath(nodes []Node) string {
	roots := Roots(nodes)
	if len(roots) == 0 {
		return "1"
	}
	return NextPath(roots[len(roots)-1].Path)
}

// NextSiblingPath returns the path for a new sibling of the target, placed
// after the numerically last sibling
func NextSiblingPath(nodes []Node, targetID string) (string, error) {
	target, ok := FindNode(nodes, targetID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, targetID)
	}

	parent, _ := ParentPath(target.Path)
	siblings := childrenOf(nodes, parent)
	if len(siblings) == 0 {
		return "", fmt.Errorf("%w: no siblings under %q", ErrNotFound, parent)
	}
	return NextPath(siblings[len(siblings)-1].Path), nil
}

// NextChildPath returns the path for a new last child of the target stage
func NextChildPath(nodes []Node, targetID string) (string, error) {
	target, ok := FindNode(nodes, targetID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, targetID)
	}
	if !target.IsStage() {
		return "", fmt.Errorf("%w: %s", ErrNotStage, target.Path)
	}

	children := childrenOf(nodes, target.Path)
	if len(children) == 0 {
		return ChildPath(target.Path, 1), nil
	}
	return NextPath(children[len(children)-1].Path), nil
}

// ReplacePath returns the target's own path: replacement happens in place
func ReplacePath(nodes []Node, targetID string) (string, error) {
	target, ok := FindNode(nodes, targetID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, targetID)
	}
	return target.Path, nil
}

// Allocate computes the path for a node created relative to a target.
// RelationRoot ignores the target.
func Allocate(nodes []Node, targetID string, rel Relation) (string, error) {
	switch rel {
	case RelationRoot:
		return NextRootPath(nodes), nil
	case RelationSibling:
		if targetID == "" {
			return NextRootPath(nodes), nil
		}
		return NextSiblingPath(nodes, targetID)
	case RelationChild:
		return NextChildPath(nodes, targetID)
	case RelationReplace:
		return ReplacePath(nodes, targetID)
	default:
		return "", fmt.Errorf("unknown relation: %d", rel)
	}
}

// InsertAllocated adds a node whose path was produced by Allocate and
// renumbers the list. The node's parent must be an existing stage.
func InsertAllocated(nodes []Node, node Node) ([]Node, error) {
	if err := ValidatePath(node.Path); err != nil {
		return nodes, err
	}
	if parentPath, ok := ParentPath(node.Path); ok {
		parent, found := FindByPath(nodes, parentPath)
		if !found {
			return nodes, fmt.Errorf("%w: parent %s", ErrNotFound, parentPath)
		}
		if !parent.IsStage() {
			return nodes, fmt.Errorf("%w: %s", ErrItemHasNoChildren, parentPath)
		}
	}
	return Normalize(append(slices.Clone(nodes), node)), nil
}
