package domain

// TreeNode is a node of the transient forest built from the flat list.
// Paths inside a forest are stale until FlattenTree rewrites them.
type TreeNode struct {
	Node     Node
	Children []*TreeNode
}

// BuildTree converts a flat list into a forest.
//
// Nodes are sorted by path so parents precede children, then each node is
// attached to the node whose path equals its parent path. A node whose parent
// cannot be resolved, or resolves to an item, becomes an extra root: the
// build never drops data and never fails. Duplicate paths resolve children to
// the first node holding that path.
func BuildTree(nodes []Node) []*TreeNode {
	sorted := SortedByPath(nodes)

	var roots []*TreeNode
	byPath := make(map[string]*TreeNode, len(sorted))

	for _, n := range sorted {
		tn := &TreeNode{Node: n.Clone()}
		if _, dup := byPath[n.Path]; !dup {
			byPath[n.Path] = tn
		}

		parentPath, hasParent := ParentPath(n.Path)
		if !hasParent {
			roots = append(roots, tn)
			continue
		}

		parent, ok := byPath[parentPath]
		if !ok || parent == tn || !parent.Node.IsStage() {
			// Orphan: adopt as root
			roots = append(roots, tn)
			continue
		}
		parent.Children = append(parent.Children, tn)
	}

	return roots
}

// FlattenTree converts a forest back into a flat list in depth-first sibling
// order, recomputing every path from the node's position. Previous paths are
// discarded, so the output is always contiguous and collision-free.
func FlattenTree(forest []*TreeNode) []Node {
	result := make([]Node, 0, countTree(forest))
	flattenRecursive(forest, "", &result)
	return result
}

func flattenRecursive(nodes []*TreeNode, parentPath string, result *[]Node) {
	for i, tn := range nodes {
		n := tn.Node.Clone()
		n.Path = ChildPath(parentPath, i+1)
		*result = append(*result, n)
		if len(tn.Children) > 0 {
			flattenRecursive(tn.Children, n.Path, result)
		}
	}
}

func countTree(nodes []*TreeNode) int {
	total := 0
	for _, tn := range nodes {
		total += 1 + countTree(tn.Children)
	}
	return total
}

// Normalize renumbers a flat list into canonical contiguous paths
func Normalize(nodes []Node) []Node {
	return FlattenTree(BuildTree(nodes))
}

// Walk visits every tree node depth-first; returning false stops the walk
func Walk(forest []*TreeNode, fn func(tn *TreeNode, depth int) bool) {
	walkRecursive(forest, 0, fn)
}

func walkRecursive(nodes []*TreeNode, depth int, fn func(*TreeNode, int) bool) bool {
	for _, tn := range nodes {
		if !fn(tn, depth) {
			return false
		}
		if !walkRecursive(tn.Children, depth+1, fn) {
			return false
		}
	}
	return true
}

// FindTreeNode returns the first tree node with the given id
func FindTreeNode(forest []*TreeNode, id string) *TreeNode {
	var found *TreeNode
	Walk(forest, func(tn *TreeNode, _ int) bool {
		if tn.Node.ID == id {
			found = tn
			return false
		}
		return true
	})
	return found
}
