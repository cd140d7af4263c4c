package domain

// CollapseSet holds the ids of collapsed stages
type CollapseSet map[string]struct{}

// NewCollapseSet creates a set with the given ids collapsed
func NewCollapseSet(ids ...string) CollapseSet {
	s := make(CollapseSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// IsCollapsed reports whether the stage is collapsed
func (s CollapseSet) IsCollapsed(id string) bool {
	_, ok := s[id]
	return ok
}

// Collapse hides the children of a stage
func (s CollapseSet) Collapse(id string) {
	s[id] = struct{}{}
}

// Expand shows the children of a stage
func (s CollapseSet) Expand(id string) {
	delete(s, id)
}

// Toggle flips the collapsed state of a stage
func (s CollapseSet) Toggle(id string) {
	if s.IsCollapsed(id) {
		s.Expand(id)
		return
	}
	s.Collapse(id)
}

// ExpandAll clears the set
func (s CollapseSet) ExpandAll() {
	clear(s)
}

// CollapseAll collapses every stage in nodes
func (s CollapseSet) CollapseAll(nodes []Node) {
	for _, n := range nodes {
		if n.IsStage() {
			s.Collapse(n.ID)
		}
	}
}

// IsVisible reports whether a node is shown: none of the stages found by
// walking its path prefixes may be collapsed
func IsVisible(nodes []Node, node Node, collapsed CollapseSet) bool {
	if len(collapsed) == 0 {
		return true
	}
	byPath := make(map[string]string, len(nodes))
	for _, n := range nodes {
		byPath[n.Path] = n.ID
	}
	return isVisible(byPath, node.Path, collapsed)
}

func isVisible(idByPath map[string]string, path string, collapsed CollapseSet) bool {
	for parent, ok := ParentPath(path); ok; parent, ok = ParentPath(parent) {
		if id, found := idByPath[parent]; found && collapsed.IsCollapsed(id) {
			return false
		}
	}
	return true
}

// VisibleNodes returns the path-ordered nodes a renderer should show
func VisibleNodes(nodes []Node, collapsed CollapseSet) []Node {
	sorted := SortedByPath(nodes)
	if len(collapsed) == 0 {
		return sorted
	}
	idByPath := make(map[string]string, len(sorted))
	for _, n := range sorted {
		idByPath[n.Path] = n.ID
	}
	out := sorted[:0]
	for _, n := range sorted {
		if isVisible(idByPath, n.Path, collapsed) {
			out = append(out, n)
		}
	}
	return out
}
