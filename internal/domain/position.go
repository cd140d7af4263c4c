package domain

// Drop zone thresholds, as fractions of the target row height (0 = top).
// Stages reserve the middle half for "drop inside"; items only reorder.
const (
	StageBeforeThreshold = 0.25
	StageAfterThreshold  = 0.75
	ItemSplitThreshold   = 0.5
)

// ResolveMode maps a pointer's vertical offset within the target row to an
// insert mode, based on the target's kind.
func ResolveMode(offset float64, kind Kind) InsertMode {
	switch kind {
	case KindStage:
		switch {
		case offset < StageBeforeThreshold:
			return ModeBefore
		case offset > StageAfterThreshold:
			return ModeAfter
		default:
			return ModeInside
		}
	case KindItem:
		if offset < ItemSplitThreshold {
			return ModeBefore
		}
		return ModeAfter
	default:
		return ModeNone
	}
}

// ResolveDrop resolves a drag gesture over a target row. It yields ModeNone,
// whatever the geometry, when either node is unknown or when the move would
// place a node inside its own subtree. Hover feedback and the drop commit
// both go through here so they can never disagree.
func ResolveDrop(nodes []Node, draggedID, targetID string, offset float64) InsertMode {
	if err := CheckMove(nodes, draggedID, targetID); err != nil {
		return ModeNone
	}
	target, _ := FindNode(nodes, targetID)
	return ResolveMode(offset, target.Kind)
}
