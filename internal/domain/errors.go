package domain

import "errors"

// Engine errors. Every one of them means the operation did not happen and the
// input list is returned unchanged.
var (
	ErrNotFound          = errors.New("node not found")
	ErrCycle             = errors.New("cannot move a node into itself or its descendants")
	ErrItemHasNoChildren = errors.New("items cannot have children")
	ErrNotStage          = errors.New("node is not a stage")
	ErrNotItem           = errors.New("node is not an item")
	ErrInvalidPath       = errors.New("invalid path")
	ErrEmptyBlock        = errors.New("block has no nodes")
)
