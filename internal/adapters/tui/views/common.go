package views

import (
	"budgetree/internal/domain"
)

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// SearchPurpose says what a picked catalog entry is for
type SearchPurpose int

const (
	SearchInsert SearchPurpose = iota
	SearchReplace
)

// Messages for view switching
type (
	// SwitchToBrowserMsg returns to the tree, reloading it
	SwitchToBrowserMsg struct{}

	SwitchToHelpMsg struct{}

	// SwitchToCreateMsg opens the new stage/item form next to Target.
	// A nil Target creates a root.
	SwitchToCreateMsg struct {
		Target *domain.Node
		Kind   domain.Kind
	}

	SwitchToEditMsg struct {
		Node domain.Node
	}

	SwitchToDeleteMsg struct {
		Node domain.Node
	}

	// SwitchToSearchMsg opens the catalog search. For SearchInsert the entry
	// goes next to Target with Relation; for SearchReplace it reprices Target.
	SwitchToSearchMsg struct {
		Purpose  SearchPurpose
		Target   *domain.Node
		Relation domain.Relation
	}

	// SwitchToBlocksMsg opens the block library; blocks insert inside Target
	SwitchToBlocksMsg struct {
		Target *domain.Node
	}

	SwitchToSaveBlockMsg struct {
		Node domain.Node
	}
)

// EditMemoryMsg asks the app to edit an item's calculation memory in the
// external editor
type EditMemoryMsg struct {
	Node domain.Node
}

// ReloadMsg asks the browser to reload the tree, optionally showing a
// message and selecting a node
type ReloadMsg struct {
	Message  string
	IsErr    bool
	SelectID string
}

type errMsg struct {
	err error
}
