package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"budgetree/internal/adapters/tui/styles"
	"budgetree/internal/application/commands"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// MoveKeyMap defines key bindings while a node is being moved
type MoveKeyMap struct {
	Before key.Binding
	Inside key.Binding
	After  key.Binding
	Cancel key.Binding
}

var MoveKeys = MoveKeyMap{
	Before: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "drop before"),
	),
	Inside: key.NewBinding(
		key.WithKeys("i", "enter"),
		key.WithHelp("i", "drop inside"),
	),
	After: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "drop after"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "m"),
		key.WithHelp("esc", "cancel move"),
	),
}

// Pointer offsets sampled from the top, middle and bottom of a row. They
// land in distinct drop zones for stages and items alike.
var probeOffsets = [...]float64{0.1, 0.5, 0.9}

// MoveState tracks a node picked up for moving. Hover feedback asks the
// same drop resolver the commit goes through.
type MoveState struct {
	Dragged domain.Node
}

// DropModes returns the modes a drop over target can resolve to, in row
// order. It is empty when the target is the dragged node or one of its
// descendants.
func (s MoveState) DropModes(nodes []domain.Node, targetID string) []domain.InsertMode {
	var modes []domain.InsertMode
	for _, offset := range probeOffsets {
		mode := domain.ResolveDrop(nodes, s.Dragged.ID, targetID, offset)
		if mode == domain.ModeNone {
			return nil
		}
		if len(modes) == 0 || modes[len(modes)-1] != mode {
			modes = append(modes, mode)
		}
	}
	return modes
}

// Allows reports whether dropping over target with mode is possible
func (s MoveState) Allows(nodes []domain.Node, targetID string, mode domain.InsertMode) bool {
	for _, m := range s.DropModes(nodes, targetID) {
		if m == mode {
			return true
		}
	}
	return false
}

// RenderHover renders the drop feedback shown next to the hovered row
func (s MoveState) RenderHover(nodes []domain.Node, targetID string) string {
	modes := s.DropModes(nodes, targetID)
	if len(modes) == 0 {
		return styles.DropInvalid.Render("✗ cannot drop here")
	}
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.String()
	}
	return styles.DropValid.Render("⇵ " + strings.Join(names, "/"))
}

// RenderBanner renders the status line shown while moving
func (s MoveState) RenderBanner() string {
	return fmt.Sprintf("%s %s  %s",
		styles.StatusKey.Render("MOVE"),
		RenderNodeSummary(s.Dragged),
		RenderHelpLine(MoveKeys.Before, MoveKeys.Inside, MoveKeys.After, MoveKeys.Cancel))
}

// drop commits the move and reloads the tree selecting the moved node
func (s MoveState) drop(repo ports.BudgetRepository, targetID string, mode domain.InsertMode) tea.Cmd {
	return func() tea.Msg {
		result, err := commands.NewMoveNodeCommand(repo, s.Dragged.ID, targetID, mode).Execute(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return ReloadMsg{Message: result.Message, SelectID: s.Dragged.ID}
	}
}
