package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"budgetree/internal/adapters/tui/styles"
	"budgetree/internal/domain"
)

// ConfirmKeyMap defines key bindings for confirmation views
type ConfirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultConfirmKeys returns the default confirmation key bindings
var DefaultConfirmKeys = ConfirmKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y", "s"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

// ConfirmationModel provides a base for confirmation-style views (delete,
// version conflict)
type ConfirmationModel struct {
	ViewState
	TargetNode *domain.Node
	Keys       ConfirmKeyMap
}

// NewConfirmationModel creates a new confirmation model with default keys
func NewConfirmationModel() ConfirmationModel {
	return ConfirmationModel{
		Keys: DefaultConfirmKeys,
	}
}

// SetTarget sets the target node for the confirmation
func (m *ConfirmationModel) SetTarget(node *domain.Node) {
	m.TargetNode = node
}

// HandleKeyMsg processes key messages for confirmation views.
// Returns (handled, cmd) where handled is true if the key was processed.
func (m *ConfirmationModel) HandleKeyMsg(msg tea.KeyMsg, onConfirm, onCancel func() tea.Msg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Cancel):
		return true, func() tea.Msg { return onCancel() }
	case key.Matches(msg, m.Keys.Confirm):
		return true, func() tea.Msg { return onConfirm() }
	}
	return false, nil
}

// RenderConfirmPrompt renders the standard confirmation prompt
func RenderConfirmPrompt(question string) string {
	var b strings.Builder
	b.WriteString(question)
	b.WriteString(" ")
	b.WriteString(styles.HelpKey.Render("y"))
	b.WriteString(styles.HelpDesc.Render(" to confirm, "))
	b.WriteString(styles.HelpKey.Render("n"))
	b.WriteString(styles.HelpDesc.Render(" to cancel"))
	return b.String()
}

// RenderTargetInfo renders the node an action applies to, with the number of
// nested nodes the action drags along
func RenderTargetInfo(node *domain.Node, action string, nested int) string {
	if node == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.InputLabel.Render(action + " " + strings.ToLower(node.Kind.String()) + ":"))
	b.WriteString("\n  ")
	b.WriteString(node.Path)
	b.WriteString(" ")
	b.WriteString(node.Label)
	if nested > 0 {
		b.WriteString("\n  ")
		b.WriteString(styles.ErrorMsg.Render(fmt.Sprintf("and %d nested nodes", nested)))
	}
	return b.String()
}

// RenderConflict renders the version conflict question for a catalog entry
// priced after the project's reference date
func RenderConflict(entry domain.CatalogEntry, project domain.Project) string {
	var b strings.Builder
	b.WriteString(styles.ErrorMsg.Render("Newer price version"))
	b.WriteString("\n\n")
	b.WriteString(RenderEntry(entry))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Priced at %s, after the project reference date %s.",
		entry.Date.Format(domain.DateLayout),
		project.ReferenceDate.Format(domain.DateLayout)))
	b.WriteString("\n\n")
	b.WriteString(styles.HelpKey.Render("y"))
	b.WriteString(styles.HelpDesc.Render(" use the newer price, "))
	b.WriteString(styles.HelpKey.Render("n"))
	b.WriteString(styles.HelpDesc.Render(" keep the budget as it is"))
	return styles.Modal.Render(b.String())
}
