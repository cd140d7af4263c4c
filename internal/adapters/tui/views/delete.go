package views

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"budgetree/internal/adapters/tui/styles"
	"budgetree/internal/application/commands"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// DeleteModel is the model for the delete confirmation view
type DeleteModel struct {
	ConfirmationModel
	repo   ports.BudgetRepository
	nested int
}

// NewDeleteModel creates a new delete view model
func NewDeleteModel(repo ports.BudgetRepository) *DeleteModel {
	return &DeleteModel{
		ConfirmationModel: NewConfirmationModel(),
		repo:              repo,
	}
}

type deletePreviewMsg struct {
	node   domain.Node
	nested int
}

// SetNode selects the node to delete and counts its descendants
func (m *DeleteModel) SetNode(n domain.Node) tea.Cmd {
	m.ClearMessage()
	m.SetTarget(&n)
	m.nested = 0
	repo := m.repo
	return func() tea.Msg {
		node, nested, err := commands.NewDeleteCommand(repo, n.ID).Preview(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return deletePreviewMsg{node: node, nested: nested}
	}
}

// Init initializes the delete view
func (m *DeleteModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the delete view
func (m *DeleteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case deletePreviewMsg:
		m.SetTarget(&msg.node)
		m.nested = msg.nested
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg,
			m.doDelete,
			func() tea.Msg { return SwitchToBrowserMsg{} },
		)
		if handled {
			return m, cmd
		}
	}

	return m, nil
}

func (m *DeleteModel) doDelete() tea.Msg {
	if m.TargetNode == nil {
		return SwitchToBrowserMsg{}
	}
	result, err := commands.NewDeleteCommand(m.repo, m.TargetNode.ID).Execute(context.Background())
	if err != nil {
		return errMsg{err}
	}
	return ReloadMsg{Message: result.Message}
}

// View renders the delete confirmation view
func (m *DeleteModel) View() string {
	v := NewViewBuilder().Title("Delete Confirmation")
	v.Line(styles.ErrorMsg.Render("This action cannot be undone!"))
	v.BlankLine()
	v.Line(RenderTargetInfo(m.TargetNode, "Delete", m.nested))
	v.BlankLine()
	if m.TargetNode != nil && m.TargetNode.IsStage() && m.nested == 0 {
		v.Muted("  The stage is empty.")
		v.BlankLine()
	}
	v.Message(m.Message, m.MessageErr)
	v.Raw(RenderConfirmPrompt("Are you sure?"))
	return v.String()
}
