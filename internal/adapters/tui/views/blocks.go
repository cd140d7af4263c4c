package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"budgetree/internal/adapters/tui/styles"
	"budgetree/internal/application/commands"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// BlocksKeyMap defines key bindings for the block library
type BlocksKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Insert key.Binding
	Delete key.Binding
	Cancel key.Binding
}

var BlocksKeys = BlocksKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+k"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+j"),
		key.WithHelp("↓", "down"),
	),
	Insert: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "insert"),
	),
	Delete: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "delete block"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
}

type blocksLoadedMsg struct {
	blocks []domain.Block
}

type blockDeletedMsg struct {
	message string
}

// BlocksModel lists saved blocks with a name filter, previews the selected
// one and inserts it inside the target stage
type BlocksModel struct {
	ConfirmationModel
	repo     ports.BudgetRepository
	filter   textinput.Model
	rows     *RowWindow
	blocks   []domain.Block
	deleting bool
}

// NewBlocksModel creates a new block library view model
func NewBlocksModel(repo ports.BudgetRepository) *BlocksModel {
	filter := textinput.New()
	filter.Placeholder = "Filter by name"
	filter.Prompt = "Filter: "
	filter.CharLimit = 80

	return &BlocksModel{
		ConfirmationModel: NewConfirmationModel(),
		repo:              repo,
		filter:            filter,
		rows:              NewRowWindow(10),
	}
}

// Open resets the library for inserting into target. A nil target only
// allows browsing and deleting.
func (m *BlocksModel) Open(target *domain.Node) tea.Cmd {
	m.ClearMessage()
	m.SetTarget(target)
	m.deleting = false
	m.filter.SetValue("")
	m.filter.Focus()
	m.rows.Reset()
	return tea.Batch(textinput.Blink, m.load())
}

func (m *BlocksModel) load() tea.Cmd {
	repo, filter := m.repo, m.filter.Value()
	return func() tea.Msg {
		blocks, err := commands.NewListBlocksCommand(repo, filter).Execute(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return blocksLoadedMsg{blocks}
	}
}

// Init initializes the block library
func (m *BlocksModel) Init() tea.Cmd {
	return m.load()
}

// Update handles messages for the block library
func (m *BlocksModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case blocksLoadedMsg:
		m.blocks = msg.blocks
		m.rows.SetTotal(len(m.blocks))
		return m, nil

	case blockDeletedMsg:
		m.SetMessage(msg.message, false)
		return m, m.load()

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		if m.deleting {
			handled, cmd := m.HandleKeyMsg(msg, m.deleteSelected, func() tea.Msg { return nil })
			if handled {
				m.deleting = false
			}
			return m, cmd
		}
		return m, m.updateKeys(msg)
	}
	return m, nil
}

func (m *BlocksModel) updateKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, BlocksKeys.Cancel):
		m.filter.Blur()
		return switchTo(SwitchToBrowserMsg{})
	case key.Matches(msg, BlocksKeys.Up):
		m.rows.Up()
		return nil
	case key.Matches(msg, BlocksKeys.Down):
		m.rows.Down()
		return nil
	case key.Matches(msg, BlocksKeys.Delete):
		if _, ok := m.selectedBlock(); ok {
			m.deleting = true
		}
		return nil
	case key.Matches(msg, BlocksKeys.Insert):
		return m.insertSelected()
	}

	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.rows.Reset()
		return tea.Batch(cmd, m.load())
	}
	return cmd
}

func (m *BlocksModel) insertSelected() tea.Cmd {
	block, ok := m.selectedBlock()
	if !ok {
		return nil
	}
	if m.TargetNode == nil {
		m.SetMessage("Select a stage in the tree before inserting a block", true)
		return nil
	}
	repo, targetID := m.repo, m.TargetNode.ID
	m.filter.Blur()
	return func() tea.Msg {
		result, err := commands.NewInsertBlockCommand(repo, block.ID, targetID).Execute(context.Background())
		if err != nil {
			return errMsg{err}
		}
		// Selecting the first grafted root makes the browser expand the target
		selectID := targetID
		if len(result.NewIDs) > 0 {
			selectID = result.NewIDs[0]
		}
		return ReloadMsg{Message: result.Message, SelectID: selectID}
	}
}

func (m *BlocksModel) deleteSelected() tea.Msg {
	block, ok := m.selectedBlock()
	if !ok {
		return nil
	}
	result, err := commands.NewDeleteBlockCommand(m.repo, block.ID).Execute(context.Background())
	if err != nil {
		return errMsg{err}
	}
	return blockDeletedMsg{fmt.Sprintf("%s (%s)", result.Message, block.Name)}
}

func (m *BlocksModel) selectedBlock() (domain.Block, bool) {
	cursor := m.rows.Cursor()
	if cursor < 0 || cursor >= len(m.blocks) {
		return domain.Block{}, false
	}
	return m.blocks[cursor], true
}

// View renders the block library
func (m *BlocksModel) View() string {
	v := NewViewBuilder().Title("Blocks")
	if m.TargetNode != nil {
		v.Raw(styles.InputLabel.Render("Insert into: "))
		v.Line(RenderNodeSummary(*m.TargetNode))
		v.BlankLine()
	}
	v.Line(styles.InputFocused.Render(m.filter.View()))
	v.BlankLine()

	if len(m.blocks) == 0 {
		v.Muted("No saved blocks. Press s on a stage in the tree to save one.")
	}

	var list strings.Builder
	start, end := m.rows.Range()
	for i := start; i < end; i++ {
		b := m.blocks[i]
		meta := styles.MutedText.Render(fmt.Sprintf("%d nodes, %s", b.ItemCount(), b.CreatedAt.Format(domain.DateLayout)))
		name := "  " + b.Name
		if i == m.rows.Cursor() {
			name = styles.NodeSelected.Render("> " + b.Name)
		}
		list.WriteString(name + "  " + meta)
		list.WriteString("\n")
	}

	if block, ok := m.selectedBlock(); ok {
		v.Line(lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "    ", renderBlockPreview(block)))
	}

	v.BlankLine()
	v.Message(m.Message, m.MessageErr)
	if m.deleting {
		block, _ := m.selectedBlock()
		v.Raw(RenderConfirmPrompt(fmt.Sprintf("Delete block %q?", block.Name)))
	} else {
		v.Help(BlocksKeys.Up, BlocksKeys.Down, BlocksKeys.Insert, BlocksKeys.Delete, BlocksKeys.Cancel)
	}
	return v.String()
}

// renderBlockPreview renders a block's template tree
func renderBlockPreview(b domain.Block) string {
	var s strings.Builder
	s.WriteString(styles.InputLabel.Render("Preview"))
	s.WriteString("\n")
	for _, n := range b.Nodes {
		indent := strings.Repeat("  ", domain.Depth(n.Path))
		text := fmt.Sprintf("%s%s %s", indent, n.Path, n.Label)
		if n.IsStage() {
			text = styles.NodeStage.Render(text)
		} else {
			text += styles.MutedText.Render(" (" + n.Unit + ")")
		}
		s.WriteString(text)
		s.WriteString("\n")
	}
	return s.String()
}

// SaveBlockModel asks for the name of a block saved from a stage
type SaveBlockModel struct {
	ViewState
	repo ports.BudgetRepository
	node domain.Node
	form *InputForm
}

// NewSaveBlockModel creates a new save block view model
func NewSaveBlockModel(repo ports.BudgetRepository) *SaveBlockModel {
	return &SaveBlockModel{repo: repo, form: NewInputForm()}
}

// SetNode selects the stage to save; its label is the default name
func (m *SaveBlockModel) SetNode(n domain.Node) {
	m.ClearMessage()
	m.node = n
	m.form = NewInputForm(NewValueField("Block name", n.Label, 120))
}

// Init initializes the save block view
func (m *SaveBlockModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the save block view
func (m *SaveBlockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.form.Keys.Cancel):
			return m, switchTo(SwitchToBrowserMsg{})
		case key.Matches(msg, m.form.Keys.Submit):
			repo, id, name := m.repo, m.node.ID, m.form.Value(0)
			return m, func() tea.Msg {
				result, err := commands.NewSaveBlockCommand(repo, id, name).Execute(context.Background())
				if err != nil {
					return errMsg{err}
				}
				return ReloadMsg{Message: result.Message, SelectID: id}
			}
		}
	}

	_, cmd := m.form.Update(msg)
	return m, cmd
}

// View renders the save block view
func (m *SaveBlockModel) View() string {
	v := NewViewBuilder().Title("Save Block")
	v.Line(RenderNodeSummary(m.node))
	v.Muted("Values are zeroed and quantities reset to 1 in the saved copy.")
	v.BlankLine()
	v.Line(m.form.RenderFields())
	v.BlankLine()
	v.Message(m.Message, m.MessageErr)
	v.Raw(m.form.RenderHelp("save"))
	return v.String()
}
