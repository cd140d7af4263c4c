package views

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"budgetree/internal/adapters/tui/styles"
	"budgetree/internal/application/commands"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// BrowserKeyMap defines key bindings for the browser view
type BrowserKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Enter       key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	NewStage    key.Binding
	NewItem     key.Binding
	AddCatalog  key.Binding
	Replace     key.Binding
	Edit        key.Binding
	Memory      key.Binding
	Delete      key.Binding
	Move        key.Binding
	SaveBlock   key.Binding
	Blocks      key.Binding
	SaveCatalog key.Binding
	Copy        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "toggle"),
	),
	ExpandAll: key.NewBinding(
		key.WithKeys("E"),
		key.WithHelp("E", "expand all"),
	),
	CollapseAll: key.NewBinding(
		key.WithKeys("C"),
		key.WithHelp("C", "collapse all"),
	),
	NewStage: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new stage"),
	),
	NewItem: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "new item"),
	),
	AddCatalog: key.NewBinding(
		key.WithKeys("a", "/"),
		key.WithHelp("a", "add from catalog"),
	),
	Replace: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "replace"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Memory: key.NewBinding(
		key.WithKeys("M"),
		key.WithHelp("M", "memory"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "delete"),
	),
	Move: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "move"),
	),
	SaveBlock: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save block"),
	),
	Blocks: key.NewBinding(
		key.WithKeys("B"),
		key.WithHelp("B", "blocks"),
	),
	SaveCatalog: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "save to catalog"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Rows taken by the header, the message and the help line
const browserChrome = 9

// BrowserModel is the model for the tree browser view
type BrowserModel struct {
	ViewState
	repo      ports.BudgetRepository
	collapsed domain.CollapseSet
	result    *commands.TreeResult
	rows      *RowWindow
	move      *MoveState
	selectID  string
}

// NewBrowserModel creates a new browser model
func NewBrowserModel(repo ports.BudgetRepository) *BrowserModel {
	return &BrowserModel{
		repo:      repo,
		collapsed: domain.NewCollapseSet(),
		rows:      NewRowWindow(20),
	}
}

// Init initializes the browser
func (m *BrowserModel) Init() tea.Cmd {
	return m.loadTree
}

func (m *BrowserModel) loadTree() tea.Msg {
	result, err := commands.NewShowTreeCommand(m.repo, m.collapsed).Execute(context.Background())
	if err != nil {
		return errMsg{err}
	}
	return treeLoadedMsg{result}
}

type treeLoadedMsg struct {
	result *commands.TreeResult
}

// Update handles messages for the browser
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case treeLoadedMsg:
		m.setResult(msg.result)
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case ReloadMsg:
		if msg.Message != "" {
			m.SetMessage(msg.Message, msg.IsErr)
		}
		if msg.SelectID != "" {
			m.selectID = msg.SelectID
		}
		return m, m.loadTree

	case tea.KeyMsg:
		m.ClearMessage()
		if m.move != nil {
			return m, m.updateMoveMode(msg)
		}
		return m, m.updateKeys(msg)
	}

	return m, nil
}

func (m *BrowserModel) updateKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, BrowserKeys.Quit):
		return tea.Quit

	case key.Matches(msg, BrowserKeys.Up):
		m.rows.Up()
	case key.Matches(msg, BrowserKeys.Down):
		m.rows.Down()

	case key.Matches(msg, BrowserKeys.Left):
		m.collapseOrParent()
	case key.Matches(msg, BrowserKeys.Right):
		if node := m.selectedNode(); node != nil && node.IsStage() && m.collapsed.IsCollapsed(node.ID) {
			m.collapsed.Expand(node.ID)
			m.refresh()
		}
	case key.Matches(msg, BrowserKeys.Enter):
		if node := m.selectedNode(); node != nil && node.IsStage() {
			m.collapsed.Toggle(node.ID)
			m.refresh()
		}
	case key.Matches(msg, BrowserKeys.ExpandAll):
		m.collapsed.ExpandAll()
		m.refresh()
	case key.Matches(msg, BrowserKeys.CollapseAll):
		if m.result != nil {
			m.collapsed.CollapseAll(m.result.All)
			m.refresh()
		}

	case key.Matches(msg, BrowserKeys.NewStage):
		return switchTo(SwitchToCreateMsg{Target: m.selectedNode(), Kind: domain.KindStage})
	case key.Matches(msg, BrowserKeys.NewItem):
		return switchTo(SwitchToCreateMsg{Target: m.selectedNode(), Kind: domain.KindItem})
	case key.Matches(msg, BrowserKeys.AddCatalog):
		node := m.selectedNode()
		rel := domain.RelationRoot
		if node != nil {
			rel = domain.RelationSibling
			if node.IsStage() {
				rel = domain.RelationChild
			}
		}
		return switchTo(SwitchToSearchMsg{Purpose: SearchInsert, Target: node, Relation: rel})
	case key.Matches(msg, BrowserKeys.Blocks):
		node := m.selectedNode()
		if node != nil && !node.IsStage() {
			m.SetMessage("Blocks are inserted inside a stage", true)
			return nil
		}
		return switchTo(SwitchToBlocksMsg{Target: node})
	case key.Matches(msg, BrowserKeys.Help):
		return switchTo(SwitchToHelpMsg{})
	}

	node := m.selectedNode()
	if node == nil {
		return nil
	}

	switch {
	case key.Matches(msg, BrowserKeys.Replace):
		if !node.IsItem() {
			m.SetMessage("Only items can be replaced", true)
			return nil
		}
		return switchTo(SwitchToSearchMsg{Purpose: SearchReplace, Target: node, Relation: domain.RelationReplace})
	case key.Matches(msg, BrowserKeys.Edit):
		return switchTo(SwitchToEditMsg{Node: *node})
	case key.Matches(msg, BrowserKeys.Memory):
		if !node.IsItem() {
			m.SetMessage("Only items have a calculation memory", true)
			return nil
		}
		return switchTo(EditMemoryMsg{Node: *node})
	case key.Matches(msg, BrowserKeys.Delete):
		return switchTo(SwitchToDeleteMsg{Node: *node})
	case key.Matches(msg, BrowserKeys.Move):
		m.move = &MoveState{Dragged: *node}
	case key.Matches(msg, BrowserKeys.SaveBlock):
		if !node.IsStage() {
			m.SetMessage("Only stages can be saved as blocks", true)
			return nil
		}
		return switchTo(SwitchToSaveBlockMsg{Node: *node})
	case key.Matches(msg, BrowserKeys.SaveCatalog):
		return m.saveToCatalog(*node)
	case key.Matches(msg, BrowserKeys.Copy):
		text := node.Path + " " + node.Label
		if err := clipboard.WriteAll(text); err != nil {
			m.SetMessage(fmt.Sprintf("Copy failed: %v", err), true)
			return nil
		}
		m.SetMessage("Copied: "+text, false)
	}
	return nil
}

func (m *BrowserModel) updateMoveMode(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, MoveKeys.Cancel):
		m.move = nil
		return nil
	case key.Matches(msg, BrowserKeys.Up):
		m.rows.Up()
		return nil
	case key.Matches(msg, BrowserKeys.Down):
		m.rows.Down()
		return nil
	case key.Matches(msg, BrowserKeys.Left):
		m.collapseOrParent()
		return nil
	case key.Matches(msg, BrowserKeys.Right):
		if node := m.selectedNode(); node != nil && node.IsStage() {
			m.collapsed.Expand(node.ID)
			m.refresh()
		}
		return nil
	}

	var mode domain.InsertMode
	switch {
	case key.Matches(msg, MoveKeys.Before):
		mode = domain.ModeBefore
	case key.Matches(msg, MoveKeys.Inside):
		mode = domain.ModeInside
	case key.Matches(msg, MoveKeys.After):
		mode = domain.ModeAfter
	default:
		return nil
	}

	target := m.selectedNode()
	if target == nil || m.result == nil {
		return nil
	}
	if !m.move.Allows(m.result.All, target.ID, mode) {
		m.SetMessage(fmt.Sprintf("Cannot drop %s %s", mode, target.Label), true)
		return nil
	}

	state := *m.move
	m.move = nil
	if mode == domain.ModeInside {
		m.collapsed.Expand(target.ID)
	}
	slog.Debug("drop", "dragged", state.Dragged.ID, "target", target.ID, "mode", mode)
	return state.drop(m.repo, target.ID, mode)
}

func (m *BrowserModel) saveToCatalog(node domain.Node) tea.Cmd {
	repo := m.repo
	return func() tea.Msg {
		result, err := commands.NewSaveToCatalogCommand(repo, node.ID).Execute(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return ReloadMsg{Message: result.Message}
	}
}

func switchTo(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// collapseOrParent collapses an expanded stage, otherwise jumps to the parent
func (m *BrowserModel) collapseOrParent() {
	node := m.selectedNode()
	if node == nil {
		return
	}
	if node.IsStage() && !m.collapsed.IsCollapsed(node.ID) && len(domain.Children(m.result.All, node.ID)) > 0 {
		m.collapsed.Collapse(node.ID)
		m.refresh()
		return
	}
	if parentPath, ok := domain.ParentPath(node.Path); ok {
		m.selectPath(parentPath)
	}
}

func (m *BrowserModel) setResult(result *commands.TreeResult) {
	selected := m.selectID
	if selected == "" {
		if node := m.selectedNode(); node != nil {
			selected = node.ID
		}
	}
	m.selectID = ""
	m.result = result
	if selected != "" {
		m.reveal(selected)
	}
	m.refresh()
	m.selectNode(selected)
}

// reveal expands every stage above the node so that it shows
func (m *BrowserModel) reveal(id string) {
	node, ok := domain.FindNode(m.result.All, id)
	if !ok {
		return
	}
	for path, ok := domain.ParentPath(node.Path); ok; path, ok = domain.ParentPath(path) {
		if parent, found := domain.FindByPath(m.result.All, path); found {
			m.collapsed.Expand(parent.ID)
		}
	}
}

// refresh recomputes the visible rows after the collapse set changed
func (m *BrowserModel) refresh() {
	if m.result == nil {
		return
	}
	selected := m.selectedNode()
	m.result.Nodes = domain.VisibleNodes(m.result.All, m.collapsed)
	m.rows.SetTotal(len(m.result.Nodes))
	if selected != nil {
		m.selectNode(selected.ID)
	}
}

func (m *BrowserModel) selectNode(id string) {
	if m.result == nil || id == "" {
		return
	}
	for i, n := range m.result.Nodes {
		if n.ID == id {
			m.rows.SetCursor(i)
			return
		}
	}
}

func (m *BrowserModel) selectPath(path string) {
	if n, ok := domain.FindByPath(m.result.All, path); ok {
		m.selectNode(n.ID)
	}
}

func (m *BrowserModel) selectedNode() *domain.Node {
	if m.result == nil {
		return nil
	}
	cursor := m.rows.Cursor()
	if cursor >= 0 && cursor < len(m.result.Nodes) {
		n := m.result.Nodes[cursor]
		return &n
	}
	return nil
}

// SelectedNode returns the node under the cursor, if any
func (m *BrowserModel) SelectedNode() *domain.Node {
	return m.selectedNode()
}

// Collapsed returns the browser's collapse set
func (m *BrowserModel) Collapsed() domain.CollapseSet {
	return m.collapsed
}

// Moving reports whether a node is picked up for moving
func (m *BrowserModel) Moving() bool {
	return m.move != nil
}

// View renders the browser
func (m *BrowserModel) View() string {
	if m.result == nil {
		if m.Message != "" {
			return NewViewBuilder().Message(m.Message, m.MessageErr).String()
		}
		return "Loading..."
	}

	v := NewViewBuilder()
	v.Raw(m.renderHeader()).BlankLine().BlankLine()

	if len(m.result.Nodes) == 0 {
		v.Muted("Budget is empty. Press n to add a stage or a to add a catalog item.")
	}

	start, end := m.rows.Range()
	for i := start; i < end; i++ {
		v.Line(m.renderNode(m.result.Nodes[i], i == m.rows.Cursor()))
	}
	if m.rows.Scrollable() {
		v.Muted(m.rows.Position())
	}

	v.BlankLine()
	if m.Message != "" {
		v.Message(m.Message, m.MessageErr)
	}
	if m.move != nil {
		v.Raw(m.move.RenderBanner())
	} else {
		v.Help(BrowserKeys.NewStage, BrowserKeys.AddCatalog, BrowserKeys.Edit,
			BrowserKeys.Move, BrowserKeys.Delete, BrowserKeys.Help, BrowserKeys.Quit)
	}
	return v.String()
}

func (m *BrowserModel) renderHeader() string {
	p := m.result.Project
	name := p.Name
	if name == "" {
		name = "Budget"
	}
	ref := "no reference date"
	if !p.ReferenceDate.IsZero() {
		ref = "reference " + p.ReferenceDate.Format(domain.DateLayout)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Title.Render(name),
		"  ",
		styles.Subtitle.Render(ref),
		"  ",
		styles.StatusKey.Render("TOTAL"),
		styles.NodeValue.Render(FormatMoney(m.result.Total)),
	)
}

func (m *BrowserModel) renderNode(n domain.Node, selected bool) string {
	indent := strings.Repeat("  ", domain.Depth(n.Path))

	var prefix string
	switch {
	case n.IsItem():
		prefix = styles.TreeLeaf
	case m.collapsed.IsCollapsed(n.ID):
		prefix = styles.TreeCollapsed
	default:
		prefix = styles.TreeExpanded
	}

	text := fmt.Sprintf("%s %s", n.Path, n.Label)
	var detail string
	if n.IsItem() {
		detail = fmt.Sprintf("%s %s × %s = %s", n.Quantity, n.Unit, n.UnitPrice.StringFixed(2), FormatMoney(n.Value))
	} else {
		detail = FormatMoney(n.Value)
	}

	style := styles.NodeItem
	if n.IsStage() {
		style = styles.NodeStage
	}
	switch {
	case m.move != nil && n.ID == m.move.Dragged.ID:
		style = styles.NodeDragged
	case selected:
		style = styles.NodeSelected
	}

	line := fmt.Sprintf("%s%s%s  %s", indent, styles.TreeBranch.Render(prefix), style.Render(text), styles.NodeValue.Render(detail))
	if selected && m.move != nil {
		line += "  " + m.move.RenderHover(m.result.All, n.ID)
	}
	return line
}

// SetSize updates the view dimensions and the number of tree rows shown
func (m *BrowserModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.rows.Resize(height - browserChrome)
}

// Reload reloads the tree from the repository
func (m *BrowserModel) Reload() tea.Cmd {
	return m.loadTree
}
