package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"budgetree/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			return m, switchTo(SwitchToBrowserMsg{})
		}
	}

	return m, nil
}

// View renders the help view
func (m *HelpModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Budgetree Help"))
	b.WriteString("\n\n")

	b.WriteString(styles.Subtitle.Render("Construction budget editor"))
	b.WriteString("\n\n")

	b.WriteString(styles.InputLabel.Render("Navigation"))
	b.WriteString("\n")
	b.WriteString(helpLine("j / k / ↑ / ↓", "Move up/down"))
	b.WriteString(helpLine("h / ←", "Collapse / go to parent"))
	b.WriteString(helpLine("l / →", "Expand"))
	b.WriteString(helpLine("Enter / Space", "Toggle stage"))
	b.WriteString(helpLine("E / C", "Expand all / collapse all"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Editing"))
	b.WriteString("\n")
	b.WriteString(helpLine("n", "New stage"))
	b.WriteString(helpLine("i", "New manual item"))
	b.WriteString(helpLine("a / /", "Add item from catalog"))
	b.WriteString(helpLine("r", "Replace item with a catalog entry"))
	b.WriteString(helpLine("e", "Edit label, quantity, price, breakdown"))
	b.WriteString(helpLine("M", "Edit calculation memory in $EDITOR"))
	b.WriteString(helpLine("d", "Delete node and its subtree"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Moving"))
	b.WriteString("\n")
	b.WriteString(helpLine("m", "Pick up the selected node"))
	b.WriteString(helpLine("b / a / i", "Drop before / after / inside the target"))
	b.WriteString(helpLine("esc", "Cancel the move"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Library"))
	b.WriteString("\n")
	b.WriteString(helpLine("s", "Save stage as a block"))
	b.WriteString(helpLine("B", "Insert a saved block"))
	b.WriteString(helpLine("c", "Save item to the user catalog"))
	b.WriteString(helpLine("y", "Copy path and label"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("General"))
	b.WriteString("\n")
	b.WriteString(helpLine("?", "Toggle help"))
	b.WriteString(helpLine("q / Ctrl+C", "Quit"))
	b.WriteString("\n\n")

	b.WriteString(styles.HelpDesc.Render("Press "))
	b.WriteString(styles.HelpKey.Render("esc"))
	b.WriteString(styles.HelpDesc.Render(" or "))
	b.WriteString(styles.HelpKey.Render("?"))
	b.WriteString(styles.HelpDesc.Render(" to close"))

	return styles.App.Render(b.String())
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 20)) + styles.HelpDesc.Render(desc) + "\n"
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
