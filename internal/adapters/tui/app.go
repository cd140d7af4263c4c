package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"budgetree/internal/adapters/tui/views"
	"budgetree/internal/application/commands"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewBrowser ViewState = iota
	ViewCreate
	ViewEdit
	ViewDelete
	ViewSearch
	ViewBlocks
	ViewSaveBlock
	ViewHelp
)

// App is the main TUI application model
type App struct {
	repo   ports.BudgetRepository
	editor ports.EditorOpener

	state     ViewState
	browser   *views.BrowserModel
	create    *views.CreateModel
	edit      *views.EditModel
	delete    *views.DeleteModel
	search    *views.SearchModel
	blocks    *views.BlocksModel
	saveBlock *views.SaveBlockModel
	help      *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application. searcher and ed may be nil: search
// then covers the local catalogs only and memory editing is disabled.
func NewApp(repo ports.BudgetRepository, searcher ports.CatalogSearcher, ed ports.EditorOpener) *App {
	return &App{
		repo:      repo,
		editor:    ed,
		state:     ViewBrowser,
		browser:   views.NewBrowserModel(repo),
		create:    views.NewCreateModel(repo),
		edit:      views.NewEditModel(repo),
		delete:    views.NewDeleteModel(repo),
		search:    views.NewSearchModel(repo, searcher),
		blocks:    views.NewBlocksModel(repo),
		saveBlock: views.NewSaveBlockModel(repo),
		help:      views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.browser.Init(), a.search.Listen())
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.browser.SetSize(msg.Width, msg.Height)
		a.create.SetSize(msg.Width, msg.Height)
		a.edit.SetSize(msg.Width, msg.Height)
		a.delete.SetSize(msg.Width, msg.Height)
		a.search.SetSize(msg.Width, msg.Height)
		a.blocks.SetSize(msg.Width, msg.Height)
		a.saveBlock.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	// Results arrive whatever the current view; stale ones are dropped there
	case views.SearchResultMsg:
		_, cmd := a.search.Update(msg)
		return a, cmd

	// View switching messages
	case views.SwitchToCreateMsg:
		a.state = ViewCreate
		a.create.Reset(msg.Target, msg.Kind)
		return a, a.create.Init()

	case views.SwitchToEditMsg:
		a.state = ViewEdit
		a.edit.SetNode(msg.Node)
		return a, a.edit.Init()

	case views.SwitchToDeleteMsg:
		a.state = ViewDelete
		return a, a.delete.SetNode(msg.Node)

	case views.SwitchToSearchMsg:
		a.state = ViewSearch
		return a, a.search.Open(msg.Purpose, msg.Target, msg.Relation)

	case views.SwitchToBlocksMsg:
		a.state = ViewBlocks
		return a, a.blocks.Open(msg.Target)

	case views.SwitchToSaveBlockMsg:
		a.state = ViewSaveBlock
		a.saveBlock.SetNode(msg.Node)
		return a, a.saveBlock.Init()

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToBrowserMsg:
		a.state = ViewBrowser
		return a, a.browser.Reload()

	case views.ReloadMsg:
		a.state = ViewBrowser
		_, cmd := a.browser.Update(msg)
		return a, cmd

	case views.EditMemoryMsg:
		return a, a.editMemory(msg.Node)

	case memoryEditedMsg:
		return a, a.saveMemory(msg)
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewBrowser:
		_, cmd = a.browser.Update(msg)
	case ViewCreate:
		_, cmd = a.create.Update(msg)
	case ViewEdit:
		_, cmd = a.edit.Update(msg)
	case ViewDelete:
		_, cmd = a.delete.Update(msg)
	case ViewSearch:
		_, cmd = a.search.Update(msg)
	case ViewBlocks:
		_, cmd = a.blocks.Update(msg)
	case ViewSaveBlock:
		_, cmd = a.saveBlock.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

type memoryEditedMsg struct {
	node   domain.Node
	memory string
	err    error
}

// editMemory suspends the program while the external editor runs
func (a *App) editMemory(node domain.Node) tea.Cmd {
	if a.editor == nil {
		return reload("Memory editing is disabled: no editor configured", true)
	}

	cmd, finish, err := a.editor.EditMemory(node.Memory)
	if err != nil {
		return reload(err.Error(), true)
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		memory, readErr := finish()
		if err == nil {
			err = readErr
		}
		return memoryEditedMsg{node: node, memory: memory, err: err}
	})
}

func (a *App) saveMemory(msg memoryEditedMsg) tea.Cmd {
	if msg.err != nil {
		slog.Warn("memory edit failed", "node", msg.node.ID, "error", msg.err)
		return reload(msg.err.Error(), true)
	}
	if msg.memory == msg.node.Memory {
		return reload("Memory unchanged", false)
	}

	repo := a.repo
	return func() tea.Msg {
		update := commands.NewUpdateNodeCommand(repo, msg.node.ID)
		update.Memory = &msg.memory
		result, err := update.Execute(context.Background())
		if err != nil {
			return views.ReloadMsg{Message: err.Error(), IsErr: true}
		}
		return views.ReloadMsg{Message: result.Message, SelectID: msg.node.ID}
	}
}

func reload(message string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return views.ReloadMsg{Message: message, IsErr: isErr}
	}
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewCreate:
		return a.create.View()
	case ViewEdit:
		return a.edit.View()
	case ViewDelete:
		return a.delete.View()
	case ViewSearch:
		return a.search.View()
	case ViewBlocks:
		return a.blocks.View()
	case ViewSaveBlock:
		return a.saveBlock.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.browser.View()
	}
}
