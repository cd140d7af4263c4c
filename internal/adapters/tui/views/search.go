package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"budgetree/internal/adapters/tui/styles"
	"budgetree/internal/application"
	"budgetree/internal/application/commands"
	"budgetree/internal/application/search"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// SearchKeyMap defines key bindings for the catalog search view
type SearchKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Relation key.Binding
	Cancel   key.Binding
	NextPage key.Binding
	PrevPage key.Binding
}

var SearchKeys = SearchKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+k"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+j"),
		key.WithHelp("↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "pick"),
	),
	Relation: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "change position"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("ctrl+f", "pgdown"),
		key.WithHelp("ctrl+f", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("ctrl+b", "pgup"),
		key.WithHelp("ctrl+b", "prev page"),
	),
}

// SearchResultMsg carries a debounced search result back into the program
type SearchResultMsg search.Result

type searchProjectMsg struct {
	project domain.Project
}

// SearchModel searches the catalog as the user types and inserts or
// replaces with the picked entry. Entries priced after the project's
// reference date open a confirmation modal first.
type SearchModel struct {
	ViewState
	repo      ports.BudgetRepository
	searcher  ports.CatalogSearcher
	debouncer *search.Debouncer
	results   chan search.Result

	input   textinput.Model
	spinner spinner.Model
	rows    *RowWindow

	purpose   SearchPurpose
	target    *domain.Node
	relations []domain.Relation
	relation  int
	project   domain.Project

	seq      int
	pending  bool
	entries  []domain.CatalogEntry
	conflict *domain.CatalogEntry
}

// NewSearchModel creates a new search view model. searcher may be nil, in
// which case only the local catalogs are searched.
func NewSearchModel(repo ports.BudgetRepository, searcher ports.CatalogSearcher) *SearchModel {
	input := textinput.New()
	input.Placeholder = "Type at least 3 characters..."
	input.Prompt = "Search: "
	input.CharLimit = 120

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	m := &SearchModel{
		repo:     repo,
		searcher: searcher,
		results:  make(chan search.Result, 1),
		input:    input,
		spinner:  s,
		rows:     NewRowWindow(10),
	}
	m.debouncer = search.NewDebouncer(search.DefaultDelay, m.runQuery, func(r search.Result) {
		m.results <- r
	})
	return m
}

func (m *SearchModel) runQuery(ctx context.Context, query string) ([]domain.CatalogEntry, error) {
	result, err := commands.NewSearchCatalogCommand(m.repo, m.searcher, query).Execute(ctx)
	if err != nil {
		return nil, err
	}
	return result.Entries, nil
}

// Listen waits for the next debounced result. The app keeps exactly one
// listener running for the program's lifetime.
func (m *SearchModel) Listen() tea.Cmd {
	results := m.results
	return func() tea.Msg {
		return SearchResultMsg(<-results)
	}
}

// Open resets the view for a new pick
func (m *SearchModel) Open(purpose SearchPurpose, target *domain.Node, rel domain.Relation) tea.Cmd {
	m.ClearMessage()
	m.debouncer.Stop()
	m.purpose = purpose
	m.target = target
	m.relations = []domain.Relation{rel}
	if purpose == SearchInsert {
		m.relations = availableRelations(target)
	}
	m.relation = 0
	m.pending = false
	m.entries = nil
	m.conflict = nil
	m.rows.Reset()
	m.input.SetValue("")
	m.input.Focus()

	repo := m.repo
	return tea.Batch(textinput.Blink, func() tea.Msg {
		project, err := repo.LoadProject(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return searchProjectMsg{project}
	})
}

// Close drops any pending query
func (m *SearchModel) Close() {
	m.debouncer.Stop()
	m.pending = false
	m.input.Blur()
}

// Init initializes the search view
func (m *SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the search view
func (m *SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.pending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case SearchResultMsg:
		m.handleResult(search.Result(msg))
		return m, m.Listen()

	case searchProjectMsg:
		m.project = msg.project
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		if m.conflict != nil {
			return m, m.updateConflict(msg)
		}
		return m, m.updateKeys(msg)
	}
	return m, nil
}

// handleResult keeps only the result of the latest query
func (m *SearchModel) handleResult(r search.Result) {
	if r.Seq != m.seq {
		slog.Debug("dropping stale search result", "seq", r.Seq, "latest", m.seq)
		return
	}
	m.pending = false
	if r.Err != nil {
		m.SetMessage(r.Err.Error(), true)
		return
	}
	m.ClearMessage()
	m.entries = r.Entries
	m.rows.Reset()
	m.rows.SetTotal(len(m.entries))
	if len(m.entries) == 0 {
		m.SetMessage(fmt.Sprintf("No results for %q", r.Query), false)
	}
}

func (m *SearchModel) updateKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, SearchKeys.Cancel):
		m.Close()
		return switchTo(SwitchToBrowserMsg{})
	case key.Matches(msg, SearchKeys.Up):
		m.rows.Up()
		return nil
	case key.Matches(msg, SearchKeys.Down):
		m.rows.Down()
		return nil
	case key.Matches(msg, SearchKeys.NextPage):
		m.rows.PageDown()
		return nil
	case key.Matches(msg, SearchKeys.PrevPage):
		m.rows.PageUp()
		return nil
	case key.Matches(msg, SearchKeys.Relation):
		m.relation = (m.relation + 1) % len(m.relations)
		return nil
	case key.Matches(msg, SearchKeys.Select):
		entry, ok := m.selectedEntry()
		if !ok {
			return nil
		}
		if domain.NeedsVersionConfirmation(entry, m.project) {
			m.conflict = &entry
			return nil
		}
		return m.commit(entry, nil)
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return cmd
	}

	m.seq = m.debouncer.Submit(m.input.Value())
	m.pending = search.IsSearchable(m.input.Value())
	if !m.pending {
		m.entries = nil
		m.rows.Reset()
		return cmd
	}
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m *SearchModel) updateConflict(msg tea.KeyMsg) tea.Cmd {
	entry := *m.conflict
	switch {
	case key.Matches(msg, DefaultConfirmKeys.Confirm):
		m.conflict = nil
		return m.commit(entry, application.StaticResolver{Decision: ports.DecisionUseCandidate})
	case key.Matches(msg, DefaultConfirmKeys.Cancel):
		m.conflict = nil
		return m.commit(entry, application.StaticResolver{Decision: ports.DecisionKeepPrior})
	}
	return nil
}

// commit runs the insert or replace. A declined conflict leaves the budget
// untouched and is reported as a plain message.
func (m *SearchModel) commit(entry domain.CatalogEntry, resolver ports.ConflictResolver) tea.Cmd {
	var targetID string
	if m.target != nil {
		targetID = m.target.ID
	}
	repo, purpose, rel := m.repo, m.purpose, m.relations[m.relation]
	m.Close()

	return func() tea.Msg {
		ctx := context.Background()
		var (
			result *commands.CreateResult
			err    error
		)
		if purpose == SearchReplace {
			result, err = commands.NewReplaceItemCommand(repo, resolver, targetID, entry).Execute(ctx)
		} else {
			result, err = commands.NewCreateCatalogItemCommand(repo, resolver, targetID, rel, entry).Execute(ctx)
		}
		if errors.Is(err, application.ErrConflictDeclined) {
			return ReloadMsg{Message: "Kept the budget as it is: " + err.Error()}
		}
		if err != nil {
			return ReloadMsg{Message: err.Error(), IsErr: true}
		}
		return ReloadMsg{Message: result.Message, SelectID: result.Node.ID}
	}
}

func (m *SearchModel) selectedEntry() (domain.CatalogEntry, bool) {
	cursor := m.rows.Cursor()
	if cursor < 0 || cursor >= len(m.entries) {
		return domain.CatalogEntry{}, false
	}
	return m.entries[cursor], true
}

// Pending reports whether a query is waiting or running
func (m *SearchModel) Pending() bool {
	return m.pending
}

// View renders the search view
func (m *SearchModel) View() string {
	title := "Add From Catalog"
	if m.purpose == SearchReplace {
		title = "Replace Item"
	}
	v := NewViewBuilder().Title(title)

	if m.conflict != nil {
		v.Line(RenderConflict(*m.conflict, m.project))
		return v.String()
	}

	v.Raw(styles.InputLabel.Render("Target: "))
	v.Line(m.describeTarget())
	v.BlankLine()
	v.Line(styles.InputFocused.Render(m.input.View()))
	v.BlankLine()

	if m.pending {
		v.Line(m.spinner.View() + " Searching...")
		v.BlankLine()
	}

	start, end := m.rows.Range()
	for i := start; i < end; i++ {
		line := RenderEntry(m.entries[i])
		if i == m.rows.Cursor() {
			line = styles.NodeSelected.Render("> ") + line
		} else {
			line = "  " + line
		}
		v.Line(line)
	}
	if m.rows.Scrollable() {
		v.Muted(m.rows.Position())
	}
	v.BlankLine()

	v.Message(m.Message, m.MessageErr)
	if len(m.relations) > 1 {
		v.Help(SearchKeys.Up, SearchKeys.Down, SearchKeys.Select, SearchKeys.Relation, SearchKeys.Cancel)
	} else {
		v.Help(SearchKeys.Up, SearchKeys.Down, SearchKeys.Select, SearchKeys.Cancel)
	}
	return v.String()
}

func (m *SearchModel) describeTarget() string {
	if m.purpose == SearchReplace && m.target != nil {
		return "replace " + RenderNodeSummary(*m.target)
	}
	rel := m.relations[m.relation]
	if m.target == nil || rel == domain.RelationRoot {
		return "new root"
	}
	return fmt.Sprintf("%s of %s %s", rel, m.target.Path, m.target.Label)
}
