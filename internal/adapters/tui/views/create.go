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

// CreateKeyMap defines key bindings for the create view
type CreateKeyMap struct {
	Submit   key.Binding
	Cancel   key.Binding
	Relation key.Binding
}

var CreateKeys = CreateKeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "create"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Relation: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "change position"),
	),
}

// CreateModel is the model for the new stage / new manual item form
type CreateModel struct {
	ViewState
	repo      ports.BudgetRepository
	target    *domain.Node
	kind      domain.Kind
	relations []domain.Relation
	relation  int
	form      *InputForm
}

// NewCreateModel creates a new create view model
func NewCreateModel(repo ports.BudgetRepository) *CreateModel {
	m := &CreateModel{repo: repo}
	m.Reset(nil, domain.KindStage)
	return m
}

// Reset prepares the form for a node of kind placed next to target
func (m *CreateModel) Reset(target *domain.Node, kind domain.Kind) {
	m.ClearMessage()
	m.target = target
	m.kind = kind
	m.relations = availableRelations(target)
	m.relation = 0
	m.form = NewInputForm(NewInputField("Label", "Description", 200))
}

// availableRelations lists where a new node can go relative to the
// selection, preferred first
func availableRelations(target *domain.Node) []domain.Relation {
	switch {
	case target == nil:
		return []domain.Relation{domain.RelationRoot}
	case target.IsStage():
		return []domain.Relation{domain.RelationChild, domain.RelationSibling, domain.RelationRoot}
	default:
		return []domain.Relation{domain.RelationSibling, domain.RelationRoot}
	}
}

// Relation returns the currently chosen relation
func (m *CreateModel) Relation() domain.Relation {
	return m.relations[m.relation]
}

// Init initializes the create view
func (m *CreateModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the create view
func (m *CreateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, CreateKeys.Cancel):
			return m, switchTo(SwitchToBrowserMsg{})
		case key.Matches(msg, CreateKeys.Relation):
			m.relation = (m.relation + 1) % len(m.relations)
			return m, nil
		case key.Matches(msg, CreateKeys.Submit):
			return m, m.create()
		}
	}

	_, cmd := m.form.Update(msg)
	return m, cmd
}

func (m *CreateModel) create() tea.Cmd {
	label := m.form.Value(0)
	if label == "" {
		m.SetMessage("Label is required", true)
		return nil
	}

	var targetID string
	if m.target != nil {
		targetID = m.target.ID
	}
	rel := m.Relation()
	repo, kind := m.repo, m.kind

	return func() tea.Msg {
		ctx := context.Background()
		var (
			result *commands.CreateResult
			err    error
		)
		if kind == domain.KindItem {
			result, err = commands.NewCreateItemCommand(repo, targetID, rel, label).Execute(ctx)
		} else {
			result, err = commands.NewCreateStageCommand(repo, targetID, rel, label).Execute(ctx)
		}
		if err != nil {
			return errMsg{err}
		}
		return ReloadMsg{Message: result.Message, SelectID: result.Node.ID}
	}
}

// View renders the create view
func (m *CreateModel) View() string {
	title := "New Stage"
	if m.kind == domain.KindItem {
		title = "New Item"
	}

	v := NewViewBuilder().Title(title)
	v.Raw(styles.InputLabel.Render("Position: "))
	v.Line(m.describePosition())
	v.BlankLine()
	v.Line(m.form.RenderFields())
	v.BlankLine()
	v.Message(m.Message, m.MessageErr)
	if len(m.relations) > 1 {
		v.Help(CreateKeys.Relation, CreateKeys.Submit, CreateKeys.Cancel)
	} else {
		v.Help(CreateKeys.Submit, CreateKeys.Cancel)
	}
	return v.String()
}

func (m *CreateModel) describePosition() string {
	rel := m.Relation()
	if rel == domain.RelationRoot || m.target == nil {
		return "new root, after the last one"
	}
	label := fmt.Sprintf("%s %s", m.target.Path, m.target.Label)
	switch rel {
	case domain.RelationChild:
		return "last child of " + label
	default:
		return "after the last sibling of " + strings.TrimSpace(label)
	}
}
