package views

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"budgetree/internal/application"
	"budgetree/internal/application/commands"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// Edit form field order
const (
	editLabel = iota
	editQuantity
	editUnit
	editUnitPrice
	editMaterial
	editLabor
	editOthers
)

// EditModel edits a node's label and, for items, its pricing fields
type EditModel struct {
	ViewState
	repo ports.BudgetRepository
	node domain.Node
	form *InputForm
}

// NewEditModel creates a new edit view model
func NewEditModel(repo ports.BudgetRepository) *EditModel {
	return &EditModel{repo: repo, form: NewInputForm()}
}

// SetNode fills the form from the node
func (m *EditModel) SetNode(n domain.Node) {
	m.ClearMessage()
	m.node = n
	fields := []InputField{NewValueField("Label", n.Label, 200)}
	if n.IsItem() {
		var material, labor, others string
		if b := n.Breakdown; b != nil {
			material, labor, others = b.Material.String(), b.Labor.String(), b.Others.String()
		}
		fields = append(fields,
			NewValueField("Quantity", n.Quantity.String(), 20),
			NewValueField("Unit", n.Unit, 10),
			NewValueField("Unit price", n.UnitPrice.StringFixed(2), 20),
			NewValueField("Material %", material, 6),
			NewValueField("Labor %", labor, 6),
			NewValueField("Others %", others, 6),
		)
	}
	m.form = NewInputForm(fields...)
}

// Init initializes the edit view
func (m *EditModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the edit view
func (m *EditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			cmd, err := m.buildCommand()
			if err != nil {
				m.SetMessage(err.Error(), true)
				return m, nil
			}
			if cmd == nil {
				return m, switchTo(SwitchToBrowserMsg{})
			}
			id := m.node.ID
			return m, func() tea.Msg {
				result, err := cmd.Execute(context.Background())
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

// buildCommand turns the changed fields into an update. It returns a nil
// command when nothing changed.
func (m *EditModel) buildCommand() (*commands.UpdateNodeCommand, error) {
	cmd := commands.NewUpdateNodeCommand(m.repo, m.node.ID)
	changed := false

	if label := m.form.Value(editLabel); label != m.node.Label {
		cmd.Label = &label
		changed = true
	}
	if !m.node.IsItem() {
		if !changed {
			return nil, nil
		}
		return cmd, cmd.Validate()
	}

	amountChanged := func(index int, current decimal.Decimal) *string {
		value := m.form.Value(index)
		parsed, err := application.ParseAmount("amount", value)
		if err == nil && parsed.Equal(current) {
			return nil
		}
		return &value
	}
	if q := amountChanged(editQuantity, m.node.Quantity); q != nil {
		cmd.Quantity = q
		changed = true
	}
	if unit := m.form.Value(editUnit); unit != m.node.Unit {
		cmd.Unit = &unit
		changed = true
	}
	if p := amountChanged(editUnitPrice, m.node.UnitPrice); p != nil {
		cmd.UnitPrice = p
		changed = true
	}

	breakdown, err := application.ParseBreakdown(m.form.Value(editMaterial), m.form.Value(editLabor), m.form.Value(editOthers))
	if err != nil {
		return nil, err
	}
	if !sameBreakdown(breakdown, m.node.Breakdown) {
		if breakdown == nil {
			breakdown = &domain.CostBreakdown{}
		}
		cmd.Breakdown = breakdown
		changed = true
	}

	if !changed {
		return nil, nil
	}
	return cmd, cmd.Validate()
}

func sameBreakdown(a, b *domain.CostBreakdown) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Material.Equal(b.Material) && a.Labor.Equal(b.Labor) && a.Others.Equal(b.Others)
}

// View renders the edit view
func (m *EditModel) View() string {
	v := NewViewBuilder().Title("Edit " + m.node.Kind.String())
	v.Line(RenderNodeSummary(m.node))
	if m.node.Ref != nil {
		v.Muted("Linked to " + m.node.Ref.Title())
	}
	v.BlankLine()
	v.Line(m.form.RenderFields())
	v.BlankLine()
	v.Message(m.Message, m.MessageErr)
	v.Raw(m.form.RenderHelp("save"))
	return v.String()
}
