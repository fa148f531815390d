package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chapelhq/steward/internal/budget"
)

type budgetState int

const (
	budgetStateBrowse budgetState = iota
	budgetStateCreate
)

type BudgetsModel struct {
	CommonModel
	budgetService *budget.Service
	ident         Identity

	state   budgetState
	table   table.Model
	budgets []*budget.Budget
	form    *huh.Form

	year    int
	loading bool
	err     error
	status  string

	// Form bindings
	formMinistry string
	formCategory string
	formAmount   string
	formPeriod   string
}

func NewBudgetsModel(budgetSvc *budget.Service, ident Identity) BudgetsModel {
	columns := []table.Column{
		{Title: "Ministry", Width: 38},
		{Title: "Category", Width: 38},
		{Title: "Period", Width: 8},
		{Title: "Limit", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return BudgetsModel{
		budgetService: budgetSvc,
		ident:         ident,
		table:         t,
		year:          time.Now().Year(),
	}
}

func (m BudgetsModel) Title() string { return "Budgets" }
func (m BudgetsModel) ShortHelp() string {
	if m.state == budgetStateCreate {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | n: new budget | x: delete | [/]: previous/next year | r: refresh"
}

func (m BudgetsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BudgetsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBudgetsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.budgets = msg.budgets
		m.refreshTable()
		return m, nil

	case budgetMutatedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.note
		}
		m.state = budgetStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case budgetStateBrowse:
		return m.updateBrowse(msg)
	case budgetStateCreate:
		return m.updateCreate(msg)
	}

	return m, nil
}

func (m BudgetsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m.enterCreateMode()
		case "x":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.budgets) {
				return m, m.deleteCmd(m.budgets[idx].ID)
			}
			return m, nil
		case "[":
			m.year--
			return m, m.loadCmd()
		case "]":
			m.year++
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m BudgetsModel) enterCreateMode() (tea.Model, tea.Cmd) {
	m.formMinistry = ""
	m.formCategory = ""
	m.formAmount = ""
	m.formPeriod = string(budget.PeriodYearly)

	uuidField := func(key, title string, value *string) *huh.Input {
		return huh.NewInput().
			Key(key).
			Title(title).
			Value(value).
			Validate(func(s string) error {
				if _, err := uuid.Parse(strings.TrimSpace(s)); err != nil {
					return fmt.Errorf("invalid id")
				}
				return nil
			})
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			uuidField("ministry", "Ministry ID", &m.formMinistry),
			uuidField("category", "Expense account ID", &m.formCategory),

			huh.NewInput().
				Key("amount").
				Title("Amount limit").
				Value(&m.formAmount).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil || !d.IsPositive() {
						return fmt.Errorf("invalid amount")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Key("period").
				Title("Period").
				Options(
					huh.NewOption("Monthly", string(budget.PeriodMonthly)),
					huh.NewOption("Yearly", string(budget.PeriodYearly)),
					huh.NewOption("Event", string(budget.PeriodEvent)),
				).
				Value(&m.formPeriod),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = budgetStateCreate
	m.table.Blur()
	return m, m.form.Init()
}

func (m BudgetsModel) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = budgetStateBrowse
			m.form = nil
			m.table.Focus()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.createCmd()
}

func (m BudgetsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading budgets...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("Year: %s  ([ and ] to change)", activeStyle(strconv.Itoa(m.year)))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == budgetStateCreate && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render(fmt.Sprintf("New Budget (%d)\n\n%s", m.year, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *BudgetsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.budgets))
	for _, b := range m.budgets {
		rows = append(rows, table.Row{
			b.MinistryID.String(),
			b.CategoryAccountID.String(),
			string(b.Period),
			FormatAmount(b.AmountLimit),
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadBudgetsMsg struct {
	budgets []*budget.Budget
	err     error
}

func (m BudgetsModel) loadCmd() tea.Cmd {
	year := m.year

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		budgets, err := m.budgetService.List(ctx, m.ident.ChurchID, budget.ListFilter{Year: &year})
		return loadBudgetsMsg{budgets: budgets, err: err}
	}
}

type budgetMutatedMsg struct {
	note string
	err  error
}

func (m BudgetsModel) createCmd() tea.Cmd {
	ministryID, err := uuid.Parse(strings.TrimSpace(m.formMinistry))
	if err != nil {
		return func() tea.Msg { return budgetMutatedMsg{err: err} }
	}

	categoryID, err := uuid.Parse(strings.TrimSpace(m.formCategory))
	if err != nil {
		return func() tea.Msg { return budgetMutatedMsg{err: err} }
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(m.formAmount))
	if err != nil {
		return func() tea.Msg { return budgetMutatedMsg{err: err} }
	}

	params := budget.CreateParams{
		MinistryID:        ministryID,
		CategoryAccountID: categoryID,
		AmountLimit:       amount,
		Period:            budget.Period(m.formPeriod),
		Year:              m.year,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.budgetService.Create(ctx, m.ident.ChurchID, params); err != nil {
			return budgetMutatedMsg{err: err}
		}

		return budgetMutatedMsg{note: "Budget created"}
	}
}

func (m BudgetsModel) deleteCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.budgetService.Delete(ctx, m.ident.ChurchID, id); err != nil {
			return budgetMutatedMsg{err: err}
		}

		return budgetMutatedMsg{note: "Budget deleted"}
	}
}
