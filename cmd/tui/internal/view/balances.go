package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chapelhq/steward/internal/account"
)

type BalancesModel struct {
	CommonModel
	accService *account.Service
	ident      Identity

	table   table.Model
	accs    []*account.Account
	typeIdx int
	filter  account.ListFilter
	loading bool
	err     error
}

func NewBalancesModel(accSvc *account.Service, ident Identity) BalancesModel {
	columns := []table.Column{
		{Title: "Name", Width: 30},
		{Title: "Type", Width: 10},
		{Title: "Currency", Width: 8},
		{Title: "Balance", Width: 14},
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

	return BalancesModel{
		accService: accSvc,
		ident:      ident,
		table:      t,
		loading:    true,
	}
}

func (m BalancesModel) Title() string { return "Account Balances" }
func (m BalancesModel) ShortHelp() string {
	return "Esc: back | t: type filter | r: refresh"
}

func (m BalancesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BalancesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBalancesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.accs = msg.accs
		m.refreshTable()
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "t":
			m.typeIdx = (m.typeIdx + 1) % 5
			m.applyFilter()
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m BalancesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading accounts...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	typeLabels := []string{"All", "Asset", "Income", "Expense", "Liability"}

	header := fmt.Sprintf("Filter: [t] Type: %s", activeStyle(typeLabels[m.typeIdx]))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *BalancesModel) applyFilter() {
	switch m.typeIdx {
	case 1:
		m.filter.Type = new(account.TypeAsset)
	case 2:
		m.filter.Type = new(account.TypeIncome)
	case 3:
		m.filter.Type = new(account.TypeExpense)
	case 4:
		m.filter.Type = new(account.TypeLiability)
	default:
		m.filter.Type = nil
	}
}

func (m *BalancesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.accs))
	for _, acc := range m.accs {
		balance := ""
		if acc.Type == account.TypeAsset {
			balance = FormatAmount(acc.Balance)
		}
		rows = append(rows, table.Row{
			acc.Name,
			string(acc.Type),
			acc.Currency,
			balance,
		})
	}
	m.table.SetRows(rows)
}

type loadBalancesMsg struct {
	accs []*account.Account
	err  error
}

func (m BalancesModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accs, err := m.accService.List(ctx, m.ident.ChurchID, m.filter)
		return loadBalancesMsg{accs: accs, err: err}
	}
}
