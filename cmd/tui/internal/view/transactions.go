package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chapelhq/steward/internal/treasury"
)

type txState int

const (
	txStateBrowse txState = iota
	txStateAmend
	txStateAudit
)

type TransactionsModel struct {
	CommonModel
	txService *treasury.Service
	ident     Identity

	state txState
	table table.Model
	txs   []*treasury.Transaction
	form  *huh.Form

	audit []*treasury.AuditEntry

	statusFilterIdx int
	dateFilterIdx   int

	filter  treasury.ListFilter
	loading bool
	err     error
	status  string

	// Form bindings
	formAmount string
	formDesc   string
	formReason string
}

func NewTransactionsModel(txSvc *treasury.Service, ident Identity) TransactionsModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Status", Width: 18},
		{Title: "Amount", Width: 12},
		{Title: "Description", Width: 40},
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

	return TransactionsModel{
		txService: txSvc,
		ident:     ident,
		table:     t,
		filter:    treasury.ListFilter{},
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }
func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateAmend:
		return "Navigate form | Esc: cancel"
	case txStateAudit:
		return "Esc: close"
	}
	return "Esc: back | e: amend | a: approve | v: audit log | s: status filter | d: date filter | r: refresh"
}

func (m TransactionsModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadTxsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.txs = msg.txs
		m.refreshTable()
		return m, nil

	case txMutatedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.note
		}
		m.state = txStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadTxsCmd()

	case loadAuditMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.audit = msg.entries
		m.state = txStateAudit
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case txStateBrowse:
		return m.updateBrowse(msg)
	case txStateAmend:
		return m.updateAmend(msg)
	case txStateAudit:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = txStateBrowse
			m.audit = nil
		}
		return m, nil
	}

	return m, nil
}

func (m TransactionsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "e":
			return m.enterAmendMode()
		case "a":
			if tx := m.selected(); tx != nil {
				return m, m.approveCmd(tx.ID)
			}
			return m, nil
		case "v":
			if tx := m.selected(); tx != nil {
				return m, m.loadAuditCmd(tx.ID)
			}
			return m, nil
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % 3
			m.applyFilter()
			return m, m.loadTxsCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % 3
			m.applyFilter()
			return m, m.loadTxsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m TransactionsModel) selected() *treasury.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}
	return m.txs[idx]
}

func (m TransactionsModel) enterAmendMode() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.formAmount = tx.Amount.String()
	m.formDesc = tx.Description
	m.formReason = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&m.formAmount).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("invalid amount")
					}
					if !d.IsPositive() {
						return fmt.Errorf("amount must be positive")
					}
					return nil
				}),

			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.formDesc).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("reason").
				Title("Reason").
				Placeholder("amount correction").
				Value(&m.formReason),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = txStateAmend
	m.table.Blur()
	return m, m.form.Init()
}

func (m TransactionsModel) updateAmend(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = txStateBrowse
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

	return m, m.amendCmd()
}

func (m TransactionsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	statusLabels := []string{"All", "Completed", "Pending Approval"}
	dateLabels := []string{"All Time", "This Month", "Last Month"}

	header := fmt.Sprintf(
		"Filter: [s] Status: %s | [d] Date: %s",
		activeStyle(statusLabels[m.statusFilterIdx]),
		activeStyle(dateLabels[m.dateFilterIdx]),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	switch m.state {
	case txStateAmend:
		if m.form != nil {
			panel := lipgloss.NewStyle().
				Padding(1, 2).
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Width(48).
				Render(fmt.Sprintf("Amend Transaction\n\n%s", m.form.View()))

			content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
		}
	case txStateAudit:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.auditPanel())
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m TransactionsModel) auditPanel() string {
	var sb strings.Builder
	sb.WriteString("Audit Log\n")

	if len(m.audit) == 0 {
		sb.WriteString("\nNo amendments recorded.")
	}

	for _, entry := range m.audit {
		sb.WriteString(fmt.Sprintf(
			"\n%s\n  amount %s -> %s\n  reason: %s\n",
			entry.CreatedAt.Format("2006-01-02 15:04"),
			FormatAmount(entry.OldAmount),
			FormatAmount(entry.NewAmount),
			entry.Reason,
		))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(48).
		Render(sb.String())
}

func (m *TransactionsModel) applyFilter() {
	switch m.statusFilterIdx {
	case 1:
		m.filter.Status = new(treasury.StatusCompleted)
	case 2:
		m.filter.Status = new(treasury.StatusPendingApproval)
	default:
		m.filter.Status = nil
	}

	now := time.Now()
	switch m.dateFilterIdx {
	case 1:
		s := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		e := s.AddDate(0, 1, 0).Add(-time.Nanosecond)
		m.filter.StartDate = &s
		m.filter.EndDate = &e
	case 2:
		s := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
		e := s.AddDate(0, 1, 0).Add(-time.Nanosecond)
		m.filter.StartDate = &s
		m.filter.EndDate = &e
	default:
		m.filter.StartDate = nil
		m.filter.EndDate = nil
	}
}

func (m *TransactionsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			string(tx.Status),
			FormatAmount(tx.Amount),
			tx.Description,
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadTxsMsg struct {
	txs []*treasury.Transaction
	err error
}

func (m TransactionsModel) loadTxsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, m.ident.ChurchID, m.filter)
		return loadTxsMsg{txs: txs, err: err}
	}
}

type txMutatedMsg struct {
	note string
	err  error
}

func (m TransactionsModel) amendCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(m.formAmount))
	if err != nil {
		return func() tea.Msg { return txMutatedMsg{err: err} }
	}

	params := treasury.AmendParams{
		Amount:      amount,
		Description: m.formDesc,
		Reason:      m.formReason,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.txService.Amend(ctx, m.ident.ChurchID, m.ident.UserID, tx.ID, params); err != nil {
			return txMutatedMsg{err: err}
		}

		return txMutatedMsg{note: "Transaction amended"}
	}
}

func (m TransactionsModel) approveCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.txService.Approve(ctx, m.ident.ChurchID, id); err != nil {
			return txMutatedMsg{err: err}
		}

		return txMutatedMsg{note: "Transaction approved"}
	}
}

type loadAuditMsg struct {
	entries []*treasury.AuditEntry
	err     error
}

func (m TransactionsModel) loadAuditCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entries, err := m.txService.AuditLog(ctx, m.ident.ChurchID, id)
		return loadAuditMsg{entries: entries, err: err}
	}
}
