package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chapelhq/steward/internal/account"
	"github.com/chapelhq/steward/internal/treasury"
)

type recordState int

const (
	recordStateLoading recordState = iota
	recordStateForm
	recordStateDone
)

// RecordModel is the guided form for entering one transaction by hand.
type RecordModel struct {
	CommonModel
	txService  *treasury.Service
	accService *account.Service
	ident      Identity

	state recordState
	form  *huh.Form
	err   error
	saved *treasury.Transaction

	// Form bindings
	formDesc     string
	formAmount   string
	formSource   string
	formDest     string
	formMinistry string
	formDate     string

	accountOptions []huh.Option[string]
}

func NewRecordModel(txSvc *treasury.Service, accSvc *account.Service, ident Identity) RecordModel {
	return RecordModel{
		txService:  txSvc,
		accService: accSvc,
		ident:      ident,
		state:      recordStateLoading,
	}
}

func (m RecordModel) Title() string { return "Record Transaction" }
func (m RecordModel) ShortHelp() string {
	if m.state == recordStateForm {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back"
}

func (m RecordModel) Init() tea.Cmd {
	return m.loadAccountsCmd()
}

func (m RecordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recordAccountsMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = recordStateDone
			return m, nil
		}

		m.accountOptions = make([]huh.Option[string], 0, len(msg.accs))
		for _, acc := range msg.accs {
			label := fmt.Sprintf("%s (%s)", acc.Name, acc.Type)
			m.accountOptions = append(m.accountOptions, huh.NewOption(label, acc.ID.String()))
		}

		m.buildForm()
		m.state = recordStateForm
		return m, m.form.Init()

	case recordSavedMsg:
		m.err = msg.err
		m.saved = msg.tx
		m.state = recordStateDone
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.state != recordStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m *RecordModel) buildForm() {
	m.formDate = time.Now().Format("2006-01-02")

	m.form = huh.NewForm(
		huh.NewGroup(
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

			huh.NewSelect[string]().
				Key("source").
				Title("From account").
				Options(m.accountOptions...).
				Value(&m.formSource),

			huh.NewSelect[string]().
				Key("destination").
				Title("To account").
				Options(m.accountOptions...).
				Value(&m.formDest),

			huh.NewInput().
				Key("ministry").
				Title("Ministry ID (optional)").
				Value(&m.formMinistry).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := uuid.Parse(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("invalid ministry id")
					}
					return nil
				}),

			huh.NewInput().
				Key("date").
				Title("Date").
				Value(&m.formDate).
				Validate(func(s string) error {
					if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("use YYYY-MM-DD")
					}
					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m RecordModel) View() string {
	switch m.state {
	case recordStateLoading:
		return lipgloss.NewStyle().Padding(2).Render("Loading accounts...")
	case recordStateForm:
		return lipgloss.NewStyle().Padding(1, 2).Render("Record Transaction\n\n" + m.form.View())
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\nEsc: back", m.err))
	}

	note := fmt.Sprintf("Recorded %s (%s) with status %s.\n\nEsc: back",
		m.saved.Description, FormatAmount(m.saved.Amount), m.saved.Status)

	return lipgloss.NewStyle().Padding(2).Render(note)
}

type recordAccountsMsg struct {
	accs []*account.Account
	err  error
}

func (m RecordModel) loadAccountsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		accs, err := m.accService.List(ctx, m.ident.ChurchID, account.ListFilter{})
		if err == nil && len(accs) == 0 {
			err = fmt.Errorf("no accounts yet; create accounts through the API first")
		}

		return recordAccountsMsg{accs: accs, err: err}
	}
}

type recordSavedMsg struct {
	tx  *treasury.Transaction
	err error
}

func (m RecordModel) saveCmd() tea.Cmd {
	amount, err := decimal.NewFromString(strings.TrimSpace(m.formAmount))
	if err != nil {
		return func() tea.Msg { return recordSavedMsg{err: err} }
	}

	sourceID, err := uuid.Parse(m.formSource)
	if err != nil {
		return func() tea.Msg { return recordSavedMsg{err: err} }
	}

	destID, err := uuid.Parse(m.formDest)
	if err != nil {
		return func() tea.Msg { return recordSavedMsg{err: err} }
	}

	date, err := time.Parse(time.DateOnly, strings.TrimSpace(m.formDate))
	if err != nil {
		return func() tea.Msg { return recordSavedMsg{err: err} }
	}

	params := treasury.CreateParams{
		Description:   m.formDesc,
		Amount:        amount,
		SourceID:      sourceID,
		DestinationID: destID,
		Date:          date,
	}

	if s := strings.TrimSpace(m.formMinistry); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return func() tea.Msg { return recordSavedMsg{err: err} }
		}

		params.MinistryID = &id
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := m.txService.Create(ctx, m.ident.ChurchID, m.ident.UserID, params)
		return recordSavedMsg{tx: tx, err: err}
	}
}
