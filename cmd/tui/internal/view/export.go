package view

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/chapelhq/steward/internal/export"
	"github.com/chapelhq/steward/internal/treasury"
)

type exportState int

const (
	exportStateForm exportState = iota
	exportStateDone
)

// ExportModel writes a CSV of the period's transactions to disk and
// shows the period summary.
type ExportModel struct {
	CommonModel
	exportService *export.Service
	ident         Identity

	state   exportState
	form    *huh.Form
	err     error
	summary string
	path    string

	// Form bindings
	formStart string
	formEnd   string
	formPath  string
}

func NewExportModel(exportSvc *export.Service, ident Identity) ExportModel {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	m := ExportModel{
		exportService: exportSvc,
		ident:         ident,
		formStart:     monthStart.Format("2006-01-02"),
		formEnd:       now.Format("2006-01-02"),
		formPath:      "transactions.csv",
	}

	dateField := func(key, title string, value *string) *huh.Input {
		return huh.NewInput().
			Key(key).
			Title(title).
			Value(value).
			Validate(func(s string) error {
				if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
					return fmt.Errorf("use YYYY-MM-DD")
				}
				return nil
			})
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			dateField("start", "From", &m.formStart),
			dateField("end", "To", &m.formEnd),

			huh.NewInput().
				Key("path").
				Title("Output file").
				Value(&m.formPath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("path cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)

	return m
}

func (m ExportModel) Title() string { return "Export Transactions" }
func (m ExportModel) ShortHelp() string {
	if m.state == exportStateForm {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back"
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case exportDoneMsg:
		m.err = msg.err
		m.summary = msg.summary
		m.path = msg.path
		m.state = exportStateDone
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.state != exportStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.exportCmd()
}

func (m ExportModel) View() string {
	if m.state == exportStateForm {
		return lipgloss.NewStyle().Padding(1, 2).Render("Export Transactions\n\n" + m.form.View())
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\nEsc: back", m.err))
	}

	return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf(
		"Wrote %s\n\n%s\nEsc: back", m.path, m.summary,
	))
}

type exportDoneMsg struct {
	summary string
	path    string
	err     error
}

func (m ExportModel) exportCmd() tea.Cmd {
	start, err := time.Parse(time.DateOnly, strings.TrimSpace(m.formStart))
	if err != nil {
		return func() tea.Msg { return exportDoneMsg{err: err} }
	}

	end, err := time.Parse(time.DateOnly, strings.TrimSpace(m.formEnd))
	if err != nil {
		return func() tea.Msg { return exportDoneMsg{err: err} }
	}

	path := strings.TrimSpace(m.formPath)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		filter := treasury.ListFilter{StartDate: &start, EndDate: &end}

		f, err := os.Create(path)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		defer f.Close()

		if err := m.exportService.WriteTransactionsCSV(ctx, m.ident.ChurchID, filter, f); err != nil {
			return exportDoneMsg{err: err}
		}

		summary, err := m.exportService.Summary(ctx, m.ident.ChurchID, filter)
		if err != nil {
			return exportDoneMsg{err: err}
		}

		return exportDoneMsg{summary: summary, path: path}
	}
}
