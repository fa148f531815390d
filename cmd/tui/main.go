package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/chapelhq/steward/cmd/tui/internal/view"
	"github.com/chapelhq/steward/internal/account"
	accountStore "github.com/chapelhq/steward/internal/account/store"
	"github.com/chapelhq/steward/internal/budget"
	budgetStore "github.com/chapelhq/steward/internal/budget/store"
	"github.com/chapelhq/steward/internal/config"
	"github.com/chapelhq/steward/internal/database"
	"github.com/chapelhq/steward/internal/export"
	"github.com/chapelhq/steward/internal/treasury"
	treasuryStore "github.com/chapelhq/steward/internal/treasury/store"
)

type model struct {
	accountService  *account.Service
	treasuryService *treasury.Service
	budgetService   *budget.Service
	exportService   *export.Service
	ident           view.Identity

	currentView View

	balancesView     view.BalancesModel
	transactionsView view.TransactionsModel
	recordView       view.RecordModel
	budgetsView      view.BudgetsModel
	exportView       view.ExportModel
}

type View int

const (
	ViewMenu         View = 0
	ViewBalances     View = 1
	ViewTransactions View = 2
	ViewRecord       View = 3
	ViewBudgets      View = 4
	ViewExport       View = 5
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	churchID, err := uuid.Parse(cfg.TUI.ChurchID)
	if err != nil {
		slog.Error("TUI_CHURCH_ID must be a valid uuid")
		os.Exit(1)
	}

	userID, err := uuid.Parse(cfg.TUI.UserID)
	if err != nil {
		slog.Error("TUI_USER_ID must be a valid uuid")
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	ident := view.Identity{ChurchID: churchID, UserID: userID}
	guard := budget.NewGuard(cfg.Treasury.ApprovalThreshold)

	accSvc := account.NewService(accountStore.New(db))
	budgetSvc := budget.NewService(budgetStore.New(db))
	txSvc := treasury.NewService(treasuryStore.New(db), guard, cfg.Treasury.DefaultCurrency)
	expSvc := export.NewService(txSvc, accSvc)

	return model{
		accountService:   accSvc,
		treasuryService:  txSvc,
		budgetService:    budgetSvc,
		exportService:    expSvc,
		ident:            ident,
		currentView:      ViewMenu,
		balancesView:     view.NewBalancesModel(accSvc, ident),
		transactionsView: view.NewTransactionsModel(txSvc, ident),
		recordView:       view.NewRecordModel(txSvc, accSvc, ident),
		budgetsView:      view.NewBudgetsModel(budgetSvc, ident),
		exportView:       view.NewExportModel(expSvc, ident),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewBalances
				m.balancesView = view.NewBalancesModel(m.accountService, m.ident)

				return m, m.balancesView.Init()
			case "2":
				m.currentView = ViewTransactions
				m.transactionsView = view.NewTransactionsModel(m.treasuryService, m.ident)

				return m, m.transactionsView.Init()
			case "3":
				m.currentView = ViewRecord
				m.recordView = view.NewRecordModel(m.treasuryService, m.accountService, m.ident)

				return m, m.recordView.Init()
			case "4":
				m.currentView = ViewBudgets
				m.budgetsView = view.NewBudgetsModel(m.budgetService, m.ident)

				return m, m.budgetsView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService, m.ident)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewBalances:
		var newModel tea.Model
		newModel, cmd = m.balancesView.Update(msg)
		m.balancesView = newModel.(view.BalancesModel)
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewRecord:
		var newModel tea.Model
		newModel, cmd = m.recordView.Update(msg)
		m.recordView = newModel.(view.RecordModel)
	case ViewBudgets:
		var newModel tea.Model
		newModel, cmd = m.budgetsView.Update(msg)
		m.budgetsView = newModel.(view.BudgetsModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Steward TUI\n\n" +
				"1. Account Balances\n" +
				"2. Transactions\n" +
				"3. Record Transaction\n" +
				"4. Budgets\n" +
				"5. Export Transactions\n\n" +
				"q. Quit",
		)
	case ViewBalances:
		return m.balancesView.View()
	case ViewTransactions:
		return m.transactionsView.View()
	case ViewRecord:
		return m.recordView.View()
	case ViewBudgets:
		return m.budgetsView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
