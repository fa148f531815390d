package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/chapelhq/steward/internal/account"
	accountStore "github.com/chapelhq/steward/internal/account/store"
	"github.com/chapelhq/steward/internal/auth"
	"github.com/chapelhq/steward/internal/budget"
	budgetStore "github.com/chapelhq/steward/internal/budget/store"
	"github.com/chapelhq/steward/internal/config"
	"github.com/chapelhq/steward/internal/database"
	"github.com/chapelhq/steward/internal/export"
	stewardHttp "github.com/chapelhq/steward/internal/http"
	accountHandler "github.com/chapelhq/steward/internal/http/account"
	budgetHandler "github.com/chapelhq/steward/internal/http/budget"
	exportHandler "github.com/chapelhq/steward/internal/http/export"
	importHandler "github.com/chapelhq/steward/internal/http/importcsv"
	txHandler "github.com/chapelhq/steward/internal/http/transaction"
	"github.com/chapelhq/steward/internal/importer"
	"github.com/chapelhq/steward/internal/treasury"
	treasuryStore "github.com/chapelhq/steward/internal/treasury/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Auth.JWTSecret == "" {
		slog.Error("AUTH_JWT_SECRET must be set")
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	guard := budget.NewGuard(cfg.Treasury.ApprovalThreshold)
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)

	var (
		accountService  = account.NewService(accountStore.New(db))
		budgetService   = budget.NewService(budgetStore.New(db))
		treasuryService = treasury.NewService(treasuryStore.New(db), guard, cfg.Treasury.DefaultCurrency)
		importService   = importer.NewService()
		exportService   = export.NewService(treasuryService, accountService)
	)

	var (
		accountH     = accountHandler.NewHandler(accountService)
		budgetH      = budgetHandler.NewHandler(budgetService)
		transactionH = txHandler.NewHandler(treasuryService)
		importH      = importHandler.NewHandler(importService, treasuryService)
		exportH      = exportHandler.NewHandler(exportService)
	)

	router := stewardHttp.New(verifier, accountH, transactionH, budgetH, importH, exportH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
