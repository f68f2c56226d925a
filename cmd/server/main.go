package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/shopspring/decimal"

	"praktijkkas/internal/config"
	"praktijkkas/internal/database"
	"praktijkkas/internal/filestore"
	"praktijkkas/internal/handlers"
	"praktijkkas/internal/logger"
	"praktijkkas/internal/version"
)

func main() {
	// Handle --version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("praktijkkas %s (built %s, commit %s)\n",
			version.Version, version.BuildTime, version.GitCommit)
		os.Exit(0)
	}

	// Initialize logger first
	logger.Init()
	log := logger.Default()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config_load_failed", "error", err.Error())
		os.Exit(1)
	}

	floor, err := decimal.NewFromString(cfg.Forecast.MaterialityFloor)
	if err != nil {
		log.Error("config_invalid_materiality_floor", "value", cfg.Forecast.MaterialityFloor, "error", err.Error())
		os.Exit(1)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Error("database_open_failed", "path", cfg.Database.Path, "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Init(); err != nil {
		log.Error("database_init_failed", "error", err.Error())
		os.Exit(1)
	}

	files, err := filestore.New(cfg.Import.UploadDir)
	if err != nil {
		log.Error("filestore_init_failed", "path", cfg.Import.UploadDir, "error", err.Error())
		os.Exit(1)
	}

	h := handlers.New(db, files, handlers.Options{
		MaxImportMessages: cfg.Import.MaxMessages,
		HorizonDays:       cfg.Forecast.HorizonDays,
		MaterialityFloor:  floor,
	})

	mux := http.NewServeMux()

	// Transactions
	mux.HandleFunc("GET /api/transactions", h.TransactionsList)
	mux.HandleFunc("POST /api/transactions", h.TransactionsCreate)
	mux.HandleFunc("GET /api/transactions/{id}", h.TransactionsShow)
	mux.HandleFunc("PUT /api/transactions/{id}", h.TransactionsUpdate)
	mux.HandleFunc("DELETE /api/transactions/{id}", h.TransactionsDelete)

	// Creditors
	mux.HandleFunc("GET /api/creditors", h.CreditorsList)
	mux.HandleFunc("POST /api/creditors", h.CreditorsCreate)
	mux.HandleFunc("PUT /api/creditors/{id}", h.CreditorsUpdate)
	mux.HandleFunc("DELETE /api/creditors/{id}", h.CreditorsDelete)

	// Insurer payment terms
	mux.HandleFunc("GET /api/insurers", h.InsurersList)
	mux.HandleFunc("POST /api/insurers", h.InsurersCreate)
	mux.HandleFunc("PUT /api/insurers/{id}", h.InsurersUpdate)
	mux.HandleFunc("DELETE /api/insurers/{id}", h.InsurersDelete)

	// Other recurring revenue
	mux.HandleFunc("GET /api/other-revenue", h.OtherRevenueList)
	mux.HandleFunc("POST /api/other-revenue", h.OtherRevenueCreate)
	mux.HandleFunc("PUT /api/other-revenue/{id}", h.OtherRevenueUpdate)
	mux.HandleFunc("DELETE /api/other-revenue/{id}", h.OtherRevenueDelete)

	// Corrections
	mux.HandleFunc("GET /api/corrections", h.CorrectionsList)
	mux.HandleFunc("POST /api/corrections", h.CorrectionsCreate)
	mux.HandleFunc("DELETE /api/corrections/{id}", h.CorrectionsDelete)
	mux.HandleFunc("GET /api/corrections/{id}/suggestions", h.CorrectionSuggestions)
	mux.HandleFunc("POST /api/corrections/{id}/match", h.CorrectionMatch)
	mux.HandleFunc("POST /api/corrections/{id}/unmatch", h.CorrectionUnmatch)

	// Imports
	mux.HandleFunc("POST /api/import/preview", h.ImportPreview)
	mux.HandleFunc("POST /api/import", h.ImportExecute)
	mux.HandleFunc("POST /api/import/paste", h.ImportPaste)

	// Bank reconciliation
	mux.HandleFunc("GET /api/bank/unmatched", h.BankUnmatched)
	mux.HandleFunc("GET /api/bank/{id}/suggestions", h.BankSuggestions)
	mux.HandleFunc("POST /api/bank/{id}/match", h.BankMatch)
	mux.HandleFunc("POST /api/bank/{id}/match-creditor", h.BankMatchCreditor)
	mux.HandleFunc("POST /api/bank/{id}/unmatch", h.BankUnmatch)
	mux.HandleFunc("POST /api/bank/{id}/classify", h.BankClassify)

	// Forecast and cashflow
	mux.HandleFunc("GET /api/forecast", h.Forecast)
	mux.HandleFunc("GET /api/cashflow/daily", h.CashflowDaily)
	mux.HandleFunc("GET /api/cashflow/summary", h.CashflowSummary)

	// Reference data
	mux.HandleFunc("GET /api/categories", h.Categories)
	mux.HandleFunc("GET /api/version", h.Version)
	mux.HandleFunc("GET /api/health", h.Health)

	handler := logger.HTTPMiddleware(mux)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("server_starting", "port", cfg.Server.Port, "address", "http://localhost"+addr, "version", version.Version)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
}
