// Package handlers exposes the JSON API. Request bodies accept amounts
// and dates as free-form strings and run them through the normalize
// package, so the same Dutch formats work in the API as in file imports.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"praktijkkas/internal/database"
	"praktijkkas/internal/filestore"
	"praktijkkas/internal/logger"
	"praktijkkas/internal/models"
	"praktijkkas/internal/normalize"
	"praktijkkas/internal/reconcile"
	"praktijkkas/internal/version"
)

type Handler struct {
	db    *database.DB
	svc   *reconcile.Service
	files *filestore.Store

	maxImportMessages int
	horizonDays       int
	materialityFloor  decimal.Decimal
}

type Options struct {
	MaxImportMessages int
	HorizonDays       int
	MaterialityFloor  decimal.Decimal
}

func New(db *database.DB, files *filestore.Store, opts Options) *Handler {
	if opts.MaxImportMessages <= 0 {
		opts.MaxImportMessages = 20
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = 90
	}
	return &Handler{
		db:                db,
		svc:               reconcile.NewService(db),
		files:             files,
		maxImportMessages: opts.MaxImportMessages,
		horizonDays:       opts.HorizonDays,
		materialityFloor:  opts.MaterialityFloor,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps store sentinels onto HTTP statuses and emits a uniform
// error body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, database.ErrAlreadyReconciled),
		errors.Is(err, database.ErrAlreadyMatched),
		errors.Is(err, reconcile.ErrScopeMismatch):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request_failed",
			"method", r.Method, "path", r.URL.Path, "error", err.Error())
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// entryRequest is the write shape for ledger entries. Amount and date are
// strings in any accepted Dutch or ISO format.
type entryRequest struct {
	Kind            string `json:"kind"`
	Category        string `json:"category"`
	Amount          string `json:"amount"`
	Description     string `json:"description"`
	Date            string `json:"date"`
	CounterpartName string `json:"counterpart_name"`
	InvoiceNumber   string `json:"invoice_number"`
	Notes           string `json:"notes"`
}

func (req entryRequest) toEntry() (models.LedgerEntry, error) {
	var e models.LedgerEntry
	if req.Kind == "" || req.Category == "" {
		return e, errors.New("kind and category are required")
	}
	amount, err := normalize.ParseCurrency(req.Amount)
	if err != nil {
		return e, err
	}
	date, err := normalize.ParseFlexibleDate(req.Date)
	if err != nil {
		return e, err
	}
	e = models.LedgerEntry{
		Kind:            req.Kind,
		Category:        req.Category,
		Amount:          amount.Abs(),
		Description:     req.Description,
		Date:            date,
		CounterpartName: normalize.ExtractCounterpartName(req.CounterpartName),
		InvoiceNumber:   req.InvoiceNumber,
		Notes:           req.Notes,
	}
	return e, nil
}

// Transactions

func (h *Handler) TransactionsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.EntryFilter{
		Kind:     q.Get("kind"),
		Category: q.Get("category"),
	}
	if s := q.Get("start_date"); s != "" {
		d, err := normalize.ParseFlexibleDate(s)
		if err != nil {
			h.badRequest(w, err.Error())
			return
		}
		f.StartDate = d
	}
	if s := q.Get("end_date"); s != "" {
		d, err := normalize.ParseFlexibleDate(s)
		if err != nil {
			h.badRequest(w, err.Error())
			return
		}
		f.EndDate = d
	}
	if s := q.Get("reconciled"); s != "" {
		v := s == "true" || s == "1"
		f.Reconciled = &v
	}
	if s := q.Get("limit"); s != "" {
		f.Limit, _ = strconv.Atoi(s)
	}

	entries, err := h.db.ListLedgerEntries(f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) TransactionsCreate(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, err.Error())
		return
	}
	e, err := req.toEntry()
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	id, err := h.db.CreateLedgerEntry(e)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.db.GetLedgerEntry(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) TransactionsShow(w http.ResponseWriter, r *http.Request) {
	e, err := h.db.GetLedgerEntry(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) TransactionsUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req entryRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, err.Error())
		return
	}
	e, err := req.toEntry()
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	e.ID = id
	if err := h.db.UpdateLedgerEntry(e); err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.db.GetLedgerEntry(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) TransactionsDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteLedgerEntry(r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Creditors

type creditorRequest struct {
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	DayOfMonth int    `json:"day_of_month"`
	Active     *bool  `json:"active"`
}

func (req creditorRequest) toCreditor() (models.Creditor, error) {
	var c models.Creditor
	if req.Name == "" {
		return c, errors.New("name is required")
	}
	if req.DayOfMonth < 1 || req.DayOfMonth > 31 {
		return c, errors.New("day_of_month must be between 1 and 31")
	}
	amount, err := normalize.ParseCurrency(req.Amount)
	if err != nil {
		return c, err
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return models.Creditor{
		Name:       req.Name,
		Amount:     amount.Abs(),
		DayOfMonth: req.DayOfMonth,
		Active:     active,
	}, nil
}

func (h *Handler) CreditorsList(w http.ResponseWriter, r *http.Request) {
	creditors, err := h.db.ListCreditors(r.URL.Query().Get("active") == "true")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if creditors == nil {
		creditors = []models.Creditor{}
	}
	writeJSON(w, http.StatusOK, creditors)
}

func (h *Handler) CreditorsCreate(w http.ResponseWriter, r *http.Request) {
	var req creditorRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, err.Error())
		return
	}
	c, err := req.toCreditor()
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	id, err := h.db.CreateCreditor(c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.db.GetCreditor(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) CreditorsUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req creditorRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, err.Error())
		return
	}
	c, err := req.toCreditor()
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	c.ID = id
	if err := h.db.UpdateCreditor(c); err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.db.GetCreditor(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) CreditorsDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteCreditor(r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Insurer terms

type insurerRequest struct {
	Name     string `json:"name"`
	TermDays int    `json:"term_days"`
}

func (h *Handler) InsurersList(w http.ResponseWriter, r *http.Request) {
	terms, err := h.db.ListInsurerTerms()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if terms == nil {
		terms = []models.InsurerTerm{}
	}
	writeJSON(w, http.StatusOK, terms)
}

func (h *Handler) InsurersCreate(w http.ResponseWriter, r *http.Request) {
	var req insurerRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, err.Error())
		return
	}
	if req.Name == "" || req.TermDays <= 0 {
		h.badRequest(w, "name and a positive term_days are required")
		return
	}
	id, err := h.db.CreateInsurerTerm(models.InsurerTerm{Name: req.Name, TermDays: req.TermDays})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.db.GetInsurerTerm(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) InsurersUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req insurerRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, err.Error())
		return
	}
	if req.Name == "" || req.TermDays <= 0 {
		h.badRequest(w, "name and a positive term_days are required")
		return
	}
	if err := h.db.UpdateInsurerTerm(models.InsurerTerm{ID: id, Name: req.Name, TermDays: req.TermDays}); err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.db.GetInsurerTerm(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) InsurersDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteInsurerTerm(r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Other revenue

type otherRevenueRequest struct {
	Label      string `json:"label"`
	Amount     string `json:"amount"`
	DayOfMonth int    `json:"day_of_month"`
	Active     *bool  `json:"active"`
}

func (req otherRevenueRequest) toRevenue() (models.OtherRevenue, error) {
	var o models.OtherRevenue
	if req.Label == "" {
		return o, errors.New("label is required")
	}
	if req.DayOfMonth < 1 || req.DayOfMonth > 31 {
		return o, errors.New("day_of_month must be between 1 and 31")
	}
	amount, err := normalize.ParseCurrency(req.Amount)
	if err != nil {
		return o, err
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return models.OtherRevenue{
		Label:      req.Label,
		Amount:     amount.Abs(),
		DayOfMonth: req.DayOfMonth,
		Active:     active,
	}, nil
}

func (h *Handler) OtherRevenueList(w http.ResponseWriter, r *http.Request) {
	lines, err := h.db.ListOtherRevenue(r.URL.Query().Get("active") == "true")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if lines == nil {
		lines = []models.OtherRevenue{}
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *Handler) OtherRevenueCreate(w http.ResponseWriter, r *http.Request) {
	var req otherRevenueRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, err.Error())
		return
	}
	o, err := req.toRevenue()
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	id, err := h.db.CreateOtherRevenue(o)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.db.GetOtherRevenue(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) OtherRevenueUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req otherRevenueRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, err.Error())
		return
	}
	o, err := req.toRevenue()
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	o.ID = id
	if err := h.db.UpdateOtherRevenue(o); err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.db.GetOtherRevenue(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) OtherRevenueDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteOtherRevenue(r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Corrections

type correctionRequest struct {
	Kind            string `json:"kind"`
	Amount          string `json:"amount"`
	Date            string `json:"date"`
	CounterpartName string `json:"counterpart_name"`
	OriginalInvoice string `json:"original_invoice"`
}

func (h *Handler) CorrectionsList(w http.ResponseWriter, r *http.Request) {
	corrections, err := h.db.ListCorrections(r.URL.Query().Get("unmatched") == "true")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if corrections == nil {
		corrections = []models.Correction{}
	}
	writeJSON(w, http.StatusOK, corrections)
}

func (h *Handler) CorrectionsCreate(w http.ResponseWriter, r *http.Request) {
	var req correctionRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, err.Error())
		return
	}
	switch req.Kind {
	case models.CorrectionCreditNotePrivate, models.CorrectionCreditDeclarationInsurer, models.CorrectionInvoiceInsurer:
	default:
		h.badRequest(w, "unknown correction kind "+strconv.Quote(req.Kind))
		return
	}
	amount, err := normalize.ParseCurrency(req.Amount)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	date, err := normalize.ParseFlexibleDate(req.Date)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	// Credit notes reduce the original entry regardless of the sign the
	// client sent; correction invoices add to it.
	if req.Kind == models.CorrectionInvoiceInsurer {
		amount = amount.Abs()
	} else {
		amount = amount.Abs().Neg()
	}
	id, err := h.db.CreateCorrection(models.Correction{
		Kind:            req.Kind,
		Amount:          amount,
		Date:            date,
		CounterpartName: normalize.ExtractCounterpartName(req.CounterpartName),
		OriginalInvoice: req.OriginalInvoice,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.db.GetCorrection(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) CorrectionsDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.db.DeleteCorrection(r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CorrectionSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.svc.SuggestForCorrection(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}
	writeJSON(w, http.StatusOK, suggestions)
}

func (h *Handler) CorrectionMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EntryID string `json:"entry_id"`
	}
	if err := decodeBody(r, &req); err != nil || req.EntryID == "" {
		h.badRequest(w, "entry_id is required")
		return
	}
	id := r.PathValue("id")
	if err := h.svc.ConfirmCorrectionMatch(id, req.EntryID); err != nil {
		h.writeError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("correction_matched",
		"correction_id", id, "entry_id", req.EntryID)
	c, err := h.db.GetCorrection(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) CorrectionUnmatch(w http.ResponseWriter, r *http.Request) {
	if err := h.db.UnmatchCorrection(r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Bank movements

func (h *Handler) BankUnmatched(w http.ResponseWriter, r *http.Request) {
	movements, err := h.db.ListBankMovements(true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if movements == nil {
		movements = []models.BankMovement{}
	}
	writeJSON(w, http.StatusOK, movements)
}

func (h *Handler) BankSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.svc.SuggestForMovement(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}
	writeJSON(w, http.StatusOK, suggestions)
}

func (h *Handler) BankMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EntryID string `json:"entry_id"`
	}
	if err := decodeBody(r, &req); err != nil || req.EntryID == "" {
		h.badRequest(w, "entry_id is required")
		return
	}
	id := r.PathValue("id")
	if err := h.svc.ConfirmEntryMatch(id, req.EntryID); err != nil {
		h.writeError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("movement_matched",
		"movement_id", id, "entry_id", req.EntryID)
	m, err := h.db.GetBankMovement(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) BankMatchCreditor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CreditorID string `json:"creditor_id"`
	}
	if err := decodeBody(r, &req); err != nil || req.CreditorID == "" {
		h.badRequest(w, "creditor_id is required")
		return
	}
	id := r.PathValue("id")
	entryID, err := h.svc.ConfirmCreditorMatch(id, req.CreditorID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("movement_matched_creditor",
		"movement_id", id, "creditor_id", req.CreditorID, "entry_id", entryID)
	m, err := h.db.GetBankMovement(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) BankUnmatch(w http.ResponseWriter, r *http.Request) {
	if err := h.db.UnreconcileMovement(r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) BankClassify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
		Rhythm   string `json:"rhythm"`
	}
	if err := decodeBody(r, &req); err != nil || req.Category == "" {
		h.badRequest(w, "category is required")
		return
	}
	if req.Rhythm != models.CostFixed && req.Rhythm != models.CostVariable {
		h.badRequest(w, "rhythm must be fixed or variable")
		return
	}
	id := r.PathValue("id")
	if err := h.db.ClassifyMovement(id, req.Category, req.Rhythm); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := h.db.GetBankMovement(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Reference data

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"income":  models.IncomeCategories,
		"expense": models.ExpenseCategories,
	})
}

func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"build_time": version.BuildTime,
		"git_commit": version.GitCommit,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}
