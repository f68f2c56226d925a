package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"praktijkkas/internal/forecast"
	"praktijkkas/internal/models"
	"praktijkkas/internal/normalize"
)

// The open-entry window bounds how far back unsettled income is still
// expected to pay out. Older open entries are stale, not pending.
const openEntryWindowDays = 60

// The cost classifier looks at a trailing quarter of reconciled spend.
const costWindowDays = 90

// Forecast projects the daily cash balance over the horizon.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	days := h.horizonDays
	if s := q.Get("days"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 365 {
			h.badRequest(w, "days must be between 1 and 365")
			return
		}
		days = v
	}
	balance := decimal.Zero
	if s := q.Get("balance"); s != "" {
		v, err := normalize.ParseCurrency(s)
		if err != nil {
			h.badRequest(w, err.Error())
			return
		}
		balance = v
	}

	today := time.Now()
	unreconciled := false
	openEntries, err := h.db.ListLedgerEntries(models.EntryFilter{
		Kind:       models.EntryIncome,
		Reconciled: &unreconciled,
		StartDate:  today.AddDate(0, 0, -openEntryWindowDays),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	corrections, err := h.db.ListMatchedCorrections()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	terms, err := h.db.ListInsurerTerms()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	creditors, err := h.db.ListCreditors(true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	revenue, err := h.db.ListOtherRevenue(true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	costs, err := h.db.CostProfiles(today.AddDate(0, 0, -costWindowDays))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	events := forecast.BuildEvents(forecast.BuildInput{
		Today:            today,
		HorizonDays:      days,
		OpenEntries:      openEntries,
		Corrections:      corrections,
		Terms:            terms,
		Creditors:        creditors,
		OtherRevenue:     revenue,
		Costs:            costs,
		MaterialityFloor: h.materialityFloor,
	})
	proj := forecast.Project(balance, today, days, events)
	writeJSON(w, http.StatusOK, projectionResponse(proj))
}

type daySnapshotDTO struct {
	Date    string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
	Balance decimal.Decimal `json:"balance"`
	Events  []cashEventDTO  `json:"events"`
}

type cashEventDTO struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Source string          `json:"source"`
	Label  string          `json:"label"`
}

type projectionDTO struct {
	StartBalance decimal.Decimal  `json:"start_balance"`
	EndBalance   decimal.Decimal  `json:"end_balance"`
	TotalIncome  decimal.Decimal  `json:"total_income"`
	TotalExpense decimal.Decimal  `json:"total_expense"`
	Days         []daySnapshotDTO `json:"days"`
}

func projectionResponse(p forecast.Projection) projectionDTO {
	out := projectionDTO{
		StartBalance: p.StartBalance,
		EndBalance:   p.EndBalance,
		TotalIncome:  p.TotalIncome,
		TotalExpense: p.TotalExpense,
		Days:         make([]daySnapshotDTO, 0, len(p.Days)),
	}
	for _, d := range p.Days {
		events := make([]cashEventDTO, 0, len(d.Events))
		for _, ev := range d.Events {
			events = append(events, cashEventDTO{
				Date:   ev.Date.Format("2006-01-02"),
				Amount: ev.Amount,
				Source: ev.Source,
				Label:  ev.Label,
			})
		}
		out.Days = append(out.Days, daySnapshotDTO{
			Date:    d.Date.Format("2006-01-02"),
			Income:  d.Income,
			Expense: d.Expense,
			Net:     d.Net,
			Balance: d.Balance,
			Events:  events,
		})
	}
	return out
}

// CashflowDaily aggregates booked entries per day over a date range.
func (h *Handler) CashflowDaily(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	end := time.Now()
	start := end.AddDate(0, 0, -30)
	if s := q.Get("start_date"); s != "" {
		d, err := normalize.ParseFlexibleDate(s)
		if err != nil {
			h.badRequest(w, err.Error())
			return
		}
		start = d
	}
	if s := q.Get("end_date"); s != "" {
		d, err := normalize.ParseFlexibleDate(s)
		if err != nil {
			h.badRequest(w, err.Error())
			return
		}
		end = d
	}

	entries, err := h.db.ListLedgerEntries(models.EntryFilter{StartDate: start, EndDate: end})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	corrections, err := h.db.ListMatchedCorrections()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	type dayTotals struct {
		Date    string          `json:"date"`
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
		Net     decimal.Decimal `json:"net"`
	}
	byDay := make(map[string]*dayTotals)
	for _, e := range entries {
		key := e.Date.Format("2006-01-02")
		d := byDay[key]
		if d == nil {
			d = &dayTotals{Date: key, Income: decimal.Zero, Expense: decimal.Zero}
			byDay[key] = d
		}
		if e.Kind == models.EntryIncome {
			d.Income = d.Income.Add(forecast.ApplyCorrections(e, corrections))
		} else {
			d.Expense = d.Expense.Sub(e.Amount)
		}
	}

	days := make([]dayTotals, 0, len(byDay))
	for d := dateOnly(start); !d.After(dateOnly(end)); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		if t, ok := byDay[key]; ok {
			t.Net = t.Income.Add(t.Expense)
			days = append(days, *t)
		}
	}
	writeJSON(w, http.StatusOK, days)
}

// CashflowSummary totals one calendar month per category.
func (h *Handler) CashflowSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if s := q.Get("year"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			h.badRequest(w, "invalid year")
			return
		}
		year = v
	}
	if s := q.Get("month"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 12 {
			h.badRequest(w, "month must be between 1 and 12")
			return
		}
		month = v
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	entries, err := h.db.ListLedgerEntries(models.EntryFilter{StartDate: start, EndDate: end})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	corrections, err := h.db.ListMatchedCorrections()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	income := decimal.Zero
	expense := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	for _, e := range entries {
		var signed decimal.Decimal
		if e.Kind == models.EntryIncome {
			signed = forecast.ApplyCorrections(e, corrections)
			income = income.Add(signed)
		} else {
			signed = e.Amount.Neg()
			expense = expense.Add(signed)
		}
		byCategory[e.Category] = byCategory[e.Category].Add(signed)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"year":        year,
		"month":       month,
		"income":      income,
		"expense":     expense,
		"net":         income.Add(expense),
		"by_category": byCategory,
	})
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
