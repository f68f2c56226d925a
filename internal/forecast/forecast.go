// Package forecast projects a forward daily cash balance from open ledger
// entries, creditor schedules, recurring revenue and historically
// classified recurring costs. Everything is pure over the snapshots passed
// in; the host fetches them and bounds the horizon.
package forecast

import (
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"

	"praktijkkas/internal/models"
)

// Event sources
const (
	SourceDeclaration  = "declaration"
	SourceInvoice      = "invoice"
	SourceCreditor     = "creditor"
	SourceOtherRevenue = "other_revenue"
	SourceFixedCost    = "fixed_cost"
	SourceVariableCost = "variable_cost"
)

// Settlement defaults: insurer entries settle after the insurer's payment
// term (30 days when unknown), private entries after a week.
const (
	DefaultInsurerTermDays = 30
	DefaultPrivateTermDays = 7
)

// Each recurring source is expanded to at most this many monthly
// occurrences; the horizon clips the rest.
const maxOccurrences = 3

// CashEvent is one dated, signed expected cash mutation.
type CashEvent struct {
	Date   time.Time
	Amount decimal.Decimal
	Source string
	Label  string
}

// DaySnapshot is the projected state of one calendar day.
type DaySnapshot struct {
	Date    time.Time
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
	Balance decimal.Decimal
	Events  []CashEvent
}

// Projection is a full forecast run: the day sequence plus aggregates.
type Projection struct {
	StartBalance decimal.Decimal
	EndBalance   decimal.Decimal
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Days         []DaySnapshot
}

// BuildInput carries the snapshots the event builder works from.
type BuildInput struct {
	Today            time.Time
	HorizonDays      int
	OpenEntries      []models.LedgerEntry // unreconciled income entries, recent window
	Corrections      []models.Correction
	Terms            []models.InsurerTerm
	Creditors        []models.Creditor
	OtherRevenue     []models.OtherRevenue
	Costs            []models.CostProfile
	MaterialityFloor decimal.Decimal
}

// ApplyCorrections returns the entry's net amount after every matched
// correction linked to it. Correction amounts already carry the adjusting
// sign, so application is additive. Unmatched corrections never count.
func ApplyCorrections(e models.LedgerEntry, corrections []models.Correction) decimal.Decimal {
	net := e.Amount
	for _, c := range corrections {
		if !c.Matched || c.LinkedEntryID == nil || *c.LinkedEntryID != e.ID {
			continue
		}
		net = net.Add(c.Amount)
	}
	return net
}

// InsurerTermDays looks up the payment term for an insurer name. The match
// is fuzzy: exact, then containment, then closest within a small edit
// distance. Unknown insurers get the default term.
func InsurerTermDays(name string, terms []models.InsurerTerm) int {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return DefaultInsurerTermDays
	}
	for _, t := range terms {
		if strings.ToLower(t.Name) == n {
			return t.TermDays
		}
	}
	for _, t := range terms {
		tn := strings.ToLower(t.Name)
		if strings.Contains(tn, n) || strings.Contains(n, tn) {
			return t.TermDays
		}
	}
	best, bestDist := 0, 4
	for i, t := range terms {
		d := levenshtein.ComputeDistance(strings.ToLower(t.Name), n)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if bestDist < 4 {
		return terms[best].TermDays
	}
	return DefaultInsurerTermDays
}

// BuildEvents flattens the four forecast sources into one dated event
// list. Every source is independently time-boxed: entries come from a
// bounded query window, recurring sources expand to at most three
// occurrences, and the projection later clips to the horizon.
func BuildEvents(in BuildInput) []CashEvent {
	today := dateOnly(in.Today)
	var events []CashEvent

	// Open income entries, projected to their expected settlement date.
	for _, e := range in.OpenEntries {
		if e.Kind != models.EntryIncome || e.Reconciled {
			continue
		}
		net := ApplyCorrections(e, in.Corrections)
		if !net.IsPositive() {
			continue // fully corrected away
		}
		termDays := DefaultPrivateTermDays
		source := SourceInvoice
		if e.Category == "zorgverzekeraar" {
			termDays = InsurerTermDays(e.CounterpartName, in.Terms)
			source = SourceDeclaration
		}
		settle := dateOnly(e.Date).AddDate(0, 0, termDays)
		if settle.Before(today) {
			settle = today // overdue: expected any day now
		}
		events = append(events, CashEvent{
			Date:   settle,
			Amount: net,
			Source: source,
			Label:  e.CounterpartName,
		})
	}

	// Creditor schedules, next occurrences of their day-of-month.
	for _, c := range in.Creditors {
		if !c.Active {
			continue
		}
		for _, d := range monthlyOccurrences(today, c.DayOfMonth) {
			events = append(events, CashEvent{
				Date:   d,
				Amount: c.Amount.Neg(),
				Source: SourceCreditor,
				Label:  c.Name,
			})
		}
	}

	// Recurring other revenue, anchored to its original day-of-month.
	for _, r := range in.OtherRevenue {
		if !r.Active {
			continue
		}
		for _, d := range monthlyOccurrences(today, r.DayOfMonth) {
			events = append(events, CashEvent{
				Date:   d,
				Amount: r.Amount,
				Source: SourceOtherRevenue,
				Label:  r.Label,
			})
		}
	}

	// Historically classified recurring costs.
	three := decimal.NewFromInt(3)
	for _, p := range in.Costs {
		day := p.LastDay
		if day < 1 {
			day = 1
		}
		if day > 28 {
			day = 28 // every month has the day
		}
		var monthly decimal.Decimal
		source := SourceFixedCost
		if p.Rhythm == models.CostVariable {
			monthly = p.TrailingTotal.Div(three)
			source = SourceVariableCost
			if monthly.LessThanOrEqual(in.MaterialityFloor) {
				continue // must exceed the materiality floor
			}
		} else {
			monthly = p.MonthlyAverage
			if !monthly.IsPositive() {
				continue
			}
		}
		for _, d := range monthlyOccurrences(today, day) {
			events = append(events, CashEvent{
				Date:   d,
				Amount: monthly.Neg(),
				Source: source,
				Label:  p.Category,
			})
		}
	}

	return events
}

// Project walks the horizon day by day, summing same-day events into
// income/expense buckets and accumulating the running balance. The sum of
// all daily nets equals the sum of the in-horizon event amounts exactly.
func Project(startBalance decimal.Decimal, today time.Time, horizonDays int, events []CashEvent) Projection {
	start := dateOnly(today)
	end := start.AddDate(0, 0, horizonDays)

	byDay := make(map[string][]CashEvent)
	for _, ev := range events {
		d := dateOnly(ev.Date)
		if d.Before(start) || !d.Before(end) {
			continue
		}
		key := d.Format("2006-01-02")
		byDay[key] = append(byDay[key], ev)
	}

	proj := Projection{StartBalance: startBalance}
	balance := startBalance
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		snap := DaySnapshot{
			Date:    d,
			Income:  decimal.Zero,
			Expense: decimal.Zero,
			Events:  byDay[d.Format("2006-01-02")],
		}
		for _, ev := range snap.Events {
			if ev.Amount.IsNegative() {
				snap.Expense = snap.Expense.Add(ev.Amount)
			} else {
				snap.Income = snap.Income.Add(ev.Amount)
			}
		}
		snap.Net = snap.Income.Add(snap.Expense)
		balance = balance.Add(snap.Net)
		snap.Balance = balance

		proj.TotalIncome = proj.TotalIncome.Add(snap.Income)
		proj.TotalExpense = proj.TotalExpense.Add(snap.Expense)
		proj.Days = append(proj.Days, snap)
	}
	proj.EndBalance = balance
	return proj
}

// monthlyOccurrences expands a day-of-month anchor to its next occurrences
// on or after the reference date. Months lacking the day (the 31st in
// February) are skipped rather than clamped.
func monthlyOccurrences(from time.Time, day int) []time.Time {
	var out []time.Time
	for m := 0; len(out) < maxOccurrences && m < maxOccurrences*2+1; m++ {
		candidate := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, m, day-1)
		if candidate.Day() != day {
			continue
		}
		if candidate.Before(from) {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
