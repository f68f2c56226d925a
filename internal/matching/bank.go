package matching

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"praktijkkas/internal/models"
)

// Scoring constants for bank movement suggestions.
var (
	exactScore        = 95.0
	nearScore         = 75.0
	creditorHighScore = 95.0
	creditorMidScore  = 85.0
	creditorLowScore  = 70.0

	dateWindowDays = 7

	oneEuro = decimal.NewFromInt(1)
	twoEuro = decimal.NewFromInt(2)
	pctOne  = decimal.NewFromFloat(0.01)
	pctTwo  = decimal.NewFromFloat(0.02)
	pctTen  = decimal.NewFromFloat(0.10)

	maxBankSuggestions = 8
)

// signedEntryAmount converts a ledger entry's positive magnitude to the
// bank-side sign: income arrives as a credit, everything else leaves as a
// debit.
func signedEntryAmount(e models.LedgerEntry) decimal.Decimal {
	if e.Kind == models.EntryIncome {
		return e.Amount
	}
	return e.Amount.Neg()
}

func withinDays(a, b time.Time, days int) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(days)*24*time.Hour
}

// SuggestForMovement ranks match candidates for one bank movement against
// unreconciled ledger entries and active creditors. The movement's sign is
// respected throughout: creditor candidates only exist for outgoing
// movements, and an income entry never matches a debit.
func SuggestForMovement(m models.BankMovement, entries []models.LedgerEntry, creditors []models.Creditor) []models.Suggestion {
	var suggestions []models.Suggestion

	// Pass 1: exact signed amount inside the date window.
	exact := false
	for _, e := range entries {
		if e.Reconciled || !withinDays(e.Date, m.Date, dateWindowDays) {
			continue
		}
		if signedEntryAmount(e).Equal(m.Amount) {
			exact = true
			suggestions = append(suggestions, entrySuggestion(e, exactScore, "exact amount+date"))
		}
	}

	// Pass 2: only when nothing exact hit, widen to a strict tolerance:
	// 1% of the magnitude, capped at one euro.
	if !exact {
		tol := m.Amount.Abs().Mul(pctOne)
		if tol.GreaterThan(oneEuro) {
			tol = oneEuro
		}
		for _, e := range entries {
			if e.Reconciled || !withinDays(e.Date, m.Date, dateWindowDays) {
				continue
			}
			signed := signedEntryAmount(e)
			if signed.Sign() != m.Amount.Sign() {
				continue
			}
			if signed.Sub(m.Amount).Abs().LessThanOrEqual(tol) {
				suggestions = append(suggestions, entrySuggestion(e, nearScore, "near-exact amount"))
			}
		}
	}

	// Creditors are candidates for outgoing movements only.
	if m.Amount.IsNegative() {
		magnitude := m.Amount.Abs()
		for _, c := range creditors {
			if !c.Active {
				continue
			}
			if s, ok := creditorSuggestion(m, c, magnitude); ok {
				suggestions = append(suggestions, s)
			}
		}
	}

	sortSuggestions(suggestions)
	if len(suggestions) > maxBankSuggestions {
		suggestions = suggestions[:maxBankSuggestions]
	}
	return suggestions
}

func creditorSuggestion(m models.BankMovement, c models.Creditor, magnitude decimal.Decimal) (models.Suggestion, bool) {
	diff := magnitude.Sub(c.Amount).Abs()

	strictTol := c.Amount.Mul(pctTwo)
	if strictTol.GreaterThan(twoEuro) {
		strictTol = twoEuro
	}
	amountClose := diff.LessThanOrEqual(strictTol)
	amountNear := diff.LessThanOrEqual(c.Amount.Mul(pctTen))
	nameHit := namesOverlap(c.Name, m.Description) || namesOverlap(c.Name, m.CounterpartName)

	var score float64
	var reason string
	switch {
	case amountClose && nameHit:
		score, reason = creditorHighScore, "amount and name match creditor"
	case amountClose:
		score, reason = creditorMidScore, "amount matches creditor"
	case nameHit && amountNear:
		score, reason = creditorLowScore, "name matches creditor, amount within 10%"
	default:
		return models.Suggestion{}, false
	}

	return models.Suggestion{
		MatchType:   models.MatchCreditor,
		TargetID:    c.ID,
		Score:       score,
		Reason:      reason,
		Name:        c.Name,
		Description: "vaste last, dag " + strconv.Itoa(c.DayOfMonth),
		Amount:      c.Amount,
		Date:        nextOccurrence(m.Date, c.DayOfMonth),
	}, true
}

func entrySuggestion(e models.LedgerEntry, score float64, reason string) models.Suggestion {
	return models.Suggestion{
		MatchType:   models.MatchLedgerEntry,
		TargetID:    e.ID,
		Score:       score,
		Reason:      reason,
		Name:        e.CounterpartName,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date,
	}
}

// sortSuggestions orders by descending score; ties break by recency of
// date, then by smaller amount.
func sortSuggestions(s []models.Suggestion) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Score != s[j].Score {
			return s[i].Score > s[j].Score
		}
		if !s[i].Date.Equal(s[j].Date) {
			return s[i].Date.After(s[j].Date)
		}
		return s[i].Amount.LessThan(s[j].Amount)
	})
}

// nextOccurrence finds the first day-of-month occurrence on or after the
// reference date, skipping months where the day does not exist.
func nextOccurrence(from time.Time, day int) time.Time {
	ref := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	for m := 0; m < 12; m++ {
		candidate := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, m, day-1)
		if candidate.Day() != day {
			continue // day rolled over, e.g. 31st in February
		}
		if !candidate.Before(ref) {
			return candidate
		}
	}
	return ref
}
