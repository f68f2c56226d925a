package matching

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"praktijkkas/internal/models"
)

// Correction suggestion tuning. The candidate pool is recency-biased and
// capped: open entries far in the past are deliberately not exhaustively
// searched.
var (
	correctionPoolCap   = 50
	correctionResultCap = 20
	correctionWiden     = decimal.NewFromInt(1000)
	correctionMinScore  = 20.0
)

// SuggestForCorrection ranks ledger entries that a correction document may
// adjust. The correction's kind restricts the category scope: a private
// credit note never matches an insurer entry, whatever the amount.
func SuggestForCorrection(c models.Correction, entries []models.LedgerEntry) []models.Suggestion {
	magnitude := c.Amount.Abs()
	lower := magnitude.Mul(decimal.NewFromFloat(0.9))
	// Widened upward to admit originals that were already partially
	// corrected and so exceed the plain tolerance band.
	upper := magnitude.Mul(decimal.NewFromFloat(1.1)).Add(correctionWiden)
	scope := c.CategoryScope()

	var pool []models.LedgerEntry
	for _, e := range entries {
		if e.Kind != models.EntryIncome || e.Category != scope {
			continue
		}
		if e.Amount.LessThan(lower) || e.Amount.GreaterThan(upper) {
			continue
		}
		pool = append(pool, e)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if !pool[i].Date.Equal(pool[j].Date) {
			return pool[i].Date.After(pool[j].Date)
		}
		return pool[i].Amount.LessThan(pool[j].Amount)
	})
	if len(pool) > correctionPoolCap {
		pool = pool[:correctionPoolCap]
	}

	var suggestions []models.Suggestion
	for _, e := range pool {
		score, reasons := scoreCorrectionCandidate(c, e, magnitude)
		if score <= correctionMinScore {
			continue
		}
		suggestions = append(suggestions, models.Suggestion{
			MatchType:   models.MatchLedgerEntry,
			TargetID:    e.ID,
			Score:       score,
			Reason:      strings.Join(reasons, ", "),
			Name:        e.CounterpartName,
			Description: e.Description,
			Amount:      e.Amount,
			Date:        e.Date,
		})
	}

	sortSuggestions(suggestions)
	if len(suggestions) > correctionResultCap {
		suggestions = suggestions[:correctionResultCap]
	}
	return suggestions
}

// scoreCorrectionCandidate adds up the score components: amount band, name
// similarity, date proximity and an exact invoice-number bonus. Additive
// bonuses only, so a better amount can never demote a candidate.
func scoreCorrectionCandidate(c models.Correction, e models.LedgerEntry, magnitude decimal.Decimal) (float64, []string) {
	var score float64
	var reasons []string

	if e.Amount.Sub(magnitude).Abs().LessThanOrEqual(magnitude.Mul(decimal.NewFromFloat(0.1))) {
		score += 50
		reasons = append(reasons, "amount within 10%")
	}

	if ns, nr := nameScore(c.CounterpartName, e.CounterpartName); ns > 0 {
		score += ns
		reasons = append(reasons, nr)
	}

	if ds := dateProximityScore(c.Date, e.Date); ds > 0 {
		score += ds
		reasons = append(reasons, "date proximity")
	}

	if c.OriginalInvoice != "" && strings.EqualFold(c.OriginalInvoice, e.InvoiceNumber) {
		score += 40
		reasons = append(reasons, "invoice number match")
	}

	if score > 100 {
		score = 100
	}
	return score, reasons
}

func nameScore(correctionName, entryName string) (float64, string) {
	cn := strings.ToLower(strings.TrimSpace(correctionName))
	en := strings.ToLower(strings.TrimSpace(entryName))
	if cn == "" || en == "" {
		return 0, ""
	}
	if cn == en {
		return 40, "exact name match"
	}
	if strings.Contains(cn, en) || strings.Contains(en, cn) {
		return 30, "name containment"
	}

	ct := tokenize(correctionName)
	et := tokenize(entryName)
	overlap := tokenOverlap(ct, et)
	if overlap >= 2 {
		return 25, "name token overlap"
	}
	if overlap >= 1 && len(ct) <= 2 {
		return 15, "partial name overlap"
	}
	return 0, ""
}

// dateProximityScore decays linearly: up to 20 points inside 90 days, a
// smaller bonus up to 10 points inside a year.
func dateProximityScore(a, b time.Time) float64 {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	days := float64(diff) / float64(24*time.Hour)
	var short, long float64
	if days <= 90 {
		short = 20 * (1 - days/90)
	}
	if days <= 365 {
		long = 10 * (1 - days/365)
	}
	if short > long {
		return short
	}
	return long
}
