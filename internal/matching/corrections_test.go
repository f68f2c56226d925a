package matching

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"praktijkkas/internal/models"
)

func TestSuggestForCorrectionScopeIsHard(t *testing.T) {
	t.Parallel()

	// An insurer credit declaration never matches a private entry, even
	// with identical amount, name and invoice number.
	c := models.Correction{
		ID:              "c1",
		Kind:            models.CorrectionCreditDeclarationInsurer,
		Amount:          dec("-150.00"),
		Date:            day(2025, 2, 20),
		CounterpartName: "CZ Groep",
		OriginalInvoice: "TEST001",
	}
	entries := []models.LedgerEntry{
		{ID: "e-insurer", Kind: models.EntryIncome, Category: "zorgverzekeraar", Amount: dec("150.00"), Date: day(2025, 2, 10), CounterpartName: "CZ Groep", InvoiceNumber: "TEST001"},
		{ID: "e-private", Kind: models.EntryIncome, Category: "particulier", Amount: dec("150.00"), Date: day(2025, 2, 10), CounterpartName: "CZ Groep", InvoiceNumber: "TEST001"},
	}

	got := SuggestForCorrection(c, entries)
	require.Len(t, got, 1)
	require.Equal(t, "e-insurer", got[0].TargetID)
}

func TestSuggestForCorrectionPrivateScope(t *testing.T) {
	t.Parallel()

	c := models.Correction{
		ID:              "c1",
		Kind:            models.CorrectionCreditNotePrivate,
		Amount:          dec("-85.00"),
		Date:            day(2025, 2, 20),
		CounterpartName: "Knauff, Ienke",
	}
	entries := []models.LedgerEntry{
		{ID: "e1", Kind: models.EntryIncome, Category: "particulier", Amount: dec("85.00"), Date: day(2025, 2, 15), CounterpartName: "Knauff, Ienke"},
		{ID: "e2", Kind: models.EntryIncome, Category: "zorgverzekeraar", Amount: dec("85.00"), Date: day(2025, 2, 15), CounterpartName: "CZ"},
	}

	got := SuggestForCorrection(c, entries)
	require.Len(t, got, 1)
	require.Equal(t, "e1", got[0].TargetID)
	// amount (50) + exact name (40) + date proximity caps at 100.
	require.Equal(t, 100.0, got[0].Score)
}

func TestSuggestForCorrectionInvoiceBonus(t *testing.T) {
	t.Parallel()

	c := models.Correction{
		ID:              "c1",
		Kind:            models.CorrectionInvoiceInsurer,
		Amount:          dec("300.00"),
		Date:            day(2025, 3, 1),
		OriginalInvoice: "d-2025-044",
	}
	entries := []models.LedgerEntry{
		{ID: "e1", Kind: models.EntryIncome, Category: "zorgverzekeraar", Amount: dec("310.00"), Date: day(2025, 1, 10), InvoiceNumber: "D-2025-044"},
		{ID: "e2", Kind: models.EntryIncome, Category: "zorgverzekeraar", Amount: dec("310.00"), Date: day(2025, 1, 10), InvoiceNumber: "D-2025-099"},
	}

	got := SuggestForCorrection(c, entries)
	require.Len(t, got, 2)
	// The case-insensitive invoice match must rank first.
	require.Equal(t, "e1", got[0].TargetID)
	require.Greater(t, got[0].Score, got[1].Score)
}

func TestSuggestForCorrectionDiscardsWeak(t *testing.T) {
	t.Parallel()

	// In the amount band but over a year old and without any name or
	// invoice signal: the score stays below the discard threshold.
	c := models.Correction{
		ID:     "c1",
		Kind:   models.CorrectionCreditNotePrivate,
		Amount: dec("-500.00"),
		Date:   day(2025, 6, 1),
	}
	entries := []models.LedgerEntry{
		{ID: "e1", Kind: models.EntryIncome, Category: "particulier", Amount: dec("900.00"), Date: day(2023, 1, 1), CounterpartName: "Pietersen"},
	}
	require.Empty(t, SuggestForCorrection(c, entries))
}

func TestSuggestForCorrectionPoolIsRecencyBiased(t *testing.T) {
	t.Parallel()

	c := models.Correction{
		ID:              "c1",
		Kind:            models.CorrectionCreditNotePrivate,
		Amount:          dec("-100.00"),
		Date:            day(2025, 2, 20),
		CounterpartName: "Jansen",
	}
	var entries []models.LedgerEntry
	for i := 0; i < 60; i++ {
		entries = append(entries, models.LedgerEntry{
			ID:              "e" + strconv.Itoa(i),
			Kind:            models.EntryIncome,
			Category:        "particulier",
			Amount:          dec("100.00"),
			Date:            day(2025, 2, 1).AddDate(0, 0, -i),
			CounterpartName: "Jansen",
		})
	}

	got := SuggestForCorrection(c, entries)
	require.Len(t, got, correctionResultCap)
	// The newest candidates survive the pool cap; e59 is the oldest and
	// must not appear.
	for _, s := range got {
		require.NotEqual(t, "e59", s.TargetID)
	}
	require.Equal(t, "e0", got[0].TargetID)
}

func TestDateProximityScoreDecaysMonotonically(t *testing.T) {
	t.Parallel()

	base := day(2025, 6, 1)
	prev := 21.0
	for d := 0; d <= 400; d += 5 {
		got := dateProximityScore(base, base.AddDate(0, 0, -d))
		require.LessOrEqual(t, got, prev, "distance %d days", d)
		prev = got
	}
	require.Equal(t, 20.0, dateProximityScore(base, base))
	require.Equal(t, 0.0, dateProximityScore(base, base.AddDate(0, 0, -400)))
}

func TestNameScoreTiers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		correction string
		entry      string
		want       float64
	}{
		{"CZ Groep", "cz groep", 40},
		{"CZ Groep Zorgverzekeraar", "CZ Groep", 30},
		{"Zilveren Kruis Achmea", "Achmea Zilveren Kruis", 25},
		{"Jansen", "Jansen, P.", 30}, // containment
		{"Totaal Anders", "Iets Nieuws", 0},
	}
	for _, tc := range cases {
		got, _ := nameScore(tc.correction, tc.entry)
		require.Equal(t, tc.want, got, "%q vs %q", tc.correction, tc.entry)
	}
}

func TestTokenizeDropsStopwords(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"zilveren", "kruis"}, tokenize("De Zilveren Kruis BV"))
	require.True(t, tokensEqual("achmea", "achme"))
	require.False(t, tokensEqual("cz", "vgz"))
}

func TestScoreNeverExceedsHundred(t *testing.T) {
	t.Parallel()

	c := models.Correction{
		Kind:            models.CorrectionCreditDeclarationInsurer,
		Amount:          dec("-200.00"),
		Date:            day(2025, 2, 20),
		CounterpartName: "CZ Groep",
		OriginalInvoice: "D-1",
	}
	e := models.LedgerEntry{
		Kind: models.EntryIncome, Category: "zorgverzekeraar",
		Amount: dec("200.00"), Date: day(2025, 2, 20),
		CounterpartName: "CZ Groep", InvoiceNumber: "D-1",
	}
	score, _ := scoreCorrectionCandidate(c, e, c.Amount.Abs())
	require.Equal(t, 100.0, score)
}
