package forecast

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"praktijkkas/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func strptr(s string) *string { return &s }

func TestApplyCorrections(t *testing.T) {
	t.Parallel()

	e := models.LedgerEntry{ID: "e1", Amount: dec("500.00")}
	corrections := []models.Correction{
		{ID: "c1", Amount: dec("-150.00"), Matched: true, LinkedEntryID: strptr("e1")},
		{ID: "c2", Amount: dec("25.00"), Matched: true, LinkedEntryID: strptr("e1")},
		// Unmatched and foreign-linked corrections never count.
		{ID: "c3", Amount: dec("-100.00"), Matched: false, LinkedEntryID: strptr("e1")},
		{ID: "c4", Amount: dec("-100.00"), Matched: true, LinkedEntryID: strptr("e2")},
	}
	require.Equal(t, "375", ApplyCorrections(e, corrections).String())
}

func TestInsurerTermDays(t *testing.T) {
	t.Parallel()

	terms := []models.InsurerTerm{
		{Name: "CZ Groep", TermDays: 45},
		{Name: "Zilveren Kruis", TermDays: 21},
	}
	require.Equal(t, 45, InsurerTermDays("cz groep", terms))           // exact, case-folded
	require.Equal(t, 45, InsurerTermDays("CZ", terms))                 // containment
	require.Equal(t, 21, InsurerTermDays("Zilveren Kruiss", terms))    // one edit away
	require.Equal(t, DefaultInsurerTermDays, InsurerTermDays("Menzis", terms))
	require.Equal(t, DefaultInsurerTermDays, InsurerTermDays("", terms))
}

func TestBuildEventsSettlement(t *testing.T) {
	t.Parallel()

	today := day(2025, 3, 1)
	in := BuildInput{
		Today: today,
		Terms: []models.InsurerTerm{{Name: "CZ Groep", TermDays: 45}},
		OpenEntries: []models.LedgerEntry{
			{ID: "e1", Kind: models.EntryIncome, Category: "zorgverzekeraar", Amount: dec("1000.00"), Date: day(2025, 2, 20), CounterpartName: "CZ Groep"},
			{ID: "e2", Kind: models.EntryIncome, Category: "particulier", Amount: dec("85.00"), Date: day(2025, 2, 27), CounterpartName: "Jansen"},
			// Already overdue: expected today, never in the past.
			{ID: "e3", Kind: models.EntryIncome, Category: "particulier", Amount: dec("60.00"), Date: day(2024, 11, 1), CounterpartName: "Pietersen"},
			// Reconciled entries are settled money, not a forecast event.
			{ID: "e4", Kind: models.EntryIncome, Category: "particulier", Amount: dec("40.00"), Date: day(2025, 2, 27), Reconciled: true},
		},
	}

	events := BuildEvents(in)
	require.Len(t, events, 3)

	byLabel := map[string]CashEvent{}
	for _, ev := range events {
		byLabel[ev.Label] = ev
	}
	require.Equal(t, day(2025, 4, 6), byLabel["CZ Groep"].Date) // 20 Feb + 45 days
	require.Equal(t, SourceDeclaration, byLabel["CZ Groep"].Source)
	require.Equal(t, day(2025, 3, 6), byLabel["Jansen"].Date) // 27 Feb + 7 days
	require.Equal(t, SourceInvoice, byLabel["Jansen"].Source)
	require.Equal(t, today, byLabel["Pietersen"].Date)
}

func TestBuildEventsDropsFullyCorrected(t *testing.T) {
	t.Parallel()

	in := BuildInput{
		Today: day(2025, 3, 1),
		OpenEntries: []models.LedgerEntry{
			{ID: "e1", Kind: models.EntryIncome, Category: "particulier", Amount: dec("85.00"), Date: day(2025, 2, 27)},
		},
		Corrections: []models.Correction{
			{ID: "c1", Amount: dec("-85.00"), Matched: true, LinkedEntryID: strptr("e1")},
		},
	}
	require.Empty(t, BuildEvents(in))
}

func TestBuildEventsMonthlySkipsShortMonths(t *testing.T) {
	t.Parallel()

	in := BuildInput{
		Today: day(2025, 1, 15),
		Creditors: []models.Creditor{
			{ID: "c1", Name: "Verhuur", Amount: dec("1250.00"), DayOfMonth: 31, Active: true},
		},
	}
	events := BuildEvents(in)
	require.Len(t, events, maxOccurrences)
	// February has no 31st and is skipped, not clamped.
	require.Equal(t, day(2025, 1, 31), events[0].Date)
	require.Equal(t, day(2025, 3, 31), events[1].Date)
	require.Equal(t, day(2025, 5, 31), events[2].Date)
	for _, ev := range events {
		require.True(t, ev.Amount.IsNegative())
		require.Equal(t, SourceCreditor, ev.Source)
	}
}

func TestBuildEventsCosts(t *testing.T) {
	t.Parallel()

	floor := dec("25")
	in := BuildInput{
		Today:            day(2025, 3, 1),
		MaterialityFloor: floor,
		Costs: []models.CostProfile{
			{Category: "salaris", Rhythm: models.CostFixed, MonthlyAverage: dec("2200.00"), LastDay: 25},
			{Category: "materiaal", Rhythm: models.CostVariable, TrailingTotal: dec("450.00"), LastDay: 10},
			// Variable spend below the floor is noise, not forecast.
			{Category: "overig", Rhythm: models.CostVariable, TrailingTotal: dec("60.00"), LastDay: 5},
			// Exactly at the floor does not exceed it.
			{Category: "abonnementen", Rhythm: models.CostVariable, TrailingTotal: dec("75.00"), LastDay: 5},
			// A last day past 28 is clamped so every month has an occurrence.
			{Category: "huur", Rhythm: models.CostFixed, MonthlyAverage: dec("1250.00"), LastDay: 31},
		},
	}

	events := BuildEvents(in)
	counts := map[string]int{}
	for _, ev := range events {
		counts[ev.Label]++
		require.True(t, ev.Amount.IsNegative())
	}
	require.Equal(t, maxOccurrences, counts["salaris"])
	require.Equal(t, maxOccurrences, counts["materiaal"])
	require.Equal(t, maxOccurrences, counts["huur"])
	require.Zero(t, counts["overig"])
	require.Zero(t, counts["abonnementen"]) // 75 / 3 = 25, the floor itself

	for _, ev := range events {
		if ev.Label == "materiaal" {
			require.Equal(t, "150", ev.Amount.Neg().String()) // 450 / 3 months
			require.Equal(t, SourceVariableCost, ev.Source)
		}
		if ev.Label == "huur" {
			require.Equal(t, 28, ev.Date.Day())
		}
	}
}

func TestProjectConservation(t *testing.T) {
	t.Parallel()

	today := day(2025, 3, 1)
	events := []CashEvent{
		{Date: day(2025, 3, 3), Amount: dec("1311.03"), Source: SourceDeclaration},
		{Date: day(2025, 3, 3), Amount: dec("-48.50"), Source: SourceCreditor},
		{Date: day(2025, 3, 20), Amount: dec("85.00"), Source: SourceInvoice},
		{Date: day(2025, 4, 1), Amount: dec("-1250.00"), Source: SourceFixedCost},
		// Outside the horizon: must not move any balance.
		{Date: day(2025, 9, 1), Amount: dec("9999.99"), Source: SourceInvoice},
	}

	proj := Project(dec("2500.00"), today, 60, events)
	require.Len(t, proj.Days, 60)

	sum := decimal.Zero
	for _, d := range proj.Days {
		require.True(t, d.Net.Equal(d.Income.Add(d.Expense)))
		sum = sum.Add(d.Net)
	}
	// Exact conservation: start + all nets == end, no cent drift.
	require.True(t, proj.StartBalance.Add(sum).Equal(proj.EndBalance))
	require.Equal(t, "2597.53", proj.EndBalance.String())
	require.Equal(t, "1396.03", proj.TotalIncome.String())
	require.Equal(t, "-1298.5", proj.TotalExpense.String())
}

func TestProjectDayBuckets(t *testing.T) {
	t.Parallel()

	today := day(2025, 3, 1)
	events := []CashEvent{
		{Date: day(2025, 3, 1), Amount: dec("100.00")},
		{Date: day(2025, 3, 1), Amount: dec("-40.00")},
	}
	proj := Project(decimal.Zero, today, 2, events)
	require.Len(t, proj.Days, 2)
	require.Equal(t, "100", proj.Days[0].Income.String())
	require.Equal(t, "-40", proj.Days[0].Expense.String())
	require.Equal(t, "60", proj.Days[0].Balance.String())
	require.Len(t, proj.Days[0].Events, 2)
	require.Empty(t, proj.Days[1].Events)
	require.Equal(t, "60", proj.Days[1].Balance.String())
}
