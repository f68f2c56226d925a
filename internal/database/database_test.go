package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"praktijkkas/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Init())
	t.Cleanup(func() { db.Close() })
	return db
}

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

func TestLedgerEntryRoundTrip(t *testing.T) {
	db := testDB(t)

	id, err := db.CreateLedgerEntry(models.LedgerEntry{
		Kind:            models.EntryIncome,
		Category:        "zorgverzekeraar",
		Amount:          dec("1311.03"),
		Description:     "Declaratie CZ Groep",
		Date:            day(2025, 2, 20),
		CounterpartName: "CZ Groep",
		InvoiceNumber:   "D-1001",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := db.GetLedgerEntry(id)
	require.NoError(t, err)
	require.Equal(t, "1311.03", got.Amount.String())
	require.Equal(t, day(2025, 2, 20), got.Date)
	require.Equal(t, "CZ Groep", got.CounterpartName)
	require.False(t, got.Reconciled)

	got.Amount = dec("1300.00")
	require.NoError(t, db.UpdateLedgerEntry(got))
	got, err = db.GetLedgerEntry(id)
	require.NoError(t, err)
	require.Equal(t, "1300", got.Amount.String())

	require.NoError(t, db.DeleteLedgerEntry(id))
	_, err = db.GetLedgerEntry(id)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, db.DeleteLedgerEntry(id), ErrNotFound)
}

func TestListLedgerEntriesFilter(t *testing.T) {
	db := testDB(t)

	seed := []models.LedgerEntry{
		{Kind: models.EntryIncome, Category: "zorgverzekeraar", Amount: dec("100.00"), Date: day(2025, 2, 1)},
		{Kind: models.EntryIncome, Category: "particulier", Amount: dec("85.00"), Date: day(2025, 2, 10)},
		{Kind: models.EntryExpense, Category: "huur", Amount: dec("1250.00"), Date: day(2025, 2, 1)},
	}
	for _, e := range seed {
		_, err := db.CreateLedgerEntry(e)
		require.NoError(t, err)
	}

	got, err := db.ListLedgerEntries(models.EntryFilter{Kind: models.EntryIncome})
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	require.Equal(t, "particulier", got[0].Category)

	got, err = db.ListLedgerEntries(models.EntryFilter{Category: "huur"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	min := dec("90")
	got, err = db.ListLedgerEntries(models.EntryFilter{Kind: models.EntryIncome, AmountMin: &min})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "100", got[0].Amount.String())

	got, err = db.ListLedgerEntries(models.EntryFilter{StartDate: day(2025, 2, 5)})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestMarkEntryReconciledOnce(t *testing.T) {
	db := testDB(t)

	id, err := db.CreateLedgerEntry(models.LedgerEntry{
		Kind: models.EntryIncome, Category: "particulier", Amount: dec("85.00"), Date: day(2025, 2, 10),
	})
	require.NoError(t, err)

	require.NoError(t, db.MarkEntryReconciled(id))
	require.ErrorIs(t, db.MarkEntryReconciled(id), ErrAlreadyReconciled)
	require.ErrorIs(t, db.MarkEntryReconciled("nope"), ErrNotFound)

	// Unreconciling re-arms the guard.
	require.NoError(t, db.UnreconcileEntry(id))
	require.NoError(t, db.MarkEntryReconciled(id))
	require.ErrorIs(t, db.UnreconcileEntry("nope"), ErrNotFound)
}

func TestBankMovementRoundTrip(t *testing.T) {
	db := testDB(t)

	id, err := db.CreateBankMovement(models.BankMovement{
		Date:            day(2025, 2, 24),
		Amount:          dec("-1250.00"),
		Description:     "huur februari",
		CounterpartName: "Verhuur Praktijkpand BV",
		AccountID:       "NL12BUNQ0001234567",
	})
	require.NoError(t, err)

	got, err := db.GetBankMovement(id)
	require.NoError(t, err)
	require.Equal(t, "-1250", got.Amount.String())
	require.Nil(t, got.MatchedEntryID)

	entryID := "e1"
	require.NoError(t, db.MarkMovementReconciled(id, &entryID))
	require.ErrorIs(t, db.MarkMovementReconciled(id, &entryID), ErrAlreadyReconciled)

	got, err = db.GetBankMovement(id)
	require.NoError(t, err)
	require.True(t, got.Reconciled)
	require.NotNil(t, got.MatchedEntryID)
	require.Equal(t, "e1", *got.MatchedEntryID)

	unmatched, err := db.ListBankMovements(true)
	require.NoError(t, err)
	require.Empty(t, unmatched)

	require.NoError(t, db.UnreconcileMovement(id))
	unmatched, err = db.ListBankMovements(true)
	require.NoError(t, err)
	require.Len(t, unmatched, 1)
	require.Nil(t, unmatched[0].MatchedEntryID)
}

func TestCostProfiles(t *testing.T) {
	db := testDB(t)

	seed := []models.BankMovement{
		{Date: day(2025, 1, 25), Amount: dec("-2200.00"), CostCategory: "salaris", CostRhythm: models.CostFixed},
		{Date: day(2025, 2, 25), Amount: dec("-2200.00"), CostCategory: "salaris", CostRhythm: models.CostFixed},
		{Date: day(2025, 1, 5), Amount: dec("-120.00"), CostCategory: "materiaal", CostRhythm: models.CostVariable},
		{Date: day(2025, 2, 12), Amount: dec("-80.00"), CostCategory: "materiaal", CostRhythm: models.CostVariable},
		// Unclassified and incoming movements never contribute.
		{Date: day(2025, 2, 12), Amount: dec("-50.00")},
		{Date: day(2025, 2, 12), Amount: dec("500.00"), CostCategory: "materiaal", CostRhythm: models.CostVariable},
	}
	for _, m := range seed {
		_, err := db.CreateBankMovement(m)
		require.NoError(t, err)
	}

	profiles, err := db.CostProfiles(day(2024, 12, 1))
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	require.Equal(t, "materiaal", profiles[0].Category)
	require.Equal(t, "200", profiles[0].TrailingTotal.String())
	require.Equal(t, "100", profiles[0].MonthlyAverage.String())
	require.Equal(t, 12, profiles[0].LastDay)

	require.Equal(t, "salaris", profiles[1].Category)
	require.Equal(t, "2200", profiles[1].MonthlyAverage.String())
	require.Equal(t, 25, profiles[1].LastDay)
}

func TestCorrectionMatchedOnce(t *testing.T) {
	db := testDB(t)

	id, err := db.CreateCorrection(models.Correction{
		Kind:            models.CorrectionCreditNotePrivate,
		Amount:          dec("-85.00"),
		Date:            day(2025, 2, 20),
		CounterpartName: "Knauff, Ienke",
	})
	require.NoError(t, err)

	require.NoError(t, db.MarkCorrectionMatched(id, "e1"))
	require.ErrorIs(t, db.MarkCorrectionMatched(id, "e2"), ErrAlreadyMatched)

	got, err := db.GetCorrection(id)
	require.NoError(t, err)
	require.True(t, got.Matched)
	require.Equal(t, "e1", *got.LinkedEntryID)

	matched, err := db.ListMatchedCorrections()
	require.NoError(t, err)
	require.Len(t, matched, 1)

	require.NoError(t, db.UnmatchCorrection(id))
	unmatchedOnly, err := db.ListCorrections(true)
	require.NoError(t, err)
	require.Len(t, unmatchedOnly, 1)
}

func TestReplaceCreditorsAndTerms(t *testing.T) {
	db := testDB(t)

	_, err := db.CreateCreditor(models.Creditor{Name: "Old", Amount: dec("10.00"), DayOfMonth: 1, Active: true})
	require.NoError(t, err)

	require.NoError(t, db.ReplaceCreditors([]models.Creditor{
		{Name: "Verhuur Praktijkpand BV", Amount: dec("1250.00"), DayOfMonth: 1, Active: true},
		{Name: "Energie Direct", Amount: dec("180.50"), DayOfMonth: 15, Active: true},
	}))
	creditors, err := db.ListCreditors(false)
	require.NoError(t, err)
	require.Len(t, creditors, 2)
	require.Equal(t, "Verhuur Praktijkpand BV", creditors[0].Name)

	require.NoError(t, db.ReplaceInsurerTerms([]models.InsurerTerm{
		{Name: "CZ Groep", TermDays: 45},
	}))
	terms, err := db.ListInsurerTerms()
	require.NoError(t, err)
	require.Len(t, terms, 1)
	require.Equal(t, 45, terms[0].TermDays)
}

func TestOtherRevenueRoundTrip(t *testing.T) {
	db := testDB(t)

	id, err := db.CreateOtherRevenue(models.OtherRevenue{
		Label: "Fysiofitness abonnementen", Amount: dec("650.00"), DayOfMonth: 28, Active: true,
	})
	require.NoError(t, err)

	got, err := db.GetOtherRevenue(id)
	require.NoError(t, err)
	require.Equal(t, "650", got.Amount.String())

	got.Active = false
	require.NoError(t, db.UpdateOtherRevenue(got))
	active, err := db.ListOtherRevenue(true)
	require.NoError(t, err)
	require.Empty(t, active)
}
