// Package reconcile orchestrates match suggestions and confirmations
// between bank movements, ledger entries, creditors and corrections. The
// scoring itself lives in the matching package; this layer fetches the
// candidate pools and applies the confirmed links to the store.
package reconcile

import (
	"errors"
	"fmt"

	"praktijkkas/internal/database"
	"praktijkkas/internal/matching"
	"praktijkkas/internal/models"
)

// ErrScopeMismatch is returned when a correction is confirmed against an
// entry outside its category scope.
var ErrScopeMismatch = errors.New("correction and entry category scope differ")

type Service struct {
	DB *database.DB
}

func NewService(db *database.DB) *Service {
	return &Service{DB: db}
}

// SuggestForMovement scores an unreconciled bank movement against open
// ledger entries and active creditors.
func (s *Service) SuggestForMovement(movementID string) ([]models.Suggestion, error) {
	m, err := s.DB.GetBankMovement(movementID)
	if err != nil {
		return nil, err
	}
	unreconciled := false
	entries, err := s.DB.ListLedgerEntries(models.EntryFilter{Reconciled: &unreconciled})
	if err != nil {
		return nil, err
	}
	creditors, err := s.DB.ListCreditors(true)
	if err != nil {
		return nil, err
	}
	return matching.SuggestForMovement(m, entries, creditors), nil
}

// SuggestForCorrection scores an unmatched correction against income
// entries in its category scope.
func (s *Service) SuggestForCorrection(correctionID string) ([]models.Suggestion, error) {
	c, err := s.DB.GetCorrection(correctionID)
	if err != nil {
		return nil, err
	}
	entries, err := s.DB.ListLedgerEntries(models.EntryFilter{
		Kind:     models.EntryIncome,
		Category: c.CategoryScope(),
	})
	if err != nil {
		return nil, err
	}
	return matching.SuggestForCorrection(c, entries), nil
}

// ConfirmEntryMatch links a bank movement to a ledger entry. Both sides
// flip their flag at most once; a second confirm for either side fails
// with ErrAlreadyReconciled and leaves the store unchanged.
func (s *Service) ConfirmEntryMatch(movementID, entryID string) error {
	if err := s.DB.MarkEntryReconciled(entryID); err != nil {
		return fmt.Errorf("confirm entry %s: %w", entryID, err)
	}
	if err := s.DB.MarkMovementReconciled(movementID, &entryID); err != nil {
		// Revert the entry so the pair stays consistent.
		_ = s.DB.UnreconcileEntry(entryID)
		return fmt.Errorf("confirm movement %s: %w", movementID, err)
	}
	return nil
}

// ConfirmCreditorMatch reconciles a bank movement against a recurring
// creditor. There is no existing ledger entry to link, so one is created
// on the spot, already reconciled, mirroring the movement.
func (s *Service) ConfirmCreditorMatch(movementID, creditorID string) (string, error) {
	m, err := s.DB.GetBankMovement(movementID)
	if err != nil {
		return "", err
	}
	if m.Reconciled {
		return "", database.ErrAlreadyReconciled
	}
	c, err := s.DB.GetCreditor(creditorID)
	if err != nil {
		return "", err
	}

	entryID, err := s.DB.CreateLedgerEntry(models.LedgerEntry{
		Kind:            models.EntryExpense,
		Category:        "overig",
		Amount:          m.Amount.Abs(),
		Description:     "Maandelijkse betaling " + c.Name,
		Date:            m.Date,
		CounterpartName: c.Name,
		Reconciled:      true,
	})
	if err != nil {
		return "", fmt.Errorf("create creditor entry: %w", err)
	}
	if err := s.DB.MarkMovementReconciled(movementID, &entryID); err != nil {
		_ = s.DB.DeleteLedgerEntry(entryID)
		return "", fmt.Errorf("confirm movement %s: %w", movementID, err)
	}
	return entryID, nil
}

// ConfirmCorrectionMatch links a correction to the income entry it
// adjusts. The entry must be income within the correction's category
// scope; the entry amount itself is never rewritten, net amounts are
// computed at read time.
func (s *Service) ConfirmCorrectionMatch(correctionID, entryID string) error {
	c, err := s.DB.GetCorrection(correctionID)
	if err != nil {
		return err
	}
	e, err := s.DB.GetLedgerEntry(entryID)
	if err != nil {
		return err
	}
	if e.Kind != models.EntryIncome || e.Category != c.CategoryScope() {
		return fmt.Errorf("entry %s (%s/%s): %w", entryID, e.Kind, e.Category, ErrScopeMismatch)
	}
	return s.DB.MarkCorrectionMatched(correctionID, entryID)
}
