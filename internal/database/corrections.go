package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"praktijkkas/internal/models"
)

const correctionColumns = `id, kind, amount, date(date), counterpart_name,
	original_invoice, matched, linked_entry_id, created_at`

// CreateCorrection inserts an insurer or private correction, assigning an
// id when absent.
func (db *DB) CreateCorrection(c models.Correction) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := db.Exec(`
		INSERT INTO corrections (id, kind, amount, date, counterpart_name,
			original_invoice, matched, linked_entry_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Kind, storeAmount(c.Amount), storeDate(c.Date), c.CounterpartName,
		c.OriginalInvoice, c.Matched, c.LinkedEntryID)
	if err != nil {
		return "", fmt.Errorf("insert correction: %w", err)
	}
	return c.ID, nil
}

func (db *DB) GetCorrection(id string) (models.Correction, error) {
	row := db.QueryRow(`SELECT `+correctionColumns+` FROM corrections WHERE id = ?`, id)
	c, err := scanCorrection(row)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	if err != nil {
		return c, fmt.Errorf("query correction: %w", err)
	}
	return c, nil
}

// ListCorrections returns corrections newest first, optionally only
// unmatched ones.
func (db *DB) ListCorrections(unmatchedOnly bool) ([]models.Correction, error) {
	query := `SELECT ` + correctionColumns + ` FROM corrections`
	if unmatchedOnly {
		query += ` WHERE matched = 0`
	}
	query += ` ORDER BY date(date) DESC, id`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query corrections: %w", err)
	}
	defer rows.Close()

	var corrections []models.Correction
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan correction: %w", err)
		}
		corrections = append(corrections, c)
	}
	return corrections, rows.Err()
}

// ListMatchedCorrections returns every matched correction, for net-amount
// computation over linked entries.
func (db *DB) ListMatchedCorrections() ([]models.Correction, error) {
	rows, err := db.Query(`SELECT ` + correctionColumns + ` FROM corrections WHERE matched = 1`)
	if err != nil {
		return nil, fmt.Errorf("query matched corrections: %w", err)
	}
	defer rows.Close()

	var corrections []models.Correction
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan correction: %w", err)
		}
		corrections = append(corrections, c)
	}
	return corrections, rows.Err()
}

func (db *DB) DeleteCorrection(id string) error {
	res, err := db.Exec(`DELETE FROM corrections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete correction: %w", err)
	}
	return requireAffected(res)
}

// MarkCorrectionMatched links a correction to its ledger entry and flips
// the matched flag exactly once.
func (db *DB) MarkCorrectionMatched(id, entryID string) error {
	res, err := db.Exec(`
		UPDATE corrections
		SET matched = 1, linked_entry_id = ?
		WHERE id = ? AND matched = 0
	`, entryID, id)
	if err != nil {
		return fmt.Errorf("mark correction matched: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark correction matched: %w", err)
	}
	if n == 0 {
		if _, err := db.GetCorrection(id); err != nil {
			return err
		}
		return ErrAlreadyMatched
	}
	return nil
}

// UnmatchCorrection reverts a match, clearing the link.
func (db *DB) UnmatchCorrection(id string) error {
	res, err := db.Exec(`
		UPDATE corrections SET matched = 0, linked_entry_id = NULL WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("unmatch correction: %w", err)
	}
	return requireAffected(res)
}

func scanCorrection(row rowScanner) (models.Correction, error) {
	var c models.Correction
	var amount, date string
	var linked sql.NullString
	if err := row.Scan(&c.ID, &c.Kind, &amount, &date, &c.CounterpartName,
		&c.OriginalInvoice, &c.Matched, &linked, &c.CreatedAt); err != nil {
		return c, err
	}
	if linked.Valid {
		c.LinkedEntryID = &linked.String
	}
	var err error
	if c.Amount, err = scanAmount(amount); err != nil {
		return c, fmt.Errorf("amount %q: %w", amount, err)
	}
	if c.Date, err = scanDate(date); err != nil {
		return c, fmt.Errorf("date %q: %w", date, err)
	}
	return c, nil
}
