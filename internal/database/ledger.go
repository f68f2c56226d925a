package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"praktijkkas/internal/models"
)

const ledgerColumns = `id, kind, category, amount, description, date(date),
	counterpart_name, invoice_number, notes, reconciled, created_at`

// CreateLedgerEntry inserts a new entry, assigning an id when absent.
func (db *DB) CreateLedgerEntry(e models.LedgerEntry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := db.Exec(`
		INSERT INTO ledger_entries (id, kind, category, amount, description, date,
			counterpart_name, invoice_number, notes, reconciled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Kind, e.Category, storeAmount(e.Amount), e.Description, storeDate(e.Date),
		e.CounterpartName, e.InvoiceNumber, e.Notes, e.Reconciled)
	if err != nil {
		return "", fmt.Errorf("insert ledger entry: %w", err)
	}
	return e.ID, nil
}

func (db *DB) GetLedgerEntry(id string) (models.LedgerEntry, error) {
	row := db.QueryRow(`SELECT `+ledgerColumns+` FROM ledger_entries WHERE id = ?`, id)
	e, err := scanLedgerEntry(row)
	if err == sql.ErrNoRows {
		return e, ErrNotFound
	}
	if err != nil {
		return e, fmt.Errorf("query ledger entry: %w", err)
	}
	return e, nil
}

// ListLedgerEntries returns entries matching the filter, newest first.
func (db *DB) ListLedgerEntries(f models.EntryFilter) ([]models.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE 1=1`
	var args []interface{}

	if f.Kind != "" {
		query += " AND kind = ?"
		args = append(args, f.Kind)
	}
	if f.Category != "" {
		query += " AND category = ?"
		args = append(args, f.Category)
	}
	if !f.StartDate.IsZero() {
		query += " AND date >= ?"
		args = append(args, storeDate(f.StartDate))
	}
	if !f.EndDate.IsZero() {
		query += " AND date <= ?"
		args = append(args, storeDate(f.EndDate))
	}
	if f.Reconciled != nil {
		query += " AND reconciled = ?"
		args = append(args, *f.Reconciled)
	}
	if f.AmountMin != nil {
		query += " AND CAST(amount AS REAL) >= ?"
		args = append(args, f.AmountMin.InexactFloat64())
	}
	if f.AmountMax != nil {
		query += " AND CAST(amount AS REAL) <= ?"
		args = append(args, f.AmountMax.InexactFloat64())
	}

	query += " ORDER BY date(date) DESC, CAST(amount AS REAL) ASC, id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (db *DB) UpdateLedgerEntry(e models.LedgerEntry) error {
	res, err := db.Exec(`
		UPDATE ledger_entries
		SET kind = ?, category = ?, amount = ?, description = ?, date = ?,
			counterpart_name = ?, invoice_number = ?, notes = ?
		WHERE id = ?
	`, e.Kind, e.Category, storeAmount(e.Amount), e.Description, storeDate(e.Date),
		e.CounterpartName, e.InvoiceNumber, e.Notes, e.ID)
	if err != nil {
		return fmt.Errorf("update ledger entry: %w", err)
	}
	return requireAffected(res)
}

func (db *DB) DeleteLedgerEntry(id string) error {
	res, err := db.Exec(`DELETE FROM ledger_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}
	return requireAffected(res)
}

// MarkEntryReconciled flips the reconciled flag exactly once. The guard in
// the WHERE clause makes a second confirm a rejection, not a reapply.
func (db *DB) MarkEntryReconciled(id string) error {
	res, err := db.Exec(`UPDATE ledger_entries SET reconciled = 1 WHERE id = ? AND reconciled = 0`, id)
	if err != nil {
		return fmt.Errorf("mark entry reconciled: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark entry reconciled: %w", err)
	}
	if n == 0 {
		if _, err := db.GetLedgerEntry(id); err != nil {
			return err
		}
		return ErrAlreadyReconciled
	}
	return nil
}

// UnreconcileEntry reverts a reconciliation.
func (db *DB) UnreconcileEntry(id string) error {
	res, err := db.Exec(`UPDATE ledger_entries SET reconciled = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("unreconcile entry: %w", err)
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLedgerEntry(row rowScanner) (models.LedgerEntry, error) {
	var e models.LedgerEntry
	var amount, date string
	if err := row.Scan(&e.ID, &e.Kind, &e.Category, &amount, &e.Description, &date,
		&e.CounterpartName, &e.InvoiceNumber, &e.Notes, &e.Reconciled, &e.CreatedAt); err != nil {
		return e, err
	}
	var err error
	if e.Amount, err = scanAmount(amount); err != nil {
		return e, fmt.Errorf("amount %q: %w", amount, err)
	}
	if e.Date, err = scanDate(date); err != nil {
		return e, fmt.Errorf("date %q: %w", date, err)
	}
	return e, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
