package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"praktijkkas/internal/models"
)

const creditorColumns = `id, name, amount, day_of_month, active, created_at`

// CreateCreditor inserts a recurring creditor, assigning an id when absent.
func (db *DB) CreateCreditor(c models.Creditor) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := db.Exec(`
		INSERT INTO creditors (id, name, amount, day_of_month, active)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Name, storeAmount(c.Amount), c.DayOfMonth, c.Active)
	if err != nil {
		return "", fmt.Errorf("insert creditor: %w", err)
	}
	return c.ID, nil
}

func (db *DB) GetCreditor(id string) (models.Creditor, error) {
	row := db.QueryRow(`SELECT `+creditorColumns+` FROM creditors WHERE id = ?`, id)
	c, err := scanCreditor(row)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	if err != nil {
		return c, fmt.Errorf("query creditor: %w", err)
	}
	return c, nil
}

// ListCreditors returns creditors ordered by payment day, optionally only
// active ones.
func (db *DB) ListCreditors(activeOnly bool) ([]models.Creditor, error) {
	query := `SELECT ` + creditorColumns + ` FROM creditors`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY day_of_month, name`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query creditors: %w", err)
	}
	defer rows.Close()

	var creditors []models.Creditor
	for rows.Next() {
		c, err := scanCreditor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan creditor: %w", err)
		}
		creditors = append(creditors, c)
	}
	return creditors, rows.Err()
}

func (db *DB) UpdateCreditor(c models.Creditor) error {
	res, err := db.Exec(`
		UPDATE creditors SET name = ?, amount = ?, day_of_month = ?, active = ? WHERE id = ?
	`, c.Name, storeAmount(c.Amount), c.DayOfMonth, c.Active, c.ID)
	if err != nil {
		return fmt.Errorf("update creditor: %w", err)
	}
	return requireAffected(res)
}

func (db *DB) DeleteCreditor(id string) error {
	res, err := db.Exec(`DELETE FROM creditors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete creditor: %w", err)
	}
	return requireAffected(res)
}

// ReplaceCreditors swaps the full creditor list in one transaction, as used
// by the paste import.
func (db *DB) ReplaceCreditors(creditors []models.Creditor) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace creditors: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM creditors`); err != nil {
		return fmt.Errorf("clear creditors: %w", err)
	}
	for _, c := range creditors {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if _, err := tx.Exec(`
			INSERT INTO creditors (id, name, amount, day_of_month, active)
			VALUES (?, ?, ?, ?, ?)
		`, c.ID, c.Name, storeAmount(c.Amount), c.DayOfMonth, c.Active); err != nil {
			return fmt.Errorf("insert creditor %q: %w", c.Name, err)
		}
	}
	return tx.Commit()
}

func scanCreditor(row rowScanner) (models.Creditor, error) {
	var c models.Creditor
	var amount string
	if err := row.Scan(&c.ID, &c.Name, &amount, &c.DayOfMonth, &c.Active, &c.CreatedAt); err != nil {
		return c, err
	}
	var err error
	if c.Amount, err = scanAmount(amount); err != nil {
		return c, fmt.Errorf("amount %q: %w", amount, err)
	}
	return c, nil
}
