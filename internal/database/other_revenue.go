package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"praktijkkas/internal/models"
)

// CreateOtherRevenue inserts a recurring revenue line, assigning an id when
// absent.
func (db *DB) CreateOtherRevenue(r models.OtherRevenue) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := db.Exec(`
		INSERT INTO other_revenue (id, label, amount, day_of_month, active)
		VALUES (?, ?, ?, ?, ?)
	`, r.ID, r.Label, storeAmount(r.Amount), r.DayOfMonth, r.Active)
	if err != nil {
		return "", fmt.Errorf("insert other revenue: %w", err)
	}
	return r.ID, nil
}

func (db *DB) GetOtherRevenue(id string) (models.OtherRevenue, error) {
	var r models.OtherRevenue
	var amount string
	row := db.QueryRow(`SELECT id, label, amount, day_of_month, active, created_at FROM other_revenue WHERE id = ?`, id)
	err := row.Scan(&r.ID, &r.Label, &amount, &r.DayOfMonth, &r.Active, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return r, ErrNotFound
	}
	if err != nil {
		return r, fmt.Errorf("query other revenue: %w", err)
	}
	if r.Amount, err = scanAmount(amount); err != nil {
		return r, fmt.Errorf("amount %q: %w", amount, err)
	}
	return r, nil
}

// ListOtherRevenue returns recurring revenue lines ordered by payment day,
// optionally only active ones.
func (db *DB) ListOtherRevenue(activeOnly bool) ([]models.OtherRevenue, error) {
	query := `SELECT id, label, amount, day_of_month, active, created_at FROM other_revenue`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY day_of_month, label`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query other revenue: %w", err)
	}
	defer rows.Close()

	var lines []models.OtherRevenue
	for rows.Next() {
		var r models.OtherRevenue
		var amount string
		if err := rows.Scan(&r.ID, &r.Label, &amount, &r.DayOfMonth, &r.Active, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan other revenue: %w", err)
		}
		var err error
		if r.Amount, err = scanAmount(amount); err != nil {
			return nil, fmt.Errorf("amount %q: %w", amount, err)
		}
		lines = append(lines, r)
	}
	return lines, rows.Err()
}

func (db *DB) UpdateOtherRevenue(r models.OtherRevenue) error {
	res, err := db.Exec(`
		UPDATE other_revenue SET label = ?, amount = ?, day_of_month = ?, active = ? WHERE id = ?
	`, r.Label, storeAmount(r.Amount), r.DayOfMonth, r.Active, r.ID)
	if err != nil {
		return fmt.Errorf("update other revenue: %w", err)
	}
	return requireAffected(res)
}

func (db *DB) DeleteOtherRevenue(id string) error {
	res, err := db.Exec(`DELETE FROM other_revenue WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete other revenue: %w", err)
	}
	return requireAffected(res)
}
