package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"praktijkkas/internal/models"
)

// CreateInsurerTerm inserts an insurer payment term, assigning an id when
// absent.
func (db *DB) CreateInsurerTerm(t models.InsurerTerm) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := db.Exec(`
		INSERT INTO insurer_terms (id, name, term_days) VALUES (?, ?, ?)
	`, t.ID, t.Name, t.TermDays)
	if err != nil {
		return "", fmt.Errorf("insert insurer term: %w", err)
	}
	return t.ID, nil
}

func (db *DB) GetInsurerTerm(id string) (models.InsurerTerm, error) {
	var t models.InsurerTerm
	row := db.QueryRow(`SELECT id, name, term_days, created_at FROM insurer_terms WHERE id = ?`, id)
	err := row.Scan(&t.ID, &t.Name, &t.TermDays, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	if err != nil {
		return t, fmt.Errorf("query insurer term: %w", err)
	}
	return t, nil
}

func (db *DB) ListInsurerTerms() ([]models.InsurerTerm, error) {
	rows, err := db.Query(`SELECT id, name, term_days, created_at FROM insurer_terms ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query insurer terms: %w", err)
	}
	defer rows.Close()

	var terms []models.InsurerTerm
	for rows.Next() {
		var t models.InsurerTerm
		if err := rows.Scan(&t.ID, &t.Name, &t.TermDays, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan insurer term: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

func (db *DB) UpdateInsurerTerm(t models.InsurerTerm) error {
	res, err := db.Exec(`
		UPDATE insurer_terms SET name = ?, term_days = ? WHERE id = ?
	`, t.Name, t.TermDays, t.ID)
	if err != nil {
		return fmt.Errorf("update insurer term: %w", err)
	}
	return requireAffected(res)
}

func (db *DB) DeleteInsurerTerm(id string) error {
	res, err := db.Exec(`DELETE FROM insurer_terms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete insurer term: %w", err)
	}
	return requireAffected(res)
}

// ReplaceInsurerTerms swaps the full term list in one transaction, as used
// by the paste import.
func (db *DB) ReplaceInsurerTerms(terms []models.InsurerTerm) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace insurer terms: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM insurer_terms`); err != nil {
		return fmt.Errorf("clear insurer terms: %w", err)
	}
	for _, t := range terms {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if _, err := tx.Exec(`
			INSERT INTO insurer_terms (id, name, term_days) VALUES (?, ?, ?)
		`, t.ID, t.Name, t.TermDays); err != nil {
			return fmt.Errorf("insert insurer term %q: %w", t.Name, err)
		}
	}
	return tx.Commit()
}
