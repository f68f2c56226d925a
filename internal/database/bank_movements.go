package database

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"praktijkkas/internal/models"
)

const movementColumns = `id, date(date), amount, description, counterpart_name,
	account_id, reconciled, matched_entry_id, cost_category, cost_rhythm, created_at`

// CreateBankMovement inserts a new movement, assigning an id when absent.
func (db *DB) CreateBankMovement(m models.BankMovement) (string, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := db.Exec(`
		INSERT INTO bank_movements (id, date, amount, description, counterpart_name,
			account_id, reconciled, matched_entry_id, cost_category, cost_rhythm)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, storeDate(m.Date), storeAmount(m.Amount), m.Description, m.CounterpartName,
		m.AccountID, m.Reconciled, m.MatchedEntryID, m.CostCategory, m.CostRhythm)
	if err != nil {
		return "", fmt.Errorf("insert bank movement: %w", err)
	}
	return m.ID, nil
}

func (db *DB) GetBankMovement(id string) (models.BankMovement, error) {
	row := db.QueryRow(`SELECT `+movementColumns+` FROM bank_movements WHERE id = ?`, id)
	m, err := scanBankMovement(row)
	if err == sql.ErrNoRows {
		return m, ErrNotFound
	}
	if err != nil {
		return m, fmt.Errorf("query bank movement: %w", err)
	}
	return m, nil
}

// ListBankMovements returns movements, optionally only unreconciled ones,
// newest first.
func (db *DB) ListBankMovements(unreconciledOnly bool) ([]models.BankMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM bank_movements`
	if unreconciledOnly {
		query += ` WHERE reconciled = 0`
	}
	query += ` ORDER BY date(date) DESC, id`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query bank movements: %w", err)
	}
	defer rows.Close()

	var movements []models.BankMovement
	for rows.Next() {
		m, err := scanBankMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bank movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (db *DB) DeleteBankMovement(id string) error {
	res, err := db.Exec(`DELETE FROM bank_movements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bank movement: %w", err)
	}
	return requireAffected(res)
}

// MarkMovementReconciled links a movement to its ledger entry and flips the
// reconciled flag exactly once.
func (db *DB) MarkMovementReconciled(id string, entryID *string) error {
	res, err := db.Exec(`
		UPDATE bank_movements
		SET reconciled = 1, matched_entry_id = ?
		WHERE id = ? AND reconciled = 0
	`, entryID, id)
	if err != nil {
		return fmt.Errorf("mark movement reconciled: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark movement reconciled: %w", err)
	}
	if n == 0 {
		if _, err := db.GetBankMovement(id); err != nil {
			return err
		}
		return ErrAlreadyReconciled
	}
	return nil
}

// UnreconcileMovement reverts a reconciliation, clearing the link.
func (db *DB) UnreconcileMovement(id string) error {
	res, err := db.Exec(`
		UPDATE bank_movements SET reconciled = 0, matched_entry_id = NULL WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("unreconcile movement: %w", err)
	}
	return requireAffected(res)
}

// ClassifyMovement records the recurring-cost classification used by the
// forecast.
func (db *DB) ClassifyMovement(id, category, rhythm string) error {
	res, err := db.Exec(`
		UPDATE bank_movements SET cost_category = ?, cost_rhythm = ? WHERE id = ?
	`, category, rhythm, id)
	if err != nil {
		return fmt.Errorf("classify movement: %w", err)
	}
	return requireAffected(res)
}

// CostProfiles derives recurring-cost profiles from classified outgoing
// movements since the given date, grouped by category and rhythm.
func (db *DB) CostProfiles(since time.Time) ([]models.CostProfile, error) {
	rows, err := db.Query(`
		SELECT date(date), amount, cost_category, cost_rhythm
		FROM bank_movements
		WHERE cost_category != '' AND date >= ? AND CAST(amount AS REAL) < 0
		ORDER BY date(date)
	`, storeDate(since))
	if err != nil {
		return nil, fmt.Errorf("query classified movements: %w", err)
	}
	defer rows.Close()

	type group struct {
		total   decimal.Decimal
		months  map[string]bool
		lastDay int
	}
	groups := make(map[[2]string]*group)

	for rows.Next() {
		var date, amount, category, rhythm string
		if err := rows.Scan(&date, &amount, &category, &rhythm); err != nil {
			return nil, fmt.Errorf("scan classified movement: %w", err)
		}
		d, err := scanDate(date)
		if err != nil {
			return nil, fmt.Errorf("date %q: %w", date, err)
		}
		a, err := scanAmount(amount)
		if err != nil {
			return nil, fmt.Errorf("amount %q: %w", amount, err)
		}

		key := [2]string{category, rhythm}
		g := groups[key]
		if g == nil {
			g = &group{total: decimal.Zero, months: make(map[string]bool)}
			groups[key] = g
		}
		g.total = g.total.Add(a.Abs())
		g.months[d.Format("2006-01")] = true
		g.lastDay = d.Day() // rows are date-ordered
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var profiles []models.CostProfile
	for key, g := range groups {
		months := len(g.months)
		if months == 0 {
			continue
		}
		profiles = append(profiles, models.CostProfile{
			Category:       key[0],
			Rhythm:         key[1],
			MonthlyAverage: g.total.Div(decimal.NewFromInt(int64(months))),
			TrailingTotal:  g.total,
			LastDay:        g.lastDay,
		})
	}
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].Category != profiles[j].Category {
			return profiles[i].Category < profiles[j].Category
		}
		return profiles[i].Rhythm < profiles[j].Rhythm
	})
	return profiles, nil
}

func scanBankMovement(row rowScanner) (models.BankMovement, error) {
	var m models.BankMovement
	var amount, date string
	var matched sql.NullString
	if err := row.Scan(&m.ID, &date, &amount, &m.Description, &m.CounterpartName,
		&m.AccountID, &m.Reconciled, &matched, &m.CostCategory, &m.CostRhythm, &m.CreatedAt); err != nil {
		return m, err
	}
	if matched.Valid {
		m.MatchedEntryID = &matched.String
	}
	var err error
	if m.Amount, err = scanAmount(amount); err != nil {
		return m, fmt.Errorf("amount %q: %w", amount, err)
	}
	if m.Date, err = scanDate(date); err != nil {
		return m, fmt.Errorf("date %q: %w", date, err)
	}
	return m, nil
}
