package database

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Sentinel errors shared by the store and the confirm operations.
var (
	ErrNotFound          = errors.New("record not found")
	ErrAlreadyReconciled = errors.New("record already reconciled")
	ErrAlreadyMatched    = errors.New("correction already matched")
)

type DB struct {
	*sql.DB
}

// Open opens or creates the database at the given path
func Open(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Open with foreign keys enabled
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{db}, nil
}

// Init creates tables if they don't exist
func (db *DB) Init() error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Amounts are stored as exact decimal strings; dates as YYYY-MM-DD.

func storeAmount(d decimal.Decimal) string {
	return d.String()
}

func scanAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func storeDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func scanDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
