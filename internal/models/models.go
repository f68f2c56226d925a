package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry kinds
const (
	EntryIncome     = "income"
	EntryExpense    = "expense"
	EntryCredit     = "credit"
	EntryCorrection = "correction"
)

// IncomeCategories is the list of available income categories
var IncomeCategories = []string{
	"zorgverzekeraar",
	"particulier",
	"fysiofitness",
	"orthomoleculair",
}

// ExpenseCategories is the list of available expense categories
var ExpenseCategories = []string{
	"huur",
	"materiaal",
	"salaris",
	"overig",
}

// Correction kinds
const (
	CorrectionCreditNotePrivate        = "credit_note_private"
	CorrectionCreditDeclarationInsurer = "credit_declaration_insurer"
	CorrectionInvoiceInsurer           = "correction_invoice_insurer"
)

// Cost rhythms for classified recurring costs
const (
	CostFixed    = "fixed"
	CostVariable = "variable"
)

// LedgerEntry is a single income/expense booking. Amount is always a
// positive magnitude; the kind determines the cashflow direction.
type LedgerEntry struct {
	ID              string          `json:"id"`
	Kind            string          `json:"kind"` // income, expense, credit, correction
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Date            time.Time       `json:"date"`
	CounterpartName string          `json:"counterpart_name"`
	InvoiceNumber   string          `json:"invoice_number"`
	Notes           string          `json:"notes"`
	Reconciled      bool            `json:"reconciled"`
	CreatedAt       time.Time       `json:"created_at"`
}

// BankMovement is a single imported bank statement line. Amount keeps the
// sign from the export: debits negative, credits positive.
type BankMovement struct {
	ID              string          `json:"id"`
	Date            time.Time       `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	CounterpartName string          `json:"counterpart_name"`
	AccountID       string          `json:"account_id"`
	Reconciled      bool            `json:"reconciled"`
	MatchedEntryID  *string         `json:"matched_entry_id,omitempty"`
	CostCategory    string          `json:"cost_category,omitempty"` // set during reconciliation, feeds the forecast
	CostRhythm      string          `json:"cost_rhythm,omitempty"`   // fixed or variable, empty when unclassified
	CreatedAt       time.Time       `json:"created_at"`
}

// Creditor is a recurring fixed monthly payee. It is never reconciled
// itself; matching against it creates a pre-reconciled expense entry.
type Creditor struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	DayOfMonth int             `json:"day_of_month"` // 1-31 recurrence anchor
	Active     bool            `json:"active"`
	CreatedAt  time.Time       `json:"created_at"`
}

// InsurerTerm holds the expected payment term for one insurer.
type InsurerTerm struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TermDays  int       `json:"term_days"`
	CreatedAt time.Time `json:"created_at"`
}

// Correction is a credit note or correction invoice that adjusts a
// previously booked ledger entry. Amount carries the adjusting sign.
type Correction struct {
	ID              string          `json:"id"`
	Kind            string          `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	Date            time.Time       `json:"date"`
	CounterpartName string          `json:"counterpart_name"`
	OriginalInvoice string          `json:"original_invoice"`
	Matched         bool            `json:"matched"`
	LinkedEntryID   *string         `json:"linked_entry_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CategoryScope returns the income category a correction of this kind may
// adjust. Private credit notes never touch insurer entries and vice versa.
func (c Correction) CategoryScope() string {
	if c.Kind == CorrectionCreditNotePrivate {
		return "particulier"
	}
	return "zorgverzekeraar"
}

// OtherRevenue is a recurring monthly revenue item outside the invoicing
// flow (fitness subscriptions, room rental and the like).
type OtherRevenue struct {
	ID         string          `json:"id"`
	Label      string          `json:"label"`
	Amount     decimal.Decimal `json:"amount"`
	DayOfMonth int             `json:"day_of_month"`
	Active     bool            `json:"active"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CostProfile summarizes historically classified recurring costs for one
// category, derived from reconciled bank movements.
type CostProfile struct {
	Category       string          `json:"category"`
	Rhythm         string          `json:"rhythm"`          // fixed or variable
	MonthlyAverage decimal.Decimal `json:"monthly_average"` // average monthly outflow (positive magnitude)
	TrailingTotal  decimal.Decimal `json:"trailing_total"`  // total outflow over the trailing window
	LastDay        int             `json:"last_day"`        // day-of-month of the most recent movement
}

// EntryFilter narrows ledger entry list queries.
type EntryFilter struct {
	Kind       string
	Category   string
	StartDate  time.Time
	EndDate    time.Time
	Reconciled *bool
	AmountMin  *decimal.Decimal
	AmountMax  *decimal.Decimal
	Limit      int
}

// Match types for suggestions
const (
	MatchLedgerEntry = "ledger-entry"
	MatchCreditor    = "creditor"
)

// Suggestion is one ranked match candidate for a bank movement or a
// correction. Score is a heuristic 0-100 confidence, not a probability.
type Suggestion struct {
	MatchType   string          `json:"match_type"`
	TargetID    string          `json:"target_id"`
	Score       float64         `json:"score"`
	Reason      string          `json:"reason"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
}

// ImportSummary reports per-import counts and the first diagnostics.
type ImportSummary struct {
	Total    int      `json:"total"`
	Valid    int      `json:"valid"`
	Invalid  int      `json:"invalid"`
	Messages []string `json:"messages"`
}

// ImportResult is the outcome of parsing one upload: the summary plus the
// normalized records ready for persistence. Which slice is populated
// depends on the import kind.
type ImportResult struct {
	Summary   ImportSummary  `json:"summary"`
	Entries   []LedgerEntry  `json:"entries,omitempty"`
	Movements []BankMovement `json:"movements,omitempty"`
}
