package importer

import (
	"fmt"
	"log/slog"

	"praktijkkas/internal/models"
	"praktijkkas/internal/normalize"
)

// Kind selects the row-validation variant for an import.
type Kind string

const (
	KindInsurerDeclarations Kind = "insurer-declarations"
	KindPrivateInvoices     Kind = "private-invoices"
	KindBankMovements       Kind = "bank-movements"
)

// ParseKind maps a declared import type to a Kind. Unknown kinds are
// rejected at the boundary; the legacy Dutch values from older clients stay
// accepted.
func ParseKind(s string) (Kind, error) {
	switch s {
	case string(KindInsurerDeclarations), "declaraties":
		return KindInsurerDeclarations, nil
	case string(KindPrivateInvoices), "facturen":
		return KindPrivateInvoices, nil
	case string(KindBankMovements), "bank", "bank_bunq":
		return KindBankMovements, nil
	}
	return "", fmt.Errorf("unknown import kind %q", s)
}

// Column alias lists, ordered: the first alias present with a non-blank
// value wins. Dialects differ per export tool and language, so both Dutch
// and English names appear.
var (
	invoiceAliases     = []string{"factuur", "Factuur", "factuurnummer", "Factuurnummer", "invoice", "Invoice"}
	dateAliases        = []string{"datum", "Datum", "date", "Date", "transactiedatum", "Transactiedatum"}
	amountAliases      = []string{"bedrag", "Bedrag", "amount", "Amount"}
	insurerAliases     = []string{"verzekeraar", "Verzekeraar", "maatschappij", "Maatschappij", "insurer", "Insurer"}
	debtorAliases      = []string{"debiteur", "Debiteur", "debtor", "naam", "Naam", "Name"}
	counterpartAliases = []string{"debiteur", "Debiteur", "tegenpartij", "Tegenpartij", "counterparty", "Counterparty", "naam", "Naam"}
	descriptionAliases = []string{"omschrijving", "Omschrijving", "description", "Description", "mededelingen", "Mededelingen"}
	accountAliases     = []string{"rekening", "Rekening", "account", "Account", "iban", "IBAN"}
)

// resolveField returns the first non-blank value among the aliases, along
// with the alias that matched.
func resolveField(row Row, aliases []string) (string, string) {
	for _, alias := range aliases {
		if v, ok := row[alias]; ok && v != "" {
			return v, alias
		}
	}
	return "", ""
}

// ValidateRows runs the per-kind validation variant over every row. Row
// failures never abort the batch: each row collects all of its errors and
// the batch continues. Diagnostics are capped at maxMessages.
func ValidateRows(rows []Row, kind Kind, maxMessages int) (models.ImportResult, error) {
	var res models.ImportResult
	res.Summary.Total = len(rows)

	addMessages := func(msgs []string) {
		for _, m := range msgs {
			if len(res.Summary.Messages) < maxMessages {
				res.Summary.Messages = append(res.Summary.Messages, m)
			}
		}
	}

	for i, row := range rows {
		rowNum := i + 2 // header is line 1

		var errs []string
		switch kind {
		case KindInsurerDeclarations:
			entry, rowErrs := declarationRow(row, rowNum)
			errs = rowErrs
			if len(errs) == 0 {
				res.Entries = append(res.Entries, entry)
			}
		case KindPrivateInvoices:
			entry, rowErrs := invoiceRow(row, rowNum)
			errs = rowErrs
			if len(errs) == 0 {
				res.Entries = append(res.Entries, entry)
			}
		case KindBankMovements:
			movement, rowErrs := bankRow(row, rowNum)
			errs = rowErrs
			if len(errs) == 0 {
				res.Movements = append(res.Movements, movement)
			}
		default:
			return models.ImportResult{}, fmt.Errorf("unknown import kind %q", kind)
		}

		if len(errs) == 0 {
			res.Summary.Valid++
		} else {
			res.Summary.Invalid++
			addMessages(errs)
		}
	}
	return res, nil
}

// declarationRow validates one insurer declaration line:
// factuur, datum, verzekeraar, bedrag.
func declarationRow(row Row, rowNum int) (models.LedgerEntry, []string) {
	var errs []string
	entry := models.LedgerEntry{
		Kind:     models.EntryIncome,
		Category: "zorgverzekeraar",
	}

	if v, _ := resolveField(row, invoiceAliases); v != "" {
		entry.InvoiceNumber = v
	}

	dateVal, _ := resolveField(row, dateAliases)
	if dateVal == "" {
		errs = append(errs, fmt.Sprintf("row %d: missing date", rowNum))
	} else if d, err := normalize.ParseFlexibleDate(dateVal); err != nil {
		errs = append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
	} else {
		entry.Date = d
	}

	insurer, _ := resolveField(row, insurerAliases)
	if insurer == "" {
		errs = append(errs, fmt.Sprintf("row %d: missing insurer name", rowNum))
	} else {
		entry.CounterpartName = normalize.ExtractCounterpartName(insurer)
		entry.Description = "Declaratie " + entry.CounterpartName
	}

	amountVal, _ := resolveField(row, amountAliases)
	if amountVal == "" {
		errs = append(errs, fmt.Sprintf("row %d: missing amount", rowNum))
	} else if a, err := normalize.ParseCurrency(amountVal); err != nil {
		errs = append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
	} else {
		// Ledger amounts are positive magnitudes.
		entry.Amount = a.Abs()
	}

	return entry, errs
}

// invoiceRow validates one private invoice line:
// factuur, datum, debiteur, bedrag.
func invoiceRow(row Row, rowNum int) (models.LedgerEntry, []string) {
	var errs []string
	entry := models.LedgerEntry{
		Kind:     models.EntryIncome,
		Category: "particulier",
	}

	if v, _ := resolveField(row, invoiceAliases); v != "" {
		entry.InvoiceNumber = v
	}

	dateVal, _ := resolveField(row, dateAliases)
	if dateVal == "" {
		errs = append(errs, fmt.Sprintf("row %d: missing date", rowNum))
	} else if d, err := normalize.ParseFlexibleDate(dateVal); err != nil {
		errs = append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
	} else {
		entry.Date = d
	}

	debtor, _ := resolveField(row, debtorAliases)
	if debtor == "" {
		errs = append(errs, fmt.Sprintf("row %d: missing debtor name", rowNum))
	} else {
		entry.CounterpartName = normalize.ExtractCounterpartName(debtor)
		entry.Description = "Factuur " + entry.CounterpartName
	}

	amountVal, _ := resolveField(row, amountAliases)
	if amountVal == "" {
		errs = append(errs, fmt.Sprintf("row %d: missing amount", rowNum))
	} else if a, err := normalize.ParseCurrency(amountVal); err != nil {
		errs = append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
	} else {
		entry.Amount = a.Abs()
	}

	return entry, errs
}

// bankRow validates one bank export line. The amount keeps its sign: a
// debit must survive as a negative movement. The matched aliases for date
// and amount are logged as a debugging aid for new export dialects.
func bankRow(row Row, rowNum int) (models.BankMovement, []string) {
	var errs []string
	var movement models.BankMovement

	dateVal, dateAlias := resolveField(row, dateAliases)
	if dateVal == "" {
		errs = append(errs, fmt.Sprintf("row %d: missing date", rowNum))
	} else if d, err := normalize.ParseFlexibleDate(dateVal); err != nil {
		errs = append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
	} else {
		movement.Date = d
	}

	amountVal, amountAlias := resolveField(row, amountAliases)
	if amountVal == "" {
		errs = append(errs, fmt.Sprintf("row %d: missing amount", rowNum))
	} else if a, err := normalize.ParseCurrency(amountVal); err != nil {
		errs = append(errs, fmt.Sprintf("row %d: %v", rowNum, err))
	} else {
		movement.Amount = a
	}

	if v, _ := resolveField(row, counterpartAliases); v != "" {
		movement.CounterpartName = normalize.ExtractCounterpartName(v)
	}
	if v, _ := resolveField(row, descriptionAliases); v != "" {
		movement.Description = v
	}
	if v, _ := resolveField(row, accountAliases); v != "" {
		movement.AccountID = v
	}

	if dateAlias != "" || amountAlias != "" {
		slog.Debug("bank_row_aliases",
			"row", rowNum, "date_alias", dateAlias, "amount_alias", amountAlias)
	}

	return movement, errs
}
