package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"praktijkkas/internal/importer"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: importcheck <kind> <path-to-csv>")
		fmt.Println("Kinds: insurer-declarations, private-invoices, bank-movements")
		os.Exit(1)
	}

	kind, err := importer.ParseKind(os.Args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	raw, err := os.ReadFile(os.Args[2])
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	content, err := importer.Decode(raw)
	if err != nil {
		fmt.Printf("Error decoding file: %v\n", err)
		os.Exit(1)
	}

	rows, err := importer.ParseDelimited(content, ';')
	if err != nil {
		fmt.Printf("Error parsing file: %v\n", err)
		os.Exit(1)
	}

	result, err := importer.ValidateRows(rows, kind, 50)
	if err != nil {
		fmt.Printf("Error validating rows: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rows:    %d\n", result.Summary.Total)
	fmt.Printf("Valid:   %d\n", result.Summary.Valid)
	fmt.Printf("Invalid: %d\n\n", result.Summary.Invalid)

	if len(result.Summary.Messages) > 0 {
		fmt.Println("Diagnostics:")
		fmt.Println("------------")
		for _, msg := range result.Summary.Messages {
			fmt.Printf("  %s\n", msg)
		}
		fmt.Println()
	}

	if len(result.Entries) > 0 {
		fmt.Println("Entries:")
		fmt.Println("--------")
		total := decimal.Zero
		for _, e := range result.Entries {
			fmt.Printf("  %s | %-15s | %10s | %s\n",
				e.Date.Format("2006-01-02"), e.Category, e.Amount.StringFixed(2), truncate(e.Description, 50))
			total = total.Add(e.Amount)
		}
		fmt.Printf("\n  Total: %s over %d entries\n", total.StringFixed(2), len(result.Entries))
	}

	if len(result.Movements) > 0 {
		fmt.Println("Movements:")
		fmt.Println("----------")
		credits := decimal.Zero
		debits := decimal.Zero
		for _, m := range result.Movements {
			fmt.Printf("  %s | %10s | %-30s | %s\n",
				m.Date.Format("2006-01-02"), m.Amount.StringFixed(2),
				truncate(m.CounterpartName, 30), truncate(m.Description, 40))
			if m.Amount.IsNegative() {
				debits = debits.Add(m.Amount)
			} else {
				credits = credits.Add(m.Amount)
			}
		}
		fmt.Println("\nTotals:")
		fmt.Printf("  Credits: %10s\n", credits.StringFixed(2))
		fmt.Printf("  Debits:  %10s\n", debits.StringFixed(2))
		fmt.Printf("  Net:     %10s\n", credits.Add(debits).StringFixed(2))
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
