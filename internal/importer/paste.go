package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"praktijkkas/internal/models"
	"praktijkkas/internal/normalize"
)

// Copy-paste blocks come from spreadsheets: one record per line, fields
// separated by tabs or runs of spaces.
var pasteFieldSplit = regexp.MustCompile(`\t+|\s{2,}`)

func pasteFields(line string) []string {
	var fields []string
	for _, f := range pasteFieldSplit.Split(strings.TrimSpace(line), -1) {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// ParseInsurerTermPaste parses "name <tab> term-days" lines.
func ParseInsurerTermPaste(text string, maxMessages int) ([]models.InsurerTerm, models.ImportSummary) {
	var terms []models.InsurerTerm
	var sum models.ImportSummary

	for i, line := range strings.Split(normalizeNewlines(text), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sum.Total++
		lineNum := i + 1

		fields := pasteFields(line)
		if len(fields) < 2 {
			sum.Invalid++
			sum.Messages = appendCapped(sum.Messages, maxMessages,
				fmt.Sprintf("line %d: expected name and term days", lineNum))
			continue
		}

		days, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil || days <= 0 {
			sum.Invalid++
			sum.Messages = appendCapped(sum.Messages, maxMessages,
				fmt.Sprintf("line %d: invalid term days %q", lineNum, fields[len(fields)-1]))
			continue
		}

		sum.Valid++
		terms = append(terms, models.InsurerTerm{
			Name:     strings.Join(fields[:len(fields)-1], " "),
			TermDays: days,
		})
	}
	return terms, sum
}

// ParseCreditorPaste parses "name <tab> amount <tab> day-of-month" lines.
// All three fields are required; the amount is a positive magnitude.
func ParseCreditorPaste(text string, maxMessages int) ([]models.Creditor, models.ImportSummary) {
	var creditors []models.Creditor
	var sum models.ImportSummary

	for i, line := range strings.Split(normalizeNewlines(text), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sum.Total++
		lineNum := i + 1

		fields := pasteFields(line)
		if len(fields) < 3 {
			sum.Invalid++
			sum.Messages = appendCapped(sum.Messages, maxMessages,
				fmt.Sprintf("line %d: expected name, amount and day of month", lineNum))
			continue
		}

		var errs []string
		amount, err := normalize.ParseCurrency(fields[len(fields)-2])
		if err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", lineNum, err))
		}
		day, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil || day < 1 || day > 31 {
			errs = append(errs, fmt.Sprintf("line %d: invalid day of month %q", lineNum, fields[len(fields)-1]))
		}
		if len(errs) > 0 {
			sum.Invalid++
			for _, m := range errs {
				sum.Messages = appendCapped(sum.Messages, maxMessages, m)
			}
			continue
		}

		sum.Valid++
		creditors = append(creditors, models.Creditor{
			Name:       strings.Join(fields[:len(fields)-2], " "),
			Amount:     amount.Abs(),
			DayOfMonth: day,
			Active:     true,
		})
	}
	return creditors, sum
}

func appendCapped(msgs []string, max int, msg string) []string {
	if len(msgs) >= max {
		return msgs
	}
	return append(msgs, msg)
}
