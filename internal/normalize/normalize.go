// Package normalize canonicalizes locale-specific financial text: amounts
// written with European separators, day-first dates and code-prefixed
// counterpart names.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseCurrency parses an amount written in the Dutch convention: "." as
// thousands separator, "," as decimal separator, optional euro sign and
// leading minus. The sign is always preserved; callers that need a
// magnitude take the absolute value themselves. An empty string parses to
// zero rather than an error.
func ParseCurrency(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, "EUR", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, nil
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")

	switch {
	case hasDot && hasComma:
		// Both present: comma is the decimal separator, dots are grouping.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasComma:
		// Rightmost comma is decimal only when at most 2 digits follow it;
		// otherwise it is a stray grouping mark.
		idx := strings.LastIndex(s, ",")
		if len(s)-idx-1 <= 2 && strings.Count(s, ",") == 1 {
			s = s[:idx] + "." + s[idx+1:]
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasDot:
		// A single dot with at most 2 trailing digits is a decimal point
		// ("1200.00"); anything else is thousands grouping ("1.234").
		idx := strings.LastIndex(s, ".")
		if strings.Count(s, ".") != 1 || len(s)-idx-1 > 2 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable amount %q", text)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// dateLayouts is the ordered list of parse attempts. Day-first layouts come
// before anything that could be read month-first: this is a deliberate
// regional policy, not autodetection. "20-2-2025" is always February 20.
var dateLayouts = []string{
	"2-1-2006",
	"2006-01-02",
	"2/1/2006",
	"2-1-2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// ParseFlexibleDate tries each known date layout in order and returns the
// first success. The error names the unparsed text so row diagnostics can
// show what the export actually contained.
func ParseFlexibleDate(text string) (time.Time, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", text)
}

// ExtractCounterpartName strips the numeric document code that practice
// exports prefix to names, as in "202500008568-Knauff, Ienke". Policy:
// everything before the first dash is assumed to be a document code, never
// part of a legitimate name. Inputs without a dash pass through trimmed.
func ExtractCounterpartName(raw string) string {
	if idx := strings.Index(raw, "-"); idx >= 0 {
		return strings.TrimSpace(raw[idx+1:])
	}
	return strings.TrimSpace(raw)
}
