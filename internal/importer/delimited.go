package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

// ErrDialect means no delimiter yields at least two meaningful columns.
// Fatal for the whole import.
var ErrDialect = errors.New("no delimiter yields usable columns")

// Row is one parsed data line keyed by trimmed column name.
type Row map[string]string

// ParseDelimited splits raw text into row maps. Delimiters are tried in a
// fixed priority order: semicolon first (the dominant bank export dialect),
// then the caller's declared delimiter, tab, pipe, comma. The first
// delimiter that yields a header with >=2 meaningful columns and at least
// one data row with >=2 non-empty values wins; this is lazy-first-match,
// not best-of-all-candidates. When nothing qualifies the declared delimiter
// is used without filtering.
func ParseDelimited(content string, declared rune) ([]Row, error) {
	content = normalizeNewlines(content)

	candidates := []rune{';'}
	for _, d := range []rune{declared, '\t', '|', ','} {
		if d == 0 || containsRune(candidates, d) {
			continue
		}
		candidates = append(candidates, d)
	}

	for _, delim := range candidates {
		if rows, ok := tryDelimiter(content, delim); ok {
			return rows, nil
		}
	}

	// Fallback: trust the declared delimiter, keep everything.
	fallback := declared
	if fallback == 0 {
		fallback = ','
	}
	rows, err := rawRows(content, fallback)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDialect, err)
	}
	return rows, nil
}

func containsRune(rs []rune, r rune) bool {
	for _, c := range rs {
		if c == r {
			return true
		}
	}
	return false
}

// tryDelimiter parses with one candidate delimiter and reports whether the
// result looks like a real table.
func tryDelimiter(content string, delim rune) ([]Row, bool) {
	records, err := readAll(content, delim)
	if err != nil || len(records) < 2 {
		return nil, false
	}

	header := records[0]
	type column struct {
		idx  int
		name string
	}
	var columns []column
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" || name == "None" {
			continue
		}
		columns = append(columns, column{idx: i, name: name})
	}
	if len(columns) < 2 {
		return nil, false
	}

	var rows []Row
	qualified := false
	for _, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		row := make(Row, len(columns))
		nonEmpty := 0
		for _, col := range columns {
			val := ""
			if col.idx < len(rec) {
				val = strings.TrimSpace(rec[col.idx])
			}
			row[col.name] = val
			if val != "" {
				nonEmpty++
			}
		}
		if nonEmpty >= 2 {
			qualified = true
		}
		rows = append(rows, row)
	}
	return rows, qualified
}

// rawRows parses with no header or row filtering; last-ditch path.
func rawRows(content string, delim rune) ([]Row, error) {
	records, err := readAll(content, delim)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty upload")
	}
	header := records[0]
	var rows []Row
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, name := range header {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if i < len(rec) {
				row[name] = strings.TrimSpace(rec[i])
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readAll(content string, delim rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(content))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
