// Package importer turns raw CSV/delimited uploads of unknown encoding,
// delimiter and column naming into normalized ledger records with per-row
// diagnostics.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ErrEncoding means no candidate byte encoding decodes the upload. This is
// fatal for the whole import, unlike row-level validation failures.
var ErrEncoding = errors.New("no candidate encoding decodes the upload")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// charmapAttempts is the ordered list of legacy encodings tried after
// UTF-8/UTF-16. The order is fixed: Windows-1252 covers the exports we see
// in practice, Latin-1 is the last resort.
var charmapAttempts = []struct {
	name string
	enc  encoding.Encoding
}{
	{"windows-1252", charmap.Windows1252},
	{"iso-8859-1", charmap.ISO8859_1},
}

// Decode converts upload bytes to a UTF-8 string, trying a fixed ordered
// list of encodings: UTF-8 (with BOM stripping), UTF-16 when a byte-order
// mark announces it, then the legacy charmaps. A decoded result containing
// NUL bytes or replacement runes is treated as a failed attempt, so binary
// uploads don't slip through and a later charmap can still win.
func Decode(raw []byte) (string, error) {
	// UTF-16 BOMs
	if len(raw) >= 2 && (raw[0] == 0xFF && raw[1] == 0xFE || raw[0] == 0xFE && raw[1] == 0xFF) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if out, err := dec.Bytes(raw); err == nil && usable(out) {
			return string(out), nil
		}
		return "", fmt.Errorf("%w: utf-16 marked but undecodable", ErrEncoding)
	}

	trimmed := bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(trimmed) && usable(trimmed) {
		return string(trimmed), nil
	}

	for _, attempt := range charmapAttempts {
		out, err := attempt.enc.NewDecoder().Bytes(trimmed)
		if err != nil || !usable(out) {
			continue
		}
		return string(out), nil
	}
	return "", ErrEncoding
}

// usable rejects output that still looks undecoded: NUL bytes mean a
// binary upload, replacement runes mean the charmap left holes.
func usable(b []byte) bool {
	return !bytes.ContainsRune(b, 0) && !bytes.ContainsRune(b, utf8.RuneError)
}

// normalizeNewlines folds Windows and old-Mac line endings so the CSV
// reader sees one convention.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
