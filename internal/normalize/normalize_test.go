package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"€ -2.780,03", "-2780.03"},
		{"€ 1.311,03", "1311.03"},
		{"€ -89,75", "-89.75"},
		{"€ 124,76", "124.76"},
		{"€ -48,50", "-48.5"},
		{"€ 1.008,00", "1008"},
		{"€ 2.500,75", "2500.75"},
		{"1200.00", "1200"},
		{"1.234", "1234"},    // 3 digits after the dot: grouping
		{"1.234.567", "1234567"},
		{"123.45", "123.45"}, // single dot, short prefix: decimal
		{"12,5", "12.5"},
		{"1,234", "1234"},    // 3 digits after the comma: grouping
		{"-50", "-50"},
		{"+80,25", "80.25"},
		{"", "0"},
		{"   ", "0"},
	}
	for _, tc := range cases {
		got, err := ParseCurrency(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		require.Equal(t, tc.want, got.String(), "input %q", tc.in)
	}
}

func TestParseCurrencyPreservesSign(t *testing.T) {
	t.Parallel()

	// A debit stays negative; the parser must never absolutize.
	got, err := ParseCurrency("€ -1.200,00")
	require.NoError(t, err)
	require.True(t, got.IsNegative())
	require.Equal(t, "-1200", got.String())
}

func TestParseCurrencyRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"abc", "12x34", "€ veel"} {
		_, err := ParseCurrency(in)
		require.Error(t, err, "input %q", in)
	}
}

func TestParseFlexibleDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want time.Time
	}{
		// Day-first wins over month-first: this is policy, not detection.
		{"20-2-2025", time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)},
		{"2-3-2025", time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"2025-01-15", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"15/1/2025", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"20-2-2025 10:30:00", time.Date(2025, 2, 20, 10, 30, 0, 0, time.UTC)},
		{"2025-02-20T08:00:00", time.Date(2025, 2, 20, 8, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := ParseFlexibleDate(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		require.Equal(t, tc.want.Year(), got.Year(), "input %q", tc.in)
		require.Equal(t, tc.want.Month(), got.Month(), "input %q", tc.in)
		require.Equal(t, tc.want.Day(), got.Day(), "input %q", tc.in)
	}
}

func TestParseFlexibleDateNamesUnparsedText(t *testing.T) {
	t.Parallel()

	_, err := ParseFlexibleDate("morgen")
	require.Error(t, err)
	require.Contains(t, err.Error(), "morgen")

	_, err = ParseFlexibleDate("")
	require.Error(t, err)
}

func TestExtractCounterpartName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"202500008568-Knauff, Ienke", "Knauff, Ienke"},
		{"Zilveren Kruis", "Zilveren Kruis"},
		{"  CZ Groep  ", "CZ Groep"},
		// Only the first dash splits; later dashes belong to the name.
		{"123-Jansen-de Vries", "Jansen-de Vries"},
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ExtractCounterpartName(tc.in), "input %q", tc.in)
	}
}
