package importer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseInsurerTermPaste(t *testing.T) {
	t.Parallel()

	text := "CZ Groep\t45\nZilveren Kruis\t30\n\nVGZ  60\n"
	terms, sum := ParseInsurerTermPaste(text, 20)
	require.Equal(t, 3, sum.Total)
	require.Equal(t, 3, sum.Valid)
	require.Len(t, terms, 3)
	require.Equal(t, "CZ Groep", terms[0].Name)
	require.Equal(t, 45, terms[0].TermDays)
	require.Equal(t, "VGZ", terms[2].Name)
	require.Equal(t, 60, terms[2].TermDays)
}

func TestParseInsurerTermPasteInvalidLines(t *testing.T) {
	t.Parallel()

	text := "CZ Groep\nZilveren Kruis\tdertig\nVGZ\t30\n"
	terms, sum := ParseInsurerTermPaste(text, 20)
	require.Equal(t, 3, sum.Total)
	require.Equal(t, 1, sum.Valid)
	require.Equal(t, 2, sum.Invalid)
	require.Len(t, terms, 1)
	require.Contains(t, sum.Messages[0], "line 1")
	require.Contains(t, sum.Messages[1], "dertig")
}

func TestParseCreditorPaste(t *testing.T) {
	t.Parallel()

	text := "Verhuur Praktijkpand BV\t€ 1.250,00\t1\nEnergie Direct\t-180,50\t15\n"
	creditors, sum := ParseCreditorPaste(text, 20)
	require.Equal(t, 2, sum.Valid)
	require.Len(t, creditors, 2)
	require.Equal(t, "Verhuur Praktijkpand BV", creditors[0].Name)
	require.Equal(t, "1250", creditors[0].Amount.String())
	require.Equal(t, 1, creditors[0].DayOfMonth)
	require.True(t, creditors[0].Active)
	// Pasted debits lose their sign: creditor amounts are magnitudes.
	require.Equal(t, "180.5", creditors[1].Amount.String())
}

func TestParseCreditorPasteRejectsBadDay(t *testing.T) {
	t.Parallel()

	text := "Energie Direct\t180,50\t32\nVerhuur\t1.250,00\t0\n"
	creditors, sum := ParseCreditorPaste(text, 20)
	require.Empty(t, creditors)
	require.Equal(t, 2, sum.Invalid)
	require.Contains(t, sum.Messages[0], "day of month")
}
