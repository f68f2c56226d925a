package importer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeUTF8BOM(t *testing.T) {
	t.Parallel()

	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("datum;bedrag")...)
	out, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "datum;bedrag", out)
}

func TestDecodeUTF16LE(t *testing.T) {
	t.Parallel()

	// "ab" in UTF-16LE with BOM.
	raw := []byte{0xFF, 0xFE, 'a', 0x00, 'b', 0x00}
	out, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "ab", out)
}

func TestDecodeWindows1252(t *testing.T) {
	t.Parallel()

	// "Declaratie f\xe9bruari" is invalid UTF-8 but valid Windows-1252.
	raw := []byte("Declaratie f\xe9bruari")
	out, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "Declaratie fébruari", out)
}

func TestDecodeUndefinedBytesFallThroughToLatin1(t *testing.T) {
	t.Parallel()

	// 0x81 has no Windows-1252 mapping, so that attempt yields a
	// replacement rune and loses; Latin-1 maps every byte.
	raw := []byte("caf\xe9 \x81")
	out, err := Decode(raw)
	require.NoError(t, err)
	require.Contains(t, out, "café")
	require.NotContains(t, out, "�")
}

func TestDecodeRejectsBinary(t *testing.T) {
	t.Parallel()

	raw := []byte{'P', 'K', 0x03, 0x04, 0x00, 0x00}
	_, err := Decode(raw)
	require.ErrorIs(t, err, ErrEncoding)
}
