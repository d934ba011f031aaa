package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReadString(t *testing.T) {
	data := []byte("abc\x00def")
	require.Equal(t, "abc", ReadString(data, 0))
	require.Equal(t, "def", ReadString(data, 4))
	require.Equal(t, "", ReadString(data, 3))
	require.Equal(t, "", ReadString(data, 100))
	require.Equal(t, "", ReadString(data, -1))
}

func TestDecodeCodePage(t *testing.T) {
	require.Equal(t, "caf\u00e9", DecodeCodePage([]byte{'c', 'a', 'f', 0xE9}, nil))
	require.Equal(t, "\u0449", DecodeCodePage([]byte{0xE9}, charmap.CodePage866))
	require.Equal(t, "\u00e9t\u00e9", ReadCodePage([]byte{0, 0xE9, 't', 0xE9, 0}, 1, charmap.Windows1252))
}

func TestReadUnicode(t *testing.T) {
	data := []byte{'h', 0, 'i', 0, 0, 0, 'x', 0}
	require.Equal(t, "hi", ReadUnicode(data, 0))
	require.Equal(t, "x", ReadUnicode(data, 6))
	require.Equal(t, "", ReadUnicode(data, 8))

	// surrogate pair
	require.Equal(t, "\U0001F600", DecodeUnicode([]byte{0x3D, 0xD8, 0x00, 0xDE}, 2))
	require.Equal(t, "h", DecodeUnicode(data, 1))
	// count past the end stops at the data
	require.Equal(t, "hi\x00x", DecodeUnicode(data, 10))
}
