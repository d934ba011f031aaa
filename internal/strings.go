package internal

import (
	"encoding/binary"
	"unicode/utf16"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// DefaultCodePage is used whenever a caller does not supply a code page for
// legacy single-byte text.
var DefaultCodePage encoding.Encoding = charmap.Windows1252

// ReadString reads a NUL-terminated byte string starting at offset. A missing
// terminator reads to the end of data.
func ReadString(data []byte, offset int) string {
	return string(terminated(data, offset))
}

// ReadCodePage reads a NUL-terminated string starting at offset and decodes it
// with the given single-byte code page.
func ReadCodePage(data []byte, offset int, codePage encoding.Encoding) string {
	return DecodeCodePage(terminated(data, offset), codePage)
}

// DecodeCodePage decodes raw single-byte text. Bytes the code page can't map
// come back as the replacement character rather than an error.
func DecodeCodePage(raw []byte, codePage encoding.Encoding) string {
	if codePage == nil {
		codePage = DefaultCodePage
	}
	decoded, err := codePage.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// ReadUnicode reads a NUL-terminated UTF-16LE string starting at offset.
func ReadUnicode(data []byte, offset int) string {
	if offset < 0 || offset >= len(data) {
		return ""
	}
	encoded := []uint16{}
	for i := offset; i+1 < len(data); i += 2 {
		value := binary.LittleEndian.Uint16(data[i : i+2])
		if value == 0 {
			break
		}
		encoded = append(encoded, value)
	}
	return string(utf16.Decode(encoded))
}

// DecodeUnicode decodes exactly count UTF-16LE code units from data.
func DecodeUnicode(data []byte, count int) string {
	encoded := make([]uint16, 0, count)
	for i := 0; i < count && 2*i+1 < len(data); i++ {
		encoded = append(encoded, binary.LittleEndian.Uint16(data[2*i:]))
	}
	return string(utf16.Decode(encoded))
}

func terminated(data []byte, offset int) []byte {
	if offset < 0 || offset >= len(data) {
		return nil
	}
	for end := offset; end < len(data); end++ {
		if data[end] == 0 {
			return data[offset:end]
		}
	}
	return data[offset:]
}
