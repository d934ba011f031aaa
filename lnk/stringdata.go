package lnk

import (
	"encoding/binary"

	"golang.org/x/text/encoding"

	"github.com/andrewstucki/taskbar/internal"
)

// StringData holds the optional counted strings that follow LinkInfo.
type StringData struct {
	Name         string `json:"name,omitempty"`
	RelativePath string `json:"relativePath,omitempty"`
	WorkingDir   string `json:"workingDir,omitempty"`
	Arguments    string `json:"arguments,omitempty"`
	IconLocation string `json:"iconLocation,omitempty"`
}

func parseStringData(data []byte, offset int, flags LinkFlags, codePage encoding.Encoding) (*StringData, int, error) {
	stringData := &StringData{}
	// order matters, the strings are laid out back to back in this sequence
	fields := []struct {
		flag   LinkFlags
		target *string
	}{
		{HasName, &stringData.Name},
		{HasRelativePath, &stringData.RelativePath},
		{HasWorkingDir, &stringData.WorkingDir},
		{HasArguments, &stringData.Arguments},
		{HasIconLocation, &stringData.IconLocation},
	}

	unicode := flags.Has(IsUnicode)
	cursor := offset
	for _, field := range fields {
		if !flags.Has(field.flag) {
			continue
		}
		value, size, err := parseCountedString(data, cursor, unicode, codePage)
		if err != nil {
			return nil, 0, err
		}
		*field.target = value
		cursor += size
	}
	return stringData, cursor - offset, nil
}

func parseCountedString(data []byte, offset int, unicode bool, codePage encoding.Encoding) (string, int, error) {
	if len(data) < offset+2 {
		return "", 0, malformed(offset, "string length truncated")
	}
	count := int(binary.LittleEndian.Uint16(data[offset : offset+2]))
	width := 1
	if unicode {
		width = 2
	}
	end := offset + 2 + count*width
	if len(data) < end {
		return "", 0, malformed(offset, "string of %d characters truncated", count)
	}
	raw := data[offset+2 : end]
	if unicode {
		return internal.DecodeUnicode(raw, count), end - offset, nil
	}
	return internal.DecodeCodePage(raw, codePage), end - offset, nil
}
