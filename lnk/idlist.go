package lnk

import (
	"encoding/binary"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/andrewstucki/taskbar/internal"
)

// shell item class type indicators
const (
	itemVolume      byte = 0x20
	itemFileEntry   byte = 0x30
	itemClassMask   byte = 0x70
	itemUnicodeName byte = 0x04

	fileEntryExtension uint32 = 0xBEEF0004
)

// ShellItem is one entry of the LinkTargetIDList.
type ShellItem struct {
	Type byte   `json:"type"`
	Name string `json:"name,omitempty"`
}

// IsVolume reports whether the item names a drive root such as "C:\".
func (s ShellItem) IsVolume() bool {
	return s.Type&itemClassMask == itemVolume
}

// IsFileEntry reports whether the item names a file or directory.
func (s ShellItem) IsFileEntry() bool {
	return s.Type&itemClassMask == itemFileEntry
}

func parseIDList(data []byte, offset int, codePage encoding.Encoding) ([]ShellItem, int, error) {
	if len(data) < offset+2 {
		return nil, 0, malformed(offset, "id list size truncated")
	}
	listSize := int(binary.LittleEndian.Uint16(data[offset : offset+2]))
	end := offset + 2 + listSize
	if len(data) < end {
		return nil, 0, malformed(offset, "id list of %d bytes truncated", listSize)
	}

	items := []ShellItem{}
	cursor := offset + 2
	for {
		if end < cursor+2 {
			return nil, 0, malformed(cursor, "id list missing terminator")
		}
		itemSize := int(binary.LittleEndian.Uint16(data[cursor : cursor+2]))
		if itemSize == 0 {
			break
		}
		if itemSize < 3 || end < cursor+itemSize {
			return nil, 0, malformed(cursor, "invalid shell item size %d", itemSize)
		}
		items = append(items, parseShellItem(data[cursor:cursor+itemSize], codePage))
		cursor += itemSize
	}
	return items, listSize + 2, nil
}

// the item is already bounds checked as a whole, names are read permissively
func parseShellItem(item []byte, codePage encoding.Encoding) ShellItem {
	shellItem := ShellItem{Type: item[2]}
	switch {
	case shellItem.IsVolume():
		shellItem.Name = internal.ReadString(item, 3)
	case shellItem.IsFileEntry():
		shellItem.Name = fileEntryName(item, codePage)
	}
	return shellItem
}

// A file entry item holds a primary name (often the 8.3 short name) at offset
// 14 followed by an optional extension block carrying the long Unicode name.
func fileEntryName(item []byte, codePage encoding.Encoding) string {
	const primaryName = 14
	if len(item) <= primaryName {
		return ""
	}
	if item[2]&itemUnicodeName != 0 {
		return internal.ReadUnicode(item, primaryName)
	}

	name := internal.ReadCodePage(item, primaryName, codePage)
	next := primaryName + len(internal.ReadString(item, primaryName)) + 1
	if next%2 == 1 {
		next++
	}
	if long := extensionLongName(item, next); long != "" {
		return long
	}
	return name
}

// offsets of the long name within the 0xbeef0004 block by block version
var longNameOffsets = map[uint16]int{
	3: 0x14,
	7: 0x26,
	8: 0x2A,
	9: 0x2E,
}

func extensionLongName(item []byte, offset int) string {
	if len(item) < offset+8 {
		return ""
	}
	block := item[offset:]
	size := int(binary.LittleEndian.Uint16(block[0:2]))
	version := binary.LittleEndian.Uint16(block[2:4])
	if binary.LittleEndian.Uint32(block[4:8]) != fileEntryExtension || size > len(block) {
		return ""
	}
	nameOffset, ok := longNameOffsets[version]
	if !ok {
		return ""
	}
	return internal.ReadUnicode(block[:size], nameOffset)
}

// idListPath joins a volume item with the file entries that follow it.
// Anything before the volume (the "My Computer" root folder) is skipped.
func idListPath(items []ShellItem) string {
	var root string
	parts := []string{}
	for _, item := range items {
		switch {
		case item.IsVolume():
			root = item.Name
			parts = parts[:0]
		case item.IsFileEntry() && root != "":
			parts = append(parts, item.Name)
		}
	}
	if root == "" {
		return ""
	}
	if !strings.HasSuffix(root, `\`) {
		root += `\`
	}
	return root + strings.Join(parts, `\`)
}
