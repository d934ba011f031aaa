// Package lnktest builds shell link files for tests.
package lnktest

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// Shortcut describes the shortcut to write. Zero values leave the
// corresponding structure out.
type Shortcut struct {
	IconIndex int32
	Unicode   bool

	// LinkTargetIDList: a "My Computer" root, the volume and one file entry
	// per path element
	Volume string
	Path   []string

	// LinkInfo
	LocalBasePath    string
	CommonPathSuffix string

	Name         string
	RelativePath string
	WorkingDir   string
	Arguments    string
	IconLocation string

	IconEnvironment string
}

const (
	hasLinkTargetIDList = 1 << 0
	hasLinkInfo         = 1 << 1
	hasName             = 1 << 2
	hasRelativePath     = 1 << 3
	hasWorkingDir       = 1 << 4
	hasArguments        = 1 << 5
	hasIconLocation     = 1 << 6
	isUnicode           = 1 << 7
)

var clsid = []byte{
	0x01, 0x14, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46,
}

// Bytes encodes the shortcut. Legacy strings are written as Windows-1252.
func (s Shortcut) Bytes() []byte {
	var flags uint32
	body := &bytes.Buffer{}

	if s.Volume != "" {
		flags |= hasLinkTargetIDList
		body.Write(s.idList())
	}
	if s.LocalBasePath != "" {
		flags |= hasLinkInfo
		body.Write(s.linkInfo())
	}
	if s.Unicode {
		flags |= isUnicode
	}
	strs := []struct {
		flag  uint32
		value string
	}{
		{hasName, s.Name},
		{hasRelativePath, s.RelativePath},
		{hasWorkingDir, s.WorkingDir},
		{hasArguments, s.Arguments},
		{hasIconLocation, s.IconLocation},
	}
	for _, str := range strs {
		if str.value == "" {
			continue
		}
		flags |= str.flag
		body.Write(s.countedString(str.value))
	}
	if s.IconEnvironment != "" {
		body.Write(iconEnvironment(s.IconEnvironment))
	}
	// terminal block
	body.Write([]byte{0, 0, 0, 0})

	header := make([]byte, 0x4C)
	binary.LittleEndian.PutUint32(header[0:4], 0x4C)
	copy(header[4:20], clsid)
	binary.LittleEndian.PutUint32(header[20:24], flags)
	binary.LittleEndian.PutUint32(header[56:60], uint32(s.IconIndex))
	binary.LittleEndian.PutUint32(header[60:64], 1)
	return append(header, body.Bytes()...)
}

func (s Shortcut) countedString(value string) []byte {
	out := &bytes.Buffer{}
	if s.Unicode {
		encoded := utf16.Encode([]rune(value))
		binary.Write(out, binary.LittleEndian, uint16(len(encoded)))
		binary.Write(out, binary.LittleEndian, encoded)
		return out.Bytes()
	}
	raw := ansi(value)
	binary.Write(out, binary.LittleEndian, uint16(len(raw)))
	out.Write(raw)
	return out.Bytes()
}

func (s Shortcut) idList() []byte {
	items := &bytes.Buffer{}

	root := make([]byte, 20)
	binary.LittleEndian.PutUint16(root[0:2], 20)
	root[2] = 0x1F
	root[3] = 0x50
	items.Write(root)

	volume := make([]byte, 25)
	binary.LittleEndian.PutUint16(volume[0:2], 25)
	volume[2] = 0x2F
	copy(volume[3:], s.Volume)
	items.Write(volume)

	for i, name := range s.Path {
		entry := make([]byte, 14)
		entry[2] = 0x31
		if i == len(s.Path)-1 {
			entry[2] = 0x32
		}
		entry = append(entry, ansi(name)...)
		entry = append(entry, 0)
		if len(entry)%2 == 1 {
			entry = append(entry, 0)
		}
		binary.LittleEndian.PutUint16(entry[0:2], uint16(len(entry)))
		items.Write(entry)
	}
	items.Write([]byte{0, 0})

	out := make([]byte, 2, 2+items.Len())
	binary.LittleEndian.PutUint16(out, uint16(items.Len()))
	return append(out, items.Bytes()...)
}

func (s Shortcut) linkInfo() []byte {
	headerSize := 0x1C
	if s.Unicode {
		headerSize = 0x24
	}
	volumeID := make([]byte, 0x11)
	binary.LittleEndian.PutUint32(volumeID[0:4], 0x11)
	binary.LittleEndian.PutUint32(volumeID[4:8], 3)
	binary.LittleEndian.PutUint32(volumeID[12:16], 0x10)

	body := &bytes.Buffer{}
	body.Write(volumeID)
	localBasePath := headerSize + body.Len()
	body.Write(append(ansi(s.LocalBasePath), 0))
	suffix := headerSize + body.Len()
	body.Write(append(ansi(s.CommonPathSuffix), 0))

	var localBasePathUnicode, suffixUnicode int
	if s.Unicode {
		localBasePathUnicode = headerSize + body.Len()
		body.Write(unicode(s.LocalBasePath))
		suffixUnicode = headerSize + body.Len()
		body.Write(unicode(s.CommonPathSuffix))
	}

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:4], uint32(headerSize+body.Len()))
	binary.LittleEndian.PutUint32(header[4:8], uint32(headerSize))
	binary.LittleEndian.PutUint32(header[8:12], 1)
	binary.LittleEndian.PutUint32(header[12:16], uint32(headerSize))
	binary.LittleEndian.PutUint32(header[16:20], uint32(localBasePath))
	binary.LittleEndian.PutUint32(header[24:28], uint32(suffix))
	if s.Unicode {
		binary.LittleEndian.PutUint32(header[28:32], uint32(localBasePathUnicode))
		binary.LittleEndian.PutUint32(header[32:36], uint32(suffixUnicode))
	}
	return append(header, body.Bytes()...)
}

func iconEnvironment(value string) []byte {
	block := make([]byte, 0x314)
	binary.LittleEndian.PutUint32(block[0:4], 0x314)
	binary.LittleEndian.PutUint32(block[4:8], 0xA0000007)
	copy(block[8:268], ansi(value))
	copy(block[268:788], unicode(value))
	return block
}

func ansi(value string) []byte {
	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(value))
	if err != nil {
		return []byte(value)
	}
	return encoded
}

func unicode(value string) []byte {
	encoded := utf16.Encode([]rune(value))
	out := make([]byte, 2*len(encoded)+2)
	for i, unit := range encoded {
		binary.LittleEndian.PutUint16(out[2*i:], unit)
	}
	return out
}
