package lnk

import (
	"encoding/binary"

	"github.com/go-errors/errors"
	"golang.org/x/text/encoding"

	"github.com/andrewstucki/taskbar/internal"
)

const (
	environmentSignature     uint32 = 0xA0000001
	darwinSignature          uint32 = 0xA0000006
	iconEnvironmentSignature uint32 = 0xA0000007
	shimSignature            uint32 = 0xA0000008

	// every block shaped as 260 ANSI bytes + 520 Unicode bytes shares this size
	expandableBlockSize uint32 = 0x00000314
	shimMinBlockSize    uint32 = 0x00000088
)

// Environment holds the environment-variable form of the link target.
type Environment struct {
	ANSI    string `json:"ansi,omitempty"`
	Unicode string `json:"unicode,omitempty"`
}

// IconEnvironment holds the environment-variable form of the icon location.
type IconEnvironment struct {
	ANSI    string `json:"ansi,omitempty"`
	Unicode string `json:"unicode,omitempty"`
}

// Darwin holds an application identifier used by installer-advertised shortcuts.
type Darwin struct {
	ANSI    string `json:"ansi,omitempty"`
	Unicode string `json:"unicode,omitempty"`
}

// Shim names the compatibility shim layer applied when launching the target.
type Shim struct {
	LayerName string `json:"layerName,omitempty"`
}

// ExtraData holds the recognised blocks of the trailing ExtraData section.
// Unrecognised blocks are skipped.
type ExtraData struct {
	Environment     *Environment     `json:"environment,omitempty"`
	IconEnvironment *IconEnvironment `json:"iconEnvironment,omitempty"`
	Darwin          *Darwin          `json:"darwin,omitempty"`
	Shim            *Shim            `json:"shim,omitempty"`
	Signatures      []uint32         `json:"signatures,omitempty"`
}

func parseExtraData(data []byte, offset int, codePage encoding.Encoding) (*ExtraData, error) {
	extra := &ExtraData{}
	cursor := offset
	// the section always ends with a terminal block smaller than 4
	for {
		if len(data) < cursor+4 {
			return nil, malformed(cursor, "extra data truncated")
		}
		size := binary.LittleEndian.Uint32(data[cursor : cursor+4])
		if size < 4 {
			return extra, nil
		}
		if size < 8 || uint64(len(data)) < uint64(cursor)+uint64(size) {
			return nil, malformed(cursor, "extra data block of %d bytes truncated", size)
		}
		block := data[cursor : cursor+int(size)]
		signature := binary.LittleEndian.Uint32(block[4:8])
		extra.Signatures = append(extra.Signatures, signature)

		var err error
		switch signature {
		case environmentSignature:
			var ansi, unicode string
			if ansi, unicode, err = parseExpandable(size, block, codePage); err == nil {
				extra.Environment = &Environment{ANSI: ansi, Unicode: unicode}
			}
		case iconEnvironmentSignature:
			var ansi, unicode string
			if ansi, unicode, err = parseExpandable(size, block, codePage); err == nil {
				extra.IconEnvironment = &IconEnvironment{ANSI: ansi, Unicode: unicode}
			}
		case darwinSignature:
			var ansi, unicode string
			if ansi, unicode, err = parseExpandable(size, block, codePage); err == nil {
				extra.Darwin = &Darwin{ANSI: ansi, Unicode: unicode}
			}
		case shimSignature:
			extra.Shim, err = parseShim(size, block)
		}
		if err != nil {
			return nil, malformed(cursor, "%v", err)
		}
		cursor += int(size)
	}
}

func parseExpandable(size uint32, block []byte, codePage encoding.Encoding) (string, string, error) {
	if size != expandableBlockSize {
		return "", "", errors.New("invalid expandable block size")
	}
	ansi := internal.ReadCodePage(block[8:268], 0, codePage)
	unicode := internal.ReadUnicode(block[268:788], 0)
	return ansi, unicode, nil
}

func parseShim(size uint32, block []byte) (*Shim, error) {
	if size < shimMinBlockSize {
		return nil, errors.New("invalid extra shim block size")
	}
	return &Shim{
		LayerName: internal.ReadUnicode(block, 8),
	}, nil
}
