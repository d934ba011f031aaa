package lnk

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/ioutil"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding"

	"github.com/andrewstucki/taskbar/internal"
)

const headerSize = 0x0000004C

// the shell link CLSID 00021401-0000-0000-C000-000000000046 in its on-disk byte order
var linkCLSID = []byte{
	0x01, 0x14, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46,
}

// LinkFlags selects which optional structures follow the header.
type LinkFlags uint32

const (
	HasLinkTargetIDList LinkFlags = 1 << iota
	HasLinkInfo
	HasName
	HasRelativePath
	HasWorkingDir
	HasArguments
	HasIconLocation
	IsUnicode
	ForceNoLinkInfo
	HasExpString
	RunInSeparateProcess
	_
	HasDarwinID
	RunAsUser
	HasExpIcon
	NoPidlAlias
	_
	RunWithShimLayer
	ForceNoLinkTrack
	EnableTargetMetadata
	DisableLinkPathTracking
	DisableKnownFolderTracking
	DisableKnownFolderAlias
	AllowLinkToLink
	UnaliasOnSave
	PreferEnvironmentPath
	KeepLocalIDListForUNCTarget
)

// Has reports whether every bit of flag is set.
func (f LinkFlags) Has(flag LinkFlags) bool {
	return f&flag == flag
}

// Header is the fixed-size ShellLinkHeader.
type Header struct {
	Flags          LinkFlags `json:"flags"`
	FileAttributes uint32    `json:"fileAttributes"`
	CreationTime   time.Time `json:"creationTime"`
	AccessTime     time.Time `json:"accessTime"`
	WriteTime      time.Time `json:"writeTime"`
	FileSize       uint32    `json:"fileSize"`
	IconIndex      int32     `json:"iconIndex"`
	ShowCommand    uint32    `json:"showCommand"`
	HotKey         uint16    `json:"hotKey"`
}

// Info is a decoded shortcut.
type Info struct {
	Header     Header      `json:"header"`
	IDList     []ShellItem `json:"idList,omitempty"`
	LinkInfo   *LinkInfo   `json:"linkInfo,omitempty"`
	StringData StringData  `json:"stringData"`
	ExtraData  ExtraData   `json:"extraData"`
}

// Parse reads a whole shortcut from r. Legacy (non-Unicode) strings are
// decoded with codePage; a nil codePage means Windows-1252.
func Parse(r io.Reader, codePage encoding.Encoding) (*Info, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data, codePage)
}

// ParseBytes decodes a shortcut held in memory.
func ParseBytes(data []byte, codePage encoding.Encoding) (*Info, error) {
	if codePage == nil {
		codePage = internal.DefaultCodePage
	}
	header, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	info := &Info{Header: *header}
	offset := headerSize

	if header.Flags.Has(HasLinkTargetIDList) {
		items, size, err := parseIDList(data, offset, codePage)
		if err != nil {
			return nil, err
		}
		info.IDList = items
		offset += size
	}

	if header.Flags.Has(HasLinkInfo) {
		linkInfo, size, err := parseLinkInfo(data, offset, codePage)
		if err != nil {
			return nil, err
		}
		if !header.Flags.Has(ForceNoLinkInfo) {
			info.LinkInfo = linkInfo
		}
		offset += size
	}

	stringData, size, err := parseStringData(data, offset, header.Flags, codePage)
	if err != nil {
		return nil, err
	}
	info.StringData = *stringData
	offset += size

	extraData, err := parseExtraData(data, offset, codePage)
	if err != nil {
		return nil, err
	}
	info.ExtraData = *extraData

	return info, nil
}

func parseHeader(data []byte) (*Header, error) {
	if len(data) < headerSize {
		return nil, malformed(0, "header truncated to %d bytes", len(data))
	}
	if size := binary.LittleEndian.Uint32(data[0:4]); size != headerSize {
		return nil, malformed(0, "invalid header size 0x%x", size)
	}
	if !bytes.Equal(data[4:20], linkCLSID) {
		return nil, malformed(4, "invalid link CLSID")
	}
	return &Header{
		Flags:          LinkFlags(binary.LittleEndian.Uint32(data[20:24])),
		FileAttributes: binary.LittleEndian.Uint32(data[24:28]),
		CreationTime:   filetime(binary.LittleEndian.Uint64(data[28:36])),
		AccessTime:     filetime(binary.LittleEndian.Uint64(data[36:44])),
		WriteTime:      filetime(binary.LittleEndian.Uint64(data[44:52])),
		FileSize:       binary.LittleEndian.Uint32(data[52:56]),
		IconIndex:      int32(binary.LittleEndian.Uint32(data[56:60])),
		ShowCommand:    binary.LittleEndian.Uint32(data[60:64]),
		HotKey:         binary.LittleEndian.Uint16(data[64:66]),
	}, nil
}

// 100ns intervals between 1601-01-01 and the unix epoch
const filetimeEpochDelta = 116444736000000000

func filetime(value uint64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.Unix(0, (int64(value)-filetimeEpochDelta)*100).UTC()
}

// LinkTarget returns a best-effort absolute path of the link target: the
// LinkInfo local or network path when present, otherwise a path rebuilt from
// the shell items of the target ID list.
func (i *Info) LinkTarget() (string, bool) {
	if i.LinkInfo != nil {
		if target := i.LinkInfo.Path(); target != "" {
			return target, true
		}
	}
	if target := idListPath(i.IDList); target != "" {
		return target, true
	}
	return "", false
}

// IconLocation returns the icon path, falling back to the expandable icon
// environment block when StringData carries none.
func (i *Info) IconLocation() (string, bool) {
	if i.StringData.IconLocation != "" {
		return i.StringData.IconLocation, true
	}
	if env := i.ExtraData.IconEnvironment; env != nil {
		if env.Unicode != "" {
			return env.Unicode, true
		}
		if env.ANSI != "" {
			return env.ANSI, true
		}
	}
	return "", false
}

// SplitIconLocation separates a "path,index" icon location into its parts. A
// location without a parsable trailing index is returned whole.
func SplitIconLocation(location string) (string, int, bool) {
	location = strings.Trim(location, `"`)
	comma := strings.LastIndex(location, ",")
	if comma < 0 {
		return location, 0, false
	}
	index, err := strconv.Atoi(strings.TrimSpace(location[comma+1:]))
	if err != nil {
		return location, 0, false
	}
	return strings.Trim(location[:comma], `"`), index, true
}
