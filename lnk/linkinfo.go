package lnk

import (
	"encoding/binary"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/andrewstucki/taskbar/internal"
)

const (
	volumeIDAndLocalBasePath               uint32 = 0x1
	commonNetworkRelativeLinkAndPathSuffix uint32 = 0x2

	linkInfoMinHeader     = 0x1C
	linkInfoUnicodeHeader = 0x24
)

// LinkInfo holds the location information needed to resolve a link target.
type LinkInfo struct {
	LocalBasePath    string `json:"localBasePath,omitempty"`
	NetName          string `json:"netName,omitempty"`
	CommonPathSuffix string `json:"commonPathSuffix,omitempty"`
}

// Path joins the base path (local or network) with the common path suffix.
func (l *LinkInfo) Path() string {
	base := l.LocalBasePath
	if base == "" {
		base = l.NetName
	}
	if base == "" {
		return ""
	}
	if l.CommonPathSuffix == "" {
		return base
	}
	if !strings.HasSuffix(base, `\`) {
		base += `\`
	}
	return base + l.CommonPathSuffix
}

func parseLinkInfo(data []byte, offset int, codePage encoding.Encoding) (*LinkInfo, int, error) {
	if len(data) < offset+linkInfoMinHeader {
		return nil, 0, malformed(offset, "link info header truncated")
	}
	base := data[offset:]
	size := int(binary.LittleEndian.Uint32(base[0:4]))
	headerSize := int(binary.LittleEndian.Uint32(base[4:8]))
	if size < linkInfoMinHeader || len(base) < size {
		return nil, 0, malformed(offset, "invalid link info size %d", size)
	}
	if headerSize < linkInfoMinHeader || headerSize > size {
		return nil, 0, malformed(offset+4, "invalid link info header size %d", headerSize)
	}
	block := base[:size]

	flags := binary.LittleEndian.Uint32(block[8:12])
	localBasePathOffset := int(binary.LittleEndian.Uint32(block[16:20]))
	networkLinkOffset := int(binary.LittleEndian.Uint32(block[20:24]))
	suffixOffset := int(binary.LittleEndian.Uint32(block[24:28]))

	info := &LinkInfo{
		CommonPathSuffix: readOffset(block, suffixOffset, codePage),
	}
	if flags&volumeIDAndLocalBasePath != 0 {
		info.LocalBasePath = readOffset(block, localBasePathOffset, codePage)
	}
	if flags&commonNetworkRelativeLinkAndPathSuffix != 0 {
		info.NetName = parseNetName(block, networkLinkOffset, codePage)
	}

	// unicode variants are preferred whenever the header is large enough to carry them
	if headerSize >= linkInfoUnicodeHeader {
		if flags&volumeIDAndLocalBasePath != 0 {
			if path := readOffset(block, int(binary.LittleEndian.Uint32(block[28:32])), nil); path != "" {
				info.LocalBasePath = path
			}
		}
		if suffix := readOffset(block, int(binary.LittleEndian.Uint32(block[32:36])), nil); suffix != "" {
			info.CommonPathSuffix = suffix
		}
	}
	return info, size, nil
}

func parseNetName(block []byte, offset int, codePage encoding.Encoding) string {
	if offset <= 0 || len(block) < offset+0x14 {
		return ""
	}
	link := block[offset:]
	netNameOffset := int(binary.LittleEndian.Uint32(link[8:12]))
	if netNameOffset > 0x14 && len(link) >= 0x1C {
		if name := readOffset(link, int(binary.LittleEndian.Uint32(link[20:24])), nil); name != "" {
			return name
		}
	}
	return readOffset(link, netNameOffset, codePage)
}

// readOffset reads a string at a structure-relative offset where zero means
// absent. A nil code page selects UTF-16.
func readOffset(block []byte, offset int, codePage encoding.Encoding) string {
	if offset <= 0 {
		return ""
	}
	if codePage == nil {
		return internal.ReadUnicode(block, offset)
	}
	return internal.ReadCodePage(block, offset, codePage)
}
