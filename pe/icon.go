package pe

import (
	"encoding/binary"
	"errors"

	"github.com/h2non/filetype"
)

const (
	iconDirSize      = 6
	iconDirEntrySize = 16
	groupEntrySize   = 14

	iconType uint16 = 1

	// raw icon images that aren't PNG are headerless device independent bitmaps
	dibFormat = "image/x-dib"
)

var (
	errNoIconGroup     = errors.New("no icon group")
	errInvalidGroup    = errors.New("invalid icon group")
	errMissingIconData = errors.New("icon group references a missing icon")
)

// Image describes one image of an icon group.
type Image struct {
	ID         uint16 `json:"id"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	ColorCount uint8  `json:"colorCount"`
	Planes     uint16 `json:"planes"`
	BitCount   uint16 `json:"bitCount"`
	Size       int    `json:"size"`
	Format     string `json:"format"`

	data []byte
}

// Icon is an icon group serialized as a standalone .ico file.
type Icon struct {
	Data   []byte  `json:"-"`
	Images []Image `json:"images"`
}

// the icon format stores 256 as 0
func dimension(value byte) int {
	if value == 0 {
		return 256
	}
	return int(value)
}

func imageFormat(data []byte) string {
	if kind, err := filetype.Match(data); err == nil && kind.MIME.Value != "" {
		return kind.MIME.Value
	}
	return dibFormat
}

// firstIconGroup builds the icon for the first RT_GROUP_ICON in directory
// order. Later groups are never consulted, even when the first one is broken.
func firstIconGroup(resources []Resource) (*Icon, error) {
	icons := map[uint32][]byte{}
	var group *Resource
	for i, resource := range resources {
		switch resource.Type {
		case rtIcon:
			// first language wins
			if _, ok := icons[resource.ID]; !ok && resource.Name == "" {
				icons[resource.ID] = resource.Data
			}
		case rtGroupIcon:
			if group == nil {
				group = &resources[i]
			}
		}
	}
	if group == nil {
		return nil, errNoIconGroup
	}

	images, err := parseGroup(group.Data, icons)
	if err != nil {
		return nil, err
	}
	return &Icon{
		Data:   writeIcon(images),
		Images: images,
	}, nil
}

func parseGroup(data []byte, icons map[uint32][]byte) ([]Image, error) {
	if len(data) < iconDirSize {
		return nil, errInvalidGroup
	}
	if binary.LittleEndian.Uint16(data[2:4]) != iconType {
		return nil, errInvalidGroup
	}
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	if count == 0 || len(data) < iconDirSize+count*groupEntrySize {
		return nil, errInvalidGroup
	}

	images := make([]Image, count)
	for i := range images {
		entry := data[iconDirSize+i*groupEntrySize:]
		id := binary.LittleEndian.Uint16(entry[12:14])
		icon, ok := icons[uint32(id)]
		if !ok || len(icon) == 0 {
			return nil, errMissingIconData
		}
		images[i] = Image{
			ID:         id,
			Width:      dimension(entry[0]),
			Height:     dimension(entry[1]),
			ColorCount: entry[2],
			Planes:     binary.LittleEndian.Uint16(entry[4:6]),
			BitCount:   binary.LittleEndian.Uint16(entry[6:8]),
			// the group's declared size is often stale, the resource length is authoritative
			Size:   len(icon),
			Format: imageFormat(icon),
			data:   icon,
		}
	}
	return images, nil
}

// writeIcon lays out ICONDIR, one ICONDIRENTRY per image, then the payloads.
func writeIcon(images []Image) []byte {
	size := iconDirSize + len(images)*iconDirEntrySize
	for _, image := range images {
		size += image.Size
	}
	buf := make([]byte, size)

	binary.LittleEndian.PutUint16(buf[0:], 0) // reserved
	binary.LittleEndian.PutUint16(buf[2:], iconType)
	binary.LittleEndian.PutUint16(buf[4:], uint16(len(images)))

	offset := iconDirSize + len(images)*iconDirEntrySize
	for i, image := range images {
		entry := buf[iconDirSize+i*iconDirEntrySize:]
		entry[0] = byte(image.Width)
		entry[1] = byte(image.Height)
		entry[2] = image.ColorCount
		binary.LittleEndian.PutUint16(entry[4:], image.Planes)
		binary.LittleEndian.PutUint16(entry[6:], image.BitCount)
		binary.LittleEndian.PutUint32(entry[8:], uint32(image.Size))
		binary.LittleEndian.PutUint32(entry[12:], uint32(offset))
		copy(buf[offset:], image.data)
		offset += image.Size
	}
	return buf
}
