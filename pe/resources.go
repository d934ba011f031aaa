package pe

import (
	"encoding/binary"
	"errors"
	"unicode/utf16"
)

const (
	rtIcon      uint32 = 3
	rtGroupIcon uint32 = 14
)

// the tree is type -> name -> language, anything deeper is malformed
const maxResourceDepth = 3

var errInvalidResources = errors.New("invalid resource directory")

// Resource is a leaf of the resource directory tree.
type Resource struct {
	Type     uint32
	ID       uint32
	Name     string
	Language uint16

	Data []byte
}

type resourceTree struct {
	// section bytes starting at the resource directory root, all directory
	// offsets are relative to this
	root []byte
	// the whole section and its RVA, leaf data is addressed by RVA
	section        []byte
	virtualAddress uint32
}

func isHighBit(value uint32) bool {
	return (value & 0x80000000) > 0
}

func lowBits(value uint32) int {
	return int(value & 0x7fffffff)
}

// follow does a bounds check on the slice at offset within root
func (t *resourceTree) follow(value uint32, requiredSize int) ([]byte, error) {
	offset := lowBits(value)
	if len(t.root) < offset+requiredSize {
		return nil, errInvalidResources
	}
	return t.root[offset:], nil
}

// walk returns the leaves in directory order. We don't sanity check things
// like entry counts against the directory size, we only bounds check what we
// read, and anything out of bounds fails the whole walk.
func (t *resourceTree) walk(base []byte, depth int, parent Resource) ([]Resource, error) {
	if depth >= maxResourceDepth || len(base) < 16 {
		return nil, errInvalidResources
	}
	namedEntries := binary.LittleEndian.Uint16(base[12:14])
	idEntries := binary.LittleEndian.Uint16(base[14:16])
	numEntries := int(namedEntries) + int(idEntries)
	entriesData := base[16:]
	if len(entriesData) < numEntries*8 {
		return nil, errInvalidResources
	}

	resources := []Resource{}
	for i := 0; i < numEntries; i++ {
		entry := entriesData[8*i : 8*i+8]
		current := parent
		id := binary.LittleEndian.Uint32(entry[0:4])
		switch depth {
		case 0:
			current.Type = id
		case 1:
			if isHighBit(id) {
				name, err := t.name(id)
				if err != nil {
					return nil, err
				}
				current.Name = name
			} else {
				current.ID = id
			}
		case 2:
			current.Language = uint16(id)
		}

		offset := binary.LittleEndian.Uint32(entry[4:8])
		if isHighBit(offset) {
			next, err := t.follow(offset, 16)
			if err != nil {
				return nil, err
			}
			children, err := t.walk(next, depth+1, current)
			if err != nil {
				return nil, err
			}
			resources = append(resources, children...)
			continue
		}

		data, err := t.leaf(offset)
		if err != nil {
			return nil, err
		}
		current.Data = data
		resources = append(resources, current)
	}
	return resources, nil
}

func (t *resourceTree) name(value uint32) (string, error) {
	nameData, err := t.follow(value, 2)
	if err != nil {
		return "", err
	}
	length := int(binary.LittleEndian.Uint16(nameData[0:2]))
	if len(nameData) < 2+length*2 {
		return "", errInvalidResources
	}
	encoded := make([]uint16, length)
	for i := range encoded {
		encoded[i] = binary.LittleEndian.Uint16(nameData[2+2*i:])
	}
	return string(utf16.Decode(encoded)), nil
}

func (t *resourceTree) leaf(value uint32) ([]byte, error) {
	entry, err := t.follow(value, 16)
	if err != nil {
		return nil, err
	}
	dataRVA := binary.LittleEndian.Uint32(entry[0:4])
	dataSize := int(binary.LittleEndian.Uint32(entry[4:8]))
	if dataRVA < t.virtualAddress {
		return nil, errInvalidResources
	}
	offset := int(dataRVA - t.virtualAddress)
	if offset+dataSize > len(t.section) || offset+dataSize < offset {
		return nil, errInvalidResources
	}
	return t.section[offset : offset+dataSize], nil
}
