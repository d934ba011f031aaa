// Package petest assembles minimal PE32 and PE32+ images for tests.
package petest

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"sort"
)

const (
	// SectionVirtualAddress is where the single .rsrc section is mapped.
	SectionVirtualAddress = 0x1000

	fileAlignment    = 0x200
	sectionAlignment = 0x1000
)

// Resource is a leaf placed under Type/ID with language 0x409.
type Resource struct {
	Type uint32
	ID   uint32
	Data []byte
}

// GroupEntry is one GRPICONDIRENTRY.
type GroupEntry struct {
	Width      byte
	Height     byte
	ColorCount byte
	BitCount   uint16
	ID         uint16
}

// Group encodes an RT_GROUP_ICON payload. The declared sizes are left at
// zero, readers take sizes from the referenced RT_ICON resources.
func Group(entries ...GroupEntry) []byte {
	buf := make([]byte, 6+14*len(entries))
	binary.LittleEndian.PutUint16(buf[2:], 1)
	binary.LittleEndian.PutUint16(buf[4:], uint16(len(entries)))
	for i, entry := range entries {
		e := buf[6+14*i:]
		e[0] = entry.Width
		e[1] = entry.Height
		e[2] = entry.ColorCount
		binary.LittleEndian.PutUint16(e[4:], 1)
		binary.LittleEndian.PutUint16(e[6:], entry.BitCount)
		binary.LittleEndian.PutUint16(e[12:], entry.ID)
	}
	return buf
}

// Image builds an executable with one .rsrc section holding resources. wide
// selects a PE32+ (x64) optional header, otherwise PE32 (x86). A nil resource
// list leaves the resource data directory empty.
func Image(wide bool, resources []Resource) []byte {
	var rsrc []byte
	if resources != nil {
		rsrc = ResourceSection(SectionVirtualAddress, resources)
	} else {
		rsrc = make([]byte, 16)
	}
	rawSize := align(len(rsrc), fileAlignment)

	resourceDirectory := pe.DataDirectory{}
	if resources != nil {
		resourceDirectory = pe.DataDirectory{VirtualAddress: SectionVirtualAddress, Size: uint32(len(rsrc))}
	}
	sizeOfImage := uint32(SectionVirtualAddress + align(len(rsrc), sectionAlignment))

	var optionalHeader interface{}
	machine := uint16(pe.IMAGE_FILE_MACHINE_I386)
	if wide {
		machine = pe.IMAGE_FILE_MACHINE_AMD64
		header := pe.OptionalHeader64{
			Magic:               0x20b,
			ImageBase:           0x140000000,
			SectionAlignment:    sectionAlignment,
			FileAlignment:       fileAlignment,
			SizeOfImage:         sizeOfImage,
			SizeOfHeaders:       fileAlignment,
			Subsystem:           pe.IMAGE_SUBSYSTEM_WINDOWS_GUI,
			NumberOfRvaAndSizes: 16,
		}
		header.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_RESOURCE] = resourceDirectory
		optionalHeader = header
	} else {
		header := pe.OptionalHeader32{
			Magic:               0x10b,
			ImageBase:           0x400000,
			SectionAlignment:    sectionAlignment,
			FileAlignment:       fileAlignment,
			SizeOfImage:         sizeOfImage,
			SizeOfHeaders:       fileAlignment,
			Subsystem:           pe.IMAGE_SUBSYSTEM_WINDOWS_GUI,
			NumberOfRvaAndSizes: 16,
		}
		header.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_RESOURCE] = resourceDirectory
		optionalHeader = header
	}

	buf := &bytes.Buffer{}
	dos := make([]byte, 0x40)
	dos[0], dos[1] = 'M', 'Z'
	binary.LittleEndian.PutUint32(dos[0x3c:], 0x40)
	buf.Write(dos)
	buf.WriteString("PE\x00\x00")

	binary.Write(buf, binary.LittleEndian, pe.FileHeader{
		Machine:              machine,
		NumberOfSections:     1,
		SizeOfOptionalHeader: uint16(binary.Size(optionalHeader)),
		Characteristics:      pe.IMAGE_FILE_EXECUTABLE_IMAGE,
	})
	binary.Write(buf, binary.LittleEndian, optionalHeader)

	section := pe.SectionHeader32{
		VirtualSize:      uint32(len(rsrc)),
		VirtualAddress:   SectionVirtualAddress,
		SizeOfRawData:    uint32(rawSize),
		PointerToRawData: fileAlignment,
		Characteristics:  0x40000040,
	}
	copy(section.Name[:], ".rsrc")
	binary.Write(buf, binary.LittleEndian, section)

	buf.Write(make([]byte, fileAlignment-buf.Len()))
	buf.Write(rsrc)
	buf.Write(make([]byte, rawSize-len(rsrc)))
	return buf.Bytes()
}

// ResourceSection lays out a type -> id -> language directory tree followed
// by the data entries and the data itself. Types and ids are sorted the way
// resource compilers emit them.
func ResourceSection(virtualAddress uint32, resources []Resource) []byte {
	byType := map[uint32][]Resource{}
	types := []uint32{}
	for _, resource := range resources {
		if _, ok := byType[resource.Type]; !ok {
			types = append(types, resource.Type)
		}
		byType[resource.Type] = append(byType[resource.Type], resource)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	ordered := []Resource{}
	for _, typ := range types {
		entries := byType[typ]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
		ordered = append(ordered, entries...)
	}

	offset := 16 + 8*len(types)
	typeDirectories := map[uint32]int{}
	for _, typ := range types {
		typeDirectories[typ] = offset
		offset += 16 + 8*len(byType[typ])
	}
	languageDirectories := make([]int, len(ordered))
	for i := range ordered {
		languageDirectories[i] = offset
		offset += 16 + 8
	}
	dataEntries := make([]int, len(ordered))
	for i := range ordered {
		dataEntries[i] = offset
		offset += 16
	}
	dataOffsets := make([]int, len(ordered))
	for i, resource := range ordered {
		offset = align(offset, 8)
		dataOffsets[i] = offset
		offset += len(resource.Data)
	}
	buf := make([]byte, offset)

	typeIDs := []uint32{}
	typeTargets := []uint32{}
	for _, typ := range types {
		typeIDs = append(typeIDs, typ)
		typeTargets = append(typeTargets, 0x80000000|uint32(typeDirectories[typ]))
	}
	writeDirectory(buf[0:], typeIDs, typeTargets)

	index := 0
	for _, typ := range types {
		ids := []uint32{}
		targets := []uint32{}
		for range byType[typ] {
			ids = append(ids, ordered[index].ID)
			targets = append(targets, 0x80000000|uint32(languageDirectories[index]))
			index++
		}
		writeDirectory(buf[typeDirectories[typ]:], ids, targets)
	}

	for i, resource := range ordered {
		writeDirectory(buf[languageDirectories[i]:], []uint32{0x409}, []uint32{uint32(dataEntries[i])})
		entry := buf[dataEntries[i]:]
		binary.LittleEndian.PutUint32(entry[0:], virtualAddress+uint32(dataOffsets[i]))
		binary.LittleEndian.PutUint32(entry[4:], uint32(len(resource.Data)))
		copy(buf[dataOffsets[i]:], resource.Data)
	}
	return buf
}

func writeDirectory(buf []byte, ids, targets []uint32) {
	binary.LittleEndian.PutUint16(buf[14:], uint16(len(ids)))
	for i := range ids {
		binary.LittleEndian.PutUint32(buf[16+8*i:], ids[i])
		binary.LittleEndian.PutUint32(buf[20+8*i:], targets[i])
	}
}

func align(value, alignment int) int {
	return (value + alignment - 1) / alignment * alignment
}
