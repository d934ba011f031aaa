package pe

import (
	"debug/pe"
	"errors"
	"io"

	"golang.org/x/exp/mmap"
)

var (
	errWrongWidth   = errors.New("optional header has a different width")
	errNoResources  = errors.New("no resource directory")
	errNoRsrcSource = errors.New("resource directory outside of any section")
)

// imageWidth is one interpretation of the optional header. The two layouts
// differ structurally, so each variant only succeeds on its own kind of image.
type imageWidth interface {
	String() string
	resourceDirectory(f *pe.File) (pe.DataDirectory, error)
}

type width64 struct{}

func (width64) String() string { return "x64" }

func (width64) resourceDirectory(f *pe.File) (pe.DataDirectory, error) {
	header, ok := f.OptionalHeader.(*pe.OptionalHeader64)
	if !ok {
		return pe.DataDirectory{}, errWrongWidth
	}
	if header.NumberOfRvaAndSizes < pe.IMAGE_DIRECTORY_ENTRY_RESOURCE+1 {
		return pe.DataDirectory{}, errNoResources
	}
	return header.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_RESOURCE], nil
}

type width32 struct{}

func (width32) String() string { return "x32" }

func (width32) resourceDirectory(f *pe.File) (pe.DataDirectory, error) {
	header, ok := f.OptionalHeader.(*pe.OptionalHeader32)
	if !ok {
		return pe.DataDirectory{}, errWrongWidth
	}
	if header.NumberOfRvaAndSizes < pe.IMAGE_DIRECTORY_ENTRY_RESOURCE+1 {
		return pe.DataDirectory{}, errNoResources
	}
	return header.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_RESOURCE], nil
}

// widths are tried in order, the first one producing an icon wins
var widths = []imageWidth{width64{}, width32{}}

// ExtractIcon returns the first icon group of the image as an .ico file. An
// image without icons is common, so every failure is reported as !ok.
func ExtractIcon(r io.ReaderAt) (*Icon, bool) {
	f, err := pe.NewFile(r)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	for _, width := range widths {
		if icon, err := extract(f, width); err == nil {
			return icon, true
		}
	}
	return nil, false
}

// ExtractIconFile maps the file at path read-only and extracts its icon.
func ExtractIconFile(path string) (*Icon, bool) {
	image, err := mmap.Open(path)
	if err != nil {
		return nil, false
	}
	defer image.Close()

	return ExtractIcon(image)
}

func extract(f *pe.File, width imageWidth) (*Icon, error) {
	directory, err := width.resourceDirectory(f)
	if err != nil {
		return nil, err
	}
	if directory.VirtualAddress == 0 || directory.Size == 0 {
		return nil, errNoResources
	}

	tree, err := loadResourceTree(f, directory)
	if err != nil {
		return nil, err
	}
	resources, err := tree.walk(tree.root, 0, Resource{})
	if err != nil {
		return nil, err
	}
	return firstIconGroup(resources)
}

func loadResourceTree(f *pe.File, directory pe.DataDirectory) (*resourceTree, error) {
	var section *pe.Section
	for _, s := range f.Sections {
		if s.VirtualAddress <= directory.VirtualAddress && directory.VirtualAddress < s.VirtualAddress+s.VirtualSize {
			section = s
			break
		}
	}
	if section == nil {
		return nil, errNoRsrcSource
	}

	data, err := section.Data()
	if err != nil {
		return nil, err
	}
	start := int(directory.VirtualAddress - section.VirtualAddress)
	if start >= len(data) {
		return nil, errInvalidResources
	}
	return &resourceTree{
		root:           data[start:],
		section:        data,
		virtualAddress: section.VirtualAddress,
	}, nil
}
