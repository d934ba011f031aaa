package pe

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrewstucki/taskbar/pe/petest"
)

var (
	pngImage = append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0xAB}, 56)...)
	dibImage = append([]byte{0x28, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00}, bytes.Repeat([]byte{0xCD}, 100)...)
)

func iconResources() []petest.Resource {
	return []petest.Resource{
		{Type: rtIcon, ID: 1, Data: pngImage},
		{Type: rtIcon, ID: 2, Data: dibImage},
		{Type: rtGroupIcon, ID: 101, Data: petest.Group(
			petest.GroupEntry{Width: 0, Height: 0, BitCount: 32, ID: 1},
			petest.GroupEntry{Width: 16, Height: 16, BitCount: 8, ColorCount: 16, ID: 2},
		)},
	}
}

// icoImages reads an .ico container back and checks its layout invariants.
func icoImages(t *testing.T, data []byte) [][]byte {
	t.Helper()

	require.GreaterOrEqual(t, len(data), iconDirSize)
	require.Equal(t, uint16(0), binary.LittleEndian.Uint16(data[0:2]))
	require.Equal(t, iconType, binary.LittleEndian.Uint16(data[2:4]))
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	require.GreaterOrEqual(t, count, 1)

	expectedSize := iconDirSize + count*iconDirEntrySize
	images := [][]byte{}
	for i := 0; i < count; i++ {
		entry := data[iconDirSize+i*iconDirEntrySize:]
		size := int(binary.LittleEndian.Uint32(entry[8:12]))
		offset := int(binary.LittleEndian.Uint32(entry[12:16]))
		require.Equal(t, expectedSize, offset)
		require.LessOrEqual(t, offset+size, len(data))
		images = append(images, data[offset:offset+size])
		expectedSize += size
	}
	require.Equal(t, expectedSize, len(data))
	return images
}

func TestExtractIcon(t *testing.T) {
	for _, width := range widths {
		t.Run(width.String(), func(t *testing.T) {
			_, wide := width.(width64)
			image := petest.Image(wide, iconResources())

			icon, ok := ExtractIcon(bytes.NewReader(image))
			require.True(t, ok)
			require.Len(t, icon.Images, 2)

			images := icoImages(t, icon.Data)
			require.Equal(t, [][]byte{pngImage, dibImage}, images)

			require.Equal(t, 256, icon.Images[0].Width)
			require.Equal(t, 256, icon.Images[0].Height)
			require.Equal(t, uint16(32), icon.Images[0].BitCount)
			require.Equal(t, "image/png", icon.Images[0].Format)
			require.Equal(t, len(pngImage), icon.Images[0].Size)

			require.Equal(t, 16, icon.Images[1].Width)
			require.Equal(t, uint8(16), icon.Images[1].ColorCount)
			require.Equal(t, dibFormat, icon.Images[1].Format)

			// the 256 pixel dimension round trips as zero
			require.Equal(t, byte(0), icon.Data[iconDirSize])
			require.Equal(t, byte(16), icon.Data[iconDirSize+iconDirEntrySize])
		})
	}
}

func TestExtractIconWidthIndependence(t *testing.T) {
	icon64, ok := ExtractIcon(bytes.NewReader(petest.Image(true, iconResources())))
	require.True(t, ok)
	icon32, ok := ExtractIcon(bytes.NewReader(petest.Image(false, iconResources())))
	require.True(t, ok)

	require.Equal(t, icon64.Data, icon32.Data)
	require.Equal(t, icon64.Images, icon32.Images)
}

func TestWidthVariants(t *testing.T) {
	f64, err := pe.NewFile(bytes.NewReader(petest.Image(true, iconResources())))
	require.NoError(t, err)
	f32, err := pe.NewFile(bytes.NewReader(petest.Image(false, iconResources())))
	require.NoError(t, err)

	_, err = width32{}.resourceDirectory(f64)
	require.Equal(t, errWrongWidth, err)
	_, err = width64{}.resourceDirectory(f32)
	require.Equal(t, errWrongWidth, err)

	directory, err := width64{}.resourceDirectory(f64)
	require.NoError(t, err)
	require.Equal(t, uint32(petest.SectionVirtualAddress), directory.VirtualAddress)
}

func TestExtractFirstGroup(t *testing.T) {
	resources := []petest.Resource{
		{Type: rtIcon, ID: 1, Data: pngImage},
		{Type: rtIcon, ID: 2, Data: dibImage},
		{Type: rtGroupIcon, ID: 7, Data: petest.Group(petest.GroupEntry{Width: 16, Height: 16, BitCount: 8, ID: 2})},
		{Type: rtGroupIcon, ID: 9, Data: petest.Group(petest.GroupEntry{BitCount: 32, ID: 1})},
	}

	icon, ok := ExtractIcon(bytes.NewReader(petest.Image(true, resources)))
	require.True(t, ok)
	require.Len(t, icon.Images, 1)
	require.Equal(t, uint16(2), icon.Images[0].ID)
	require.Equal(t, [][]byte{dibImage}, icoImages(t, icon.Data))
}

func TestExtractIconMissing(t *testing.T) {
	for name, image := range map[string][]byte{
		"not an image": []byte("definitely not a portable executable"),
		"no resources": petest.Image(true, nil),
		"no icon group": petest.Image(false, []petest.Resource{
			{Type: rtIcon, ID: 1, Data: pngImage},
		}),
		"group without icon data": petest.Image(true, []petest.Resource{
			{Type: rtGroupIcon, ID: 1, Data: petest.Group(petest.GroupEntry{BitCount: 32, ID: 5})},
		}),
		"empty group": petest.Image(true, []petest.Resource{
			{Type: rtIcon, ID: 1, Data: pngImage},
			{Type: rtGroupIcon, ID: 1, Data: petest.Group()},
		}),
		"truncated": petest.Image(true, iconResources())[:0x180],
	} {
		t.Run(name, func(t *testing.T) {
			icon, ok := ExtractIcon(bytes.NewReader(image))
			require.False(t, ok)
			require.Nil(t, icon)
		})
	}
}

func TestExtractIconFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.exe")
	require.NoError(t, os.WriteFile(path, petest.Image(false, iconResources()), 0644))

	icon, ok := ExtractIconFile(path)
	require.True(t, ok)
	require.Len(t, icoImages(t, icon.Data), 2)

	_, ok = ExtractIconFile(filepath.Join(t.TempDir(), "missing.exe"))
	require.False(t, ok)
}
