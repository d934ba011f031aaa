package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrewstucki/taskbar"
	"github.com/andrewstucki/taskbar/pe"
)

func TestWriteIcons(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "icons")
	shared := taskbar.InlineImageIcon(&pe.Icon{Data: []byte{0, 0, 1, 0, 0, 0}})
	other := taskbar.InlineImageIcon(&pe.Icon{Data: []byte{0, 0, 1, 0, 1, 0}})

	require.NoError(t, writeIcons(dir, []taskbar.Shortcut{
		{Name: "One", Icon: shared},
		{Name: "Two", Icon: shared},
		{Name: "Three", Icon: other},
		{Name: "File", Icon: taskbar.FilePathIcon(`C:\Icons\app.ico`)},
		{Name: "None"},
	}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	data, err := ioutil.ReadFile(filepath.Join(dir, shared.Digest()+".ico"))
	require.NoError(t, err)
	require.Equal(t, shared.Image, data)
}

func TestWriteIconsFailure(t *testing.T) {
	// a file where the directory should be
	parent := filepath.Join(t.TempDir(), "icons")
	require.NoError(t, ioutil.WriteFile(parent, nil, 0644))

	err := writeIcons(filepath.Join(parent, "nested"), []taskbar.Shortcut{
		{Name: "One", Icon: taskbar.InlineImageIcon(&pe.Icon{Data: []byte{0, 0, 1, 0, 0, 0}})},
	})
	require.Error(t, err)
}
