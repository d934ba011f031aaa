package taskbar

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrewstucki/taskbar/pe"
)

func TestShortcutArgv(t *testing.T) {
	for _, tt := range []struct {
		args     string
		expected []string
	}{
		{"", []string{}},
		{"   ", []string{}},
		{"-v", []string{"-v"}},
		{" --profile\twork  -v ", []string{"--profile", "work", "-v"}},
		// quotes are not interpreted
		{`"C:\My Files\a.txt" -x`, []string{`"C:\My`, `Files\a.txt"`, "-x"}},
	} {
		t.Run(tt.args, func(t *testing.T) {
			require.Equal(t, tt.expected, Shortcut{Args: tt.args}.Argv())
		})
	}
}

func TestIconDigest(t *testing.T) {
	icon := InlineImageIcon(&pe.Icon{Data: []byte("abc")})
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", icon.Digest())
	require.Empty(t, FilePathIcon(`C:\Icons\app.ico`).Digest())
}

func TestShortcutJSON(t *testing.T) {
	data, err := json.Marshal(Shortcut{
		ID:     "id",
		Name:   "App",
		Target: `C:\App\app.exe`,
		Icon:   FilePathIcon(`C:\Icons\app.ico`),
	})
	require.NoError(t, err)
	require.JSONEq(t, `{
		"id": "id",
		"name": "App",
		"target": "C:\\App\\app.exe",
		"icon": {"kind": "file", "path": "C:\\Icons\\app.ico"},
		"iconIndex": 0,
		"args": ""
	}`, string(data))

	data, err = json.Marshal(InlineImageIcon(&pe.Icon{Data: []byte{1, 2, 3}}))
	require.NoError(t, err)
	require.JSONEq(t, `{"kind": "image"}`, string(data))
}
