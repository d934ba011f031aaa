package taskbar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrewstucki/taskbar/lnk"
)

// touch creates an empty file and its parents, returning the canonical path.
func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, nil, 0644))
	canonical, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return canonical
}

func relativeRecord(workingDir, relativePath string) *lnk.Info {
	return &lnk.Info{StringData: lnk.StringData{WorkingDir: workingDir, RelativePath: relativePath}}
}

func TestResolveShellName(t *testing.T) {
	resolver := NewTargetResolver(DefaultConfig())
	record := &lnk.Info{LinkInfo: &lnk.LinkInfo{LocalBasePath: `D:\Elsewhere\other.exe`}}

	target, err := resolver.Resolve(record, "File Explorer")
	require.NoError(t, err)
	require.Equal(t, `C:\Windows\explorer.exe`, target)

	// without the name the embedded target is used
	target, err = resolver.Resolve(record, "Other")
	require.NoError(t, err)
	require.Equal(t, `D:\Elsewhere\other.exe`, target)
}

func TestResolveLinkTargetVerbatim(t *testing.T) {
	resolver := NewTargetResolver(DefaultConfig())
	record := &lnk.Info{
		LinkInfo:   &lnk.LinkInfo{LocalBasePath: `C:\Program Files\App\..\App\app.exe`},
		StringData: lnk.StringData{RelativePath: "ignored.exe"},
	}

	target, err := resolver.Resolve(record, "App")
	require.NoError(t, err)
	require.Equal(t, `C:\Program Files\App\..\App\app.exe`, target)
}

func TestResolveRelativePath(t *testing.T) {
	root := t.TempDir()
	expected := touch(t, filepath.Join(root, "app", "lib", "tool.exe"))
	workingDir := filepath.Join(root, "app", "bin")
	require.NoError(t, os.MkdirAll(workingDir, 0755))

	resolver := NewTargetResolver(DefaultConfig())
	target, err := resolver.Resolve(relativeRecord(workingDir, filepath.Join("..", "lib", "tool.exe")), "Tool")
	require.NoError(t, err)
	require.Equal(t, expected, target)
}

func TestResolveParentFallback(t *testing.T) {
	root := t.TempDir()
	expected := touch(t, filepath.Join(root, "app", "tool.exe"))
	// the working directory itself is gone
	workingDir := filepath.Join(root, "app", "removed")

	resolver := NewTargetResolver(DefaultConfig())
	target, err := resolver.Resolve(relativeRecord(workingDir, "tool.exe"), "Tool")
	require.NoError(t, err)
	require.Equal(t, expected, target)
}

func TestResolveVolumeRootFallback(t *testing.T) {
	root := t.TempDir()
	expected := touch(t, filepath.Join(root, "only-at-root-"+t.Name()+".exe"))

	cfg := DefaultConfig()
	cfg.VolumeRoot = root
	resolver := NewTargetResolver(cfg)

	target, err := resolver.Resolve(relativeRecord("", filepath.Base(expected)), "Tool")
	require.NoError(t, err)
	require.Equal(t, expected, target)
}

// Exhausting every fallback yields an empty, unlaunchable target rather than
// an error. This mirrors long standing behavior and is pinned here as a
// boundary condition, not as something consumers should rely on.
func TestResolveExhaustedFallbacks(t *testing.T) {
	root := t.TempDir()
	resolver := NewTargetResolver(DefaultConfig())

	target, err := resolver.Resolve(relativeRecord(filepath.Join(root, "gone", "deeper"), "tool.exe"), "Tool")
	require.NoError(t, err)
	require.Empty(t, target)
}

func TestResolveNoTarget(t *testing.T) {
	resolver := NewTargetResolver(DefaultConfig())

	_, err := resolver.Resolve(&lnk.Info{StringData: lnk.StringData{Arguments: "--only-args"}}, "Nothing")
	require.ErrorIs(t, err, ErrNoTarget)
}

func TestResolveCanonicalizeOrder(t *testing.T) {
	attempts := []string{}
	resolver := NewTargetResolver(DefaultConfig())
	resolver.canonicalize = func(path string) (string, error) {
		attempts = append(attempts, path)
		return "", os.ErrNotExist
	}

	workingDir := filepath.Join("base", "work")
	target, err := resolver.Resolve(relativeRecord(workingDir, "tool.exe"), "Tool")
	require.NoError(t, err)
	require.Empty(t, target)
	require.Equal(t, []string{
		filepath.Join("base", "work", "tool.exe"),
		filepath.Join("base", "tool.exe"),
	}, attempts)
}
