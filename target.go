package taskbar

import (
	"errors"
	"path/filepath"

	"github.com/andrewstucki/taskbar/lnk"
)

// ErrNoTarget is returned for a shortcut carrying neither an embedded link
// target nor a relative path.
var ErrNoTarget = errors.New("shortcut names no target")

// TargetResolver turns a parsed shortcut into an absolute target path.
type TargetResolver struct {
	shellName  string
	shellPath  string
	volumeRoot string

	canonicalize func(path string) (string, error)
}

// NewTargetResolver builds a resolver that canonicalizes against the real filesystem.
func NewTargetResolver(cfg Config) *TargetResolver {
	return &TargetResolver{
		shellName:    cfg.ShellName,
		shellPath:    cfg.ShellPath,
		volumeRoot:   cfg.VolumeRoot,
		canonicalize: canonicalize,
	}
}

// canonicalize makes path absolute and resolves symlinks, failing when any
// component does not exist.
func canonicalize(path string) (string, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(absolute)
}

func join(base, relative string) string {
	if filepath.IsAbs(relative) {
		return relative
	}
	return filepath.Join(base, relative)
}

// Resolve picks the target path of record, in order:
//
//  1. the configured shell path when displayName is the shell's name
//  2. the embedded link target, verbatim
//  3. working dir joined with the relative path, canonicalized
//  4. the parent of the working dir joined with the relative path, canonicalized
//
// When every candidate fails to canonicalize the empty path is returned with
// a nil error, the shortcut is still shown but can't be launched.
func (r *TargetResolver) Resolve(record *lnk.Info, displayName string) (string, error) {
	if displayName == r.shellName {
		return r.shellPath, nil
	}

	if target, ok := record.LinkTarget(); ok {
		return target, nil
	}

	relative := record.StringData.RelativePath
	if relative == "" {
		return "", ErrNoTarget
	}

	workingDir := record.StringData.WorkingDir
	if path, err := r.canonicalize(join(workingDir, relative)); err == nil {
		return path, nil
	}

	parent := r.volumeRoot
	if workingDir != "" {
		parent = filepath.Dir(filepath.Clean(workingDir))
	}
	if path, err := r.canonicalize(join(parent, relative)); err == nil {
		return path, nil
	}

	// TODO: this keeps shortcuts with dead working directories visible; drop
	// them instead once the bar can mark unlaunchable entries.
	return "", nil
}
