package taskbar

import (
	"path/filepath"
	"strings"

	"github.com/andrewstucki/taskbar/lnk"
	"github.com/andrewstucki/taskbar/pe"
)

// IconResolver picks the icon shown for a shortcut.
type IconResolver struct {
	extract func(path string) (*pe.Icon, bool)
}

// NewIconResolver extracts icons from executables on disk.
func NewIconResolver() *IconResolver {
	return &IconResolver{extract: pe.ExtractIconFile}
}

func isExecutable(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".exe")
}

// Resolve prefers an explicit, non-executable icon location from the string
// data, which is returned as a path without touching the target. The
// unexpanded icon environment block is not consulted. Otherwise the first icon
// group of target is extracted. A nil Icon means none could be found.
func (r *IconResolver) Resolve(record *lnk.Info, target string) *Icon {
	if location := record.StringData.IconLocation; location != "" {
		path, _, _ := lnk.SplitIconLocation(location)
		if path != "" && !isExecutable(path) {
			return FilePathIcon(path)
		}
	}

	if target == "" {
		return nil
	}
	icon, ok := r.extract(target)
	if !ok {
		return nil
	}
	return InlineImageIcon(icon)
}
