package taskbar

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"golang.org/x/text/encoding"

	"github.com/andrewstucki/taskbar/internal/logging"
	"github.com/andrewstucki/taskbar/lnk"
)

const (
	shortcutMIME      = "application/x-ms-shortcut"
	shortcutExtension = ".lnk"
	// enough of the header for the matcher
	sniffSize = 4
)

// ErrNotShortcut is returned for files that don't start like a shell link.
var ErrNotShortcut = errors.New("not a shell link")

func init() {
	filetype.AddMatcher(filetype.NewType(shortcutMIME, shortcutMIME), lnkMatcher)
}

func lnkMatcher(buf []byte) bool {
	return len(buf) > 3 && (buf[0] == 0x4C && buf[1] == 0x00 && buf[2] == 0x00 && buf[3] == 0x00)
}

func isShortcut(header []byte) bool {
	kind, err := filetype.Match(header)
	return err == nil && kind.MIME.Value == shortcutMIME
}

// readShortcut sniffs the start of the file and only reads the rest when it
// looks like a shell link.
func readShortcut(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := make([]byte, sniffSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	if !isShortcut(header[:n]) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotShortcut)
	}

	rest, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return append(header, rest...), nil
}

// Logger receives the degraded outcomes of an enumeration pass.
type Logger = logging.Logger

// Enumerator produces the launch descriptors for the pinned shortcuts.
type Enumerator struct {
	dir      string
	codePage encoding.Encoding
	targets  *TargetResolver
	icons    *IconResolver
	logger   Logger
}

// NewEnumerator validates cfg and wires the resolvers. A nil logger discards
// everything.
func NewEnumerator(cfg Config, logger Logger) (*Enumerator, error) {
	codePage, err := cfg.Encoding()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Enumerator{
		dir:      cfg.Dir(),
		codePage: codePage,
		targets:  NewTargetResolver(cfg),
		icons:    NewIconResolver(),
		logger:   logger,
	}, nil
}

// Dir is the directory Enumerate reads.
func (e *Enumerator) Dir() string {
	return e.dir
}

// Enumerate runs one pass over the pinned directory and returns a fresh
// collection in directory order. A missing or unreadable directory yields an
// empty collection, and a shortcut that fails to load is left out without
// affecting the others.
func (e *Enumerator) Enumerate() []Shortcut {
	paths := e.candidates()

	loaded := make([]*Shortcut, len(paths))
	for i, path := range paths {
		loaded[i] = e.tryLoad(path)
	}

	shortcuts := []Shortcut{}
	for _, shortcut := range loaded {
		if shortcut != nil {
			shortcuts = append(shortcuts, *shortcut)
		}
	}
	return shortcuts
}

// candidates lists the shortcut files directly inside the directory without
// sorting them.
func (e *Enumerator) candidates() []string {
	dir, err := os.Open(e.dir)
	if err != nil {
		if os.IsNotExist(err) {
			e.logger.Warn("pinned directory not found", "dir", e.dir)
		} else {
			e.logger.Warn("pinned directory unreadable", "dir", e.dir, "error", err)
		}
		return nil
	}
	defer dir.Close()

	entries, err := dir.ReadDir(-1)
	if err != nil {
		e.logger.Warn("pinned directory unreadable", "dir", e.dir, "error", err)
		return nil
	}

	paths := []string{}
	for _, entry := range entries {
		if !strings.EqualFold(filepath.Ext(entry.Name()), shortcutExtension) {
			continue
		}
		path := filepath.Join(e.dir, entry.Name())
		// follows symlinks, a link to a shortcut counts
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

func (e *Enumerator) tryLoad(path string) *Shortcut {
	shortcut, err := e.Load(path)
	if err != nil {
		e.logger.Warn("skipping shortcut", "path", path, "error", err)
		return nil
	}
	return shortcut
}

// Load builds the descriptor for a single shortcut file. An unresolvable
// target or a missing icon degrade the descriptor, only an unreadable or
// malformed file is an error.
func (e *Enumerator) Load(path string) (*Shortcut, error) {
	data, err := readShortcut(path)
	if err != nil {
		return nil, err
	}
	record, err := lnk.ParseBytes(data, e.codePage)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		name = base
	}

	target, err := e.targets.Resolve(record, name)
	if err != nil {
		return nil, err
	}
	if target == "" {
		e.logger.Warn("target unresolved", "name", name, "path", path)
	}

	icon := e.icons.Resolve(record, target)
	if icon == nil {
		e.logger.Debug("icon unavailable", "name", name, "target", target)
	}

	return &Shortcut{
		ID:        uuid.NewString(),
		Name:      name,
		Target:    target,
		Icon:      icon,
		IconIndex: record.Header.IconIndex,
		Args:      record.StringData.Arguments,
	}, nil
}
