package taskbar

import (
	"encoding/hex"
	"strings"

	sha256 "github.com/minio/sha256-simd"

	"github.com/andrewstucki/taskbar/pe"
)

// IconKind tags which variant an Icon holds.
type IconKind int

const (
	// IconFilePath is an icon file, or a resource-bearing file, the renderer loads itself.
	IconFilePath IconKind = iota + 1
	// IconInlineImage is a complete .ico file extracted from an executable.
	IconInlineImage
)

func (k IconKind) String() string {
	switch k {
	case IconFilePath:
		return "file"
	case IconInlineImage:
		return "image"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name.
func (k IconKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Icon is either a path to load or inline .ico bytes, as selected by Kind.
type Icon struct {
	Kind   IconKind   `json:"kind"`
	Path   string     `json:"path,omitempty"`
	Image  []byte     `json:"-"`
	Images []pe.Image `json:"images,omitempty"`
}

// FilePathIcon references an icon on disk.
func FilePathIcon(path string) *Icon {
	return &Icon{Kind: IconFilePath, Path: path}
}

// InlineImageIcon wraps an extracted icon group.
func InlineImageIcon(icon *pe.Icon) *Icon {
	return &Icon{Kind: IconInlineImage, Image: icon.Data, Images: icon.Images}
}

// Digest is the hex SHA-256 of the inline image, empty for file icons.
func (i *Icon) Digest() string {
	if i.Kind != IconInlineImage {
		return ""
	}
	hash := sha256.Sum256(i.Image)
	return hex.EncodeToString(hash[:])
}

// Shortcut is a launch descriptor for one pinned shortcut. Target may be
// empty or point to a path that no longer exists, callers check before
// launching.
type Shortcut struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Target    string `json:"target"`
	Icon      *Icon  `json:"icon,omitempty"`
	IconIndex int32  `json:"iconIndex"`
	Args      string `json:"args"`
}

// Argv splits Args on whitespace. No quoting rules apply.
func (s Shortcut) Argv() []string {
	return strings.Fields(s.Args)
}
