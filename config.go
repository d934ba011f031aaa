package taskbar

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// pinnedPath is the taskbar pin folder relative to the user profile.
var pinnedPath = []string{"AppData", "Roaming", "Microsoft", "Internet Explorer", "Quick Launch", "User Pinned", "TaskBar"}

// Config controls where shortcuts are read from and how they are resolved.
type Config struct {
	// ProfileDir defaults to the current user's home directory.
	ProfileDir string `env:"TASKBAR_PROFILE_DIR"`
	// PinnedDir replaces the well-known pinned directory beneath ProfileDir.
	PinnedDir string `env:"TASKBAR_PINNED_DIR"`
	// CodePage decodes legacy single-byte shortcut strings.
	CodePage string `env:"TASKBAR_CODE_PAGE" envDefault:"windows-1252"`
	// ShellName is the display name whose target the link format can't represent.
	ShellName string `env:"TASKBAR_SHELL_NAME" envDefault:"File Explorer"`
	ShellPath string `env:"TASKBAR_SHELL_PATH" envDefault:"C:\\Windows\\explorer.exe"`
	// VolumeRoot stands in for the parent of an empty working directory.
	VolumeRoot string `env:"TASKBAR_VOLUME_ROOT" envDefault:"C:\\"`
}

// DefaultConfig returns the defaults without consulting the environment.
func DefaultConfig() Config {
	cfg, _ := parseConfig(map[string]string{})
	return cfg
}

// LoadConfig reads the configuration from TASKBAR_* environment variables.
func LoadConfig() (Config, error) {
	return parseConfig(nil)
}

// parseConfig reads from environment, or from the process environment when nil.
func parseConfig(environment map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ProfileDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.ProfileDir = home
		}
	}
	if _, err := cfg.Encoding(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Dir is the directory holding the pinned shortcuts.
func (c Config) Dir() string {
	if c.PinnedDir != "" {
		return c.PinnedDir
	}
	return filepath.Join(append([]string{c.ProfileDir}, pinnedPath...)...)
}

// Encoding resolves CodePage to a decoder, accepting any WHATWG encoding label.
func (c Config) Encoding() (encoding.Encoding, error) {
	codePage, err := htmlindex.Get(c.CodePage)
	if err != nil {
		return nil, fmt.Errorf("code page %q: %w", c.CodePage, err)
	}
	return codePage, nil
}
