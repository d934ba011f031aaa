package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/andrewstucki/taskbar"
	"github.com/andrewstucki/taskbar/internal/logging"
)

const helpString = `List the shortcuts pinned to the taskbar.

Usage: %s [pinned-directory] [icon-directory]

Without a pinned directory the current user's taskbar pins are read. When an
icon directory is given every extracted icon is written there as <digest>.ico.
`

func help(name string) {
	fmt.Printf(helpString, name)
}

func main() {
	if len(os.Args) > 3 {
		help(os.Args[0])
		os.Exit(1)
	}

	cfg, err := taskbar.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(os.Args) > 1 {
		cfg.PinnedDir = os.Args[1]
	}

	enumerator, err := taskbar.NewEnumerator(cfg, logging.NewDefaultLogger(os.Getenv("TASKBAR_DEBUG") != ""))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	shortcuts := enumerator.Enumerate()

	if len(os.Args) > 2 {
		if err := writeIcons(os.Args[2], shortcuts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	data, err := json.Marshal(shortcuts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

// writeIcons stores every inline icon once, shortcuts sharing an executable
// share the file. Every write is attempted, the first failure is returned.
func writeIcons(dir string, shortcuts []taskbar.Shortcut) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	written := map[string]struct{}{}
	var group errgroup.Group
	group.SetLimit(runtime.NumCPU())
	for _, shortcut := range shortcuts {
		icon := shortcut.Icon
		if icon == nil || icon.Kind != taskbar.IconInlineImage {
			continue
		}
		digest := icon.Digest()
		if _, seen := written[digest]; seen {
			continue
		}
		written[digest] = struct{}{}

		name := shortcut.Name
		group.Go(func() error {
			path := filepath.Join(dir, digest+".ico")
			if err := ioutil.WriteFile(path, icon.Image, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Unable to write icon for '%s': %v\n", name, err)
				return fmt.Errorf("icon for %s: %w", name, err)
			}
			return nil
		})
	}
	return group.Wait()
}
