// Package platform resolves workspace paths.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StoreDirName is the tracker data directory created inside a
// workspace root.
const StoreDirName = ".fspec"

// ConfigFileName is the optional tunables file looked up next to the
// data directory.
const ConfigFileName = "fspec.toml"

// ErrNoWorkspace is reported when no enclosing directory contains a
// tracker data directory.
var ErrNoWorkspace = errors.New("no workspace found")

// Paths locates a workspace on disk.
type Paths struct {
	Root       string
	DataDir    string
	ConfigPath string
}

func pathsAt(root string) Paths {
	return Paths{
		Root:       root,
		DataDir:    filepath.Join(root, StoreDirName),
		ConfigPath: filepath.Join(root, ConfigFileName),
	}
}

// FindWorkspace walks from start toward the filesystem root looking
// for a directory that contains StoreDirName.
func FindWorkspace(start string) (Paths, error) {
	dir, err := filepath.Abs(strings.TrimSpace(start))
	if err != nil {
		return Paths{}, fmt.Errorf("resolve start dir: %w", err)
	}
	for {
		info, statErr := os.Stat(filepath.Join(dir, StoreDirName))
		if statErr == nil && info.IsDir() {
			return pathsAt(dir), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Paths{}, fmt.Errorf("%w: searched from %s upward", ErrNoWorkspace, start)
		}
		dir = parent
	}
}

// InitWorkspace creates the data directory under root. Re-running on
// an existing workspace is not an error.
func InitWorkspace(root string) (Paths, error) {
	abs, err := filepath.Abs(strings.TrimSpace(root))
	if err != nil {
		return Paths{}, fmt.Errorf("resolve root: %w", err)
	}
	p := pathsAt(abs)
	if err := os.MkdirAll(p.DataDir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create data dir: %w", err)
	}
	return p, nil
}
