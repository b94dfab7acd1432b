// Package scratch manages request-scoped temporary file storage on the local
// filesystem. A Store owns one root directory; each request obtains its own
// Workspace subdirectory so concurrent requests never contend on file names,
// and releasing the workspace removes every file it produced.
package scratch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"consensor/pkg/lifecycle"
)

// Store manages the scratch root directory and hands out workspaces.
type Store struct {
	root   string
	logger *slog.Logger
}

// New creates a Store rooted at the configured directory. The directory is not
// created until Start runs.
func New(cfg *Config, logger *slog.Logger) *Store {
	return &Store{
		root:   cfg.Dir,
		logger: logger.With("system", "scratch"),
	}
}

// Root returns the scratch root directory.
func (s *Store) Root() string {
	return s.root
}

// Start registers a startup hook that creates the scratch root.
func (s *Store) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		if err := os.MkdirAll(s.root, 0o755); err != nil {
			s.logger.Error("scratch root creation failed", "dir", s.root, "error", err)
			return
		}
		s.logger.Info("scratch root ready", "dir", s.root)
	})
	return nil
}

// Workspace creates a uniquely named subdirectory under the root for a single
// request. The caller must invoke Release when finished.
func (s *Store) Workspace() (*Workspace, error) {
	dir := filepath.Join(s.root, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	s.logger.Debug("workspace created", "dir", dir)
	return &Workspace{dir: dir, logger: s.logger}, nil
}

// Workspace is the scratch area for one request. All files imported or
// generated during the request live inside it.
type Workspace struct {
	dir    string
	logger *slog.Logger
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Resolve safe-joins name under the workspace directory, rejecting names that
// would escape it.
func (w *Workspace) Resolve(name string) (string, error) {
	return Join(w.dir, name)
}

// Remove deletes the named files inside the workspace. Missing files are not
// an error; names that escape the workspace are skipped.
func (w *Workspace) Remove(names ...string) {
	for _, name := range names {
		path, err := Join(w.dir, name)
		if err != nil {
			w.logger.Warn("skipping removal of invalid name", "name", name, "error", err)
			continue
		}
		if err := os.Remove(path); err == nil {
			w.logger.Debug("deleted", "path", path)
		} else if !os.IsNotExist(err) {
			w.logger.Warn("removal failed", "path", path, "error", err)
		}
	}
}

// Release deletes the workspace directory and everything in it. Safe to call
// on every exit path; failures are logged, never returned.
func (w *Workspace) Release() {
	if err := os.RemoveAll(w.dir); err != nil {
		w.logger.Error("workspace release failed", "dir", w.dir, "error", err)
		return
	}
	w.logger.Debug("workspace released", "dir", w.dir)
}

// Join resolves name against dir with safe-join semantics: the result is
// always inside dir. An empty dir returns name unchanged.
func Join(dir, name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	if dir == "" {
		return name, nil
	}
	joined := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	return joined, nil
}
