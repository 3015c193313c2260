package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/errors"
)

// FileStore is a file-based session store.
// Sessions are stored as JSON files in a state directory, one per session.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based session store.
// If baseDir is empty, the XDG state directory is used:
// $XDG_STATE_HOME/treeline/sessions, falling back to
// ~/.local/state/treeline/sessions when XDG_STATE_HOME is unset.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create session dir %s", baseDir)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// DefaultDir returns the default directory for session files.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "treeline", "sessions"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve home dir")
	}
	return filepath.Join(home, ".local", "state", "treeline", "sessions"), nil
}

func (s *FileStore) sessionPath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

func (s *FileStore) Load(ctx context.Context, name string) (*Session, error) {
	if err := errors.ValidateSessionName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.sessionPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeSessionNotFound, "no session named %s", name)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read session file %s", path)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSession, err, "session file %s is corrupt", path)
	}

	switch sess.Version {
	case 0:
		// Files written before the version field existed.
		sess.Version = FormatVersion
	case FormatVersion:
	default:
		return nil, errors.New(errors.ErrCodeUnsupported,
			"session format version %d is newer than this build supports (%d)",
			sess.Version, FormatVersion)
	}

	if err := diagram.Validate(sess.State.Data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSession, err, "session file %s is corrupt", path)
	}

	// The filename is authoritative when a session file was copied
	// between names.
	sess.Name = name
	return &sess, nil
}

func (s *FileStore) Save(ctx context.Context, sess *Session) error {
	if err := errors.ValidateSessionName(sess.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.Version == 0 {
		sess.Version = FormatVersion
	}
	now := time.Now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal session %s", sess.Name)
	}

	// Write through a temporary name so a crash mid-write leaves the
	// previous session intact instead of a truncated file.
	path := s.sessionPath(sess.Name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write session file %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write session file %s", path)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateSessionName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.sessionPath(name)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "remove session file")
	}
	return nil
}

func (s *FileStore) Cleanup(ctx context.Context, maxAge time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "read session dir %s", s.baseDir)
	}

	// Modification times stand in for UpdatedAt, so corrupt files age
	// out along with healthy ones.
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(s.baseDir, entry.Name()))
		}
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for session files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
