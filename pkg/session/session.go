// Package session persists editing state across CLI invocations.
//
// An editing session captures the full mutable state of a diagram store:
// the current nodes and edges, the undo history with its cursor, and the
// selection. The CLI saves the session after every mutating command and
// reopens it on the next one, so undo and redo work across processes as if
// the editor had never exited.
//
// # Architecture
//
// Sessions are keyed by name, normally derived from the diagram file path
// (see DeriveName). The Store interface supports:
//   - Load/Save/Delete operations
//   - Cleanup of sessions untouched beyond a retention period
//
// FileStore is the on-disk implementation: one JSON file per session under
// the XDG state directory.
//
// # Usage
//
// Resolve the session for a diagram file:
//
//	sessions, err := session.NewFileStore("")  // Uses $XDG_STATE_HOME/treeline/sessions/
//	if err != nil {
//	    return err
//	}
//	store, sess, err := session.Open(ctx, sessions, session.OpenOptions{
//	    File: "team.json",
//	})
//
// Mutate and persist:
//
//	store.AddRoot()
//	sess.Capture(store)
//	if err := sessions.Save(ctx, sess); err != nil {
//	    return err
//	}
package session

import (
	"context"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/treeline-io/treeline/pkg/codec"
	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/errors"
)

// FormatVersion is the session file format version. Files written by a
// newer version are rejected rather than misread.
const FormatVersion = 1

// Default durations.
const (
	// DefaultRetention is how long an untouched session survives Cleanup.
	DefaultRetention = 90 * 24 * time.Hour
)

// Session is a named editing session: the complete store state for one
// diagram plus bookkeeping about where it came from.
type Session struct {
	Version   int           `json:"version"`
	Name      string        `json:"name"`
	File      string        `json:"file,omitempty"`
	State     diagram.State `json:"state"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Restore reconstructs a live diagram store from the session state.
// Returns an INVALID_SESSION error when the stored state no longer forms a
// valid diagram.
func (s *Session) Restore(opts diagram.Options) (*diagram.Store, error) {
	store, err := diagram.New(s.State.Data.Settings.Name, opts)
	if err != nil {
		return nil, err
	}
	if err := store.RestoreState(s.State); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSession, err, "session %s", s.Name)
	}
	return store, nil
}

// Capture replaces the session state with the store's current state. Call
// it after mutating the store and before Save.
func (s *Session) Capture(store *diagram.Store) {
	s.State = store.ExportState()
}

// Store is the interface for session storage backends.
type Store interface {
	// Load retrieves a session by name.
	// The error carries SESSION_NOT_FOUND when no such session exists,
	// INVALID_SESSION when the stored state cannot be decoded into a
	// valid diagram, and UNSUPPORTED when the file was written by a
	// newer format version.
	Load(ctx context.Context, name string) (*Session, error)

	// Save stores a session, stamping its UpdatedAt time.
	Save(ctx context.Context, sess *Session) error

	// Delete removes a session. Deleting a session that does not exist
	// is not an error.
	Delete(ctx context.Context, name string) error

	// Cleanup removes sessions untouched for longer than maxAge.
	Cleanup(ctx context.Context, maxAge time.Duration) error
}

// New creates a session wrapping the given store state. The file records
// which diagram file the session edits and may be empty.
func New(name, file string, st diagram.State) (*Session, error) {
	if err := errors.ValidateSessionName(name); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		Version:   FormatVersion,
		Name:      name,
		File:      file,
		State:     st,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DeriveName returns the default session name for a diagram file path: the
// file's base name plus a short hash of its absolute path. Two files with
// the same name in different directories get distinct sessions, while the
// session file stays recognizable in the state directory.
//
// An empty path derives the name "default".
func DeriveName(path string) string {
	if path == "" {
		return "default"
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	sum := sha256.Sum256([]byte(abs))

	base := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	base = sanitizeName(base)
	if base == "" {
		base = "diagram"
	}
	if len(base) > 64 {
		base = base[:64]
	}
	return fmt.Sprintf("%s-%x", base, sum[:4])
}

// sanitizeName reduces a file base name to characters that are safe in a
// session filename. The result never starts or ends with a dot, so derived
// names always pass ValidateSessionName.
func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), ".-")
}

// =============================================================================
// CLI session resolution
// =============================================================================

// OpenOptions control how Open resolves an editing session.
type OpenOptions struct {
	// Name is the session name. Empty derives it from File.
	Name string

	// File is the diagram file the session edits. It seeds the session
	// when none is stored yet.
	File string

	// Reset discards any stored session first, so editing resumes from
	// the file's content with empty history.
	Reset bool

	// Store configures the reconstructed diagram store. The zero value
	// uses the documented defaults.
	Store diagram.Options
}

// Open resolves the editing session for a diagram file: the stored session
// when one exists, otherwise fresh state seeded from the file itself. The
// returned store is live; the returned session is the record to Capture
// into and Save after mutating the store.
//
// A stored session is authoritative even when the diagram file changed
// underneath it. Reset (or a corrupt session reported as INVALID_SESSION)
// is the way back to the file's content.
//
// Open persists nothing. A session seeded from the file exists on disk
// only after the first Save.
func Open(ctx context.Context, sessions Store, opts OpenOptions) (*diagram.Store, *Session, error) {
	name := opts.Name
	if name == "" {
		name = DeriveName(opts.File)
	}
	if err := errors.ValidateSessionName(name); err != nil {
		return nil, nil, err
	}

	if opts.Reset {
		if err := sessions.Delete(ctx, name); err != nil {
			return nil, nil, err
		}
	}

	sess, err := sessions.Load(ctx, name)
	if err == nil {
		store, rerr := sess.Restore(opts.Store)
		if rerr != nil {
			return nil, nil, rerr
		}
		return store, sess, nil
	}
	if !errors.Is(err, errors.ErrCodeSessionNotFound) {
		return nil, nil, err
	}

	// No stored session: seed one from the diagram file.
	d, err := codec.Import(opts.File)
	if err != nil {
		return nil, nil, err
	}
	store, err := diagram.New(d.Settings.Name, opts.Store)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Load(d); err != nil {
		return nil, nil, err
	}
	sess, err = New(name, opts.File, store.ExportState())
	if err != nil {
		return nil, nil, err
	}
	return store, sess, nil
}
