package errors

import (
	"strings"
	"unicode"
)

// ValidateNodeID validates a node id for safety and correctness.
// Node ids flow into derived edge ids, session files, and cache keys, so the
// rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "node id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "node id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateDiagramName validates a diagram display name.
// Empty names are permitted (a diagram may be unnamed); non-empty names must
// be printable and of reasonable length.
func ValidateDiagramName(name string) error {
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "diagram name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "diagram name contains invalid control characters")
		}
	}

	return nil
}

// ValidateSessionName validates an editing-session name for safety.
// Session names become filenames under the state directory, so they must be
// simple basenames without path components.
func ValidateSessionName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "session name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "session name too long (max 128 characters)")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "session name cannot contain path separators")
	}

	// No hidden files (starting with .)
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidInput, "session name cannot start with a dot")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "session name contains invalid control characters")
		}
	}

	return nil
}
