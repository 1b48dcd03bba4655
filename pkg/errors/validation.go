package errors

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// MaxIDLength bounds node, edge and handle identifiers read from documents.
const MaxIDLength = 256

// ValidateElementID validates a node, edge or handle identifier read from a
// document. Identifiers end up in SVG attributes and cache keys, so control
// characters are rejected.
//
// Rules:
//   - No empty ids
//   - No control characters or null bytes
//   - Maximum length of [MaxIDLength] characters
func ValidateElementID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidDocument, "%s id cannot be empty", kind)
	}

	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidDocument, "%s id too long (max %d characters)", kind, MaxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "%s id %q contains invalid control characters", kind, id)
		}
	}

	return nil
}

// ValidatePath validates a relative path used inside a cache directory.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateRedisURL validates a Redis connection URL.
// Only the redis and rediss schemes are accepted.
func ValidateRedisURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "redis URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "redis://") && !strings.HasPrefix(rawURL, "rediss://") {
		return New(ErrCodeInvalidInput, "redis URL must use redis or rediss scheme")
	}

	return nil
}

// ValidateFormat checks that format is one of allowed (case-insensitive).
func ValidateFormat(format string, allowed ...string) error {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(allowed, f) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// colorRegex matches the CSS colour forms the SVG renderer passes through.
var colorRegex = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+|rgba?\([0-9.,\s%]+\))$`)

// ValidateColor validates a colour string from config before it reaches
// an SVG attribute.
func ValidateColor(c string) error {
	if !colorRegex.MatchString(c) {
		return New(ErrCodeInvalidInput, "invalid color: %q", c)
	}
	return nil
}
