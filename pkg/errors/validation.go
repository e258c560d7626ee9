package errors

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// maxLabelLength bounds node names accepted from untrusted input.
const maxLabelLength = 256

// ValidateLabel validates a node display name.
//
// Names are free text (duplicates and non-Latin scripts are fine), but the
// render server rejects names that cannot be drawn sensibly:
//   - No empty names
//   - No control characters (newlines, tabs, null bytes)
//   - Maximum length of 256 characters
func ValidateLabel(name string) error {
	if name == "" {
		return New(ErrCodeInvalidTree, "node name cannot be empty")
	}

	if len([]rune(name)) > maxLabelLength {
		return New(ErrCodeInvalidTree, "node name too long (max %d characters)", maxLabelLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTree, "node name contains invalid control characters: %q", name)
		}
	}

	return nil
}

// nodeTypeRegex matches category tags such as "module" or "page".
var nodeTypeRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ValidateNodeType validates a node category tag.
// The empty tag is allowed; it renders like any non-module node.
func ValidateNodeType(typ string) error {
	if typ == "" {
		return nil
	}
	if len(typ) > 64 || !nodeTypeRegex.MatchString(typ) {
		return New(ErrCodeInvalidTree, "invalid node type: %q", typ)
	}
	return nil
}

// ValidatePath validates an output path supplied on the command line or in a
// config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
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

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateSceneID validates a scene identifier issued by the render server.
func ValidateSceneID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "scene id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid scene id %q", id)
	}
	return nil
}
