package errors

import (
	"strings"
	"unicode"
)

// ValidateArtifactName checks that an artifact file name is a plain basename.
// Artifact names are joined onto an output directory, so they must not carry
// path components of their own.
func ValidateArtifactName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidArgument, "artifact name cannot be empty")
	}

	if len(name) > 255 {
		return New(ErrCodeInvalidArgument, "artifact name too long (max 255 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidArgument, "artifact name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidArgument, "artifact name cannot contain path separators: %q", name)
	}

	if name == "." || name == ".." {
		return New(ErrCodeInvalidArgument, "artifact name cannot be %q", name)
	}

	return nil
}
