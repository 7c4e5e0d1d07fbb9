package errors

import (
	"strings"
	"unicode"
)

// MaxNameLength bounds entity names accepted by ValidateName.
const MaxNameLength = 256

// ValidateName validates an entity name (cell, net, layer, layer map,
// padstack definition, instance).
//
// Names are compared case-sensitively and must be:
//   - Non-empty
//   - Free of control characters and null bytes
//   - At most MaxNameLength bytes
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidName, "name too long (max %d characters)", MaxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}

	return nil
}

// ValidateStoreKey validates a key used to address an archive in a store.
//
// Validation rules:
//   - Key cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes
func ValidateStoreKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidPath, "key cannot be empty")
	}

	const maxKeyLength = 500
	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidPath, "key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "key contains invalid characters")
		}
	}

	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "key cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(key, "\\") {
		return New(ErrCodeInvalidPath, "key cannot contain backslashes")
	}

	return nil
}
