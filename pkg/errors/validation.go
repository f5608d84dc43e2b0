package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateNodeID checks a caller-supplied node ID before it is echoed back in
// logs, error messages and cache keys.
//
// The rules are intentionally conservative:
//   - No control characters or null bytes
//   - Maximum length of 256 characters
//
// An empty ID is valid; such nodes can only be referenced by index.
func ValidateNodeID(id string) error {
	const maxIDLength = 256
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id %q contains invalid characters", id)
		}
	}
	return nil
}

// ValidateSize checks drawing dimensions: both must be finite and positive.
func ValidateSize(width, height float64) error {
	if !(width > 0) || math.IsInf(width, 0) {
		return New(ErrCodeInvalidSize, "width must be a positive number, got %v", width)
	}
	if !(height > 0) || math.IsInf(height, 0) {
		return New(ErrCodeInvalidSize, "height must be a positive number, got %v", height)
	}
	return nil
}

// ValidateRedisURL validates a Redis connection URL.
// It only checks the scheme; the driver parses the rest.
func ValidateRedisURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "redis URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "redis://") && !strings.HasPrefix(rawURL, "rediss://") {
		return New(ErrCodeInvalidInput, "redis URL must use redis or rediss scheme")
	}
	return nil
}
