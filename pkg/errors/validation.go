package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateCellSize validates a bucket-grid cell size.
// Zero means "derive from the graph extent" and is accepted; negative,
// infinite and NaN sizes are rejected.
func ValidateCellSize(size float64) error {
	if math.IsNaN(size) || math.IsInf(size, 0) {
		return New(ErrCodeInvalidArgument, "cell size must be finite, got %g", size)
	}
	if size < 0 {
		return New(ErrCodeInvalidArgument, "cell size must be positive, got %g", size)
	}
	return nil
}

// ValidatePositive checks that a named parameter is a finite value > 0.
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be a positive number, got %g", name, v)
	}
	return nil
}

// ValidateNonNegative checks that a named parameter is a finite value >= 0.
func ValidateNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return New(ErrCodeInvalidConfig, "%s must not be negative, got %g", name, v)
	}
	return nil
}

// ValidateUnit checks that a named parameter lies in [0, 1].
func ValidateUnit(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return New(ErrCodeInvalidConfig, "%s must be within [0, 1], got %g", name, v)
	}
	return nil
}

// ValidateIterations checks an iteration count.
// The limit protects the API from requests that would run for hours.
func ValidateIterations(n int) error {
	const maxIterations = 100000
	if n <= 0 {
		return New(ErrCodeInvalidConfig, "iterations must be positive, got %d", n)
	}
	if n > maxIterations {
		return New(ErrCodeInvalidConfig, "iterations too large (max %d)", maxIterations)
	}
	return nil
}

// ValidateAttributeKey validates an attribute key used to look up
// positions, sizes or control points on a graph.
//
// Validation rules:
//   - Key cannot be empty
//   - Maximum length of 64 characters
//   - No whitespace or control characters
func ValidateAttributeKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidConfig, "attribute key cannot be empty")
	}

	if len(key) > 64 {
		return New(ErrCodeInvalidConfig, "attribute key too long (max 64 characters)")
	}

	for _, r := range key {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidConfig, "attribute key contains invalid characters: %q", key)
		}
	}

	return nil
}

// ValidateNodeID validates a node identifier from serialized input.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidGraph, "node id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidGraph, "node id too long (max 256 characters)")
	}
	if strings.ContainsRune(id, '\x00') {
		return New(ErrCodeInvalidGraph, "node id contains a null byte")
	}
	return nil
}
