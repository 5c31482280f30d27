package errors

import (
	"math"
	"regexp"
	"slices"
	"unicode"
)

// maxNodeIDLength bounds node identifiers read from untrusted input.
const maxNodeIDLength = 256

// levelSuffixRegex matches the "__<level>" suffix reserved for coarsened ids.
var levelSuffixRegex = regexp.MustCompile(`__[0-9]+$`)

// ValidateNodeID validates a node identifier from user input.
//
// The rules are:
//   - No empty ids
//   - No control characters
//   - Maximum length of 256 characters
//   - No trailing "__<digits>" suffix, which is reserved for coarsening levels
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}

	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", maxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node id %q contains control characters", id)
		}
	}

	if levelSuffixRegex.MatchString(id) {
		return New(ErrCodeInvalidNodeID, "node id %q uses the reserved level suffix", id)
	}

	return nil
}

// ValidateSnapTimes checks that snapshot times are finite and strictly increasing.
func ValidateSnapTimes(times []float64) error {
	if len(times) == 0 {
		return New(ErrCodeInvalidInput, "at least one snapshot time is required")
	}
	for i, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return New(ErrCodeInvalidInput, "snapshot time %d is not finite: %v", i, t)
		}
		if i > 0 && t <= times[i-1] {
			return New(ErrCodeInvalidInput, "snapshot times must be strictly increasing: %v after %v", t, times[i-1])
		}
	}
	return nil
}

// ValidateBounds checks a single pair of interval bounds.
// Infinite bounds must be open on their side; NaN is never accepted.
func ValidateBounds(left, right float64, leftOpen, rightOpen bool) error {
	if math.IsNaN(left) || math.IsNaN(right) {
		return New(ErrCodeInvalidInterval, "interval bounds must not be NaN")
	}
	if left > right {
		return New(ErrCodeInvalidInterval, "left bound %v is greater than right bound %v", left, right)
	}
	if math.IsInf(left, 1) || math.IsInf(right, -1) {
		return New(ErrCodeInvalidInterval, "interval [%v, %v] is empty", left, right)
	}
	if math.IsInf(left, -1) && !leftOpen {
		return New(ErrCodeInvalidInterval, "unbounded left side must be open")
	}
	if math.IsInf(right, 1) && !rightOpen {
		return New(ErrCodeInvalidInterval, "unbounded right side must be open")
	}
	if left == right && (leftOpen || rightOpen) {
		return New(ErrCodeInvalidInterval, "point interval at %v must be closed on both sides", left)
	}
	return nil
}

// ValidateFormat checks that a format is one of the allowed values.
func ValidateFormat(format string, allowed []string) error {
	if !slices.Contains(allowed, format) {
		return New(ErrCodeInvalidFormat, "invalid format %q (must be one of: %v)", format, allowed)
	}
	return nil
}
