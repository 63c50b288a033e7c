// Package strings provides token helpers for list-valued inputs and columns.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order of first occurrence is preserved.
//
//	DedupeAndTrim([]string{"  Singer ", "Council", "Singer", ""})
//	// []string{"Singer", "Council"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// SplitTokens splits s on sep and applies DedupeAndTrim. An empty or blank s
// yields an empty, non-nil slice.
//
//	SplitTokens("Singer, Council,,Singer", ",")
//	// []string{"Singer", "Council"}
func SplitTokens(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return DedupeAndTrim(strings.Split(s, sep))
}
