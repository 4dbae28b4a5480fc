package persistence

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify derives a canonical slug from free-form text. Runs of characters
// outside [a-z0-9] collapse into single hyphens; an empty result means the
// input had nothing usable.
func Slugify(input string) string {
	lowered := strings.ToLower(strings.TrimSpace(input))
	return strings.Trim(nonSlugPattern.ReplaceAllString(lowered, "-"), "-")
}

// NormalizeSlug trims whitespace, lowercases the value, and ensures it matches
// the canonical URL-safe slug pattern required for public identifiers.
func NormalizeSlug(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", errors.New("slug is required")
	}

	normalized := strings.ToLower(trimmed)
	if !slugPattern.MatchString(normalized) {
		return "", fmt.Errorf("invalid slug %q: must match ^[a-z0-9]+(?:-[a-z0-9]+)*$", input)
	}

	return normalized, nil
}
