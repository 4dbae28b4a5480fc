package service

import (
	"net/url"
	"regexp"
	"strings"
)

var iframeSrcPattern = regexp.MustCompile(`(?i)src\s*=\s*["']([^"']+)["']`)

// NormalizeSourceURL cleans a pasted playback source. Owners paste whole
// iframe embed snippets as often as bare URLs, so the src attribute wins
// when one is present. Fragments are percent-encoded because some embed
// hosts put path-like payloads after the #.
func NormalizeSourceURL(raw string) string {
	source := strings.TrimSpace(raw)

	if match := iframeSrcPattern.FindStringSubmatch(source); match != nil {
		source = strings.TrimSpace(match[1])
	}

	if base, fragment, found := strings.Cut(source, "#"); found {
		return base + "#" + escapeFragment(fragment)
	}

	return source
}

func escapeFragment(fragment string) string {
	return strings.ReplaceAll(url.QueryEscape(fragment), "+", "%20")
}
