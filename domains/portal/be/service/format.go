package service

import "fmt"

// FormatDurationLabel renders a position in seconds as "M:SS" for resume
// badges. Fractions are truncated and negatives clamp to zero, so 125.9
// renders as "2:05".
func FormatDurationLabel(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatEpisodeLabel renders season and episode numbers the way the portal
// lists them, e.g. "S01 • E04".
func FormatEpisodeLabel(season, episode int) string {
	return fmt.Sprintf("S%02d • E%02d", season, episode)
}
