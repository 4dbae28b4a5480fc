package service

import (
	"time"

	"github.com/google/uuid"
)

// Entry is the flat video record handed to portal clients.
type Entry struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Description    string     `json:"description"`
	CoverURL       string     `json:"coverUrl"`
	Category       string     `json:"category"`
	Genre          string     `json:"genre"`
	Playback       string     `json:"playback"`
	StreamMIME     string     `json:"streamMime"`
	Rotate180      bool       `json:"rotate180"`
	SeriesID       *uuid.UUID `json:"seriesId,omitempty"`
	SeasonNumber   *int       `json:"seasonNumber,omitempty"`
	EpisodeNumber  *int       `json:"episodeNumber,omitempty"`
	EpisodeLabel   string     `json:"episodeLabel,omitempty"`
	ResumePosition float64    `json:"resumePosition"`
	ResumeLabel    string     `json:"resumeLabel"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// SeriesGroup bundles a series with its ordered episodes.
type SeriesGroup struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CoverURL    string    `json:"coverUrl"`
	Seasons     []int     `json:"seasons"`
	Episodes    []Entry   `json:"episodes"`
}

// Payload is one tenant's fully assembled portal. Collections are always
// present, never null, so clients can iterate without guards.
type Payload struct {
	ProgressByVideo map[uuid.UUID]float64 `json:"progressByVideo"`
	ContinueMovies  []Entry               `json:"continueMovies"`
	ContinueSeries  []Entry               `json:"continueSeries"`
	ContinueTV      []Entry               `json:"continueTv"`
	Series          []SeriesGroup         `json:"series"`
	TVChannels      []Entry               `json:"tvChannels"`
	MoviesByGenre   map[string][]Entry    `json:"moviesByGenre"`
	GeneratedAt     time.Time             `json:"generatedAt"`
}

func emptyPayload(now time.Time) Payload {
	return Payload{
		ProgressByVideo: map[uuid.UUID]float64{},
		ContinueMovies:  []Entry{},
		ContinueSeries:  []Entry{},
		ContinueTV:      []Entry{},
		Series:          []SeriesGroup{},
		TVChannels:      []Entry{},
		MoviesByGenre:   map[string][]Entry{},
		GeneratedAt:     now,
	}
}
