package service

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies how a video surfaces in the catalog.
type Category string

const (
	CategoryMovie  Category = "movie"
	CategorySeries Category = "series"
	CategoryTV     Category = "tv"
)

// ParseCategory maps stored text to a Category, defaulting to movie on
// unknown values.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryMovie, CategorySeries, CategoryTV:
		return Category(s)
	default:
		return CategoryMovie
	}
}

// PlaybackKind describes how a video's source URL is played.
type PlaybackKind string

const (
	PlaybackFile     PlaybackKind = "mp4"
	PlaybackAdaptive PlaybackKind = "m3u8"
	PlaybackEmbed    PlaybackKind = "iframe"
)

// ParsePlaybackKind maps stored text to a PlaybackKind, defaulting to a
// plain file on unknown values.
func ParsePlaybackKind(s string) PlaybackKind {
	switch PlaybackKind(s) {
	case PlaybackFile, PlaybackAdaptive, PlaybackEmbed:
		return PlaybackKind(s)
	default:
		return PlaybackFile
	}
}

// StreamMIME returns the content type handed to the player. Embeds have no
// stream of their own.
func (k PlaybackKind) StreamMIME() string {
	switch k {
	case PlaybackAdaptive:
		return "application/x-mpegURL"
	case PlaybackFile:
		return "video/mp4"
	default:
		return ""
	}
}

// UsesVideoElement reports whether the source feeds a native video element.
func (k PlaybackKind) UsesVideoElement() bool {
	return k == PlaybackFile || k == PlaybackAdaptive
}

// UsesIframePlayer reports whether the source is an embedded player page.
func (k PlaybackKind) UsesIframePlayer() bool {
	return k == PlaybackEmbed
}

// Series represents the domain model for an episodic collection.
type Series struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Title       string
	Slug        string
	Description string
	CoverURL    string
	Active      bool
	CreatedAt   time.Time
}

// Video represents the domain model for a catalog entry.
type Video struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	SeriesID         *uuid.UUID
	SeasonNumber     *int
	EpisodeNumber    *int
	Title            string
	Slug             string
	Description      string
	SourceURL        string
	Playback         PlaybackKind
	CoverURL         string
	Category         Category
	Genre            string
	Public           bool
	Rotate180        bool
	BlockedTenantIDs []uuid.UUID
	CreatedAt        time.Time
}

// IsVisibleTo reports whether the viewer may see this video. A nil viewer is
// an anonymous caller; without an identity only videos with an empty
// blocklist are provably visible.
func (v Video) IsVisibleTo(viewer *uuid.UUID) bool {
	if viewer == nil {
		return len(v.BlockedTenantIDs) == 0
	}
	for _, blocked := range v.BlockedTenantIDs {
		if blocked == *viewer {
			return false
		}
	}
	return true
}
