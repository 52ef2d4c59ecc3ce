package models

import (
	"fmt"
	"strings"
)

// MusicService identifies the originating streaming catalog for a track.
type MusicService string

const (
	ServiceSpotify    MusicService = "spotify"
	ServiceAppleMusic MusicService = "apple_music"
	ServiceYouTube    MusicService = "youtube"
)

// Valid reports whether the service is one of the known catalogs.
func (s MusicService) Valid() bool {
	switch s {
	case ServiceSpotify, ServiceAppleMusic, ServiceYouTube:
		return true
	default:
		return false
	}
}

func (s MusicService) String() string { return string(s) }

// CanonicalTrack is a service-agnostic track record.
//
// It is immutable once constructed and owned by whichever collaborator fetched it;
// the match engine only borrows it. Optional scalar fields use pointers so that
// "absent" and "zero" stay distinguishable (a 0ms duration is not a missing one).
// JSON tags preserve every field losslessly for caching and audit logs.
type CanonicalTrack struct {
	ID          string       `json:"id"`                     // Opaque unique identifier (UUID)
	ISRC        string       `json:"isrc,omitempty"`         // International Standard Recording Code, "" if unknown
	Title       string       `json:"title"`                  // Required
	Artists     []string     `json:"artists"`                // Ordered as reported; order is insignificant for matching
	Album       string       `json:"album,omitempty"`        // "" if unknown
	DurationMs  *int         `json:"duration_ms,omitempty"`  // nil if unknown
	Explicit    *bool        `json:"explicit,omitempty"`     // nil if unknown
	ReleaseDate string       `json:"release_date,omitempty"` // Carried, not scored
	TrackNumber int          `json:"track_number,omitempty"` // Carried, not scored
	DiscNumber  int          `json:"disc_number,omitempty"`  // Carried, not scored
	Service     MusicService `json:"service"`                // Originating catalog
	ServiceID   string       `json:"service_id"`             // Service-native track identifier
	URL         string       `json:"url,omitempty"`          // Canonical URL on the origin service
}

// Validate checks that the track carries the fields the match engine requires.
func (t CanonicalTrack) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("track title is required")
	}
	if !t.Service.Valid() {
		return fmt.Errorf("unknown music service: %q", t.Service)
	}
	if t.ServiceID == "" {
		return fmt.Errorf("service track ID is required")
	}
	return nil
}

// TrackSet is a named collection of tracks, typically one playlist or library
// snapshot exported by the surrounding application.
type TrackSet struct {
	Name   string           `json:"name,omitempty"`
	Tracks []CanonicalTrack `json:"tracks"`
}

// IntPtr returns a pointer to v. Convenience for building optional fields.
func IntPtr(v int) *int { return &v }

// BoolPtr returns a pointer to v. Convenience for building optional fields.
func BoolPtr(v bool) *bool { return &v }
