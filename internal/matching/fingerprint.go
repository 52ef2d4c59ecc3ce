package matching

import (
	"strings"

	"github.com/tunebridge/tmx/internal/models"
)

// Fingerprint is a derived view of a [models.CanonicalTrack] used for comparison:
// uppercased ISRC ("" when absent), normalized title, normalized artist list,
// normalized album ("" when absent), duration passthrough, and the set of
// version tags extracted from the title.
//
// A Fingerprint is a pure projection with no independent identity. It is never
// persisted and must be recomputed, not cached, whenever the underlying track
// fields could differ.
type Fingerprint struct {
	ISRC        string
	Title       string
	Artists     []string
	Album       string
	DurationMs  *int
	VersionTags map[string]struct{}
}

// ExtractFingerprint computes the comparison key for a track by applying the
// normalizer to its free-text fields. Safe to call repeatedly; idempotent.
func ExtractFingerprint(track models.CanonicalTrack) Fingerprint {
	artists := make([]string, len(track.Artists))
	for i, artist := range track.Artists {
		artists[i] = Normalize(artist)
	}

	return Fingerprint{
		ISRC:        strings.ToUpper(track.ISRC),
		Title:       Normalize(track.Title),
		Artists:     artists,
		Album:       Normalize(track.Album),
		DurationMs:  track.DurationMs,
		VersionTags: ExtractVersionTags(track.Title),
	}
}
