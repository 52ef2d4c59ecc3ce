package catalog

import (
	"context"

	"github.com/tunebridge/tmx/internal/models"
)

// Catalog provides candidate tracks for a source track.
//
// Implementations decide recall strategy (which tracks are worth scoring);
// the match resolver decides precision. Candidates must always include any
// track whose ISRC equals the source's.
type Catalog interface {
	// Candidates returns up to limit tracks that could plausibly match the
	// source track. A limit <= 0 means no bound.
	Candidates(ctx context.Context, source models.CanonicalTrack, limit int) ([]models.CanonicalTrack, error)

	// Name identifies the catalog (e.g. the snapshot filename).
	Name() string

	// Size returns the number of tracks in the catalog.
	Size() int
}
