package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tunebridge/tmx/internal/matching"
	"github.com/tunebridge/tmx/internal/models"
	"github.com/tunebridge/tmx/internal/shared"
)

// Snapshot is an in-memory catalog loaded from a JSON export.
//
// Tracks are indexed by uppercased ISRC and by normalized title/artist token.
// The indexes are built once at load time and never mutated, so a Snapshot is
// safe for concurrent use.
type Snapshot struct {
	name    string
	tracks  []models.CanonicalTrack
	byISRC  map[string][]int
	byToken map[string][]int
}

// NewSnapshot builds an indexed snapshot from an in-memory track list.
func NewSnapshot(name string, tracks []models.CanonicalTrack) *Snapshot {
	s := &Snapshot{
		name:    name,
		tracks:  tracks,
		byISRC:  map[string][]int{},
		byToken: map[string][]int{},
	}

	for i, track := range tracks {
		if track.ISRC != "" {
			isrc := strings.ToUpper(track.ISRC)
			s.byISRC[isrc] = append(s.byISRC[isrc], i)
		}
		for tok := range indexTokens(track) {
			s.byToken[tok] = append(s.byToken[tok], i)
		}
	}

	return s
}

// LoadSnapshot reads a catalog export from a JSON file. The file may contain
// either a TrackSet object ({"name": ..., "tracks": [...]}) or a bare track array.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSnapshotNotFound, err)
	}

	tracks, name, err := decodeTracks(data)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = path
	}

	return NewSnapshot(name, tracks), nil
}

func decodeTracks(data []byte) ([]models.CanonicalTrack, string, error) {
	var set models.TrackSet
	if err := json.Unmarshal(data, &set); err == nil && set.Tracks != nil {
		return set.Tracks, set.Name, nil
	}

	var tracks []models.CanonicalTrack
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, "", fmt.Errorf("%w: %v", shared.ErrInvalidSnapshot, err)
	}
	return tracks, "", nil
}

func (s *Snapshot) Name() string { return s.name }
func (s *Snapshot) Size() int    { return len(s.tracks) }

// Tracks returns the snapshot contents in load order.
func (s *Snapshot) Tracks() []models.CanonicalTrack { return s.tracks }

// Candidates gathers plausible matches for the source track: every ISRC-equal
// track first, then tracks sharing title or artist tokens ranked by shared
// token count (ties in catalog order). A limit <= 0 returns all hits.
func (s *Snapshot) Candidates(ctx context.Context, source models.CanonicalTrack, limit int) ([]models.CanonicalTrack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.tracks) == 0 {
		return nil, shared.ErrEmptyCatalog
	}

	seen := map[int]struct{}{}
	var indexes []int

	if source.ISRC != "" {
		for _, i := range s.byISRC[strings.ToUpper(source.ISRC)] {
			if _, ok := seen[i]; !ok {
				seen[i] = struct{}{}
				indexes = append(indexes, i)
			}
		}
	}

	hits := map[int]int{}
	for tok := range indexTokens(source) {
		for _, i := range s.byToken[tok] {
			hits[i]++
		}
	}

	var fuzzy []int
	for i := range hits {
		if _, ok := seen[i]; !ok {
			fuzzy = append(fuzzy, i)
		}
	}
	sort.Slice(fuzzy, func(a, b int) bool {
		if hits[fuzzy[a]] != hits[fuzzy[b]] {
			return hits[fuzzy[a]] > hits[fuzzy[b]]
		}
		return fuzzy[a] < fuzzy[b]
	})
	indexes = append(indexes, fuzzy...)

	if limit > 0 && len(indexes) > limit {
		indexes = indexes[:limit]
	}

	candidates := make([]models.CanonicalTrack, len(indexes))
	for i, idx := range indexes {
		candidates[i] = s.tracks[idx]
	}
	return candidates, nil
}

// indexTokens collects the normalized title and artist tokens of a track.
func indexTokens(track models.CanonicalTrack) map[string]struct{} {
	tokens := matching.Tokenize(track.Title)
	for _, artist := range track.Artists {
		for tok := range matching.Tokenize(artist) {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}
