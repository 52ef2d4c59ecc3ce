package matching

import (
	"encoding/json"
	"testing"

	"github.com/tunebridge/tmx/internal/models"
)

func track(title string, artists []string, opts func(*models.CanonicalTrack)) models.CanonicalTrack {
	t := models.CanonicalTrack{
		ID:        "id-" + title,
		Title:     title,
		Artists:   artists,
		Service:   models.ServiceSpotify,
		ServiceID: "sid-" + title,
	}
	if opts != nil {
		opts(&t)
	}
	return t
}

func hasReason(c Candidate, r Reason) bool {
	for _, got := range c.Reasons {
		if got == r {
			return true
		}
	}
	return false
}

func TestMatchISRCShortCircuit(t *testing.T) {
	source := track("Around the World", []string{"Daft Punk"}, func(tr *models.CanonicalTrack) {
		tr.Album = "Homework"
		tr.DurationMs = models.IntPtr(427000)
		tr.ISRC = "GBDUW0000059"
	})

	liveVersion := track("Around the World (Live)", []string{"Daft Punk"}, func(tr *models.CanonicalTrack) {
		tr.ISRC = "USUM71703861"
	})
	exact := track("Around the World", []string{"Daft Punk"}, func(tr *models.CanonicalTrack) {
		tr.Album = "Homework"
		tr.DurationMs = models.IntPtr(427000)
		tr.ISRC = "GBDUW0000059"
	})

	result := Match(source, []models.CanonicalTrack{liveVersion, exact}, DefaultConfig())

	if result.State() != StateMatched {
		t.Fatalf("expected matched, got %s", result.State())
	}

	best, ok := result.Best()
	if !ok {
		t.Fatal("expected a best match")
	}
	if best.Track.ISRC != "GBDUW0000059" {
		t.Errorf("wrong best candidate: %s", best.Track.ISRC)
	}
	if best.Score != 1.0 {
		t.Errorf("expected score 1.0, got %f", best.Score)
	}
	if len(best.Reasons) != 1 || best.Reasons[0] != ReasonISRCExact {
		t.Errorf("expected reasons {isrc_exact}, got %v", best.Reasons)
	}
	if best.Breakdown.Title != 0 || best.Breakdown.Total != 1.0 {
		t.Errorf("expected zeroed breakdown with total 1.0, got %+v", best.Breakdown)
	}
}

func TestMatchISRCCaseInsensitive(t *testing.T) {
	source := track("Song", []string{"Artist"}, func(tr *models.CanonicalTrack) { tr.ISRC = "gbduw0000059" })
	candidate := track("Completely Different", []string{"Nobody"}, func(tr *models.CanonicalTrack) { tr.ISRC = "GBDUW0000059" })

	result := Match(source, []models.CanonicalTrack{candidate}, DefaultConfig())

	best, ok := result.Best()
	if !ok || best.Score != 1.0 {
		t.Fatalf("ISRC comparison should be case-insensitive: %+v", result)
	}
}

func TestMatchDurationBuckets(t *testing.T) {
	newTrack := func(serviceID string, durationMs int) models.CanonicalTrack {
		return track("Same Song", []string{"Same Artist"}, func(tr *models.CanonicalTrack) {
			tr.DurationMs = models.IntPtr(durationMs)
			tr.ServiceID = serviceID
		})
	}

	source := newTrack("src", 195000)
	closeCandidate := newTrack("close", 196200) // delta 1200ms, exact bucket
	farCandidate := newTrack("far", 208000)     // delta 13000ms, out of range

	result := Match(source, []models.CanonicalTrack{farCandidate, closeCandidate}, DefaultConfig())

	alts := result.Alternatives()
	if len(alts) != 2 {
		t.Fatalf("expected 2 alternatives, got %d", len(alts))
	}
	if *alts[0].Track.DurationMs != 196200 {
		t.Errorf("close candidate should rank first, got duration %d", *alts[0].Track.DurationMs)
	}
	if !hasReason(alts[0], ReasonDurationClose) {
		t.Errorf("close candidate missing duration_close reason: %v", alts[0].Reasons)
	}
	if alts[1].Breakdown.Duration != 0 {
		t.Errorf("far candidate duration sub-score should be 0, got %f", alts[1].Breakdown.Duration)
	}
}

func TestMatchDurationBoundariesInclusive(t *testing.T) {
	cfg := DefaultConfig()
	tc := []struct {
		name      string
		deltaMs   int
		wantScore float64
	}{
		{name: "exactly 2000ms scores full", deltaMs: 2000, wantScore: 1.0},
		{name: "exactly 10000ms scores half", deltaMs: 10000, wantScore: 0.5},
		{name: "just over 10000ms scores zero", deltaMs: 10001, wantScore: 0},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			source := track("Song", []string{"Artist"}, func(tr *models.CanonicalTrack) {
				tr.DurationMs = models.IntPtr(200000)
			})
			candidate := track("Song", []string{"Artist"}, func(tr *models.CanonicalTrack) {
				tr.DurationMs = models.IntPtr(200000 + tt.deltaMs)
			})

			result := Match(source, []models.CanonicalTrack{candidate}, cfg)
			got := result.Alternatives()[0].Breakdown.Duration
			want := tt.wantScore * cfg.DurationWeight
			if got != want {
				t.Errorf("weighted duration = %f, want %f", got, want)
			}
		})
	}
}

func TestMatchAmbiguous(t *testing.T) {
	source := track("Same Song", []string{"Same Artist"}, func(tr *models.CanonicalTrack) {
		tr.DurationMs = models.IntPtr(200000)
	})
	first := track("Same Song", []string{"Same Artist"}, func(tr *models.CanonicalTrack) {
		tr.DurationMs = models.IntPtr(200500)
		tr.ServiceID = "first"
	})
	second := track("Same Song", []string{"Same Artist"}, func(tr *models.CanonicalTrack) {
		tr.DurationMs = models.IntPtr(201500)
		tr.ServiceID = "second"
	})

	result := Match(source, []models.CanonicalTrack{first, second}, DefaultConfig())

	if result.State() != StateAmbiguous {
		t.Fatalf("expected ambiguous, got %s", result.State())
	}
	if _, ok := result.Best(); !ok {
		t.Error("ambiguous result should carry a best match")
	}
	if len(result.Alternatives()) != 2 {
		t.Errorf("expected 2 alternatives, got %d", len(result.Alternatives()))
	}
}

func TestMatchEmptyCandidates(t *testing.T) {
	source := track("Song", []string{"Artist"}, nil)

	result := Match(source, nil, DefaultConfig())

	if result.State() != StateNotFound {
		t.Errorf("expected not_found, got %s", result.State())
	}
	if _, ok := result.Best(); ok {
		t.Error("expected no best match")
	}
	if len(result.Alternatives()) != 0 {
		t.Errorf("expected empty alternatives, got %d", len(result.Alternatives()))
	}
}

func TestMatchBelowThreshold(t *testing.T) {
	source := track("Around the World", []string{"Daft Punk"}, func(tr *models.CanonicalTrack) {
		tr.Album = "Homework"
		tr.DurationMs = models.IntPtr(427000)
	})
	unrelated := track("Wonderwall", []string{"Oasis"}, func(tr *models.CanonicalTrack) {
		tr.Album = "Morning Glory"
		tr.DurationMs = models.IntPtr(258000)
	})

	result := Match(source, []models.CanonicalTrack{unrelated}, DefaultConfig())

	if result.State() != StateNotFound {
		t.Fatalf("expected not_found, got %s", result.State())
	}
	if _, ok := result.Best(); ok {
		t.Error("expected no best match below threshold")
	}
	if len(result.Alternatives()) != 1 {
		t.Error("near misses should still be returned for inspection")
	}
}

func TestMatchScoreBounds(t *testing.T) {
	// Malformed config whose weights sum well above 1.
	cfg := Config{
		TitleWeight:    2.0,
		ArtistWeight:   2.0,
		DurationWeight: 2.0,
		VersionWeight:  2.0,
		MatchThreshold: 0.60,
		AmbiguityDelta: 0.03,
	}

	source := track("Same Song", []string{"Same Artist"}, func(tr *models.CanonicalTrack) {
		tr.DurationMs = models.IntPtr(200000)
	})
	candidate := track("Same Song", []string{"Same Artist"}, func(tr *models.CanonicalTrack) {
		tr.DurationMs = models.IntPtr(200000)
	})

	result := Match(source, []models.CanonicalTrack{candidate}, cfg)

	for _, alt := range result.Alternatives() {
		if alt.Score < 0 || alt.Score > 1 {
			t.Errorf("score %f out of [0,1]", alt.Score)
		}
		if alt.Score != alt.Breakdown.Total {
			t.Errorf("score %f disagrees with breakdown total %f", alt.Score, alt.Breakdown.Total)
		}
	}
}

func TestMatchSortStability(t *testing.T) {
	source := track("Same Song", []string{"Same Artist"}, nil)
	first := track("Same Song", []string{"Same Artist"}, func(tr *models.CanonicalTrack) { tr.ServiceID = "first" })
	second := track("Same Song", []string{"Same Artist"}, func(tr *models.CanonicalTrack) { tr.ServiceID = "second" })
	third := track("Same Song", []string{"Same Artist"}, func(tr *models.CanonicalTrack) { tr.ServiceID = "third" })

	result := Match(source, []models.CanonicalTrack{first, second, third}, DefaultConfig())

	alts := result.Alternatives()
	for i, want := range []string{"first", "second", "third"} {
		if alts[i].Track.ServiceID != want {
			t.Errorf("tie at position %d broken: got %s, want %s", i, alts[i].Track.ServiceID, want)
		}
	}
	for i := 1; i < len(alts); i++ {
		if alts[i].Score > alts[i-1].Score {
			t.Errorf("alternatives not sorted descending at %d", i)
		}
	}
}

func TestVersionTagParity(t *testing.T) {
	t.Run("both untagged counts as agreement", func(t *testing.T) {
		// Entirely different titles, neither carrying version keywords.
		source := track("Alpha", []string{"Artist"}, nil)
		candidate := track("Omega", []string{"Artist"}, nil)

		result := Match(source, []models.CanonicalTrack{candidate}, DefaultConfig())
		c := result.Alternatives()[0]
		if !hasReason(c, ReasonVersionParity) {
			t.Errorf("expected version_parity reason, got %v", c.Reasons)
		}
		if c.Breakdown.Version != DefaultConfig().VersionWeight {
			t.Errorf("expected full version weight, got %f", c.Breakdown.Version)
		}
	})

	t.Run("one tagged side scores zero", func(t *testing.T) {
		source := track("Song", []string{"Artist"}, nil)
		candidate := track("Song (Live)", []string{"Artist"}, nil)

		result := Match(source, []models.CanonicalTrack{candidate}, DefaultConfig())
		if got := result.Alternatives()[0].Breakdown.Version; got != 0 {
			t.Errorf("expected 0 version component, got %f", got)
		}
	})
}

// The artist factor intentionally keeps the source's asymmetry: both lists
// empty scores 0, unlike version parity where mutual absence is agreement.
func TestArtistSimilarityEmptyLists(t *testing.T) {
	source := track("Song", nil, nil)
	candidate := track("Song", nil, nil)

	result := Match(source, []models.CanonicalTrack{candidate}, DefaultConfig())
	c := result.Alternatives()[0]

	if c.Breakdown.Artist != 0 {
		t.Errorf("both-empty artist lists should score 0, got %f", c.Breakdown.Artist)
	}
	if hasReason(c, ReasonArtistSimilarity) {
		t.Errorf("unexpected artist_similarity reason: %v", c.Reasons)
	}
}

func TestResultJSONRoundTrip(t *testing.T) {
	source := track("Same Song", []string{"Same Artist"}, func(tr *models.CanonicalTrack) {
		tr.DurationMs = models.IntPtr(200000)
		tr.Explicit = models.BoolPtr(true)
	})
	candidate := track("Same Song", []string{"Same Artist"}, func(tr *models.CanonicalTrack) {
		tr.DurationMs = models.IntPtr(200500)
		tr.Explicit = models.BoolPtr(true)
	})

	original := Match(source, []models.CanonicalTrack{candidate}, DefaultConfig())

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var restored Result
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if restored.State() != original.State() {
		t.Errorf("state changed in round trip: %s != %s", restored.State(), original.State())
	}

	origBest, _ := original.Best()
	restBest, ok := restored.Best()
	if !ok {
		t.Fatal("best match lost in round trip")
	}
	if restBest.Score != origBest.Score {
		t.Errorf("score changed: %f != %f", restBest.Score, origBest.Score)
	}
	if len(restBest.Reasons) != len(origBest.Reasons) {
		t.Errorf("reasons changed: %v != %v", restBest.Reasons, origBest.Reasons)
	}
	if restBest.Breakdown != origBest.Breakdown {
		t.Errorf("breakdown changed: %+v != %+v", restBest.Breakdown, origBest.Breakdown)
	}
	if len(restored.Alternatives()) != len(original.Alternatives()) {
		t.Errorf("alternatives changed length")
	}
}

func TestResultJSONRejectsInvariantViolations(t *testing.T) {
	tc := []struct {
		name string
		body string
	}{
		{
			name: "matched without best",
			body: `{"source":{"id":"s","title":"t","artists":[],"service":"spotify","service_id":"x"},"state":"matched","alternatives":[]}`,
		},
		{
			name: "not_found with best",
			body: `{"source":{"id":"s","title":"t","artists":[],"service":"spotify","service_id":"x"},"state":"not_found","best_match":{"track":{"id":"c","title":"t","artists":[],"service":"spotify","service_id":"y"},"score":1,"reasons":[],"breakdown":{"title":0,"artist":0,"album":0,"duration":0,"explicit":0,"version":0,"total":1}},"alternatives":[]}`,
		},
		{
			name: "unknown state",
			body: `{"source":{"id":"s","title":"t","artists":[],"service":"spotify","service_id":"x"},"state":"maybe","alternatives":[]}`,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			var r Result
			if err := json.Unmarshal([]byte(tt.body), &r); err == nil {
				t.Error("expected unmarshal to fail")
			}
		})
	}
}

func TestExplicitParity(t *testing.T) {
	tc := []struct {
		name       string
		source     *bool
		candidate  *bool
		wantReason bool
	}{
		{name: "both explicit", source: models.BoolPtr(true), candidate: models.BoolPtr(true), wantReason: true},
		{name: "both clean", source: models.BoolPtr(false), candidate: models.BoolPtr(false), wantReason: true},
		{name: "mismatch", source: models.BoolPtr(true), candidate: models.BoolPtr(false), wantReason: false},
		{name: "absent flag", source: nil, candidate: models.BoolPtr(true), wantReason: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			source := track("Song", []string{"Artist"}, func(tr *models.CanonicalTrack) { tr.Explicit = tt.source })
			candidate := track("Song", []string{"Artist"}, func(tr *models.CanonicalTrack) { tr.Explicit = tt.candidate })

			result := Match(source, []models.CanonicalTrack{candidate}, DefaultConfig())
			got := hasReason(result.Alternatives()[0], ReasonExplicitParity)
			if got != tt.wantReason {
				t.Errorf("explicit_parity reason = %v, want %v", got, tt.wantReason)
			}
		})
	}
}
