package matching

import (
	"testing"

	"github.com/tunebridge/tmx/internal/models"
)

func TestExtractFingerprint(t *testing.T) {
	t.Run("all fields projected", func(t *testing.T) {
		track := models.CanonicalTrack{
			ID:         "c1",
			ISRC:       "gbduw0000059",
			Title:      "Around the World (Live)",
			Artists:    []string{"Daft Punk", "ROSALÍA"},
			Album:      "Alive 1997",
			DurationMs: models.IntPtr(427000),
			Service:    models.ServiceSpotify,
			ServiceID:  "sp1",
		}

		fp := ExtractFingerprint(track)

		if fp.ISRC != "GBDUW0000059" {
			t.Errorf("ISRC not uppercased: %q", fp.ISRC)
		}
		if fp.Title != "around the world live" {
			t.Errorf("unexpected normalized title: %q", fp.Title)
		}
		if len(fp.Artists) != 2 || fp.Artists[0] != "daft punk" || fp.Artists[1] != "rosalia" {
			t.Errorf("unexpected normalized artists: %v", fp.Artists)
		}
		if fp.Album != "alive 1997" {
			t.Errorf("unexpected normalized album: %q", fp.Album)
		}
		if fp.DurationMs == nil || *fp.DurationMs != 427000 {
			t.Errorf("duration not passed through: %v", fp.DurationMs)
		}
		if _, ok := fp.VersionTags["live"]; !ok {
			t.Errorf("missing live version tag: %v", fp.VersionTags)
		}
	})

	t.Run("absent optionals stay absent", func(t *testing.T) {
		fp := ExtractFingerprint(models.CanonicalTrack{Title: "Song"})

		if fp.ISRC != "" {
			t.Errorf("expected empty ISRC, got %q", fp.ISRC)
		}
		if fp.Album != "" {
			t.Errorf("expected empty album, got %q", fp.Album)
		}
		if fp.DurationMs != nil {
			t.Errorf("expected nil duration, got %v", fp.DurationMs)
		}
		if len(fp.VersionTags) != 0 {
			t.Errorf("expected no version tags, got %v", fp.VersionTags)
		}
	})

	t.Run("recomputation is stable", func(t *testing.T) {
		track := models.CanonicalTrack{Title: "Déjà Vu (Remastered)", Artists: []string{"Artist"}}

		first := ExtractFingerprint(track)
		second := ExtractFingerprint(track)

		if first.Title != second.Title {
			t.Errorf("titles differ across extractions: %q vs %q", first.Title, second.Title)
		}
		if len(first.VersionTags) != len(second.VersionTags) {
			t.Errorf("version tags differ across extractions")
		}
	})
}
