package formatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tunebridge/tmx/internal/matching"
	"github.com/tunebridge/tmx/internal/models"
	"github.com/tunebridge/tmx/internal/tasks"
)

func fixtureBatch(t *testing.T) *tasks.BatchResult {
	t.Helper()

	source := models.CanonicalTrack{
		ID: "sp1", Title: "Around the World", Artists: []string{"Daft Punk"},
		DurationMs: models.IntPtr(427000), Service: models.ServiceSpotify, ServiceID: "sp1",
	}
	candidate := models.CanonicalTrack{
		ID: "yt1", Title: "Around the World", Artists: []string{"Daft Punk"},
		DurationMs: models.IntPtr(427500), Service: models.ServiceYouTube, ServiceID: "yt1",
	}
	missSource := models.CanonicalTrack{
		ID: "sp2", Title: "Nowhere Song", Artists: []string{"Nobody"},
		Service: models.ServiceSpotify, ServiceID: "sp2",
	}

	matched := matching.Match(source, []models.CanonicalTrack{candidate}, matching.DefaultConfig())
	if matched.State() != matching.StateMatched {
		t.Fatalf("fixture should match, got %s", matched.State())
	}
	missed := matching.Match(missSource, nil, matching.DefaultConfig())

	return &tasks.BatchResult{
		SetName: "Test Set",
		Outcomes: []tasks.TrackOutcome{
			{Source: source, Result: matched},
			{Source: missSource, Result: missed},
		},
		MatchedCount:  1,
		NotFoundCount: 1,
		TotalTracks:   2,
		MatchRate:     50.0,
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(fixtureBatch(t))
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Source ID,Title,Artists,State,Score,Target Service,Target ID,Reasons") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "Around the World") {
			t.Errorf("CSV missing matched title")
		}
		if !strings.Contains(output, "matched") {
			t.Errorf("CSV missing matched state")
		}
		if !strings.Contains(output, "not_found") {
			t.Errorf("CSV missing not_found state")
		}
		if !strings.Contains(output, "yt1") {
			t.Errorf("CSV missing target ID")
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(fixtureBatch(t))
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# Test Set") {
			t.Errorf("Markdown missing title header")
		}
		if !strings.Contains(output, "**Match rate**: 50.0%") {
			t.Errorf("Markdown missing match rate, got: %s", output)
		}
		if !strings.Contains(output, "youtube:yt1") {
			t.Errorf("Markdown missing target column")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(fixtureBatch(t))
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "[matched] Daft Punk - Around the World") {
			t.Errorf("text missing matched line, got: %s", output)
		}
		if !strings.Contains(output, "[not_found] Nobody - Nowhere Song") {
			t.Errorf("text missing not_found line")
		}
	})

	t.Run("ExportToJSON round trip fields", func(t *testing.T) {
		data, err := ExportToJSON(fixtureBatch(t), true)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		output := string(data)
		for _, field := range []string{"best_match", "breakdown", "reasons", "alternatives"} {
			if !strings.Contains(output, field) {
				t.Errorf("JSON export missing %q", field)
			}
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("writes each format", func(t *testing.T) {
		dir := t.TempDir()

		for _, format := range []string{"csv", "md", "txt", "json"} {
			path, err := WriteExport(fixtureBatch(t), format, dir)
			if err != nil {
				t.Fatalf("WriteExport(%s) failed: %v", format, err)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("export file missing: %v", err)
			}
			if filepath.Ext(path) != "."+format {
				t.Errorf("unexpected extension for %s: %s", format, path)
			}
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		if _, err := WriteExport(fixtureBatch(t), "xml", t.TempDir()); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}

func TestRenderResult(t *testing.T) {
	batch := fixtureBatch(t)

	t.Run("matched report", func(t *testing.T) {
		output := RenderResult(batch.Outcomes[0].Result)

		if !strings.Contains(output, "matched") {
			t.Errorf("report missing state: %s", output)
		}
		if !strings.Contains(output, "Around the World") {
			t.Errorf("report missing track title")
		}
		if !strings.Contains(output, "Alternatives:") {
			t.Errorf("report missing alternatives section")
		}
	})

	t.Run("empty report", func(t *testing.T) {
		output := RenderResult(batch.Outcomes[1].Result)

		if !strings.Contains(output, "not_found") {
			t.Errorf("report missing state: %s", output)
		}
		if !strings.Contains(output, "No candidates scored.") {
			t.Errorf("report missing empty notice: %s", output)
		}
	})
}
