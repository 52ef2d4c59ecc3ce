// package formatter provides functions to export batch match results to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tunebridge/tmx/internal/shared"
	"github.com/tunebridge/tmx/internal/tasks"
)

// ExportToCSV converts a BatchResult to CSV format with one row per source track
func ExportToCSV(result *tasks.BatchResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Source ID", "Title", "Artists", "State", "Score", "Target Service", "Target ID", "Reasons"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, outcome := range result.Outcomes {
		state, score, targetService, targetID, reasons := outcomeColumns(outcome)
		record := []string{
			outcome.Source.ID,
			outcome.Source.Title,
			strings.Join(outcome.Source.Artists, "; "),
			state,
			score,
			targetService,
			targetID,
			reasons,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a BatchResult to Markdown format with a summary header
func ExportToMarkdown(result *tasks.BatchResult) ([]byte, error) {
	var buf bytes.Buffer

	name := result.SetName
	if name == "" {
		name = "Match Report"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", name))

	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", result.TotalTracks))
	buf.WriteString(fmt.Sprintf("**Matched**: %d\n", result.MatchedCount))
	buf.WriteString(fmt.Sprintf("**Ambiguous**: %d\n", result.AmbiguousCount))
	buf.WriteString(fmt.Sprintf("**Not found**: %d\n", result.NotFoundCount))
	buf.WriteString(fmt.Sprintf("**Match rate**: %.1f%%\n\n", result.MatchRate))

	buf.WriteString("## Tracks\n\n")
	buf.WriteString("| # | Title | Artists | State | Score | Target | Reasons |\n")
	buf.WriteString("|---|-------|---------|-------|-------|--------|---------|\n")
	for i, outcome := range result.Outcomes {
		state, score, targetService, targetID, reasons := outcomeColumns(outcome)
		target := ""
		if targetID != "" {
			target = fmt.Sprintf("%s:%s", targetService, targetID)
		}
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %s |\n",
			i+1,
			outcome.Source.Title,
			strings.Join(outcome.Source.Artists, ", "),
			state,
			score,
			target,
			reasons,
		))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a BatchResult to plain text format
func ExportToText(result *tasks.BatchResult) ([]byte, error) {
	var buf bytes.Buffer

	if result.SetName != "" {
		buf.WriteString(fmt.Sprintf("Source: %s\n", result.SetName))
	}
	buf.WriteString(fmt.Sprintf("Tracks: %d, matched %d, ambiguous %d, not found %d (%.1f%%)\n\n",
		result.TotalTracks, result.MatchedCount, result.AmbiguousCount, result.NotFoundCount, result.MatchRate))

	for i, outcome := range result.Outcomes {
		state, score, _, targetID, _ := outcomeColumns(outcome)
		line := fmt.Sprintf("%d. [%s] %s - %s", i+1, state, strings.Join(outcome.Source.Artists, ", "), outcome.Source.Title)
		if targetID != "" {
			line += fmt.Sprintf(" -> %s (%s)", targetID, score)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// ExportToJSON serializes the full BatchResult, including every alternative
// and score breakdown, for audit or downstream tooling.
func ExportToJSON(result *tasks.BatchResult, pretty bool) ([]byte, error) {
	return shared.MarshalJSON(result, pretty)
}

// WriteExport renders the result in the requested format and writes it under
// dir, returning the created file path. Supported formats: csv, md, txt, json.
func WriteExport(result *tasks.BatchResult, format, dir string) (string, error) {
	var (
		data []byte
		err  error
		ext  string
	)

	switch format {
	case "csv":
		data, err = ExportToCSV(result)
		ext = "csv"
	case "md", "markdown":
		data, err = ExportToMarkdown(result)
		ext = "md"
	case "txt", "text":
		data, err = ExportToText(result)
		ext = "txt"
	case "json":
		data, err = ExportToJSON(result, true)
		ext = "json"
	default:
		return "", fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return "", err
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	name := result.SetName
	if name == "" {
		name = "match_report"
	}
	path := filepath.Join(dir, sanitizeFilename(name)+"."+ext)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// outcomeColumns flattens one outcome into display fields.
func outcomeColumns(outcome tasks.TrackOutcome) (state, score, targetService, targetID, reasons string) {
	if outcome.Error != nil {
		return "error", "", "", "", outcome.Error.Error()
	}

	state = string(outcome.Result.State())
	best, ok := outcome.Result.Best()
	if !ok {
		return state, "", "", "", ""
	}

	score = strconv.FormatFloat(best.Score, 'f', 2, 64)
	targetService = best.Track.Service.String()
	targetID = best.Track.ServiceID

	parts := make([]string, len(best.Reasons))
	for i, r := range best.Reasons {
		parts[i] = string(r)
	}
	reasons = strings.Join(parts, ", ")
	return state, score, targetService, targetID, reasons
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "match_report"
	}
	return b.String()
}
