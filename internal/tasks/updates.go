package tasks

import (
	"fmt"

	"github.com/tunebridge/tmx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced consumers
}

// Operation phase enumeration
type Phase int

const (
	LoadSource Phase = iota
	GatherCandidates
	ScoreTracks
	RecordOutcomes
	Summarize
)

func (p Phase) String() string {
	switch p {
	case LoadSource:
		return "load_source"
	case GatherCandidates:
		return "gather_candidates"
	case ScoreTracks:
		return "score_tracks"
	case RecordOutcomes:
		return "record_outcomes"
	case Summarize:
		return "summarize"
	default:
		return ""
	}
}

func loadSourceUpdate(total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolving %d tracks from %s...", total, name),
	}
}

func scoringUpdate(step, total int, track *models.CanonicalTrack) ProgressUpdate {
	msg := fmt.Sprintf("Scoring track %d/%d", step, total)
	if track != nil {
		msg = fmt.Sprintf("Scoring %d/%d: %s", step, total, track.Title)
	}
	return ProgressUpdate{
		Phase:   ScoreTracks,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    track,
	}
}

func recordingUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordOutcomes,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Recording outcome %d/%d", step, total),
	}
}

func summaryUpdate(result *BatchResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Summarize,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Matched %d/%d tracks (%.1f%%)", result.MatchedCount, result.TotalTracks, result.MatchRate),
		Data:    result,
	}
}
