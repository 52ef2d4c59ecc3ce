package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tunebridge/tmx/internal/matching"
	"github.com/tunebridge/tmx/internal/models"
	"github.com/tunebridge/tmx/internal/shared"
)

// MatchRecorderAdapter implements tasks.MatchRecorder using MatchRepository.
//
// Records resolved outcomes with deduplication via the (source, target)
// identity constraint. Duplicate recordings are silently ignored.
type MatchRecorderAdapter struct {
	repo *MatchRepository
}

// NewMatchRecorderAdapter creates a new MatchRecorderAdapter with the given repository
func NewMatchRecorderAdapter(repo *MatchRepository) *MatchRecorderAdapter {
	return &MatchRecorderAdapter{repo: repo}
}

// RecordMatch persists one resolution outcome.
// Returns nil if an identical source/target pair is already recorded.
func (a *MatchRecorderAdapter) RecordMatch(result matching.Result) error {
	source := result.Source()

	targetService, targetID := "", ""
	score := 0.0
	reasons := ""
	breakdown := ""

	if best, ok := result.Best(); ok {
		targetService = best.Track.Service.String()
		targetID = best.Track.ServiceID
		score = best.Score
		reasons = joinReasons(best.Reasons)

		data, err := shared.MarshalJSON(best.Breakdown, false)
		if err != nil {
			return fmt.Errorf("failed to serialize breakdown: %w", err)
		}
		breakdown = string(data)
	}

	existing, err := a.repo.GetBySource(source.Service.String(), source.ServiceID)
	if err == nil && existing != nil {
		return nil
	}
	if err != nil && !errors.Is(err, shared.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing match: %w", err)
	}

	record := models.NewPersistedMatch(0, source.Service.String(), source.ServiceID,
		targetService, targetID, string(result.State()), score, reasons, breakdown)

	if err := a.repo.Create(record); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to record match: %w", err)
	}

	return nil
}

func joinReasons(reasons []matching.Reason) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}
