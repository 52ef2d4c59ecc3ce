package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/tunebridge/tmx/internal/catalog"
	"github.com/tunebridge/tmx/internal/matching"
	"github.com/tunebridge/tmx/internal/models"
	"github.com/tunebridge/tmx/internal/shared"
)

// MatchRecorder persists resolved outcomes. Implemented by
// repositories.MatchRecorderAdapter; nil disables recording.
type MatchRecorder interface {
	RecordMatch(result matching.Result) error
}

// TrackOutcome is the resolution of one source track.
type TrackOutcome struct {
	Source models.CanonicalTrack // Original track from the source set
	Result matching.Result       // Resolver output
	Error  error                 // Candidate gathering error, if any
}

// BatchResult contains all data from one batch match run.
type BatchResult struct {
	SetName        string         // Source set name
	Outcomes       []TrackOutcome // One per source track, in source order
	MatchedCount   int            // Tracks classified matched
	AmbiguousCount int            // Tracks classified ambiguous
	NotFoundCount  int            // Tracks classified not_found
	ErrorCount     int            // Tracks whose candidates could not be gathered
	TotalTracks    int            // Total tracks processed
	MatchRate      float64        // Matched share as percentage
}

// EngineOpts contains configuration for a MatchEngine.
type EngineOpts struct {
	Config         matching.Config // Weight vector; zero value falls back to the default
	Recorder       MatchRecorder   // Optional outcome store
	Workers        int             // Concurrent scoring workers (default 5, max 10)
	CandidateLimit int             // Max candidates gathered per track (default 25)
}

// MatchEngine resolves source tracks against a candidate catalog.
//
// The engine owns orchestration only: candidate recall belongs to the catalog
// and scoring to the matching package. Engines are safe for concurrent use.
type MatchEngine struct {
	catalog        catalog.Catalog
	config         matching.Config
	recorder       MatchRecorder
	workers        int
	candidateLimit int
}

// NewMatchEngine creates a MatchEngine over the given catalog.
func NewMatchEngine(cat catalog.Catalog, opts EngineOpts) *MatchEngine {
	if opts.Config == (matching.Config{}) {
		opts.Config = matching.DefaultConfig()
	}
	if opts.Workers <= 0 {
		opts.Workers = 5
	}
	if opts.Workers > 10 {
		opts.Workers = 10
	}
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = 25
	}

	return &MatchEngine{
		catalog:        cat,
		config:         opts.Config,
		recorder:       opts.Recorder,
		workers:        opts.Workers,
		candidateLimit: opts.CandidateLimit,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *MatchEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// ResolveTrack resolves one source track: gathers candidates from the catalog
// and classifies them with the configured weight vector.
func (e *MatchEngine) ResolveTrack(ctx context.Context, source models.CanonicalTrack) (matching.Result, error) {
	if e.catalog == nil {
		return matching.Result{}, fmt.Errorf("%w: no catalog configured", shared.ErrInvalidInput)
	}

	candidates, err := e.catalog.Candidates(ctx, source, e.candidateLimit)
	if err != nil {
		return matching.Result{}, fmt.Errorf("failed to gather candidates: %w", err)
	}

	return matching.Match(source, candidates, e.config), nil
}

// Run resolves every track of the source set against the catalog.
//
// Scoring fans out to a bounded worker pool; outcomes keep source order.
// When a recorder is configured, outcomes are persisted sequentially after
// scoring completes. Run stops early only on context cancellation; per-track
// candidate errors are captured in the outcome and counted, not fatal.
func (e *MatchEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, set models.TrackSet) (*BatchResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: no catalog configured", shared.ErrInvalidInput)
	}

	total := len(set.Tracks)
	result := &BatchResult{
		SetName:     set.Name,
		Outcomes:    make([]TrackOutcome, total),
		TotalTracks: total,
	}

	e.sendProgress(progress, loadSourceUpdate(total, e.catalog.Name()))

	jobs := make(chan int, total)
	var wg sync.WaitGroup

	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				source := set.Tracks[i]
				res, err := e.ResolveTrack(ctx, source)
				// Each worker writes a distinct index; no lock needed.
				result.Outcomes[i] = TrackOutcome{Source: source, Result: res, Error: err}
			}
		}()
	}

	for i := range set.Tracks {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		default:
		}

		e.sendProgress(progress, scoringUpdate(i+1, total, &set.Tracks[i]))
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, outcome := range result.Outcomes {
		switch {
		case outcome.Error != nil:
			result.ErrorCount++
		case outcome.Result.State() == matching.StateMatched:
			result.MatchedCount++
		case outcome.Result.State() == matching.StateAmbiguous:
			result.AmbiguousCount++
		default:
			result.NotFoundCount++
		}
	}
	if total > 0 {
		result.MatchRate = float64(result.MatchedCount) / float64(total) * 100
	}

	if e.recorder != nil {
		for i, outcome := range result.Outcomes {
			if outcome.Error != nil {
				continue
			}
			e.sendProgress(progress, recordingUpdate(i+1, total))
			if err := e.recorder.RecordMatch(outcome.Result); err != nil {
				return result, fmt.Errorf("failed to record outcome for %q: %w", outcome.Source.Title, err)
			}
		}
	}

	e.sendProgress(progress, summaryUpdate(result))
	return result, nil
}
