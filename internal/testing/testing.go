// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"

	"github.com/tunebridge/tmx/internal/matching"
	"github.com/tunebridge/tmx/internal/models"
)

// MockCatalog is a test double for [catalog.Catalog] returning a fixed candidate list.
type MockCatalog struct {
	CandidateList []models.CanonicalTrack
	Err           error
	Calls         int
}

func (m *MockCatalog) Candidates(ctx context.Context, source models.CanonicalTrack, limit int) ([]models.CanonicalTrack, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if limit > 0 && len(m.CandidateList) > limit {
		return m.CandidateList[:limit], nil
	}
	return m.CandidateList, nil
}

func (m *MockCatalog) Name() string { return "mock" }
func (m *MockCatalog) Size() int    { return len(m.CandidateList) }

// MockRecorder is a test double for [tasks.MatchRecorder] capturing recorded results.
type MockRecorder struct {
	Recorded []matching.Result
	Err      error
}

func (m *MockRecorder) RecordMatch(result matching.Result) error {
	if m.Err != nil {
		return m.Err
	}
	m.Recorded = append(m.Recorded, result)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
