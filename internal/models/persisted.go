package models

import (
	"fmt"
	"time"
)

// PersistedMatch is a database-backed record of one resolved match outcome.
//
// It denormalizes the fields the surrounding application needs for cache hits
// and audit listings: the source and candidate service identities, the final
// classification, the total score, the qualifying reasons, and the serialized
// score breakdown. The resolver itself never reads or writes these records.
type PersistedMatch struct {
	id             string
	sequence       int
	sourceService  string
	sourceID       string
	targetService  string
	targetID       string
	state          string
	score          float64
	reasons        string // comma-joined reason identifiers
	breakdownJSON  string // serialized score breakdown for audit
	createdAt      time.Time
	updatedAt      time.Time
	deletedAt      *time.Time
}

// NewPersistedMatch creates a match record for the given source and target identities.
// The ID is assigned by the repository on Create.
func NewPersistedMatch(sequence int, sourceService, sourceID, targetService, targetID, state string, score float64, reasons, breakdownJSON string) *PersistedMatch {
	now := time.Now()
	return &PersistedMatch{
		sequence:      sequence,
		sourceService: sourceService,
		sourceID:      sourceID,
		targetService: targetService,
		targetID:      targetID,
		state:         state,
		score:         score,
		reasons:       reasons,
		breakdownJSON: breakdownJSON,
		createdAt:     now,
		updatedAt:     now,
	}
}

func (m *PersistedMatch) ID() string            { return m.id }
func (m *PersistedMatch) Sequence() int         { return m.sequence }
func (m *PersistedMatch) SourceService() string { return m.sourceService }
func (m *PersistedMatch) SourceID() string      { return m.sourceID }
func (m *PersistedMatch) TargetService() string { return m.targetService }
func (m *PersistedMatch) TargetID() string      { return m.targetID }
func (m *PersistedMatch) State() string         { return m.state }
func (m *PersistedMatch) Score() float64        { return m.score }
func (m *PersistedMatch) Reasons() string       { return m.reasons }
func (m *PersistedMatch) BreakdownJSON() string { return m.breakdownJSON }
func (m *PersistedMatch) CreatedAt() time.Time  { return m.createdAt }
func (m *PersistedMatch) UpdatedAt() time.Time  { return m.updatedAt }
func (m *PersistedMatch) DeletedAt() *time.Time { return m.deletedAt }

func (m *PersistedMatch) SetID(id string)             { m.id = id }
func (m *PersistedMatch) SetSequence(seq int)         { m.sequence = seq }
func (m *PersistedMatch) SetState(state string)       { m.state = state }
func (m *PersistedMatch) SetScore(score float64)      { m.score = score }
func (m *PersistedMatch) SetReasons(r string)         { m.reasons = r }
func (m *PersistedMatch) SetBreakdownJSON(b string)   { m.breakdownJSON = b }
func (m *PersistedMatch) SetUpdatedAt(t time.Time)    { m.updatedAt = t }
func (m *PersistedMatch) SetDeletedAt(t *time.Time)   { m.deletedAt = t }
func (m *PersistedMatch) SetCreatedAt(t time.Time)    { m.createdAt = t }

// Validate checks required identity fields and score bounds.
func (m *PersistedMatch) Validate() error {
	if m.sourceService == "" || m.sourceID == "" {
		return fmt.Errorf("source identity is required")
	}
	if m.state == "" {
		return fmt.Errorf("match state is required")
	}
	if m.score < 0 || m.score > 1 {
		return fmt.Errorf("score %f out of range [0,1]", m.score)
	}
	return nil
}
