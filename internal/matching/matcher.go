package matching

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/tunebridge/tmx/internal/models"
)

// Duration deltas (milliseconds) delimiting the scoring buckets. Boundaries
// are inclusive: a delta of exactly 2000ms scores 1.0, exactly 10000ms scores 0.5.
const (
	durationExactMs = 2000
	durationCloseMs = 10000
)

// Fixed reason thresholds, independent of the configured weights.
const (
	titleReasonThreshold    = 0.60
	artistReasonThreshold   = 0.60
	albumReasonThreshold    = 0.60
	durationReasonThreshold = 0.75
)

// Config is a named weight vector for the scoring model plus the acceptance
// threshold and ambiguity delta. The default weights sum to 1.0 but the sum is
// not enforced; the aggregate score is clamped to [0,1] regardless. Immutable,
// supplied by the caller per invocation.
type Config struct {
	TitleWeight    float64 `toml:"title_weight" json:"title_weight"`
	ArtistWeight   float64 `toml:"artist_weight" json:"artist_weight"`
	AlbumWeight    float64 `toml:"album_weight" json:"album_weight"`
	DurationWeight float64 `toml:"duration_weight" json:"duration_weight"`
	ExplicitWeight float64 `toml:"explicit_weight" json:"explicit_weight"`
	VersionWeight  float64 `toml:"version_weight" json:"version_weight"`
	MatchThreshold float64 `toml:"match_threshold" json:"match_threshold"`
	AmbiguityDelta float64 `toml:"ambiguity_delta" json:"ambiguity_delta"`
}

// DefaultConfig returns the stock weight vector.
func DefaultConfig() Config {
	return Config{
		TitleWeight:    0.30,
		ArtistWeight:   0.20,
		AlbumWeight:    0.10,
		DurationWeight: 0.25,
		ExplicitWeight: 0.05,
		VersionWeight:  0.05,
		MatchThreshold: 0.60,
		AmbiguityDelta: 0.03,
	}
}

// State classifies the outcome of one match invocation.
type State string

const (
	StateMatched   State = "matched"
	StateAmbiguous State = "ambiguous"
	StateNotFound  State = "not_found"
)

// Reason annotates why a candidate qualified on a particular factor.
// Reasons are diagnostic only; they never feed back into ranking.
type Reason string

const (
	ReasonISRCExact        Reason = "isrc_exact"
	ReasonTitleSimilarity  Reason = "title_similarity"
	ReasonArtistSimilarity Reason = "artist_similarity"
	ReasonAlbumSimilarity  Reason = "album_similarity"
	ReasonDurationClose    Reason = "duration_close"
	ReasonExplicitParity   Reason = "explicit_parity"
	ReasonVersionParity    Reason = "version_parity"
)

// ScoreBreakdown retains the six weighted sub-scores plus the total for
// explainability. Never recomputed after creation; the total field is the
// value used for ranking, so a reader re-deriving it from the components will
// agree bit-for-bit.
type ScoreBreakdown struct {
	Title    float64 `json:"title"`
	Artist   float64 `json:"artist"`
	Album    float64 `json:"album"`
	Duration float64 `json:"duration"`
	Explicit float64 `json:"explicit"`
	Version  float64 `json:"version"`
	Total    float64 `json:"total"`
}

// Candidate is one scored candidate: the track, its total score in [0,1], the
// qualifying reasons, and the per-factor breakdown.
type Candidate struct {
	Track     models.CanonicalTrack `json:"track"`
	Score     float64               `json:"score"`
	Reasons   []Reason              `json:"reasons"`
	Breakdown ScoreBreakdown        `json:"breakdown"`
}

// Result is the immutable outcome of one match invocation.
//
// The fields are unexported and only reachable through accessors so the
// classification invariant holds structurally: a best match is present if and
// only if the state is [StateMatched] or [StateAmbiguous]. Construct results
// only via [Match] or UnmarshalJSON.
type Result struct {
	source       models.CanonicalTrack
	state        State
	best         *Candidate
	alternatives []Candidate
}

// Source returns the track the candidates were scored against.
func (r Result) Source() models.CanonicalTrack { return r.source }

// State returns the outcome classification.
func (r Result) State() State { return r.state }

// Best returns the winning candidate and true when the state is matched or
// ambiguous, and the zero Candidate and false otherwise.
func (r Result) Best() (Candidate, bool) {
	if r.best == nil {
		return Candidate{}, false
	}
	return *r.best, true
}

// Alternatives returns every scored candidate sorted descending by score,
// ties stable in input order. Includes the best candidate when one exists.
func (r Result) Alternatives() []Candidate { return r.alternatives }

type resultJSON struct {
	Source       models.CanonicalTrack `json:"source"`
	State        State                 `json:"state"`
	Best         *Candidate            `json:"best_match,omitempty"`
	Alternatives []Candidate           `json:"alternatives"`
}

// MarshalJSON serializes the result losslessly, including reasons and the
// score breakdown, for caching and audit by the surrounding application.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Source:       r.source,
		State:        r.state,
		Best:         r.best,
		Alternatives: r.alternatives,
	})
}

// UnmarshalJSON restores a serialized result, rejecting payloads that violate
// the "best present iff matched or ambiguous" invariant.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch raw.State {
	case StateMatched, StateAmbiguous:
		if raw.Best == nil {
			return fmt.Errorf("state %q requires a best match", raw.State)
		}
	case StateNotFound:
		if raw.Best != nil {
			return fmt.Errorf("state %q forbids a best match", raw.State)
		}
	default:
		return fmt.Errorf("unknown match state: %q", raw.State)
	}

	r.source = raw.Source
	r.state = raw.State
	r.best = raw.Best
	r.alternatives = raw.Alternatives
	return nil
}

// Match scores every candidate against the source track, ranks them descending
// by score (stable on ties), and classifies the outcome.
//
// An empty candidate list yields [StateNotFound] with no alternatives. A best
// score below cfg.MatchThreshold also yields [StateNotFound], but the scored
// candidates are still returned so callers can inspect near misses. A runner-up
// within cfg.AmbiguityDelta of the best score yields [StateAmbiguous].
//
// Match is a pure function of its three inputs: no I/O, no shared state, safe
// for concurrent invocation across goroutines.
func Match(source models.CanonicalTrack, candidates []models.CanonicalTrack, cfg Config) Result {
	scored := make([]Candidate, len(candidates))
	for i, candidate := range candidates {
		scored[i] = scoreCandidate(source, candidate, cfg)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) == 0 {
		return Result{source: source, state: StateNotFound, alternatives: []Candidate{}}
	}

	best := scored[0]
	isAmbiguous := len(scored) > 1 && math.Abs(best.Score-scored[1].Score) <= cfg.AmbiguityDelta

	if best.Score < cfg.MatchThreshold {
		return Result{source: source, state: StateNotFound, alternatives: scored}
	}

	if isAmbiguous {
		return Result{source: source, state: StateAmbiguous, best: &best, alternatives: scored}
	}

	return Result{source: source, state: StateMatched, best: &best, alternatives: scored}
}

// scoreCandidate computes one candidate's score, reasons, and breakdown.
//
// ISRC equality short-circuits all other factors: the candidate scores exactly
// 1.0 with the single reason [ReasonISRCExact] and a zeroed breakdown apart
// from the total. ISRC is treated as authoritative identity.
func scoreCandidate(source, candidate models.CanonicalTrack, cfg Config) Candidate {
	sourceFP := ExtractFingerprint(source)
	candidateFP := ExtractFingerprint(candidate)

	if sourceFP.ISRC != "" && candidateFP.ISRC != "" && sourceFP.ISRC == candidateFP.ISRC {
		return Candidate{
			Track:     candidate,
			Score:     1.0,
			Reasons:   []Reason{ReasonISRCExact},
			Breakdown: ScoreBreakdown{Total: 1.0},
		}
	}

	titleSimilarity := TokenSetSimilarity(source.Title, candidate.Title)
	artistSimilarity := artistsSimilarity(source.Artists, candidate.Artists)
	albumSimilarity := albumsSimilarity(source.Album, candidate.Album)
	durationSimilarity := durationSimilarity(source.DurationMs, candidate.DurationMs)
	explicitParity := boolParity(source.Explicit, candidate.Explicit)
	versionParity := versionTagParity(sourceFP.VersionTags, candidateFP.VersionTags)

	weightedTitle := titleSimilarity * cfg.TitleWeight
	weightedArtist := artistSimilarity * cfg.ArtistWeight
	weightedAlbum := albumSimilarity * cfg.AlbumWeight
	weightedDuration := durationSimilarity * cfg.DurationWeight
	weightedExplicit := explicitParity * cfg.ExplicitWeight
	weightedVersion := versionParity * cfg.VersionWeight

	// Clamp guards against weight vectors summing above 1.
	total := clamp01(weightedTitle + weightedArtist + weightedAlbum + weightedDuration + weightedExplicit + weightedVersion)

	reasons := []Reason{}
	if titleSimilarity >= titleReasonThreshold {
		reasons = append(reasons, ReasonTitleSimilarity)
	}
	if artistSimilarity >= artistReasonThreshold {
		reasons = append(reasons, ReasonArtistSimilarity)
	}
	if albumSimilarity >= albumReasonThreshold {
		reasons = append(reasons, ReasonAlbumSimilarity)
	}
	if durationSimilarity >= durationReasonThreshold {
		reasons = append(reasons, ReasonDurationClose)
	}
	if explicitParity == 1 {
		reasons = append(reasons, ReasonExplicitParity)
	}
	if versionParity == 1 {
		reasons = append(reasons, ReasonVersionParity)
	}

	return Candidate{
		Track:   candidate,
		Score:   total,
		Reasons: reasons,
		Breakdown: ScoreBreakdown{
			Title:    weightedTitle,
			Artist:   weightedArtist,
			Album:    weightedAlbum,
			Duration: weightedDuration,
			Explicit: weightedExplicit,
			Version:  weightedVersion,
			Total:    total,
		},
	}
}

// artistsSimilarity joins each artist list with a single space and compares
// the joined strings. Either list empty forces 0, including both lists empty;
// mutual absence of artists is not treated as agreement the way version-tag
// parity is.
func artistsSimilarity(sourceArtists, candidateArtists []string) float64 {
	if len(sourceArtists) == 0 || len(candidateArtists) == 0 {
		return 0
	}

	joinedSource := joinArtists(sourceArtists)
	joinedCandidate := joinArtists(candidateArtists)
	return TokenSetSimilarity(joinedSource, joinedCandidate)
}

func joinArtists(artists []string) string {
	joined := ""
	for i, artist := range artists {
		if i > 0 {
			joined += " "
		}
		joined += artist
	}
	return joined
}

// albumsSimilarity scores 0 unless both albums are present.
func albumsSimilarity(sourceAlbum, candidateAlbum string) float64 {
	if sourceAlbum == "" || candidateAlbum == "" {
		return 0
	}
	return TokenSetSimilarity(sourceAlbum, candidateAlbum)
}

// durationSimilarity buckets the absolute delta: within 2s scores 1.0, within
// 10s scores 0.5, beyond that 0. Either duration absent scores 0.
func durationSimilarity(sourceMs, candidateMs *int) float64 {
	if sourceMs == nil || candidateMs == nil {
		return 0
	}

	delta := *sourceMs - *candidateMs
	if delta < 0 {
		delta = -delta
	}

	switch {
	case delta <= durationExactMs:
		return 1.0
	case delta <= durationCloseMs:
		return 0.5
	default:
		return 0
	}
}

// boolParity scores 1.0 when both flags are present and equal, 0 otherwise.
func boolParity(a, b *bool) float64 {
	if a == nil || b == nil {
		return 0
	}
	if *a == *b {
		return 1.0
	}
	return 0
}

// versionTagParity is the Jaccard index of the two tag sets, except that both
// sets empty counts as full agreement: tracks with no version qualifiers on
// either side are the same edition.
func versionTagParity(sourceTags, candidateTags map[string]struct{}) float64 {
	if len(sourceTags) == 0 && len(candidateTags) == 0 {
		return 1.0
	}
	return jaccard(sourceTags, candidateTags)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
