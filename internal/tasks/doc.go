// Package tasks orchestrates batch match runs with real-time progress reporting.
//
// # Core Operations
//
// The [MatchEngine] resolves tracks against a candidate catalog:
//
//  1. [MatchEngine.ResolveTrack] : Resolve one source track
//     - Gathers candidates from the catalog (ISRC and token overlap)
//     - Scores and classifies them via the match resolver
//
//  2. [MatchEngine.Run] : Resolve every track of a source set
//     - Fans work out to a bounded worker pool
//     - Preserves source order in the outcome list
//     - Optionally records outcomes through a [MatchRecorder]
//     - Returns aggregate counts and the match rate
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced consumers.
// Updates use select with default to prevent blocking.
package tasks
