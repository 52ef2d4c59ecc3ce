// Package matching implements the deterministic track match engine.
//
// # Components
//
// The package is organized leaf-to-root:
//
//  1. Text normalizer: canonicalizes free-text track/artist/album strings into
//     comparable token sets. Pure functions, no shared state.
//
//  2. Fingerprint extractor: derives a stable comparison key ([Fingerprint])
//     from a [models.CanonicalTrack], built entirely from the normalizer.
//
//  3. Match resolver: [Match] scores a candidate set against one source track
//     using a configurable weighted model, ranks the candidates, and classifies
//     the outcome as matched, ambiguous, or not found.
//
// # Determinism
//
// Similarity is token-set arithmetic (Jaccard index) rather than phonetic or
// learned similarity, chosen for explainability and reproducibility. Every
// invocation is a pure function of its inputs; all functions are safe for
// concurrent use from multiple goroutines.
//
// # Scoring
//
// A candidate sharing a non-empty, equal ISRC with the source scores exactly
// 1.0 (authoritative identity). Otherwise six sub-scores (title, artist, album,
// duration, explicit parity, version-tag parity) are weighted by [Config] and
// summed. Missing fields degrade to a zero sub-score; the resolver never fails
// on sparse input.
package matching
