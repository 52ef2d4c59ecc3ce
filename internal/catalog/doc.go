// Package catalog supplies candidate tracks for the match resolver.
//
// The resolver only scores candidate sets it is handed; deciding which tracks
// from a target catalog are worth scoring is this package's job. [Snapshot]
// loads a catalog export from disk and indexes it two ways: by ISRC for exact
// identity hits, and by normalized title/artist token for fuzzy recall. No
// network I/O happens anywhere; snapshots are plain JSON files produced by
// whatever fetched the catalog.
package catalog
