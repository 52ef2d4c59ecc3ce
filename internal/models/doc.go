// Package models defines domain entities and persistence interfaces for the tmx match engine.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing track metadata
//   - [CanonicalTrack] : Service-agnostic track record with ISRC for cross-service matching
//   - [TrackSet] : A named collection of tracks loaded from a snapshot file
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [PersistedMatch] : Recorded match outcomes for cache lookups and audit
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
