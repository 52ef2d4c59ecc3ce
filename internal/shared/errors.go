package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Snapshot and catalog errors
	ErrSnapshotNotFound = fmt.Errorf("snapshot file not found")
	ErrInvalidSnapshot  = fmt.Errorf("invalid snapshot data")
	ErrTrackNotFound    = fmt.Errorf("track not found")
	ErrEmptyCatalog     = fmt.Errorf("catalog contains no tracks")

	// Persistence errors
	ErrDatabaseUnavailable = fmt.Errorf("database unavailable")
	ErrRecordNotFound      = fmt.Errorf("record not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
