package models

import "errors"

// Sentinel errors shared by the ingestion pipeline, the query engine and the
// HTTP layer. Callers wrap them with context and match with errors.Is.
var (
	// ErrDataUnavailable indicates the visit source is missing or unreadable.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrInvalidFilter indicates a query filter that cannot be executed,
	// e.g. start date after end date or a negative offset.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrInvalidTimestamp indicates a source row whose timestamp could not be parsed.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrRecordNotFound indicates a record index outside the loaded set.
	ErrRecordNotFound = errors.New("record not found")
)
