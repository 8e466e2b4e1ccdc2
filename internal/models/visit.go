package models

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the naive ISO-8601 layout used on the wire. Fractional
// seconds are printed only when present.
const TimestampLayout = "2006-01-02T15:04:05.999999"

// DateLayout is the calendar date layout used by date filters and daily stats
const DateLayout = "2006-01-02"

// RawRow is one untyped row of the visit source
type RawRow struct {
	Row       int    // 0-based data row index (header excluded)
	Timestamp string
	Point     string
	Place     string
}

// VisitRecord represents one observed visit event
type VisitRecord struct {
	Row       int       // Source row index
	Timestamp time.Time // Always UTC
	RawPoint  string    // Coordinate text as found in the source
	Place     string
	Location  *GeoPoint // nil when RawPoint could not be parsed
}

// HasLocation reports whether the record carries a parsed coordinate
func (r VisitRecord) HasLocation() bool {
	return r.Location != nil
}

type visitRecordJSON struct {
	Timestamp string   `json:"timestamp"`
	Point     string   `json:"point"`
	Place     string   `json:"place"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// MarshalJSON renders the record with nullable latitude/longitude
func (r VisitRecord) MarshalJSON() ([]byte, error) {
	out := visitRecordJSON{
		Timestamp: r.Timestamp.Format(TimestampLayout),
		Point:     r.RawPoint,
		Place:     r.Place,
	}
	if r.Location != nil {
		lat, lng := r.Location.Latitude(), r.Location.Longitude()
		out.Latitude = &lat
		out.Longitude = &lng
	}
	return json.Marshal(out)
}

// NormalizeResult is the outcome of normalizing a single RawRow.
// Exactly one of Record and Err is set. Warning is only set next to a
// Record whose coordinate could not be parsed.
type NormalizeResult struct {
	Record  *VisitRecord
	Warning string
	Err     error
}

// RecordSet is an immutable, ordered snapshot of the visit source.
// It is shared read-only once published and replaced wholesale on reload.
type RecordSet struct {
	ID       string        `json:"id"`
	Source   string        `json:"source"`
	LoadedAt time.Time     `json:"loaded_at"`
	Records  []VisitRecord `json:"-"`
	Report   LoadReport    `json:"report"`
}

// Len returns the number of records; safe on a nil set
func (s *RecordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// At returns the record at source index i
func (s *RecordSet) At(i int) (VisitRecord, bool) {
	if s == nil || i < 0 || i >= len(s.Records) {
		return VisitRecord{}, false
	}
	return s.Records[i], true
}

// Diagnostic severities
const (
	SeverityDropped      = "DROPPED"       // hard failure, row excluded
	SeverityDegraded     = "DEGRADED"      // soft failure, location absent
	SeverityChunkSkipped = "CHUNK_SKIPPED" // chunk lost to an unexpected error
)

// RowDiagnostic describes a single ingestion problem
type RowDiagnostic struct {
	Row      int    `json:"row"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// LoadReport summarizes what happened during one bulk load
type LoadReport struct {
	Source             string          `json:"source"`
	RowsRead           int             `json:"rows_read"`
	RecordsLoaded      int             `json:"records_loaded"`
	RowsDropped        int             `json:"rows_dropped"`        // invalid timestamp
	InvalidCoordinates int             `json:"invalid_coordinates"` // kept, location absent
	ChunksTotal        int             `json:"chunks_total"`
	ChunksSkipped      int             `json:"chunks_skipped"`
	RowsSkipped        int             `json:"rows_skipped"` // rows lost with skipped chunks
	Partial            bool            `json:"partial"`      // load deadline expired
	Workers            int             `json:"workers"`
	StartedAt          time.Time       `json:"started_at"`
	DurationMS         int64           `json:"duration_ms"`
	Diagnostics        []RowDiagnostic `json:"diagnostics,omitempty"`
}
