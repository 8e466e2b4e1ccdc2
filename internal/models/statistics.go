package models

import (
	"encoding/json"
	"time"
)

// Statistics represents summary statistics over a record set
type Statistics struct {
	TotalVisits        int               `json:"total_visits"`
	UniquePlaces       int               `json:"unique_places"`
	DateRange          DateRange         `json:"date_range"`
	CoordinatesSummary CoordinateSummary `json:"coordinates_summary"`
}

// DateRange is the span of visit timestamps. Both ends are nil for an empty
// record set; that is the explicit "no range" marker.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// IsEmpty reports whether the range carries no dates
func (r DateRange) IsEmpty() bool {
	return r.Start == nil || r.End == nil
}

// MarshalJSON renders {"start": ..., "end": ...} with nulls when empty
func (r DateRange) MarshalJSON() ([]byte, error) {
	out := struct {
		Start *string `json:"start"`
		End   *string `json:"end"`
	}{}
	if !r.IsEmpty() {
		start := r.Start.Format(TimestampLayout)
		end := r.End.Format(TimestampLayout)
		out.Start = &start
		out.End = &end
	}
	return json.Marshal(out)
}

// CoordinateSummary describes coordinate validity. Ranges and averages are
// only present when at least one record has a location.
type CoordinateSummary struct {
	TotalRecords       int         `json:"total_records"`
	ValidCoordinates   int         `json:"valid_coordinates"`
	InvalidCoordinates int         `json:"invalid_coordinates"`
	ValidityRate       float64     `json:"validity_rate"`
	LatRange           *ValueRange `json:"lat_range,omitempty"`
	LonRange           *ValueRange `json:"lon_range,omitempty"`
	AvgLat             *float64    `json:"avg_lat,omitempty"`
	AvgLon             *float64    `json:"avg_lon,omitempty"`
}

// ValueRange is a closed numeric interval
type ValueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DailyCount represents visits aggregated per calendar day
type DailyCount struct {
	Date         string `json:"date"` // YYYY-MM-DD
	Visits       int    `json:"visits"`
	UniquePlaces int    `json:"unique_places"`
	BusinessDay  bool   `json:"business_day"`
}

// Structure describes the shape of the raw visit source
type Structure struct {
	Source          string              `json:"source"`
	Columns         []string            `json:"columns"`
	TotalRows       int                 `json:"total_rows"`
	TotalColumns    int                 `json:"total_columns"`
	SampleData      []map[string]string `json:"sample_data"`
	EmptyCounts     map[string]int      `json:"empty_counts"`
	DateRange       DateRange           `json:"date_range"`
	TimestampErrors int                 `json:"timestamp_errors"`
	UniquePlaces    int                 `json:"unique_places"`
}
