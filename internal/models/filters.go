package models

import "time"

// VisitFilter represents filter and pagination parameters for visit queries
type VisitFilter struct {
	Place     string     // Case-insensitive substring of the place label
	StartDate *time.Time // Inclusive lower bound on Timestamp
	EndDate   *time.Time // Inclusive upper bound on Timestamp
	Limit     int        // Page size; <= 0 means the configured maximum
	Offset    int        // Records to skip, >= 0

	// Optional spatial window. Records without a location never match it.
	Near         *GeoPoint
	RadiusMeters float64

	// Keep only visits on dates listed in the business-day calendar
	BusinessDaysOnly bool
}

// QueryResult is one page of visits plus the filtered total
type QueryResult struct {
	Items  []VisitRecord `json:"data"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}
