package models

import "github.com/golang/geo/s2"

// GeoPoint is a validated WGS84 coordinate. Fields are unexported so a
// GeoPoint outside [-90,90] x [-180,180] cannot exist; use NewGeoPoint.
type GeoPoint struct {
	lat float64
	lng float64
}

// NewGeoPoint returns a point for the given degrees, or false when either
// value is NaN, infinite or outside its domain.
func NewGeoPoint(lat, lng float64) (GeoPoint, bool) {
	// NaN fails every comparison, +-Inf fails the bounds
	if !(lat >= -90 && lat <= 90) || !(lng >= -180 && lng <= 180) {
		return GeoPoint{}, false
	}
	return GeoPoint{lat: lat, lng: lng}, true
}

// Latitude returns the latitude in degrees
func (p GeoPoint) Latitude() float64 { return p.lat }

// Longitude returns the longitude in degrees
func (p GeoPoint) Longitude() float64 { return p.lng }

// LatLng converts the point for use with the s2 geometry library
func (p GeoPoint) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.lat, p.lng)
}
