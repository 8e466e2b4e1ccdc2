package spatial

import "github.com/jengzang/visits-backend-go/internal/models"

// Distance calculates the great-circle distance between two points in meters
func Distance(a, b models.GeoPoint) float64 {
	return a.LatLng().Distance(b.LatLng()).Radians() * EarthRadiusMeters
}

// Within reports whether p lies within radius meters of center
func Within(center, p models.GeoPoint, radius float64) bool {
	return Distance(center, p) <= radius
}

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
)
