package spatial

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jengzang/visits-backend-go/internal/models"
)

// ParseCoordinate parses a "lat,lon" or "lat lon" string into a GeoPoint.
// It never fails loudly: any defect yields ok == false.
func ParseCoordinate(text string) (models.GeoPoint, bool) {
	p, _, ok := ParseCoordinateDetail(text)
	return p, ok
}

// ParseCoordinateDetail is ParseCoordinate plus a human readable reason for
// rejection, meant for ingestion diagnostics.
func ParseCoordinateDetail(text string) (models.GeoPoint, string, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return models.GeoPoint{}, "empty coordinate", false
	}

	// Comma wins over whitespace when both are present
	var tokens []string
	if strings.Contains(s, ",") {
		tokens = strings.Split(s, ",")
	} else {
		tokens = strings.Fields(s)
	}
	if len(tokens) != 2 {
		return models.GeoPoint{}, fmt.Sprintf("expected 2 coordinates, got %d", len(tokens)), false
	}

	lat, err := parseDecimal(tokens[0])
	if err != nil {
		return models.GeoPoint{}, fmt.Sprintf("invalid latitude %q", strings.TrimSpace(tokens[0])), false
	}
	lng, err := parseDecimal(tokens[1])
	if err != nil {
		return models.GeoPoint{}, fmt.Sprintf("invalid longitude %q", strings.TrimSpace(tokens[1])), false
	}

	if lat < -90 || lat > 90 {
		return models.GeoPoint{}, fmt.Sprintf("latitude must be between -90 and 90, got %v", lat), false
	}
	if lng < -180 || lng > 180 {
		return models.GeoPoint{}, fmt.Sprintf("longitude must be between -180 and 180, got %v", lng), false
	}

	p, ok := models.NewGeoPoint(lat, lng)
	if !ok {
		return models.GeoPoint{}, "coordinate out of range", false
	}
	return p, "", true
}

// parseDecimal accepts plain decimal notation only (sign, digits, one dot,
// exponent). Hex floats, NaN and Inf spellings are rejected.
func parseDecimal(token string) (float64, error) {
	t := strings.TrimSpace(token)
	if t == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range t {
		switch {
		case r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E':
		default:
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseFloat(t, 64)
}
