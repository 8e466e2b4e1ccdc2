package stats

import "github.com/jengzang/visits-backend-go/internal/models"

// Series accumulates count, sum, min and max of a stream of values
// without keeping them.
type Series struct {
	n   int
	sum float64
	min float64
	max float64
}

// Add adds a value to the series
func (s *Series) Add(v float64) {
	if s.n == 0 || v < s.min {
		s.min = v
	}
	if s.n == 0 || v > s.max {
		s.max = v
	}
	s.sum += v
	s.n++
}

// Count returns the number of values added
func (s *Series) Count() int {
	return s.n
}

// Mean returns the arithmetic mean, or nil for an empty series
func (s *Series) Mean() *float64 {
	if s.n == 0 {
		return nil
	}
	m := s.sum / float64(s.n)
	return &m
}

// Range returns the min/max pair, or nil for an empty series
func (s *Series) Range() *models.ValueRange {
	if s.n == 0 {
		return nil
	}
	return &models.ValueRange{Min: s.min, Max: s.max}
}

// Ratio returns part/whole, 0 when whole is 0
func Ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}
