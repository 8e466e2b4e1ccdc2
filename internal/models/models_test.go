package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lng  float64
		ok   bool
	}{
		{"origin", 0, 0, true},
		{"bounds", 90, -180, true},
		{"lat too high", 90.000001, 0, false},
		{"lng too low", 0, -180.1, false},
		{"nan lat", math.NaN(), 0, false},
		{"inf lng", 0, math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := NewGeoPoint(tt.lat, tt.lng)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.lat, p.Latitude())
				assert.Equal(t, tt.lng, p.Longitude())
				assert.InDelta(t, tt.lat, p.LatLng().Lat.Degrees(), 1e-9)
			} else {
				assert.Equal(t, GeoPoint{}, p)
			}
		})
	}
}

func TestVisitRecord_MarshalJSON(t *testing.T) {
	loc, _ := NewGeoPoint(19.4, -99.1)
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	t.Run("with location", func(t *testing.T) {
		data, err := json.Marshal(VisitRecord{Timestamp: ts, RawPoint: "19.4,-99.1", Place: "Office", Location: &loc})
		require.NoError(t, err)
		assert.JSONEq(t, `{"timestamp":"2024-01-01T10:00:00","point":"19.4,-99.1","place":"Office","latitude":19.4,"longitude":-99.1}`, string(data))
	})

	t.Run("without location", func(t *testing.T) {
		data, err := json.Marshal(VisitRecord{Timestamp: ts.Add(1500 * time.Millisecond), RawPoint: "bad", Place: "Office"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"timestamp":"2024-01-01T10:00:01.5","point":"bad","place":"Office","latitude":null,"longitude":null}`, string(data))
	})
}

func TestRecordSet_NilSafe(t *testing.T) {
	var rs *RecordSet
	assert.Equal(t, 0, rs.Len())
	_, ok := rs.At(0)
	assert.False(t, ok)

	rs = &RecordSet{Records: []VisitRecord{{Place: "a"}, {Place: "b"}}}
	r, ok := rs.At(1)
	require.True(t, ok)
	assert.Equal(t, "b", r.Place)
	_, ok = rs.At(2)
	assert.False(t, ok)
	_, ok = rs.At(-1)
	assert.False(t, ok)
}

func TestDateRange_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(DateRange{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":null,"end":null}`, string(data))
	assert.True(t, DateRange{}.IsEmpty())

	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	data, err = json.Marshal(DateRange{Start: &start, End: &end})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2024-01-01T10:00:00","end":"2024-01-02T09:00:00"}`, string(data))
}

func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("open visits.csv: %w", ErrDataUnavailable)
	assert.True(t, errors.Is(wrapped, ErrDataUnavailable))
	assert.False(t, errors.Is(wrapped, ErrInvalidFilter))
	assert.Equal(t, "invalid filter", ErrInvalidFilter.Error())
}
