package stats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/visits-backend-go/internal/models"
)

func geo(t *testing.T, lat, lng float64) *models.GeoPoint {
	t.Helper()
	p, ok := models.NewGeoPoint(lat, lng)
	require.True(t, ok)
	return &p
}

func scenario(t *testing.T) *models.RecordSet {
	return &models.RecordSet{Records: []models.VisitRecord{
		{Row: 0, Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), Place: "Cafe A", Location: geo(t, 19.43, -99.13)},
		{Row: 1, Timestamp: time.Date(2024, 1, 2, 11, 30, 0, 0, time.UTC), Place: "Cafe B"},
		{Row: 2, Timestamp: time.Date(2024, 1, 3, 9, 15, 0, 0, time.UTC), Place: "Cafe A", Location: geo(t, 19.44, -99.14)},
	}}
}

func TestSummarizeScenario(t *testing.T) {
	s := Summarize(scenario(t))

	assert.Equal(t, 3, s.TotalVisits)
	assert.Equal(t, 2, s.UniquePlaces)
	require.False(t, s.DateRange.IsEmpty())
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), *s.DateRange.Start)
	assert.Equal(t, time.Date(2024, 1, 3, 9, 15, 0, 0, time.UTC), *s.DateRange.End)

	cs := s.CoordinatesSummary
	assert.Equal(t, 3, cs.TotalRecords)
	assert.Equal(t, 2, cs.ValidCoordinates)
	assert.Equal(t, 1, cs.InvalidCoordinates)
	assert.InDelta(t, 0.6667, cs.ValidityRate, 1e-3)
	require.NotNil(t, cs.LatRange)
	assert.InDelta(t, 19.43, cs.LatRange.Min, 1e-9)
	assert.InDelta(t, 19.44, cs.LatRange.Max, 1e-9)
	require.NotNil(t, cs.LonRange)
	assert.InDelta(t, -99.14, cs.LonRange.Min, 1e-9)
	require.NotNil(t, cs.AvgLat)
	assert.InDelta(t, 19.435, *cs.AvgLat, 1e-9)
	assert.InDelta(t, -99.135, *cs.AvgLon, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	for name, rs := range map[string]*models.RecordSet{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			s := Summarize(rs)
			assert.Zero(t, s.TotalVisits)
			assert.Zero(t, s.UniquePlaces)
			assert.True(t, s.DateRange.IsEmpty())
			assert.Zero(t, s.CoordinatesSummary.ValidityRate)
			assert.Nil(t, s.CoordinatesSummary.LatRange)

			b, err := json.Marshal(s)
			require.NoError(t, err)
			assert.Contains(t, string(b), `"date_range":{"start":null,"end":null}`)
			assert.NotContains(t, string(b), "avg_lat")
		})
	}
}

func TestSummarizeNoValidLocations(t *testing.T) {
	rs := &models.RecordSet{Records: []models.VisitRecord{
		{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Place: "x"},
	}}
	cs := Summarize(rs).CoordinatesSummary
	assert.Equal(t, 1, cs.InvalidCoordinates)
	assert.Zero(t, cs.ValidityRate)
	assert.Nil(t, cs.AvgLat)
	assert.Nil(t, cs.LonRange)
}

func TestUniquePlacesCaseSensitive(t *testing.T) {
	rs := &models.RecordSet{Records: []models.VisitRecord{
		{Place: "Cafe A"}, {Place: "cafe a"}, {Place: "Cafe A"},
	}}
	assert.Equal(t, 2, Summarize(rs).UniquePlaces)
	assert.Equal(t, []string{"Cafe A", "cafe a"}, Places(rs))
}

type calendar map[string]bool

func (c calendar) Contains(t time.Time) bool { return c[t.Format(models.DateLayout)] }

func TestDaily(t *testing.T) {
	rs := scenario(t)
	rs.Records = append(rs.Records, models.VisitRecord{Timestamp: time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC), Place: "Bar"})

	days := Daily(rs, calendar{"2024-01-02": true})
	require.Len(t, days, 3)
	assert.Equal(t, models.DailyCount{Date: "2024-01-01", Visits: 2, UniquePlaces: 2}, days[0])
	assert.Equal(t, models.DailyCount{Date: "2024-01-02", Visits: 1, UniquePlaces: 1, BusinessDay: true}, days[1])
	assert.Equal(t, "2024-01-03", days[2].Date)

	assert.Empty(t, Daily(nil, nil))
}

func TestPlaces(t *testing.T) {
	assert.Equal(t, []string{"Cafe A", "Cafe B"}, Places(scenario(t)))
	assert.Empty(t, Places(nil))
}

func TestSeries(t *testing.T) {
	var s Series
	assert.Nil(t, s.Mean())
	assert.Nil(t, s.Range())

	for _, v := range []float64{3, -1, 4} {
		s.Add(v)
	}
	assert.Equal(t, 3, s.Count())
	assert.InDelta(t, 2.0, *s.Mean(), 1e-9)
	assert.Equal(t, &models.ValueRange{Min: -1, Max: 4}, s.Range())

	assert.Zero(t, Ratio(1, 0))
	assert.Equal(t, 0.5, Ratio(1, 2))
}
