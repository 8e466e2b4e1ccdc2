// Package stats computes summary statistics over a record set.
package stats

import (
	"sort"
	"time"

	"github.com/jengzang/visits-backend-go/internal/models"
)

// Summarize computes visit counts, distinct places, the timestamp span and
// coordinate validity. A nil or empty set yields zero counts, an empty date
// range and a validity rate of 0.
func Summarize(rs *models.RecordSet) models.Statistics {
	n := rs.Len()
	out := models.Statistics{
		TotalVisits: n,
		CoordinatesSummary: models.CoordinateSummary{
			TotalRecords: n,
		},
	}
	if n == 0 {
		return out
	}

	places := make(map[string]struct{})
	var lat, lon Series
	start, end := rs.Records[0].Timestamp, rs.Records[0].Timestamp

	for i := range rs.Records {
		r := &rs.Records[i]
		places[r.Place] = struct{}{}

		if r.Timestamp.Before(start) {
			start = r.Timestamp
		}
		if r.Timestamp.After(end) {
			end = r.Timestamp
		}

		if r.Location != nil {
			lat.Add(r.Location.Latitude())
			lon.Add(r.Location.Longitude())
		}
	}

	out.UniquePlaces = len(places)
	out.DateRange = models.DateRange{Start: &start, End: &end}

	cs := &out.CoordinatesSummary
	cs.ValidCoordinates = lat.Count()
	cs.InvalidCoordinates = n - lat.Count()
	cs.ValidityRate = Ratio(cs.ValidCoordinates, n)
	cs.LatRange = lat.Range()
	cs.LonRange = lon.Range()
	cs.AvgLat = lat.Mean()
	cs.AvgLon = lon.Mean()

	return out
}

// DayCalendar reports whether a timestamp falls on a business day
type DayCalendar interface {
	Contains(t time.Time) bool
}

// Daily groups visits by UTC calendar day, in ascending date order.
// calendar may be nil, in which case BusinessDay is always false.
func Daily(rs *models.RecordSet, calendar DayCalendar) []models.DailyCount {
	type bucket struct {
		visits   int
		places   map[string]struct{}
		business bool
	}

	buckets := make(map[string]*bucket)
	for i, n := 0, rs.Len(); i < n; i++ {
		r := &rs.Records[i]
		key := r.Timestamp.UTC().Format(models.DateLayout)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{places: make(map[string]struct{})}
			if calendar != nil {
				b.business = calendar.Contains(r.Timestamp)
			}
			buckets[key] = b
		}
		b.visits++
		b.places[r.Place] = struct{}{}
	}

	days := make([]models.DailyCount, 0, len(buckets))
	for key, b := range buckets {
		days = append(days, models.DailyCount{
			Date:         key,
			Visits:       b.visits,
			UniquePlaces: len(b.places),
			BusinessDay:  b.business,
		})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
	return days
}

// Places returns the distinct place labels, sorted
func Places(rs *models.RecordSet) []string {
	seen := make(map[string]struct{})
	places := make([]string, 0)
	for i, n := 0, rs.Len(); i < n; i++ {
		p := rs.Records[i].Place
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		places = append(places, p)
	}
	sort.Strings(places)
	return places
}
