package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/jengzang/visits-backend-go/internal/models"
)

// ParseTimestamp parses a free-form date-time string and returns it in UTC.
// Values without an offset are taken as UTC; values with one are converted.
func ParseTimestamp(s string) (t time.Time, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", models.ErrInvalidTimestamp)
	}

	// the parser is a third party state machine; keep its panics at this boundary
	defer func() {
		if p := recover(); p != nil {
			t = time.Time{}
			err = fmt.Errorf("%w: %q: parser panic: %v", models.ErrInvalidTimestamp, s, p)
		}
	}()

	parsed, perr := dateparse.ParseIn(s, time.UTC)
	if perr != nil {
		return time.Time{}, fmt.Errorf("%w: %q", models.ErrInvalidTimestamp, s)
	}
	return parsed.UTC(), nil
}
