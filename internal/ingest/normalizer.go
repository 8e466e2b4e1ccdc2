package ingest

import (
	"fmt"

	"github.com/jengzang/visits-backend-go/internal/models"
	"github.com/jengzang/visits-backend-go/internal/spatial"
)

// RowNormalizer turns one raw row into a typed record
type RowNormalizer interface {
	Normalize(row models.RawRow) models.NormalizeResult
}

// Normalizer is the default RowNormalizer.
//
// A bad timestamp is a hard failure (no record, Err set). A bad coordinate is
// a soft failure: the record is kept with a nil Location and Warning set.
type Normalizer struct{}

// NewNormalizer creates a new normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize converts a raw row into a VisitRecord
func (n *Normalizer) Normalize(row models.RawRow) models.NormalizeResult {
	ts, err := ParseTimestamp(row.Timestamp)
	if err != nil {
		return models.NormalizeResult{Err: fmt.Errorf("row %d: %w", row.Row, err)}
	}

	record := &models.VisitRecord{
		Row:       row.Row,
		Timestamp: ts,
		RawPoint:  row.Point,
		Place:     row.Place,
	}

	var warning string
	if p, reason, ok := spatial.ParseCoordinateDetail(row.Point); ok {
		record.Location = &p
	} else {
		warning = fmt.Sprintf("row %d: invalid coordinate format %q: %s", row.Row, row.Point, reason)
	}

	return models.NormalizeResult{Record: record, Warning: warning}
}
