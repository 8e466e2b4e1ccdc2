package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/visits-backend-go/internal/models"
)

func TestNewReloadEvent(t *testing.T) {
	loaded := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rs := &models.RecordSet{
		ID:       "abc",
		Source:   "data/visits.csv",
		LoadedAt: loaded,
		Records:  make([]models.VisitRecord, 3),
		Report:   models.LoadReport{RowsDropped: 1, ChunksSkipped: 2, Partial: true},
	}

	ev := NewReloadEvent(rs)
	assert.Equal(t, ReloadEvent{
		RecordSetID:   "abc",
		Source:        "data/visits.csv",
		LoadedAt:      loaded,
		Records:       3,
		RowsDropped:   1,
		ChunksSkipped: 2,
		Partial:       true,
	}, ev)

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"record_set_id":"abc"`)
	assert.Contains(t, string(b), `"partial":true`)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishReload(context.Background(), &models.RecordSet{}))
	p.Close()
}
