package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/visits-backend-go/internal/database"
	"github.com/jengzang/visits-backend-go/internal/models"
)

const scenarioCSV = `timestamp,point,place
2024-01-01 10:00:00,"19.43,-99.13",Cafe A
2024-01-02 11:30:00,invalid,Cafe B
2024-01-03 09:15:00,"19.44,-99.14",Cafe A
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// generateCSV writes n rows whose place encodes the row index
func generateCSV(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("timestamp,point,place\n")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%s,\"19.%d,-99.1\",place-%d\n", base.Add(time.Duration(i)*time.Minute).Format("2006-01-02 15:04:05"), i%100, i)
	}
	return writeFile(t, "generated.csv", b.String())
}

func TestLoadScenario(t *testing.T) {
	path := writeFile(t, "visits.csv", scenarioCSV)
	loader := NewLoader(LoaderConfig{MaxDiagnostics: 10}, WithLogger(quietLogger()))

	rs, err := loader.Load(context.Background(), NewCSVSource(path))
	require.NoError(t, err)
	require.Equal(t, 3, rs.Len())

	assert.Equal(t, "Cafe A", rs.Records[0].Place)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), rs.Records[0].Timestamp)
	require.NotNil(t, rs.Records[0].Location)
	assert.InDelta(t, 19.43, rs.Records[0].Location.Latitude(), 1e-9)
	assert.InDelta(t, -99.13, rs.Records[0].Location.Longitude(), 1e-9)

	assert.Nil(t, rs.Records[1].Location)
	assert.Equal(t, "invalid", rs.Records[1].RawPoint)
	assert.Equal(t, "Cafe B", rs.Records[1].Place)

	assert.NotNil(t, rs.Records[2].Location)

	report := rs.Report
	assert.Equal(t, 3, report.RowsRead)
	assert.Equal(t, 3, report.RecordsLoaded)
	assert.Equal(t, 1, report.InvalidCoordinates)
	assert.Zero(t, report.RowsDropped)
	assert.Zero(t, report.ChunksSkipped)
	assert.False(t, report.Partial)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, models.SeverityDegraded, report.Diagnostics[0].Severity)
	assert.Equal(t, 1, report.Diagnostics[0].Row)
	assert.NotEmpty(t, rs.ID)
}

func TestLoadDropsBadTimestamps(t *testing.T) {
	path := writeFile(t, "visits.csv", `timestamp,point,place
2024-01-01 10:00:00,"19.43,-99.13",Cafe A
not a date,"19.43,-99.13",Cafe B
,"19.43,-99.13",Cafe C
2024-01-03 09:15:00,"19.44,-99.14",Cafe D
`)
	rs, err := NewLoader(LoaderConfig{MaxDiagnostics: 10}, WithLogger(quietLogger())).Load(context.Background(), NewCSVSource(path))
	require.NoError(t, err)

	require.Equal(t, 2, rs.Len())
	assert.Equal(t, "Cafe A", rs.Records[0].Place)
	assert.Equal(t, "Cafe D", rs.Records[1].Place)
	assert.Equal(t, 2, rs.Report.RowsDropped)
	for _, d := range rs.Report.Diagnostics {
		assert.Equal(t, models.SeverityDropped, d.Severity)
	}
}

func TestLoadPreservesOrderAcrossChunks(t *testing.T) {
	const n = 257
	path := generateCSV(t, n)

	loader := NewLoader(LoaderConfig{ChunkSize: 7, Workers: 4, ParallelThreshold: 0}, WithLogger(quietLogger()))
	rs, err := loader.Load(context.Background(), NewCSVSource(path))
	require.NoError(t, err)

	require.Equal(t, n, rs.Len())
	assert.Equal(t, 4, rs.Report.Workers)
	assert.Equal(t, 37, rs.Report.ChunksTotal)
	for i, r := range rs.Records {
		assert.Equal(t, fmt.Sprintf("place-%d", i), r.Place)
		assert.Equal(t, i, r.Row)
	}
}

func TestLoadSequentialBelowThreshold(t *testing.T) {
	path := generateCSV(t, 50)

	loader := NewLoader(LoaderConfig{ChunkSize: 10, Workers: 8, ParallelThreshold: 1000}, WithLogger(quietLogger()))
	rs, err := loader.Load(context.Background(), NewCSVSource(path))
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Report.Workers)
	assert.Equal(t, 50, rs.Len())
}

func TestLoadIsIdempotent(t *testing.T) {
	path := generateCSV(t, 120)
	loader := NewLoader(LoaderConfig{ChunkSize: 16, Workers: 3, ParallelThreshold: 0}, WithLogger(quietLogger()))

	first, err := loader.Load(context.Background(), NewCSVSource(path))
	require.NoError(t, err)
	second, err := loader.Load(context.Background(), NewCSVSource(path))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Records, second.Records)
}

// panickingNormalizer fails on one row and delegates the rest
type panickingNormalizer struct {
	row   int
	inner RowNormalizer
}

func (p panickingNormalizer) Normalize(row models.RawRow) models.NormalizeResult {
	if row.Row == p.row {
		panic("boom")
	}
	return p.inner.Normalize(row)
}

func TestLoadSkipsPanickingChunk(t *testing.T) {
	path := generateCSV(t, 30)
	loader := NewLoader(
		LoaderConfig{ChunkSize: 10, Workers: 2, ParallelThreshold: 0, MaxDiagnostics: 10},
		WithNormalizer(panickingNormalizer{row: 13, inner: NewNormalizer()}),
		WithLogger(quietLogger()),
	)

	rs, err := loader.Load(context.Background(), NewCSVSource(path))
	require.NoError(t, err)

	assert.Equal(t, 20, rs.Len())
	assert.Equal(t, 1, rs.Report.ChunksSkipped)
	assert.Equal(t, 10, rs.Report.RowsSkipped)
	assert.False(t, rs.Report.Partial)

	// rows 10-19 are gone, everything else is in order
	for _, r := range rs.Records {
		assert.False(t, r.Row >= 10 && r.Row < 20, "row %d should have been skipped", r.Row)
	}
	assert.Equal(t, 9, rs.Records[9].Row)
	assert.Equal(t, 20, rs.Records[10].Row)

	require.NotEmpty(t, rs.Report.Diagnostics)
	var skipped []models.RowDiagnostic
	for _, d := range rs.Report.Diagnostics {
		if d.Severity == models.SeverityChunkSkipped {
			skipped = append(skipped, d)
		}
	}
	require.Len(t, skipped, 1)
	assert.Equal(t, 10, skipped[0].Row)
	assert.Contains(t, skipped[0].Message, "boom")
}

// slowNormalizer sleeps on every row
type slowNormalizer struct {
	delay time.Duration
	calls *atomic.Int64
}

func (s slowNormalizer) Normalize(row models.RawRow) models.NormalizeResult {
	s.calls.Add(1)
	time.Sleep(s.delay)
	return NewNormalizer().Normalize(row)
}

func TestLoadTimeoutReturnsPartialResult(t *testing.T) {
	path := generateCSV(t, 2000)
	calls := new(atomic.Int64)
	loader := NewLoader(
		LoaderConfig{ChunkSize: 1, Workers: 1, ParallelThreshold: 0, Timeout: 50 * time.Millisecond, MaxDiagnostics: 5},
		WithNormalizer(slowNormalizer{delay: 2 * time.Millisecond, calls: calls}),
		WithLogger(quietLogger()),
	)

	rs, err := loader.Load(context.Background(), NewCSVSource(path))
	require.NoError(t, err)

	assert.True(t, rs.Report.Partial)
	assert.Greater(t, rs.Report.ChunksSkipped, 0)
	assert.Less(t, rs.Len(), 2000)
	assert.Equal(t, 2000, rs.Len()+rs.Report.RowsSkipped)
	assert.LessOrEqual(t, len(rs.Report.Diagnostics), 5)
	for i := 1; i < rs.Len(); i++ {
		assert.Less(t, rs.Records[i-1].Row, rs.Records[i].Row)
	}
}

func TestLoadCancelledContext(t *testing.T) {
	path := generateCSV(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(LoaderConfig{}, WithLogger(quietLogger())).Load(ctx, NewCSVSource(path))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")
	_, err := NewLoader(LoaderConfig{}, WithLogger(quietLogger())).Load(context.Background(), NewCSVSource(path))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestLoadMissingColumn(t *testing.T) {
	path := writeFile(t, "visits.csv", "timestamp,place\n2024-01-01 10:00:00,Cafe A\n")
	_, err := NewLoader(LoaderConfig{}, WithLogger(quietLogger())).Load(context.Background(), NewCSVSource(path))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
	assert.Contains(t, err.Error(), "point")
}

func TestLoadEmptySource(t *testing.T) {
	path := writeFile(t, "visits.csv", "timestamp,point,place\n")
	rs, err := NewLoader(LoaderConfig{}, WithLogger(quietLogger())).Load(context.Background(), NewCSVSource(path))
	require.NoError(t, err)
	assert.Zero(t, rs.Len())
	assert.Zero(t, rs.Report.ChunksTotal)
}

func TestLoadSQLiteSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visits.db")
	db, err := database.Open(database.Config{Path: path})
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE visits (timestamp TEXT, point TEXT, place TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO visits VALUES
		('2024-01-01 10:00:00', '19.43,-99.13', 'Cafe A'),
		('2024-01-02 11:30:00', 'invalid', 'Cafe B'),
		('2024-01-03 09:15:00', '19.44,-99.14', NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src := OpenSource(path, "visits")
	require.IsType(t, &SQLiteSource{}, src)
	assert.Equal(t, path+"#visits", src.Describe())

	rs, err := NewLoader(LoaderConfig{}, WithLogger(quietLogger())).Load(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, 3, rs.Len())
	assert.Nil(t, rs.Records[1].Location)
	assert.Equal(t, "", rs.Records[2].Place)
	assert.Equal(t, 1, rs.Report.InvalidCoordinates)
}

func TestSQLiteSourceRejectsBadTableName(t *testing.T) {
	_, err := NewSQLiteSource("whatever.db", `visits"; DROP TABLE x; --`).ReadTable(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestPartition(t *testing.T) {
	rows := make([]models.RawRow, 11)
	chunks := partition(rows, 4)
	require.Len(t, chunks, 3)
	assert.Equal(t, 0, chunks[0].start)
	assert.Equal(t, 4, chunks[1].start)
	assert.Equal(t, 8, chunks[2].start)
	assert.Len(t, chunks[2].rows, 3)

	assert.Empty(t, partition(nil, 4))
}

func TestNewLoaderDefaults(t *testing.T) {
	cfg := NewLoader(LoaderConfig{ChunkSize: -1, Workers: 0, ParallelThreshold: -5, MaxDiagnostics: -1}).Config()
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultParallelThreshold, cfg.ParallelThreshold)
	assert.Equal(t, DefaultMaxDiagnostics, cfg.MaxDiagnostics)
}
