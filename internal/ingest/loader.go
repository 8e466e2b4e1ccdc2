package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/visits-backend-go/internal/metrics"
	"github.com/jengzang/visits-backend-go/internal/models"
)

// Loader defaults
const (
	DefaultChunkSize         = 5000
	DefaultWorkers           = 4
	DefaultParallelThreshold = 10000
	DefaultMaxDiagnostics    = 100
)

// how often a running chunk checks the load deadline, in rows
const deadlineCheckEvery = 256

// LoaderConfig tunes chunking and parallelism
type LoaderConfig struct {
	ChunkSize         int
	Workers           int
	ParallelThreshold int           // sources smaller than this use a single worker
	Timeout           time.Duration // 0 means no deadline
	MaxDiagnostics    int
}

// Loader reads a whole source and normalizes it chunk by chunk
type Loader struct {
	cfg        LoaderConfig
	normalizer RowNormalizer
	logger     *slog.Logger
}

// Option configures a Loader
type Option func(*Loader)

// WithNormalizer replaces the row normalizer
func WithNormalizer(n RowNormalizer) Option {
	return func(l *Loader) {
		if n != nil {
			l.normalizer = n
		}
	}
}

// WithLogger sets the logger; slog.Default() otherwise
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a loader. Non-positive sizes fall back to the defaults.
func NewLoader(cfg LoaderConfig, opts ...Option) *Loader {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.ParallelThreshold < 0 {
		cfg.ParallelThreshold = DefaultParallelThreshold
	}
	if cfg.MaxDiagnostics < 0 {
		cfg.MaxDiagnostics = DefaultMaxDiagnostics
	}

	l := &Loader{
		cfg:        cfg,
		normalizer: NewNormalizer(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Config returns the effective configuration
func (l *Loader) Config() LoaderConfig {
	return l.cfg
}

type chunk struct {
	index int
	start int // source row of the first element
	rows  []models.RawRow
}

type chunkResult struct {
	completed bool
	deadline  bool // abandoned because the load deadline expired
	failure   string
	records   []models.VisitRecord
	dropped   int
	degraded  int
	diags     []models.RowDiagnostic
}

// partition splits rows into contiguous chunks of at most size rows
func partition(rows []models.RawRow, size int) []chunk {
	chunks := make([]chunk, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, chunk{index: len(chunks), start: start, rows: rows[start:end]})
	}
	return chunks
}

// workerCount picks the pool size. Small sources run on one worker through
// the same code path as large ones.
func (l *Loader) workerCount(rows, chunks int) int {
	w := l.cfg.Workers
	if rows < l.cfg.ParallelThreshold {
		w = 1
	}
	if w > chunks {
		w = chunks
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Load reads src and builds a new RecordSet in source row order.
//
// Source-level failures abort the load and wrap models.ErrDataUnavailable.
// Row and chunk failures are absorbed and reported in RecordSet.Report.
func (l *Loader) Load(ctx context.Context, src Source) (*models.RecordSet, error) {
	start := time.Now()

	loadCtx := ctx
	if l.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		defer cancel()
	}

	table, err := src.ReadTable(loadCtx)
	if err != nil {
		metrics.IngestLoads.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("load %s: %w", src.Describe(), err)
	}
	rows, err := table.RawRows()
	if err != nil {
		metrics.IngestLoads.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("load %s: %w", src.Describe(), err)
	}

	chunks := partition(rows, l.cfg.ChunkSize)
	results := make([]chunkResult, len(chunks))
	workers := l.workerCount(len(rows), len(chunks))

	// Each task writes only its own slot, so results stay in chunk order
	// whatever the completion order is.
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for _, c := range chunks {
		if loadCtx.Err() != nil {
			break
		}
		c := c
		g.Go(func() error {
			results[c.index] = l.processChunk(loadCtx, c)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		metrics.IngestLoads.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("load %s: %w", src.Describe(), err)
	}

	rs := l.assemble(src, chunks, results, len(rows), workers, start)

	metrics.IngestRows.WithLabelValues("loaded").Add(float64(rs.Report.RecordsLoaded))
	metrics.IngestRows.WithLabelValues("degraded").Add(float64(rs.Report.InvalidCoordinates))
	metrics.IngestRows.WithLabelValues("dropped").Add(float64(rs.Report.RowsDropped))
	metrics.IngestRows.WithLabelValues("skipped").Add(float64(rs.Report.RowsSkipped))
	metrics.IngestChunksSkipped.Add(float64(rs.Report.ChunksSkipped))
	metrics.IngestDuration.Observe(time.Since(start).Seconds())
	if rs.Report.Partial {
		metrics.IngestLoads.WithLabelValues("partial").Inc()
	} else {
		metrics.IngestLoads.WithLabelValues("ok").Inc()
	}

	return rs, nil
}

// processChunk normalizes one chunk. A panic anywhere in the chunk discards
// the whole chunk; an expired deadline abandons it.
func (l *Loader) processChunk(ctx context.Context, c chunk) (res chunkResult) {
	defer func() {
		if p := recover(); p != nil {
			res = chunkResult{failure: fmt.Sprintf("unexpected error: %v", p)}
		}
	}()

	records := make([]models.VisitRecord, 0, len(c.rows))
	for i, row := range c.rows {
		if i%deadlineCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return chunkResult{deadline: true, failure: "load deadline exceeded: " + err.Error()}
			}
		}

		out := l.normalizer.Normalize(row)
		switch {
		case out.Err != nil:
			res.dropped++
			res.addDiag(l.cfg.MaxDiagnostics, row.Row, models.SeverityDropped, out.Err.Error())
		case out.Record == nil:
			res.dropped++
			res.addDiag(l.cfg.MaxDiagnostics, row.Row, models.SeverityDropped, "normalizer returned no record")
		default:
			records = append(records, *out.Record)
			if out.Warning != "" {
				res.degraded++
				res.addDiag(l.cfg.MaxDiagnostics, row.Row, models.SeverityDegraded, out.Warning)
			}
		}
	}

	res.records = records
	res.completed = true
	return res
}

func (r *chunkResult) addDiag(limit, row int, severity, msg string) {
	if len(r.diags) < limit {
		r.diags = append(r.diags, models.RowDiagnostic{Row: row, Severity: severity, Message: msg})
	}
}

// assemble concatenates completed chunks in index order and fills the report
func (l *Loader) assemble(src Source, chunks []chunk, results []chunkResult, rowsRead, workers int, start time.Time) *models.RecordSet {
	report := models.LoadReport{
		Source:      src.Describe(),
		RowsRead:    rowsRead,
		ChunksTotal: len(chunks),
		Workers:     workers,
		StartedAt:   start.UTC(),
	}

	size := 0
	for _, r := range results {
		size += len(r.records)
	}
	records := make([]models.VisitRecord, 0, size)

	var diags []models.RowDiagnostic
	deadlineSkips := 0
	for i, r := range results {
		if !r.completed {
			failure := r.failure
			if failure == "" {
				failure = "load deadline exceeded before the chunk started"
			}
			report.ChunksSkipped++
			report.RowsSkipped += len(chunks[i].rows)
			if r.failure == "" || r.deadline {
				deadlineSkips++
			}
			diags = append(diags, models.RowDiagnostic{
				Row:      chunks[i].start,
				Severity: models.SeverityChunkSkipped,
				Message:  fmt.Sprintf("chunk %d (rows %d-%d) skipped: %s", i, chunks[i].start, chunks[i].start+len(chunks[i].rows)-1, failure),
			})
			l.logger.Warn("chunk skipped",
				"source", report.Source,
				"chunk", i,
				"first_row", chunks[i].start,
				"rows", len(chunks[i].rows),
				"reason", failure,
			)
			continue
		}

		records = append(records, r.records...)
		report.RowsDropped += r.dropped
		report.InvalidCoordinates += r.degraded
		diags = append(diags, r.diags...)
	}

	if len(diags) > l.cfg.MaxDiagnostics {
		diags = diags[:l.cfg.MaxDiagnostics]
	}
	report.Diagnostics = diags
	report.RecordsLoaded = len(records)
	report.Partial = deadlineSkips > 0
	report.DurationMS = time.Since(start).Milliseconds()

	for _, d := range diags {
		if d.Severity != models.SeverityChunkSkipped {
			l.logger.Debug("row diagnostic", "row", d.Row, "severity", d.Severity, "message", d.Message)
		}
	}
	if report.RowsDropped > 0 {
		l.logger.Warn("rows dropped during ingestion", "source", report.Source, "dropped", report.RowsDropped)
	}
	l.logger.Info("visit source loaded",
		"source", report.Source,
		"rows_read", report.RowsRead,
		"records", report.RecordsLoaded,
		"invalid_coordinates", report.InvalidCoordinates,
		"rows_dropped", report.RowsDropped,
		"chunks", report.ChunksTotal,
		"chunks_skipped", report.ChunksSkipped,
		"workers", workers,
		"partial", report.Partial,
		"duration_ms", report.DurationMS,
	)

	return &models.RecordSet{
		ID:       uuid.NewString(),
		Source:   report.Source,
		LoadedAt: time.Now().UTC(),
		Records:  records,
		Report:   report,
	}
}
