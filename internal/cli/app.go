package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jengzang/visits-backend-go/internal/config"
	"github.com/jengzang/visits-backend-go/internal/ingest"
	"github.com/jengzang/visits-backend-go/internal/logging"
	"github.com/jengzang/visits-backend-go/internal/notify"
	"github.com/jengzang/visits-backend-go/internal/query"
	"github.com/jengzang/visits-backend-go/internal/repository"
	"github.com/jengzang/visits-backend-go/internal/service"
)

// app holds the wired components shared by the commands
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	source    ingest.Source
	loader    *ingest.Loader
	calendar  *ingest.Calendar
	store     *repository.VisitStore
	publisher notify.Publisher

	visits *service.VisitService
	stats  *service.StatsService
}

// loadConfig reads the configuration and builds a logger writing to w
func loadConfig(w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(w, cfg.Log.Level, cfg.Log.Format), nil
}

// newApp wires the components. NATS is only connected when withNotify is
// set and a URL is configured.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, withNotify bool) (*app, error) {
	a := &app{
		cfg:       cfg,
		logger:    logger,
		source:    ingest.OpenSource(cfg.Data.FilePath, cfg.Data.SQLiteTable),
		publisher: notify.NopPublisher{},
	}

	a.loader = ingest.NewLoader(ingest.LoaderConfig{
		ChunkSize:         cfg.Ingest.ChunkSize,
		Workers:           cfg.Ingest.Workers,
		ParallelThreshold: cfg.Ingest.ParallelThreshold,
		Timeout:           cfg.Ingest.Timeout,
		MaxDiagnostics:    cfg.Ingest.MaxDiagnostics,
	}, ingest.WithLogger(logger))

	if cfg.Data.BusinessDaysPath != "" {
		cal, err := ingest.LoadCalendar(ctx, cfg.Data.BusinessDaysPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load business days: %w", err)
		}
		logger.Info("business-day calendar loaded", "path", cfg.Data.BusinessDaysPath, "days", cal.Len())
		a.calendar = &cal
	}

	if withNotify && cfg.NATS.URL != "" {
		pub, err := notify.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			return nil, err
		}
		logger.Info("reload notifications enabled", "url", cfg.NATS.URL, "subject", cfg.NATS.Subject)
		a.publisher = pub
	}

	a.store = repository.NewVisitStore(a.source, a.loader, a.publisher, logger)

	var dayCal query.DayCalendar
	if a.calendar != nil {
		dayCal = *a.calendar
	}
	a.visits = service.NewVisitService(a.store, query.NewEngine(cfg.Query.MaxRecordsPerRequest, dayCal))
	a.stats = service.NewStatsService(a.store, dayCal)
	return a, nil
}

// Close releases external connections
func (a *app) Close() {
	a.publisher.Close()
}
