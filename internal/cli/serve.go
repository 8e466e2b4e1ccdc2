package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/jengzang/visits-backend-go/internal/api"
	"github.com/jengzang/visits-backend-go/internal/config"
	"github.com/jengzang/visits-backend-go/internal/ingest"
	"github.com/jengzang/visits-backend-go/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	closer, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	defer closer.Close()
	if err != nil {
		return err
	}
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	// 初始加载；失败时服务照常启动，数据接口返回 404 直到重新加载成功
	if _, err := a.store.Reload(ctx); err != nil {
		logger.Warn("initial load failed, serving without data", "error", err)
	}

	if cfg.Watch.Enabled {
		w := ingest.NewWatcher(cfg.Data.FilePath, cfg.Watch.Debounce, func(ctx context.Context) {
			_, _ = a.store.Reload(ctx)
		}, logger)
		if err := w.Start(ctx); err != nil {
			logger.Warn("file watching disabled", "error", err)
		}
	}

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.SetupRouter(cfg, api.Deps{
		VisitService: a.visits,
		StatsService: a.stats,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		// 启动服务器
		logger.Info("server starting", "addr", srv.Addr, "version", cfg.App.Version, "source", a.source.Describe())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
