package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/AngelCh415/spark-tracker/internal/config"
	"github.com/AngelCh415/spark-tracker/internal/httpx"
	"github.com/AngelCh415/spark-tracker/internal/inbox"
	"github.com/AngelCh415/spark-tracker/internal/ingest"
	"github.com/AngelCh415/spark-tracker/internal/metrics"
	"github.com/AngelCh415/spark-tracker/internal/outreach"
	"github.com/AngelCh415/spark-tracker/internal/settings"
	"github.com/AngelCh415/spark-tracker/internal/store"
	"github.com/AngelCh415/spark-tracker/internal/telemetry"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	cmd := rootCmd(cfg, logger)
	if len(os.Args) == 1 {
		cmd.SetArgs([]string{"serve"})
	}
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func rootCmd(cfg config.Config, logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:          "spark-tracker",
		Short:        "Social analytics and DM pipeline tracker",
		SilenceUsage: true,
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg, logger)
		},
	})
	root.AddCommand(migrateCmd(cfg, logger))
	return root
}

func migrateCmd(cfg config.Config, logger *slog.Logger) *cobra.Command {
	var down bool
	c := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required for migrate")
			}
			if err := store.Migrate(cfg.DatabaseURL, down); err != nil {
				return err
			}
			logger.Info("migrations applied", slog.Bool("down", down))
			return nil
		},
	}
	c.Flags().BoolVarP(&down, "down", "d", false, "Rollback migrations")
	return c
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		outreachSt store.OutreachStore
		messageSt  store.MessageStore
		dailySt    store.DailyMetricStore
		checks     []func(context.Context) error
	)
	if cfg.DatabaseURL != "" {
		if err := store.Migrate(cfg.DatabaseURL, false); err != nil {
			return err
		}
		pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()
		outreachSt, messageSt, dailySt = pg.Outreach(), pg.Messages(), pg
		checks = append(checks, pg.Ping)
		logger.Info("using postgres store")
	} else {
		ms := store.NewMemoryStore()
		outreachSt, messageSt, dailySt = ms.Outreach(), ms.Messages(), ms
		logger.Warn("DATABASE_URL not set, using in-memory store")
	}

	var settingsSt settings.Store = settings.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		rs := settings.NewRedisStore(rdb)
		settingsSt = rs
		checks = append(checks, rs.Ping)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	col := telemetry.NewCollector(reg)

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	r := httpx.NewRouter(httpx.Deps{
		Log:       logger,
		Config:    cfg,
		Outreach:  outreach.NewService(outreachSt),
		Inbox:     inbox.NewService(messageSt),
		Metrics:   metrics.NewService(outreachSt, dailySt),
		Settings:  settingsSt,
		YouTube:   ingest.NewYouTube(cl, cfg.YouTubeBaseURL),
		Meta:      ingest.NewMeta(cl, cfg.GraphBaseURL),
		Telemetry: col,
		Gatherer:  reg,
		Ready: func(ctx context.Context) error {
			for _, c := range checks {
				if err := c(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
