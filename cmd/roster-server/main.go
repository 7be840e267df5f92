package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/roster/internal/config"
	"github.com/ehr/roster/internal/domain/intake"
	"github.com/ehr/roster/internal/platform/db"
	"github.com/ehr/roster/internal/platform/metrics"
	"github.com/ehr/roster/internal/platform/middleware"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "roster-server",
		Short:        "Patient intake roster",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the roster API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse and admit patients from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a YAML or JSON patient record against the intake rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], cmd.OutOrStdout())
		},
	}
}

func newLogger(env string, out io.Writer) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// seedSource picks the initial roster provider. The returned pool is non-nil
// only for the Postgres source and stays open for /health/db.
func seedSource(ctx context.Context, cfg *config.Config) (intake.SeedSource, *pgxpool.Pool, error) {
	switch cfg.SeedSource {
	case config.SeedFile:
		return intake.FileSeed{Path: cfg.SeedFile}, nil, nil
	case config.SeedPostgres:
		pool, err := db.NewPool(ctx, cfg.SeedDatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, err
		}
		return intake.NewPostgresSeed(pool), pool, nil
	case config.SeedNone:
		return intake.NoSeed{}, nil, nil
	default:
		return intake.EmbeddedSeed{}, nil, nil
	}
}

// loadRoster validates cfg and fills a store from the configured seed.
func loadRoster(ctx context.Context, cfg *config.Config) (*intake.MemoryStore, *pgxpool.Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	src, pool, err := seedSource(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open seed source: %w", err)
	}
	store, err := intake.LoadStore(ctx, src)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, nil, err
	}
	return store, pool, nil
}

func runServer() error {
	// Logger
	logger := newLogger(os.Getenv("ENV"), os.Stdout)

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Roster
	ctx := context.Background()
	store, pool, err := loadRoster(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("seed_source", cfg.SeedSource).Msg("failed to seed roster")
	}
	if pool != nil {
		defer pool.Close()
	}
	logger.Info().Str("seed_source", cfg.SeedSource).Int("patients", store.Len()).Msg("roster seeded")

	var m *metrics.Metrics
	var recorder intake.Recorder
	if cfg.MetricsEnabled {
		m = metrics.New()
		m.TrackRoster(store.Len)
		recorder = m
	}
	svc := intake.NewService(store, logger, recorder)

	loader := intake.StartLoader(cfg.LoadingDelay)
	defer loader.Cancel()

	e := newServer(cfg, logger, svc, loader, m, pool)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer wires middleware and routes. m and pool may be nil when metrics
// are disabled or the roster was not seeded from Postgres.
func newServer(cfg *config.Config, logger zerolog.Logger, svc *intake.Service, loader *intake.Loader, m *metrics.Metrics, pool *pgxpool.Pool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	if m != nil {
		e.Use(m.Middleware())
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.SecurityHeaders(!cfg.IsDev()))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	apiV1 := e.Group("/api/v1")

	// Rate limiting middleware
	rateLimitCfg := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rateLimitCfg.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rateLimitCfg.BurstSize = cfg.RateLimitBurst
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	intake.NewHandler(svc, loader).RegisterRoutes(apiV1)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"version":  version,
			"ready":    !loader.Loading(),
			"patients": svc.Count(),
		})
	})

	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}
	if m != nil {
		e.GET("/metrics", m.Handler())
	}

	return e
}

// runValidate prints the field errors of the record in path. It returns an
// error when the record is invalid so the command exits non-zero.
func runValidate(path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}
	p, err := intake.DecodePatient(data)
	if err != nil {
		return err
	}

	errs := intake.Validate(p)
	if len(errs) == 0 {
		fmt.Fprintln(out, "valid")
		return nil
	}
	for _, f := range errs.Fields() {
		fmt.Fprintf(out, "%s: %s\n", f, errs[f])
	}
	return &intake.ValidationError{Fields: errs}
}
