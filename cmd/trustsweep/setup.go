package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/jplaskett/trustsweep/service/batch"
	"github.com/jplaskett/trustsweep/service/config"
	"github.com/jplaskett/trustsweep/service/db"
	"github.com/jplaskett/trustsweep/service/metrics"
	outcomenats "github.com/jplaskett/trustsweep/service/nats"
	"github.com/jplaskett/trustsweep/service/xrpl"
)

// loadConfig reads the environment config and applies CLI flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.IsSet("ws-url") {
		cfg.WebsocketURL = c.String("ws-url")
	}
	if c.IsSet("database-url") {
		cfg.DatabaseURL = c.String("database-url")
	}
	if c.IsSet("nats-url") {
		cfg.NATSURL = c.String("nats-url")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger builds the structured logger all components share.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// setupMetrics creates collectors and serves them when --metrics-addr is
// set; otherwise metrics stay disabled and components skip recording.
func setupMetrics(c *cli.Context, logger *slog.Logger) *metrics.Metrics {
	addr := c.String("metrics-addr")
	if addr == "" {
		return nil
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info("serving metrics", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics listener stopped", "error", err)
		}
	}()
	return m
}

// runMeta carries the identifiers the audit store needs before a run starts.
type runMeta struct {
	ID       string
	Mode     string
	Issuer   string
	Currency string
}

// buildSinks assembles the outcome sinks for a run: the log sink always,
// plus the audit store and event publisher when configured. The returned
// cleanup releases their connections.
func buildSinks(ctx context.Context, cfg *config.Config, logger *slog.Logger, meta runMeta) ([]batch.OutcomeSink, func(), error) {
	sinks := []batch.OutcomeSink{batch.NewLogSink(logger)}
	var closers []func()
	cleanup := func() {
		for _, fn := range closers {
			fn()
		}
	}

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connect to database: %w", err)
		}
		closers = append(closers, pool.Close)

		store := db.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		if err := store.CreateBatchRun(ctx, db.BatchRun{
			ID:       meta.ID,
			Mode:     meta.Mode,
			Issuer:   meta.Issuer,
			Currency: meta.Currency,
		}); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		sinks = append(sinks, db.NewSink(store))
		logger.Info("outcome audit store enabled", "run_id", meta.ID)
	}

	if cfg.NATSURL != "" {
		publisher, err := outcomenats.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closers = append(closers, func() { _ = publisher.Close() })
		sinks = append(sinks, outcomenats.NewSink(publisher))
	}

	return sinks, cleanup, nil
}

// selectTrustline picks a trustline by its 1-based listing index. An
// out-of-range index is a configuration error caught before the loop runs.
func selectTrustline(lines []xrpl.TrustLine, index int) (xrpl.TrustLine, error) {
	if len(lines) == 0 {
		return xrpl.TrustLine{}, fmt.Errorf("account has no trustlines")
	}
	if index < 1 || index > len(lines) {
		return xrpl.TrustLine{}, fmt.Errorf("trustline index %d out of range (1-%d)", index, len(lines))
	}
	return lines[index-1], nil
}
