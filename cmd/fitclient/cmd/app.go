package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/fitness-app/fitclient/internal/adapter/outbound/api"
	"github.com/fitness-app/fitclient/internal/adapter/outbound/cel"
	"github.com/fitness-app/fitclient/internal/adapter/outbound/memory"
	"github.com/fitness-app/fitclient/internal/adapter/outbound/sqlite"
	"github.com/fitness-app/fitclient/internal/adapter/outbound/state"
	"github.com/fitness-app/fitclient/internal/config"
	"github.com/fitness-app/fitclient/internal/ctxkey"
	"github.com/fitness-app/fitclient/internal/domain/ratelimit"
	"github.com/fitness-app/fitclient/internal/domain/session"
	"github.com/fitness-app/fitclient/internal/service"
)

// app holds everything one command invocation needs.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    session.Store
	registry *prometheus.Registry
	client   *api.Client
	sessions *service.SessionService

	closers []func(context.Context) error
}

// loadConfig loads the configuration and applies the global flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if devMode {
		cfg.DevMode = true
	}
	if storeType != "" {
		cfg.Store.Type = storeType
		if !viper.IsSet("store.path") {
			cfg.Store.Path = config.DefaultStorePath(storeType)
		}
	}
	if traceEnabled {
		cfg.Telemetry.Trace = true
	}
	if metricsTextfile != "" {
		cfg.Telemetry.MetricsTextfile = metricsTextfile
	}

	cfg.SetDevDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// newApp wires the store, the API client and the session service. Every
// component logs to cmd's stderr with the same run_id.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	})).With("run_id", uuid.NewString())
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Debug("loaded config", "file", configFile)
	}

	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	a.store = store

	opts := []api.Option{
		api.WithBaseURL(cfg.API.BaseURL),
		api.WithTimeout(cfg.APITimeout()),
		api.WithStore(store),
		api.WithLogger(logger),
		api.WithMetrics(api.NewMetrics(a.registry)),
	}
	if cfg.Telemetry.Trace {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(cmd.ErrOrStderr()), stdouttrace.WithPrettyPrint())
		if err != nil {
			a.close(context.Background())
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		a.closers = append(a.closers, tp.Shutdown)
		opts = append(opts, api.WithTracerProvider(tp))
	}

	a.client = api.NewClient(opts...)
	a.sessions = service.NewSessionService(a.client, store, logger)
	return a, nil
}

// openStore opens the configured session store.
func (a *app) openStore() (session.Store, error) {
	switch a.cfg.Store.Type {
	case config.StoreMemory:
		return memory.NewKVStore(), nil
	case config.StoreSQLite:
		st, err := sqlite.Open(a.cfg.Store.Path, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return st.Close() })
		return st, nil
	default:
		return state.NewFileStore(a.cfg.Store.Path, a.logger), nil
	}
}

// close releases resources in reverse order and writes the metrics textfile.
func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("shutdown step failed", "error", err)
		}
	}
	a.closers = nil

	if path := a.cfg.Telemetry.MetricsTextfile; path != "" {
		if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
			a.logger.Warn("failed to write metrics textfile", "path", path, "error", err)
		}
	}
}

// booking builds the booking service with an in-process attempt limiter.
func (a *app) booking(ctx context.Context) *service.BookingService {
	limiter := memory.NewRateLimiter()
	limiter.StartCleanup(ctx)
	a.closers = append(a.closers, func(context.Context) error {
		limiter.Stop()
		return nil
	})

	cfg := service.DefaultBookingConfig()
	cfg.Limit = ratelimit.PerMinute(a.cfg.Booking.AttemptsPerMinute)
	cfg.RecordPayment = a.cfg.Booking.RecordPayment
	cfg.PaymentAmount = a.cfg.Booking.PaymentAmount
	cfg.Location = a.cfg.Location()
	return service.NewBookingService(a.client, a.sessions, limiter, cfg, a.logger)
}

// navigation builds the page guard from the built-in and configured rules.
func (a *app) navigation() (*service.NavigationService, error) {
	rules, err := cel.NewAccessRules(a.cfg.AccessRules)
	if err != nil {
		return nil, err
	}
	return service.NewNavigationService(a.sessions, rules, a.logger), nil
}

func (a *app) contact() *service.ContactService {
	return service.NewContactService(a.client, a.cfg.ContactTimeout(), a.logger)
}

// requireLogin refuses locally when no session is held.
func (a *app) requireLogin() error {
	if !a.sessions.IsAuthenticated() {
		return service.ErrAuthRequired
	}
	return nil
}

// withApp runs fn with a fully wired app and an interrupt-aware context.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))

	ctx = context.WithValue(ctx, ctxkey.LoggerKey{}, a.logger)
	a.logger.Debug("running command", "command", cmd.CommandPath())

	return fn(ctx, a)
}

// parseLogLevel converts a string log level to slog.Level.
// Returns slog.LevelWarn for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
