package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/httplog/v2"
	"golang.org/x/sync/errgroup"

	"github.com/vadimbarashkov/shortlink/internal/adapter/metrics"
	"github.com/vadimbarashkov/shortlink/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/shortlink/internal/cache"
	"github.com/vadimbarashkov/shortlink/internal/clicks"
	"github.com/vadimbarashkov/shortlink/internal/config"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/ratelimit"
	"github.com/vadimbarashkov/shortlink/internal/shortcode"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
	"github.com/vadimbarashkov/shortlink/pkg/postgres"

	delivery "github.com/vadimbarashkov/shortlink/internal/adapter/delivery/http"
	pgrepo "github.com/vadimbarashkov/shortlink/internal/adapter/repository/postgres"
)

const metricsNamespace = "shortlink"

type urlRepository interface {
	Create(ctx context.Context, url *entity.URL) (*entity.URL, error)
	FindByCode(ctx context.Context, shortCode string) (*entity.URL, error)
	FindByURL(ctx context.Context, originalURL string) (string, error)
	RecordClick(ctx context.Context, click *entity.Click) error
	Delete(ctx context.Context, shortCode string) error
	ListPaged(ctx context.Context, page, pageSize int) (*entity.URLPage, error)
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)
}

// NewLogger builds the service logger: concise text in dev, JSON elsewhere.
func NewLogger(env string) *httplog.Logger {
	opts := httplog.Options{
		LogLevel: slog.LevelInfo,
		JSON:     true,
		Tags:     map[string]string{"env": env},
	}

	if env == config.EnvDev {
		opts.LogLevel = slog.LevelDebug
		opts.JSON = false
		opts.Concise = true
	}

	return httplog.NewLogger("shortlink", opts)
}

func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	g, ctx := errgroup.WithContext(ctx)

	repo, closeRepo, err := openRepository(ctx, cfg, logger.Logger)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer closeRepo()

	svc, err := newService(cfg, logger, repo)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        svc.handler,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	// Requests still in flight during shutdown may enqueue clicks, so the
	// recorder outlives the server.
	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	defer stopRecorder()

	g.Go(func() error {
		return svc.recorder.Run(recorderCtx)
	})

	if cfg.Cleanup.Interval > 0 {
		g.Go(func() error {
			runJanitor(ctx, svc.statsUC, cfg.Cleanup.Interval, logger.Logger.With(slog.String("component", "janitor")))
			return nil
		})
	}

	g.Go(func() error {
		var err error

		logger.Info("starting http server", slog.String("addr", server.Addr), slog.String("storage", cfg.Storage))

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		if err := shutdownOnDone(ctx, server, cfg.HTTPServer.WriteTimeout, logger.Logger, stopRecorder); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})

	return g.Wait()
}

// shutdownOnDone waits for ctx to be done, shuts the server down and then
// calls after, whether or not the shutdown succeeded.
func shutdownOnDone(ctx context.Context, server *http.Server, timeout time.Duration, logger *slog.Logger, after func()) error {
	defer after()

	<-ctx.Done()

	logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

// service is the wired application without its listeners and background
// loops.
type service struct {
	handler  http.Handler
	recorder *clicks.Recorder
	statsUC  *usecase.StatsUseCase
}

func newService(cfg *config.Config, logger *httplog.Logger, repo urlRepository) (*service, error) {
	urlCache := cache.New(cfg.Cache.Capacity)
	recorder := clicks.New(repo, logger.Logger.With(slog.String("component", "clicks")),
		cfg.Clicks.QueueSize, cfg.Clicks.WriteTimeout)
	limiter := ratelimit.New(ratelimit.Config{
		Limit:      cfg.RateLimit.Limit,
		Window:     cfg.RateLimit.Window,
		PurgeAfter: cfg.RateLimit.PurgeAfter,
	})
	codeGen := shortcode.New(cfg.ShortCode.Length, cfg.ShortCode.MaxAttempts)

	shortenUC := usecase.NewShortenUseCase(repo, urlCache, codeGen)
	redirectUC := usecase.NewRedirectUseCase(repo, urlCache, recorder)
	statsUC := usecase.NewStatsUseCase(repo, urlCache, limiter)

	m, err := metrics.New(metricsNamespace,
		metrics.NewStatsCollector(metricsNamespace, urlCache, recorder, limiter))
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	router := delivery.NewRouter(logger, delivery.RouterConfig{
		BaseURL:     cfg.BaseURL,
		DocsPath:    cfg.DocsPath,
		Metrics:     m.Handler(),
		Middlewares: []func(http.Handler) http.Handler{m.Middleware},
	}, shortenUC, redirectUC, statsUC)

	return &service{
		handler:  router,
		recorder: recorder,
		statsUC:  statsUC,
	}, nil
}

func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (urlRepository, func(), error) {
	if cfg.Storage == config.StorageMemory {
		return memory.NewURLRepository(), func() {}, nil
	}

	db, err := postgres.New(
		ctx,
		cfg.Postgres.DSN(),
		postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
		postgres.WithConnectRetry(cfg.Postgres.ConnectAttempts, cfg.Postgres.ConnectBackoff),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := postgres.RunMigrations(cfg.MigrationsPath, cfg.Postgres.DSN(), logger); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return pgrepo.NewURLRepository(db), func() { db.Close() }, nil
}
