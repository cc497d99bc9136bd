package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"vouch/internal/auth/handler"
	"vouch/internal/auth/hasher"
	authmetrics "vouch/internal/auth/metrics"
	"vouch/internal/auth/minter"
	"vouch/internal/auth/service"
	tokenstore "vouch/internal/auth/store/token"
	userstore "vouch/internal/auth/store/user"
	"vouch/internal/notification"
	"vouch/internal/platform/config"
	"vouch/internal/platform/httpserver"
	"vouch/internal/platform/logger"
	"vouch/internal/platform/metrics"
	"vouch/internal/platform/migrations"
	platformredis "vouch/internal/platform/redis"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, tokens, rdb, cleanup, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	notifier, closeNotifier, err := buildNotifier(cfg, log)
	if err != nil {
		return err
	}
	defer closeNotifier()

	authMetrics := authmetrics.New()
	httpMetrics := metrics.New()

	engine := service.New(
		users,
		tokens,
		hasher.NewBcrypt(cfg.BcryptCost),
		buildMinter(cfg, log),
		notifier,
		service.Config{
			SessionTokenTTL: cfg.SessionTokenTTL,
			ResetTokenTTL:   cfg.ResetTokenTTL,
			FrontendRootURL: cfg.FrontendRootURL,
		},
		log,
		authMetrics,
	)

	router := chi.NewRouter()
	router.Get("/healthz", healthHandler(rdb))
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	handler.New(engine, log, httpMetrics).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting vouch", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildStores picks postgres-backed stores when a DSN is configured, with the
// token slots optionally moved to Redis; otherwise everything stays in memory.
// The redis client is returned separately so the health endpoint can probe it.
func buildStores(ctx context.Context, cfg config.Config, log *slog.Logger) (service.UserStore, service.TokenStore, *platformredis.Client, func(), error) {
	cleanup := func() {}

	var users service.UserStore
	var tokens service.TokenStore

	if cfg.PostgresDSN != "" {
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, cleanup, err
		}
		if err := migrations.Up(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, nil, cleanup, err
		}
		users = userstore.NewPostgres(db)
		tokens = tokenstore.NewPostgres(db)
		cleanup = func() { _ = db.Close() }
		log.Info("using postgres stores")
	} else {
		users = userstore.NewMemory()
		tokens = tokenstore.NewMemory()
		log.Info("using in-memory stores")
	}

	var rdb *platformredis.Client
	if cfg.Redis.URL != "" {
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			cleanup()
			return nil, nil, nil, func() {}, err
		}
		rdb = client
		tokens = tokenstore.NewRedis(client.Client)
		prev := cleanup
		cleanup = func() {
			_ = client.Close()
			prev()
		}
		log.Info("using redis token store")
	}

	return users, tokens, rdb, cleanup, nil
}

// buildMinter selects the token value format. Unknown values fall back to
// UUID so a typo cannot silently weaken token entropy.
func buildMinter(cfg config.Config, log *slog.Logger) service.ValueMinter {
	switch cfg.TokenFormat {
	case config.TokenFormatHex:
		return minter.Hex{NBytes: cfg.TokenHexBytes}
	case config.TokenFormatUUID, "":
		return minter.UUID{}
	default:
		log.Warn("unknown token format, using uuid", "format", cfg.TokenFormat)
		return minter.UUID{}
	}
}

// healthHandler reports liveness. When a Redis token store is configured its
// connectivity is part of the answer; the SQL pool checks itself on use.
func healthHandler(rdb *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rdb != nil {
			if err := rdb.Health(r.Context()); err != nil {
				http.Error(w, "token store unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}

func buildNotifier(cfg config.Config, log *slog.Logger) (service.Notifier, func(), error) {
	switch {
	case len(cfg.KafkaBrokers) > 0:
		n, err := notification.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, func() {}, err
		}
		log.Info("using kafka notifier", "topic", cfg.KafkaTopic)
		return n, n.Close, nil
	case cfg.NotificationURL != "":
		log.Info("using http notifier", "url", cfg.NotificationURL)
		return notification.NewHTTP(cfg.NotificationURL), func() {}, nil
	default:
		log.Warn("no notifier configured; lifecycle events are dropped")
		return notification.Nop{}, func() {}, nil
	}
}
