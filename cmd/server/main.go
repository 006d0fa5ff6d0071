// Command server runs the pet game HTTP API consumed by chat bots.
//
//	@title						Pet Game API
//	@version					1.0
//	@description				Virtual pet game backend: adopt, feed and evolve pets, earn coins and shop.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BotToken
//	@in							header
//	@name						X-Bot-Token
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-pet-backend/internal/cache"
	"github.com/tbourn/go-pet-backend/internal/config"
	httpapi "github.com/tbourn/go-pet-backend/internal/http"
	"github.com/tbourn/go-pet-backend/internal/observability"
	"github.com/tbourn/go-pet-backend/internal/repo"
	"github.com/tbourn/go-pet-backend/internal/services"
	"github.com/tbourn/go-pet-backend/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const janitorEvery = 5 * time.Minute

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, os.Stdout)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath, repo.WithTracing(cfg.OTEL.Enabled))
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}
	items, stages, err := repo.SeedCatalog(ctx, db)
	if err != nil {
		return err
	}
	cat, err := services.LoadCatalog(ctx, db)
	if err != nil {
		return err
	}
	log.Info().Int("seeded_items", items).Int("seeded_stages", stages).Msg("catalog ready")

	var pending services.PendingStore
	if cfg.PendingStore == "redis" {
		rdb, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		pending = &cache.PendingStore{RDB: rdb}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("pending adoptions in redis")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, cat, pending, cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go janitor(ctx, db, pending == nil)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("listening")
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

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

// janitor purges expired idempotency records (and database pending
// adoptions when those live in SQLite) and refreshes the world gauges.
func janitor(ctx context.Context, db *gorm.DB, dbPending bool) {
	t := time.NewTicker(janitorEvery)
	defer t.Stop()

	sweep := func() {
		now := time.Now().UTC()
		if n, err := repo.PurgeExpiredIdempotency(ctx, db, now); err != nil {
			log.Warn().Err(err).Msg("purge idempotency")
		} else if n > 0 {
			log.Debug().Int64("rows", n).Msg("purged idempotency records")
		}
		if dbPending {
			if _, err := (&services.DBPendingStore{DB: db}).Purge(ctx); err != nil {
				log.Warn().Err(err).Msg("purge pending adoptions")
			}
		}
		stats, err := repo.LoadWorldStats(ctx, db)
		if err != nil {
			log.Warn().Err(err).Msg("world stats")
			return
		}
		services.RecordWorldStats(stats)
	}

	sweep()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			sweep()
		}
	}
}
