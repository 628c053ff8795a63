// Command board serves the Mergington activity sign-up board.
//
// @title        Mergington Activity Board
// @version      1.0
// @description  Server-rendered sign-up board over the activities API.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mergington/activity-board/internal/api"
	"github.com/mergington/activity-board/internal/api/middleware"
	"github.com/mergington/activity-board/internal/core/ports"
	"github.com/mergington/activity-board/internal/core/service"
	"github.com/mergington/activity-board/internal/infrastructure/config"
	mongodb "github.com/mergington/activity-board/internal/infrastructure/db/mongo"
	redisdb "github.com/mergington/activity-board/internal/infrastructure/db/redis"
	"github.com/mergington/activity-board/internal/infrastructure/http/handlers"
	"github.com/mergington/activity-board/internal/infrastructure/queue"
	"github.com/mergington/activity-board/internal/infrastructure/upstream"
	"github.com/mergington/activity-board/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// Init is a no-op when run already initialised the logger.
		log := logger.Init(logger.Options{Service: "activity-board"})
		log.Fatal().Err(err).Msg("board stopped")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "activity-board",
	})

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	client, err := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logger.For("upstream"))
	if err != nil {
		return err
	}

	ready := []handlers.Dependency{
		{Name: "upstream", Check: client.Ping},
		{Name: "redis", Check: handlers.RedisCheck(rdb)},
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	var audit ports.AuditSink
	if cfg.Audit.Enabled {
		mclient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			if err := mongodb.Disconnect(mclient, shutdownTimeout); err != nil {
				log.Error().Err(err).Msg("mongo disconnect failed")
			}
		}()
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return err
		}

		dispatcher := queue.NewDispatcher(
			cfg.Audit.Workers,
			service.NewAuditService(mongodb.NewActionRepository(db), logger.For("audit")),
			logger.For("audit_dispatcher"),
		)
		dispatcher.Start(workerCtx)
		defer dispatcher.Wait()
		defer stopWorkers()

		audit = dispatcher
		ready = append(ready, handlers.Dependency{Name: "mongodb", Check: handlers.MongoCheck(db)})
	} else {
		ready = append(ready, handlers.Dependency{Name: "mongodb"})
	}

	sessions, err := middleware.NewSessions(cfg.Session.Secret, cfg.Session.MaxAge, cfg.Session.SecureCookies, logger.For("session"))
	if err != nil {
		return err
	}

	var csrfKey []byte
	if cfg.Session.CSRFEnabled {
		if csrfKey, err = middleware.CSRFKey(cfg.Session.Secret); err != nil {
			return err
		}
	}

	e, err := api.NewRouter(api.Dependencies{
		Controllers:   service.NewControllerFactory(client, redisdb.NewMessageStore(rdb), audit, logger.For("controller")),
		Sessions:      sessions,
		CSRFKey:       csrfKey,
		SecureCookies: cfg.Session.SecureCookies,
		Ready:         handlers.NewHealthDependenciesHandler(ready...),
		Log:           logger.For("http"),
	})
	if err != nil {
		return err
	}

	return serve(ctx, e, ":"+cfg.Port, log)
}

// serve runs srv until ctx is cancelled and then shuts it down gracefully.
func serve(ctx context.Context, srv interface {
	Start(address string) error
	Shutdown(ctx context.Context) error
}, addr string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("board listening")
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
