// jobmate-board-service
//
// Job board engine: postings, applications, candidate matching and
// lifecycle. Exposes a REST API used by the Gateway to implement:
//   - job CRUD with owner checks and applicant-gated deletion
//   - idempotent applications
//   - scored, ranked applicant lists
//   - candidate and recruiter profile completion
//
// A cron pass reconciles cached applicant counts and announces closed
// postings. Events go to Redis or RabbitMQ.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"jobmate/board-service/internal/board"
	"jobmate/board-service/internal/config"
	"jobmate/board-service/internal/db"
	"jobmate/board-service/internal/events"
	"jobmate/board-service/internal/grpcserver"
	"jobmate/board-service/internal/httpserver"
	"jobmate/board-service/internal/logging"
	"jobmate/board-service/internal/model"
	"jobmate/board-service/internal/scheduler"
	"jobmate/board-service/internal/store"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Document store ───────────────────────────────────────────────────────
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("document store")
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := st.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("store close")
		}
	}()
	log.Info().Str("driver", cfg.StoreDriver).Msg("document store connected")

	// ── Events ───────────────────────────────────────────────────────────────
	pub, err := openPublisher(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.EventsDriver).Msg("event publisher")
	}
	defer pub.Close()
	log.Info().Str("driver", cfg.EventsDriver).Msg("event publisher ready")

	svc := board.NewService(st, board.ContextAuth{}, board.WithPublisher(pub))

	// ── Scheduler ────────────────────────────────────────────────────────────
	sched := scheduler.New(svc, cfg.ReconcileInterval)
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("scheduler")
	}

	// ── gRPC health ──────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Str("port", cfg.GRPCPort).Msg("gRPC listen")
	}
	grpcSrv := grpcserver.NewServer(st, 30*time.Second)
	go func() {
		if err := grpcSrv.Serve(lis); err != nil {
			log.Error().Err(err).Msg("gRPC server error")
		}
	}()

	// ── HTTP server ──────────────────────────────────────────────────────────
	gin.SetMode(gin.ReleaseMode)
	router := httpserver.NewRouter(svc, httpserver.Options{
		CORSOrigins: cfg.CORSOrigins,
		Version:     version,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("version", version).Str("port", cfg.Port).Msg("board-service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown error")
	}
	grpcSrv.Stop()
	sched.Stop()
	cancel()
	log.Info().Msg("stopped")
}

// indexed lists the fields the service filters on.
var indexed = map[string][]string{
	model.CollectionJobs:         {"creatorId"},
	model.CollectionApplications: {"jobId", "userId"},
}

func openStore(ctx context.Context, cfg *config.Config) (store.DocumentStore, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		pg := store.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return pg, nil

	case config.StoreMongo:
		client, err := db.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		m := store.NewMongo(client, cfg.MongoDB)
		if err := m.EnsureIndexes(ctx, indexed); err != nil {
			_ = m.Close(ctx)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return m, nil
	}

	log.Warn().Msg("using in-memory store; data is lost on restart")
	return store.NewMemory(), nil
}

func openPublisher(ctx context.Context, cfg *config.Config) (events.Publisher, error) {
	switch cfg.EventsDriver {
	case config.EventsRedis:
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return events.NewRedisPublisher(rdb), nil

	case config.EventsRabbitMQ:
		return events.NewRabbitPublisher(cfg.RabbitMQURL)
	}
	return events.Noop{}, nil
}
