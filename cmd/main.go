package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"storefront-catalog/internal/api"
	"storefront-catalog/internal/catalog"
	"storefront-catalog/internal/config"
	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/filter"
	"storefront-catalog/internal/form"
	"storefront-catalog/internal/notify"
	"storefront-catalog/internal/source"
)

const (
	defaultAppName = "StorefrontCatalogService"
	loadTimeout    = 30 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found or failed to load, relying on system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading configuration")
	}
	setupLogger(cfg)
	log.Info().Str("app_env", cfg.AppEnv).Str("source", cfg.Source).Msg("Configuration loaded")

	// --- Catalog Source ---
	src, pg := setupSource(cfg)

	// --- Notifications ---
	bus := notify.NewBus()
	feed := notify.NewFeed(cfg.Notify.FeedSize)
	for _, fn := range []func(domain.Notification){feed.Record, notify.LogNotification} {
		if _, err := bus.Subscribe(fn); err != nil {
			log.Fatal().Err(err).Msg("Failed to subscribe to notifications")
		}
	}

	// --- Catalog Store ---
	store := catalog.NewStore(src, src, bus)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), loadTimeout)
	res := store.Load(loadCtx)
	cancelLoad()
	st := store.Status()
	if err := res.Err(); err != nil {
		log.Warn().Err(err).Bool("available", st.Available()).Msg("Catalog started degraded")
	} else {
		log.Info().Int("products", st.Products.Count).Int("categories", st.Categories.Count).Msg("Catalog loaded")
	}

	validate := form.New()
	httpAPIHandler := api.NewHTTPHandler(store, filter.NewView(store), feed, validate)
	grpcAPIHandler := api.NewGRPCHandler(store, validate)

	// --- Setup & Start HTTP Server ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter)
	var db pinger
	if pg != nil {
		db = pg
	}
	registerHealthCheck(httpRouter, store, db)
	httpAPIHandler.RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		log.Info().Str("port", cfg.HttpServer.Port).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server ListenAndServe error")
		}
		log.Info().Msg("HTTP server has stopped")
	}()

	// --- Setup & Start gRPC Server ---
	grpcServer := setupGRPCServer(grpcAPIHandler)
	grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
	if err != nil {
		log.Fatal().Err(err).Str("port", cfg.GrpcServer.Port).Msg("Failed to listen for gRPC")
	}

	go func() {
		log.Info().Str("port", cfg.GrpcServer.Port).Msg("gRPC server listening")
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Fatal().Err(err).Msg("gRPC server Serve error")
		}
		log.Info().Msg("gRPC server has stopped")
	}()

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	var closer io.Closer
	if pg != nil {
		closer = pg
	}
	go waitForShutdown(httpServer, grpcServer, store, closer, shutdownComplete)

	<-shutdownComplete
	log.Info().Msg("Service shutdown sequence finished")
}

func setupLogger(cfg *config.Config) {
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(level)
	if cfg.AppEnv == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout}).With().Str("app", defaultAppName).Logger()
		return
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("app", defaultAppName).Logger()
}

// setupSource builds the configured catalog source. The postgres source is nil for the HTTP source.
func setupSource(cfg *config.Config) (source.Source, *source.PostgresSource) {
	if cfg.Source == config.SourcePostgres {
		db, err := sql.Open("postgres", cfg.Postgres.DSN())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database connection")
		}
		pg := source.NewPostgresSource(db)
		if err := pg.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping database")
		}
		log.Info().Msg("Database connection established")
		return pg, pg
	}
	return source.NewHTTPSource(cfg.Upstream.BaseURL, nil, cfg.Upstream.Timeout, source.BreakerSettings{
		MinRequests:  cfg.Upstream.BreakerMinRequests,
		FailureRatio: cfg.Upstream.BreakerFailureRatio,
		OpenTimeout:  cfg.Upstream.BreakerOpenTimeout,
	}), nil
}

func setupBaseMiddleware(router *chi.Mux) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(api.RequestLogger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
}

type pinger interface {
	Ping(ctx context.Context) error
}

// registerHealthCheck mounts /api/v1/healthz. db is nil when the catalog is not seeded from postgres.
func registerHealthCheck(router chi.Router, store *catalog.Store, db pinger) {
	healthPath := "/api/v1/healthz"
	router.Get(healthPath, func(w http.ResponseWriter, r *http.Request) {
		catalogStatus := "healthy"
		if !store.Status().Available() {
			catalogStatus = "unavailable"
		}
		payload := map[string]interface{}{
			"status":      "healthy",
			"serviceName": defaultAppName,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"catalog":     catalogStatus,
		}
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			dbStatus := "healthy"
			if err := db.Ping(ctx); err != nil {
				dbStatus = "unhealthy"
				log.Ctx(r.Context()).Warn().Err(err).Msg("Health check DB ping failed")
			}
			payload["database"] = dbStatus
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK) // Always 200, payload carries the detailed state
		json.NewEncoder(w).Encode(payload)
	})
	log.Debug().Str("path", healthPath).Msg("HTTP health check registered")
}

func setupGRPCServer(grpcAPIHandler *api.GRPCHandler) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(api.UnaryLogger))

	api.RegisterCatalogServiceServer(s, grpcAPIHandler)
	grpc_health_v1.RegisterHealthServer(s, health.NewServer())
	reflection.Register(s)
	log.Debug().Str("service", api.CatalogServiceName).Msg("gRPC services registered")

	return s
}

func waitForShutdown(
	httpServer *http.Server,
	grpcServer *grpc.Server,
	store *catalog.Store,
	sourceCloser io.Closer,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-sigChan
	log.Info().Str("signal", receivedSignal.String()).Msg("Starting graceful shutdown")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	stoppedGrpc := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stoppedGrpc)
	}()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server graceful shutdown failed")
	} else {
		log.Info().Msg("HTTP server gracefully shut down")
	}

	select {
	case <-stoppedGrpc:
		log.Info().Msg("gRPC server gracefully shut down")
	case <-shutdownCtx.Done():
		log.Warn().Err(shutdownCtx.Err()).Msg("gRPC server graceful shutdown timed out, forcing stop")
		grpcServer.Stop()
	}

	if err := store.Close(); err != nil {
		log.Warn().Err(err).Msg("Error closing catalog store")
	}
	if sourceCloser != nil {
		if err := sourceCloser.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing catalog source")
		}
	}

	log.Info().Msg("Graceful shutdown sequence completed")
}
