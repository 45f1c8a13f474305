package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/infrastructure/crontab"
	"sovereign-chat/internal/infrastructure/logger"
	"sovereign-chat/internal/infrastructure/observability"
	"sovereign-chat/internal/interfaces/httpserver"

	_ "net/http/pprof"
)

type Application struct {
	httpServer      *httpserver.HTTPServer
	crontab         *crontab.Crontab
	dataInitializer *DataInitializer
	config          *config.Config
	logger          zerolog.Logger
}

// @title Sovereign Chat API
// @version 1.0
// @description Chat backend with subscriptions, an inference proxy with fallback, conversations, public sharing and OAuth connections.
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func (application *Application) Start(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return serveUntilDone(ctx, fmt.Sprintf("0.0.0.0:%d", application.config.PprofPort), http.DefaultServeMux)
	})
	eg.Go(func() error {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		return serveUntilDone(ctx, fmt.Sprintf("0.0.0.0:%d", application.config.MetricsPort), mux)
	})
	eg.Go(func() error {
		return application.crontab.Run(ctx)
	})
	eg.Go(func() error {
		return application.httpServer.Run(ctx)
	})

	return eg.Wait()
}

// serveUntilDone runs a side server (pprof, metrics) and stops it with ctx.
func serveUntilDone(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func loadEnvFile(log zerolog.Logger) {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("failed to load env file")
		}
		return
	}
	log.Info().Str("path", path).Msg("loaded env file")
}

func main() {
	log := logger.GetLogger()
	loadEnvFile(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := CreateApplication()
	if err != nil {
		log.Fatal().Err(err).Msg("create application")
	}
	log = application.logger

	otelShutdown, err := observability.Setup(ctx, application.config, log)
	if err != nil {
		log.Error().Err(err).Msg("initialize observability")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown telemetry")
			}
		}()
	}

	if err := application.dataInitializer.Install(ctx); err != nil {
		log.Fatal().Err(err).Msg("install data")
	}

	log.Info().Str("version", config.Version).Int("port", application.config.HTTPPort).Msg("starting sovereign-chat")
	if err := application.Start(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return
	}
	log.Info().Msg("server stopped")
}
