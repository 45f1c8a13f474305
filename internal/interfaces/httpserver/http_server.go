package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/infrastructure"
	middleware "sovereign-chat/internal/interfaces/httpserver/middlewares"
	"sovereign-chat/internal/interfaces/httpserver/responses"
	"sovereign-chat/internal/interfaces/httpserver/routes/api"

	_ "sovereign-chat/swagger"
)

const (
	readinessTimeout = 2 * time.Second
	shutdownTimeout  = 10 * time.Second
)

type HTTPServer struct {
	engine   *gin.Engine
	infra    *infrastructure.Infrastructure
	apiRoute *api.APIRoute
	config   *config.Config
}

func (s *HTTPServer) bindSwagger() {
	s.engine.GET("/api/swagger/*any", func(c *gin.Context) {
		if c.Param("any") == "/doc.json" {
			ServeSwaggerDoc()(c)
			return
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler)(c)
	})
}

func NewHttpServer(
	apiRoute *api.APIRoute,
	infra *infrastructure.Infrastructure,
	cfg *config.Config,
) *HTTPServer {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	server := HTTPServer{
		gin.New(),
		infra,
		apiRoute,
		cfg,
	}
	server.engine.Use(middleware.RequestID())
	server.engine.Use(middleware.TracingMiddleware(cfg.ServiceName))
	server.engine.Use(middleware.LoggingMiddleware(infra.Logger))
	server.engine.Use(middleware.RecoveryMiddleware(infra.Logger))
	server.engine.Use(middleware.MetricsMiddleware())
	server.engine.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	server.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, responses.StatusResponse{Status: "ok"})
	})
	server.engine.GET("/readyz", server.readyz)

	if cfg.EnableSwagger {
		server.bindSwagger()
	}
	server.apiRoute.RegisterRouter(server.engine)
	return &server
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// readyz reports ready once the database answers a ping.
func (s *HTTPServer) readyz(c *gin.Context) {
	sqlDB, err := s.infra.DB.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		s.infra.Logger.Warn().Err(err).Msg("readiness check failed")
		c.JSON(http.StatusServiceUnavailable, responses.StatusResponse{Status: "unavailable"})
		return
	}
	c.JSON(http.StatusOK, responses.StatusResponse{Status: "ready"})
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.infra.Logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
