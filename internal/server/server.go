package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/tkubica12/scalable-ai-chat/internal/config"
	"github.com/tkubica12/scalable-ai-chat/internal/handler"
	"github.com/tkubica12/scalable-ai-chat/internal/server/middleware"
)

// Server is the shared Gin+http.Server wrapper every HTTP-facing
// component binary (Ingress, Egress, History Reader, Memory Reader)
// builds on top of. Each component supplies its own route registration;
// the ambient middleware stack and graceful-shutdown behaviour are
// common.
type Server struct {
	cfg    *config.ServerConfig
	engine *gin.Engine
}

// RegisterRoutes is implemented by each component to wire its own
// handlers onto the shared engine.
type RegisterRoutes func(engine *gin.Engine)

// New builds a Server with the ambient middleware stack, health checks,
// and swagger docs already wired, then invokes register to add the
// component's own routes.
func New(cfg *config.ServerConfig, register RegisterRoutes) *Server {
	switch cfg.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger())
	engine.Use(middleware.CORS())

	healthHandler := handler.NewHealthHandler()
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	register(engine)

	return &Server{cfg: cfg, engine: engine}
}

// Run listens until ctx is cancelled, then drains in-flight requests for
// up to cfg.ShutdownGrace before returning.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Dur("grace_period", s.cfg.ShutdownGrace).Msg("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
