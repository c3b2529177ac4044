package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/miniguru-commerce/internal/api_gateway/handler"
	"github.com/miniguru-commerce/internal/config"
	"github.com/miniguru-commerce/internal/service"
)

// Services are the business operations the HTTP API exposes
type Services struct {
	Ledger   service.LedgerService
	Payments service.PaymentService
	Orders   service.OrderService
	Products service.ProductService
	Videos   service.VideoService
	Resets   service.PasswordResetService

	// Checks are run by GET /ready, keyed by dependency name
	Checks map[string]HealthCheck
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger          *slog.Logger
	httpServer      *http.Server
	httpRouter      *gin.Engine
	shutdownTimeout time.Duration
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, services Services) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	setupRouter(log, httpRouter, []byte(cfg.Auth.JWTSecret), handlers{
		wallets:  handler.NewWalletHandler(log, services.Ledger, services.Payments),
		orders:   handler.NewOrderHandler(log, services.Orders),
		products: handler.NewProductHandler(log, services.Products),
		videos:   handler.NewVideoHandler(log, services.Videos, cfg.Storage.UploadDir),
		auth:     handler.NewAuthHandler(log, services.Resets),
	}, services.Checks)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:          log,
		httpServer:      httpServer,
		httpRouter:      httpRouter,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests, giving up after the shutdown timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
