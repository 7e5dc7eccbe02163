// Package http exposes the workflow services over a JSON API.
// Handlers only translate requests into service calls and render the result envelope.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
	"github.com/xskcdf/Aquiis-sub005/internal/application/service"
)

// Headers carrying the caller's identity
const (
	HeaderUserID         = "X-User-ID"
	HeaderOrganizationID = "X-Organization-ID"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MetricsPath  string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		MetricsPath:  "/metrics",
	}
}

// Services are the workflow services the API fronts
type Services struct {
	Directory    service.DirectoryService
	Applications service.ApplicationService
	LeaseOffers  service.LeaseOfferService
	Tours        service.TourService
	Deposits     service.DepositService
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	metrics    http.Handler
	logger     Logger
}

// NewServer creates a new HTTP server. A nil metrics handler disables the metrics route.
func NewServer(config ServerConfig, services Services, metrics http.Handler, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		services: services,
		metrics:  metrics,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(actorMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"organization_id", c.GetHeader(HeaderOrganizationID),
		)
	}
}

// actorMiddleware binds the caller identity headers to the request context.
// Missing headers are left for the services to reject.
func actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		organizationID := c.GetHeader(HeaderOrganizationID)
		if userID != "" || organizationID != "" {
			ctx := port.WithActor(c.Request.Context(), userID, organizationID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

func (s *Server) setupRoutes() {
	h := NewHandlers(s.services, s.logger)

	s.router.GET("/health", h.HealthCheck)
	if s.metrics != nil {
		path := s.config.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.router.GET(path, gin.WrapH(s.metrics))
	}

	api := s.router.Group("/api/v1")
	{
		api.GET("/properties", h.ListProperties)
		api.POST("/properties", h.CreateProperty)
		api.GET("/prospects", h.ListProspects)
		api.POST("/prospects", h.CreateProspect)
		api.GET("/prospects/:id/tours", h.ListTours)
		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.UpdateSettings)

		api.POST("/tours", h.ScheduleTour)
		api.POST("/tours/:id/complete", h.CompleteTour)
		api.POST("/tours/:id/cancel", h.CancelTour)
		api.POST("/tours/:id/no-show", h.MarkTourNoShow)

		api.POST("/applications", h.SubmitApplication)
		api.GET("/applications/:id", h.GetApplicationWorkflowState)
		api.POST("/applications/:id/fee", h.MarkApplicationFeePaid)
		api.POST("/applications/:id/review", h.MarkUnderReview)
		api.POST("/applications/:id/screening", h.InitiateScreening)
		api.POST("/applications/:id/screening/complete", h.CompleteScreening)
		api.POST("/applications/:id/approve", h.ApproveApplication)
		api.POST("/applications/:id/deny", h.DenyApplication)
		api.POST("/applications/:id/withdraw", h.WithdrawApplication)
		api.POST("/applications/:id/expire", h.ExpireApplication)
		api.POST("/applications/:id/lease-offer", h.GenerateLeaseOffer)

		api.GET("/lease-offers/:id", h.GetLeaseOffer)
		api.POST("/lease-offers/:id/accept", h.AcceptLeaseOffer)
		api.POST("/lease-offers/:id/decline", h.DeclineLeaseOffer)
		api.POST("/lease-offers/:id/withdraw", h.WithdrawLeaseOffer)
		api.POST("/lease-offers/:id/expire", h.ExpireLeaseOffer)

		api.GET("/pools/:year", h.GetPool)
		api.GET("/pools/:year/dividends", h.ListDividends)
		api.GET("/pools/:year/report", h.ExportDividendReport)
		api.POST("/pools/:year/calculate", h.CalculateDividends)
		api.POST("/pools/:year/distribute", h.DistributeDividends)
		api.POST("/pools/:year/close", h.ClosePool)
		api.POST("/dividends/:id/choice", h.RecordDividendChoice)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the listener fails
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
