// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/stake-dashboard/internal/logging"
	"github.com/stake-dashboard/internal/rewards"
	"github.com/stake-dashboard/internal/tracker"
	"github.com/stake-dashboard/internal/types"
)

// Service interfaces for dependency injection and testing

// RewardServiceInterface defines the interface for reward summary operations
type RewardServiceInterface interface {
	WindowedRewards(ctx context.Context, addrs []types.Address) ([]rewards.AddressRewards, error)
	EarnedSince(ctx context.Context, addrs []types.Address, since int64) ([]rewards.AddressEarned, error)
}

// TrackerServiceInterface defines the interface for earnings tracker operations
type TrackerServiceInterface interface {
	Start(ctx context.Context, addrs []types.Address) (*tracker.Status, error)
	Refresh(ctx context.Context) (*tracker.Status, error)
	Stop(ctx context.Context) error
	Status(ctx context.Context) (*tracker.Status, error)
	StartLifetime(ctx context.Context) (int64, error)
	LifetimeStartedAt(ctx context.Context) (int64, error)
}

// MarketServiceInterface defines the interface for market data pass-through
type MarketServiceInterface interface {
	SimplePrice(ctx context.Context, ids, vs string) (json.RawMessage, error)
	MarketChart(ctx context.Context, id, vs string, days int) (json.RawMessage, error)
	SwapQuote(ctx context.Context, from, to, amount string) (json.RawMessage, error)
}

// Server represents the HTTP API server.
type Server struct {
	router         *mux.Router
	httpServer     *http.Server
	rewardService  RewardServiceInterface
	trackerService TrackerServiceInterface
	marketService  MarketServiceInterface
	config         *ServerConfig
	logger         *logging.Logger

	now func() time.Time
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	rewardService RewardServiceInterface,
	trackerService TrackerServiceInterface,
	marketService MarketServiceInterface,
	logger *logging.Logger,
) *Server {
	s := &Server{
		router:         mux.NewRouter(),
		rewardService:  rewardService,
		trackerService: trackerService,
		marketService:  marketService,
		config:         config,
		logger:         logger,
		now:            time.Now,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	// Set up middleware (order matters!)
	s.router.Use(RequestIDMiddleware)
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(CORSMiddleware)
	s.router.Use(CompressionMiddleware)

	// Set up routes
	s.setupRoutes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Reward summary endpoints
	api.HandleFunc("/rewards", s.handleRewards).Methods("GET")
	api.HandleFunc("/earned", s.handleEarned).Methods("GET")

	// Earnings tracker endpoints
	api.HandleFunc("/tracking", s.handleTrackingStatus).Methods("GET")
	api.HandleFunc("/tracking/start", s.handleTrackingStart).Methods("GET")
	api.HandleFunc("/tracking/stop", s.handleTrackingStop).Methods("GET")
	api.HandleFunc("/tracking/refresh", s.handleTrackingRefresh).Methods("GET")
	api.HandleFunc("/lifetime", s.handleLifetimeStatus).Methods("GET")
	api.HandleFunc("/lifetime/start", s.handleLifetimeStart).Methods("GET")

	// Market data pass-through endpoints
	api.HandleFunc("/market/price", s.handleMarketPrice).Methods("GET")
	api.HandleFunc("/market/chart", s.handleMarketChart).Methods("GET")
	api.HandleFunc("/market/quote", s.handleMarketQuote).Methods("GET")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "stake-dashboard",
	})
}

// Router exposes the configured handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}
