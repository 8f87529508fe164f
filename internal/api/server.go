// Package api serves market state, settlements, replays and leaderboards
// over HTTP, plus a websocket stream of live market snapshots.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/ingestion"
	"battle-analytics/internal/observability"
	"battle-analytics/internal/replay"
	"battle-analytics/internal/settlement"
)

// Service is the read API the handlers need. orchestrator.Orchestrator
// implements it.
type Service interface {
	Markets(ctx context.Context) ([]domain.MarketSummary, error)
	Market(ctx context.Context, id string, force bool) (*domain.MarketState, error)
	Settle(ctx context.Context, id string) (*domain.MarketState, domain.SettlementResult, error)
	Simulate(ctx context.Context, id string, side domain.SideID, amount float64) (settlement.Simulation, error)
	Replay(ctx context.Context, id string, opts replay.Options) (domain.Timeline, error)
	ArtistLeaderboard(ctx context.Context) ([]domain.ArtistLeaderboardStats, error)
	Activity(ctx context.Context) ([]domain.ArtistActivity, error)
	Events(ctx context.Context) ([]domain.BattleEvent, error)
	Traders(ctx context.Context) ([]domain.TraderEntry, error)
	TraderProfile(ctx context.Context, wallet string) (domain.TraderProfile, error)
	Watch(ctx context.Context, id string, onUpdate ingestion.UpdateFunc) (*ingestion.Watch, error)
}

// Config holds the HTTP server configuration.
type Config struct {
	Addr string
}

// Server is the HTTP + websocket API server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	svc        Service
	logger     *zap.Logger
}

// NewServer creates a Server with all routes registered.
func NewServer(cfg Config, svc Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, logger: logger}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)

	// Markets
	mux.HandleFunc("GET /api/markets", s.handleListMarkets)
	mux.HandleFunc("GET /api/markets/{id}", s.handleGetMarket)
	mux.HandleFunc("GET /api/markets/{id}/settlement", s.handleSettlement)
	mux.HandleFunc("GET /api/markets/{id}/roi", s.handleROI)
	mux.HandleFunc("GET /api/markets/{id}/replay", s.handleReplay)
	mux.HandleFunc("GET /api/events", s.handleEvents)

	// Leaderboards
	mux.HandleFunc("GET /api/leaderboard/artists", s.handleArtists)
	mux.HandleFunc("GET /api/leaderboard/activity", s.handleActivity)
	mux.HandleFunc("GET /api/traders", s.handleTraders)
	mux.HandleFunc("GET /api/traders/{wallet}", s.handleTraderProfile)

	mux.HandleFunc("GET /ws/markets/{id}", s.handleMarketStream)
	mux.Handle("GET /metrics", observability.Handler())

	s.handler = logging(logger)(mux)
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens until the server fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server within ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
