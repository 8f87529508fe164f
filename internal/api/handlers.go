package api

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/idhash"
	"battle-analytics/internal/lookup"
	"battle-analytics/internal/replay"
	"battle-analytics/internal/settlement"
)

// marketResponse is the detail view of one market.
type marketResponse struct {
	State       *domain.MarketState     `json:"state"`
	Settlement  domain.SettlementResult `json:"settlement"`
	MomentumA   float64                 `json:"momentumA"`
	WhaleTrades []domain.RecentTrade    `json:"whaleTrades"`
}

type settlementResponse struct {
	MarketID   string                  `json:"marketId"`
	Ended      bool                    `json:"ended"`
	Settlement domain.SettlementResult `json:"settlement"`
}

// fail logs a server-side failure and writes the mapped status.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("op", op),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeError(w, status, err.Error())
}

// GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/markets
func (s *Server) handleListMarkets(w http.ResponseWriter, r *http.Request) {
	markets, err := s.svc.Markets(r.Context())
	if err != nil {
		s.fail(w, r, "list_markets", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"markets": markets, "total": len(markets)})
}

// GET /api/markets/{id}?force=true&whale=0.5
func (s *Server) handleGetMarket(w http.ResponseWriter, r *http.Request) {
	threshold, err := queryFloat(r, "whale", domain.DefaultWhaleThreshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid whale threshold")
		return
	}

	state, err := s.svc.Market(r.Context(), r.PathValue("id"), queryBool(r, "force"))
	if err != nil {
		s.fail(w, r, "get_market", err)
		return
	}

	writeJSON(w, http.StatusOK, marketResponse{
		State:       state,
		Settlement:  settlement.Settle(state),
		MomentumA:   settlement.Momentum(state.Attribution.VolumeA, state.Attribution.VolumeB),
		WhaleTrades: domain.WhaleTrades(state.Attribution.RecentTrades, threshold),
	})
}

// GET /api/markets/{id}/settlement
func (s *Server) handleSettlement(w http.ResponseWriter, r *http.Request) {
	state, res, err := s.svc.Settle(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, "settle", err)
		return
	}
	writeJSON(w, http.StatusOK, settlementResponse{
		MarketID:   state.Summary.ID,
		Ended:      state.Account.Ended,
		Settlement: res,
	})
}

// GET /api/markets/{id}/roi?side=A&amount=1.5
func (s *Server) handleROI(w http.ResponseWriter, r *http.Request) {
	side := domain.SideID(strings.ToUpper(r.URL.Query().Get("side")))
	amount, err := queryFloat(r, "amount", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	sim, err := s.svc.Simulate(r.Context(), r.PathValue("id"), side, amount)
	if err != nil {
		s.fail(w, r, "simulate", err)
		return
	}
	writeJSON(w, http.StatusOK, sim)
}

// GET /api/markets/{id}/replay?mode=stochastic&seed=7&points=100&at=1700000000000
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	mode, err := replay.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	points, err := queryInt(r, "points", replay.DefaultPoints)
	if err != nil || points <= 0 {
		writeError(w, http.StatusBadRequest, "invalid points")
		return
	}
	opts := replay.Options{Mode: mode, Points: points, Seed: idhash.ReplaySeed(id)}
	if v := r.URL.Query().Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid seed")
			return
		}
		opts.Seed = seed
	}
	var at int64
	if v := r.URL.Query().Get("at"); v != "" {
		at, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid at")
			return
		}
	}

	tl, err := s.svc.Replay(r.Context(), id, opts)
	if err != nil {
		s.fail(w, r, "replay", err)
		return
	}
	if at == 0 {
		writeJSON(w, http.StatusOK, tl)
		return
	}

	frame, err := lookup.FrameAt(at, tl)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// GET /api/events
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.svc.Events(r.Context())
	if err != nil {
		s.fail(w, r, "events", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// GET /api/leaderboard/artists
func (s *Server) handleArtists(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.ArtistLeaderboard(r.Context())
	if err != nil {
		s.fail(w, r, "artist_leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artists": rows})
}

// GET /api/leaderboard/activity
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.Activity(r.Context())
	if err != nil {
		s.fail(w, r, "activity", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artists": rows})
}

// GET /api/traders
func (s *Server) handleTraders(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.Traders(r.Context())
	if err != nil {
		s.fail(w, r, "traders", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"traders": rows})
}

// GET /api/traders/{wallet}
func (s *Server) handleTraderProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.TraderProfile(r.Context(), r.PathValue("wallet"))
	if err != nil {
		s.fail(w, r, "trader_profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
