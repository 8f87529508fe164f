package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/observability"
	"battle-analytics/internal/settlement"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBufferSize = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Stream message types.
const (
	MessageState = "state"
	MessageError = "error"
)

// StreamMessage is one frame of the market stream.
type StreamMessage struct {
	Type       string                   `json:"type"`
	State      *domain.MarketState      `json:"state,omitempty"`
	Settlement *domain.SettlementResult `json:"settlement,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

func newStreamMessage(state *domain.MarketState, err error) StreamMessage {
	if err != nil {
		return StreamMessage{Type: MessageError, Error: err.Error()}
	}
	res := settlement.Settle(state)
	return StreamMessage{Type: MessageState, State: state, Settlement: &res}
}

// handleMarketStream pushes a snapshot after every poll of one market. The
// stream closes normally once the market has ended.
// GET /ws/markets/{id}
func (s *Server) handleMarketStream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	send := make(chan StreamMessage, sendBufferSize)
	watch, err := s.svc.Watch(ctx, id, func(state *domain.MarketState, err error) {
		select {
		case send <- newStreamMessage(state, err):
		default:
			s.logger.Warn("dropping snapshot for slow client", zap.String("market_id", id))
		}
	})
	if err != nil {
		s.fail(w, r, "watch", err)
		return
	}
	defer watch.Stop()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.String("market_id", id), zap.Error(err))
		return
	}
	defer conn.Close()

	observability.AddStreamClients(1)
	defer observability.AddStreamClients(-1)
	s.logger.Info("stream client connected", zap.String("market_id", id))

	go readPump(conn, cancel)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-send:
			if err := writeMessage(conn, msg); err != nil {
				return
			}

		case <-watch.Done():
			// Flush what the final poll produced.
			for len(send) > 0 {
				if err := writeMessage(conn, <-send); err != nil {
					return
				}
			}
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "market ended"),
				time.Now().Add(writeWait))
			return

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeMessage(conn *websocket.Conn, msg StreamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// readPump discards client frames and cancels the stream when the
// connection closes.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
