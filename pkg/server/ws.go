package server

import (
	"net/http"
	"time"

	"github.com/erain9/limitbook/pkg/event"
	"github.com/erain9/limitbook/pkg/logging"
	"github.com/gorilla/websocket"
)

// wsMessage is the tagged envelope every websocket frame uses.
type wsMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (s *Server) writeMessage(conn *websocket.Conn, msg wsMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	return conn.WriteJSON(msg)
}

func (s *Server) writeSnapshot(conn *websocket.Conn) error {
	return s.writeMessage(conn, wsMessage{
		Type:    string(event.TypeSnapshot),
		Payload: s.engine.Snapshot(s.cfg.SnapshotDepth),
	})
}

func (s *Server) writeEvent(conn *websocket.Conn, ev event.Event) error {
	return s.writeMessage(conn, wsMessage{
		Type:    string(ev.EventType()),
		Payload: ev,
	})
}

// watchClose reads and discards client frames, closing the returned channel
// when the peer goes away.
func watchClose(conn *websocket.Conn) <-chan struct{} {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return closed
}

// handleBookSocket streams the full book: one snapshot on connect, then every
// engine event, with periodic snapshot resyncs. A subscriber the hub dropped
// for falling behind is resubscribed and resynced from a fresh snapshot, so
// the client's view stays correct even across the gap.
func (s *Server) handleBookSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	logger := logging.FromContext(r.Context())
	logger.Info().Str("remote", conn.RemoteAddr().String()).Msg("Book subscriber connected")

	closed := watchClose(conn)

	sub := s.hub.Subscribe()
	defer func() { s.hub.Unsubscribe(sub) }()

	if err := s.writeSnapshot(conn); err != nil {
		return
	}

	ticker := time.NewTicker(s.cfg.ResyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			logger.Info().Msg("Book subscriber disconnected")
			return
		case <-ticker.C:
			if err := s.writeSnapshot(conn); err != nil {
				return
			}
		case ev, ok := <-sub.C():
			if !ok {
				logger.Warn().Msg("Book subscriber fell behind, resyncing from snapshot")
				sub = s.hub.Subscribe()
				if err := s.writeSnapshot(conn); err != nil {
					return
				}
				continue
			}
			if err := s.writeEvent(conn, ev); err != nil {
				return
			}
		}
	}
}

// handleTradeSocket streams executions only. A trade stream has no snapshot
// to resync from, so a subscriber the hub dropped is disconnected with an
// explicit close frame instead of silently missing trades.
func (s *Server) handleTradeSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	logger := logging.FromContext(r.Context())
	logger.Info().Str("remote", conn.RemoteAddr().String()).Msg("Trade subscriber connected")

	closed := watchClose(conn)

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	for {
		select {
		case <-closed:
			logger.Info().Msg("Trade subscriber disconnected")
			return
		case ev, ok := <-sub.C():
			if !ok {
				logger.Warn().Msg("Trade subscriber fell behind, disconnecting")
				_ = conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "subscriber too slow"),
					time.Now().Add(s.cfg.WriteTimeout),
				)
				return
			}
			if _, isTrade := ev.(event.Trade); !isTrade {
				continue
			}
			if err := s.writeEvent(conn, ev); err != nil {
				return
			}
		}
	}
}
