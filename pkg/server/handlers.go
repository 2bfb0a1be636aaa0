package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/erain9/limitbook/pkg/core"
	"github.com/erain9/limitbook/pkg/logging"
	"github.com/nikolaydubina/fpdecimal"
)

// submitRequest is the wire form of an order submission.
type submitRequest struct {
	Side     string `json:"side"`
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
	UserID   string `json:"user_id,omitempty"`
}

// submitResponse reports the outcome of a submission, including the trades it
// produced immediately.
type submitResponse struct {
	Success   bool         `json:"success"`
	OrderID   uint64       `json:"order_id"`
	Message   string       `json:"message"`
	Trades    []core.Trade `json:"trades"`
	Executed  int64        `json:"executed_quantity"`
	Remaining int64        `json:"remaining_quantity"`
	Resting   bool         `json:"resting"`
}

type cancelRequest struct {
	OrderID uint64 `json:"order_id"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, statusResponse{Success: false, Message: msg})
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidPrice),
		errors.Is(err, core.ErrInvalidQuantity),
		errors.Is(err, core.ErrInvalidSide):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrHalted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("limitbook matching engine\n"))
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	side, err := core.ParseSide(req.Side)
	if err != nil {
		writeError(w, http.StatusBadRequest, "side must be buy or sell")
		return
	}

	price, err := fpdecimal.FromString(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price")
		return
	}

	logger := logging.FromContext(r.Context())
	done, err := s.engine.Submit(r.Context(), side, price, req.Quantity, req.UserID)
	if err != nil {
		logger.Debug().Err(err).Str("side", req.Side).Str("price", req.Price).Msg("Order rejected")
		writeError(w, statusFor(err), err.Error())
		return
	}

	logger.Info().
		Uint64("order_id", done.OrderID).
		Str("side", req.Side).
		Str("price", req.Price).
		Int64("quantity", req.Quantity).
		Int("trades", len(done.Trades)).
		Msg("Order accepted")

	trades := done.Trades
	if trades == nil {
		trades = []core.Trade{}
	}
	writeJSON(w, http.StatusOK, submitResponse{
		Success:   true,
		OrderID:   done.OrderID,
		Message:   "order accepted",
		Trades:    trades,
		Executed:  done.Processed,
		Remaining: done.Left,
		Resting:   done.Stored,
	})
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.engine.Cancel(r.Context(), req.OrderID); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	logger := logging.FromContext(r.Context())
	logger.Info().
		Uint64("order_id", req.OrderID).
		Msg("Order cancelled")
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "order cancelled"})
}

func (s *Server) handleOrderBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	depth := s.cfg.SnapshotDepth
	if v := r.URL.Query().Get("depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid depth")
			return
		}
		depth = n
	}

	writeJSON(w, http.StatusOK, s.engine.Snapshot(depth))
}

func (s *Server) handleAllOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	orders := s.engine.Orders()
	if orders == nil {
		orders = []core.RestingOrder{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (s *Server) handleRecentTrades(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.trades == nil {
		writeError(w, http.StatusServiceUnavailable, "trade store unavailable")
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	trades, err := s.trades.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load trades")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trades": trades})
}

func (s *Server) handleHalt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.engine.Halt()
	logger := logging.FromContext(r.Context())
	logger.Warn().Msg("Engine halted")
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "engine halted"})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.engine.Resume()
	logger := logging.FromContext(r.Context())
	logger.Info().Msg("Engine resumed")
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "engine resumed"})
}

// statusWriter captures the status code for the metrics middleware.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the middleware chain.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}
