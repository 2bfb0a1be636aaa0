package server

import (
	"context"
	"net/http"
	"time"

	"github.com/erain9/limitbook/pkg/core"
	"github.com/erain9/limitbook/pkg/event"
	"github.com/erain9/limitbook/pkg/logging"
	"github.com/erain9/limitbook/pkg/otel"
	"github.com/erain9/limitbook/pkg/store/redis"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Config holds the HTTP server configuration.
type Config struct {
	Addr string
	// SnapshotDepth bounds levels per side in snapshot responses; 0 = all.
	SnapshotDepth int
	// ResyncInterval is how often websocket book subscribers receive an
	// unsolicited full snapshot.
	ResyncInterval time.Duration
	// WriteTimeout bounds a single websocket write.
	WriteTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ResyncInterval <= 0 {
		c.ResyncInterval = time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	return c
}

// Server exposes the matching engine over HTTP and WebSocket.
type Server struct {
	cfg      Config
	engine   *core.Engine
	hub      *event.Hub
	trades   *redis.TradeStore
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// New creates a Server. The trade store is optional; when nil the recent
// trades endpoint reports the store as unavailable.
func New(cfg Config, engine *core.Engine, hub *event.Hub, trades *redis.TradeStore) *Server {
	s := &Server{
		cfg:    cfg.withDefaults(),
		engine: engine,
		hub:    hub,
		trades: trades,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.httpSrv = &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}
	return s
}

// Handler builds the route table wrapped in logging and metrics middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleHealth)
	mux.HandleFunc("/api/orders", s.handleSubmitOrder)
	mux.HandleFunc("/api/orders/cancel", s.handleCancelOrder)
	mux.HandleFunc("/api/orders/all", s.handleAllOrders)
	mux.HandleFunc("/api/orderbook", s.handleOrderBook)
	mux.HandleFunc("/api/trades/recent", s.handleRecentTrades)
	mux.HandleFunc("/api/admin/halt", s.handleHalt)
	mux.HandleFunc("/api/admin/resume", s.handleResume)
	mux.HandleFunc("/ws/orderbook", s.handleBookSocket)
	mux.HandleFunc("/ws/trades", s.handleTradeSocket)

	return logging.Middleware(s.recoverMiddleware(s.metricsMiddleware(mux)))
}

// ListenAndServe blocks serving requests until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.cfg.Addr).Msg("Starting HTTP server")
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Msg("Handler panicked")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	metrics, err := otel.GetHTTPServerMetrics()
	if err != nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		metrics.IncRequests(ctx, r.URL.Path)
		metrics.AddInFlightRequests(ctx, 1)
		defer metrics.AddInFlightRequests(ctx, -1)

		rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		metrics.RecordLatency(ctx, r.URL.Path, time.Since(start), rec.status)
		if rec.status >= http.StatusBadRequest {
			metrics.IncErrors(ctx, r.URL.Path, rec.status)
		}
	})
}
