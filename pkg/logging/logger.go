package logging

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	// RequestIDKey is the key used to store request IDs in context
	RequestIDKey contextKey = "request_id"

	// RequestIDHeader carries the caller-provided request id, if any.
	RequestIDHeader = "X-Request-Id"
)

// Config defines logging configuration
type Config struct {
	// Level is the logging level (debug, info, warn, error)
	Level string
	// Pretty determines if logs should be formatted for human readability
	Pretty bool
	// Output is where logs are written (defaults to os.Stdout)
	Output io.Writer
}

// DefaultConfig returns the default logging configuration
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Pretty: false,
		Output: os.Stdout,
	}
}

// Setup configures global logging based on the provided config
func Setup(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// FromContext extracts a logger carrying the request id, if one is present.
func FromContext(ctx context.Context) zerolog.Logger {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return log.With().Str("request_id", requestID).Logger()
	}
	return log.Logger
}

// WithRequestID stores a request id on the context for FromContext.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// statusRecorder captures the response status code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}

// Middleware returns an HTTP middleware that assigns each request an id
// (honoring an incoming X-Request-Id) and writes a structured access log
// line when the request completes. Errors log at error level.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		duration := time.Since(start)
		logger := log.With().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()

		logEvent := logger.Info()
		if rec.status >= http.StatusInternalServerError {
			logEvent = logger.Error()
		}
		logEvent.Int("status", rec.status).
			Dur("duration", duration).
			Msg("Request completed")
	})
}
