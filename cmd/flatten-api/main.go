// Command flatten-api serves Reddit export flattening over HTTP.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/WessleyAI/reddit-flatten/engine/export"
	"github.com/WessleyAI/reddit-flatten/engine/thread"
	"github.com/WessleyAI/reddit-flatten/pkg/metrics"
	"github.com/WessleyAI/reddit-flatten/pkg/mid"
)

// Config holds all environment-based configuration.
type Config struct {
	Port         string
	ServiceName  string
	MaxBodyBytes int64
}

func loadConfig() Config {
	maxBody, err := strconv.ParseInt(envOr("MAX_BODY_BYTES", "33554432"), 10, 64)
	if err != nil || maxBody <= 0 {
		maxBody = 32 << 20
	}
	return Config{
		Port:         envOr("PORT", "8080"),
		ServiceName:  envOr("SERVICE_NAME", "flatten-api"),
		MaxBodyBytes: maxBody,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(loadConfig(), logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func newHandler(cfg Config, logger *slog.Logger) http.Handler {
	reg := metrics.New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/flatten", handleFlatten(logger, reg))
	mux.Handle("GET /metrics", reg.Handler())

	return mid.Chain(mux,
		mid.Recover(logger),
		mid.Trace(cfg.ServiceName),
		mid.Logger(logger),
		mid.LimitBody(cfg.MaxBodyBytes),
	)
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newHandler(cfg, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("flatten api starting", "port", cfg.Port, "max_body_bytes", cfg.MaxBodyBytes)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// FlattenResponse is the JSON response for POST /api/flatten.
type FlattenResponse struct {
	Shape  string   `json:"shape"`
	Count  int      `json:"count"`
	Empty  bool     `json:"empty"`
	Blocks []string `json:"blocks"`
	Text   string   `json:"text"`
}

// ErrorResponse is returned for every rejected request.
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// handleFlatten takes the raw export as the request body and the shape
// (and, for profiles, the filter) as query parameters.
func handleFlatten(logger *slog.Logger, reg *metrics.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shapeLabel := "invalid"
		respond := func(status int, v any) {
			reg.Counter("flatten_requests_total", "Flatten requests by shape and status code.",
				"shape", shapeLabel, "code", strconv.Itoa(status)).Inc()
			writeJSON(w, status, v)
		}

		q := r.URL.Query()
		shape, err := thread.ParseShape(q.Get("shape"))
		if err != nil {
			respond(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Hint: "shape is one of feed, single-post, profile, comments-only"})
			return
		}
		shapeLabel = shape.String()

		filter := thread.FilterBoth
		if f := q.Get("filter"); f != "" {
			if filter, err = thread.ParseProfileFilter(f); err != nil {
				respond(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Hint: "filter is one of posts, comments, both"})
				return
			}
		}

		doc, err := export.Decode(r.Body)
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				respond(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "export too large"})
				return
			}
			respond(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}

		start := time.Now()
		res, err := thread.Run(r.Context(), doc, thread.Request{Shape: shape, Filter: filter}, logger)
		reg.Histogram("flatten_duration_seconds", "Time spent extracting blocks.", nil, "shape", shapeLabel).Since(start)
		if err != nil {
			var se *thread.ShapeError
			switch {
			case errors.As(err, &se):
				respond(http.StatusUnprocessableEntity, ErrorResponse{Error: thread.ErrShapeMismatch.Error(), Hint: se.Hint})
			case errors.Is(err, thread.ErrInvalidSelector):
				respond(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			default:
				logger.Error("flatten failed", "err", err)
				respond(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			}
			return
		}

		reg.Counter("flatten_blocks_total", "Blocks extracted by shape.", "shape", shapeLabel).Add(int64(res.Count()))
		respond(http.StatusOK, FlattenResponse{
			Shape:  res.Shape.String(),
			Count:  res.Count(),
			Empty:  res.Empty(),
			Blocks: res.Texts(),
			Text:   export.Join(res.Blocks, export.DefaultSeparator),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
