// Package server exposes the reconciliation engine over HTTP. Transport
// concerns live here; the engine itself stays pure.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lojista-tools/recibo/internal/config"
	"github.com/lojista-tools/recibo/internal/recon"
)

// New builds the HTTP router for the reconciliation service.
func New(cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(requestLogger)

	r.Get("/health", handleHealth)
	r.Post("/api/daily-flags", handleDailyFlags)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDailyFlags decodes the reconciliation request payload, runs the
// engine and writes the verdict. Only syntactically invalid JSON is
// rejected; garbled-but-valid shapes come back as a GRAY verdict.
func handleDailyFlags(w http.ResponseWriter, r *http.Request) {
	var in recon.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	verdict := recon.Reconcile(in)

	zap.L().Info("daily flags computed",
		zap.String("status", string(verdict.Status)),
		zap.Int("receipts", verdict.ReceiptsCount),
		zap.Int("errors", len(verdict.Errors)),
	)
	writeJSON(w, http.StatusOK, verdict)
}

// requestLogger tags every request with an id and logs its outcome.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		zap.L().Debug("http request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}
