// Package server exposes the projection engine over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/dcf-forecast/internal/document"
	"github.com/iwvelando/dcf-forecast/internal/engine"
	"github.com/iwvelando/dcf-forecast/internal/projection"
	"github.com/iwvelando/dcf-forecast/internal/valuation"
	"github.com/iwvelando/dcf-forecast/pkg/constants"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the projection API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}

	mux := http.NewServeMux()

	// Projection API endpoint (JSON document body)
	mux.HandleFunc("/api/projection", h.handleProjection)

	// Projection API endpoint (saved-document upload)
	mux.HandleFunc("/api/projection/file", h.handleProjectionFile)

	// Version endpoint for client metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type projectionResponse struct {
	Series        []float64          `json:"series"`
	ChartPoints   []float64          `json:"chartPoints"`
	Records       []valuation.Record `json:"records"`
	TerminalValue float64            `json:"terminalValue"`
	TotalValue    float64            `json:"totalValue"`
	Warnings      []string           `json:"warnings,omitempty"`
	Duration      string             `json:"duration"`
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}

	doc, err := document.LoadReader(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("document exceeds limit of %d bytes", h.maxUploadSize), "server.handleProjection")
			return
		}
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleProjection")
		return
	}

	h.runProjection(w, doc, start, "server.handleProjection")
}

func (h *handler) handleProjectionFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), "server.handleProjectionFile")
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), "server.handleProjectionFile")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing document file", "server.handleProjectionFile")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleProjectionFile"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read document: %v", err), "server.handleProjectionFile")
		return
	}

	doc, err := document.LoadBytes(buf.Bytes())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleProjectionFile")
		return
	}

	h.runProjection(w, doc, start, "server.handleProjectionFile")
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) runProjection(w http.ResponseWriter, doc *document.Document, start time.Time, op string) {
	warnings := doc.Validate()

	// One engine per request: no shared state, no locking.
	eng := engine.NewEngine(h.logger)
	series, result, err := eng.Project(doc)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, projection.ErrPeriodOrder) {
			status = http.StatusUnprocessableEntity
		}
		h.respondError(w, status, err.Error(), op)
		return
	}

	elapsed := time.Since(start)

	response := projectionResponse{
		Series:        series,
		ChartPoints:   engine.ChartPoints(doc, series),
		Records:       result.Records,
		TerminalValue: result.TerminalValue,
		TotalValue:    result.TotalValue,
		Warnings:      warnings,
		Duration:      elapsed.String(),
	}

	h.logger.Info("projection computed",
		zap.String("op", op),
		zap.Int("rows", len(doc.Rows)),
		zap.Int("samples", len(series)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("projection request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// encoding/json cannot represent non-finite valuations; the client
		// gets a truncated body and the condition is logged here.
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
