// Package handlers implements the JSON endpoint handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"priceintel/internal/application"
	"priceintel/internal/cache"
	"priceintel/internal/metrics"
	"priceintel/internal/upc"
)

// Handlers holds the endpoint dependencies.
type Handlers struct {
	recommender *application.Recommender
	cache       cache.Cache
	metrics     *metrics.Registry
	version     string
	started     time.Time
	services    map[string]string
}

func New(rec *application.Recommender, c cache.Cache, reg *metrics.Registry, version string, services map[string]string) *Handlers {
	if services == nil {
		services = map[string]string{}
	}
	return &Handlers{
		recommender: rec,
		cache:       c,
		metrics:     reg,
		version:     version,
		started:     time.Now(),
		services:    services,
	}
}

// Recommend handles POST /price-recommendation.
func (h *Handlers) Recommend(w http.ResponseWriter, r *http.Request) {
	var req PriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_request_body", "Request body must be valid JSON")
		return
	}
	if req.UPC == "" {
		h.writeError(w, r, http.StatusBadRequest, "missing_upc", "Field 'upc' is required")
		return
	}

	rec, err := h.recommender.Recommend(r.Context(), application.Request{
		UPC:      req.UPC,
		Internal: req.InternalData.toRecord(),
	})
	if err != nil {
		if errors.Is(err, upc.ErrEmptyCode) {
			h.writeError(w, r, http.StatusBadRequest, "missing_upc", "Field 'upc' is required")
			return
		}
		h.writeError(w, r, http.StatusInternalServerError, "recommendation_failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, rec)
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		UptimeSec: int64(time.Since(h.started).Seconds()),
		Services:  h.services,
		Timestamp: time.Now().UTC(),
	})
}

// CacheStats handles GET /cache/stats.
func (h *Handlers) CacheStats(w http.ResponseWriter, r *http.Request) {
	hits, misses := h.metrics.CacheStats("market")
	h.writeJSON(w, http.StatusOK, CacheStatsResponse{
		Backend: h.cache.Kind(),
		Hits:    hits,
		Misses:  misses,
	})
}

// CacheClear handles DELETE /cache/clear.
func (h *Handlers) CacheClear(w http.ResponseWriter, r *http.Request) {
	h.cache.Clear()
	h.writeJSON(w, http.StatusOK, CacheClearResponse{Status: "cleared"})
}

// NotFound handles unmatched routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.writeError(w, r, http.StatusNotFound, "endpoint_not_found", "The requested endpoint does not exist")
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"json_encoding_failed"}`, http.StatusInternalServerError)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID, _ := r.Context().Value("request_id").(string)
	if requestID == "" {
		requestID = "unknown"
	}

	h.writeJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
	})
}
