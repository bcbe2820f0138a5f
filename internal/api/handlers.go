package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/maltedev/shopintel/internal/criteria"
	"github.com/maltedev/shopintel/internal/models"
	"github.com/maltedev/shopintel/internal/reconcile"
	"github.com/maltedev/shopintel/internal/scraper"
)

type Handlers struct {
	scraper   *scraper.Service
	reconcile *reconcile.Engine
	criteria  criteria.Supplier
	logger    *slog.Logger
}

func NewHandlers(s *scraper.Service, r *reconcile.Engine, c criteria.Supplier, logger *slog.Logger) *Handlers {
	return &Handlers{
		scraper:   s,
		reconcile: r,
		criteria:  c,
		logger:    logger.With("component", "api"),
	}
}

// ScrapeRequest asks for one listing page to be scraped.
type ScrapeRequest struct {
	URL      string `json:"url"`
	Query    string `json:"query"`
	Locale   string `json:"locale"`
	Category string `json:"category"`
}

type ScrapeResponse struct {
	SessionID string                 `json:"session_id"`
	Products  []models.ProductRecord `json:"products"`
	Count     int                    `json:"count"`
}

func (h *Handlers) Scrape(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	var crit map[string]models.CriterionSpec
	if req.Category != "" {
		crit = h.criteria.Criteria(req.Category)
	}

	records, err := h.scraper.Scrape(r.Context(), req.URL, req.Query, req.Locale, crit)
	if err != nil {
		h.logger.Error("scrape failed", "url", req.URL, "error", err)
		h.respondError(w, http.StatusInternalServerError, "scrape failed")
		return
	}

	h.respondJSON(w, http.StatusOK, ScrapeResponse{
		SessionID: uuid.New().String(),
		Products:  records,
		Count:     len(records),
	})
}

// AggregateRequest carries records collected across several scrapes.
type AggregateRequest struct {
	Products []models.ProductRecord `json:"products"`
}

func (h *Handlers) Aggregate(w http.ResponseWriter, r *http.Request) {
	var req AggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	merged := h.reconcile.Aggregate(req.Products)
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"products": merged,
		"count":    len(merged),
	})
}

type ValidateRequest struct {
	Products []models.ProductRecord `json:"products"`
	Category string                 `json:"category"`
}

func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var crit map[string]models.CriterionSpec
	if req.Category != "" {
		crit = h.criteria.Criteria(req.Category)
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": h.reconcile.Validate(req.Products, crit),
	})
}

type FormatRequest struct {
	Products   []models.ProductRecord `json:"products"`
	FormatType string                 `json:"format_type"`
}

func (h *Handlers) Format(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FormatType == "" {
		req.FormatType = reconcile.FormatSingleProduct
	}

	h.respondJSON(w, http.StatusOK, h.reconcile.Format(req.Products, req.FormatType))
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
