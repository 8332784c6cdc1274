package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
)

type statsHandler struct {
	baseURL string
	statsUC statsUseCase
}

func newStatsHandler(baseURL string, statsUC statsUseCase) *statsHandler {
	return &statsHandler{
		baseURL: baseURL,
		statsUC: statsUC,
	}
}

func (h *statsHandler) getURLStats(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	stats, err := h.statsUC.Analytics(r.Context(), shortCode)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toURLStatsResponse(stats))
}

func (h *statsHandler) listURLStats(w http.ResponseWriter, r *http.Request) {
	page, err := intQuery(r, "page", 1)
	if err != nil {
		renderError(w, r, err)
		return
	}

	limit, err := intQuery(r, "limit", usecase.DefaultPageSize)
	if err != nil {
		renderError(w, r, err)
		return
	}

	p, err := h.statsUC.AnalyticsPage(r.Context(), page, limit)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toAnalyticsPageResponse(h.baseURL, p))
}

func (h *statsHandler) getCacheStats(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.statsUC.CacheStats())
}

func (h *statsHandler) clearCache(w http.ResponseWriter, r *http.Request) {
	h.statsUC.ClearCache()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, messageResponse{
		Message:   "cache cleared",
		Timestamp: time.Now().UTC(),
	})
}

func (h *statsHandler) getRateLimitStats(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.statsUC.RateLimitStats())
}

func intQuery(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, entity.NewValidationError(key, "must be an integer")
	}

	return n, nil
}
