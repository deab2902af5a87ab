package reports

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockyard-wms/stockyard/internal/platform/httpx"
)

// Handler exposes the report views.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a report handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/levels", h.handleLevels)
	r.Get("/low-stock", h.handleLowStock)
	r.Get("/overview", h.handleOverview)
	r.Get("/drift", h.handleDrift)
}

func (h *Handler) handleLevels(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.StockLevels(r.Context())
	if err != nil {
		h.logger.Error("stock levels report", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "report cache unavailable")
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.LowStock(r.Context())
	if err != nil {
		h.logger.Error("low stock report", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "report cache unavailable")
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.StockOverview(r.Context())
	if err != nil {
		h.logger.Error("stock overview report", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "report cache unavailable")
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}

func (h *Handler) handleDrift(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Drifts())
}
