package products

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/stockyard-wms/stockyard/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the product master.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a product handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{code}", h.handleGet)
	r.Put("/", h.handleUpsert)
	r.Post("/rename", h.handleRename)
}

type upsertRequest struct {
	Code            string `json:"code" validate:"required"`
	Name            string `json:"name" validate:"required"`
	DefaultUnit     string `json:"default_unit"`
	DefaultCategory string `json:"default_category"`
	MinStockLevel   string `json:"min_stock_level"`
}

type renameRequest struct {
	OldCode string `json:"old_code" validate:"required"`
	NewCode string `json:"new_code" validate:"required,nefield=OldCode"`
}

type renameResponse struct {
	Product          Product `json:"product"`
	RecordsRewritten int     `json:"records_rewritten"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.List())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	minLevel, err := parseDecimal(req.MinStockLevel)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid min_stock_level")
		return
	}
	product, err := h.service.Upsert(Product{
		Code:            req.Code,
		Name:            req.Name,
		DefaultUnit:     req.DefaultUnit,
		DefaultCategory: req.DefaultCategory,
		MinStockLevel:   minLevel,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	product, rewritten, err := h.service.Rename(req.OldCode, req.NewCode)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, renameResponse{Product: product, RecordsRewritten: rewritten})
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.TrimSpace(s))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownProduct):
		httpx.Problem(w, http.StatusNotFound, "Unknown Product", err.Error())
	case errors.Is(err, ErrDuplicateProduct):
		httpx.Problem(w, http.StatusConflict, "Duplicate Product", err.Error())
	default:
		h.logger.Error("products handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
