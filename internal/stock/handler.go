package stock

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/stockyard-wms/stockyard/internal/bins"
	"github.com/stockyard-wms/stockyard/internal/platform/httpx"
)

// Handler wires HTTP endpoints for stock operations.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a stock handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/receipts", h.handleReceipt)
	r.Post("/adjustments", h.handleAdjustment)
	r.Post("/transfers", h.handleTransfer)
	r.Post("/relocations", h.handleRelocation)
	r.Post("/counts", h.handleCount)
	r.Get("/batches", h.handleBatches)
	r.Get("/batches/{id}", h.handleBatch)
	r.Delete("/batches/{id}", h.handleDeleteBatch)
	r.Get("/ledger", h.handleLedger)
	r.Get("/balance", h.handleBalance)
	r.Post("/plans", h.handlePlan)
	r.Get("/plans", h.handlePendingPlans)
	r.Post("/plans/{id}/apply", h.handleApplyPlan)
	r.Delete("/plans/{id}", h.handleReleasePlan)
}

type receiptRequest struct {
	ProductCode string `json:"product_code" validate:"required"`
	Quantity    string `json:"quantity" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Unit        string `json:"unit"`
	Category    string `json:"category"`
	Notes       string `json:"notes"`
	Date        string `json:"date"`
}

type adjustmentRequest struct {
	BatchID string `json:"batch_id" validate:"required"`
	Delta   string `json:"delta" validate:"required"`
	Note    string `json:"note"`
}

type transferRequest struct {
	SourceBatchID string `json:"source_batch_id" validate:"required"`
	DestLocation  string `json:"dest_location" validate:"required"`
	Quantity      string `json:"quantity" validate:"required"`
	Note          string `json:"note"`
}

type relocationRequest struct {
	BatchID      string `json:"batch_id" validate:"required"`
	DestLocation string `json:"dest_location" validate:"required"`
	Note         string `json:"note"`
}

type countRequest struct {
	BatchID string `json:"batch_id" validate:"required"`
	Counted string `json:"counted" validate:"required"`
	Note    string `json:"note"`
}

type planRequest struct {
	ProductCode string `json:"product_code" validate:"required"`
	Quantity    string `json:"quantity" validate:"required"`
}

type applyPlanRequest struct {
	Note string `json:"note"`
}

func (h *Handler) handleReceipt(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if !h.decode(w, r, &req) {
		return
	}
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid quantity")
		return
	}
	loc, err := bins.ParseLocation(req.Location)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var date time.Time
	if strings.TrimSpace(req.Date) != "" {
		date, err = time.Parse(time.RFC3339, req.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid date")
			return
		}
	}
	batch, err := h.service.Receive(r.Context(), ReceiveInput{
		ProductCode: req.ProductCode,
		Quantity:    qty,
		Location:    loc,
		Unit:        req.Unit,
		Category:    req.Category,
		Notes:       req.Notes,
		Date:        date,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, batch)
}

func (h *Handler) handleAdjustment(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	delta, err := decimal.NewFromString(req.Delta)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid delta")
		return
	}
	res, err := h.service.Adjust(r.Context(), req.BatchID, delta, req.Note)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !h.decode(w, r, &req) {
		return
	}
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid quantity")
		return
	}
	dest, err := bins.ParseLocation(req.DestLocation)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	res, err := h.service.Transfer(r.Context(), req.SourceBatchID, dest, qty, req.Note)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) handleRelocation(w http.ResponseWriter, r *http.Request) {
	var req relocationRequest
	if !h.decode(w, r, &req) {
		return
	}
	dest, err := bins.ParseLocation(req.DestLocation)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	batch, err := h.service.Relocate(r.Context(), req.BatchID, dest, req.Note)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, batch)
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	var req countRequest
	if !h.decode(w, r, &req) {
		return
	}
	counted, err := decimal.NewFromString(req.Counted)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid counted quantity")
		return
	}
	res, err := h.service.Count(r.Context(), req.BatchID, counted, req.Note)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) handleBatches(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, ExportBatches(h.service.Batches()))
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := h.service.Batch(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ExportBatch(batch))
}

func (h *Handler) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("note")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	product := strings.TrimSpace(r.URL.Query().Get("product"))
	records := ExportTransactions(h.service.History(product))
	if strings.EqualFold(r.URL.Query().Get("order"), "asc") {
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
	}
	httpx.JSON(w, http.StatusOK, records)
}

type balanceResponse struct {
	ProductCode string `json:"product_code"`
	AsOf        string `json:"as_of,omitempty"`
	Balance     string `json:"balance"`
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	product := strings.TrimSpace(r.URL.Query().Get("product"))
	if product == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product is required")
		return
	}
	var asOf time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("as_of")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid as_of")
			return
		}
		asOf = parsed
	}
	resp := balanceResponse{
		ProductCode: product,
		Balance:     h.service.RunningBalance(product, asOf).String(),
	}
	if !asOf.IsZero() {
		resp.AsOf = asOf.Format(time.RFC3339)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !h.decode(w, r, &req) {
		return
	}
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid quantity")
		return
	}
	plan, err := h.service.PlanOutbound(r.Context(), req.ProductCode, qty)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, plan)
}

func (h *Handler) handlePendingPlans(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.PendingPlans())
}

func (h *Handler) handleApplyPlan(w http.ResponseWriter, r *http.Request) {
	var req applyPlanRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
			return
		}
	}
	plan, err := h.service.ApplyPlan(r.Context(), chi.URLParam(r, "id"), req.Note)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, plan)
}

func (h *Handler) handleReleasePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ReleasePlan(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Quantity", err.Error())
	case errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case errors.Is(err, ErrUnknownBatch), errors.Is(err, ErrUnknownPlan), errors.Is(err, bins.ErrUnknownBin):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error("stock handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
