package snapshot

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stockyard-wms/stockyard/internal/platform/httpx"
)

// Handler exposes snapshot capture and restore over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a snapshot handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers snapshot routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handlePersist)
	r.Post("/restore", h.handleRestore)
	r.Get("/latest", h.handleLatest)
}

type persistResponse struct {
	TakenAt      time.Time `json:"taken_at"`
	Batches      int       `json:"batches"`
	Transactions int       `json:"transactions"`
	Products     int       `json:"products"`
	Bins         int       `json:"bins"`
}

func (h *Handler) handlePersist(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Persist(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, persistResponse{
		TakenAt:      snap.TakenAt,
		Batches:      len(snap.Batches),
		Transactions: len(snap.Transactions),
		Products:     len(snap.Products),
		Bins:         len(snap.Bins),
	})
}

type restoreRequest struct {
	Force bool `json:"force"`
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
			return
		}
	}
	res, err := h.service.RestoreLatest(r.Context(), req.Force)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Latest(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoSnapshot):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrRestoreGuard):
		httpx.Problem(w, http.StatusConflict, "Restore Guarded", err.Error())
	case errors.Is(err, ErrSnapshotExists):
		httpx.Problem(w, http.StatusConflict, "Duplicate Snapshot", err.Error())
	default:
		h.logger.Error("snapshot handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
