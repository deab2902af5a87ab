package bins

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/stockyard-wms/stockyard/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the bin catalog.
type Handler struct {
	logger  *slog.Logger
	catalog *Catalog
	scorer  Scorer
}

// NewHandler constructs a bin catalog handler.
func NewHandler(logger *slog.Logger, catalog *Catalog, scorer Scorer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, catalog: catalog, scorer: scorer}
}

// MountRoutes registers bin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{code}", h.handleGet)
	r.Post("/{code}/toggle", h.handleToggle)
}

// Record is the flat, field-named export shape for one bin.
type Record struct {
	Code   string `json:"code"`
	Rack   string `json:"rack"`
	Bay    int    `json:"bay"`
	Level  string `json:"level"`
	Status Status `json:"status"`
	Score  int64  `json:"score"`
}

func (h *Handler) record(bin Bin) Record {
	return Record{
		Code:   bin.Code(),
		Rack:   bin.Rack,
		Bay:    bin.Bay,
		Level:  bin.Level.String(),
		Status: bin.Status,
		Score:  h.scorer.Score(bin.Location()),
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	all := h.catalog.List()
	records := make([]Record, 0, len(all))
	for _, bin := range all {
		records = append(records, h.record(bin))
	}
	// Drain-priority order so staging bins surface first.
	sort.Slice(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score < records[j].Score
		}
		return records[i].Code < records[j].Code
	})
	httpx.JSON(w, http.StatusOK, records)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	bin, err := h.catalog.Get(chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.record(bin))
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	bin, err := h.catalog.Toggle(chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.logger.Info("bin status toggled",
		slog.String("code", bin.Code()),
		slog.String("status", string(bin.Status)))
	httpx.JSON(w, http.StatusOK, h.record(bin))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownBin):
		httpx.Problem(w, http.StatusNotFound, "Unknown Bin", err.Error())
	case errors.Is(err, ErrDuplicateBinCode):
		httpx.Problem(w, http.StatusConflict, "Duplicate Bin Code", err.Error())
	default:
		h.logger.Error("bins handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
