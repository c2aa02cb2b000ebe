package analysis

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/de-tools/sales-atlas/pkg/adapters"
	"github.com/de-tools/sales-atlas/pkg/models/api"
	services "github.com/de-tools/sales-atlas/pkg/services/analysis"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Handler struct {
	service services.Service
	now     func() time.Time
}

func NewHandler(service services.Service) *Handler {
	return &Handler{
		service: service,
		now:     time.Now,
	}
}

func (h *Handler) storeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "store")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, r, &services.ValidationError{Field: "store", Reason: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.storeID(w, r)
	if !ok {
		return
	}

	req, err := parseAnalysisRequest(storeID, r.URL.Query(), h.now().Year())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, adapters.MapAnalysisResponseDomainToApi(resp))
}

func (h *Handler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.storeID(w, r)
	if !ok {
		return
	}

	opts, err := h.service.FilterOptions(r.Context(), storeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, adapters.MapFilterOptionsDomainToApi(opts))
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.storeID(w, r)
	if !ok {
		return
	}

	h.writeJSON(w, r, http.StatusOK, api.ClearCacheResponse{
		Success: h.service.ClearCache(r.Context(), storeID),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	var (
		validationErr  *services.ValidationError
		dataAccessErr  *services.DataAccessError
		aggregationErr *services.AggregationError
	)
	switch {
	case errors.As(err, &validationErr):
		h.writeJSON(w, r, http.StatusBadRequest, api.ErrorResponse{
			Error: validationErr.Error(),
			Field: validationErr.Field,
		})
		return
	case errors.As(err, &dataAccessErr):
		logger.Error().Err(err).Int64("store_id", dataAccessErr.StoreID).Str("stage", dataAccessErr.Stage).Msg("data access failed")
		h.writeJSON(w, r, http.StatusInternalServerError, api.ErrorResponse{
			Error: "failed to read order data",
			Stage: dataAccessErr.Stage,
		})
		return
	case errors.As(err, &aggregationErr):
		logger.Error().Err(err).Int64("store_id", aggregationErr.StoreID).Msg("aggregation failed")
		h.writeJSON(w, r, http.StatusInternalServerError, api.ErrorResponse{
			Error: aggregationErr.Error(),
			Stage: aggregationErr.Stage,
		})
		return
	default:
		logger.Error().Err(err).Msg("request failed")
		h.writeJSON(w, r, http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
	}
}
