package cloud

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/de-tools/cloud-atlas/pkg/adapters"
	"github.com/de-tools/cloud-atlas/pkg/models/api"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/services/dashboard"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const ServiceName = "cloud-atlas"

type Handler struct {
	svc dashboard.Service
}

func NewHandler(svc dashboard.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, api.Health{OK: true, Service: ServiceName})
}

func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, adapters.MapDomainProvidersToAPI(h.svc.ListProviders()))
}

func (h *Handler) MTDCosts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.MTDCosts(r.Context(), chi.URLParam(r, "provider"))
	writeResult(w, r, result, err, adapters.MapDomainCostLineItemsToAPI)
}

func (h *Handler) DailyCosts(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", dashboard.DefaultDays)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.svc.DailyCosts(r.Context(), chi.URLParam(r, "provider"), days)
	writeResult(w, r, result, err, adapters.MapDomainDailyCostsToAPI)
}

func (h *Handler) LiveMetrics(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.LiveMetrics(r.Context(), chi.URLParam(r, "provider"))
	writeResult(w, r, result, err, adapters.MapDomainLiveMetricsToAPI)
}

func (h *Handler) Timeseries(w http.ResponseWriter, r *http.Request) {
	minutes, err := intParam(r, "minutes", dashboard.DefaultMinutes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	metric := r.URL.Query().Get("type")
	if metric == "" {
		metric = string(domain.MetricCPU)
	}

	result, err := h.svc.Timeseries(r.Context(), chi.URLParam(r, "provider"), metric, minutes)
	writeResult(w, r, result, err, adapters.MapDomainTimelineToAPI)
}

func (h *Handler) CostSummary(w http.ResponseWriter, r *http.Request) {
	reports := h.svc.CostSummary(r.Context())
	writeJSON(w, r, http.StatusOK, adapters.MapDomainReportsToAPI(reports))
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.InvalidParameterError{Name: name, Value: raw, Reason: "must be an integer"}
	}
	return v, nil
}

// writeResult renders a provider result. Soft failures are served with 200
// and an error body so that one failing vendor never breaks a dashboard.
func writeResult[T, A any](w http.ResponseWriter, r *http.Request, result domain.Result[T], err error, mapFn func(T) A) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !result.OK() {
		writeJSON(w, r, http.StatusOK, adapters.MapResultErrorToAPI(result))
		return
	}
	writeJSON(w, r, http.StatusOK, mapFn(result.Value))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, r, status, api.ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var (
		notConfigured *domain.NotConfiguredError
		unsupported   *domain.UnsupportedProviderError
		configuration *domain.ConfigurationError
		parameter     *domain.InvalidParameterError
	)
	switch {
	case errors.As(err, &notConfigured), errors.As(err, &unsupported):
		return http.StatusNotFound
	case errors.As(err, &configuration), errors.As(err, &parameter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("failed to encode response")
	}
}
