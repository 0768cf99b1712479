package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"olist-dashboard/internal/errors"
	"olist-dashboard/internal/models"
	"olist-dashboard/internal/observability"
	"olist-dashboard/internal/services"
)

const (
	dateParamLayout = "2006-01-02"
	cacheControl    = "public, max-age=300"
	defaultTopN     = 5
)

type APIHandlers struct {
	analytics *services.Analytics
	plotter   *services.GeoPlotter
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, plotter *services.GeoPlotter, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		plotter:   plotter,
		logger:    logger,
	}
}

// queryWindow reads the start/end query params, defaulting to the full
// approval span of the loaded data. Inclusive calendar dates.
func queryWindow(analytics *services.Analytics, r *http.Request) (time.Time, time.Time, *errors.AppError) {
	start, end := analytics.ApprovalSpan()

	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.ValidationWrap(err, "start must be a YYYY-MM-DD date")
		}
		start = parsed
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.ValidationWrap(err, "end must be a YYYY-MM-DD date")
		}
		end = parsed
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, errors.Validation("start date must not be after end date")
	}
	return start, end, nil
}

type dailyOrdersPayload struct {
	Days         []models.DailyOrders `json:"days"`
	TotalOrders  int                  `json:"total_orders"`
	TotalRevenue float64              `json:"total_revenue"`
}

func (h *APIHandlers) HandleDailyOrders(w http.ResponseWriter, r *http.Request) {
	start, end, appErr := queryWindow(h.analytics, r)
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
		return
	}

	m := h.analytics.Metrics(start, end)
	payload := dailyOrdersPayload{
		Days:         m.DailyOrders(),
		TotalOrders:  m.TotalOrders(),
		TotalRevenue: m.TotalRevenue(),
	}

	errors.WriteSuccessWithHeaders(w, payload, map[string]string{"Cache-Control": cacheControl})
}

type spendPayload struct {
	Days         []models.DailySpend `json:"days"`
	TotalSpend   float64             `json:"total_spend"`
	AverageSpend float64             `json:"average_spend"`
}

func (h *APIHandlers) HandleSpend(w http.ResponseWriter, r *http.Request) {
	start, end, appErr := queryWindow(h.analytics, r)
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
		return
	}

	m := h.analytics.Metrics(start, end)
	payload := spendPayload{
		Days:         m.SpendOverTime(),
		TotalSpend:   m.TotalSpend(),
		AverageSpend: m.AverageSpend(),
	}

	errors.WriteSuccessWithHeaders(w, payload, map[string]string{"Cache-Control": cacheControl})
}

type orderItemsPayload struct {
	Top          []models.CategoryCount `json:"top"`
	Bottom       []models.CategoryCount `json:"bottom"`
	TotalItems   int                    `json:"total_items"`
	AverageItems float64                `json:"average_items"`
}

func (h *APIHandlers) HandleOrderItems(w http.ResponseWriter, r *http.Request) {
	start, end, appErr := queryWindow(h.analytics, r)
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
		return
	}

	limit := defaultTopN
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			errors.WriteError(w, h.logger, errors.Validation("limit must be a positive integer"), observability.GetRequestID(r.Context()))
			return
		}
		limit = parsed
	}

	m := h.analytics.Metrics(start, end)
	payload := orderItemsPayload{
		Top:          m.ItemsByCategory(limit, false),
		Bottom:       m.ItemsByCategory(limit, true),
		TotalItems:   m.TotalItems(),
		AverageItems: m.AverageItems(),
	}

	errors.WriteSuccessWithHeaders(w, payload, map[string]string{"Cache-Control": cacheControl})
}

type statePayload struct {
	States          []models.StateCount `json:"states"`
	MostCommonState string              `json:"most_common_state"`
}

func (h *APIHandlers) HandleCustomersByState(w http.ResponseWriter, r *http.Request) {
	start, end, appErr := queryWindow(h.analytics, r)
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
		return
	}

	m := h.analytics.Metrics(start, end)
	payload := statePayload{
		States:          m.CustomersByState(),
		MostCommonState: m.TopState(),
	}

	errors.WriteSuccessWithHeaders(w, payload, map[string]string{"Cache-Control": cacheControl})
}

type statusPayload struct {
	Statuses         []models.StatusCount `json:"statuses"`
	MostCommonStatus string               `json:"most_common_status"`
}

func (h *APIHandlers) HandleOrderStatus(w http.ResponseWriter, r *http.Request) {
	start, end, appErr := queryWindow(h.analytics, r)
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
		return
	}

	m := h.analytics.Metrics(start, end)
	payload := statusPayload{
		Statuses:         m.StatusDistribution(),
		MostCommonStatus: m.TopStatus(),
	}

	errors.WriteSuccessWithHeaders(w, payload, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleRFM(w http.ResponseWriter, r *http.Request) {
	start, end, appErr := queryWindow(h.analytics, r)
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccessWithHeaders(w, h.analytics.RFM(start, end), map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleGeoScatter(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", cacheControl)

	if err := h.plotter.Render(w, h.analytics.Geolocations()); err != nil {
		h.logger.Error("render geo scatter", "error", err)
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
