package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"olist-dashboard/internal/errors"
	"olist-dashboard/internal/observability"
	"olist-dashboard/internal/services"
)

const (
	maxTableRows  = 30
	topCategories = 5
)

var stateTableTemplate = template.Must(template.New("stateTable").Parse(`
<div id="states-content">
<p>Most common state: <strong>{{.MostCommon}}</strong></p>
<table class="modern-table">
<thead><tr><th>State</th><th>Customers</th></tr></thead>
<tbody>
{{range $i, $item := .Rows}}{{if lt $i $.MaxRows}}<tr>
<td>{{.State}}</td>
<td>{{.CustomerCount}}</td>
</tr>{{end}}{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *SSEHandlers) renderStateTable(m *services.OrderMetrics) (string, error) {
	var buf strings.Builder
	err := stateTableTemplate.Execute(&buf, struct {
		Rows       any
		MostCommon string
		MaxRows    int
	}{
		Rows:       m.CustomersByState(),
		MostCommon: m.TopState(),
		MaxRows:    maxTableRows,
	})
	return buf.String(), err
}

// HandleDailyOrders patches the daily-orders chart signals for the window in
// the query string.
func (h *SSEHandlers) HandleDailyOrders(w http.ResponseWriter, r *http.Request) {
	start, end, appErr := queryWindow(h.analytics, r)
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
		return
	}
	sse := datastar.NewSSE(w, r)

	m := h.analytics.Metrics(start, end)
	jsonData, err := json.Marshal(map[string]any{
		"dailyOrders":  m.DailyOrders(),
		"totalOrders":  m.TotalOrders(),
		"totalRevenue": m.TotalRevenue(),
	})
	if err != nil {
		h.logger.Error("marshal daily orders", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleSpend(w http.ResponseWriter, r *http.Request) {
	start, end, appErr := queryWindow(h.analytics, r)
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
		return
	}
	sse := datastar.NewSSE(w, r)

	m := h.analytics.Metrics(start, end)
	jsonData, err := json.Marshal(map[string]any{
		"spendOverTime": m.SpendOverTime(),
		"totalSpend":    m.TotalSpend(),
		"averageSpend":  m.AverageSpend(),
	})
	if err != nil {
		h.logger.Error("marshal spend data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleCustomersByState(w http.ResponseWriter, r *http.Request) {
	start, end, appErr := queryWindow(h.analytics, r)
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
		return
	}
	sse := datastar.NewSSE(w, r)

	html, err := h.renderStateTable(h.analytics.Metrics(start, end))
	if err != nil {
		h.logger.Error("render state table", "error", err)
		return
	}
	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleRefreshAll recomputes every dashboard panel for the selected window
// and pushes the results in one stream. This is the filter-change path.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	start, end, appErr := queryWindow(h.analytics, r)
	if appErr != nil {
		errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
		return
	}
	sse := datastar.NewSSE(w, r)

	m := h.analytics.Metrics(start, end)
	rfm := h.analytics.RFM(start, end)

	html, err := h.renderStateTable(m)
	if err != nil {
		h.logger.Error("render state table", "error", err)
		return
	}
	sse.PatchElements(html)

	allSignals, err := json.Marshal(map[string]any{
		"dailyOrders":   m.DailyOrders(),
		"totalOrders":   m.TotalOrders(),
		"totalRevenue":  m.TotalRevenue(),
		"spendOverTime": m.SpendOverTime(),
		"totalSpend":    m.TotalSpend(),
		"averageSpend":  m.AverageSpend(),
		"topItems":      m.ItemsByCategory(topCategories, false),
		"bottomItems":   m.ItemsByCategory(topCategories, true),
		"orderStatus":   m.StatusDistribution(),
		"commonStatus":  m.TopStatus(),
		"rfmSegments":   rfm.Segments,
		"avgRecency":    rfm.AvgRecency,
		"avgFrequency":  rfm.AvgFrequency,
		"avgMonetary":   rfm.AvgMonetary,
	})
	if err != nil {
		h.logger.Error("marshal refresh signals", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
