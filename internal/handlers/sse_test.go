package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"
)

func newTestSSE() *SSEHandlers {
	return NewSSEHandlers(fixtureAnalytics(), slog.New(slog.DiscardHandler))
}

func TestSSEHandleDailyOrders(t *testing.T) {
	h := newTestSSE()

	rec := doRequest(t, h.HandleDailyOrders, "/sse/daily-orders")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "datastar-patch-signals") {
		t.Errorf("missing signal patch event in stream:\n%s", body)
	}
	if !strings.Contains(body, "totalOrders") || !strings.Contains(body, "dailyOrders") {
		t.Errorf("missing expected signals in stream:\n%s", body)
	}
}

func TestSSEHandleSpend(t *testing.T) {
	h := newTestSSE()

	rec := doRequest(t, h.HandleSpend, "/sse/spend")

	body := rec.Body.String()
	if !strings.Contains(body, "spendOverTime") || !strings.Contains(body, "averageSpend") {
		t.Errorf("missing spend signals in stream:\n%s", body)
	}
}

func TestSSEHandleCustomersByState(t *testing.T) {
	h := newTestSSE()

	rec := doRequest(t, h.HandleCustomersByState, "/sse/customers-by-state")

	body := rec.Body.String()
	if !strings.Contains(body, "datastar-patch-elements") {
		t.Errorf("missing element patch event in stream:\n%s", body)
	}
	if !strings.Contains(body, "states-content") {
		t.Errorf("patched fragment should target the states container:\n%s", body)
	}
	if !strings.Contains(body, "SP") {
		t.Errorf("state rows missing from fragment:\n%s", body)
	}
}

func TestSSEHandleRefreshAll(t *testing.T) {
	h := newTestSSE()

	rec := doRequest(t, h.HandleRefreshAll, "/sse/refresh-all")

	body := rec.Body.String()
	wanted := []string{
		"datastar-patch-elements",
		"datastar-patch-signals",
		"states-content",
		"dailyOrders",
		"spendOverTime",
		"topItems",
		"orderStatus",
		"rfmSegments",
		"avgRecency",
	}
	for _, want := range wanted {
		if !strings.Contains(body, want) {
			t.Errorf("refresh stream missing %q:\n%s", want, body)
		}
	}
}

func TestSSEHandleRefreshAll_Windowed(t *testing.T) {
	h := newTestSSE()

	rec := doRequest(t, h.HandleRefreshAll, "/sse/refresh-all?start=2018-01-01&end=2018-01-01")

	body := rec.Body.String()
	if !strings.Contains(body, `"totalOrders":1`) {
		t.Errorf("expected a single order in the windowed refresh:\n%s", body)
	}
}

func TestSSEHandlers_InvalidRange(t *testing.T) {
	h := newTestSSE()

	handlers := map[string]http.HandlerFunc{
		"daily-orders":       h.HandleDailyOrders,
		"spend":              h.HandleSpend,
		"customers-by-state": h.HandleCustomersByState,
		"refresh-all":        h.HandleRefreshAll,
	}

	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			rec := doRequest(t, handler, "/sse/"+name+"?start=2018-02-01&end=2018-01-01")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestRenderStateTable(t *testing.T) {
	h := newTestSSE()

	html, err := h.renderStateTable(h.analytics.Metrics(
		time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2018, 1, 3, 0, 0, 0, 0, time.UTC),
	))
	if err != nil {
		t.Fatalf("renderStateTable failed: %v", err)
	}

	if !strings.Contains(html, `id="states-content"`) {
		t.Error("fragment missing its container id")
	}
	if !strings.Contains(html, "<td>SP</td>") || !strings.Contains(html, "<td>RJ</td>") {
		t.Errorf("fragment missing state rows:\n%s", html)
	}
	if !strings.Contains(html, "Most common state: <strong>SP</strong>") {
		t.Errorf("fragment missing the mode state:\n%s", html)
	}
}
