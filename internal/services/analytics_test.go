package services

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"olist-dashboard/internal/models"
)

func newTestAnalytics(t *testing.T) *Analytics {
	t.Helper()
	a := NewAnalytics()
	a.SetOrders(testOrders())
	return a
}

func TestAnalytics_WindowInclusiveBounds(t *testing.T) {
	a := newTestAnalytics(t)

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"full range", day(1), day(2), 4},
		{"first day only", day(1), day(1), 2},
		{"second day only", day(2), day(2), 2},
		{"before the data", day(1).AddDate(0, -1, 0), day(1).AddDate(0, -1, 0), 0},
		{"after the data", day(20), day(25), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Window(tt.start, tt.end)
			if len(got) != tt.want {
				t.Errorf("Window(%s, %s) returned %d rows, want %d",
					tt.start.Format("2006-01-02"), tt.end.Format("2006-01-02"), len(got), tt.want)
			}
		})
	}
}

func TestAnalytics_WindowIgnoresClockTime(t *testing.T) {
	a := newTestAnalytics(t)

	// Orders approved at 10:30; an end bound earlier in the day must still
	// include them because filtering is by calendar date.
	end := time.Date(2018, 1, 2, 0, 0, 0, 0, time.UTC)
	got := a.Window(day(1), end)
	if len(got) != 4 {
		t.Errorf("expected 4 rows for a midnight end bound, got %d", len(got))
	}
}

func TestAnalytics_WindowSkipsUnapproved(t *testing.T) {
	orders := testOrders()
	orders = append(orders, models.Order{
		OrderID:      "O4",
		Status:       "created",
		PurchasedAt:  day(1),
		PaymentValue: 10,
	})

	a := NewAnalytics()
	a.SetOrders(orders)

	got := a.Window(day(1), day(2))
	for _, o := range got {
		if o.ApprovedAt.IsZero() {
			t.Errorf("unapproved order %s leaked into the window", o.OrderID)
		}
	}
	if len(got) != 4 {
		t.Errorf("expected 4 approved rows, got %d", len(got))
	}
}

func TestAnalytics_ApprovalSpan(t *testing.T) {
	a := newTestAnalytics(t)

	first, last := a.ApprovalSpan()
	if !first.Equal(day(1)) {
		t.Errorf("first approval = %s, want %s", first, day(1))
	}
	if !last.Equal(day(2)) {
		t.Errorf("last approval = %s, want %s", last, day(2))
	}
}

func TestAnalytics_ApprovalSpanEmpty(t *testing.T) {
	a := NewAnalytics()

	first, last := a.ApprovalSpan()
	if !first.IsZero() || !last.IsZero() {
		t.Errorf("expected zero span for no data, got %s..%s", first, last)
	}
}

func TestAnalytics_RepeatedQueriesAreIdentical(t *testing.T) {
	a := newTestAnalytics(t)

	first, err := json.Marshal(a.Metrics(day(1), day(2)).DailyOrders())
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(a.Metrics(day(1), day(2)).DailyOrders())
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("the same window produced different daily orders payloads")
	}

	rfm1, err := json.Marshal(a.RFM(day(1), day(2)))
	if err != nil {
		t.Fatal(err)
	}
	rfm2, err := json.Marshal(a.RFM(day(1), day(2)))
	if err != nil {
		t.Fatal(err)
	}
	if string(rfm1) != string(rfm2) {
		t.Error("the same window produced different RFM payloads")
	}
}

func TestAnalytics_ConcurrentQueries(t *testing.T) {
	a := newTestAnalytics(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m := a.Metrics(day(1), day(2))
				if m.TotalOrders() != 3 {
					t.Errorf("TotalOrders() = %d, want 3", m.TotalOrders())
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestAnalytics_Stats(t *testing.T) {
	a := newTestAnalytics(t)
	a.SetGeolocations([]models.Geolocation{{CustomerUniqueID: "C1", Lat: -23.5, Lng: -46.6}})

	stats := a.Stats()
	if stats["order_rows"] != 4 {
		t.Errorf("order_rows = %v, want 4", stats["order_rows"])
	}
	if stats["geo_customers"] != 1 {
		t.Errorf("geo_customers = %v, want 1", stats["geo_customers"])
	}
	if stats["first_approved"] != "2018-01-01" {
		t.Errorf("first_approved = %v, want 2018-01-01", stats["first_approved"])
	}
	if stats["last_approved"] != "2018-01-02" {
		t.Errorf("last_approved = %v, want 2018-01-02", stats["last_approved"])
	}
}
