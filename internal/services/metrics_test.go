package services

import (
	"strconv"
	"testing"
	"time"

	"olist-dashboard/internal/models"
)

func day(d int) time.Time {
	return time.Date(2018, 1, d, 10, 30, 0, 0, time.UTC)
}

func testOrders() []models.Order {
	return []models.Order{
		{
			OrderID:          "O1",
			CustomerUniqueID: "C1",
			CustomerState:    "SP",
			Status:           "delivered",
			PurchasedAt:      day(1),
			ApprovedAt:       day(1),
			PaymentValue:     100.0,
			ProductCategory:  "beleza_saude",
		},
		{
			// Second item of the same order: must not double-count O1.
			OrderID:          "O1",
			CustomerUniqueID: "C1",
			CustomerState:    "SP",
			Status:           "delivered",
			PurchasedAt:      day(1),
			ApprovedAt:       day(1),
			PaymentValue:     50.0,
			ProductCategory:  "cama_mesa_banho",
		},
		{
			OrderID:          "O2",
			CustomerUniqueID: "C2",
			CustomerState:    "SP",
			Status:           "delivered",
			PurchasedAt:      day(2),
			ApprovedAt:       day(2),
			PaymentValue:     30.0,
			ProductCategory:  "beleza_saude",
		},
		{
			OrderID:          "O3",
			CustomerUniqueID: "C3",
			CustomerState:    "RJ",
			Status:           "shipped",
			PurchasedAt:      day(2),
			ApprovedAt:       day(2),
			PaymentValue:     20.0,
			ProductCategory:  "esporte_lazer",
		},
	}
}

func TestOrderMetrics_DailyOrders(t *testing.T) {
	m := NewOrderMetrics(testOrders())

	daily := m.DailyOrders()
	if len(daily) != 2 {
		t.Fatalf("expected 2 days, got %d", len(daily))
	}

	if daily[0].Date != "2018-01-01" || daily[1].Date != "2018-01-02" {
		t.Errorf("daily orders not ascending by date: %+v", daily)
	}

	// Day 1 has two rows but one distinct order.
	if daily[0].OrderCount != 1 {
		t.Errorf("expected 1 distinct order on day 1, got %d", daily[0].OrderCount)
	}
	if daily[0].Revenue != 150.0 {
		t.Errorf("expected day 1 revenue 150, got %f", daily[0].Revenue)
	}
	if daily[1].OrderCount != 2 {
		t.Errorf("expected 2 distinct orders on day 2, got %d", daily[1].OrderCount)
	}
}

func TestOrderMetrics_CountInvariants(t *testing.T) {
	orders := testOrders()
	m := NewOrderMetrics(orders)

	distinct := make(map[string]struct{})
	var totalPayment float64
	for _, o := range orders {
		distinct[o.OrderID] = struct{}{}
		totalPayment += o.PaymentValue
	}

	var sumCounts int
	var sumRevenue float64
	for _, d := range m.DailyOrders() {
		sumCounts += d.OrderCount
		sumRevenue += d.Revenue
	}

	if sumCounts != len(distinct) {
		t.Errorf("sum of daily order counts = %d, want %d distinct orders", sumCounts, len(distinct))
	}
	if sumRevenue != totalPayment {
		t.Errorf("sum of daily revenue = %f, want %f", sumRevenue, totalPayment)
	}
	if m.TotalOrders() != len(distinct) {
		t.Errorf("TotalOrders() = %d, want %d", m.TotalOrders(), len(distinct))
	}
}

func TestOrderMetrics_SpendOverTime(t *testing.T) {
	m := NewOrderMetrics(testOrders())

	spend := m.SpendOverTime()
	if len(spend) != 2 {
		t.Fatalf("expected 2 days of spend, got %d", len(spend))
	}
	if spend[0].TotalSpend != 150.0 || spend[1].TotalSpend != 50.0 {
		t.Errorf("unexpected daily spend: %+v", spend)
	}
	if m.TotalSpend() != 200.0 {
		t.Errorf("TotalSpend() = %f, want 200", m.TotalSpend())
	}
	if m.AverageSpend() != 100.0 {
		t.Errorf("AverageSpend() = %f, want 100 (mean of daily totals)", m.AverageSpend())
	}
}

func TestOrderMetrics_ItemsByCategory(t *testing.T) {
	m := NewOrderMetrics(testOrders())

	top := m.ItemsByCategory(2, false)
	if len(top) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(top))
	}
	if top[0].Category != "beleza_saude" || top[0].ProductCount != 2 {
		t.Errorf("expected beleza_saude with 2 items first, got %+v", top[0])
	}

	bottom := m.ItemsByCategory(2, true)
	if bottom[0].ProductCount > bottom[1].ProductCount {
		t.Errorf("ascending selection should start with the smallest count: %+v", bottom)
	}

	if m.TotalItems() != 4 {
		t.Errorf("TotalItems() = %d, want 4", m.TotalItems())
	}
}

func TestOrderMetrics_CustomersByState(t *testing.T) {
	m := NewOrderMetrics(testOrders())

	states := m.CustomersByState()
	if len(states) != 2 {
		t.Fatalf("expected 2 states, got %d", len(states))
	}
	if states[0].State != "SP" || states[0].CustomerCount != 2 {
		t.Errorf("expected SP with 2 customers first, got %+v", states[0])
	}
	if states[1].State != "RJ" || states[1].CustomerCount != 1 {
		t.Errorf("expected RJ with 1 customer, got %+v", states[1])
	}
	if m.TopState() != "SP" {
		t.Errorf("TopState() = %q, want SP", m.TopState())
	}
}

func TestOrderMetrics_StatusDistribution(t *testing.T) {
	m := NewOrderMetrics(testOrders())

	statuses := m.StatusDistribution()
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Status != "delivered" || statuses[0].Count != 3 {
		t.Errorf("expected delivered with 3 rows first, got %+v", statuses[0])
	}
	if m.TopStatus() != "delivered" {
		t.Errorf("TopStatus() = %q, want delivered", m.TopStatus())
	}
}

func TestOrderMetrics_Empty(t *testing.T) {
	m := NewOrderMetrics(nil)

	if len(m.DailyOrders()) != 0 {
		t.Error("DailyOrders() should be empty")
	}
	if len(m.SpendOverTime()) != 0 {
		t.Error("SpendOverTime() should be empty")
	}
	if len(m.ItemsByCategory(5, false)) != 0 {
		t.Error("ItemsByCategory() should be empty")
	}
	if len(m.CustomersByState()) != 0 {
		t.Error("CustomersByState() should be empty")
	}
	if len(m.StatusDistribution()) != 0 {
		t.Error("StatusDistribution() should be empty")
	}
	if m.TotalOrders() != 0 || m.TotalRevenue() != 0 || m.AverageSpend() != 0 {
		t.Error("scalar aggregates should be zero for an empty window")
	}
	if m.TopState() != "" || m.TopStatus() != "" {
		t.Error("modes should be empty for an empty window")
	}
}

func BenchmarkNewOrderMetrics(b *testing.B) {
	orders := make([]models.Order, 0, 5000)
	states := []string{"SP", "RJ", "MG", "RS", "BA"}
	for i := 0; i < 5000; i++ {
		orders = append(orders, models.Order{
			OrderID:          "O" + strconv.Itoa(i%500),
			CustomerUniqueID: "C" + strconv.Itoa(i%300),
			CustomerState:    states[i%len(states)],
			Status:           "delivered",
			ApprovedAt:       day(1 + i%28),
			PaymentValue:     float64(i%200) + 0.5,
			ProductCategory:  "cat" + strconv.Itoa(i%20),
		})
	}

	b.ResetTimer()
	for b.Loop() {
		_ = NewOrderMetrics(orders)
	}
}
