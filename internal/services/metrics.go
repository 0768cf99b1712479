package services

import (
	"slices"
	"strings"

	"olist-dashboard/internal/models"
)

const dateLayout = "2006-01-02"

// OrderMetrics exposes the descriptive aggregates for one filtered window.
// Everything is computed eagerly at construction from the supplied rows; the
// query methods just hand out the precomputed tables.
type OrderMetrics struct {
	daily      []models.DailyOrders
	spend      []models.DailySpend
	categories []models.CategoryCount // descending by count
	states     []models.StateCount    // descending by count
	statuses   []models.StatusCount   // descending by count

	distinctOrders int
	totalRevenue   float64
	totalItems     int
}

func NewOrderMetrics(orders []models.Order) *OrderMetrics {
	type dayAgg struct {
		orderIDs map[string]struct{}
		revenue  float64
	}

	days := make(map[string]*dayAgg)
	categories := make(map[string]int)
	statuses := make(map[string]int)
	stateCustomers := make(map[string]map[string]struct{})
	allOrders := make(map[string]struct{})

	m := &OrderMetrics{}

	for _, o := range orders {
		day := o.ApprovedAt.Format(dateLayout)
		if days[day] == nil {
			days[day] = &dayAgg{orderIDs: make(map[string]struct{})}
		}
		days[day].orderIDs[o.OrderID] = struct{}{}
		days[day].revenue += o.PaymentValue

		allOrders[o.OrderID] = struct{}{}
		m.totalRevenue += o.PaymentValue
		m.totalItems++

		categories[o.ProductCategory]++
		statuses[o.Status]++

		if stateCustomers[o.CustomerState] == nil {
			stateCustomers[o.CustomerState] = make(map[string]struct{})
		}
		stateCustomers[o.CustomerState][o.CustomerUniqueID] = struct{}{}
	}

	m.distinctOrders = len(allOrders)

	m.daily = make([]models.DailyOrders, 0, len(days))
	m.spend = make([]models.DailySpend, 0, len(days))
	for day, agg := range days {
		m.daily = append(m.daily, models.DailyOrders{
			Date:       day,
			OrderCount: len(agg.orderIDs),
			Revenue:    agg.revenue,
		})
		m.spend = append(m.spend, models.DailySpend{Date: day, TotalSpend: agg.revenue})
	}
	slices.SortFunc(m.daily, func(a, b models.DailyOrders) int {
		return strings.Compare(a.Date, b.Date)
	})
	slices.SortFunc(m.spend, func(a, b models.DailySpend) int {
		return strings.Compare(a.Date, b.Date)
	})

	m.categories = make([]models.CategoryCount, 0, len(categories))
	for category, count := range categories {
		m.categories = append(m.categories, models.CategoryCount{Category: category, ProductCount: count})
	}
	slices.SortFunc(m.categories, func(a, b models.CategoryCount) int {
		if a.ProductCount != b.ProductCount {
			return b.ProductCount - a.ProductCount
		}
		return strings.Compare(a.Category, b.Category)
	})

	m.states = make([]models.StateCount, 0, len(stateCustomers))
	for state, customers := range stateCustomers {
		m.states = append(m.states, models.StateCount{State: state, CustomerCount: len(customers)})
	}
	slices.SortFunc(m.states, func(a, b models.StateCount) int {
		if a.CustomerCount != b.CustomerCount {
			return b.CustomerCount - a.CustomerCount
		}
		return strings.Compare(a.State, b.State)
	})

	m.statuses = make([]models.StatusCount, 0, len(statuses))
	for status, count := range statuses {
		m.statuses = append(m.statuses, models.StatusCount{Status: status, Count: count})
	}
	slices.SortFunc(m.statuses, func(a, b models.StatusCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Status, b.Status)
	})

	return m
}

// DailyOrders returns per-day distinct order counts and revenue, ascending
// by date.
func (m *OrderMetrics) DailyOrders() []models.DailyOrders {
	return m.daily
}

// TotalOrders counts distinct order ids across the whole window.
func (m *OrderMetrics) TotalOrders() int {
	return m.distinctOrders
}

func (m *OrderMetrics) TotalRevenue() float64 {
	return m.totalRevenue
}

// SpendOverTime returns per-day total spend, ascending by date.
func (m *OrderMetrics) SpendOverTime() []models.DailySpend {
	return m.spend
}

func (m *OrderMetrics) TotalSpend() float64 {
	return m.totalRevenue
}

// AverageSpend is the mean of the per-day totals, zero for an empty window.
func (m *OrderMetrics) AverageSpend() float64 {
	if len(m.spend) == 0 {
		return 0
	}
	return m.totalRevenue / float64(len(m.spend))
}

// ItemsByCategory returns up to limit categories by item count. Descending
// order selects the best sellers, ascending the slowest. Ties have no
// guaranteed relative order beyond the name tie-break.
func (m *OrderMetrics) ItemsByCategory(limit int, ascending bool) []models.CategoryCount {
	result := m.categories
	if ascending {
		result = make([]models.CategoryCount, len(m.categories))
		for i, c := range m.categories {
			result[len(m.categories)-1-i] = c
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func (m *OrderMetrics) TotalItems() int {
	return m.totalItems
}

func (m *OrderMetrics) AverageItems() float64 {
	if len(m.categories) == 0 {
		return 0
	}
	return float64(m.totalItems) / float64(len(m.categories))
}

// CustomersByState returns distinct customer counts per state, descending.
func (m *OrderMetrics) CustomersByState() []models.StateCount {
	return m.states
}

// TopState is the mode state, empty for an empty window.
func (m *OrderMetrics) TopState() string {
	if len(m.states) == 0 {
		return ""
	}
	return m.states[0].State
}

// StatusDistribution returns order-status counts, descending.
func (m *OrderMetrics) StatusDistribution() []models.StatusCount {
	return m.statuses
}

// TopStatus is the mode status, empty for an empty window.
func (m *OrderMetrics) TopStatus() string {
	if len(m.statuses) == 0 {
		return ""
	}
	return m.statuses[0].Status
}
