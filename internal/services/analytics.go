package services

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"olist-dashboard/internal/dataset"
	"olist-dashboard/internal/models"
)

// Analytics holds the loaded datasets and answers date-windowed queries.
// Every query recomputes from the in-memory rows; nothing derived is kept
// between requests.
type Analytics struct {
	mu     sync.RWMutex
	orders []models.Order // ascending by approval timestamp
	geo    []models.Geolocation
	logger *slog.Logger
}

func NewAnalytics() *Analytics {
	return &Analytics{
		orders: []models.Order{},
		geo:    []models.Geolocation{},
		logger: slog.Default(),
	}
}

// Load reads both datasets concurrently. Parsed orders are cached with gob
// so subsequent starts skip the CSV parse.
func (a *Analytics) Load(ctx context.Context, ordersPath, geoPath string) error {
	var (
		orders []models.Order
		geo    []models.Geolocation
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if cached, err := dataset.LoadOrderCache(ordersPath); err == nil {
			a.logger.Info("orders loaded from cache", "records", len(cached))
			orders = cached
			return nil
		}

		start := time.Now()
		loaded, err := dataset.LoadOrders(ctx, ordersPath)
		if err != nil {
			return err
		}
		orders = loaded
		a.logger.Info("orders csv processed", "records", len(loaded), "duration", time.Since(start))

		if err := dataset.SaveOrderCache(ordersPath, loaded); err != nil {
			a.logger.Warn("failed to save orders cache", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		loaded, err := dataset.LoadGeolocations(ctx, geoPath)
		if err != nil {
			return err
		}
		geo = loaded
		a.logger.Info("geolocation csv processed", "customers", len(loaded))
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	a.mu.Lock()
	a.orders = orders
	a.geo = geo
	a.mu.Unlock()
	return nil
}

// SetOrders replaces the order table, keeping the approval-time ordering
// invariant. Used by tests.
func (a *Analytics) SetOrders(orders []models.Order) {
	sorted := slices.Clone(orders)
	slices.SortStableFunc(sorted, func(x, y models.Order) int {
		return x.ApprovedAt.Compare(y.ApprovedAt)
	})

	a.mu.Lock()
	a.orders = sorted
	a.mu.Unlock()
}

func (a *Analytics) SetGeolocations(points []models.Geolocation) {
	a.mu.Lock()
	a.geo = slices.Clone(points)
	a.mu.Unlock()
}

func (a *Analytics) Geolocations() []models.Geolocation {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.geo
}

// ApprovalSpan returns the earliest and latest approval dates present,
// skipping rows that were never approved. Zero times mean no data.
func (a *Analytics) ApprovalSpan() (time.Time, time.Time) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var first, last time.Time
	for _, o := range a.orders {
		if o.ApprovedAt.IsZero() {
			continue
		}
		if first.IsZero() {
			first = o.ApprovedAt
		}
		last = o.ApprovedAt
	}
	return first, last
}

// Window returns the orders whose approval timestamp falls within the
// inclusive calendar-date range. Unapproved rows never match.
func (a *Analytics) Window(start, end time.Time) []models.Order {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	until := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)

	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]models.Order, 0, len(a.orders))
	for _, o := range a.orders {
		if o.ApprovedAt.IsZero() {
			continue
		}
		if o.ApprovedAt.Before(from) || !o.ApprovedAt.Before(until) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Metrics recomputes all order aggregates for the window.
func (a *Analytics) Metrics(start, end time.Time) *OrderMetrics {
	return NewOrderMetrics(a.Window(start, end))
}

// RFM recomputes the customer segmentation for the window.
func (a *Analytics) RFM(start, end time.Time) *RFMResult {
	return BuildRFM(a.Window(start, end))
}

// Stats reports dataset shape for the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	first, last := a.ApprovalSpan()

	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := map[string]any{
		"order_rows":    len(a.orders),
		"geo_customers": len(a.geo),
	}
	if !first.IsZero() {
		stats["first_approved"] = first.Format("2006-01-02")
		stats["last_approved"] = last.Format("2006-01-02")
	}
	return stats
}
