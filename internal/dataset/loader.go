package dataset

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"olist-dashboard/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// Column names the loaders require. Validation happens here, at the
// boundary, so a schema mismatch surfaces before any aggregation runs.
var (
	orderColumns = []string{
		"order_id",
		"customer_id",
		"customer_unique_id",
		"customer_state",
		"order_status",
		"order_purchase_timestamp",
		"order_approved_at",
		"order_delivered_carrier_date",
		"order_delivered_customer_date",
		"order_estimated_delivery_date",
		"payment_value",
		"product_category_name",
		"price",
		"freight_value",
	}

	geoColumns = []string{
		"customer_unique_id",
		"geolocation_lat",
		"geolocation_lng",
	}
)

// MissingColumnError reports a required column absent from an input file.
type MissingColumnError struct {
	Dataset string
	Column  string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s dataset: missing column %q", e.Dataset, e.Column)
}

func readFrame(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read csv: %w", df.Err)
	}
	return df, nil
}

func columnIndex(dataset string, names []string, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	for i, name := range names {
		idx[strings.TrimSpace(name)] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, &MissingColumnError{Dataset: dataset, Column: col}
		}
	}
	return idx, nil
}

// LoadOrders reads the pre-joined order CSV into typed records, sorted
// ascending by approval timestamp. Rows with unparsable numeric cells are
// skipped; blank timestamps parse to the zero time.
func LoadOrders(ctx context.Context, path string) ([]models.Order, error) {
	df, err := readFrame(path)
	if err != nil {
		return nil, err
	}

	records := df.Records()
	if len(records) == 0 {
		return nil, fmt.Errorf("orders dataset: empty file")
	}

	idx, err := columnIndex("orders", records[0], orderColumns)
	if err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(records)-1)
	for i, row := range records[1:] {
		if i%10000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		order, ok := parseOrder(row, idx)
		if !ok {
			continue
		}
		orders = append(orders, order)
	}

	slices.SortStableFunc(orders, func(a, b models.Order) int {
		return a.ApprovedAt.Compare(b.ApprovedAt)
	})
	return orders, nil
}

func parseOrder(row []string, idx map[string]int) (models.Order, bool) {
	payment, err := parseFloat(row[idx["payment_value"]])
	if err != nil {
		return models.Order{}, false
	}
	price, err := parseFloat(row[idx["price"]])
	if err != nil {
		return models.Order{}, false
	}
	freight, err := parseFloat(row[idx["freight_value"]])
	if err != nil {
		return models.Order{}, false
	}

	return models.Order{
		OrderID:           strings.TrimSpace(row[idx["order_id"]]),
		CustomerID:        strings.TrimSpace(row[idx["customer_id"]]),
		CustomerUniqueID:  strings.TrimSpace(row[idx["customer_unique_id"]]),
		CustomerState:     strings.TrimSpace(row[idx["customer_state"]]),
		Status:            strings.TrimSpace(row[idx["order_status"]]),
		PurchasedAt:       parseTimestamp(row[idx["order_purchase_timestamp"]]),
		ApprovedAt:        parseTimestamp(row[idx["order_approved_at"]]),
		CarrierHandoffAt:  parseTimestamp(row[idx["order_delivered_carrier_date"]]),
		DeliveredAt:       parseTimestamp(row[idx["order_delivered_customer_date"]]),
		EstimatedDelivery: parseTimestamp(row[idx["order_estimated_delivery_date"]]),
		PaymentValue:      payment,
		ProductCategory:   strings.TrimSpace(row[idx["product_category_name"]]),
		Price:             price,
		FreightValue:      freight,
	}, true
}

// LoadGeolocations reads the geolocation CSV and collapses duplicates to one
// row per customer unique id, first occurrence winning.
func LoadGeolocations(ctx context.Context, path string) ([]models.Geolocation, error) {
	df, err := readFrame(path)
	if err != nil {
		return nil, err
	}

	records := df.Records()
	if len(records) == 0 {
		return nil, fmt.Errorf("geolocation dataset: empty file")
	}

	idx, err := columnIndex("geolocation", records[0], geoColumns)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	points := make([]models.Geolocation, 0, len(records)-1)
	for i, row := range records[1:] {
		if i%10000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		id := strings.TrimSpace(row[idx["customer_unique_id"]])
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}

		lat, err := parseFloat(row[idx["geolocation_lat"]])
		if err != nil {
			continue
		}
		lng, err := parseFloat(row[idx["geolocation_lng"]])
		if err != nil {
			continue
		}

		seen[id] = struct{}{}
		points = append(points, models.Geolocation{CustomerUniqueID: id, Lat: lat, Lng: lng})
	}

	return points, nil
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "NaN" {
		return time.Time{}
	}
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "NaN" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
