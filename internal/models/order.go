package models

import "time"

// Order is one row of the pre-joined Olist dataset: one line item per row,
// so the same OrderID can appear multiple times.
type Order struct {
	OrderID           string
	CustomerID        string
	CustomerUniqueID  string
	CustomerState     string
	Status            string
	PurchasedAt       time.Time
	ApprovedAt        time.Time
	CarrierHandoffAt  time.Time
	DeliveredAt       time.Time
	EstimatedDelivery time.Time
	PaymentValue      float64
	ProductCategory   string
	Price             float64
	FreightValue      float64
}

// Geolocation is one deduplicated customer position.
type Geolocation struct {
	CustomerUniqueID string  `json:"customer_unique_id"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
}

type DailyOrders struct {
	Date       string  `json:"date"`
	OrderCount int     `json:"order_count"`
	Revenue    float64 `json:"revenue"`
}

type DailySpend struct {
	Date       string  `json:"date"`
	TotalSpend float64 `json:"total_spend"`
}

type CategoryCount struct {
	Category     string `json:"product_category_name"`
	ProductCount int    `json:"product_count"`
}

type StateCount struct {
	State         string `json:"customer_state"`
	CustomerCount int    `json:"customer_count"`
}

type StatusCount struct {
	Status string `json:"order_status"`
	Count  int    `json:"count"`
}

// RFMRecord is one customer's recency/frequency/monetary profile with
// quartile scores attached.
type RFMRecord struct {
	CustomerUniqueID string  `json:"customer_unique_id"`
	Recency          int     `json:"recency"`
	Frequency        int     `json:"frequency"`
	Monetary         float64 `json:"monetary"`
	RScore           int     `json:"r_score"`
	FScore           int     `json:"f_score"`
	MScore           int     `json:"m_score"`
	Segment          string  `json:"rfm_segment"`
	Score            int     `json:"rfm_score"`
}

type SegmentCount struct {
	Segment string `json:"rfm_segment"`
	Count   int    `json:"count"`
}
