package services

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"olist-dashboard/internal/models"
)

// RFMResult is the per-customer segmentation plus its summary tables.
type RFMResult struct {
	Customers    []models.RFMRecord    `json:"customers"`
	Segments     []models.SegmentCount `json:"segments"`
	AvgRecency   float64               `json:"avg_recency"`
	AvgFrequency float64               `json:"avg_frequency"`
	AvgMonetary  float64               `json:"avg_monetary"`
}

// BuildRFM derives recency/frequency/monetary per unique customer and scores
// each dimension into quartiles. The snapshot date is the latest purchase
// timestamp in the input plus one day, computed once for the whole table.
//
// Distributions too flat to yield four distinct quartile edges fall back to
// fewer bins: duplicate edges are dropped and scores come from the edges
// that remain, so a repeated value never straddles two bins.
func BuildRFM(orders []models.Order) *RFMResult {
	type customerAgg struct {
		lastPurchase time.Time
		frequency    int
		monetary     float64
	}

	byCustomer := make(map[string]*customerAgg)
	var snapshotBase time.Time

	for _, o := range orders {
		if o.PurchasedAt.IsZero() || o.CustomerUniqueID == "" {
			continue
		}
		agg := byCustomer[o.CustomerUniqueID]
		if agg == nil {
			agg = &customerAgg{}
			byCustomer[o.CustomerUniqueID] = agg
		}
		if o.PurchasedAt.After(agg.lastPurchase) {
			agg.lastPurchase = o.PurchasedAt
		}
		agg.frequency++
		agg.monetary += o.PaymentValue

		if o.PurchasedAt.After(snapshotBase) {
			snapshotBase = o.PurchasedAt
		}
	}

	result := &RFMResult{
		Customers: []models.RFMRecord{},
		Segments:  []models.SegmentCount{},
	}
	if len(byCustomer) == 0 {
		return result
	}

	snapshot := snapshotBase.Add(24 * time.Hour)

	ids := make([]string, 0, len(byCustomer))
	for id := range byCustomer {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	records := make([]models.RFMRecord, len(ids))
	recency := make([]float64, len(ids))
	frequency := make([]float64, len(ids))
	monetary := make([]float64, len(ids))

	for i, id := range ids {
		agg := byCustomer[id]
		days := int(snapshot.Sub(agg.lastPurchase).Hours() / 24)
		records[i] = models.RFMRecord{
			CustomerUniqueID: id,
			Recency:          days,
			Frequency:        agg.frequency,
			Monetary:         agg.monetary,
		}
		recency[i] = float64(days)
		frequency[i] = float64(agg.frequency)
		monetary[i] = agg.monetary

		result.AvgRecency += recency[i]
		result.AvgFrequency += frequency[i]
		result.AvgMonetary += monetary[i]
	}
	n := float64(len(ids))
	result.AvgRecency /= n
	result.AvgFrequency /= n
	result.AvgMonetary /= n

	rEdges := quartileEdges(recency)
	// Frequencies repeat heavily, so they are rank-transformed before
	// cutting to keep the bin edges well defined.
	fRanks := firstRanks(frequency)
	fEdges := quartileEdges(fRanks)
	mEdges := quartileEdges(monetary)

	segments := make(map[string]int)
	for i := range records {
		rBin := bucket(recency[i], rEdges)
		// Recent customers score high: reverse the bin index.
		records[i].RScore = len(rEdges) + 2 - rBin
		records[i].FScore = bucket(fRanks[i], fEdges)
		records[i].MScore = bucket(monetary[i], mEdges)
		records[i].Segment = fmt.Sprintf("%d%d%d", records[i].RScore, records[i].FScore, records[i].MScore)
		records[i].Score = records[i].RScore + records[i].FScore + records[i].MScore
		segments[records[i].Segment]++
	}

	result.Customers = records
	result.Segments = make([]models.SegmentCount, 0, len(segments))
	for segment, count := range segments {
		result.Segments = append(result.Segments, models.SegmentCount{Segment: segment, Count: count})
	}
	slices.SortFunc(result.Segments, func(a, b models.SegmentCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Segment, b.Segment)
	})

	return result
}

// quartileEdges returns the strictly increasing interior quartile edges
// (25th, 50th, 75th percentiles) of values. Duplicate edges collapse, which
// shrinks the bin count for degenerate distributions.
func quartileEdges(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	edges := make([]float64, 0, 3)
	for _, q := range []float64{0.25, 0.5, 0.75} {
		edge := stat.Quantile(q, stat.Empirical, sorted, nil)
		if len(edges) == 0 || edge > edges[len(edges)-1] {
			edges = append(edges, edge)
		}
	}
	// An edge at the maximum would leave the top bin empty.
	for len(edges) > 0 && edges[len(edges)-1] >= sorted[len(sorted)-1] {
		edges = edges[:len(edges)-1]
	}
	return edges
}

// bucket assigns v to a 1-based bin using right-closed intervals, matching
// quantile-cut semantics: values at an edge belong to the lower bin.
func bucket(v float64, edges []float64) int {
	bin := 1
	for _, edge := range edges {
		if v > edge {
			bin++
		}
	}
	return bin
}

// firstRanks maps each value to its 1-based rank, ties broken by input
// position, so every rank is distinct.
func firstRanks(values []float64) []float64 {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case values[a] < values[b]:
			return -1
		case values[a] > values[b]:
			return 1
		default:
			return a - b
		}
	})

	ranks := make([]float64, len(values))
	for pos, idx := range order {
		ranks[idx] = float64(pos + 1)
	}
	return ranks
}
