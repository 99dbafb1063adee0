package finance

import (
	"fmt"
	"sort"
	"time"
)

// Align inner-joins the series on trading day. The result has one price column per
// series, in input order, over the dates every series traded.
func Align(series []PriceSeries) ([]time.Time, [][]float64, error) {
	if len(series) == 0 {
		return nil, nil, fmt.Errorf("no series provided")
	}

	count := map[time.Time]int{}
	for _, s := range series {
		seen := map[time.Time]struct{}{}
		for _, d := range s.Dates {
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			count[d]++
		}
	}
	common := make([]time.Time, 0, len(count))
	for d, c := range count {
		if c == len(series) {
			common = append(common, d)
		}
	}
	if len(common) == 0 {
		return nil, nil, fmt.Errorf("no overlapping trading days: %w", ErrNoData)
	}
	sort.Slice(common, func(i, j int) bool { return common[i].Before(common[j]) })

	aligned := make([][]float64, len(series))
	for i, s := range series {
		byDay := make(map[time.Time]float64, len(s.Dates))
		for j, d := range s.Dates {
			if j < len(s.Prices) {
				byDay[d] = s.Prices[j]
			}
		}
		col := make([]float64, len(common))
		for k, d := range common {
			col[k] = byDay[d]
		}
		aligned[i] = col
	}
	return common, aligned, nil
}

// Symbols returns the symbol of each series in order.
func Symbols(series []PriceSeries) []string {
	out := make([]string, len(series))
	for i, s := range series {
		out[i] = s.Symbol
	}
	return out
}
