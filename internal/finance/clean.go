package finance

import (
	"math"
	"time"
)

// tradingDay maps a bar timestamp to midnight UTC of the exchange-local date.
func tradingDay(ts, gmtOffset int64) time.Time {
	t := time.Unix(ts+gmtOffset, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// filterPositive removes points where close is missing (decoded as 0), negative or
// not finite, keeping timestamp and value arrays aligned.
func filterPositive(ts []int64, cl []float64) ([]int64, []float64) {
	if len(ts) != len(cl) {
		n := len(ts)
		if len(cl) < n {
			n = len(cl)
		}
		ts = ts[:n]
		cl = cl[:n]
	}
	outTs := make([]int64, 0, len(ts))
	outCl := make([]float64, 0, len(cl))
	for i := 0; i < len(ts); i++ {
		if cl[i] <= 0 || math.IsNaN(cl[i]) || math.IsInf(cl[i], 0) {
			continue
		}
		outTs = append(outTs, ts[i])
		outCl = append(outCl, cl[i])
	}
	return outTs, outCl
}

// dedupeDays keeps the last observation of each trading day. Yahoo appends a live bar
// for the current session that can share a date with the previous close.
func dedupeDays(days []time.Time, prices []float64) ([]time.Time, []float64) {
	outD := make([]time.Time, 0, len(days))
	outP := make([]float64, 0, len(prices))
	for i, d := range days {
		if n := len(outD); n > 0 && outD[n-1].Equal(d) {
			outP[n-1] = prices[i]
			continue
		}
		outD = append(outD, d)
		outP = append(outP, prices[i])
	}
	return outD, outP
}
