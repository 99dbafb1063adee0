package frontier

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var ErrInsufficientData = errors.New("insufficient price history")

// EstimateStats computes daily simple returns from aligned price columns (prices[i] is
// the adjusted close series of symbols[i]) and returns their mean vector and sample
// covariance. Rows where any asset has an undefined return are dropped.
func EstimateStats(symbols []string, prices [][]float64) (*AssetReturnStats, error) {
	n := len(prices)
	if n == 0 {
		return nil, fmt.Errorf("no price columns: %w", ErrInvalidInput)
	}
	if len(symbols) != n {
		return nil, fmt.Errorf("%d symbols for %d price columns: %w", len(symbols), n, ErrDimensionMismatch)
	}
	days := len(prices[0])
	for i, col := range prices {
		if len(col) != days {
			return nil, fmt.Errorf("%s has %d prices, expected %d: %w", symbols[i], len(col), days, ErrDimensionMismatch)
		}
	}

	rows := make([]float64, 0, days*n)
	obs := 0
	row := make([]float64, n)
	for t := 1; t < days; t++ {
		ok := true
		for i := 0; i < n; i++ {
			r := prices[i][t]/prices[i][t-1] - 1
			if !isFinite(r) {
				ok = false
				break
			}
			row[i] = r
		}
		if !ok {
			continue
		}
		rows = append(rows, row...)
		obs++
	}
	if obs < 2 {
		return nil, fmt.Errorf("%d usable daily returns: %w", obs, ErrInsufficientData)
	}

	returns := mat.NewDense(obs, n, rows)
	means := make([]float64, n)
	col := make([]float64, obs)
	for i := 0; i < n; i++ {
		mat.Col(col, i, returns)
		means[i] = stat.Mean(col, nil)
	}

	var sym mat.SymDense
	stat.CovarianceMatrix(&sym, returns, nil)
	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
		for j := range cov[i] {
			cov[i][j] = sym.At(i, j)
		}
	}

	return &AssetReturnStats{
		Symbols:      append([]string(nil), symbols...),
		MeanReturns:  means,
		Covariance:   cov,
		Observations: obs,
	}, nil
}
