package frontier

import "slices"

// AssetReturnStats holds the daily return statistics the sampler works from.
type AssetReturnStats struct {
	Symbols      []string    // Asset identifiers, aligned with MeanReturns
	MeanReturns  []float64   // Mean daily simple return per asset
	Covariance   [][]float64 // Daily sample covariance, N x N
	Observations int         // Number of daily return rows used for estimation
}

// NumAssets returns the number of assets described by the stats.
func (s *AssetReturnStats) NumAssets() int {
	return len(s.MeanReturns)
}

// PortfolioSample is one randomly weighted, fully invested portfolio.
type PortfolioSample struct {
	Weights    []float64 // Non-negative, sums to 1
	Return     float64   // Annualized expected return
	Volatility float64   // Annualized volatility
	Sharpe     float64   // NaN when volatility is zero
}

// Valid reports whether the sample has a defined Sharpe ratio.
func (p PortfolioSample) Valid() bool {
	return isFinite(p.Sharpe)
}

// Point is a (volatility, return) coordinate.
type Point struct {
	Volatility float64
	Return     float64
}

// SimulationResult is the sampled population and its best portfolios.
// It is not modified after Simulate returns it.
type SimulationResult struct {
	samples    []PortfolioSample
	maxSharpe  int
	minVol     int
	riskFree   float64
	degenerate int
}

// Len returns the number of samples.
func (r *SimulationResult) Len() int { return len(r.samples) }

// Sample returns a copy of the i-th sample.
func (r *SimulationResult) Sample(i int) PortfolioSample {
	s := r.samples[i]
	s.Weights = slices.Clone(s.Weights)
	return s
}

// Samples returns a copy of all samples in generation order.
func (r *SimulationResult) Samples() []PortfolioSample {
	out := make([]PortfolioSample, len(r.samples))
	for i := range r.samples {
		out[i] = r.Sample(i)
	}
	return out
}

// MaxSharpeIndex returns the index of the sample with the highest Sharpe ratio.
func (r *SimulationResult) MaxSharpeIndex() int { return r.maxSharpe }

// MaxSharpe returns a copy of the highest Sharpe sample.
func (r *SimulationResult) MaxSharpe() PortfolioSample { return r.Sample(r.maxSharpe) }

// MinVolatilityIndex returns the index of the lowest volatility valid sample.
func (r *SimulationResult) MinVolatilityIndex() int { return r.minVol }

// MinVolatility returns a copy of the lowest volatility valid sample.
func (r *SimulationResult) MinVolatility() PortfolioSample { return r.Sample(r.minVol) }

// RiskFreeRate returns the annual risk-free rate used for scoring.
func (r *SimulationResult) RiskFreeRate() float64 { return r.riskFree }

// Degenerate returns how many samples had zero volatility and were skipped for selection.
func (r *SimulationResult) Degenerate() int { return r.degenerate }
