package frontier

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TradingDays is the annualization factor for daily statistics.
const TradingDays = 252.0

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNoValidSample     = errors.New("no sample with positive volatility")
)

// Options tunes a simulation run. The zero value is usable.
type Options struct {
	// Rand is the weight source. A time-seeded source is used when nil.
	Rand *rand.Rand
	// Progress, when set, is called roughly every 1% of samples and once at completion.
	Progress func(done, total int)
}

// Simulate draws count random long-only portfolios over the assets in stats and scores
// each by (return - riskFree) / volatility, all annualized with TradingDays.
func Simulate(stats *AssetReturnStats, count int, riskFree float64, opts Options) (*SimulationResult, error) {
	cov, err := validate(stats, count, riskFree)
	if err != nil {
		return nil, err
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	step := count / 100
	if step < 1 {
		step = 1
	}

	n := stats.NumAssets()
	res := &SimulationResult{
		samples:   make([]PortfolioSample, count),
		maxSharpe: -1,
		minVol:    -1,
		riskFree:  riskFree,
	}
	for i := 0; i < count; i++ {
		w := randomWeights(n, rng)
		ret, vol := performance(w, stats.MeanReturns, cov)
		sharpe := math.NaN()
		if vol > 0 {
			sharpe = (ret - riskFree) / vol
		}
		res.samples[i] = PortfolioSample{Weights: w, Return: ret, Volatility: vol, Sharpe: sharpe}

		if !isFinite(sharpe) {
			res.degenerate++
		} else {
			if res.maxSharpe < 0 || sharpe > res.samples[res.maxSharpe].Sharpe {
				res.maxSharpe = i
			}
			if res.minVol < 0 || vol < res.samples[res.minVol].Volatility {
				res.minVol = i
			}
		}

		if opts.Progress != nil && ((i+1)%step == 0 || i+1 == count) {
			opts.Progress(i+1, count)
		}
	}

	if res.maxSharpe < 0 {
		return nil, fmt.Errorf("%d samples: %w", count, ErrNoValidSample)
	}
	return res, nil
}

func performance(w, mean []float64, cov *mat.SymDense) (float64, float64) {
	ret := floats.Dot(w, mean) * TradingDays
	wv := mat.NewVecDense(len(w), w)
	variance := mat.Inner(wv, cov, wv)
	if variance < 0 {
		// rounding on near-singular matrices
		variance = 0
	}
	return ret, math.Sqrt(variance) * math.Sqrt(TradingDays)
}

// randomWeights draws n uniforms in [0,1) and normalizes them to sum to 1.
func randomWeights(n int, rng *rand.Rand) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = rng.Float64()
	}
	sum := floats.Sum(w)
	if sum == 0 {
		for i := range w {
			w[i] = 1 / float64(n)
		}
		return w
	}
	floats.Scale(1/sum, w)
	return w
}

func validate(stats *AssetReturnStats, count int, riskFree float64) (*mat.SymDense, error) {
	if stats == nil {
		return nil, fmt.Errorf("nil stats: %w", ErrInvalidInput)
	}
	n := stats.NumAssets()
	if n == 0 {
		return nil, fmt.Errorf("no assets: %w", ErrInvalidInput)
	}
	if count < 1 {
		return nil, fmt.Errorf("sample count %d: %w", count, ErrInvalidInput)
	}
	if !isFinite(riskFree) {
		return nil, fmt.Errorf("risk-free rate %v: %w", riskFree, ErrInvalidInput)
	}
	if len(stats.Symbols) != 0 && len(stats.Symbols) != n {
		return nil, fmt.Errorf("%d symbols for %d mean returns: %w", len(stats.Symbols), n, ErrDimensionMismatch)
	}
	for i, m := range stats.MeanReturns {
		if !isFinite(m) {
			return nil, fmt.Errorf("mean return %d is %v: %w", i, m, ErrInvalidInput)
		}
	}
	return symDense(stats.Covariance, n)
}

func symDense(covariance [][]float64, n int) (*mat.SymDense, error) {
	if len(covariance) != n {
		return nil, fmt.Errorf("covariance has %d rows, want %d: %w", len(covariance), n, ErrDimensionMismatch)
	}
	for i, row := range covariance {
		if len(row) != n {
			return nil, fmt.Errorf("covariance row %d has %d columns, want %d: %w", i, len(row), n, ErrDimensionMismatch)
		}
	}
	data := make([]float64, 0, n*n)
	for i, row := range covariance {
		for j, v := range row {
			if !isFinite(v) {
				return nil, fmt.Errorf("covariance[%d][%d] is %v: %w", i, j, v, ErrInvalidInput)
			}
			t := covariance[j][i]
			if math.Abs(v-t) > 1e-12*math.Max(1, math.Max(math.Abs(v), math.Abs(t))) {
				return nil, fmt.Errorf("covariance not symmetric at (%d,%d): %w", i, j, ErrInvalidInput)
			}
		}
		data = append(data, row...)
	}
	return mat.NewSymDense(n, data), nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
