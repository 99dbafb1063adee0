// Package analysis runs the full pipeline behind a frontier request: fetch prices,
// align them, estimate return statistics and sample portfolios.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"frontierBot/internal/finance"
	"frontierBot/internal/frontier"
	"frontierBot/internal/metrics"
)

var ErrTooFewSymbols = errors.New("please enter at least two stock tickers")

// Fetcher loads aligned-by-order daily price series.
type Fetcher interface {
	FetchAll(ctx context.Context, symbols []string, start, end time.Time) ([]finance.PriceSeries, error)
}

type Request struct {
	Symbols      []string
	Start, End   time.Time
	Samples      int
	RiskFreeRate float64
	Seed         int64 // 0 seeds from the clock
	Progress     func(done, total int)
}

// Analysis is the outcome of one request.
type Analysis struct {
	Symbols []string
	Start   time.Time
	End     time.Time
	Days    int // aligned trading days
	Stats   *frontier.AssetReturnStats
	Result  *frontier.SimulationResult
}

type Runner struct {
	fetcher Fetcher
	log     zerolog.Logger
}

func NewRunner(f Fetcher, log zerolog.Logger) *Runner {
	return &Runner{fetcher: f, log: log}
}

func (r *Runner) Run(ctx context.Context, req Request) (*Analysis, error) {
	symbols := NormalizeSymbols(req.Symbols)
	if len(symbols) < 2 {
		return nil, ErrTooFewSymbols
	}

	series, err := r.fetcher.FetchAll(ctx, symbols, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	dates, cols, err := finance.Align(series)
	if err != nil {
		return nil, fmt.Errorf("failed to align prices: %w", err)
	}
	stats, err := frontier.EstimateStats(finance.Symbols(series), cols)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate returns: %w", err)
	}
	r.log.Info().Strs("symbols", symbols).Int("days", len(dates)).Int("returns", stats.Observations).Msg("return statistics ready")

	opts := frontier.Options{Progress: req.Progress}
	if req.Seed != 0 {
		opts.Rand = rand.New(rand.NewSource(req.Seed))
	}
	began := time.Now()
	res, err := frontier.Simulate(stats, req.Samples, req.RiskFreeRate, opts)
	took := time.Since(began)
	metrics.ObserveSimulation(req.Samples, took, err)
	if err != nil {
		return nil, fmt.Errorf("simulation failed: %w", err)
	}
	best := res.MaxSharpe()
	r.log.Info().Int("samples", res.Len()).Int("degenerate", res.Degenerate()).
		Float64("sharpe", best.Sharpe).Dur("took", took).Msg("simulation done")

	return &Analysis{
		Symbols: symbols,
		Start:   req.Start,
		End:     req.End,
		Days:    len(dates),
		Stats:   stats,
		Result:  res,
	}, nil
}

// NormalizeSymbols upper-cases, trims and de-duplicates symbols, keeping first-seen order.
func NormalizeSymbols(raw []string) []string {
	seen := map[string]struct{}{}
	syms := make([]string, 0, len(raw))
	for _, s := range raw {
		su := strings.ToUpper(strings.TrimSpace(s))
		if su == "" {
			continue
		}
		if _, ok := seen[su]; ok {
			continue
		}
		seen[su] = struct{}{}
		syms = append(syms, su)
	}
	return syms
}
