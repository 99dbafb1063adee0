package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"frontierBot/internal/analysis"
	"frontierBot/internal/config"
	"frontierBot/internal/finance"
	"frontierBot/internal/logging"
	"frontierBot/internal/report"
)

var (
	startDate string
	endDate   string
	samples   int
	riskFree  float64
	seed      int64
	outDir    string
	cacheDir  string

	runCmd = &cobra.Command{
		Use:   "run SYMBOL SYMBOL [SYMBOL...]",
		Short: "Sample portfolios and write the frontier report",
		Long:  `Fetches daily adjusted closes, samples random portfolios, prints the optimal weights and writes frontier.png, cml.png and weights.png`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(cmd, args)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, req)
		},
	}
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&startDate, "start", "", "first day, YYYY-MM-DD (default simulation.start_date)")
	runCmd.Flags().StringVar(&endDate, "end", "", "last day, YYYY-MM-DD (default simulation.end_date)")
	runCmd.Flags().IntVarP(&samples, "samples", "n", 0, "portfolios to sample (default simulation.samples)")
	runCmd.Flags().Float64Var(&riskFree, "risk-free", 0, "annual risk-free rate (default simulation.risk_free_rate)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 seeds from the clock")
	runCmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for the PNG files")
	runCmd.Flags().StringVar(&cacheDir, "cache", "", "disk HTTP cache directory (default yahoo.cache_dir)")
}

func buildRequest(cmd *cobra.Command, args []string) (analysis.Request, error) {
	start, end, err := cfg.Simulation.Range()
	if err != nil {
		return analysis.Request{}, err
	}
	if startDate != "" {
		if start, err = time.Parse(config.DateLayout, startDate); err != nil {
			return analysis.Request{}, fmt.Errorf("invalid --start: %w", err)
		}
	}
	if endDate != "" {
		if end, err = time.Parse(config.DateLayout, endDate); err != nil {
			return analysis.Request{}, fmt.Errorf("invalid --end: %w", err)
		}
	}
	if !end.After(start) {
		return analysis.Request{}, fmt.Errorf("end date must be after start date")
	}
	req := analysis.Request{
		Symbols:      args,
		Start:        start,
		End:          end,
		Samples:      cfg.Simulation.Samples,
		RiskFreeRate: cfg.Simulation.RiskFreeRate,
		Seed:         seed,
	}
	if cmd.Flags().Changed("samples") {
		req.Samples = samples
	}
	if cmd.Flags().Changed("risk-free") {
		req.RiskFreeRate = riskFree
	}
	last := -1
	req.Progress = func(done, total int) {
		if pct := done * 100 / total; pct/10 != last {
			last = pct / 10
			log.Debug().Int("done", done).Int("total", total).Msgf("sampling %d%%", pct)
		}
	}
	return req, nil
}

func run(ctx context.Context, req analysis.Request) error {
	timeout := cfg.Yahoo.GetTimeout()
	httpClient := &http.Client{Timeout: timeout}
	if cacheDir == "" {
		cacheDir = cfg.Yahoo.CacheDir
	}
	if cacheDir != "" {
		c, err := finance.CacheClient(cacheDir, 24*time.Hour, timeout)
		if err != nil {
			return err
		}
		httpClient = c
	}
	prices := finance.NewClient(
		finance.WithHTTPClient(httpClient),
		finance.WithRateLimit(cfg.Yahoo.RequestsPerSecond, cfg.Yahoo.Burst),
		finance.WithConcurrency(cfg.Yahoo.Concurrency),
		finance.WithLogger(logging.Component(log, "yahoo")),
	)

	a, err := analysis.NewRunner(prices, logging.Component(log, "analysis")).Run(ctx, req)
	if err != nil {
		return err
	}
	fmt.Println(report.WeightsText(a))

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	renders := []struct {
		name   string
		render func(*analysis.Analysis) ([]byte, error)
	}{
		{"frontier.png", report.RenderFrontier},
		{"cml.png", report.RenderCML},
		{"weights.png", report.RenderWeightsPie},
	}
	for _, r := range renders {
		img, err := r.render(a)
		if err != nil {
			return fmt.Errorf("%s: %w", r.name, err)
		}
		path := filepath.Join(outDir, r.name)
		if err := os.WriteFile(path, img, 0o644); err != nil {
			return err
		}
		log.Info().Str("file", path).Int("bytes", len(img)).Msg("wrote chart")
	}
	return nil
}
