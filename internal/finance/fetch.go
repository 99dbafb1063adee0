package finance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"frontierBot/internal/metrics"
)

var (
	ErrNoData     = errors.New("no data")
	ErrNotFound   = errors.New("symbol not found")
	errRetryLater = errors.New("temporary yahoo failure")
)

var defaultHosts = []string{"https://query1.finance.yahoo.com", "https://query2.finance.yahoo.com"}

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"

// Client fetches daily price history from Yahoo Finance.
type Client struct {
	http        *http.Client
	hosts       []string
	backoffs    []time.Duration
	limiter     *rate.Limiter
	concurrency int
	log         zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithHosts overrides the Yahoo base URLs, tried in order on every attempt.
func WithHosts(hosts ...string) Option { return func(c *Client) { c.hosts = hosts } }

func WithBackoffs(b ...time.Duration) Option { return func(c *Client) { c.backoffs = b } }

// WithRateLimit caps outgoing requests across all goroutines.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithConcurrency(n int) Option { return func(c *Client) { c.concurrency = n } }

func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

func NewClient(opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{Timeout: 20 * time.Second},
		hosts:       defaultHosts,
		backoffs:    []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(4), 2),
		concurrency: 4,
		log:         zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.concurrency < 1 {
		c.concurrency = 1
	}
	return c
}

// FetchDaily returns adjusted daily closes for symbol in [start, end).
func (c *Client) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return PriceSeries{}, errors.New("empty symbol")
	}
	if !end.After(start) {
		return PriceSeries{}, fmt.Errorf("end %s is not after start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	began := time.Now()
	yc, err := c.fetchChart(ctx, symbol, start, end)
	if err != nil {
		metrics.ObserveFetch(err)
		return PriceSeries{}, fmt.Errorf("%s: %w", symbol, err)
	}
	ps, err := seriesFromChart(symbol, yc)
	metrics.ObserveFetch(err)
	if err != nil {
		return PriceSeries{}, fmt.Errorf("%s: %w", symbol, err)
	}
	c.log.Debug().Str("symbol", symbol).Int("points", ps.Len()).Dur("took", time.Since(began)).Msg("fetched daily series")
	return ps, nil
}

// FetchAll fetches every symbol concurrently; results keep the order of symbols.
// The first failure cancels the remaining requests.
func (c *Client) FetchAll(ctx context.Context, symbols []string, start, end time.Time) ([]PriceSeries, error) {
	out := make([]PriceSeries, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			ps, err := c.FetchDaily(gctx, sym, start, end)
			if err != nil {
				return err
			}
			out[i] = ps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) fetchChart(ctx context.Context, symbol string, start, end time.Time) (*yahooChartResp, error) {
	var lastErr error
	for attempt := 0; attempt < len(c.backoffs)+1; attempt++ {
		for _, host := range c.hosts {
			yc, err := c.fetchOnce(ctx, host, symbol, start, end)
			if err == nil {
				return yc, nil
			}
			if !errors.Is(err, errRetryLater) {
				return nil, err
			}
			lastErr = err
			c.log.Debug().Err(err).Str("symbol", symbol).Int("attempt", attempt).Msg("yahoo request failed")
		}
		if attempt < len(c.backoffs) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoffs[attempt]):
			}
		}
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, host, symbol string, start, end time.Time) (*yahooChartResp, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&includePrePost=false&events=div,splits",
		host, url.PathEscape(symbol), start.Unix(), end.Unix())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", fmt.Sprintf("https://finance.yahoo.com/quote/%s/history", symbol))

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", errRetryLater, err)
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("%w: failed to read yahoo response: %v", errRetryLater, readErr)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || strings.HasPrefix(string(body), "Edge: Too Many Requests"):
		return nil, fmt.Errorf("%w: yahoo %s returned 429", errRetryLater, host)
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: yahoo %s returned %d: %s", errRetryLater, host, resp.StatusCode, preview(body))
	case strings.HasPrefix(string(body), "<") || strings.HasPrefix(string(body), "Edge:"):
		return nil, fmt.Errorf("%w: yahoo returned non-json body: %s", errRetryLater, preview(body))
	}

	var yc yahooChartResp
	if err := json.Unmarshal(body, &yc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse yahoo json: %v; body: %s", errRetryLater, err, preview(body))
	}
	return &yc, nil
}

func seriesFromChart(symbol string, yc *yahooChartResp) (PriceSeries, error) {
	if yc.Chart.Error != nil {
		if yc.Chart.Error.Code == "Not Found" {
			return PriceSeries{}, ErrNotFound
		}
		return PriceSeries{}, fmt.Errorf("yahoo error %s: %s", yc.Chart.Error.Code, yc.Chart.Error.Description)
	}
	if len(yc.Chart.Result) == 0 {
		return PriceSeries{}, ErrNoData
	}
	r := yc.Chart.Result[0]

	var closes []float64
	if len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) > 0 {
		closes = r.Indicators.AdjClose[0].AdjClose
	} else if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}
	ts, cl := filterPositive(r.Timestamp, closes)
	if len(ts) == 0 {
		return PriceSeries{}, ErrNoData
	}

	days := make([]time.Time, len(ts))
	for i, t := range ts {
		days[i] = tradingDay(t, r.Meta.GmtOffset)
	}
	days, cl = dedupeDays(days, cl)
	return PriceSeries{Symbol: symbol, Currency: r.Meta.Currency, Dates: days, Prices: cl}, nil
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
