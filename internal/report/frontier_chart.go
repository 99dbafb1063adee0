package report

import (
	"bytes"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"frontierBot/internal/analysis"
	"frontierBot/internal/frontier"
)

var (
	optimumColor = drawing.ColorFromHex("dc2626") // red-600
	cmlColor     = drawing.ColorFromHex("ef4444") // red-500
)

// ylGnBu is a light-to-dark yellow/green/blue ramp used to color samples by Sharpe.
var ylGnBu = []drawing.Color{
	drawing.ColorFromHex("ffffd9"),
	drawing.ColorFromHex("c7e9b4"),
	drawing.ColorFromHex("41b6c4"),
	drawing.ColorFromHex("225ea8"),
	drawing.ColorFromHex("081d58"),
}

// rampColor maps v in [lo, hi] onto the ramp by linear interpolation.
func rampColor(v, lo, hi float64) drawing.Color {
	t := 0.0
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(ylGnBu)-1)
	i := int(pos)
	if i >= len(ylGnBu)-1 {
		return ylGnBu[len(ylGnBu)-1]
	}
	f := pos - float64(i)
	a, b := ylGnBu[i], ylGnBu[i+1]
	mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x)*(1-f) + float64(y)*f)) }
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func percentFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f%%", f*100)
	}
	return ""
}

// RenderFrontier renders the sampled portfolios as a volatility/return scatter colored
// by Sharpe ratio, with the max-Sharpe portfolio highlighted. Returns PNG bytes.
func RenderFrontier(a *analysis.Analysis) ([]byte, error) {
	res := a.Result
	xs := make([]float64, 0, res.Len())
	ys := make([]float64, 0, res.Len())
	sharpe := make([]float64, 0, res.Len())
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range res.Samples() {
		if !s.Valid() {
			continue
		}
		xs = append(xs, s.Volatility)
		ys = append(ys, s.Return)
		sharpe = append(sharpe, s.Sharpe)
		lo = math.Min(lo, s.Sharpe)
		hi = math.Max(hi, s.Sharpe)
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("no valid samples to plot")
	}

	samples := chart.ContinuousSeries{
		Name: "Portfolios",
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    2,
			DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				return rampColor(sharpe[index], lo, hi)
			},
		},
		XValues: xs,
		YValues: ys,
	}

	best := res.MaxSharpe()
	graph := chart.Chart{
		Title:  fmt.Sprintf("Efficient Frontier (color: Sharpe %.2f to %.2f)", lo, hi),
		Width:  900,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{Name: "Volatility", ValueFormatter: percentFormatter, Range: flatRange(xs)},
		YAxis: chart.YAxis{Name: "Return", ValueFormatter: percentFormatter, Range: flatRange(ys)},
		Series: []chart.Series{
			samples,
			optimumSeries(best),
		},
	}
	return renderPNG(&graph)
}

// RenderCML renders the capital market line through the max-Sharpe portfolio.
func RenderCML(a *analysis.Analysis) ([]byte, error) {
	line := frontier.CapitalMarketLine(a.Result, frontier.DefaultCMLPoints)
	xs := make([]float64, len(line))
	ys := make([]float64, len(line))
	for i, p := range line {
		xs[i] = p.Volatility
		ys[i] = p.Return
	}

	graph := chart.Chart{
		Title:  "Capital Market Line",
		Width:  900,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{Name: "Volatility", ValueFormatter: percentFormatter},
		YAxis: chart.YAxis{Name: "Return", ValueFormatter: percentFormatter},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Capital Market Line (CML)",
				Style:   chart.Style{StrokeColor: cmlColor, StrokeWidth: 2},
				XValues: xs,
				YValues: ys,
			},
			optimumSeries(a.Result.MaxSharpe()),
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return renderPNG(&graph)
}

// flatRange returns a padded range when every value is the same, which go-chart
// cannot scale on its own. Otherwise nil keeps auto-ranging.
func flatRange(values []float64) chart.Range {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi > lo {
		return nil
	}
	pad := math.Max(math.Abs(lo)*0.1, 0.01)
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func optimumSeries(best frontier.PortfolioSample) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name: fmt.Sprintf("Max Sharpe %.2f", best.Sharpe),
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    9,
			DotColor:    optimumColor,
		},
		XValues: []float64{best.Volatility},
		YValues: []float64{best.Return},
	}
}

func renderPNG(graph *chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
