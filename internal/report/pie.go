package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vicanso/go-charts/v2"

	"frontierBot/internal/analysis"
	"frontierBot/internal/storage"
)

// RenderWeightsPie renders the max-Sharpe allocation as a pie chart.
func RenderWeightsPie(a *analysis.Analysis) ([]byte, error) {
	best := a.Result.MaxSharpe()
	labels := make([]string, len(a.Symbols))
	for i, sym := range a.Symbols {
		labels[i] = fmt.Sprintf("%s (%.1f%%)", sym, best.Weights[i]*100)
	}

	p, err := charts.PieRender(
		best.Weights,
		charts.TitleTextOptionFunc("Max Sharpe Allocation", fmt.Sprintf("Sharpe %.2f | %s", best.Sharpe, strings.Join(a.Symbols, ", "))),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: labels,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(800),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// RenderUsagePie creates the command usage distribution chart.
func RenderUsagePie(u *storage.Usage, days int) ([]byte, error) {
	if u == nil || len(u.Commands) == 0 {
		return nil, fmt.Errorf("no usage data available")
	}

	commands := sortedKeys(u.Commands)
	total := totalCount(u)
	values := make([]float64, 0, len(commands))
	labels := make([]string, 0, len(commands))
	for _, c := range commands {
		n := u.Commands[c].Count
		values = append(values, float64(n))
		labels = append(labels, fmt.Sprintf("/%s (%.1f%%)", c, float64(n)/float64(total)*100))
	}

	p, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc(fmt.Sprintf("Command Usage Distribution (%d days)", days)),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: labels,
			Top:  charts.PositionTop,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(800),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, err
	}
	return p.Bytes()
}

// UsageText creates a text summary of usage statistics.
func UsageText(u *storage.Usage, days int) string {
	if u == nil || len(u.Commands) == 0 {
		return "No usage data available for the specified period."
	}
	total := totalCount(u)

	var b strings.Builder
	fmt.Fprintf(&b, "Usage (%d days): %d commands from %d users\n", days, total, u.Users)
	for _, c := range sortedKeys(u.Commands) {
		s := u.Commands[c]
		fmt.Fprintf(&b, "/%s: %d (%.1f%%), %d users\n", c, s.Count, float64(s.Count)/float64(total)*100, s.Users)
	}
	return strings.TrimRight(b.String(), "\n")
}

func totalCount(u *storage.Usage) int {
	total := 0
	for _, s := range u.Commands {
		total += s.Count
	}
	return total
}

func sortedKeys(stats map[string]*storage.UsageStats) []string {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
