package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/vicanso/go-charts/v2"

	"frontierBot/internal/storage"
)

// RenderUsageTrend draws one line per command over the days seen in series.
// Days a command was not used plot as zero.
func RenderUsageTrend(series map[string][]storage.DayCount, days int) ([]byte, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no time series data available")
	}

	seen := map[time.Time]bool{}
	var axis []time.Time
	for _, points := range series {
		for _, p := range points {
			if !seen[p.Day] {
				seen[p.Day] = true
				axis = append(axis, p.Day)
			}
		}
	}
	sort.Slice(axis, func(i, j int) bool { return axis[i].Before(axis[j]) })

	labels := make([]string, len(axis))
	for i, d := range axis {
		labels[i] = d.Format("01/02")
	}

	names := make([]string, 0, len(series))
	for c := range series {
		names = append(names, c)
	}
	sort.Strings(names)

	values := make([][]float64, 0, len(names))
	for _, c := range names {
		byDay := make(map[time.Time]int, len(series[c]))
		for _, p := range series[c] {
			byDay[p.Day] = p.Count
		}
		row := make([]float64, len(axis))
		for i, d := range axis {
			row[i] = float64(byDay[d])
		}
		values = append(values, row)
	}
	legend := make([]string, len(names))
	for i, c := range names {
		legend[i] = "/" + c
	}

	p, err := charts.LineRender(
		values,
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels}),
		charts.TitleTextOptionFunc(fmt.Sprintf("Command Usage Over Time (%d days)", days)),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: legend,
			Top:  charts.PositionTop,
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(1000),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, err
	}
	return p.Bytes()
}
