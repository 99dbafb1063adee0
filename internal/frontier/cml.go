package frontier

// DefaultCMLPoints is the resolution of the capital market line.
const DefaultCMLPoints = 100

// CapitalMarketLine returns evenly spaced points from zero volatility up to the
// volatility of the max-Sharpe portfolio, on the line rf + vol*sharpe.
func CapitalMarketLine(r *SimulationResult, points int) []Point {
	if points < 2 {
		points = DefaultCMLPoints
	}
	best := r.samples[r.maxSharpe]
	out := make([]Point, points)
	for i := range out {
		x := best.Volatility * float64(i) / float64(points-1)
		out[i] = Point{Volatility: x, Return: r.riskFree + x*best.Sharpe}
	}
	return out
}
