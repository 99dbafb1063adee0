package report

import (
	"fmt"
	"strings"

	"frontierBot/internal/analysis"
	"frontierBot/internal/frontier"
)

// WeightsText renders the optimal portfolio the way the chat and CLI print it.
func WeightsText(a *analysis.Analysis) string {
	best := a.Result.MaxSharpe()
	low := a.Result.MinVolatility()

	var b strings.Builder
	fmt.Fprintf(&b, "Optimal Portfolio Weights for Maximum Sharpe Ratio: %.2f\n", best.Sharpe)
	writeWeights(&b, a.Symbols, best)
	fmt.Fprintf(&b, "Expected return: %.2f%% | Volatility: %.2f%%\n", best.Return*100, best.Volatility*100)

	fmt.Fprintf(&b, "\nMinimum volatility portfolio (Sharpe %.2f)\n", low.Sharpe)
	writeWeights(&b, a.Symbols, low)
	fmt.Fprintf(&b, "Expected return: %.2f%% | Volatility: %.2f%%\n", low.Return*100, low.Volatility*100)

	fmt.Fprintf(&b, "\n%d portfolios sampled over %d trading days (%s to %s), risk-free rate %.2f%%",
		a.Result.Len(), a.Days, a.Start.Format("2006-01-02"), a.End.Format("2006-01-02"), a.Result.RiskFreeRate()*100)
	if n := a.Result.Degenerate(); n > 0 {
		fmt.Fprintf(&b, "\n%d zero-volatility portfolios were excluded", n)
	}
	return b.String()
}

func writeWeights(b *strings.Builder, symbols []string, s frontier.PortfolioSample) {
	for i, sym := range symbols {
		fmt.Fprintf(b, "%s: %.2f%%\n", sym, s.Weights[i]*100)
	}
}
