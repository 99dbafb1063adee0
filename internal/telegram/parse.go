package telegram

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"frontierBot/internal/config"
)

var (
	// /frontier S1 S2 ... [YYYY-MM-DD YYYY-MM-DD] [n=COUNT]
	reFrontier = regexp.MustCompile(`^/frontier(?:@[\w_]+)?(?:\s+(.*))?$`)
	// /usage [days]
	reUsage = regexp.MustCompile(`^/usage(?:@[\w_]+)?(?:\s+(\d+))?$`)
	// /help
	reHelp = regexp.MustCompile(`^/(help|start)(?:@[\w_]+)?$`)

	reDate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reCount   = regexp.MustCompile(`^n=(\d+)$`)
	reSymbol  = regexp.MustCompile(`^[A-Za-z0-9\.^_=+-]+$`)
	errSyntax = errors.New("usage: /frontier S1 S2 ... [YYYY-MM-DD YYYY-MM-DD] [n=COUNT]")
)

// FrontierDefaults fill in whatever a /frontier command leaves out.
type FrontierDefaults struct {
	Start, End   time.Time
	Samples      int
	MaxSamples   int
	RiskFreeRate float64
}

// FrontierArgs is a parsed /frontier command.
type FrontierArgs struct {
	Symbols    []string
	Start, End time.Time
	Samples    int
}

func parseFrontier(text string, d FrontierDefaults) (FrontierArgs, error) {
	g := reFrontier.FindStringSubmatch(strings.TrimSpace(text))
	if g == nil {
		return FrontierArgs{}, errSyntax
	}
	args := FrontierArgs{Start: d.Start, End: d.End, Samples: d.Samples}
	var dates []time.Time
	for _, tok := range strings.Fields(g[1]) {
		switch {
		case reDate.MatchString(tok):
			t, err := time.Parse(config.DateLayout, tok)
			if err != nil {
				return FrontierArgs{}, fmt.Errorf("invalid date %q", tok)
			}
			dates = append(dates, t)
		case reCount.MatchString(tok):
			n, err := strconv.Atoi(reCount.FindStringSubmatch(tok)[1])
			if err != nil || n < 1 {
				return FrontierArgs{}, fmt.Errorf("invalid sample count %q", tok)
			}
			args.Samples = n
		case reSymbol.MatchString(tok):
			args.Symbols = append(args.Symbols, tok)
		default:
			return FrontierArgs{}, fmt.Errorf("invalid ticker %q", tok)
		}
	}
	switch len(dates) {
	case 0:
	case 2:
		args.Start, args.End = dates[0], dates[1]
	default:
		return FrontierArgs{}, errors.New("give both a start and an end date, e.g. 2015-01-01 2023-06-30")
	}
	if !args.End.After(args.Start) {
		return FrontierArgs{}, errors.New("end date must be after start date")
	}
	if d.MaxSamples > 0 && args.Samples > d.MaxSamples {
		args.Samples = d.MaxSamples
	}
	return args, nil
}

func parseUsageDays(text string) (int, bool) {
	g := reUsage.FindStringSubmatch(strings.TrimSpace(text))
	if g == nil {
		return 0, false
	}
	days := 7
	if g[1] != "" {
		days, _ = strconv.Atoi(g[1])
	}
	if days < 1 {
		days = 1
	}
	if days > 365 {
		days = 365
	}
	return days, true
}

// quarter maps progress to the last completed 25% step.
func quarter(done, total int) int {
	if total <= 0 {
		return 0
	}
	return done * 4 / total * 25
}
