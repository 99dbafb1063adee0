package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

var testDefaults = FrontierDefaults{
	Start:        day("2000-01-01"),
	End:          day("2023-06-30"),
	Samples:      10000,
	MaxSamples:   50000,
	RiskFreeRate: 0.0175,
}

func TestParseFrontier(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want FrontierArgs
	}{
		{
			name: "defaults",
			in:   "/frontier AAPL MSFT",
			want: FrontierArgs{Symbols: []string{"AAPL", "MSFT"}, Start: day("2000-01-01"), End: day("2023-06-30"), Samples: 10000},
		},
		{
			name: "dates and count",
			in:   "/frontier aapl msft ^GSPC 2015-01-01 2020-12-31 n=500",
			want: FrontierArgs{Symbols: []string{"aapl", "msft", "^GSPC"}, Start: day("2015-01-01"), End: day("2020-12-31"), Samples: 500},
		},
		{
			name: "bot mention",
			in:   "/frontier@my_bot SPY TLT",
			want: FrontierArgs{Symbols: []string{"SPY", "TLT"}, Start: day("2000-01-01"), End: day("2023-06-30"), Samples: 10000},
		},
		{
			name: "count capped",
			in:   "/frontier SPY TLT n=999999",
			want: FrontierArgs{Symbols: []string{"SPY", "TLT"}, Start: day("2000-01-01"), End: day("2023-06-30"), Samples: 50000},
		},
		{
			name: "no symbols parses",
			in:   "/frontier",
			want: FrontierArgs{Start: day("2000-01-01"), End: day("2023-06-30"), Samples: 10000},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFrontier(tt.in, testDefaults)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFrontier_Errors(t *testing.T) {
	for _, in := range []string{
		"/frontier AAPL MSFT 2015-01-01",
		"/frontier AAPL MSFT 2020-01-01 2015-01-01",
		"/frontier AAPL MSFT 2015-13-01 2016-01-01",
		"/frontier AAPL MSFT n=0",
		"/frontier AAPL $$$",
		"/frontiers AAPL MSFT",
	} {
		_, err := parseFrontier(in, testDefaults)
		assert.Error(t, err, in)
	}
}

func TestParseUsageDays(t *testing.T) {
	d, ok := parseUsageDays("/usage")
	assert.True(t, ok)
	assert.Equal(t, 7, d)

	d, _ = parseUsageDays("/usage 30")
	assert.Equal(t, 30, d)

	d, _ = parseUsageDays("/usage 0")
	assert.Equal(t, 1, d)

	d, _ = parseUsageDays("/usage 9999")
	assert.Equal(t, 365, d)

	_, ok = parseUsageDays("/usage abc")
	assert.False(t, ok)
}

func TestQuarter(t *testing.T) {
	assert.Equal(t, 0, quarter(24, 100))
	assert.Equal(t, 25, quarter(25, 100))
	assert.Equal(t, 50, quarter(74, 148))
	assert.Equal(t, 100, quarter(100, 100))
	assert.Equal(t, 0, quarter(1, 0))
}
