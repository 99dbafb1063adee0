package finance

import (
	"encoding/json"
	"time"
)

// yahooChartResp mirrors Yahoo v8 chart response (trimmed to needed fields)
type yahooChartResp struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				Currency  string `json:"currency"`
				GmtOffset int64  `json:"gmtoffset"`
				Timezone  string `json:"timezone"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *yahooError) UnmarshalJSON(b []byte) error {
	type plain yahooError
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		// Yahoo occasionally sends a bare string here
		var s string
		if json.Unmarshal(b, &s) == nil {
			e.Description = s
			return nil
		}
		return err
	}
	*e = yahooError(p)
	return nil
}

// PriceSeries is the daily adjusted close history of one symbol.
// Dates are midnight UTC of the exchange-local trading day.
type PriceSeries struct {
	Symbol   string
	Currency string
	Dates    []time.Time
	Prices   []float64
}

// Len returns the number of observations.
func (p PriceSeries) Len() int { return len(p.Prices) }
