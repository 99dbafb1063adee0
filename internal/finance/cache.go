package finance

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

// CacheClient returns an HTTP client backed by a disk cache in dir. Requests ask for
// responses no older than maxAge, so repeated runs over the same range stay offline.
func CacheClient(dir string, maxAge, timeout time.Duration) (*http.Client, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache dir %s: %w", dir, err)
	}
	return &http.Client{
		Timeout: timeout,
		Transport: maxAgeTransport{
			t:      httpcache.NewTransport(diskcache.New(dir)),
			maxAge: fmt.Sprintf("%.0f", maxAge.Seconds()),
		},
	}, nil
}

type maxAgeTransport struct {
	t      http.RoundTripper
	maxAge string
}

func (t maxAgeTransport) RoundTrip(rq *http.Request) (*http.Response, error) {
	rq = rq.Clone(rq.Context())
	rq.Header.Set("Cache-Control", "max-age="+t.maxAge)
	return t.t.RoundTrip(rq)
}
