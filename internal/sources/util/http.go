package util

import (
	"net/http"
	"strings"
	"time"
)

// BrowserUA is sent on scraping requests; county portals refuse the default
// Go client string outright.
const BrowserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// APIUA identifies us honestly on typed public APIs.
const APIUA = "propscout-engine/1.0 (+local)"

// NewClient returns an HTTP client with the per-adapter timeout every source
// must carry so one unresponsive host cannot stall a whole aggregation.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// CleanText collapses whitespace and non-breaking spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}
