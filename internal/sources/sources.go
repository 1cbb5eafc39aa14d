// Package sources implements the outbound fetchers for the three upstream
// data sources: the RateMyProfessors rating search, the Reddit discussion
// search, and the GitHub repository search.
//
// Each fetcher issues exactly one request per call with a bounded timeout and
// owns its own HTTP client. None of the sources is under our control, so a
// fetcher never lets an upstream problem escape as anything stronger than an
// error return; the aggregator downgrades those to empty results.
package sources

import (
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// fetchTimeout bounds every outbound call. A slow source costs at most
	// this much wall clock, and only for its own fields.
	fetchTimeout = 10 * time.Second

	// maxResults caps list-shaped results from the discussion and
	// repository sources.
	maxResults = 3

	// projectUserAgent identifies us to sources that accept a plain API
	// client (Reddit, GitHub).
	projectUserAgent = "coursecompass/0.1 (contact: local-dev)"

	// browserUserAgent is sent to sources that reject non-browser clients.
	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

func newClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = fetchTimeout
	}
	return resty.New().SetTimeout(timeout)
}
