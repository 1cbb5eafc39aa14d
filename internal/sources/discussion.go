package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"coursecompass-backend/internal/extract"
)

const (
	discussionBaseURL = "https://www.reddit.com"

	// subreddit scopes the search to the institution's community.
	subreddit = "UVA"
)

// DiscussionConfig configures the Reddit thread fetcher.
type DiscussionConfig struct {
	BaseURL string // override for tests
}

func (c DiscussionConfig) withDefaults() DiscussionConfig {
	if c.BaseURL == "" {
		c.BaseURL = discussionBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}

// DiscussionFetcher searches the course's subreddit for recent threads about
// a course id.
type DiscussionFetcher struct {
	cfg    DiscussionConfig
	client *resty.Client
	logger *zap.Logger
}

func NewDiscussionFetcher(cfg DiscussionConfig, logger *zap.Logger) *DiscussionFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscussionFetcher{
		cfg:    cfg.withDefaults(),
		client: newClient(fetchTimeout),
		logger: logger.Named("discussion"),
	}
}

// Fetch returns up to 3 thread titles for courseID, in upstream relevance
// order. An empty result with a nil error means the search worked but nothing
// matched.
func (f *DiscussionFetcher) Fetch(ctx context.Context, courseID string) ([]string, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", projectUserAgent).
		SetQueryParams(map[string]string{
			"q":           courseID,
			"restrict_sr": "1",
			"sort":        "relevance",
			"t":           "all",
		}).
		Get(f.cfg.BaseURL + "/r/" + subreddit + "/search.json")
	if err != nil {
		return nil, fmt.Errorf("discussion search: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("discussion search: upstream status %d", resp.StatusCode())
	}

	payload := resp.String()
	titles := make([]string, 0, maxResults)
	cursor := 0
	for len(titles) < maxResults {
		title, next, ok := extract.String(payload, "title", cursor)
		if !ok {
			break
		}
		titles = append(titles, title)
		cursor = next
	}

	f.logger.Debug("discussion search done",
		zap.String("course_id", courseID),
		zap.Int("titles", len(titles)),
	)
	return titles, nil
}

// Summarize renders a one-line summary of the fetched thread titles.
func Summarize(titles []string) string {
	if len(titles) == 0 {
		return "No recent discussion threads found."
	}
	return "Top threads: " + strings.Join(titles, " | ")
}
