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
	repositoryBaseURL = "https://api.github.com"

	// institutionQualifier narrows the free-text search toward course
	// material from the right school.
	institutionQualifier = "UVA"
)

// RepositoryConfig configures the GitHub repository fetcher. Token is
// optional; without it the search API still works at a lower rate limit.
type RepositoryConfig struct {
	BaseURL string // override for tests
	Token   string
}

func (c RepositoryConfig) withDefaults() RepositoryConfig {
	if c.BaseURL == "" {
		c.BaseURL = repositoryBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}

// RepositoryFetcher searches GitHub for repositories related to a course.
type RepositoryFetcher struct {
	cfg    RepositoryConfig
	client *resty.Client
	logger *zap.Logger
}

func NewRepositoryFetcher(cfg RepositoryConfig, logger *zap.Logger) *RepositoryFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepositoryFetcher{
		cfg:    cfg.withDefaults(),
		client: newClient(fetchTimeout),
		logger: logger.Named("repository"),
	}
}

// Fetch returns up to 3 display strings for the most-starred repositories
// matching the course and professor. A record is only accepted when its
// full_name and the html_url that follows it are both present, in that order.
func (f *RepositoryFetcher) Fetch(ctx context.Context, professorName, courseID string) ([]string, error) {
	query := strings.TrimSpace(courseID + " " + professorName + " " + institutionQualifier)

	req := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", "2022-11-28").
		SetHeader("User-Agent", projectUserAgent).
		SetQueryParams(map[string]string{
			"q":        query,
			"sort":     "stars",
			"order":    "desc",
			"per_page": "3",
		})
	if f.cfg.Token != "" {
		req.SetHeader("Authorization", "Bearer "+f.cfg.Token)
	}

	resp, err := req.Get(f.cfg.BaseURL + "/search/repositories")
	if err != nil {
		return nil, fmt.Errorf("repository search: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("repository search: upstream status %d", resp.StatusCode())
	}

	payload := resp.String()
	repos := make([]string, 0, maxResults)
	cursor := 0
	for len(repos) < maxResults {
		fullName, next, ok := extract.String(payload, "full_name", cursor)
		if !ok {
			break
		}
		htmlURL, next, ok := extract.String(payload, "html_url", next)
		if !ok {
			break
		}
		repos = append(repos, fullName+" — "+htmlURL)
		cursor = next
	}

	f.logger.Debug("repository search done",
		zap.String("query", query),
		zap.Int("repos", len(repos)),
	)
	return repos, nil
}
