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
	ratingBaseURL = "https://www.ratemyprofessors.com"
	ratingReferer = "https://www.ratemyprofessors.com/"

	// DefaultSchoolID is UVA's identifier on the rating source. It is not
	// guaranteed stable upstream, so it stays overridable via config.
	DefaultSchoolID = "U2Nob29sLTEwOTQ="

	// teacherSearchQuery is the GraphQL document the rating source's own
	// frontend uses for teacher search. We only read avgRating out of the
	// response.
	teacherSearchQuery = `query SearchTeacher($query: TeacherSearchQuery!) {
  newSearch {
    teachers(query: $query) {
      edges {
        node {
          firstName
          lastName
          avgRating
          numRatings
        }
      }
    }
  }
}`
)

// RatingConfig configures the RateMyProfessors fetcher.
type RatingConfig struct {
	BaseURL  string // override for tests
	SchoolID string
}

func (c RatingConfig) withDefaults() RatingConfig {
	if c.BaseURL == "" {
		c.BaseURL = ratingBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.SchoolID == "" {
		c.SchoolID = DefaultSchoolID
	}
	return c
}

// RatingFetcher looks up a professor's average rating on the rating source.
type RatingFetcher struct {
	cfg    RatingConfig
	client *resty.Client
	logger *zap.Logger
}

func NewRatingFetcher(cfg RatingConfig, logger *zap.Logger) *RatingFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingFetcher{
		cfg:    cfg.withDefaults(),
		client: newClient(fetchTimeout),
		logger: logger.Named("rating"),
	}
}

type teacherSearchRequest struct {
	OperationName string                 `json:"operationName"`
	Query         string                 `json:"query"`
	Variables     teacherSearchVariables `json:"variables"`
}

type teacherSearchVariables struct {
	Query teacherSearchInput `json:"query"`
}

type teacherSearchInput struct {
	Text     string `json:"text"`
	SchoolID string `json:"schoolID"`
	Fallback bool   `json:"fallback"`
}

// Fetch posts a teacher search for the given "last, first" professor name and
// returns the first average rating found in the response. A missing rating is
// reported as ok=false, not an error; errors mean the call itself failed.
func (f *RatingFetcher) Fetch(ctx context.Context, professorName string) (float64, bool, error) {
	last, first := splitName(professorName)
	searchText := strings.TrimSpace(first + " " + last)

	body := teacherSearchRequest{
		OperationName: "SearchTeacher",
		Query:         teacherSearchQuery,
		Variables: teacherSearchVariables{
			Query: teacherSearchInput{
				Text:     searchText,
				SchoolID: f.cfg.SchoolID,
				Fallback: true,
			},
		},
	}

	// The rating source rejects requests that don't look like its own
	// frontend, hence the browser UA and same-origin Referer/Origin.
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetHeader("Origin", ratingReferer).
		SetHeader("Referer", ratingReferer).
		SetHeader("User-Agent", browserUserAgent).
		SetBody(body).
		Post(f.cfg.BaseURL + "/graphql")
	if err != nil {
		return 0, false, fmt.Errorf("rating search: %w", err)
	}
	if !resp.IsSuccess() {
		return 0, false, fmt.Errorf("rating search: upstream status %d", resp.StatusCode())
	}

	rating, _, ok := extract.Number(resp.String(), "avgRating", 0)
	if !ok {
		f.logger.Debug("no avgRating in response", zap.String("search_text", searchText))
		return 0, false, nil
	}
	return rating, true, nil
}

// splitName splits a "last, first" professor name on the first comma. With no
// comma the whole trimmed string is the surname.
func splitName(professorName string) (last, first string) {
	if i := strings.Index(professorName, ","); i >= 0 {
		return strings.TrimSpace(professorName[:i]), strings.TrimSpace(professorName[i+1:])
	}
	return strings.TrimSpace(professorName), ""
}
