package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pr-readiness-api/internal/cache"
	"pr-readiness-api/internal/models"

	"github.com/hashicorp/go-retryablehttp"
)

// PullRequestData is the subset of upstream PR metadata the tracker keeps.
type PullRequestData struct {
	Title     string
	Author    string
	State     models.PRState
	Draft     bool
	Mergeable bool
	Additions int
	Deletions int
	HTMLURL   string
	HeadSHA   string
}

// Client is the narrow upstream interface the handlers consume. Implementors
// must feed observed quota headers into the quota cache.
type Client interface {
	FetchPullRequest(ctx context.Context, owner, repo string, number int, token string) (*PullRequestData, error)
	FetchTimeline(ctx context.Context, owner, repo string, number int, token string) (models.Timeline, error)
}

// HTTPClient talks to the GitHub REST API with retries and backoff.
type HTTPClient struct {
	http  *retryablehttp.Client
	base  string
	quota *cache.QuotaCache
}

// NewHTTPClient constructs a client against baseURL (empty means
// https://api.github.com). Quota headers from every response are recorded in
// quota.
func NewHTTPClient(baseURL string, quota *cache.QuotaCache) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil
	return &HTTPClient{http: rc, base: baseURL, quota: quota}
}

type prResponse struct {
	Title string `json:"title"`
	User  struct {
		Login string `json:"login"`
	} `json:"user"`
	State     string `json:"state"`
	Draft     bool   `json:"draft"`
	Merged    bool   `json:"merged"`
	Mergeable *bool  `json:"mergeable"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	HTMLURL   string `json:"html_url"`
	Head      struct {
		SHA string `json:"sha"`
	} `json:"head"`
}

// FetchPullRequest fetches current PR metadata from upstream.
func (c *HTTPClient) FetchPullRequest(ctx context.Context, owner, repo string, number int, token string) (*PullRequestData, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.base, owner, repo, number)

	var pr prResponse
	if err := c.getJSON(ctx, url, "", token, &pr); err != nil {
		return nil, err
	}

	state := models.PRState(pr.State)
	if pr.Merged {
		state = models.StateMerged
	}
	return &PullRequestData{
		Title:     pr.Title,
		Author:    pr.User.Login,
		State:     state,
		Draft:     pr.Draft,
		Mergeable: pr.Mergeable != nil && *pr.Mergeable,
		Additions: pr.Additions,
		Deletions: pr.Deletions,
		HTMLURL:   pr.HTMLURL,
		HeadSHA:   pr.Head.SHA,
	}, nil
}

type timelineEventResponse struct {
	Event string `json:"event"`
	Actor struct {
		Login string `json:"login"`
	} `json:"actor"`
	User struct {
		Login string `json:"login"`
	} `json:"user"`
	State       string    `json:"state"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// FetchTimeline fetches the PR event timeline from upstream.
func (c *HTTPClient) FetchTimeline(ctx context.Context, owner, repo string, number int, token string) (models.Timeline, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/timeline?per_page=100", c.base, owner, repo, number)

	var raw []timelineEventResponse
	if err := c.getJSON(ctx, url, "application/vnd.github.mockingbird-preview+json", token, &raw); err != nil {
		return models.Timeline{}, err
	}

	events := make([]models.TimelineEvent, 0, len(raw))
	for _, e := range raw {
		actor := e.Actor.Login
		if actor == "" {
			actor = e.User.Login
		}
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = e.SubmittedAt
		}
		events = append(events, models.TimelineEvent{
			Type:      e.Event,
			Actor:     actor,
			State:     e.State,
			Body:      e.Body,
			CreatedAt: createdAt,
		})
	}

	return models.Timeline{
		Owner:     owner,
		Repo:      repo,
		Number:    number,
		Events:    events,
		FetchedAt: time.Now(),
	}, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, url, accept, token string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building upstream request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", "pr-readiness-api")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request %s: %w", url, err)
	}
	defer resp.Body.Close()

	// Record quota headers before checking the status; rate-limited
	// responses carry the freshest quota data of all.
	c.quota.Update(
		resp.Header.Get("X-RateLimit-Limit"),
		resp.Header.Get("X-RateLimit-Remaining"),
		resp.Header.Get("X-RateLimit-Reset"),
	)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream request %s: unexpected status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding upstream response: %w", err)
	}
	return nil
}
