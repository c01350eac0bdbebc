package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"pr-readiness-api/internal/cache"
	"pr-readiness-api/internal/database"
	"pr-readiness-api/internal/github"
	"pr-readiness-api/internal/models"
	"pr-readiness-api/internal/notify"
	"pr-readiness-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeUpstream implements github.Client for handler tests.
type fakeUpstream struct {
	mu            sync.Mutex
	prCalls       int
	timelineCalls int
	prData        github.PullRequestData
	timeline      models.Timeline
	err           error
}

func (f *fakeUpstream) FetchPullRequest(_ context.Context, _, _ string, _ int, _ string) (*github.PullRequestData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prCalls++
	if f.err != nil {
		return nil, f.err
	}
	data := f.prData
	return &data, nil
}

func (f *fakeUpstream) FetchTimeline(_ context.Context, owner, repo string, number int, _ string) (models.Timeline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timelineCalls++
	if f.err != nil {
		return models.Timeline{}, f.err
	}
	tl := f.timeline
	tl.Owner = owner
	tl.Repo = repo
	tl.Number = number
	return tl, nil
}

func newTestAPI(t *testing.T) (*API, *fakeUpstream) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	upstream := &fakeUpstream{}
	api := NewAPI(upstream, cache.NewQuotaCache(cache.Options{}), notify.New(""))
	return api, upstream
}

func seedPR(t *testing.T) *models.PullRequest {
	t.Helper()
	pr := &models.PullRequest{
		Owner:         "acme",
		Repo:          "widgets",
		Number:        42,
		Title:         "Add widget telemetry",
		Author:        "alice",
		State:         models.StateOpen,
		Mergeable:     true,
		LastFetchedAt: time.Now(),
	}
	require.NoError(t, database.GetDB().Create(pr).Error)
	return pr
}
