package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pr-readiness-api/internal/auth"
	"pr-readiness-api/internal/database"
	"pr-readiness-api/internal/github"
	"pr-readiness-api/internal/middleware"
	"pr-readiness-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestAddPR_FetchesFromUpstream(t *testing.T) {
	api, upstream := newTestAPI(t)
	upstream.prData = github.PullRequestData{
		Title:     "Fix widget overflow",
		Author:    "alice",
		State:     models.StateOpen,
		Mergeable: true,
		Additions: 10,
		Deletions: 2,
	}

	r := gin.New()
	r.Use(middleware.JWTAuthMiddleware())
	r.POST("/api/prs", api.AddPR)

	token, err := auth.GenerateToken("user-1", "alice")
	require.NoError(t, err)

	body, _ := json.Marshal(AddPRRequest{Owner: "acme", Repo: "widgets", Number: 7})
	req := httptest.NewRequest(http.MethodPost, "/api/prs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.PullRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "Fix widget overflow", created.Title)
	require.Equal(t, "alice", created.Author)
	require.Equal(t, 1, upstream.prCalls)

	// Tracking the same PR twice conflicts.
	req = httptest.NewRequest(http.MethodPost, "/api/prs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestListPRs_FiltersAndPagination(t *testing.T) {
	api, _ := newTestAPI(t)
	seedPR(t)
	require.NoError(t, database.GetDB().Create(&models.PullRequest{
		Owner: "acme", Repo: "gadgets", Number: 3, Author: "bob", State: models.StateOpen,
	}).Error)

	r := gin.New()
	r.GET("/api/prs", api.ListPRs)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/prs?repo=widgets", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		PRs   []models.PullRequest `json:"prs"`
		Total int64                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.PRs, 1)
	require.Equal(t, "widgets", resp.PRs[0].Repo)

	// per_page below the floor clamps to 10
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/prs?per_page=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"per_page":10`)
}

func TestGetPR_NotFound(t *testing.T) {
	api, _ := newTestAPI(t)

	r := gin.New()
	r.GET("/api/prs/:id", api.GetPR)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/prs/999", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/prs/abc", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshPR_UpdatesAndInvalidates(t *testing.T) {
	api, upstream := newTestAPI(t)
	pr := seedPR(t)
	upstream.prData = github.PullRequestData{
		Title:  "Add widget telemetry",
		Author: "alice",
		State:  models.StateMerged,
	}

	// Prime the readiness cache so the refresh has something to drop.
	require.NoError(t, api.Readiness.Set(httptest.NewRequest("GET", "/", nil).Context(), pr.ID,
		models.ReadinessReport{PRID: pr.ID, Verdict: models.VerdictReady}))

	r := gin.New()
	r.Use(middleware.JWTAuthMiddleware())
	r.POST("/api/refresh", api.RefreshPR)

	token, err := auth.GenerateToken("user-1", "alice")
	require.NoError(t, err)

	body, _ := json.Marshal(RefreshRequest{ID: pr.ID})
	req := httptest.NewRequest(http.MethodPost, "/api/refresh", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), fmt.Sprintf(`"state":"%s"`, models.StateMerged))

	_, ok := api.Readiness.Get(req.Context(), pr.ID)
	require.False(t, ok, "expected readiness cache invalidated by refresh")
}

func TestListReposAndAuthors(t *testing.T) {
	api, _ := newTestAPI(t)
	seedPR(t)

	r := gin.New()
	r.GET("/api/repos", api.ListRepos)
	r.GET("/api/authors", api.ListAuthors)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/repos", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"repo":"widgets"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/authors", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"author":"alice"`)
}
