package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/storyguard/internal/db"
	"github.com/spacesedan/storyguard/internal/metrics"
	"github.com/spacesedan/storyguard/internal/models"
	"github.com/spacesedan/storyguard/internal/moderation"
)

type harness struct {
	router *gin.Engine
	store  *db.MemoryStore
	health *atomic.Bool
}

func setup(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemoryStore()
	store.PutStory(models.Story{
		ID:          "bali",
		ContentItem: models.ContentItem{Title: "Exploring Ubud, Bali", Tags: []string{"bali"}},
	})

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := moderation.NewService(store, moderation.WithMetrics(m))

	var healthy atomic.Bool
	healthy.Store(true)

	router := NewRouter(RouterConfig{
		Handler:      NewHandler(svc),
		Metrics:      m,
		Gatherer:     reg,
		Dependencies: map[string]*atomic.Bool{"opensearch": &healthy},
	})
	return &harness{router: router, store: store, health: &healthy}
}

func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.router.ServeHTTP(resp, req)
	return resp
}

func TestCreateComment(t *testing.T) {
	h := setup(t)

	resp := h.do(http.MethodPost, "/api/stories/bali/comments", `{"author":"made","content":"I loved the warung food in Bali"}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	var body CommentResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Comment.ID)
	assert.Equal(t, "bali", body.Comment.StoryID)
	assert.True(t, body.Validation.IsValid)
	assert.Contains(t, body.Validation.MatchedKeywords, "bali")
}

func TestCreateCommentIrrelevantStillCreated(t *testing.T) {
	h := setup(t)

	resp := h.do(http.MethodPost, "/api/stories/bali/comments", `{"content":"Qwerty zxcvb plmkn"}`)
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, resp.Body.String(), `"isValid":false`)
	assert.Contains(t, resp.Body.String(), `"storyKeywords"`)
}

func TestCreateCommentRejected(t *testing.T) {
	h := setup(t)

	tests := []struct {
		body   string
		reason string
	}{
		{body: `{"content":""}`, reason: "Comment content is required"},
		{body: `{"content":"hi"}`, reason: "Comment must be at least 3 characters long"},
		{body: `{bad json`, reason: "Invalid request"},
	}
	for _, tt := range tests {
		resp := h.do(http.MethodPost, "/api/stories/bali/comments", tt.body)
		assert.Equal(t, http.StatusBadRequest, resp.Code, tt.body)

		var body map[string]string
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, tt.reason, body["error"], tt.body)
	}
}

func TestCreateCommentUnknownStoryFailsOpen(t *testing.T) {
	h := setup(t)

	resp := h.do(http.MethodPost, "/api/stories/nowhere/comments", `{"content":"Anything goes here"}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	var body CommentResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.True(t, body.Validation.IsValid)
	assert.Equal(t, 0.5, body.Validation.Confidence)
	assert.Equal(t, moderation.ReasonValidationSkipped, body.Validation.Reason)
}

func TestCheckRelevance(t *testing.T) {
	h := setup(t)

	resp := h.do(http.MethodPost, "/api/stories/bali/relevance", `{"content":"aaaaaaaaaaaaaa"}`)
	require.Equal(t, http.StatusOK, resp.Code)

	var result models.ValidationResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Reason, "spam")

	resp = h.do(http.MethodPost, "/api/stories/nowhere/relevance", `{"content":"Ubud rice fields"}`)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAuditEndpoint(t *testing.T) {
	h := setup(t)

	h.do(http.MethodPost, "/api/stories/bali/comments", `{"content":"Bali was the highlight of our year"}`)
	h.do(http.MethodPost, "/api/stories/bali/comments", `{"content":"Qwerty zxcvb plmkn"}`)

	resp := h.do(http.MethodGet, "/api/admin/comments/audit?page=1&limit=10", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var page models.AuditPage
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Equal(t, models.AuditSummary{Total: 2, FlaggedCount: 1, FlaggedPercentage: 50}, page.Summary)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 10, Total: 2, TotalPages: 1}, page.Pagination)

	resp = h.do(http.MethodGet, "/api/admin/comments/audit?threshold=0.99", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Summary.FlaggedCount)

	for _, query := range []string{"page=x", "limit=1.5", "threshold=abc", "threshold=2", "threshold=NaN", "threshold=-0.1"} {
		resp = h.do(http.MethodGet, "/api/admin/comments/audit?"+query, "")
		assert.Equal(t, http.StatusBadRequest, resp.Code, query)
	}
}

func TestKeywordsEndpoint(t *testing.T) {
	h := setup(t)

	resp := h.do(http.MethodGet, "/api/admin/keywords", "")
	require.Equal(t, http.StatusOK, resp.Code)

	var snapshot moderation.DictionarySnapshot
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &snapshot))
	assert.NotEmpty(t, snapshot.Location)
	assert.NotEmpty(t, snapshot.Theme)
}

func TestHealthAndMetrics(t *testing.T) {
	h := setup(t)

	resp := h.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.Code)

	h.health.Store(false)
	resp = h.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), "unhealthy")

	h.do(http.MethodPost, "/api/stories/bali/comments", `{"content":"Bali was lovely"}`)
	resp = h.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, strings.Contains(resp.Body.String(), `storyguard_comment_validations_total{outcome="accepted",path="submission"} 1`))
	assert.Contains(t, resp.Body.String(), `route="/api/stories/:storyId/comments"`)
}
