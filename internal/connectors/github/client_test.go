package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quire/internal/core/domain"
)

// mockTokenProvider implements driven.TokenProvider for testing.
type mockTokenProvider struct {
	token string
	err   error
}

func (p *mockTokenProvider) GetToken(_ context.Context) (string, error) {
	return p.token, p.err
}

func (p *mockTokenProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodPAT
}

func (p *mockTokenProvider) IsAuthenticated() bool {
	return p.token != ""
}

// newTestClient points a Client at an httptest server.
func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := gh.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	return NewClientWithHTTPClient(client, NewRateLimiter(1000))
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_SearchIssues_PaginatesAndSkipsPullRequests(t *testing.T) {
	mux := http.NewServeMux()
	var queries []string
	mux.HandleFunc("/search/issues", func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		assert.Equal(t, "created", r.URL.Query().Get("sort"))
		assert.Equal(t, "asc", r.URL.Query().Get("order"))

		if r.URL.Query().Get("page") == "2" {
			writeJSON(t, w, map[string]any{
				"total_count": 3,
				"items":       []map[string]any{{"number": 3, "title": "third"}},
			})
			return
		}
		next := fmt.Sprintf(`<http://%s/search/issues?page=2>; rel="next"`, r.Host)
		w.Header().Set("Link", next)
		writeJSON(t, w, map[string]any{
			"total_count": 3,
			"items": []map[string]any{
				{"number": 1, "title": "first"},
				{"number": 2, "title": "a pull", "pull_request": map[string]any{"url": "x"}},
			},
		})
	})
	client := newTestClient(t, mux)

	issues, err := client.SearchIssues(context.Background(), `repo:acme/widgets is:issue`)

	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, 1, issues[0].GetNumber())
	assert.Equal(t, 3, issues[1].GetNumber())
	assert.Len(t, queries, 2)
	assert.Equal(t, `repo:acme/widgets is:issue`, queries[0])
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		headers   map[string]string
		transient bool
		is        error
	}{
		{name: "server error is transient", status: http.StatusBadGateway, transient: true},
		{name: "not found is permanent", status: http.StatusNotFound, is: domain.ErrNotFound},
		{name: "unauthorized is permanent", status: http.StatusUnauthorized, is: domain.ErrAuthInvalid},
		{
			name:   "exhausted quota is rate limited",
			status: http.StatusForbidden,
			headers: map[string]string{
				HeaderRateRemaining: "0",
				HeaderRateLimit:     "5000",
				HeaderRateReset:     strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
			},
			transient: true,
			is:        domain.ErrRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/repos/acme/widgets/issues/7", func(w http.ResponseWriter, _ *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"nope"}`))
			})
			client := newTestClient(t, mux)

			_, err := client.GetIssue(context.Background(), "acme", "widgets", 7)

			require.Error(t, err)
			assert.Equal(t, tt.transient, domain.IsTransient(err))
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestClient_WrapError(t *testing.T) {
	client := NewClient(&mockTokenProvider{token: "t"}, nil)

	assert.NoError(t, client.wrapError(nil, "op"))

	err := client.wrapError(errors.New("boom"), "fetch data")
	assert.EqualError(t, err, "fetch data: boom")
	assert.False(t, domain.IsTransient(err))

	err = client.wrapError(context.DeadlineExceeded, "fetch data")
	assert.True(t, domain.IsTransient(err))

	err = client.wrapError(context.Canceled, "fetch data")
	assert.False(t, domain.IsTransient(err))

	retryAfter := 30 * time.Second
	err = client.wrapError(&gh.AbuseRateLimitError{RetryAfter: &retryAfter}, "search")
	assert.True(t, IsRateLimited(err))
	assert.True(t, domain.IsTransient(err))
}

func TestClient_RequiresToken(t *testing.T) {
	client := NewClient(&mockTokenProvider{}, nil)

	_, err := client.SearchIssues(context.Background(), "repo:a/b")
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	client = NewClient(&mockTokenProvider{err: errors.New("keychain locked")}, nil)
	_, err = client.SearchIssues(context.Background(), "repo:a/b")
	assert.ErrorContains(t, err, "keychain locked")

	client = NewClient(nil, nil)
	_, err = client.SearchIssues(context.Background(), "repo:a/b")
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestClient_ValidateCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderRateRemaining, "4321")
		writeJSON(t, w, map[string]any{"login": "octocat"})
	})
	client := newTestClient(t, mux)

	login, err := client.ValidateCredentials(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "octocat", login)
	assert.Equal(t, 4321, client.RateLimiter().Remaining())
}

func TestRateLimiter_UpdateFromResponse(t *testing.T) {
	r := NewRateLimiter(0)
	assert.Equal(t, GitHubRateLimit, r.Remaining())

	reset := time.Now().Add(time.Hour).Unix()
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "12")
	resp.Header.Set(HeaderRateLimit, "60")
	resp.Header.Set(HeaderRateReset, strconv.FormatInt(reset, 10))
	r.UpdateFromResponse(resp)

	assert.Equal(t, 12, r.Remaining())
	assert.Equal(t, 60, r.Limit())
	assert.Equal(t, reset, r.ResetTime().Unix())

	r.UpdateFromResponse(nil)
	assert.Equal(t, 12, r.Remaining())
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	r := NewRateLimiter(1000)
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "0")
	resp.Header.Set(HeaderRateReset, strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
	r.UpdateFromResponse(resp)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestErrors(t *testing.T) {
	notFound := &APIError{StatusCode: 404, Message: "Not Found", URL: "https://api.github.com/x"}
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsUnauthorized(notFound))
	assert.False(t, notFound.Temporary())
	assert.Equal(t, "github: API error 404: Not Found (URL: https://api.github.com/x)", notFound.Error())

	assert.True(t, IsUnauthorized(&APIError{StatusCode: 401}))
	assert.True(t, (&APIError{StatusCode: 500}).Temporary())
	assert.True(t, (&APIError{StatusCode: 429}).Temporary())

	rl := &RateLimitError{ResetAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "github: rate limit exceeded, resets at 2025-01-01T00:00:00Z", rl.Error())
	assert.ErrorIs(t, rl, domain.ErrRateLimited)
}
