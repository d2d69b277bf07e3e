package github

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// PageSize is the page size for list and search requests.
	PageSize = 100
)

// Client wraps the go-github client with rate limiting and error mapping.
type Client struct {
	mu            sync.Mutex
	gh            *gh.Client
	tokenProvider driven.TokenProvider
	rateLimiter   *RateLimiter
}

// NewClient creates a GitHub API client that authenticates lazily with the
// token provider's token.
func NewClient(tokenProvider driven.TokenProvider, limiter *RateLimiter) *Client {
	if limiter == nil {
		limiter = NewRateLimiter(ProactiveRate)
	}
	return &Client{
		tokenProvider: tokenProvider,
		rateLimiter:   limiter,
	}
}

// NewClientWithHTTPClient creates a client over a preconfigured go-github client.
func NewClientWithHTTPClient(client *gh.Client, limiter *RateLimiter) *Client {
	if limiter == nil {
		limiter = NewRateLimiter(ProactiveRate)
	}
	return &Client{
		gh:          client,
		rateLimiter: limiter,
	}
}

// ensureClient initializes the go-github client on first use.
func (c *Client) ensureClient(ctx context.Context) (*gh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gh != nil {
		return c.gh, nil
	}
	if c.tokenProvider == nil {
		return nil, domain.ErrAuthRequired
	}

	token, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}
	if token == "" {
		return nil, fmt.Errorf("github: %w", domain.ErrAuthRequired)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.WithoutCancel(ctx), ts)
	tc.Timeout = DefaultTimeout
	c.gh = gh.NewClient(tc)

	return c.gh, nil
}

// SearchIssues returns every issue matching query, oldest first.
func (c *Client) SearchIssues(ctx context.Context, query string) ([]*gh.Issue, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	opts := &gh.SearchOptions{
		Sort:        "created",
		Order:       "asc",
		ListOptions: gh.ListOptions{PerPage: PageSize},
	}

	var all []*gh.Issue
	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		result, resp, err := client.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, c.wrapError(err, "search issues")
		}
		c.updateRateLimitFromResponse(resp)

		for _, issue := range result.Issues {
			if !issue.IsPullRequest() {
				all = append(all, issue)
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// GetIssue fetches a single issue.
func (c *Client) GetIssue(ctx context.Context, owner, repo string, number int) (*gh.Issue, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	issue, resp, err := client.Issues.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, c.wrapError(err, "get issue")
	}

	c.updateRateLimitFromResponse(resp)
	return issue, nil
}

// ListIssueComments retrieves all comments for an issue, oldest first.
func (c *Client) ListIssueComments(ctx context.Context, owner, repo string, number int) ([]*gh.IssueComment, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: PageSize},
	}

	var all []*gh.IssueComment
	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		comments, resp, err := client.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, c.wrapError(err, "list comments")
		}

		c.updateRateLimitFromResponse(resp)
		all = append(all, comments...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// ValidateCredentials checks the token by fetching the authenticated user.
func (c *Client) ValidateCredentials(ctx context.Context) (string, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return "", err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	user, resp, err := client.Users.Get(ctx, "")
	if err != nil {
		return "", c.wrapError(err, "validate credentials")
	}

	c.updateRateLimitFromResponse(resp)
	return user.GetLogin(), nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types and marks the
// recoverable ones transient.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		resetAt := time.Now()
		if abuseErr.RetryAfter != nil {
			resetAt = resetAt.Add(*abuseErr.RetryAfter)
		}
		return &RateLimitError{ResetAt: resetAt, Limit: c.rateLimiter.Limit()}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil && ghErr.Response.Request.URL != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		if apiErr.Temporary() {
			return domain.MarkTransient(apiErr)
		}
		return apiErr
	}

	wrapped := fmt.Errorf("%s: %w", operation, err)
	if isNetworkError(err) {
		return domain.MarkTransient(wrapped)
	}
	return wrapped
}

// isNetworkError reports timeouts and connection failures below HTTP.
func isNetworkError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, http.ErrHandlerTimeout)
}
