package github

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
	"github.com/custodia-labs/quire/internal/logger"
)

// MIMETypeGitHubIssue is the custom MIME type for GitHub issues.
const MIMETypeGitHubIssue = "application/vnd.github.issue+json"

// Item metadata keys.
const (
	metaNumber = "number"
	metaIssue  = "issue"
)

// Ensure the issue adapters implement the pipeline ports.
var (
	_ driven.Enumerator    = (*IssueEnumerator)(nil)
	_ driven.ContentSource = (*IssueSource)(nil)
)

// IssueContent is the JSON document produced for each issue.
type IssueContent struct {
	Number    int              `json:"number"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	State     string           `json:"state"`
	Author    string           `json:"author"`
	URL       string           `json:"url"`
	CreatedAt time.Time        `json:"created_at"`
	Labels    []string         `json:"labels"`
	Assignees []string         `json:"assignees"`
	Comments  []CommentContent `json:"comments"`
}

// CommentContent represents a comment in the issue content.
type CommentContent struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// IssueEnumerator lists the issues matching a query.
type IssueEnumerator struct {
	client *Client
	query  IssueQuery
}

// NewIssueEnumerator creates an enumerator for query.
func NewIssueEnumerator(client *Client, query IssueQuery) *IssueEnumerator {
	return &IssueEnumerator{client: client, query: query}
}

// ListItems runs the search and returns one reference per issue, oldest first.
func (e *IssueEnumerator) ListItems(ctx context.Context) ([]domain.ItemRef, error) {
	q := e.query.Search()
	logger.Info("Querying GitHub for: %s", q)

	issues, err := e.client.SearchIssues(ctx, q)
	if err != nil {
		return nil, err
	}

	items := make([]domain.ItemRef, len(issues))
	for i, issue := range issues {
		items[i] = domain.ItemRef{
			ID:    strconv.Itoa(issue.GetNumber()),
			Title: issue.GetTitle(),
			URI:   issue.GetHTMLURL(),
			Metadata: map[string]any{
				metaNumber: issue.GetNumber(),
				metaIssue:  issue,
			},
		}
	}
	logger.Info("Retrieved %d issues", len(items))
	return items, nil
}

// IssueSource loads an issue with its comments.
type IssueSource struct {
	client *Client
	query  IssueQuery
}

// NewIssueSource creates a source for issues of the query's repository.
func NewIssueSource(client *Client, query IssueQuery) *IssueSource {
	return &IssueSource{client: client, query: query}
}

// Read returns the issue as IssueContent JSON. The issue captured during
// enumeration is reused; only its comments are fetched.
func (s *IssueSource) Read(ctx context.Context, ref domain.ItemRef) (*domain.Content, error) {
	issue, _ := ref.Metadata[metaIssue].(*gh.Issue)
	if issue == nil {
		number, err := issueNumber(ref)
		if err != nil {
			return nil, err
		}
		issue, err = s.client.GetIssue(ctx, s.query.Owner, s.query.Repo, number)
		if err != nil {
			return nil, err
		}
	}

	var comments []*gh.IssueComment
	if issue.GetComments() > 0 {
		var err error
		comments, err = s.client.ListIssueComments(ctx, s.query.Owner, s.query.Repo, issue.GetNumber())
		if err != nil {
			return nil, err
		}
	}

	data, err := json.Marshal(buildIssueContent(issue, comments))
	if err != nil {
		return nil, fmt.Errorf("encode issue %d: %w", issue.GetNumber(), err)
	}
	return &domain.Content{Data: data, MIMEType: MIMETypeGitHubIssue}, nil
}

func issueNumber(ref domain.ItemRef) (int, error) {
	if n, ok := ref.Metadata[metaNumber].(int); ok && n > 0 {
		return n, nil
	}
	n, err := strconv.Atoi(ref.ID)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrMissingIssue, ref.ID)
	}
	return n, nil
}

// buildIssueContent creates the IssueContent structure.
func buildIssueContent(issue *gh.Issue, comments []*gh.IssueComment) IssueContent {
	labels := make([]string, len(issue.Labels))
	for i, l := range issue.Labels {
		labels[i] = l.GetName()
	}

	assignees := make([]string, len(issue.Assignees))
	for i, a := range issue.Assignees {
		assignees[i] = a.GetLogin()
	}

	commentContents := make([]CommentContent, len(comments))
	for i, c := range comments {
		commentContents[i] = CommentContent{
			Author:    c.GetUser().GetLogin(),
			Body:      c.GetBody(),
			CreatedAt: c.GetCreatedAt().Time,
		}
	}

	return IssueContent{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		State:     issue.GetState(),
		Author:    issue.GetUser().GetLogin(),
		URL:       issue.GetHTMLURL(),
		CreatedAt: issue.GetCreatedAt().Time,
		Labels:    labels,
		Assignees: assignees,
		Comments:  commentContents,
	}
}
