package github

import (
	"fmt"
	"regexp"
	"strings"
)

// Issue states accepted by the search qualifier.
const (
	StateOpen   = "open"
	StateClosed = "closed"
	StateAll    = "all"
)

// IssueQuery selects the issues of one repository.
type IssueQuery struct {
	// Owner and Repo identify the repository.
	Owner string
	Repo  string

	// Label restricts results to issues carrying this label. Optional.
	Label string

	// State is open, closed, or all. Empty means all.
	State string
}

// ParseIssueQuery builds a query from "owner/name", a label, and a state.
func ParseIssueQuery(repo, label, state string) (IssueQuery, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(repo), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return IssueQuery{}, fmt.Errorf("%w: %q", ErrInvalidRepo, repo)
	}

	state = strings.ToLower(strings.TrimSpace(state))
	switch state {
	case "", StateAll:
		state = StateAll
	case StateOpen, StateClosed:
	default:
		return IssueQuery{}, fmt.Errorf("%w: %q", ErrInvalidState, state)
	}

	return IssueQuery{
		Owner: owner,
		Repo:  name,
		Label: strings.TrimSpace(label),
		State: state,
	}, nil
}

// FullName returns "owner/name".
func (q IssueQuery) FullName() string {
	return q.Owner + "/" + q.Repo
}

// Search returns the issue search string, e.g.
// `repo:acme/widgets label:"Product:Aurea ACRM" is:issue`.
func (q IssueQuery) Search() string {
	parts := []string{"repo:" + q.FullName()}
	if q.Label != "" {
		parts = append(parts, fmt.Sprintf("label:%q", q.Label))
	}
	parts = append(parts, "is:issue")
	if q.State == StateOpen || q.State == StateClosed {
		parts = append(parts, "state:"+q.State)
	}
	return strings.Join(parts, " ")
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// OutputDir names the directory the issue artifacts are written to.
// The label's text after the last colon is slugged:
// "Product:Aurea ACRM" becomes "aurea_acrm_github_issues". Without a label
// the repository name is used.
func (q IssueQuery) OutputDir() string {
	base := q.Repo
	if q.Label != "" {
		parts := strings.Split(q.Label, ":")
		base = parts[len(parts)-1]
	}
	slug := strings.ToLower(strings.Trim(nonAlnum.ReplaceAllString(base, "_"), "_"))
	if slug == "" {
		slug = "repo"
	}
	return slug + "_github_issues"
}
