package github

import (
	"encoding/json"
	"fmt"
	"strings"

	ghconn "github.com/custodia-labs/quire/internal/connectors/github"
	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
)

const (
	dateLayout   = "2006-01-02"
	noAssignees  = "–"
	noBody       = "*No description*"
	separatorStr = "\n\n---\n"
)

// Ensure IssueRenderer implements the interface.
var _ driven.Renderer = (*IssueRenderer)(nil)

// IssueRenderer renders issue JSON produced by the GitHub connector.
type IssueRenderer struct{}

// NewIssue creates a new GitHub issue renderer.
func NewIssue() *IssueRenderer {
	return &IssueRenderer{}
}

// Separator returns the horizontal rule written between issues.
func (r *IssueRenderer) Separator() []byte {
	return []byte(separatorStr)
}

// Render converts one issue to markdown.
func (r *IssueRenderer) Render(ref domain.ItemRef, content *domain.Content) ([]byte, error) {
	if content == nil || len(content.Data) == 0 {
		return nil, fmt.Errorf("issue %s: empty content", ref.ID)
	}

	var issue ghconn.IssueContent
	if err := json.Unmarshal(content.Data, &issue); err != nil {
		return nil, fmt.Errorf("parse issue %s: %w", ref.ID, err)
	}

	state := "open"
	if issue.State == "closed" {
		state = "closed"
	}
	assignees := strings.Join(issue.Assignees, ", ")
	if assignees == "" {
		assignees = noAssignees
	}
	body := issue.Body
	if strings.TrimSpace(body) == "" {
		body = noBody
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## #%d · %s\n", issue.Number, issue.Title)
	fmt.Fprintf(&sb, "*%s* · opened %s by **%s** · assignees: %s\n\n",
		state, issue.CreatedAt.Format(dateLayout), issue.Author, assignees)
	fmt.Fprintf(&sb, "Labels: %s\n\n", strings.Join(issue.Labels, ", "))
	sb.WriteString(body)
	sb.WriteString("\n")

	for _, c := range issue.Comments {
		fmt.Fprintf(&sb, "\n> **%s** commented %s:\n>\n", c.Author, c.CreatedAt.Format(dateLayout))
		sb.WriteString(quote(c.Body))
		sb.WriteString("\n")
	}

	return []byte(sb.String()), nil
}

// quote prefixes every line of s with "> ".
func quote(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}
