package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quire/internal/adapters/driven/auth"
	"github.com/custodia-labs/quire/internal/adapters/driven/sink/file"
	"github.com/custodia-labs/quire/internal/connectors/github"
	"github.com/custodia-labs/quire/internal/core/ports/driving"
	"github.com/custodia-labs/quire/internal/core/services"
	ghrender "github.com/custodia-labs/quire/internal/renderers/github"
)

// IssuePattern names issue artifacts.
const IssuePattern = "issues_%02d.md"

var (
	issuesRepo  string
	issuesLabel string
	issuesState string
	issuesFlags pipelineFlags
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Bundle the issues of a GitHub repository",
	Long: `Fetch every issue of a repository matching a label and state, with its
comments, and write them as markdown into --buckets files named issues_01.md,
issues_02.md and so on.

The token is read from $GITHUB_TOKEN, else from the github.token setting
(see "quire auth github").`,
	Example: `  quire issues --repo acme/widgets --label "Product:Aurea ACRM" --buckets 5`,
	Args:    cobra.NoArgs,
	RunE:    runIssues,
}

func init() {
	issuesCmd.Flags().StringVarP(&issuesRepo, "repo", "r", "", "repository as owner/name (default github.repo)")
	issuesCmd.Flags().StringVarP(&issuesLabel, "label", "l", "", "only issues with this label (default github.label)")
	issuesCmd.Flags().StringVar(&issuesState, "state", "", "open, closed or all (default github.state, else all)")
	issuesFlags.register(issuesCmd)
	rootCmd.AddCommand(issuesCmd)
}

func runIssues(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	query, err := github.ParseIssueQuery(
		firstNonEmpty(issuesRepo, a.Settings.String(services.KeyGitHubRepo)),
		firstNonEmpty(issuesLabel, a.Settings.String(services.KeyGitHubLabel)),
		firstNonEmpty(issuesState, a.Settings.String(services.KeyGitHubState)),
	)
	if err != nil {
		return err
	}

	cfg, err := issuesFlags.config(cmd, a, IssuePattern)
	if err != nil {
		return err
	}

	outDir := issuesFlags.output
	if outDir == "" {
		outDir = filepath.Join(a.Settings.String(services.KeyOutputDir), query.OutputDir())
	}

	tokens := auth.NewPATProvider(auth.GitHubTokenEnv, services.KeyGitHubToken, a.Config)
	client := newGitHubClient(tokens)

	job := driving.Job{
		Kind:       "issues",
		Enumerator: github.NewIssueEnumerator(client, query),
		Source:     github.NewIssueSource(client, query),
		Renderer:   ghrender.NewIssue(),
		Sink:       file.New(outDir),
	}
	return runJob(cmd, a, cfg, job)
}

// newGitHubClient builds the API client. Tests point it at a fake server.
var newGitHubClient = func(tokens *auth.PATProvider) *github.Client {
	return github.NewClient(tokens, github.NewRateLimiter(github.ProactiveRate))
}
