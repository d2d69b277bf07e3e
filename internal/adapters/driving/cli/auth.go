package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/term"

	"github.com/custodia-labs/quire/internal/adapters/driven/auth"
	driventoken "github.com/custodia-labs/quire/internal/adapters/driven/oauth"
	"github.com/custodia-labs/quire/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/quire/internal/adapters/driving/oauth"
	"github.com/custodia-labs/quire/internal/connectors/google"
	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/services"
)

var (
	authToken     string
	authNoBrowser bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage GitHub and Google credentials",
}

var authGitHubCmd = &cobra.Command{
	Use:   "github",
	Short: "Store a GitHub personal access token",
	Long: `Check a personal access token against the GitHub API and store it in the
github.token setting. $GITHUB_TOKEN still takes precedence when set.`,
	Args: cobra.NoArgs,
	RunE: runAuthGitHub,
}

var authGoogleCmd = &cobra.Command{
	Use:   "google",
	Short: "Authorise read-only Google Drive access",
	Long: `Open the Google consent page and store the resulting token. The OAuth
client secrets file is downloaded from the Google Cloud console (desktop app).`,
	Args: cobra.NoArgs,
	RunE: runAuthGoogle,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which credentials are configured",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

func init() {
	authGitHubCmd.Flags().StringVar(&authToken, "token", "", "token to store (prompted for when omitted)")
	authGoogleCmd.Flags().StringVar(&driveSecrets, "secrets", "", "OAuth client secrets file (default drive.client_secrets)")
	authGoogleCmd.Flags().StringVar(&driveTokenFile, "token-file", "", "where to store the token (default drive.token_file)")
	authGoogleCmd.Flags().BoolVar(&authNoBrowser, "no-browser", false, "print the consent URL without opening a browser")
	authCmd.AddCommand(authGitHubCmd, authGoogleCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthGitHub(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	token := strings.TrimSpace(authToken)
	if token == "" {
		if token, err = readSecret(cmd, "GitHub token: "); err != nil {
			return err
		}
	}
	if token == "" {
		return fmt.Errorf("%w: empty token", domain.ErrInvalidArgument)
	}

	candidate := memory.NewConfigStore()
	_ = candidate.Set(services.KeyGitHubToken, token)
	login, err := newGitHubClient(auth.NewPATProvider("", services.KeyGitHubToken, candidate)).
		ValidateCredentials(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("validate token: %w", err)
	}

	if err := a.Config.Set(services.KeyGitHubToken, token); err != nil {
		return err
	}
	if err := a.Config.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Authenticated as %s\n", style.Success.Render("✓"), login)
	return nil
}

// readSecret prompts for a value without echo when stdin is a terminal,
// else reads one line from the command's input.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)

	if cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runAuthGoogle(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	provider, err := googleTokenProvider(a)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	prompt := func(authURL string) error {
		fmt.Fprintf(out, "Open this URL to authorise quire:\n\n  %s\n\n", authURL)
		if !authNoBrowser {
			if err := oauth.OpenBrowser(authURL); err != nil {
				fmt.Fprintln(out, style.Muted.Render("Could not open a browser; use the URL above."))
			}
		}
		return nil
	}

	ctx := commandContext(cmd)
	tok, err := authorizeGoogle(ctx, provider, prompt)
	if err != nil {
		return err
	}
	if err := provider.Save(tok); err != nil {
		return err
	}

	svc, err := google.NewDriveService(ctx, google.NewTokenSource(ctx, provider))
	if err != nil {
		return err
	}
	email, err := google.AccountEmail(ctx, svc)
	if err != nil {
		fmt.Fprintf(out, "%s Token saved to %s\n", style.Success.Render("✓"), driveTokenPath(a))
		return nil
	}
	fmt.Fprintf(out, "%s Authorised %s, token saved to %s\n", style.Success.Render("✓"), email, driveTokenPath(a))
	return nil
}

// authorizeGoogle runs the browser consent flow. Tests replace it.
var authorizeGoogle = func(ctx context.Context, p *auth.GoogleTokenProvider, prompt oauth.Prompt) (*oauth2.Token, error) {
	return oauth.Authorize(ctx, p.Config(), prompt)
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	pat := auth.NewPATProvider(auth.GitHubTokenEnv, services.KeyGitHubToken, a.Config)
	switch pat.Source() {
	case "env":
		fmt.Fprintf(out, "%-8s %s\n", "GitHub", style.Success.Render("token from $"+auth.GitHubTokenEnv))
	case "config":
		fmt.Fprintf(out, "%-8s %s\n", "GitHub", style.Success.Render("token from "+services.KeyGitHubToken))
	default:
		fmt.Fprintf(out, "%-8s %s\n", "GitHub", style.Warning.Render("not configured"))
	}

	tokenPath := driveTokenPath(a)
	tok, err := driventoken.LoadToken(tokenPath)
	switch {
	case err == nil && tok.RefreshToken != "":
		fmt.Fprintf(out, "%-8s %s\n", "Google", style.Success.Render("authorised ("+tokenPath+")"))
	case err == nil:
		fmt.Fprintf(out, "%-8s %s\n", "Google", style.Warning.Render("token without refresh token, run quire auth google"))
	case errors.Is(err, domain.ErrNotFound):
		fmt.Fprintf(out, "%-8s %s\n", "Google", style.Warning.Render("not configured"))
	default:
		return err
	}
	return nil
}
