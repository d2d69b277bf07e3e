package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
	gdrive "google.golang.org/api/drive/v3"

	"github.com/custodia-labs/quire/internal/adapters/driven/auth"
	"github.com/custodia-labs/quire/internal/adapters/driven/sink/file"
	"github.com/custodia-labs/quire/internal/connectors/google"
	"github.com/custodia-labs/quire/internal/connectors/google/drive"
	"github.com/custodia-labs/quire/internal/core/ports/driving"
	"github.com/custodia-labs/quire/internal/core/services"
	"github.com/custodia-labs/quire/internal/renderers/markdown"
)

// Files kept in the configuration directory for the Drive connector.
const (
	DefaultClientSecrets = "client_secrets.json"
	DefaultDriveToken    = "drive_token.json"
)

// Drive artifact name patterns.
const (
	DrivePattern       = "merged_%02d.md"
	DriveFolderPattern = "%s.md"
)

var (
	driveRoot      string
	drivePerFolder bool
	driveSecrets   string
	driveTokenFile string
	driveFlags     pipelineFlags
)

var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Bundle markdown files from a Google Drive folder",
	Long: `Walk a Google Drive folder recursively, download every .md file and write
them into --buckets files named merged_01.md, merged_02.md and so on.

With --per-folder each top-level sub-folder of the root becomes one file
named after the folder, and --buckets is ignored.

Run "quire auth google" once to authorise read-only Drive access.`,
	Example: `  quire drive --root 1AbCdEfG --buckets 4
  quire drive --root 1AbCdEfG --per-folder`,
	Args: cobra.NoArgs,
	RunE: runDrive,
}

func init() {
	driveCmd.Flags().StringVar(&driveRoot, "root", "", "root folder ID (default drive.root_folder_id)")
	driveCmd.Flags().BoolVar(&drivePerFolder, "per-folder", false, "write one file per top-level sub-folder")
	driveCmd.Flags().StringVar(&driveSecrets, "secrets", "", "OAuth client secrets file (default drive.client_secrets)")
	driveCmd.Flags().StringVar(&driveTokenFile, "token-file", "", "cached OAuth token file (default drive.token_file)")
	driveFlags.register(driveCmd)
	rootCmd.AddCommand(driveCmd)
}

func runDrive(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	conf := drive.DefaultConfig(firstNonEmpty(driveRoot, a.Settings.String(services.KeyDriveRootFolder)))
	conf.PerFolder = drivePerFolder
	if err := conf.Validate(); err != nil {
		return err
	}

	cfg, err := driveFlags.config(cmd, a, DrivePattern)
	if err != nil {
		return err
	}

	svc, err := newDriveService(cmd.Context(), a)
	if err != nil {
		return err
	}

	limiter := google.NewRateLimiter(google.RateLimitConfig{
		RequestsPerSecond: a.Settings.Float(services.KeyDriveRequestRate),
	})

	outDir := driveFlags.output
	if outDir == "" {
		outDir = filepath.Join(a.Settings.String(services.KeyOutputDir), drive.DefaultOutputDir)
	}

	job := driving.Job{
		Kind:       "drive",
		Enumerator: drive.NewEnumerator(svc, conf, limiter),
		Source:     drive.NewSource(svc, limiter),
		Renderer:   markdown.New(),
		Sink:       file.New(outDir),
	}
	if drivePerFolder {
		job.Plan = driving.PlanByGroup
		job.GroupPattern = DriveFolderPattern
	}
	return runJob(cmd, a, cfg, job)
}

// newDriveService builds an authorised Drive client. Tests replace it.
var newDriveService = func(ctx context.Context, a *App) (*gdrive.Service, error) {
	tokens, err := googleTokenProvider(a)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return google.NewDriveService(ctx, google.NewTokenSource(ctx, tokens))
}

func googleTokenProvider(a *App) (*auth.GoogleTokenProvider, error) {
	conf, err := auth.LoadGoogleConfig(driveSecretsPath(a), google.DriveReadonlyScope)
	if err != nil {
		return nil, err
	}
	return auth.NewGoogleTokenProvider(conf, driveTokenPath(a)), nil
}

func driveSecretsPath(a *App) string {
	return a.Path(firstNonEmpty(driveSecrets, a.Settings.String(services.KeyDriveSecrets), DefaultClientSecrets))
}

func driveTokenPath(a *App) string {
	return a.Path(firstNonEmpty(driveTokenFile, a.Settings.String(services.KeyDriveTokenFile), DefaultDriveToken))
}
