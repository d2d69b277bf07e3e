package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quire/internal/adapters/driven/sink/file"
	pdfsink "github.com/custodia-labs/quire/internal/adapters/driven/sink/pdf"
	"github.com/custodia-labs/quire/internal/connectors/filesystem"
	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driving"
	"github.com/custodia-labs/quire/internal/renderers/markdown"
	pdfrender "github.com/custodia-labs/quire/internal/renderers/pdf"
)

// MergedDir is the sub-folder merge writes to by default.
const MergedDir = "merged"

var (
	mergeExt     string
	mergeDivider bool
	mergeFlags   pipelineFlags
)

var mergeCmd = &cobra.Command{
	Use:   "merge <folder>",
	Short: "Merge the files of a local folder",
	Long: `Merge every file with the given extension directly inside <folder> into
--buckets files named merged_01<ext>, merged_02<ext> and so on, written to
<folder>/merged unless --output is given.

Markdown and text files are joined with a "---" separator under a heading
named after each file. PDF files are merged page by page.`,
	Example: `  quire merge ./notes --buckets 3
  quire merge ./scans --ext .pdf --divider`,
	Args: cobra.ExactArgs(1),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeExt, "ext", "e", ".md", "file extension to merge")
	mergeCmd.Flags().BoolVar(&mergeDivider, "divider", false, "insert a blank page between merged PDFs")
	mergeFlags.register(mergeCmd)
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	folder := args[0]
	info, err := os.Stat(folder)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidArgument, folder)
	}

	ext := filesystem.NormaliseExt(mergeExt)
	cfg, err := mergeFlags.config(cmd, a, "merged_%02d"+ext)
	if err != nil {
		return err
	}

	outDir := firstNonEmpty(mergeFlags.output, filepath.Join(folder, MergedDir))

	job := driving.Job{
		Kind:       "merge",
		Enumerator: filesystem.NewEnumerator(folder, ext),
		Source:     filesystem.NewSource(),
	}
	if ext == ".pdf" {
		job.Renderer = pdfrender.New()
		job.Sink = pdfsink.New(outDir, pdfsink.WithDividerPages(mergeDivider))
	} else {
		job.Renderer = markdown.New()
		job.Sink = file.New(outDir)
	}
	return runJob(cmd, a, cfg, job)
}
