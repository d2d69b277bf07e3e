package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/testutil/pdftest"
)

func TestMerge_Markdown(t *testing.T) {
	useMemoryApp(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "alpha")
	writeFile(t, filepath.Join(dir, "b.md"), "bravo")
	writeFile(t, filepath.Join(dir, "c.md"), "charlie")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	out, err := execute(t, "merge", dir, "--buckets", "2")

	require.NoError(t, err)
	assert.Contains(t, out, "3 written")

	first, err := os.ReadFile(filepath.Join(dir, MergedDir, "merged_01.md"))
	require.NoError(t, err)
	assert.Equal(t, "# a.md\n\nalpha\n\n---\n# b.md\n\nbravo", string(first))

	second, err := os.ReadFile(filepath.Join(dir, MergedDir, "merged_02.md"))
	require.NoError(t, err)
	assert.Equal(t, "# c.md\n\ncharlie", string(second))
}

func TestMerge_UsesConfiguredBuckets(t *testing.T) {
	a := useMemoryApp(t)
	require.NoError(t, a.Settings.Set("pipeline.buckets", "3"))
	dir := t.TempDir()
	for _, name := range []string{"1.txt", "2.txt", "3.txt"} {
		writeFile(t, filepath.Join(dir, name), name)
	}
	outDir := t.TempDir()

	_, err := execute(t, "merge", dir, "--ext", "txt", "--output", outDir)

	require.NoError(t, err)
	for _, name := range []string{"merged_01.txt", "merged_02.txt", "merged_03.txt"} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}
}

func TestMerge_Empty(t *testing.T) {
	useMemoryApp(t)
	dir := t.TempDir()

	out, err := execute(t, "merge", dir)

	require.NoError(t, err)
	assert.Contains(t, out, "Nothing found")
	assert.NoDirExists(t, filepath.Join(dir, MergedDir))
}

func TestMerge_NotADirectory(t *testing.T) {
	useMemoryApp(t)
	path := filepath.Join(t.TempDir(), "file.md")
	writeFile(t, path, "x")

	_, err := execute(t, "merge", path)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = execute(t, "merge", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestMerge_RejectsBadBucketCount(t *testing.T) {
	useMemoryApp(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "alpha")

	_, err := execute(t, "merge", dir, "--buckets", "0")

	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestMerge_PDF(t *testing.T) {
	useMemoryApp(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.pdf"), pdftest.Minimal(1), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.pdf"), pdftest.Minimal(2), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a pdf"), 0o644))

	out, err := execute(t, "merge", dir, "--ext", ".pdf", "--max-attempts", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "broken.pdf")

	pages, err := api.PageCountFile(filepath.Join(dir, MergedDir, "merged_01.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
}
