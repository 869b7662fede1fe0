package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDiffFixtures writes two markdown files differing by one paragraph.
func writeDiffFixtures(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.md")
	newPath := filepath.Join(dir, "new.md")

	oldContent := "# Notes\n\n## Updates\n\nShipping plan reviewed.\n"
	newContent := "# Notes\n\n## Updates\n\nShipping plan reviewed.\n\nIncident process agreed for the rollout.\n"
	require.NoError(t, os.WriteFile(oldPath, []byte(oldContent), 0600))
	require.NoError(t, os.WriteFile(newPath, []byte(newContent), 0600))
	return oldPath, newPath
}

func TestDiffCmd_Summary(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	oldPath, newPath := writeDiffFixtures(t)

	out, err := execute(t, "diff", oldPath, newPath)
	require.NoError(t, err)

	assert.Contains(t, out, "paragraphs added: 1")
	assert.Contains(t, out, "similarity:")
}

func TestDiffCmd_NewOnly(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	oldPath, newPath := writeDiffFixtures(t)
	defer func() { diffNewOnly = false }()

	out, err := execute(t, "diff", "--new-only", oldPath, newPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Incident process agreed")
	assert.NotContains(t, out, "Shipping plan reviewed")
}

func TestDiffCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "diff", "/nonexistent/old.md", "/nonexistent/new.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read")
}

func TestDiffCmd_RequiresTwoArgs(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "diff", "only-one.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}
