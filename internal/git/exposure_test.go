package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	cmd := exec.Command("git", "init", "-q")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())

	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".azure", "dev"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".azure", "dev", ".env"), []byte("A=1\n"), 0o600))
	return dir
}

func TestIsExposed(t *testing.T) {
	ctx := context.Background()

	t.Run("not ignored", func(t *testing.T) {
		dir := initRepo(t)
		exposed, err := NewExposureChecker(dir).IsExposed(ctx, filepath.Join(dir, ".azure", "dev", ".env"))
		require.NoError(t, err)
		assert.True(t, exposed)
	})

	t.Run("ignored", func(t *testing.T) {
		dir := initRepo(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(".azure/*/.env\n"), 0o644))

		exposed, err := NewExposureChecker(dir).IsExposed(ctx, filepath.Join(dir, ".azure", "dev", ".env"))
		require.NoError(t, err)
		assert.False(t, exposed)
	})
}
