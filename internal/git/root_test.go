package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootFindsStateDirectory(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(project, ".azure", "dev"), 0o755))
	nested := filepath.Join(project, "src", "functions")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	tests := []struct {
		name    string
		workDir string
	}{
		{name: "project root", workDir: project},
		{name: "nested directory", workDir: nested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, project, NewProjectLocator(tt.workDir).Root(context.Background()))
		})
	}
}
