package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ProjectLocator finds the project directory holding the .azure state
type ProjectLocator struct {
	workDir string
}

// NewProjectLocator creates a locator starting at workDir
func NewProjectLocator(workDir string) *ProjectLocator {
	return &ProjectLocator{workDir: workDir}
}

// Root returns the nearest directory at or above the working directory that
// contains .azure. When none does, the repository top level is used, and
// outside a repository the working directory itself.
func (pl *ProjectLocator) Root(ctx context.Context) string {
	dir, err := filepath.Abs(pl.workDir)
	if err != nil {
		dir = pl.workDir
	}

	for d := dir; ; d = filepath.Dir(d) {
		if info, err := os.Stat(filepath.Join(d, ".azure")); err == nil && info.IsDir() {
			return d
		}
		if filepath.Dir(d) == d {
			break
		}
	}

	if top, err := pl.topLevel(ctx); err == nil && top != "" {
		return top
	}
	return dir
}

// topLevel asks git for the repository root
func (pl *ProjectLocator) topLevel(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	cmd.Dir = pl.workDir
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}
