package git

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExposureChecker reports whether files under the project would end up in a commit
type ExposureChecker struct {
	root string
}

// NewExposureChecker creates a checker for the repository containing root
func NewExposureChecker(root string) *ExposureChecker {
	return &ExposureChecker{root: root}
}

// IsExposed reports whether path is tracked, or untracked and not ignored.
// Outside a repository nothing is exposed.
func (ec *ExposureChecker) IsExposed(ctx context.Context, path string) (bool, error) {
	rel, err := ec.relative(path)
	if err != nil {
		return false, err
	}

	tracked, err := ec.match(ctx, "ls-files", "--error-unmatch", "--", rel)
	if err != nil {
		if errors.Is(err, errNotRepository) {
			return false, nil
		}
		return false, err
	}
	if tracked {
		return true, nil
	}

	ignored, err := ec.match(ctx, "check-ignore", "-q", "--", rel)
	if err != nil {
		if errors.Is(err, errNotRepository) {
			return false, nil
		}
		return false, err
	}
	return !ignored, nil
}

var errNotRepository = errors.New("not a git repository")

// match runs a git query that signals "no match" with exit status 1
func (ec *ExposureChecker) match(ctx context.Context, args ...string) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = ec.root
	var stderr strings.Builder
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() == 1 {
			return false, nil
		}
		if strings.Contains(strings.ToLower(stderr.String()), "not a git repository") {
			return false, errNotRepository
		}
	}
	if errors.Is(err, exec.ErrNotFound) {
		return false, errNotRepository
	}
	return false, err
}

func (ec *ExposureChecker) relative(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Rel(ec.root, path)
}
