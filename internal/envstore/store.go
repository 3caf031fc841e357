// Package envstore reads and writes the per-environment variable store kept
// under the project's .azure directory.
//
// Layout:
//
//	.azure/config.json      {"defaultEnvironment": "dev"}
//	.azure/<env>/.env       KEY="value" lines
package envstore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sourceplane/liteprov/internal/loader"
)

const (
	stateDir     = ".azure"
	registryFile = "config.json"
	dotenvFile   = ".env"
)

var (
	// ErrNotConfigured means the one-time environment initialization never ran
	ErrNotConfigured = errors.New("no default environment configured")
	// ErrEnvironmentNotFound means the named environment was never initialized
	ErrEnvironmentNotFound = errors.New("environment not found")
)

// Store is the durable key-value configuration of the project's environments
type Store struct {
	root   string
	loader *loader.Loader
}

// NewStore creates a store rooted at the project directory
func NewStore(projectRoot string, l *loader.Loader) *Store {
	return &Store{root: projectRoot, loader: l}
}

// Root returns the project directory the store reads from
func (s *Store) Root() string {
	return s.root
}

// Path returns the variables file of an environment
func (s *Store) Path(env string) string {
	return filepath.Join(s.root, stateDir, env, dotenvFile)
}

// DefaultEnvironment returns the environment selected by the initialization step
func (s *Store) DefaultEnvironment() (string, error) {
	path := filepath.Join(s.root, stateDir, registryFile)
	registry, err := s.loader.LoadRegistry(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}
	return registry.DefaultEnvironment, nil
}

// Environments lists the initialized environments
func (s *Store) Environments() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, stateDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", stateDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Get returns a variable of an environment. Unknown keys are reported as absent.
func (s *Store) Get(env, key string) (string, bool, error) {
	values, err := s.Values(env)
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Values returns all variables of an environment
func (s *Store) Values(env string) (map[string]string, error) {
	lines, err := s.readLines(env)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string)
	for _, line := range lines {
		if key, value, ok := parseLine(line); ok {
			values[key] = value
		}
	}
	return values, nil
}

// Set writes a variable, replacing an existing assignment in place
func (s *Store) Set(env, key, value string) error {
	lines, err := s.readLines(env)
	if err != nil {
		return err
	}

	entry := key + "=" + strconv.Quote(value)
	out := make([]string, 0, len(lines)+1)
	replaced := false
	for _, line := range lines {
		if k, _, ok := parseLine(line); ok && k == key {
			if !replaced {
				out = append(out, entry)
				replaced = true
			}
			continue
		}
		out = append(out, line)
	}
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}
	if !replaced {
		out = append(out, entry)
	}

	return s.writeLines(env, out)
}

func (s *Store) envDir(env string) (string, error) {
	if env == "" || strings.ContainsAny(env, `/\`) || env == "." || env == ".." {
		return "", fmt.Errorf("invalid environment name %q", env)
	}
	dir := filepath.Join(s.root, stateDir, env)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrEnvironmentNotFound, env)
	}
	return dir, nil
}

func (s *Store) readLines(env string) ([]string, error) {
	dir, err := s.envDir(env)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, dotenvFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open variables of %s: %w", env, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read variables of %s: %w", env, err)
	}
	return lines, nil
}

func (s *Store) writeLines(env string, lines []string) error {
	dir, err := s.envDir(env)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".env-*")
	if err != nil {
		return fmt.Errorf("failed to write variables of %s: %w", env, err)
	}
	defer os.Remove(tmp.Name())

	content := strings.Join(lines, "\n") + "\n"
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write variables of %s: %w", env, err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write variables of %s: %w", env, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write variables of %s: %w", env, err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, dotenvFile)); err != nil {
		return fmt.Errorf("failed to write variables of %s: %w", env, err)
	}
	return nil
}

// parseLine splits a KEY=value line. Values may be single or double quoted.
func parseLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")

	idx := strings.Index(line, "=")
	if idx <= 0 {
		return "", "", false
	}

	key := strings.TrimSpace(line[:idx])
	value := strings.TrimSpace(line[idx+1:])
	return key, unquote(value), true
}

func unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	switch {
	case value[0] == '"' && value[len(value)-1] == '"':
		if v, err := strconv.Unquote(value); err == nil {
			return v
		}
		return value[1 : len(value)-1]
	case value[0] == '\'' && value[len(value)-1] == '\'':
		return value[1 : len(value)-1]
	}
	return value
}
