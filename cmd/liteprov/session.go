package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sourceplane/liteprov/internal/envstore"
	"github.com/sourceplane/liteprov/internal/git"
	"github.com/sourceplane/liteprov/internal/loader"
	"github.com/sourceplane/liteprov/internal/logging"
	"github.com/sourceplane/liteprov/internal/model"
	"github.com/sourceplane/liteprov/internal/registry"
	"github.com/sourceplane/liteprov/internal/runner"
)

// session is the resolved project context shared by the commands
type session struct {
	root   string
	cfg    model.Config
	loader *loader.Loader
	store  *envstore.Store
	logger *slog.Logger
}

func newSession(ctx context.Context) (*session, error) {
	logger := logging.New(os.Stderr, verbose)

	root := git.NewProjectLocator(projectDir).Root(ctx)
	l, err := loader.NewLoader()
	if err != nil {
		return nil, err
	}

	cfg, err := l.LoadConfig(filepath.Join(root, model.ConfigFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	resolved := resolveConfig(*cfg)
	logger.Debug("resolved project", "root", root, "template", resolved.Template, "roles", resolved.Roles)

	return &session{
		root:   root,
		cfg:    resolved,
		loader: l,
		store:  envstore.NewStore(root, l),
		logger: logger,
	}, nil
}

// resolveConfig applies flag > environment variable > file > default precedence
func resolveConfig(cfg model.Config) model.Config {
	if v := os.Getenv("LITEPROV_TEMPLATE"); v != "" {
		cfg.Template = v
	}
	if v := os.Getenv("LITEPROV_AZ"); v != "" {
		cfg.AzCommand = v
	}
	if v := os.Getenv("LITEPROV_PAC"); v != "" {
		cfg.PacCommand = v
	}
	if templatePath != "" {
		cfg.Template = templatePath
	}
	return cfg.WithDefaults()
}

func (s *session) templateFile() string {
	if filepath.IsAbs(s.cfg.Template) {
		return s.cfg.Template
	}
	return filepath.Join(s.root, s.cfg.Template)
}

func (s *session) loadTemplate() (*model.PlatformTemplate, error) {
	return s.loader.LoadTemplate(s.templateFile())
}

// registryClient streams interactive sign-in output to out
func (s *session) registryClient(out io.Writer) *registry.Client {
	r := runner.NewRunner(os.Stdin, out, os.Stderr, s.logger)
	return registry.NewClient(r, s.cfg.AzCommand, s.cfg.PacCommand, s.logger)
}

// environment returns the flag value or the project's default environment
func (s *session) environment() (string, error) {
	if environmentName != "" {
		return environmentName, nil
	}
	return s.store.DefaultEnvironment()
}
