// Package platform resolves the platform environment a deployment
// environment targets: an existing one named by the operator, or one
// generated from a declarative template.
package platform

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sourceplane/liteprov/internal/confirm"
	"github.com/sourceplane/liteprov/internal/model"
)

var (
	// ErrUnparseableOutput means the creation output did not contain an environment URL
	ErrUnparseableOutput = errors.New("could not find the environment URL in the creation output")
	// ErrRejected means the operator rejected the displayed template
	ErrRejected = errors.New("platform environment template rejected")
	// ErrApplicationUserUnsupported is returned by AssignApplicationUser
	ErrApplicationUserUnsupported = errors.New("assigning an application user in the platform environment is not implemented")
)

// Registry is the platform environment registry
type Registry interface {
	FindPlatformEnvironment(ctx context.Context, domain string) (string, bool, error)
	CreatePlatformEnvironment(ctx context.Context, spec model.PlatformEnvironmentSpec) (string, error)
}

// TemplateSource loads the declarative template on demand
type TemplateSource func() (*model.PlatformTemplate, error)

// Resolver picks or creates the platform environment
type Resolver struct {
	registry Registry
	gate     confirm.Gate
	template TemplateSource
	logger   *slog.Logger
}

func NewResolver(registry Registry, gate confirm.Gate, template TemplateSource, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{registry: registry, gate: gate, template: template, logger: logger}
}

// Resolve returns the platform environment for a deployment environment.
// persisted is the URL stored by an earlier run, if any.
func (r *Resolver) Resolve(ctx context.Context, environment, persisted string) (*model.PlatformEnvironment, error) {
	if persisted != "" {
		ok, err := r.gate.Confirm("Keep using this platform environment?", "Platform environment: "+persisted)
		if err != nil {
			return nil, err
		}
		if ok {
			return &model.PlatformEnvironment{URL: persisted, Source: model.PlatformPersisted}, nil
		}
	}

	url, err := r.gate.Ask("Existing platform environment URL (leave empty to create one):")
	if err != nil {
		return nil, err
	}
	if url != "" {
		return &model.PlatformEnvironment{URL: url, Source: model.PlatformSupplied}, nil
	}

	return r.generate(ctx, environment)
}

func (r *Resolver) generate(ctx context.Context, environment string) (*model.PlatformEnvironment, error) {
	tmpl, err := r.template()
	if err != nil {
		return nil, fmt.Errorf("failed to load platform template: %w", err)
	}
	spec := Derive(tmpl, environment)

	ok, err := r.gate.Confirm("Create this platform environment?", Describe(spec))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRejected
	}

	if url, found, err := r.registry.FindPlatformEnvironment(ctx, spec.Domain); err != nil {
		return nil, err
	} else if found {
		r.logger.Info("platform environment already exists", "domain", spec.Domain, "url", url)
		return &model.PlatformEnvironment{URL: url, Name: spec.Name, Domain: spec.Domain, Source: model.PlatformFound}, nil
	}

	out, err := r.registry.CreatePlatformEnvironment(ctx, spec)
	if err != nil {
		return nil, err
	}

	url, err := ParseEnvironmentURL(out, spec.Domain)
	if err != nil {
		return nil, err
	}
	return &model.PlatformEnvironment{URL: url, Name: spec.Name, Domain: spec.Domain, Source: model.PlatformCreated}, nil
}

// Derive resolves a template against an environment name. The domain is lowercased.
func Derive(tmpl *model.PlatformTemplate, environment string) model.PlatformEnvironmentSpec {
	return model.PlatformEnvironmentSpec{
		Name:     tmpl.NamePrefix + environment,
		Domain:   strings.ToLower(tmpl.DomainPrefix + environment),
		Type:     tmpl.Type,
		Region:   tmpl.Region,
		Language: tmpl.Language,
		Currency: tmpl.Currency,
	}
}

// Describe renders a spec for operator review
func Describe(spec model.PlatformEnvironmentSpec) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  Name:     %s\n", spec.Name)
	fmt.Fprintf(&sb, "  Domain:   %s\n", spec.Domain)
	fmt.Fprintf(&sb, "  Type:     %s\n", spec.Type)
	fmt.Fprintf(&sb, "  Region:   %s\n", spec.Region)
	fmt.Fprintf(&sb, "  Language: %s\n", spec.Language)
	fmt.Fprintf(&sb, "  Currency: %s", spec.Currency)
	return sb.String()
}

// ParseEnvironmentURL extracts the environment URL from creation output.
// The line mentioning the URL is preferred; otherwise the first https URL
// whose host starts with the domain is used.
func ParseEnvironmentURL(output, domain string) (string, error) {
	var candidates []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		for _, field := range strings.Fields(line) {
			if !strings.HasPrefix(field, "https://") {
				continue
			}
			url := strings.TrimRight(field, ".,;)\"'")
			if strings.Contains(strings.ToLower(line), "environment url") {
				return url, nil
			}
			candidates = append(candidates, url)
		}
	}

	prefix := "https://" + strings.ToLower(domain) + "."
	for _, url := range candidates {
		if domain == "" || strings.HasPrefix(strings.ToLower(url), prefix) {
			return url, nil
		}
	}
	return "", ErrUnparseableOutput
}

// AssignApplicationUser would register the integration identity as an
// application user inside the platform environment.
// TODO: drive `pac admin assign-user --application-user` once the security role to grant is decided.
func AssignApplicationUser(ctx context.Context, environmentURL, appID string) error {
	return ErrApplicationUserUnsupported
}
