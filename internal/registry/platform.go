package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourceplane/liteprov/internal/model"
)

// WhoAmI describes the account the platform tooling is signed in with
func (c *Client) WhoAmI(ctx context.Context) (string, error) {
	out, err := c.exec.Output(ctx, c.pac, "auth", "who")
	if err != nil {
		return "", fmt.Errorf("failed to show platform account: %w", err)
	}
	return out, nil
}

// PlatformLogin runs the interactive platform sign-in
func (c *Client) PlatformLogin(ctx context.Context) error {
	if err := c.exec.Attach(ctx, c.pac, "auth", "create"); err != nil {
		return fmt.Errorf("failed to sign in to the platform: %w", err)
	}
	return nil
}

// FindPlatformEnvironment returns the URL of the environment whose host starts with domain
func (c *Client) FindPlatformEnvironment(ctx context.Context, domain string) (string, bool, error) {
	out, err := c.exec.Output(ctx, c.pac, "admin", "list")
	if err != nil {
		return "", false, fmt.Errorf("failed to list platform environments: %w", err)
	}

	var matches []string
	for _, field := range strings.Fields(out) {
		if !strings.HasPrefix(field, "https://") {
			continue
		}
		host := strings.TrimPrefix(field, "https://")
		if strings.HasPrefix(strings.ToLower(host), strings.ToLower(domain)+".") {
			matches = append(matches, field)
		}
	}

	switch len(matches) {
	case 0:
		return "", false, nil
	case 1:
		return matches[0], true, nil
	default:
		return "", false, fmt.Errorf("platform environment %s: %w: %s", domain, ErrAmbiguous, strings.Join(matches, ", "))
	}
}

// CreatePlatformEnvironment creates a platform environment and returns the raw tool output
func (c *Client) CreatePlatformEnvironment(ctx context.Context, spec model.PlatformEnvironmentSpec) (string, error) {
	c.logger.Info("creating platform environment", "name", spec.Name, "domain", spec.Domain, "region", spec.Region)
	out, err := c.exec.Output(ctx, c.pac, "admin", "create",
		"--name", spec.Name,
		"--domain", spec.Domain,
		"--type", spec.Type,
		"--region", spec.Region,
		"--language", spec.Language,
		"--currency", spec.Currency)
	if err != nil {
		return "", fmt.Errorf("failed to create platform environment %s: %w", spec.Name, err)
	}
	return out, nil
}
