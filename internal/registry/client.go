// Package registry wraps the directory, role assignment and platform
// environment command surfaces behind typed find/create operations.
//
// Lookups never treat an empty result as an error. Mutations are issued once
// and never retried; there is no compensating operation.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sourceplane/liteprov/internal/model"
	"github.com/sourceplane/liteprov/internal/runner"
)

var (
	// ErrAlreadyExists is returned when a create call hits an existing resource
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrAmbiguous is returned when a name lookup matches more than one resource
	ErrAmbiguous = errors.New("lookup matched more than one resource")
	// ErrEmptyResult is returned when a create call succeeds without an identifier
	ErrEmptyResult = errors.New("command returned no identifier")
)

// Client issues registry operations through the az and pac command surfaces
type Client struct {
	exec   runner.Executor
	az     string
	pac    string
	logger *slog.Logger
}

// NewClient creates a registry client. Empty command names default to az and pac.
func NewClient(exec runner.Executor, azCommand, pacCommand string, logger *slog.Logger) *Client {
	if azCommand == "" {
		azCommand = "az"
	}
	if pacCommand == "" {
		pacCommand = "pac"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{exec: exec, az: azCommand, pac: pacCommand, logger: logger}
}

// FindApplication looks up an application registration by display name
func (c *Client) FindApplication(ctx context.Context, displayName string) (string, bool, error) {
	out, err := c.exec.Output(ctx, c.az, "ad", "app", "list",
		"--filter", fmt.Sprintf("displayName eq '%s'", odataEscape(displayName)),
		"--query", "[].appId", "-o", "json")
	if err != nil {
		return "", false, fmt.Errorf("failed to look up application %s: %w", displayName, err)
	}
	return single("application "+displayName, out)
}

// CreateApplication registers an application and returns its app id
func (c *Client) CreateApplication(ctx context.Context, displayName string) (string, error) {
	out, err := c.exec.Output(ctx, c.az, "ad", "app", "create",
		"--display-name", displayName,
		"--query", "appId", "-o", "tsv")
	if err != nil {
		return "", fmt.Errorf("failed to create application %s: %w", displayName, err)
	}
	if out == "" {
		return "", fmt.Errorf("failed to create application %s: %w", displayName, ErrEmptyResult)
	}
	c.logger.Info("created application", "displayName", displayName, "appId", out)
	return out, nil
}

// FindServicePrincipal looks up the service principal of an application
func (c *Client) FindServicePrincipal(ctx context.Context, appID string) (string, bool, error) {
	out, err := c.exec.Output(ctx, c.az, "ad", "sp", "list",
		"--filter", fmt.Sprintf("appId eq '%s'", odataEscape(appID)),
		"--query", "[].id", "-o", "json")
	if err != nil {
		return "", false, fmt.Errorf("failed to look up service principal for %s: %w", appID, err)
	}
	return single("service principal for "+appID, out)
}

// CreateServicePrincipal creates the service principal of an application and returns its object id
func (c *Client) CreateServicePrincipal(ctx context.Context, appID string) (string, error) {
	out, err := c.exec.Output(ctx, c.az, "ad", "sp", "create",
		"--id", appID,
		"--query", "id", "-o", "tsv")
	if err != nil {
		return "", fmt.Errorf("failed to create service principal for %s: %w", appID, err)
	}
	if out == "" {
		return "", fmt.Errorf("failed to create service principal for %s: %w", appID, ErrEmptyResult)
	}
	c.logger.Info("created service principal", "appId", appID, "principalId", out)
	return out, nil
}

// ResetCredential replaces the principal's secret. The previous secret stops working.
func (c *Client) ResetCredential(ctx context.Context, appID string) (string, error) {
	out, err := c.exec.Output(ctx, c.az, "ad", "sp", "credential", "reset",
		"--id", appID,
		"--query", "password", "-o", "tsv")
	if err != nil {
		return "", fmt.Errorf("failed to reset credential of %s: %w", appID, err)
	}
	return out, nil
}

// ListRoleAssignments returns the role names held by a principal on a scope
func (c *Client) ListRoleAssignments(ctx context.Context, principalID, scope string) ([]string, error) {
	out, err := c.exec.Output(ctx, c.az, "role", "assignment", "list",
		"--assignee", principalID,
		"--scope", scope,
		"--query", "[].roleDefinitionName", "-o", "json")
	if err != nil {
		return nil, fmt.Errorf("failed to list role assignments of %s: %w", principalID, err)
	}
	return decodeList(out)
}

// CreateRoleAssignment grants a role. An existing assignment yields ErrAlreadyExists.
func (c *Client) CreateRoleAssignment(ctx context.Context, principalID, role, scope string) error {
	_, err := c.exec.Output(ctx, c.az, "role", "assignment", "create",
		"--assignee-object-id", principalID,
		"--assignee-principal-type", "ServicePrincipal",
		"--role", role,
		"--scope", scope,
		"-o", "none")
	if err != nil {
		if isAlreadyExists(err) {
			return fmt.Errorf("role %s for %s: %w", role, principalID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to assign role %s to %s: %w", role, principalID, err)
	}
	c.logger.Info("assigned role", "role", role, "principalId", principalID, "scope", scope)
	return nil
}

// ShowSubscription returns the subscription as seen by the signed-in account
func (c *Client) ShowSubscription(ctx context.Context, subscriptionID string) (*model.Subscription, error) {
	out, err := c.exec.Output(ctx, c.az, "account", "show",
		"--subscription", subscriptionID, "-o", "json")
	if err != nil {
		return nil, fmt.Errorf("failed to show subscription %s: %w", subscriptionID, err)
	}

	var sub model.Subscription
	if err := json.Unmarshal([]byte(out), &sub); err != nil {
		return nil, fmt.Errorf("failed to parse subscription %s: %w", subscriptionID, err)
	}
	return &sub, nil
}

// Login runs the interactive directory sign-in
func (c *Client) Login(ctx context.Context) error {
	if err := c.exec.Attach(ctx, c.az, "login"); err != nil {
		return fmt.Errorf("failed to sign in: %w", err)
	}
	return nil
}

// single decodes a JSON array of identifiers, requiring at most one element
func single(what, out string) (string, bool, error) {
	ids, err := decodeList(out)
	if err != nil {
		return "", false, fmt.Errorf("failed to parse %s: %w", what, err)
	}
	switch len(ids) {
	case 0:
		return "", false, nil
	case 1:
		return ids[0], true, nil
	default:
		return "", false, fmt.Errorf("%s: %w: %s", what, ErrAmbiguous, strings.Join(ids, ", "))
	}
}

func decodeList(out string) ([]string, error) {
	if strings.TrimSpace(out) == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		return nil, err
	}
	result := items[:0]
	for _, item := range items {
		if item != "" {
			result = append(result, item)
		}
	}
	return result, nil
}

func isAlreadyExists(err error) bool {
	var cmdErr *runner.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	msg := strings.ToLower(cmdErr.Stderr)
	return strings.Contains(msg, "roleassignmentexists") || strings.Contains(msg, "already exists")
}

func odataEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
