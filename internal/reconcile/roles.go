package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sourceplane/liteprov/internal/model"
	"github.com/sourceplane/liteprov/internal/registry"
)

// RoleRegistry is the subscription access-control list
type RoleRegistry interface {
	ListRoleAssignments(ctx context.Context, principalID, scope string) ([]string, error)
	CreateRoleAssignment(ctx context.Context, principalID, role, scope string) error
}

// RoleEnforcer ensures a fixed set of roles is held by a principal
type RoleEnforcer struct {
	roles  RoleRegistry
	names  []string
	logger *slog.Logger
}

func NewRoleEnforcer(roles RoleRegistry, names []string, logger *slog.Logger) *RoleEnforcer {
	if len(names) == 0 {
		names = model.DefaultAssignedRoles
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleEnforcer{roles: roles, names: names, logger: logger}
}

// Roles returns the role names the enforcer grants
func (e *RoleEnforcer) Roles() []string {
	return e.names
}

// Enforce grants every configured role on scope. A role that is already held
// is not an error; any other failure stops enforcement.
func (e *RoleEnforcer) Enforce(ctx context.Context, principalID, scope string) ([]model.RoleAssignment, error) {
	held, err := e.heldRoles(ctx, principalID, scope)
	if err != nil {
		return nil, err
	}

	assignments := make([]model.RoleAssignment, 0, len(e.names))
	for _, role := range e.names {
		assignment := model.RoleAssignment{Scope: scope, Role: role, PrincipalID: principalID}
		if held[role] {
			e.logger.Debug("role already held", "role", role, "principalId", principalID)
			assignments = append(assignments, assignment)
			continue
		}

		err := e.roles.CreateRoleAssignment(ctx, principalID, role, scope)
		switch {
		case err == nil:
			assignment.Assigned = true
		case errors.Is(err, registry.ErrAlreadyExists):
			e.logger.Debug("role assignment already exists", "role", role, "principalId", principalID)
		default:
			return nil, err
		}
		assignments = append(assignments, assignment)
	}

	return assignments, nil
}

// Inspect reports which configured roles are already held
func (e *RoleEnforcer) Inspect(ctx context.Context, principalID, scope string) ([]model.RolePreview, error) {
	held, err := e.heldRoles(ctx, principalID, scope)
	if err != nil {
		return nil, err
	}
	previews := make([]model.RolePreview, 0, len(e.names))
	for _, role := range e.names {
		previews = append(previews, model.RolePreview{Role: role, Held: held[role]})
	}
	return previews, nil
}

func (e *RoleEnforcer) heldRoles(ctx context.Context, principalID, scope string) (map[string]bool, error) {
	if principalID == "" {
		return nil, fmt.Errorf("cannot assign roles without a principal")
	}
	names, err := e.roles.ListRoleAssignments(ctx, principalID, scope)
	if err != nil {
		return nil, err
	}
	held := make(map[string]bool, len(names))
	for _, name := range names {
		held[name] = true
	}
	return held, nil
}
