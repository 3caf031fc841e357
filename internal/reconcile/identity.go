// Package reconcile converges directory identities and role assignments
// using find-before-create against the external registries. The registries
// are the only bookkeeping: a re-run after a crash rediscovers everything an
// earlier run created through the same name lookups.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sourceplane/liteprov/internal/model"
)

// Directory is the application and service principal registry
type Directory interface {
	FindApplication(ctx context.Context, displayName string) (string, bool, error)
	CreateApplication(ctx context.Context, displayName string) (string, error)
	FindServicePrincipal(ctx context.Context, appID string) (string, bool, error)
	CreateServicePrincipal(ctx context.Context, appID string) (string, error)
}

// Reconciler ensures one application and one service principal per role
type Reconciler struct {
	dir    Directory
	logger *slog.Logger
}

func NewReconciler(dir Directory, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{dir: dir, logger: logger}
}

// Reconcile resolves the identity of a role in an environment, creating
// whichever of the registration and the principal is missing.
func (r *Reconciler) Reconcile(ctx context.Context, environment string, role model.Role) (*model.Identity, error) {
	id := &model.Identity{
		Role:        role,
		DisplayName: model.DisplayName(environment, role),
		Path:        []model.IdentityState{model.StateUnresolved},
	}
	logger := r.logger.With("role", string(role), "displayName", id.DisplayName)

	appID, found, err := r.dir.FindApplication(ctx, id.DisplayName)
	if err != nil {
		return nil, err
	}
	if found {
		id.AppID = appID
		id.Path = append(id.Path, model.StateRegistrationFound)
		logger.Debug("application registration found", "appId", appID)
	} else {
		appID, err = r.dir.CreateApplication(ctx, id.DisplayName)
		if err != nil {
			return nil, err
		}
		id.AppID = appID
		id.Path = append(id.Path, model.StateRegistrationCreated)
	}

	principalID, found, err := r.dir.FindServicePrincipal(ctx, id.AppID)
	if err != nil {
		return nil, err
	}
	if found {
		id.PrincipalID = principalID
		id.Path = append(id.Path, model.StatePrincipalFound)
		logger.Debug("service principal found", "principalId", principalID)
	} else {
		principalID, err = r.dir.CreateServicePrincipal(ctx, id.AppID)
		if err != nil {
			return nil, err
		}
		id.PrincipalID = principalID
		id.Path = append(id.Path, model.StatePrincipalCreated)
	}

	if id.AppID == "" || id.PrincipalID == "" {
		return nil, fmt.Errorf("identity %s resolved without identifiers", id.DisplayName)
	}
	id.Path = append(id.Path, model.StateResolved)
	return id, nil
}

// Inspect reports what exists for a role without creating anything
func (r *Reconciler) Inspect(ctx context.Context, environment string, role model.Role) (*model.IdentityPreview, error) {
	preview := &model.IdentityPreview{
		Role:        role,
		DisplayName: model.DisplayName(environment, role),
	}

	appID, found, err := r.dir.FindApplication(ctx, preview.DisplayName)
	if err != nil || !found {
		return preview, err
	}
	preview.AppID = appID
	preview.RegistrationFound = true

	principalID, found, err := r.dir.FindServicePrincipal(ctx, appID)
	if err != nil || !found {
		return preview, err
	}
	preview.PrincipalID = principalID
	preview.PrincipalFound = true
	return preview, nil
}
