// Package provision sequences the post-initialization provisioning run:
// checkpoints, identity reconciliation, role enforcement, platform
// environment resolution and persistence of the derived variables.
//
// The run is strictly sequential and has no rollback. Every step is a
// find-before-create, so re-running after a failure converges instead of
// duplicating resources.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/sourceplane/liteprov/internal/confirm"
	"github.com/sourceplane/liteprov/internal/model"
	"github.com/sourceplane/liteprov/internal/platform"
	"github.com/sourceplane/liteprov/internal/reconcile"
	"golang.org/x/sync/errgroup"
)

// maxSignIns bounds the re-authentication loops of account checkpoints
const maxSignIns = 3

// ErrPrecondition marks failures detected before anything was mutated
var ErrPrecondition = errors.New("precondition failed")

// AbortError is a controlled stop after the operator rejected a checkpoint
type AbortError struct {
	Checkpoint string
	Hint       string
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("aborted at %s checkpoint", e.Checkpoint)
}

// Store is the variable store of the deployment environments
type Store interface {
	DefaultEnvironment() (string, error)
	Get(env, key string) (string, bool, error)
	Set(env, key, value string) error
}

// Registry is every external registry operation the run needs
type Registry interface {
	reconcile.Directory
	reconcile.RoleRegistry
	platform.Registry
	ResetCredential(ctx context.Context, appID string) (string, error)
	ShowSubscription(ctx context.Context, subscriptionID string) (*model.Subscription, error)
	Login(ctx context.Context) error
	WhoAmI(ctx context.Context) (string, error)
	PlatformLogin(ctx context.Context) error
}

// Progress receives human readable progress of the run
type Progress interface {
	Step(msg string)
	Done(msg string)
	Warn(msg string)
}

// Options tune a run
type Options struct {
	// Environment overrides the default environment
	Environment string
	// Roles granted to the deployment identity
	Roles []string
	// Template loads the platform environment template on demand
	Template platform.TemplateSource
	// TemplatePath is shown in remediation hints
	TemplatePath string
}

// Provisioner runs the reconciliation sequence
type Provisioner struct {
	store      Store
	registry   Registry
	gate       confirm.Gate
	progress   Progress
	reconciler *reconcile.Reconciler
	enforcer   *reconcile.RoleEnforcer
	resolver   *platform.Resolver
	opts       Options
	logger     *slog.Logger
}

func NewProvisioner(store Store, registry Registry, gate confirm.Gate, progress Progress, opts Options, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{
		store:      store,
		registry:   registry,
		gate:       gate,
		progress:   progress,
		reconciler: reconcile.NewReconciler(registry, logger),
		enforcer:   reconcile.NewRoleEnforcer(registry, opts.Roles, logger),
		resolver:   platform.NewResolver(registry, gate, opts.Template, logger),
		opts:       opts,
		logger:     logger,
	}
}

// Run provisions the environment end to end
func (p *Provisioner) Run(ctx context.Context) (*model.Result, error) {
	env, err := p.environment()
	if err != nil {
		return nil, err
	}
	result := &model.Result{Environment: env}
	logger := p.logger.With("environment", env)

	ok, err := p.gate.Confirm("Provision this environment?", "Environment: "+env)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &AbortError{
			Checkpoint: "environment",
			Hint:       "select the environment to provision with `azd env select <name>` or pass --environment",
		}
	}

	subscriptionID, err := p.subscriptionID(env)
	if err != nil {
		return nil, err
	}

	sub, err := p.confirmSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	result.Subscription = *sub

	ok, err = p.gate.Confirm("Find or create these service principals?", principalsProposal(env))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &AbortError{
			Checkpoint: "service principals",
			Hint:       "service principal names derive from the environment name; select another environment to change them",
		}
	}

	for _, role := range model.Roles {
		p.progress.Step(fmt.Sprintf("Reconciling %s...", model.DisplayName(env, role)))
		id, err := p.reconciler.Reconcile(ctx, env, role)
		if err != nil {
			return result, fmt.Errorf("failed to reconcile %s identity: %w", role, err)
		}
		result.Identities = append(result.Identities, *id)
		p.progress.Done(fmt.Sprintf("%s (app %s, principal %s)", id.DisplayName, id.AppID, id.PrincipalID))
	}
	deployment := result.Identity(model.RoleDeployment)
	integration := result.Identity(model.RoleIntegration)

	scope := model.SubscriptionScope(subscriptionID)
	p.progress.Step(fmt.Sprintf("Assigning roles %s...", strings.Join(p.enforcer.Roles(), ", ")))
	assignments, err := p.enforcer.Enforce(ctx, deployment.PrincipalID, scope)
	if err != nil {
		return result, fmt.Errorf("failed to assign roles to %s: %w", deployment.DisplayName, err)
	}
	result.Assignments = assignments
	p.progress.Done(fmt.Sprintf("Roles held on %s", scope))

	p.progress.Step("Resetting " + integration.DisplayName + " credential...")
	secret, err := p.registry.ResetCredential(ctx, integration.AppID)
	switch {
	case err != nil:
		logger.Warn("credential reset failed", "appId", integration.AppID, "error", err)
		p.warn(result, fmt.Sprintf("credential reset for %s failed; %s is empty", integration.DisplayName, model.VarDataverseClientSecret))
		secret = ""
	case secret == "":
		p.warn(result, fmt.Sprintf("credential reset for %s returned no secret; %s is empty", integration.DisplayName, model.VarDataverseClientSecret))
	default:
		p.progress.Done("Credential reset")
	}

	if err := p.persist(env, result, []variable{
		{model.VarAzureServicePrincipal, deployment.DisplayName},
		{model.VarDataverseServicePrincipal, integration.DisplayName},
		{model.VarDataverseClientID, integration.AppID},
		{model.VarDataverseClientSecret, secret},
	}); err != nil {
		return result, err
	}

	if err := p.confirmPlatformAccount(ctx); err != nil {
		return result, err
	}

	persisted, _, err := p.store.Get(env, model.VarDataverseEnvURL)
	if err != nil {
		return result, err
	}
	target, err := p.resolver.Resolve(ctx, env, persisted)
	if errors.Is(err, platform.ErrRejected) {
		return result, &AbortError{
			Checkpoint: "platform environment",
			Hint:       fmt.Sprintf("edit %s or supply the URL of an existing platform environment", p.templatePath()),
		}
	}
	if err != nil {
		return result, fmt.Errorf("failed to resolve platform environment: %w", err)
	}
	result.Platform = target
	p.progress.Done(fmt.Sprintf("Platform environment %s (%s)", target.URL, target.Source))

	if err := p.persist(env, result, []variable{{model.VarDataverseEnvURL, target.URL}}); err != nil {
		return result, err
	}

	logger.Info("provisioning complete", "created", result.Created())
	return result, nil
}

// Inspect reports existing resources without prompting or mutating anything.
// The identity lookups of both roles run concurrently.
func (p *Provisioner) Inspect(ctx context.Context) (*model.Inspection, error) {
	env, err := p.environment()
	if err != nil {
		return nil, err
	}
	inspection := &model.Inspection{Environment: env}

	previews := make([]model.IdentityPreview, len(model.Roles))
	g, gctx := errgroup.WithContext(ctx)
	for i, role := range model.Roles {
		g.Go(func() error {
			preview, err := p.reconciler.Inspect(gctx, env, role)
			if err != nil {
				return fmt.Errorf("failed to inspect %s identity: %w", role, err)
			}
			previews[i] = *preview
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	inspection.Identities = previews

	var deployment *model.IdentityPreview
	for i := range previews {
		if previews[i].Role == model.RoleDeployment {
			deployment = &previews[i]
		}
	}

	subscriptionID, found, err := p.store.Get(env, model.VarSubscriptionID)
	if err != nil {
		return nil, err
	}
	if found && subscriptionID != "" && deployment != nil && deployment.PrincipalFound {
		roles, err := p.enforcer.Inspect(ctx, deployment.PrincipalID, model.SubscriptionScope(subscriptionID))
		if err != nil {
			return nil, fmt.Errorf("failed to inspect role assignments: %w", err)
		}
		inspection.Roles = roles
	}

	return inspection, nil
}

// principalsProposal lists the derived names and the credential rotation the run performs
func principalsProposal(env string) string {
	lines := []string{"Service principals:"}
	for _, role := range model.Roles {
		lines = append(lines, "  "+model.DisplayName(env, role))
	}
	lines = append(lines, fmt.Sprintf("The credential of %s will be reset; the current %s stops working.",
		model.DisplayName(env, model.RoleIntegration), model.VarDataverseClientSecret))
	return strings.Join(lines, "\n")
}

func (p *Provisioner) environment() (string, error) {
	if p.opts.Environment != "" {
		return p.opts.Environment, nil
	}
	env, err := p.store.DefaultEnvironment()
	if err != nil {
		return "", fmt.Errorf("%w: %v (run `azd init` or `azd env new` first)", ErrPrecondition, err)
	}
	return env, nil
}

func (p *Provisioner) subscriptionID(env string) (string, error) {
	id, found, err := p.store.Get(env, model.VarSubscriptionID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPrecondition, err)
	}
	if !found || id == "" {
		return "", fmt.Errorf("%w: %s is not set for environment %s", ErrPrecondition, model.VarSubscriptionID, env)
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: %s %q is not a subscription id", ErrPrecondition, model.VarSubscriptionID, id)
	}
	return id, nil
}

// accountCheckpoint is a checkpoint on the signed-in account. Rejecting it,
// or failing to read the account at all, offers an interactive sign-in.
type accountCheckpoint struct {
	prompt       string
	signInPrompt string
	signInStep   string
	describe     func(ctx context.Context) (string, error)
	signIn       func(ctx context.Context) error
	abort        *AbortError
}

// confirmAccount runs an account checkpoint, signing in at most maxSignIns-1 times
func (p *Provisioner) confirmAccount(ctx context.Context, c accountCheckpoint) error {
	for attempt := 0; ; attempt++ {
		proposed, err := c.describe(ctx)
		if err == nil {
			ok, err := p.gate.Confirm(c.prompt, proposed)
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
		} else {
			p.logger.Warn("could not read signed-in account", "checkpoint", c.abort.Checkpoint, "error", err)
			ok, gateErr := p.gate.Confirm(c.signInPrompt, err.Error())
			if gateErr != nil {
				return gateErr
			}
			if !ok {
				return c.abort
			}
		}
		if attempt+1 >= maxSignIns {
			return c.abort
		}

		p.progress.Step(c.signInStep)
		if err := c.signIn(ctx); err != nil {
			return err
		}
	}
}

// confirmSubscription asks the operator to accept the subscription and the account that sees it
func (p *Provisioner) confirmSubscription(ctx context.Context, subscriptionID string) (*model.Subscription, error) {
	var sub *model.Subscription
	err := p.confirmAccount(ctx, accountCheckpoint{
		prompt:       "Use this subscription?",
		signInPrompt: "Sign in to the directory now?",
		signInStep:   "Signing in to the directory...",
		describe: func(ctx context.Context) (string, error) {
			s, err := p.registry.ShowSubscription(ctx, subscriptionID)
			if err != nil {
				return "", err
			}
			sub = s
			proposed := fmt.Sprintf("Subscription: %s (%s)", s.Name, s.ID)
			if s.User.Name != "" {
				proposed += "\nSigned in as: " + s.User.Name
			}
			return proposed, nil
		},
		signIn: p.registry.Login,
		abort: &AbortError{
			Checkpoint: "subscription",
			Hint:       fmt.Sprintf("sign in with `az login` to an account that can access subscription %s, or change %s", subscriptionID, model.VarSubscriptionID),
		},
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// confirmPlatformAccount asks the operator to accept the platform account
func (p *Provisioner) confirmPlatformAccount(ctx context.Context) error {
	return p.confirmAccount(ctx, accountCheckpoint{
		prompt:       "Use this platform account?",
		signInPrompt: "Sign in to the platform now?",
		signInStep:   "Signing in to the platform...",
		describe:     p.registry.WhoAmI,
		signIn:       p.registry.PlatformLogin,
		abort: &AbortError{
			Checkpoint: "platform account",
			Hint:       "sign in with `pac auth create` and select the profile to use with `pac auth select`",
		},
	})
}

type variable struct {
	key   string
	value string
}

func (p *Provisioner) persist(env string, result *model.Result, vars []variable) error {
	for _, v := range vars {
		if err := p.store.Set(env, v.key, v.value); err != nil {
			return fmt.Errorf("failed to persist %s: %w", v.key, err)
		}
		result.Persisted = append(result.Persisted, v.key)
	}
	p.progress.Done(fmt.Sprintf("Saved %d variable(s) to environment %s", len(vars), env))
	return nil
}

func (p *Provisioner) warn(result *model.Result, msg string) {
	result.Warnings = append(result.Warnings, msg)
	p.progress.Warn(msg)
}

func (p *Provisioner) templatePath() string {
	if p.opts.TemplatePath != "" {
		return p.opts.TemplatePath
	}
	return model.DefaultTemplatePath
}
