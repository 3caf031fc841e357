// Package registrytest provides an in-memory registry for exercising the
// reconciliation flow without the external command surfaces.
package registrytest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sourceplane/liteprov/internal/model"
	"github.com/sourceplane/liteprov/internal/registry"
)

// Memory keeps directory, role and platform state in maps and counts mutations.
// It is safe for concurrent use.
type Memory struct {
	mu sync.Mutex

	// Applications maps app id to display names; duplicates model operator error
	Applications map[string]string
	// Principals maps app id to principal id
	Principals map[string]string
	// Assignments maps principal|scope to held role names
	Assignments map[string][]string
	// Environments maps platform domain to URL
	Environments map[string]string
	Subscription model.Subscription
	Account      string

	// CreateOutput overrides the platform creation output when set
	CreateOutput string
	// FailRoles makes role assignment fail for these role names
	FailRoles map[string]bool
	// ExistsRoles makes role assignment report an existing assignment
	ExistsRoles map[string]bool
	// FailReset makes credential reset fail
	FailReset bool
	// SignedOut makes ShowSubscription fail until Login is called
	SignedOut bool
	// PlatformSignedOut makes WhoAmI fail until PlatformLogin is called
	PlatformSignedOut bool

	Calls   []string
	serial  int
	secrets int
}

func New() *Memory {
	return &Memory{
		Applications: make(map[string]string),
		Principals:   make(map[string]string),
		Assignments:  make(map[string][]string),
		Environments: make(map[string]string),
		Subscription: model.Subscription{
			ID:       "00000000-0000-0000-0000-000000000001",
			Name:     "Contoso Dev",
			TenantID: "00000000-0000-0000-0000-0000000000aa",
		},
		Account: "operator@contoso.com",
	}
}

// CreateCalls counts every create call, role assignments included
func (m *Memory) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if strings.HasPrefix(c, "create") {
			n++
		}
	}
	return n
}

// CallsTo counts calls of one operation
func (m *Memory) CallsTo(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == op || strings.HasPrefix(c, op+" ") {
			n++
		}
	}
	return n
}

func (m *Memory) record(op string, args ...string) {
	m.Calls = append(m.Calls, strings.TrimSpace(op+" "+strings.Join(args, " ")))
}

func (m *Memory) id(kind string) string {
	m.serial++
	return fmt.Sprintf("%s-%04d", kind, m.serial)
}

func (m *Memory) FindApplication(_ context.Context, displayName string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("findApplication", displayName)
	var ids []string
	for appID, name := range m.Applications {
		if name == displayName {
			ids = append(ids, appID)
		}
	}
	sort.Strings(ids)
	switch len(ids) {
	case 0:
		return "", false, nil
	case 1:
		return ids[0], true, nil
	default:
		return "", false, fmt.Errorf("application %s: %w: %s", displayName, registry.ErrAmbiguous, strings.Join(ids, ", "))
	}
}

func (m *Memory) CreateApplication(_ context.Context, displayName string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("createApplication", displayName)
	appID := m.id("app")
	m.Applications[appID] = displayName
	return appID, nil
}

func (m *Memory) FindServicePrincipal(_ context.Context, appID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("findServicePrincipal", appID)
	id, ok := m.Principals[appID]
	return id, ok, nil
}

func (m *Memory) CreateServicePrincipal(_ context.Context, appID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("createServicePrincipal", appID)
	if _, ok := m.Applications[appID]; !ok {
		return "", fmt.Errorf("no application %s", appID)
	}
	id := m.id("sp")
	m.Principals[appID] = id
	return id, nil
}

func (m *Memory) ResetCredential(_ context.Context, appID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("resetCredential", appID)
	if m.FailReset {
		return "", fmt.Errorf("failed to reset credential of %s", appID)
	}
	m.secrets++
	return fmt.Sprintf("secret-%d", m.secrets), nil
}

func (m *Memory) ListRoleAssignments(_ context.Context, principalID, scope string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("listRoleAssignments", principalID)
	return append([]string(nil), m.Assignments[principalID+"|"+scope]...), nil
}

func (m *Memory) CreateRoleAssignment(_ context.Context, principalID, role, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("createRoleAssignment", principalID, role)
	if m.FailRoles[role] {
		return fmt.Errorf("failed to assign role %s to %s", role, principalID)
	}
	if m.ExistsRoles[role] {
		return fmt.Errorf("role %s for %s: %w", role, principalID, registry.ErrAlreadyExists)
	}
	key := principalID + "|" + scope
	for _, held := range m.Assignments[key] {
		if held == role {
			return fmt.Errorf("role %s for %s: %w", role, principalID, registry.ErrAlreadyExists)
		}
	}
	m.Assignments[key] = append(m.Assignments[key], role)
	return nil
}

func (m *Memory) ShowSubscription(_ context.Context, subscriptionID string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("showSubscription", subscriptionID)
	if m.SignedOut {
		return nil, fmt.Errorf("Please run 'az login' to setup account.")
	}
	sub := m.Subscription
	sub.ID = subscriptionID
	return &sub, nil
}

func (m *Memory) Login(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("login")
	m.SignedOut = false
	return nil
}

func (m *Memory) WhoAmI(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("whoAmI")
	if m.PlatformSignedOut {
		return "", fmt.Errorf("no profiles were found on this computer")
	}
	return m.Account, nil
}

func (m *Memory) PlatformLogin(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("platformLogin")
	m.PlatformSignedOut = false
	return nil
}

func (m *Memory) FindPlatformEnvironment(_ context.Context, domain string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("findPlatformEnvironment", domain)
	url, ok := m.Environments[domain]
	return url, ok, nil
}

func (m *Memory) CreatePlatformEnvironment(_ context.Context, spec model.PlatformEnvironmentSpec) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("createPlatformEnvironment", spec.Name, spec.Domain)
	if m.CreateOutput != "" {
		return m.CreateOutput, nil
	}
	url := fmt.Sprintf("https://%s.crm.dynamics.com/", spec.Domain)
	m.Environments[spec.Domain] = url
	return fmt.Sprintf("Environment Name %s\nEnvironment URL %s\nDone", spec.Name, url), nil
}
