package model

import "fmt"

// Role is the logical purpose of an application identity within an environment
type Role string

const (
	// RoleDeployment is the identity the deployment pipeline signs in with
	RoleDeployment Role = "azure"
	// RoleIntegration is the identity the platform environment connects with
	RoleIntegration Role = "dataverse"
)

// Roles lists the logical roles in reconciliation order
var Roles = []Role{RoleDeployment, RoleIntegration}

// DisplayName derives the directory display name for a role in an environment.
// The name is the only deduplication key used against the directory.
func DisplayName(environment string, role Role) string {
	return fmt.Sprintf("sp-%s-%s", environment, role)
}

// IdentityState is a step of the per-role reconciliation state machine
type IdentityState string

const (
	StateUnresolved          IdentityState = "UNRESOLVED"
	StateRegistrationFound   IdentityState = "REGISTRATION_FOUND"
	StateRegistrationCreated IdentityState = "REGISTRATION_CREATED"
	StatePrincipalFound      IdentityState = "PRINCIPAL_FOUND"
	StatePrincipalCreated    IdentityState = "PRINCIPAL_CREATED"
	StateResolved            IdentityState = "RESOLVED"
)

// Identity is an application registration together with its service principal
type Identity struct {
	Role        Role            `json:"role" yaml:"role"`
	DisplayName string          `json:"displayName" yaml:"displayName"`
	AppID       string          `json:"appId" yaml:"appId"`
	PrincipalID string          `json:"principalId" yaml:"principalId"`
	Path        []IdentityState `json:"path" yaml:"path"`
}

// State returns the last state the identity reached
func (i *Identity) State() IdentityState {
	if len(i.Path) == 0 {
		return StateUnresolved
	}
	return i.Path[len(i.Path)-1]
}

// Created counts the resources that had to be created for this identity
func (i *Identity) Created() int {
	n := 0
	for _, s := range i.Path {
		if s == StateRegistrationCreated || s == StatePrincipalCreated {
			n++
		}
	}
	return n
}

// RoleAssignment grants a role to a principal over a scope
type RoleAssignment struct {
	Scope       string `json:"scope" yaml:"scope"`
	Role        string `json:"role" yaml:"role"`
	PrincipalID string `json:"principalId" yaml:"principalId"`
	// Assigned is true when the assignment was created during this run
	Assigned bool `json:"assigned" yaml:"assigned"`
}

// SubscriptionScope returns the role assignment scope of a subscription
func SubscriptionScope(subscriptionID string) string {
	return "/subscriptions/" + subscriptionID
}

// DefaultAssignedRoles are granted to the deployment identity when no roles are configured
var DefaultAssignedRoles = []string{"Contributor", "User Access Administrator"}
