package model

// Result summarizes a provisioning run
type Result struct {
	Environment  string               `json:"environment"`
	Subscription Subscription         `json:"subscription"`
	Identities   []Identity           `json:"identities"`
	Assignments  []RoleAssignment     `json:"assignments"`
	Platform     *PlatformEnvironment `json:"platform,omitempty"`
	Persisted    []string             `json:"persisted"`
	Warnings     []string             `json:"warnings,omitempty"`
}

// Created counts every directory and role assignment resource created by the run
func (r *Result) Created() int {
	n := 0
	for i := range r.Identities {
		n += r.Identities[i].Created()
	}
	for _, a := range r.Assignments {
		if a.Assigned {
			n++
		}
	}
	return n
}

// Identity returns the identity reconciled for a role
func (r *Result) Identity(role Role) *Identity {
	for i := range r.Identities {
		if r.Identities[i].Role == role {
			return &r.Identities[i]
		}
	}
	return nil
}

// Inspection is the read-only view produced by the plan command
type Inspection struct {
	Environment string            `json:"environment"`
	Identities  []IdentityPreview `json:"identities"`
	Roles       []RolePreview     `json:"roles,omitempty"`
}

// IdentityPreview reports what exists for a role without creating anything
type IdentityPreview struct {
	Role              Role   `json:"role"`
	DisplayName       string `json:"displayName"`
	AppID             string `json:"appId,omitempty"`
	PrincipalID       string `json:"principalId,omitempty"`
	RegistrationFound bool   `json:"registrationFound"`
	PrincipalFound    bool   `json:"principalFound"`
}

// RolePreview reports whether a role is already held
type RolePreview struct {
	Role string `json:"role"`
	Held bool   `json:"held"`
}
