package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sourceplane/liteprov/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariablesMasksSecrets(t *testing.T) {
	values := map[string]string{
		model.VarDataverseClientSecret: "s3cr3t",
		model.VarDataverseClientID:     "app-1",
	}

	masked := Variables(values, false)
	assert.Equal(t, "DATAVERSE_CLIENT_ID=\"app-1\"\nDATAVERSE_CLIENT_SECRET=\"********\"\n", masked)
	assert.Equal(t, "s3cr3t", values[model.VarDataverseClientSecret], "input is not modified")

	assert.Contains(t, Variables(values, true), `DATAVERSE_CLIENT_SECRET="s3cr3t"`)
	assert.Equal(t, "", MaskSecrets(map[string]string{model.VarDataverseClientSecret: ""})[model.VarDataverseClientSecret])
}

func TestEncode(t *testing.T) {
	v := map[string]string{"environment": "dev"}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, v, "json"))
	assert.Equal(t, "{\n  \"environment\": \"dev\"\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, Encode(&buf, v, "yaml"))
	assert.Equal(t, "environment: dev\n", buf.String())

	assert.Error(t, Encode(&buf, v, "xml"))
}

func TestSummary(t *testing.T) {
	result := &model.Result{
		Environment: "dev",
		Identities: []model.Identity{
			{
				DisplayName: "sp-dev-azure",
				AppID:       "app-1",
				PrincipalID: "sp-1",
				Path:        []model.IdentityState{model.StateUnresolved, model.StateRegistrationCreated, model.StatePrincipalCreated, model.StateResolved},
			},
		},
		Assignments: []model.RoleAssignment{{Role: "Contributor", Assigned: true}},
		Platform:    &model.PlatformEnvironment{URL: "https://contosodev.crm.dynamics.com/", Source: model.PlatformSupplied},
		Persisted:   []string{model.VarDataverseEnvURL},
		Warnings:    []string{"credential reset failed"},
	}

	out := Summary(result)
	assert.Contains(t, out, "sp-dev-azure")
	assert.Contains(t, out, "created")
	assert.Contains(t, out, "https://contosodev.crm.dynamics.com/ (supplied)")
	assert.Contains(t, out, "Warning: credential reset failed")
	assert.True(t, strings.HasSuffix(out, "Resources created: 3\n"))
}

func TestInspection(t *testing.T) {
	out := Inspection(&model.Inspection{
		Environment: "dev",
		Identities: []model.IdentityPreview{
			{Role: model.RoleDeployment, DisplayName: "sp-dev-azure", AppID: "app-1", RegistrationFound: true},
		},
		Roles: []model.RolePreview{{Role: "Contributor", Held: true}},
	})

	assert.Contains(t, out, "application:       found (app-1)")
	assert.Contains(t, out, "service principal: will be created")
	assert.Contains(t, out, "held")
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Step("Reconciling sp-dev-azure...")
	p.Done("sp-dev-azure")
	p.Warn("no secret")

	assert.Equal(t, "□ Reconciling sp-dev-azure...\n✓ sp-dev-azure\n! no secret\n", buf.String())
}
