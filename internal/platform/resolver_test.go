package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/sourceplane/liteprov/internal/confirm"
	"github.com/sourceplane/liteprov/internal/model"
	"github.com/sourceplane/liteprov/internal/registry/registrytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contosoTemplate() *model.PlatformTemplate {
	return &model.PlatformTemplate{
		NamePrefix:   "contoso-",
		DomainPrefix: "contoso",
		Type:         "Sandbox",
		Region:       "unitedstates",
		Language:     "1033",
		Currency:     "USD",
	}
}

// countingTemplate returns a template source and the number of times it was loaded
func countingTemplate() (TemplateSource, *int) {
	loads := 0
	return func() (*model.PlatformTemplate, error) {
		loads++
		return contosoTemplate(), nil
	}, &loads
}

func TestDerive(t *testing.T) {
	spec := Derive(contosoTemplate(), "Dev")
	assert.Equal(t, "contoso-Dev", spec.Name)
	assert.Equal(t, "contosodev", spec.Domain)
	assert.Equal(t, "Sandbox", spec.Type)
	assert.Equal(t, "unitedstates", spec.Region)
	assert.Equal(t, "1033", spec.Language)
	assert.Equal(t, "USD", spec.Currency)

	assert.Contains(t, Describe(spec), "contosodev")
}

func TestParseEnvironmentURL(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		domain  string
		want    string
		wantErr bool
	}{
		{
			name:   "url line",
			output: "Creating environment...\nEnvironment URL: https://contosodev.crm.dynamics.com/\nDone",
			domain: "contosodev",
			want:   "https://contosodev.crm.dynamics.com/",
		},
		{
			name:   "url line wins over earlier links",
			output: "See https://aka.ms/pac for help\nEnvironment Url https://contosodev.crm4.dynamics.com/",
			domain: "contosodev",
			want:   "https://contosodev.crm4.dynamics.com/",
		},
		{
			name:   "domain match without label",
			output: "Docs at https://aka.ms/pac.\nCreated https://contosodev.crm.dynamics.com/.",
			domain: "contosodev",
			want:   "https://contosodev.crm.dynamics.com/",
		},
		{
			name:    "no url",
			output:  "Environment creation queued",
			domain:  "contosodev",
			wantErr: true,
		},
		{
			name:    "unrelated url only",
			output:  "See https://aka.ms/pac",
			domain:  "contosodev",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEnvironmentURL(tt.output, tt.domain)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnparseableOutput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveSuppliedURL(t *testing.T) {
	mem := registrytest.New()
	source, loads := countingTemplate()
	gate := &confirm.Static{Answers: []string{"https://existing.crm.dynamics.com/"}}

	env, err := NewResolver(mem, gate, source, nil).Resolve(context.Background(), "dev", "")
	require.NoError(t, err)
	assert.Equal(t, "https://existing.crm.dynamics.com/", env.URL)
	assert.Equal(t, model.PlatformSupplied, env.Source)
	assert.Zero(t, *loads)
	assert.Empty(t, mem.Calls)
}

func TestResolveCreatesFromTemplate(t *testing.T) {
	mem := registrytest.New()
	source, loads := countingTemplate()
	gate := &confirm.Static{Answers: []string{"", "y"}}

	env, err := NewResolver(mem, gate, source, nil).Resolve(context.Background(), "Dev", "")
	require.NoError(t, err)
	assert.Equal(t, "https://contosodev.crm.dynamics.com/", env.URL)
	assert.Equal(t, model.PlatformCreated, env.Source)
	assert.Equal(t, "contoso-Dev", env.Name)
	assert.Equal(t, 1, *loads)
	assert.Equal(t, 1, mem.CallsTo("createPlatformEnvironment"))
}

func TestResolveRejectedTemplate(t *testing.T) {
	mem := registrytest.New()
	source, _ := countingTemplate()
	gate := &confirm.Static{Answers: []string{"", "n"}}

	_, err := NewResolver(mem, gate, source, nil).Resolve(context.Background(), "dev", "")
	assert.True(t, errors.Is(err, ErrRejected))
	assert.Empty(t, mem.Calls)
}

func TestResolveFindsExistingDomain(t *testing.T) {
	mem := registrytest.New()
	mem.Environments["contosodev"] = "https://contosodev.crm.dynamics.com/"
	source, _ := countingTemplate()
	gate := &confirm.Static{Answers: []string{"", "y"}}

	env, err := NewResolver(mem, gate, source, nil).Resolve(context.Background(), "dev", "")
	require.NoError(t, err)
	assert.Equal(t, model.PlatformFound, env.Source)
	assert.Zero(t, mem.CallsTo("createPlatformEnvironment"))
}

func TestResolveUnparseableOutput(t *testing.T) {
	mem := registrytest.New()
	mem.CreateOutput = "Environment creation queued"
	source, _ := countingTemplate()
	gate := &confirm.Static{Answers: []string{"", "y"}}

	_, err := NewResolver(mem, gate, source, nil).Resolve(context.Background(), "dev", "")
	assert.True(t, errors.Is(err, ErrUnparseableOutput))
}

func TestResolvePersisted(t *testing.T) {
	persisted := "https://contosodev.crm.dynamics.com/"

	t.Run("kept", func(t *testing.T) {
		mem := registrytest.New()
		source, loads := countingTemplate()
		gate := &confirm.Static{Answers: []string{"y"}}

		env, err := NewResolver(mem, gate, source, nil).Resolve(context.Background(), "dev", persisted)
		require.NoError(t, err)
		assert.Equal(t, persisted, env.URL)
		assert.Equal(t, model.PlatformPersisted, env.Source)
		assert.Zero(t, *loads)
		assert.Len(t, gate.Prompts, 1)
	})

	t.Run("replaced", func(t *testing.T) {
		mem := registrytest.New()
		source, _ := countingTemplate()
		gate := &confirm.Static{Answers: []string{"n", "https://other.crm.dynamics.com/"}}

		env, err := NewResolver(mem, gate, source, nil).Resolve(context.Background(), "dev", persisted)
		require.NoError(t, err)
		assert.Equal(t, "https://other.crm.dynamics.com/", env.URL)
		assert.Equal(t, model.PlatformSupplied, env.Source)
	})
}

func TestResolveTemplateError(t *testing.T) {
	source := func() (*model.PlatformTemplate, error) { return nil, errors.New("missing") }
	gate := &confirm.Static{Answers: []string{""}}

	_, err := NewResolver(registrytest.New(), gate, source, nil).Resolve(context.Background(), "dev", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load platform template")
}

func TestAssignApplicationUser(t *testing.T) {
	err := AssignApplicationUser(context.Background(), "https://contosodev.crm.dynamics.com/", "app-1")
	assert.True(t, errors.Is(err, ErrApplicationUserUnsupported))
}
