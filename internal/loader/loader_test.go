package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTemplate(t *testing.T) {
	l, err := NewLoader()
	require.NoError(t, err)

	path := writeFile(t, t.TempDir(), "dataverse.json", `{
  // created per deployment environment
  "namePrefix": "contoso-",
  "domainPrefix": "contoso",
  "type": "Sandbox",
  "region": "unitedstates",
  "language": 1033,
  "currency": "USD",
}`)

	tmpl, err := l.LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "contoso-", tmpl.NamePrefix)
	assert.Equal(t, "contoso", tmpl.DomainPrefix)
	assert.Equal(t, "Sandbox", tmpl.Type)
	assert.Equal(t, "unitedstates", tmpl.Region)
	assert.Equal(t, "1033", tmpl.Language)
	assert.Equal(t, "USD", tmpl.Currency)
}

func TestLoadTemplateErrors(t *testing.T) {
	l, err := NewLoader()
	require.NoError(t, err)
	dir := t.TempDir()

	_, err = l.LoadTemplate(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	invalid := writeFile(t, dir, "invalid.json", `{"namePrefix": "contoso-"}`)
	_, err = l.LoadTemplate(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid platform template")

	broken := writeFile(t, dir, "broken.json", `{"namePrefix": `)
	_, err = l.LoadTemplate(broken)
	assert.Error(t, err)
}

func TestLoadRegistry(t *testing.T) {
	l, err := NewLoader()
	require.NoError(t, err)
	dir := t.TempDir()

	path := writeFile(t, dir, "config.json", `{"version": 1, "defaultEnvironment": "dev"}`)
	reg, err := l.LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", reg.DefaultEnvironment)
	assert.Equal(t, 1, reg.Version)

	empty := writeFile(t, dir, "empty.json", `{"version": 1}`)
	_, err = l.LoadRegistry(empty)
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	l, err := NewLoader()
	require.NoError(t, err)
	dir := t.TempDir()

	cfg, err := l.LoadConfig(filepath.Join(dir, "liteprov.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Roles)

	path := writeFile(t, dir, "liteprov.yaml", "roles:\n  - Contributor\n  - Reader\ntemplate: infra/dataverse.json\n")
	cfg, err = l.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Contributor", "Reader"}, cfg.Roles)
	assert.Equal(t, "infra/dataverse.json", cfg.Template)

	bad := writeFile(t, dir, "bad.yaml", "rolez: [Owner]\n")
	_, err = l.LoadConfig(bad)
	assert.Error(t, err)
}
