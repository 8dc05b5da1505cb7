package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBaseURL, c.API.BaseURL)
	assert.Equal(t, 30*time.Second, c.APITimeout())
	assert.Equal(t, "__session", c.Dashboard.SessionCookie)
	assert.Equal(t, "memory", c.Cache.Kind)
	assert.Equal(t, 20, c.Rate.Send.Limit)
	assert.Equal(t, time.Minute, c.SendWindow())
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	p := writeYAML(t, `
api:
  base_url: https://yaml.example
  timeout: 5s
dashboard:
  demo: true
`)
	t.Setenv("VITE_API_BASE_URL", "https://vite.example")
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "https://vite.example", c.API.BaseURL)
	assert.Equal(t, 5*time.Second, c.APITimeout())
	assert.True(t, c.Dashboard.Demo)

	t.Setenv("EMAILEZ_API_BASE_URL", "https://emailez.example")
	c, err = Load(p)
	require.NoError(t, err)
	assert.Equal(t, "https://emailez.example", c.API.BaseURL)
}

func TestLoad_ProdDisablesDemo(t *testing.T) {
	p := writeYAML(t, "dashboard:\n  demo: true\n")
	t.Setenv("EMAILEZ_ENV", "prod")
	c, err := Load(p)
	require.NoError(t, err)
	assert.False(t, c.Dashboard.Demo)
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load(writeYAML(t, "api:\n  timeout: soon\n"))
	assert.Error(t, err)

	_, err = Load(writeYAML(t, "cache:\n  kind: memcached\n"))
	assert.Error(t, err)

	_, err = Load(writeYAML(t, "cache:\n  kind: redis\n"))
	assert.Error(t, err, "redis sin addr")

	t.Setenv("TWIN_SECRET_KEY", "corta")
	_, err = Load("")
	assert.Error(t, err)
}
