package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Setenv("STAGECATALOG_CONFIG", writeConfig(t, ""))

	c, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3004", c.API.URL)
	assert.Equal(t, 30*time.Second, c.API.Timeout)
	assert.Equal(t, 10*time.Second, c.Fetch.Timeout)
	assert.Equal(t, ":3004", c.Server.Addr)
	assert.False(t, c.Server.Announce)
	assert.Equal(t, "info", c.Log.Level)
}

func TestFileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[api]
url = "http://catalog.lan:8080"
timeout = "5s"

[fetch]
timeout = "2s"

[server]
db = "/tmp/catalog.db"
announce = true

[log]
level = "debug"
`)
	t.Setenv("STAGECATALOG_FETCH_TIMEOUT", "750ms")

	c, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "http://catalog.lan:8080", c.API.URL)
	assert.Equal(t, 5*time.Second, c.API.Timeout)
	assert.Equal(t, 750*time.Millisecond, c.Fetch.Timeout, "env wins over the file")
	assert.Equal(t, "/tmp/catalog.db", c.Server.DB)
	assert.True(t, c.Server.Announce)

	level, err := c.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", level.String())
}

func TestMissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			API:       APIConfig{URL: "http://localhost:3004", Timeout: time.Second},
			Fetch:     FetchConfig{Timeout: time.Second},
			Server:    ServerConfig{Addr: ":3004", DB: "catalog.db"},
			Discovery: DiscoveryConfig{Timeout: time.Second},
			Log:       LogConfig{Level: "info"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"relative url", func(c *Config) { c.API.URL = "localhost:3004" }},
		{"ftp url", func(c *Config) { c.API.URL = "ftp://host" }},
		{"zero api timeout", func(c *Config) { c.API.Timeout = 0 }},
		{"negative fetch timeout", func(c *Config) { c.Fetch.Timeout = -time.Second }},
		{"zero discovery timeout", func(c *Config) { c.Discovery.Timeout = 0 }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"empty db", func(c *Config) { c.Server.DB = "" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
