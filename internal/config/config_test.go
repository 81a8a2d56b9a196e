package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	c, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "development", c.Env)
	assert.Equal(t, "file", c.DBType)
	assert.Equal(t, 5*time.Second, c.RequestTimeout)
	assert.Equal(t, time.Sunday, c.WeekStart())
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("WEEK_START", "monday")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("RATE_LIMIT_BURST", "3")

	c, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, time.Monday, c.WeekStart())
	assert.Equal(t, 2*time.Second, c.RequestTimeout)
	assert.Equal(t, 3, c.RateLimitBurst)
}

func TestParseYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "env: staging\nstorage_backend: postgres\npostgres_dsn: ${TEST_DSN}\njwt_secret: 0123456789abcdef0123456789abcdef\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("TEST_DSN", "postgres://u:p@localhost:5432/db")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "staging", c.Env)
	assert.Equal(t, "postgres", c.DBType)
	assert.Equal(t, "postgres://u:p@localhost:5432/db", c.DBDSN)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"bad env":          func(c *Config) { c.Env = "qa" },
		"postgres no dsn":  func(c *Config) { c.DBType = "postgres" },
		"unknown backend":  func(c *Config) { c.DBType = "mongo" },
		"remote no url":    func(c *Config) { c.AuthMode = "remote" },
		"short secret":     func(c *Config) { c.Env = "production" },
		"bad week start":   func(c *Config) { c.WeekStartName = "funday" },
		"non-positive ttl": func(c *Config) { c.RequestTimeout = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := defaults()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
	assert.NoError(t, defaults().Validate())
}
