package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PORT", "8080")
	t.Setenv("DB_NAME", "other")

	c := DefaultConfig()
	require.NoError(t, applyEnv(&c))
	assert.Equal(t, "from-env", c.Auth.JWTSecret)
	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, "other", c.Database.Name)
	assert.Equal(t, "zh-tw", c.Time.Locale)

	t.Setenv("BCRYPT_COST", "many")
	assert.Error(t, applyEnv(&c))
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 4000, "env": "prod", "auth": {"jwt_secret": "s"}}`), 0644))

	c, err := loadConfigFile(path, true)
	require.NoError(t, err)
	assert.Equal(t, 4000, c.Port)
	assert.True(t, c.IsProd())
	assert.Equal(t, "s", c.Auth.JWTSecret)
	// Unset values keep their defaults.
	assert.Equal(t, 30, c.Auth.TokenTTLDays)
	assert.Equal(t, "simple_twitter", c.Database.Name)

	_, err = loadConfigFile(filepath.Join(t.TempDir(), "missing.json"), true)
	assert.Error(t, err)
	c, err = loadConfigFile(filepath.Join(t.TempDir(), "missing.json"), false)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestConnectionInfo(t *testing.T) {
	pc := DefaultPostgresConfig()
	assert.Equal(t, "host=localhost port=5432 user=postgres dbname=simple_twitter sslmode=disable", pc.ConnectionInfo())
	pc.Password = "pw"
	assert.Contains(t, pc.ConnectionInfo(), "password=pw")
}
