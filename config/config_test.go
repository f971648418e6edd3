package config

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJWTSecret(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := loadJWTSecret()
		assert.Error(t, err)
	})

	t.Run("invalid base64", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "not-base64!!!")
		_, err := loadJWTSecret()
		assert.Error(t, err)
	})

	t.Run("valid", func(t *testing.T) {
		raw := []byte("0123456789abcdef0123456789abcdef")
		t.Setenv("JWT_SECRET", base64.StdEncoding.EncodeToString(raw))
		secret, err := loadJWTSecret()
		require.NoError(t, err)
		assert.Equal(t, raw, secret)
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", base64.StdEncoding.EncodeToString([]byte("secret-key")))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "none", cfg.Storage.Backend)
	assert.Equal(t, "none", cfg.MQ.Backend)
	assert.Equal(t, "catalog.events", cfg.MQ.EventsChannel)
	assert.Equal(t, []byte("secret-key"), cfg.Auth.JWTSecret)
}

func TestLoadConfigFailsWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("FLAG", "true")
	assert.True(t, getEnvBool("FLAG", false))

	t.Setenv("FLAG", "0")
	assert.False(t, getEnvBool("FLAG", true))

	t.Setenv("FLAG", "nonsense")
	assert.True(t, getEnvBool("FLAG", true))
}
