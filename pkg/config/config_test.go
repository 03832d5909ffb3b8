package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "staffhub/pkg/errors"
)

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "staffhub.yaml")
	yamlBody := `
server:
  port: "9090"
backend:
  url: https://project.example.co
  anon_key: anon-from-file
auth:
  lockout_duration: 30m
features:
  dashboard_export: true
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))

	t.Setenv("BACKEND_ANON_KEY", "anon-from-env")
	t.Setenv("FEATURE_REALTIME", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://project.example.co", cfg.Backend.URL)
	assert.Equal(t, "anon-from-env", cfg.Backend.AnonKey)
	assert.Equal(t, 30*time.Minute, cfg.Auth.LockoutDuration)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.True(t, cfg.FeatureEnabled("dashboard_export"))
	assert.True(t, cfg.FeatureEnabled("REALTIME"))
}

func TestLoad_TelegramAndStorage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "staffhub.yaml")
	yamlBody := `
telegram:
  api_url: http://telegram.local
storage:
  import_archive_dir: /var/lib/staffhub/uploads
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, "http://telegram.local", cfg.Telegram.APIURL)
	assert.Equal(t, "/var/lib/staffhub/uploads", cfg.Storage.ImportArchiveDir)
}

func TestLoad_PhoneRegion(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "CL", cfg.Phone.DefaultRegion)

	t.Setenv("PHONE_DEFAULT_REGION", "es")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "ES", cfg.Phone.DefaultRegion)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_ServerFailsFast(t *testing.T) {
	cfg := Defaults()
	cfg.Backend.URL = "https://project.example.co"

	err := cfg.Validate(ContextServer)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConfiguration, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "BACKEND_SERVICE_KEY")
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.NotContains(t, err.Error(), "BACKEND_URL,")
}

func TestValidate_PublicIsDegraded(t *testing.T) {
	cfg := Defaults()

	assert.NoError(t, cfg.Validate(ContextPublic))
	assert.True(t, cfg.Degraded())
	assert.ElementsMatch(t, []string{"BACKEND_URL", "BACKEND_ANON_KEY"}, cfg.Missing(ContextPublic))
}

func TestValidate_Complete(t *testing.T) {
	cfg := Defaults()
	cfg.Backend = BackendConfig{
		URL:         "https://project.example.co",
		AnonKey:     "anon",
		ServiceKey:  "service",
		JWTSecret:   "secret",
		DatabaseURL: "postgres://localhost/staffhub",
	}
	cfg.Crypto.CredentialKey = "key"

	assert.NoError(t, cfg.Validate(ContextServer))
	assert.False(t, cfg.Degraded())
}
