package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffhub/pkg/buildinfo"
	"staffhub/pkg/service"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBuildInfoWritesFile(t *testing.T) {
	t.Setenv("APP_VERSION", "1.4.2")
	t.Setenv("APP_BUILD_TIME", "2024-05-20T10:00:00Z")
	path := filepath.Join(t.TempDir(), "meta.json")

	out, err := execute(t, "build-info", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1.4.2")

	info, err := buildinfo.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", info.Version)
	assert.Equal(t, 2024, info.BuildTime.Year())
}

func TestTokenIsValidForConfiguredSecret(t *testing.T) {
	t.Setenv("BACKEND_JWT_SECRET", "cli-secret")
	sub := "7f1d3c1e-9a55-4a5e-8d0b-3f5c1b2a9e10"

	out, err := execute(t, "token", "--sub", sub, "--role", "admin")
	require.NoError(t, err)

	claims, err := service.NewJWTService("cli-secret", 0, logger).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, sub, claims.Subject)
	assert.True(t, claims.IsAdmin())
}

func TestTokenRejectsNonUUIDSubject(t *testing.T) {
	t.Setenv("BACKEND_JWT_SECRET", "cli-secret")

	_, err := execute(t, "token", "--sub", "not-a-uuid", "--role", "")
	require.Error(t, err)
}
