package buildinfo

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffhub/pkg/config"
)

func TestFrom(t *testing.T) {
	cfg := config.Defaults()
	cfg.Build.Version = "1.4.0"
	cfg.Backend.URL = "https://xyz.example.co"
	now := time.Date(2026, 3, 1, 10, 30, 15, 999, time.UTC)

	info := From(cfg, now)
	assert.Equal(t, "1.4.0", info.Version)
	assert.Equal(t, "https://xyz.example.co", info.BackendURL)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 30, 15, 0, time.UTC), info.BuildTime)

	cfg.Build.BuildTime = "2026-02-27T08:00:00Z"
	assert.Equal(t, time.Date(2026, 2, 27, 8, 0, 0, 0, time.UTC), From(cfg, now).BuildTime)
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	info := Info{Version: "2.0.0", BuildTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), BackendURL: "http://localhost:54321"}

	require.NoError(t, Write(path, info))
	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, info, got)
}
