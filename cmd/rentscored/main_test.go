package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentscore/rentscore/pkg/config"
)

func TestServeBadFlag(t *testing.T) {
	assert.Equal(t, 2, serve([]string{"--no-such-flag"}))
}

func TestServeInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rentscored.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scoring:\n  default_collection_rate: 150\n"), 0o644))
	assert.Equal(t, 1, serve([]string{"--config", path}))
}

func TestServeReturnsWhenStartupFails(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Roster.Backend = config.BackendPostgres
	cfg.Roster.DatabaseURL = "postgres://rentscore@127.0.0.1:1/rentscore?sslmode=disable&connect_timeout=1"
	path := filepath.Join(t.TempDir(), "rentscored.yaml")
	require.NoError(t, config.Write(path, cfg))

	assert.Equal(t, 1, serve([]string{"--config", path}))
}
