package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	p, err := GeneratePassword(4)
	require.NoError(t, err)
	assert.Len(t, p, 12)
	assert.True(t, strings.HasSuffix(p, "Aa1"))

	q, err := GeneratePassword(20)
	require.NoError(t, err)
	assert.Len(t, q, 20)
	assert.NotEqual(t, p, q)
}

func TestSynthesizeNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	s := NewSynthesizer(path)
	require.NoError(t, s.Synthesize(false))
	assert.Equal(t, 1, s.GetGeneratedCount())

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "https://automationexercise.com", env["BASE_URL"])
	assert.Equal(t, "15s", env["E2E_TIMEOUT"])
	assert.Equal(t, "0", env["SLOW_MO"])
	assert.Len(t, env["E2E_PASSWORD"], 16)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSynthesizeKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BASE_URL=http://localhost:9000\nE2E_PASSWORD=keep-me\n"), 0o600))

	s := NewSynthesizer(path)
	s.now = func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC) }
	require.NoError(t, s.Synthesize(false))
	assert.Zero(t, s.GetGeneratedCount())

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", env["BASE_URL"])
	assert.Equal(t, "keep-me", env["E2E_PASSWORD"])
	assert.Equal(t, "true", env["HEADLESS"])

	backup, err := os.ReadFile(filepath.Join(dir, ".env.backup.20261017_093000"))
	require.NoError(t, err)
	assert.Contains(t, string(backup), "keep-me")
}

func TestSynthesizeRotate(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("E2E_PASSWORD=old-secret\n"), 0o600))

	s := NewSynthesizer(path)
	require.NoError(t, s.Synthesize(true))
	assert.Equal(t, 1, s.GetGeneratedCount())

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.NotEqual(t, "old-secret", env["E2E_PASSWORD"])
}
