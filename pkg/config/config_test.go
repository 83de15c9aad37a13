package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, Init(filepath.Join(dir, "config.toml")))
	return dir
}

// TestInitWithCustomPath validates custom config path
func TestInitWithCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	customConfigPath := filepath.Join(tempDir, "custom", "path", "config.toml")

	require.NoError(t, Init(customConfigPath))
	assert.Equal(t, filepath.Join(tempDir, "custom", "path"), GetConfigDir())

	info, err := os.Stat(GetConfigDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSessionPathUnderConfigDir(t *testing.T) {
	dir := initTemp(t)
	assert.Equal(t, filepath.Join(dir, "session"), GetSessionPath())
}

func TestDefaults(t *testing.T) {
	initTemp(t)

	assert.Equal(t, "http://localhost:8000", GetString("api.base_url"))
	assert.Equal(t, 30, GetInt("api.timeout"))
	assert.Equal(t, "text", GetString("output.format"))
	assert.Equal(t, "info", GetString("log.level"))
	assert.Equal(t, 100, GetInt("export.max_photo_rows"))
	assert.Equal(t, "root", GetString("session.root_username"))
	assert.Equal(t, 30*time.Second, GetSeconds("poll.interval"))
	assert.True(t, filepath.IsAbs(GetString("output.download_dir")))
}

func TestUserConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := "[api]\nbase_url = \"https://hr.example.internal\"\ntimeout = 5\n\n[poll]\ninterval = 45\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	require.NoError(t, Init(path))

	assert.Equal(t, "https://hr.example.internal", GetString("api.base_url"))
	assert.Equal(t, 5, GetInt("api.timeout"))
	assert.Equal(t, 45*time.Second, GetSeconds("poll.interval"))
	// untouched keys keep their defaults
	assert.Equal(t, "text", GetString("output.format"))
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("STAFFDESK_API_TIMEOUT", "7")
	initTemp(t)

	assert.Equal(t, 7, GetInt("api.timeout"))
}

func TestSetStringPersists(t *testing.T) {
	dir := initTemp(t)

	require.NoError(t, SetString("output.format", "json"))
	require.NoError(t, Init(filepath.Join(dir, "config.toml")))

	assert.Equal(t, "json", GetString("output.format"))
}

func TestMultipleInitCalls(t *testing.T) {
	tempDir := t.TempDir()

	require.NoError(t, Init(filepath.Join(tempDir, "one", "config.toml")))
	first := GetConfigDir()
	require.NoError(t, Init(filepath.Join(tempDir, "two", "config.toml")))

	assert.NotEqual(t, first, GetConfigDir())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "exports"), expandPath("~/exports"))
	assert.Equal(t, "/tmp/x", expandPath("/tmp/x"))
}
