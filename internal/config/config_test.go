package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cmus-go/playcore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_DefaultsWhenNothingSet(t *testing.T) {
	t.Setenv("PLAYCORE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	clearPlaycoreEnv(t)

	cfg := config.Load()

	assert.Equal(t, "./music", cfg.MusicDir)
	assert.Equal(t, 10, cfg.BufferSeconds)
	assert.Equal(t, 100, cfg.InitialVolume)
}

func Test_Load_YAMLOverlayAppliesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("music_dir: /mnt/music\nbuffer_seconds: 20\n"), 0o644))

	t.Setenv("PLAYCORE_CONFIG", path)
	clearPlaycoreEnv(t)

	cfg := config.Load()

	assert.Equal(t, "/mnt/music", cfg.MusicDir)
	assert.Equal(t, 20, cfg.BufferSeconds)
}

func Test_Load_EnvWinsOverYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("music_dir: /mnt/music\n"), 0o644))

	t.Setenv("PLAYCORE_CONFIG", path)
	t.Setenv("PLAYCORE_MUSIC_DIR", "/override/music")

	cfg := config.Load()

	assert.Equal(t, "/override/music", cfg.MusicDir)
}

func clearPlaycoreEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PLAYCORE_MUSIC_DIR", "PLAYCORE_CACHE_DIR", "PLAYCORE_BUFFER_SECONDS",
		"PLAYCORE_SORT_KEYS", "PLAYCORE_OUTPUT_DEVICE", "PLAYCORE_INITIAL_VOLUME",
	}
	for _, k := range keys {
		prev, existed := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if existed {
				os.Setenv(k, prev)
			}
		})
	}
}
