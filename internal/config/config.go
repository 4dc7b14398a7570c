// Package config loads the player's runtime tunables: env vars with
// defaults, plus an optional YAML overlay file that env still wins over.
package config

import (
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
)

// Config holds every runtime tunable for cmd/playcore.
type Config struct {
	MusicDir      string `yaml:"music_dir"`
	CacheDir      string `yaml:"cache_dir"`
	BufferSeconds int    `yaml:"buffer_seconds"`
	SortKeys      string `yaml:"sort_keys"`
	OutputDevice  string `yaml:"output_device"`
	InitialVolume int    `yaml:"initial_volume"`
}

// Load reads defaults, overlays an optional YAML file (PLAYCORE_CONFIG,
// default ./playcore.yaml, silently skipped if absent), then overlays env
// vars, so env always wins.
func Load() *Config {
	cfg := &Config{
		MusicDir:      "./music",
		CacheDir:      "./.cache/playcore",
		BufferSeconds: 10,
		SortKeys:      "artist,album,discnumber,tracknumber,filename",
		OutputDevice:  "",
		InitialVolume: 100,
	}

	overlayYAML(cfg, getEnv("PLAYCORE_CONFIG", "./playcore.yaml"))
	overlayEnv(cfg)
	return cfg
}

func overlayYAML(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	// Best-effort: a malformed overlay file is not fatal, defaults stand.
	_ = yaml.Unmarshal(data, cfg)
}

func overlayEnv(cfg *Config) {
	cfg.MusicDir = getEnv("PLAYCORE_MUSIC_DIR", cfg.MusicDir)
	cfg.CacheDir = getEnv("PLAYCORE_CACHE_DIR", cfg.CacheDir)
	cfg.BufferSeconds = getEnvAsInt("PLAYCORE_BUFFER_SECONDS", cfg.BufferSeconds)
	cfg.SortKeys = getEnv("PLAYCORE_SORT_KEYS", cfg.SortKeys)
	cfg.OutputDevice = getEnv("PLAYCORE_OUTPUT_DEVICE", cfg.OutputDevice)
	cfg.InitialVolume = getEnvAsInt("PLAYCORE_INITIAL_VOLUME", cfg.InitialVolume)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultVal
}
