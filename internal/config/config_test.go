package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "incidentmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 750, cfg.Display.Width)
		assert.Equal(t, 4.0, cfg.Display.Radius)
		assert.Equal(t, 8.0, cfg.Display.MaxZoom)
		assert.Equal(t, 200, cfg.Display.FadeInMillis)
		assert.Equal(t, 500, cfg.Display.FadeOutMillis)
		assert.Equal(t, DefaultCSVPath, cfg.Dataset.CSVPath)
		assert.Empty(t, cfg.Dataset.SQLitePath)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeTempConfig(t, `
dataset:
  csv_path: ./testdata/incidents.csv
  jitter_meters: 2000
display:
  radius: 6
  palette: ["#111111", "#222222"]
filters:
  race: [White, Black]
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "./testdata/incidents.csv", cfg.Dataset.CSVPath)
		assert.Equal(t, 2000.0, cfg.Dataset.JitterMeters)
		assert.Equal(t, 6.0, cfg.Display.Radius)
		assert.Equal(t, 750, cfg.Display.Width, "unset fields keep defaults")
		assert.Equal(t, []string{"White", "Black"}, cfg.Filters["race"])
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("INCIDENTMAP_LOG_LEVEL", "debug")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Server.Port)
		assert.Equal(t, "s3cret", cfg.Server.JWTSecret)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("DB_PATH alone selects sqlite", func(t *testing.T) {
		t.Setenv("DB_PATH", "/var/lib/incidentmap/incidents.db")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "/var/lib/incidentmap/incidents.db", cfg.Dataset.SQLitePath)
		assert.Empty(t, cfg.Dataset.CSVPath)
	})

	t.Run("sqlite_path in file selects sqlite", func(t *testing.T) {
		path := writeTempConfig(t, `
dataset:
  sqlite_path: ./incidents.db
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "./incidents.db", cfg.Dataset.SQLitePath)
		assert.Empty(t, cfg.Dataset.CSVPath)
	})

	t.Run("explicit csv wins over DB_PATH", func(t *testing.T) {
		t.Setenv("DB_PATH", "./incidents.db")
		t.Setenv("INCIDENTMAP_CSV", "./other.csv")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "./other.csv", cfg.Dataset.CSVPath)
	})

	t.Run("invalid float in environment", func(t *testing.T) {
		t.Setenv("INCIDENTMAP_JITTER_METERS", "far")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zoom extent inverted", func(c *Config) { c.Display.MinZoom, c.Display.MaxZoom = 4, 2 }},
		{"bad color", func(c *Config) { c.Display.LowColor = "yellow" }},
		{"bad palette entry", func(c *Config) { c.Display.Palette = []string{"#fff", "nope"} }},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"hover shrinks marker", func(c *Config) { c.Display.HoverMultiplier = 0.5 }},
		{"no dataset", func(c *Config) { c.Dataset.CSVPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}
