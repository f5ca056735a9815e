package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverlaysFile(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`scoring:
  highPenalty: 9
lint:
  maxFunctionLines: 80
server:
  store: kuzu
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codesense.yml"), data, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Scoring.HighPenalty)
	assert.Equal(t, 3, cfg.Scoring.MediumPenalty, "unset fields keep their defaults")
	assert.Equal(t, 80, cfg.Lint.MaxFunctionLines)
	assert.Equal(t, "kuzu", cfg.Server.Store)
}

func TestLoad_YamlExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codesense.yaml"), []byte("review:\n  maxLines: 500\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Review.MaxLines)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codesense.yml"), []byte("scoring: [1, 2"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative penalty", func(c *Config) { c.Scoring.LowPenalty = -1 }},
		{"negative review weight", func(c *Config) { c.Review.DefaultWeight = -2 }},
		{"thresholds out of order", func(c *Config) { c.Scoring.HighComplexity = 5 }},
		{"density above one", func(c *Config) { c.Scoring.MinCommentDensity = 1.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidWeights)
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestLoad_RejectsInvalidWeights(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codesense.yml"), []byte("scoring:\n  highPenalty: -3\n"), 0o644))

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n  historyLimit: 5\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Server.HistoryLimit)
	assert.Equal(t, "memory", cfg.Server.Store)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yml"))
	assert.ErrorContains(t, err, "read config")
}
