package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "additive", cfg.Analysis.LoopNesting)
	assert.Equal(t, "name", cfg.Analysis.FunctionIdentity)
	assert.Equal(t, "error", cfg.Analysis.Recursion)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shadertune.yml")
	yml := `version: "1.0"
analysis:
  loop_nesting: multiplicative
  function_identity: signature
  max_workers: 2
output:
  format: html
  top_lines: 3
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "multiplicative", cfg.Analysis.LoopNesting)
	assert.Equal(t, "signature", cfg.Analysis.FunctionIdentity)
	assert.Equal(t, "error", cfg.Analysis.Recursion, "unset keys keep defaults")
	assert.Equal(t, 2, cfg.Analysis.MaxWorkers)
	assert.Equal(t, "html", cfg.Output.Format)
	assert.Equal(t, 3, cfg.Output.TopLines)
	assert.Equal(t, 80, cfg.Analysis.HeatThresholds.Critical)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yml"))
	assert.ErrorContains(t, err, "failed to read config file")

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("analysis: [1, 2"), 0644))
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, "failed to parse config file")

	invalid := filepath.Join(dir, "invalid.yml")
	require.NoError(t, os.WriteFile(invalid, []byte("analysis:\n  recursion: ignore\n"), 0644))
	_, err = LoadConfig(invalid)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"format", func(c *Config) { c.Output.Format = "xml" }},
		{"workers", func(c *Config) { c.Analysis.MaxWorkers = 0 }},
		{"nesting", func(c *Config) { c.Analysis.LoopNesting = "geometric" }},
		{"identity", func(c *Config) { c.Analysis.FunctionIdentity = "mangled" }},
		{"thresholds", func(c *Config) { c.Analysis.HeatThresholds.Hot = 90 }},
		{"extension", func(c *Config) { c.Files.Extensions = []string{"glsl"} }},
		{"future version", func(c *Config) { c.Version = "2.0" }},
		{"bad version", func(c *Config) { c.Version = "one" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGenerateConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".shadertune.yml")
	require.NoError(t, GenerateConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestFileFilters(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.IsShaderFile("shaders/blur.frag"))
	assert.True(t, cfg.IsShaderFile("LIGHT.GLSL"))
	assert.False(t, cfg.IsShaderFile("main.go"))

	assert.True(t, cfg.IsExcluded("project/node_modules/pkg/a.glsl"))
	assert.True(t, cfg.IsExcluded(".git/hooks/x.vert"))
	assert.False(t, cfg.IsExcluded("./shaders/a.frag"))
}
