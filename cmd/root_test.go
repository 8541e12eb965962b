package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadertune/internal/config"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("void main() {}\n"), 0644))
}

func TestCollectShaderFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "blur.frag"))
	touch(t, filepath.Join(dir, "post", "tone.glsl"))
	touch(t, filepath.Join(dir, "post", "README.md"))
	touch(t, filepath.Join(dir, "node_modules", "dep.vert"))

	files, err := collectShaderFiles(config.DefaultConfig(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "blur.frag"),
		filepath.Join(dir, "post", "tone.glsl"),
	}, files)
}

func TestCollectExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shader.txt")
	touch(t, path)

	files, err := collectShaderFiles(config.DefaultConfig(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)

	_, err = collectAll(config.DefaultConfig(), []string{filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestLoadConfigFlags(t *testing.T) {
	t.Cleanup(func() {
		for _, name := range []string{"format", "nesting", "identity"} {
			flag := rootCmd.Flags().Lookup(name)
			_ = flag.Value.Set(flag.DefValue)
			flag.Changed = false
		}
	})
	configFlag = filepath.Join(t.TempDir(), "shadertune.yml")
	defer func() { configFlag = "" }()
	require.NoError(t, config.GenerateConfig(configFlag))

	require.NoError(t, rootCmd.Flags().Set("format", "html"))
	require.NoError(t, rootCmd.Flags().Set("nesting", "multiplicative"))

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, "html", cfg.Output.Format)
	assert.Equal(t, "output.html", cfg.Output.OutputFile)
	assert.Equal(t, "multiplicative", cfg.Analysis.LoopNesting)
	assert.Equal(t, "name", cfg.Analysis.FunctionIdentity)

	require.NoError(t, rootCmd.Flags().Set("identity", "mangled"))
	_, err = loadConfig(rootCmd)
	assert.Error(t, err)
}
