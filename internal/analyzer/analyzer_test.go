package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shadertune/internal/analyzer/passes"
	"shadertune/internal/config"
	"shadertune/internal/models"
)

func newTestAnalyzer(t *testing.T, cfg *config.Config) *Analyzer {
	t.Helper()
	a, err := NewAnalyzerWithConfig(cfg, nil)
	require.NoError(t, err)
	return a
}

func writeShader(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func TestAnalyzeSource(t *testing.T) {
	a := NewAnalyzer()
	fr, err := a.AnalyzeSource("loop.frag", loopShader)
	require.NoError(t, err)

	assert.Len(t, fr.Source, 7)
	assert.Equal(t, 54, fr.TotalCost)
	require.Len(t, fr.HotLines, 3)
	assert.Equal(t, models.LineCost{Line: 5, Cost: 40, Heat: models.HeatCritical, Source: "        v = v + w;"}, fr.HotLines[0])
	assert.Equal(t, 4, fr.HotLines[1].Line)
	assert.Equal(t, models.HeatWarm, fr.HotLines[1].Heat)
	assert.Equal(t, models.HeatCold, fr.HotLines[2].Heat)
}

func TestAnalyzeSourceTopLines(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.TopLines = 1
	fr, err := newTestAnalyzer(t, cfg).AnalyzeSource("loop.frag", loopShader)
	require.NoError(t, err)

	require.Len(t, fr.HotLines, 1)
	assert.Equal(t, 5, fr.HotLines[0].Line)
}

func TestAnalyzeSourceParseError(t *testing.T) {
	src := "void main() {\n    x = 1.0;\n}\n"
	_, err := NewAnalyzer().AnalyzeSource("bad.frag", src)
	require.Error(t, err)

	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, "bad.frag", srcErr.File)
	assert.True(t, strings.HasPrefix(err.Error(), "ERROR: bad.frag:2:"), err.Error())
	assert.Contains(t, err.Error(), "'x' : undeclared identifier")
}

func TestAnalyzeSourceRecursion(t *testing.T) {
	_, err := NewAnalyzer().AnalyzeSource("rec.frag", recursiveShader)
	assert.ErrorIs(t, err, passes.ErrRecursion)
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	path := writeShader(t, dir, "loop.frag", loopShader)

	fr, err := NewAnalyzer().AnalyzeFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, fr.File)
	assert.Equal(t, 40, fr.MaxCost)

	_, err = NewAnalyzer().AnalyzeFile(filepath.Join(dir, "missing.frag"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestAnalyzeFileTooLarge(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Files.MaxFileSize = 1
	path := writeShader(t, t.TempDir(), "big.frag", loopShader+strings.Repeat("// padding\n", 200))

	_, err := newTestAnalyzer(t, cfg).AnalyzeFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds max_file_size")
}

func TestAnalyzeFiles(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeShader(t, dir, "loop.frag", loopShader),
		writeShader(t, dir, "bad.frag", "void main() { y = 2.0; }\n"),
		writeShader(t, dir, "call.frag", callShader),
		filepath.Join(dir, "missing.frag"),
	}

	cfg := config.DefaultConfig()
	cfg.Analysis.MaxWorkers = 2
	result, err := newTestAnalyzer(t, cfg).AnalyzeFiles(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, files, result.Files, "results keep input order")
	assert.Equal(t, 2, result.Failures)
	assert.True(t, result.HasFailures())
	assert.Equal(t, 54, result.Results[0].TotalCost)
	assert.Contains(t, result.Results[1].Error, "undeclared identifier")
	assert.Empty(t, result.Results[2].Error)
	assert.NotEmpty(t, result.Results[3].Error)
	assert.Equal(t, result.Results[0].TotalCost+result.Results[2].TotalCost, result.TotalCost)
	assert.NotEmpty(t, result.AnalysisDuration)
}

func TestAnalyzeFilesCanceled(t *testing.T) {
	path := writeShader(t, t.TempDir(), "loop.frag", loopShader)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnalyzer().AnalyzeFiles(ctx, []string{path})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeSampleShader(t *testing.T) {
	fr, err := NewAnalyzer().AnalyzeFile(filepath.Join("..", "..", "testdata", "blur.frag"))
	require.NoError(t, err)

	weight := functionByKey(t, fr, "weight")
	assert.Equal(t, 10, weight.Invocations, "called directly and through sampleAt in a 5-tap loop")
	assert.Equal(t, 5, functionByKey(t, fr, "sampleAt").Invocations)
	assert.Positive(t, fr.LineCosts[14])
	assert.NotEmpty(t, fr.HotLines)
}
