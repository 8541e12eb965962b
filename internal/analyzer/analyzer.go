package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"shadertune/internal/config"
	"shadertune/internal/frontend/parser"
	"shadertune/internal/models"
)

// Analyzer reads shader files and runs the cost engine over them.
type Analyzer struct {
	config *config.Config
	engine *Engine
	logger *slog.Logger
}

// SourceError carries the diagnostics of a shader that failed to parse.
type SourceError struct {
	File   string
	Errors []parser.ParseError
}

func (e *SourceError) Error() string {
	lines := make([]string, len(e.Errors))
	for i, pe := range e.Errors {
		lines[i] = fmt.Sprintf("ERROR: %s:%d:%d: %s", e.File, pe.Line, pe.Column, pe.Message)
	}
	return strings.Join(lines, "\n")
}

func NewAnalyzer() *Analyzer {
	analyzer, _ := NewAnalyzerWithConfig(config.DefaultConfig(), nil)
	return analyzer
}

// NewAnalyzerWithConfig builds an analyzer; a nil logger discards traces.
func NewAnalyzerWithConfig(cfg *config.Config, logger *slog.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	engine, err := NewEngineWithConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		config: cfg,
		engine: engine,
		logger: logger,
	}, nil
}

// AnalyzeSource parses and costs one shader held in memory.
func (a *Analyzer) AnalyzeSource(name, source string) (*models.FileResult, error) {
	tree, errs := parser.Parse(source)
	if len(errs) > 0 {
		return nil, &SourceError{File: name, Errors: errs}
	}

	result, err := a.engine.Analyze(name, tree)
	if err != nil {
		return nil, err
	}
	result.Source = splitLines(source)
	result.Finalize(a.config.Output.TopLines, a.Heat)
	return result, nil
}

// AnalyzeFile reads and analyzes one shader file.
func (a *Analyzer) AnalyzeFile(filename string) (*models.FileResult, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if limit := int64(a.config.Files.MaxFileSize) * 1024; limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%s exceeds max_file_size of %d KB", filename, a.config.Files.MaxFileSize)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return a.AnalyzeSource(filename, string(data))
}

// AnalyzeFiles analyzes files concurrently, bounded by max_workers. A file
// that fails is recorded on its result and does not stop the others;
// results keep the input order.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, filenames []string) (*models.AnalysisResult, error) {
	startTime := time.Now()
	results := make([]*models.FileResult, len(filenames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Analysis.MaxWorkers)

	for i, filename := range filenames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fr, err := a.AnalyzeFile(filename)
			if err != nil {
				a.logger.Debug("analysis failed", "file", filename, "error", err)
				fr = &models.FileResult{File: filename, Error: err.Error()}
			}
			results[i] = fr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := models.NewAnalysisResult()
	for _, fr := range results {
		result.AddFile(fr)
	}
	result.AnalysisDuration = time.Since(startTime).String()
	return result, nil
}

// Heat classifies a line cost with the configured thresholds.
func (a *Analyzer) Heat(cost, maxCost int) models.HeatLevel {
	ht := a.config.Analysis.HeatThresholds
	return models.Heat(cost, maxCost, ht.Warm, ht.Hot, ht.Critical)
}

func splitLines(source string) []string {
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
