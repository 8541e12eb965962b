package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"shadertune/internal/analyzer"
	"shadertune/internal/config"
	"shadertune/internal/models"
	"shadertune/internal/watcher"
)

var (
	formatFlag         string
	outputFlag         string
	watchFlag          bool
	configFlag         string
	generateConfigFlag bool
	verboseFlag        bool
	nestingFlag        string
	identityFlag       string
	recursionFlag      string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shadertune [shader files or directories]",
	Short: "A static cost analyzer for GLSL shaders",
	Long: `shadertune estimates how much arithmetic every line of a GLSL shader
performs, accounting for vector widths, constant loop bounds and function
calls, and renders the result as a heatmap.

Examples:
  shadertune blur.frag                     # Analyze one shader
  shadertune shaders/                      # Analyze every shader in a directory
  shadertune --format=html blur.frag       # Write output.html
  shadertune --nesting=multiplicative .    # Multiply nested loop bounds
  shadertune --config=.shadertune.yml .    # Use custom config
  shadertune --generate-config             # Generate sample config file`,
	Run: runAnalysis,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&formatFlag, "format", "f", "console", "Output format (console, json, html)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the report to this file")
	rootCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-analyze shaders when they change")
	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Path to configuration file")
	rootCmd.Flags().BoolVar(&generateConfigFlag, "generate-config", false, "Generate sample configuration file")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show configuration, loops and pass traces")
	rootCmd.Flags().StringVar(&nestingFlag, "nesting", "", "Loop nesting policy (additive, multiplicative)")
	rootCmd.Flags().StringVar(&identityFlag, "identity", "", "Function identity (name, signature)")
	rootCmd.Flags().StringVar(&recursionFlag, "recursion", "", "Recursion handling (error, partial)")
}

func runAnalysis(cmd *cobra.Command, args []string) {
	if generateConfigFlag {
		generateConfig()
		return
	}

	if len(args) == 0 {
		_ = cmd.Usage()
		os.Exit(1)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		color.Red("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	var logger *slog.Logger
	if cfg.Output.Verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	shaders, err := collectAll(cfg, args)
	if err != nil {
		color.Red("%v\n", err)
		os.Exit(1)
	}
	if len(shaders) == 0 {
		color.Yellow("No shader files found to analyze\n")
		os.Exit(1)
	}

	engine, err := analyzer.NewAnalyzerWithConfig(cfg, logger)
	if err != nil {
		color.Red("Error creating analyzer: %v\n", err)
		os.Exit(1)
	}
	reportGen := analyzer.NewReportGeneratorWithConfig(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Output.Verbose {
		color.Cyan("Analyzing %d shader files with %d workers...\n\n", len(shaders), cfg.Analysis.MaxWorkers)
	}

	result, err := engine.AnalyzeFiles(ctx, shaders)
	if err != nil {
		color.Red("Analysis failed: %v\n", err)
		os.Exit(1)
	}
	emitReport(cfg, reportGen, result)

	if watchFlag {
		if err := watch(ctx, cfg, logger, engine, reportGen, args); err != nil {
			color.Red("Watch mode failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if result.HasFailures() {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = formatFlag
	}
	if flags.Changed("output") {
		cfg.Output.OutputFile = outputFlag
	}
	if flags.Changed("verbose") {
		cfg.Output.Verbose = verboseFlag
	}
	if flags.Changed("nesting") {
		cfg.Analysis.LoopNesting = nestingFlag
	}
	if flags.Changed("identity") {
		cfg.Analysis.FunctionIdentity = identityFlag
	}
	if flags.Changed("recursion") {
		cfg.Analysis.Recursion = recursionFlag
	}
	if cfg.Output.Format == "html" && cfg.Output.OutputFile == "" {
		cfg.Output.OutputFile = analyzer.DefaultHTMLOutput
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func emitReport(cfg *config.Config, reportGen *analyzer.ReportGenerator, result *models.AnalysisResult) {
	report := reportGen.Generate(result)

	if cfg.Output.OutputFile == "" {
		fmt.Print(report)
		return
	}

	if err := writeReportToFile(report, cfg.Output.OutputFile); err != nil {
		color.Red("Failed to write report to file: %v\n", err)
	} else {
		color.Green("Report saved to: %s\n", cfg.Output.OutputFile)
	}
	// the report is on disk, failures still go to the terminal
	for _, fr := range result.Results {
		if fr.Error != "" {
			fmt.Println(fr.Error)
		}
	}
}

func watch(ctx context.Context, cfg *config.Config, logger *slog.Logger, engine *analyzer.Analyzer,
	reportGen *analyzer.ReportGenerator, paths []string) error {
	fw, err := watcher.NewFileWatcher(cfg, logger)
	if err != nil {
		return err
	}
	defer fw.Close()

	err = fw.Watch(paths, func(changed []string) error {
		color.Cyan("\nChanged: %d shader file(s), re-analyzing...\n\n", len(changed))
		result, err := engine.AnalyzeFiles(ctx, changed)
		if err != nil {
			return err
		}
		emitReport(cfg, reportGen, result)
		return nil
	})
	if err != nil {
		return err
	}

	color.Cyan("Watching %d directories for changes (Ctrl+C to stop)\n", len(fw.WatchedPaths()))
	<-ctx.Done()
	return nil
}

func writeReportToFile(report, filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(filePath, []byte(report), 0644)
}

func generateConfig() {
	configPath := ".shadertune.yml"
	if err := config.GenerateConfig(configPath); err != nil {
		color.Red("Failed to generate config file: %v\n", err)
		os.Exit(1)
	}
	color.Green("Generated sample configuration file: %s\n", configPath)
	color.Cyan("Edit this file to customize shadertune behavior\n")
	color.Cyan("Run 'shadertune --config=%s .' to use it\n", configPath)
}

func collectAll(cfg *config.Config, args []string) ([]string, error) {
	var shaders []string
	for _, arg := range args {
		files, err := collectShaderFiles(cfg, arg)
		if err != nil {
			return nil, fmt.Errorf("error collecting files from %s: %w", arg, err)
		}
		shaders = append(shaders, files...)
	}
	return shaders, nil
}

// collectShaderFiles recursively finds shader sources under path. A path
// naming a file is taken as is, whatever its extension.
func collectShaderFiles(cfg *config.Config, path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var shaders []string
	err = filepath.Walk(path, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if filePath != path && cfg.IsExcluded(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if cfg.IsShaderFile(filePath) && !cfg.IsExcluded(info.Name()) {
			shaders = append(shaders, filePath)
		}
		return nil
	})

	return shaders, err
}
