// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"shadertune/internal/analyzer/passes"
)

// CurrentVersion is the newest config file version this build understands.
const CurrentVersion = "1.0"

// Config represents the configuration for shadertune
type Config struct {
	// General settings
	Version     string `yaml:"version" json:"version"`
	ProjectName string `yaml:"project_name,omitempty" json:"project_name,omitempty"`

	// Analysis settings
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// File patterns
	Files FilesConfig `yaml:"files" json:"files"`
}

type AnalysisConfig struct {
	// additive or multiplicative
	LoopNesting string `yaml:"loop_nesting" json:"loop_nesting"`

	// name or signature
	FunctionIdentity string `yaml:"function_identity" json:"function_identity"`

	// error or partial
	Recursion string `yaml:"recursion" json:"recursion"`

	// Parallel analysis
	MaxWorkers int `yaml:"max_workers" json:"max_workers"`

	HeatThresholds HeatThresholds `yaml:"heat_thresholds" json:"heat_thresholds"`
}

// HeatThresholds are percentages of the hottest line's cost.
type HeatThresholds struct {
	Warm     int `yaml:"warm" json:"warm"`         // >= 25
	Hot      int `yaml:"hot" json:"hot"`           // >= 50
	Critical int `yaml:"critical" json:"critical"` // >= 80
}

type OutputConfig struct {
	// Default output format
	Format string `yaml:"format" json:"format"`

	// Colorized output
	Colors bool `yaml:"colors" json:"colors"`

	// Verbosity level
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Per-function cost table
	ShowFunctions bool `yaml:"show_functions" json:"show_functions"`

	// Number of hottest lines listed after the heatmap
	TopLines int `yaml:"top_lines" json:"top_lines"`

	// Output file path (optional)
	OutputFile string `yaml:"output_file,omitempty" json:"output_file,omitempty"`
}

type FilesConfig struct {
	// Shader file extensions, with the leading dot
	Extensions []string `yaml:"extensions" json:"extensions"`

	// Exclude patterns, matched against each path element
	Exclude []string `yaml:"exclude" json:"exclude"`

	// Max file size (in KB)
	MaxFileSize int `yaml:"max_file_size" json:"max_file_size"`
}

var validFormats = []string{"console", "json", "html"}

func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Analysis: AnalysisConfig{
			LoopNesting:      string(passes.NestingAdditive),
			FunctionIdentity: string(passes.IdentityName),
			Recursion:        string(passes.RecursionModeError),
			MaxWorkers:       4,
			HeatThresholds: HeatThresholds{
				Warm:     25,
				Hot:      50,
				Critical: 80,
			},
		},
		Output: OutputConfig{
			Format:        "console",
			Colors:        true,
			Verbose:       false,
			ShowFunctions: true,
			TopLines:      5,
		},
		Files: FilesConfig{
			Extensions:  []string{".glsl", ".frag", ".vert", ".fs", ".vs", ".fsh", ".vsh"},
			Exclude:     []string{".git", "node_modules", "vendor"},
			MaxFileSize: 1024, // 1MB
		},
	}
}

// LoadConfig loads configuration from file or returns default
func LoadConfig(configPath string) (*Config, error) {
	// If no config path provided, look for default config files
	if configPath == "" {
		configPath = findConfigFile()
	}

	// If still no config found, return default
	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultConfig() // Start with defaults

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// findConfigFile looks for config files in common locations
func findConfigFile() string {
	possiblePaths := []string{
		".shadertune.yml",
		".shadertune.yaml",
		"shadertune.yml",
		"shadertune.yaml",
		".config/shadertune.yml",
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != "" {
		v := "v" + strings.TrimPrefix(c.Version, "v")
		if !semver.IsValid(v) {
			return fmt.Errorf("invalid config version: %s", c.Version)
		}
		if semver.Compare(v, "v"+CurrentVersion) > 0 {
			return fmt.Errorf("config version %s is newer than supported version %s", c.Version, CurrentVersion)
		}
	}

	if _, err := passes.ParseNestingPolicy(c.Analysis.LoopNesting); err != nil {
		return err
	}
	if _, err := passes.ParseFunctionIdentity(c.Analysis.FunctionIdentity); err != nil {
		return err
	}
	if _, err := passes.ParseRecursionMode(c.Analysis.Recursion); err != nil {
		return err
	}

	ht := c.Analysis.HeatThresholds
	if ht.Warm <= 0 || ht.Warm >= ht.Hot || ht.Hot >= ht.Critical || ht.Critical > 100 {
		return fmt.Errorf("heat thresholds must be ascending percentages between 1 and 100")
	}

	if !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.Output.Format, validFormats)
	}

	if c.Analysis.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be at least 1")
	}

	if c.Output.TopLines < 0 {
		return fmt.Errorf("top_lines must not be negative")
	}

	for _, ext := range c.Files.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("file extension %q must start with a dot", ext)
		}
	}

	return nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateConfig creates a sample configuration file
func GenerateConfig(configPath string) error {
	config := DefaultConfig()
	return config.SaveConfig(configPath)
}

// IsShaderFile reports whether path has one of the configured extensions.
func (c *Config) IsShaderFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(c.Files.Extensions, ext)
}

// IsExcluded reports whether any element of path matches an exclude pattern.
func (c *Config) IsExcluded(path string) bool {
	for _, elem := range strings.Split(filepath.ToSlash(path), "/") {
		if elem == "" || elem == "." {
			continue
		}
		for _, pattern := range c.Files.Exclude {
			if ok, _ := filepath.Match(pattern, elem); ok {
				return true
			}
		}
	}
	return false
}
