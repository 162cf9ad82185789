package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// CurrentVersion is the config schema version written by Save
	CurrentVersion = 1

	// ConfigDir is the per-repository configuration directory
	ConfigDir = ".expertfinder"

	// EnvPrefix prefixes environment overrides, e.g. EXPERTFINDER_DISPLAY_TOPK=1
	EnvPrefix = "EXPERTFINDER"
)

// Display modes
const (
	DisplayModeSingle = "single"
	DisplayModeTop    = "top"
)

// Oracle strategies
const (
	StrategyBlame = "blame"
	StrategyDOA   = "doa"
)

// Focus sources
const (
	FocusSourceStdin    = "stdin"
	FocusSourceFsnotify = "fsnotify"
)

// Config represents the complete expertfinder configuration
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Display DisplayConfig `json:"display" mapstructure:"display"`
	Oracle  OracleConfig  `json:"oracle" mapstructure:"oracle"`
	Focus   FocusConfig   `json:"focus" mapstructure:"focus"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`
}

// DisplayConfig controls what the live display shows
type DisplayConfig struct {
	// Mode is "single" (top expert only) or "top" (top-K list)
	Mode   string `json:"mode" mapstructure:"mode"`
	TopK   int    `json:"topK" mapstructure:"topK"`
	Prefix string `json:"prefix" mapstructure:"prefix"`
	// Style is "auto", "plain" or "json"
	Style string `json:"style" mapstructure:"style"`
}

// OracleConfig selects and tunes the scoring oracle
type OracleConfig struct {
	Strategy    string      `json:"strategy" mapstructure:"strategy"`
	TimeoutMs   int         `json:"timeoutMs" mapstructure:"timeoutMs"`
	AliasesFile string      `json:"aliasesFile" mapstructure:"aliasesFile"`
	Blame       BlameConfig `json:"blame" mapstructure:"blame"`
}

// BlameConfig tunes the git-blame oracle
type BlameConfig struct {
	HalfLifeDays    int      `json:"halfLifeDays" mapstructure:"halfLifeDays"`
	ExcludeBots     bool     `json:"excludeBots" mapstructure:"excludeBots"`
	BotPatterns     []string `json:"botPatterns" mapstructure:"botPatterns"`
	MinContribution float64  `json:"minContribution" mapstructure:"minContribution"`
}

// FocusConfig selects where focus-change signals come from
type FocusConfig struct {
	Source         string   `json:"source" mapstructure:"source"`
	DebounceMs     int      `json:"debounceMs" mapstructure:"debounceMs"`
	IgnorePatterns []string `json:"ignorePatterns" mapstructure:"ignorePatterns"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format     string `json:"format" mapstructure:"format"`
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file,omitempty" mapstructure:"file"`
	MaxSize    string `json:"maxSize,omitempty" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups,omitempty" mapstructure:"maxBackups"`
}

// MetricsConfig controls the Prometheus endpoint of `watch`
type MetricsConfig struct {
	Addr string `json:"addr,omitempty" mapstructure:"addr"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  CurrentVersion,
		RepoRoot: ".",
		Display: DisplayConfig{
			Mode:   DisplayModeTop,
			TopK:   3,
			Prefix: "experts: ",
			Style:  "auto",
		},
		Oracle: OracleConfig{
			Strategy:    StrategyDOA,
			TimeoutMs:   5000,
			AliasesFile: filepath.Join(ConfigDir, "aliases.toml"),
			Blame: BlameConfig{
				HalfLifeDays: 90,
				ExcludeBots:  true,
				BotPatterns: []string{
					`\[bot\]$`,
					`^dependabot`,
					`^renovate`,
					`^github-actions`,
				},
				MinContribution: 0.05,
			},
		},
		Focus: FocusConfig{
			Source:     FocusSourceStdin,
			DebounceMs: 300,
			IgnorePatterns: []string{
				".git/**",
				ConfigDir + "/**",
				"node_modules/**",
				"vendor/**",
				"*.log",
				"*.tmp",
				"*.swp",
			},
		},
		Logging: LoggingConfig{
			Format:     "human",
			Level:      "warn",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
	}
}

// TopK returns the effective ranking bound: 1 in single mode, Display.TopK otherwise.
func (c *Config) TopK() int {
	if c.Display.Mode == DisplayModeSingle {
		return 1
	}
	return c.Display.TopK
}

// setDefaults registers every key so environment overrides apply to all of them.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("repoRoot", d.RepoRoot)

	v.SetDefault("display.mode", d.Display.Mode)
	v.SetDefault("display.topK", d.Display.TopK)
	v.SetDefault("display.prefix", d.Display.Prefix)
	v.SetDefault("display.style", d.Display.Style)

	v.SetDefault("oracle.strategy", d.Oracle.Strategy)
	v.SetDefault("oracle.timeoutMs", d.Oracle.TimeoutMs)
	v.SetDefault("oracle.aliasesFile", d.Oracle.AliasesFile)
	v.SetDefault("oracle.blame.halfLifeDays", d.Oracle.Blame.HalfLifeDays)
	v.SetDefault("oracle.blame.excludeBots", d.Oracle.Blame.ExcludeBots)
	v.SetDefault("oracle.blame.botPatterns", d.Oracle.Blame.BotPatterns)
	v.SetDefault("oracle.blame.minContribution", d.Oracle.Blame.MinContribution)

	v.SetDefault("focus.source", d.Focus.Source)
	v.SetDefault("focus.debounceMs", d.Focus.DebounceMs)
	v.SetDefault("focus.ignorePatterns", d.Focus.IgnorePatterns)

	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)

	v.SetDefault("metrics.addr", d.Metrics.Addr)
}

// LoadConfig loads configuration from .expertfinder/config.json, applying
// defaults for missing keys and EXPERTFINDER_* environment overrides.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ConfigDir))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.RepoRoot == "" || cfg.RepoRoot == "." {
		cfg.RepoRoot = repoRoot
	}

	return &cfg, nil
}

// Save writes the configuration to .expertfinder/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	switch c.Display.Mode {
	case DisplayModeSingle, DisplayModeTop:
	default:
		return &ConfigError{Field: "display.mode", Message: "must be 'single' or 'top'"}
	}
	if c.Display.TopK < 1 {
		return &ConfigError{Field: "display.topK", Message: "must be at least 1"}
	}
	switch c.Display.Style {
	case "auto", "plain", "json":
	default:
		return &ConfigError{Field: "display.style", Message: "must be 'auto', 'plain' or 'json'"}
	}
	switch c.Oracle.Strategy {
	case StrategyBlame, StrategyDOA:
	default:
		return &ConfigError{Field: "oracle.strategy", Message: "must be 'blame' or 'doa'"}
	}
	if c.Oracle.TimeoutMs < 0 {
		return &ConfigError{Field: "oracle.timeoutMs", Message: "must not be negative"}
	}
	if c.Oracle.Blame.HalfLifeDays <= 0 {
		return &ConfigError{Field: "oracle.blame.halfLifeDays", Message: "must be positive"}
	}
	switch c.Focus.Source {
	case FocusSourceStdin, FocusSourceFsnotify:
	default:
		return &ConfigError{Field: "focus.source", Message: "must be 'stdin' or 'fsnotify'"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
