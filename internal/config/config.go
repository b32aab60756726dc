package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const appName = "todolist"

// Default values.
const (
	DefaultLogDir    = "~/.todolist/logs"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultAltScreen = true
)

// Default theme colors.
const (
	DefaultAccent = "#f5c2e7"
	DefaultMuted  = "#6c7086"
	DefaultDone   = "#a6e3a1"
)

// ThemeConfig holds the renderer colors.
type ThemeConfig struct {
	Accent string `toml:"accent"`
	Muted  string `toml:"muted"`
	Done   string `toml:"done"`
}

// Config holds the full configuration for todolist.
type Config struct {
	// Snapshot files
	SeedFile   string `toml:"seed_file"`
	ExportFile string `toml:"export_file"`
	SchemaFile string `toml:"schema_file"`

	// Logging
	LogDir    string `toml:"log_dir"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// Terminal
	AltScreen bool        `toml:"alt_screen"`
	Theme     ThemeConfig `toml:"theme"`

	// Derived
	WorkDir    string `toml:"-"`
	ConfigFile string `toml:"-"`
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file
// 3. Project config file
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	cfg.WorkDir = wd

	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
		cfg.ConfigFile = userConfigFile
	}

	if projectConfigFile := findProjectConfigFile(wd); projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
		cfg.ConfigFile = projectConfigFile
	}

	loadFromEnv(cfg)

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.LogDir = DefaultLogDir
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.AltScreen = DefaultAltScreen
	cfg.Theme = ThemeConfig{
		Accent: DefaultAccent,
		Muted:  DefaultMuted,
		Done:   DefaultDone,
	}
}

// loadConfigFile loads TOML config from the given file. Keys absent from the
// file keep their current values.
func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TODOLIST_SEED"); v != "" {
		cfg.SeedFile = v
	}
	if v := os.Getenv("TODOLIST_EXPORT"); v != "" {
		cfg.ExportFile = v
	}
	if v := os.Getenv("TODOLIST_SCHEMA"); v != "" {
		cfg.SchemaFile = v
	}
	if v := os.Getenv("TODOLIST_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("TODOLIST_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TODOLIST_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TODOLIST_ALT_SCREEN"); v != "" {
		cfg.AltScreen = boolFromString(v)
	}
}

// parseFlags defines and parses the global CLI flags.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet(appName, flag.ContinueOnError)
	}
	fs.StringVar(&cfg.SeedFile, "seed", cfg.SeedFile, "Snapshot file to load todos from")
	fs.StringVar(&cfg.ExportFile, "export", cfg.ExportFile, "Snapshot file to write the final state to")
	fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "JSON Schema overriding the built-in snapshot schema")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Log directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")
	fs.BoolVar(&cfg.AltScreen, "alt-screen", cfg.AltScreen, "Use the terminal's alternate screen")
	return fs.Parse(args)
}

// finalizeConfig computes derived values and validates settings.
func finalizeConfig(cfg *Config) error {
	cfg.LogDir = expandPath(cfg.LogDir)
	cfg.SeedFile = resolvePath(cfg.WorkDir, cfg.SeedFile)
	cfg.ExportFile = resolvePath(cfg.WorkDir, cfg.ExportFile)
	cfg.SchemaFile = resolvePath(cfg.WorkDir, cfg.SchemaFile)

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", cfg.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch cfg.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log format %q, must be one of: text, json, logfmt", cfg.LogFormat)
	}
	return nil
}

// ResolvePath expands ~ and environment variables in p and makes it relative
// to WorkDir. "" and "-" are returned unchanged.
func (c *Config) ResolvePath(p string) string {
	return resolvePath(c.WorkDir, p)
}

func resolvePath(base, p string) string {
	if p == "" || p == "-" {
		return p
	}
	p = expandPath(p)
	if filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

// Encode writes the effective configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
