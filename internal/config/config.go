// Package config resolves the outliner configuration from defaults, an
// optional config file, the environment and command-line overrides.
//
// Precedence (highest wins):
//  1. Defaults
//  2. Config file: --config, else $XDG_CONFIG_HOME/outliner/config.yaml
//     (~/.config/outliner/config.yaml) when it exists
//  3. Environment: OUTLINER_DATA_DIR, OUTLINER_SYS_DB_PATH, LOG_LEVEL,
//     OUTLINER_REMOVE_FILES
//  4. Overrides (command-line flags)
//
// Config files are YAML (.yaml, .yml) or JSON with comments (.json).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by Load.
const (
	EnvDataDir     = "OUTLINER_DATA_DIR"
	EnvSysDBPath   = "OUTLINER_SYS_DB_PATH"
	EnvLogLevel    = "LOG_LEVEL"
	EnvRemoveFiles = "OUTLINER_REMOVE_FILES"
)

// RegistryFileName is the system database created in the data directory
// unless a registry path is configured.
const RegistryFileName = "system.db"

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigInvalid      = errors.New("invalid config")
)

// Config holds all configuration options.
type Config struct {
	// DataDir is the managed root holding one SQLite file per database.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// RegistryPath is the system database. Defaults to DataDir/system.db.
	RegistryPath string `yaml:"registry_path" json:"registry_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogFormat is text or json.
	LogFormat string `yaml:"log_format" json:"log_format"`

	// RemoveFiles makes database deletion remove the store file.
	RemoveFiles bool `yaml:"remove_files" json:"remove_files"`

	// LockTimeout bounds the wait for the provisioning lock.
	LockTimeout time.Duration `yaml:"-" json:"-"`

	// Source is the config file that was loaded, if any.
	Source string `yaml:"-" json:"-"`
}

// Overrides are values set on the command line. Empty fields are ignored.
type Overrides struct {
	DataDir      string
	RegistryPath string
	LogLevel     string
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	ConfigPath string            // --config flag value; must exist when set
	Env        map[string]string // environment variables
	Overrides  Overrides
}

// Default returns the configuration used when nothing else is set.
func Default(env map[string]string) Config {
	return Config{
		DataDir:     defaultDataDir(env),
		LogLevel:    "info",
		LogFormat:   "text",
		LockTimeout: 10 * time.Second,
	}
}

// Load resolves the configuration. Paths in the result are absolute.
func Load(input LoadInput) (Config, error) {
	env := input.Env
	if env == nil {
		env = map[string]string{}
	}
	cfg := Default(env)

	path, mustExist := input.ConfigPath, true
	if path == "" {
		path, mustExist = DefaultConfigPath(env), false
	}
	if path != "" {
		fc, loaded, err := loadFile(path, mustExist)
		if err != nil {
			return Config{}, err
		}
		if loaded {
			if err := fc.apply(&cfg); err != nil {
				return Config{}, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
			}
			cfg.Source = path
		}
	}

	if err := applyEnv(&cfg, env); err != nil {
		return Config{}, err
	}
	applyOverrides(&cfg, input.Overrides)

	if err := resolve(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/outliner/config.yaml, or
// ~/.config/outliner/config.yaml. Empty when neither variable is set.
func DefaultConfigPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "outliner", "config.yaml")
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "outliner", "config.yaml")
	}
	return ""
}

func defaultDataDir(env map[string]string) string {
	if xdg := env["XDG_DATA_HOME"]; xdg != "" {
		return filepath.Join(xdg, "outliner")
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".local", "share", "outliner")
	}
	return "databases"
}

func applyEnv(cfg *Config, env map[string]string) error {
	if v := env[EnvDataDir]; v != "" {
		cfg.DataDir = v
	}
	if v := env[EnvSysDBPath]; v != "" {
		cfg.RegistryPath = v
	}
	if v := env[EnvLogLevel]; v != "" {
		cfg.LogLevel = v
	}
	if v := env[EnvRemoveFiles]; v != "" {
		remove, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrConfigInvalid, EnvRemoveFiles, v, err)
		}
		cfg.RemoveFiles = remove
	}
	return nil
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if o.RegistryPath != "" {
		cfg.RegistryPath = o.RegistryPath
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
}

func resolve(cfg *Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrConfigInvalid)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrConfigInvalid, cfg.LogFormat)
	}

	dataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data_dir: %w", err)
	}
	cfg.DataDir = dataDir

	if cfg.RegistryPath == "" {
		cfg.RegistryPath = filepath.Join(dataDir, RegistryFileName)
	}
	registryPath, err := filepath.Abs(cfg.RegistryPath)
	if err != nil {
		return fmt.Errorf("resolve registry_path: %w", err)
	}
	cfg.RegistryPath = registryPath
	return nil
}

// levels maps config names to slog levels.
var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLevel converts a level name (case-insensitive) to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	level, ok := levels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown log level %q: expected debug, info, warn or error", name)
	}
	return level, nil
}

// Level returns the configured slog level. Load has validated it.
func (c Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}
