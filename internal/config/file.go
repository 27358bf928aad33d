package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape. Pointers distinguish "unset" from zero
// values so a file can switch remove_files off again.
type fileConfig struct {
	DataDir      *string `yaml:"data_dir" json:"data_dir"`
	RegistryPath *string `yaml:"registry_path" json:"registry_path"`
	LogLevel     *string `yaml:"log_level" json:"log_level"`
	LogFormat    *string `yaml:"log_format" json:"log_format"`
	RemoveFiles  *bool   `yaml:"remove_files" json:"remove_files"`
	LockTimeout  *string `yaml:"lock_timeout" json:"lock_timeout"`
}

// loadFile reads and parses a config file. A missing file is an error only
// when mustExist is set.
func loadFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if mustExist {
				return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}
			return fileConfig{}, false, nil
		}
		return fileConfig{}, false, fmt.Errorf("read config %s: %w", path, err)
	}

	fc, err := parseFile(filepath.Ext(path), data)
	if err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}
	return fc, true, nil
}

func parseFile(ext string, data []byte) (fileConfig, error) {
	var fc fileConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
			return fileConfig{}, fmt.Errorf("invalid YAML: %w", err)
		}
	case ".json":
		// Standardize JSONC to JSON
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(standardized))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&fc); err != nil {
			return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
		}
	default:
		return fileConfig{}, fmt.Errorf("unsupported config format %q: use .yaml, .yml or .json", ext)
	}
	return fc, nil
}

// apply overlays the values set in the file onto cfg.
func (fc fileConfig) apply(cfg *Config) error {
	if fc.DataDir != nil {
		cfg.DataDir = *fc.DataDir
	}
	if fc.RegistryPath != nil {
		cfg.RegistryPath = *fc.RegistryPath
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
	if fc.RemoveFiles != nil {
		cfg.RemoveFiles = *fc.RemoveFiles
	}
	if fc.LockTimeout != nil {
		d, err := time.ParseDuration(*fc.LockTimeout)
		if err != nil {
			return fmt.Errorf("lock_timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("lock_timeout must be positive, got %s", d)
		}
		cfg.LockTimeout = d
	}
	return nil
}
