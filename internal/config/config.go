package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Backend names accepted by the "backend" setting.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// DefaultRecordsFile is the saved-password file name used when records_file is unset.
const DefaultRecordsFile = "saved_passwords.json"

// Config holds application configuration.
type Config struct {
	// RecordsFile is the path of the saved-password JSON file.
	// Empty means <baseDir>/saved_passwords.json.
	RecordsFile string `json:"records_file,omitempty"`

	// Backend selects record storage: "json" (default) or "sqlite".
	Backend string `json:"backend,omitempty" validate:"omitempty,oneof=json sqlite"`

	// DefaultLength is the password length used when none is given.
	DefaultLength int `json:"default_length,omitempty" validate:"gtefield=MinLength,ltefield=MaxLength"`

	// MinLength and MaxLength bound lengths accepted by the front-ends.
	// The generator itself only requires a length of at least 1.
	MinLength int `json:"min_length,omitempty" validate:"gte=1"`
	MaxLength int `json:"max_length,omitempty" validate:"gtefield=MinLength"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`

	// UIBind and UIPort control where `passgen ui` listens.
	UIBind string `json:"ui_bind,omitempty" validate:"omitempty,ip"`
	UIPort int    `json:"ui_port,omitempty" validate:"gte=0,lte=65535"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:       BackendJSON,
		DefaultLength: 16,
		MinLength:     4,
		MaxLength:     128,
		LogLevel:      "warn",
		UIBind:        "127.0.0.1",
		UIPort:        7878,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints after defaults have been applied.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RecordsPath resolves the saved-password file path against baseDir.
// An absolute records_file is used as is.
func (c *Config) RecordsPath(baseDir string) string {
	file := strings.TrimSpace(c.RecordsFile)
	if file == "" {
		return filepath.Join(baseDir, DefaultRecordsFile)
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(baseDir, file)
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.passgen.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path, applies defaults and validates.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	merged := Merge(DefaultConfig(), cfg)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		RecordsFile:   firstString(overlay.RecordsFile, base.RecordsFile),
		Backend:       firstString(overlay.Backend, base.Backend),
		LogLevel:      firstString(overlay.LogLevel, base.LogLevel),
		UIBind:        firstString(overlay.UIBind, base.UIBind),
		DefaultLength: firstInt(overlay.DefaultLength, base.DefaultLength),
		MinLength:     firstInt(overlay.MinLength, base.MinLength),
		MaxLength:     firstInt(overlay.MaxLength, base.MaxLength),
		UIPort:        firstInt(overlay.UIPort, base.UIPort),
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func firstInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
