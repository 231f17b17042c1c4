// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Setting keys. They match the CLI flag names; the environment variable of
// each is EnvPrefix + "_" + the upper-cased key with dashes as underscores.
const (
	KeyConfig    = "config"
	KeyLogLevel  = "log-level"
	KeyLogFormat = "log-format"
	KeyTimeout   = "timeout"
	KeyVerbose   = "verbose"
	KeyDryRun    = "dry-run"

	// EnvPrefix prefixes every settings environment variable.
	EnvPrefix = "PKGWARDEN"
)

// ErrInvalidSetting is the sentinel error wrapped by InvalidSettingError.
var ErrInvalidSetting = errors.New("invalid setting")

type (
	// Settings are the per-process options that are not part of the document.
	Settings struct {
		ConfigPath string
		// LogLevel and LogFormat are empty when neither flag nor environment
		// set them, leaving the choice to the document's logging block.
		LogLevel  string
		LogFormat string
		// Timeout bounds every external command; zero means no limit.
		Timeout time.Duration
		Verbose bool
		DryRun  bool
	}

	// InvalidSettingError is returned when a setting cannot be parsed.
	InvalidSettingError struct {
		Key   string
		Value string
		Err   error
	}
)

// Error implements the error interface.
func (e *InvalidSettingError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Key, e.Value, e.Err)
}

// Unwrap returns ErrInvalidSetting for errors.Is() compatibility.
func (e *InvalidSettingError) Unwrap() error { return ErrInvalidSetting }

// NewViper creates a Viper instance with the settings defaults and
// environment binding. Flags are bound by the caller.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyConfig, DefaultConfigPath)
	v.SetDefault(KeyTimeout, "0s")
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyDryRun, false)
	return v
}

// ReadSettings extracts Settings from v.
func ReadSettings(v *viper.Viper) (Settings, error) {
	s := Settings{
		ConfigPath: v.GetString(KeyConfig),
		LogLevel:   v.GetString(KeyLogLevel),
		LogFormat:  v.GetString(KeyLogFormat),
		Verbose:    v.GetBool(KeyVerbose),
		DryRun:     v.GetBool(KeyDryRun),
	}
	if s.ConfigPath == "" {
		s.ConfigPath = DefaultConfigPath
	}

	timeout, err := parseTimeout(v.GetString(KeyTimeout))
	if err != nil {
		return Settings{}, &InvalidSettingError{Key: KeyTimeout, Value: v.GetString(KeyTimeout), Err: err}
	}
	s.Timeout = timeout
	return s, nil
}

// parseTimeout accepts a Go duration or a plain number of seconds.
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs < 0 {
			return 0, errors.New("must not be negative")
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.New("must not be negative")
	}
	return d, nil
}

// Logging resolves the effective logging options: settings win over the
// document's logging block, which wins over the defaults (info, text).
func (s Settings) Logging(doc *Document) LoggingConfig {
	cfg := LoggingConfig{Level: "info", Format: "text"}
	if doc != nil {
		if doc.Logging.Level != "" {
			cfg.Level = doc.Logging.Level
		}
		if doc.Logging.Format != "" {
			cfg.Format = doc.Logging.Format
		}
		cfg.Timestamps = doc.Logging.Timestamps
	}
	if s.LogLevel != "" {
		cfg.Level = s.LogLevel
	}
	if s.LogFormat != "" {
		cfg.Format = s.LogFormat
	}
	if s.Verbose && s.LogLevel == "" {
		cfg.Level = "debug"
	}
	return cfg
}
