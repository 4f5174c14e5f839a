// Package config loads the settings of a scoring run. Values are layered as
// defaults, then an optional YAML file, then FNBOUND_* environment variables,
// then command-line flags bound by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyFuncDir       = "funcdir"
	KeySymDir        = "symdir"
	KeyOutDir        = "outdir"
	KeySuffixes      = "suffixes"
	KeyWorkers       = "workers"
	KeySummaryFormat = "summary.format"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyDatabase      = "database"
	KeyMetricsFile   = "metricsfile"
)

// EnvPrefix prefixes every environment override, e.g. FNBOUND_WORKERS.
const EnvPrefix = "FNBOUND"

// Summary formats.
const (
	SummaryNone = "none"
	SummaryJSON = "json"
	SummaryYAML = "yaml"
)

// DefaultSuffixes are the prediction file patterns probed in order; the first
// one matching any file wins.
var DefaultSuffixes = []string{"*.newgt", "*.funcbd", "*.bap*gt"}

// Settings is the effective configuration of a run.
type Settings struct {
	FuncDir  string   `mapstructure:"funcdir"`
	SymDir   string   `mapstructure:"symdir"`
	OutDir   string   `mapstructure:"outdir"`
	Suffixes []string `mapstructure:"suffixes"`
	Workers  int      `mapstructure:"workers"`

	Summary struct {
		Format string `mapstructure:"format"`
	} `mapstructure:"summary"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	// Database is the SQLite file runs are recorded in. Empty disables it.
	Database string `mapstructure:"database"`
	// MetricsFile is the Prometheus textfile to write. Empty disables it.
	MetricsFile string `mapstructure:"metricsfile"`
}

// New returns a viper instance with defaults and environment overrides set.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeySuffixes, DefaultSuffixes)
	v.SetDefault(KeyWorkers, runtime.NumCPU())
	v.SetDefault(KeySummaryFormat, SummaryNone)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile reads path into v. With an empty path, fnbound.yaml is looked up
// in the working directory and the user configuration directory, and its
// absence is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
		return nil
	}

	v.SetConfigName("fnbound")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "fnbound"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Load unmarshals and validates the settings held by v.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if s.OutDir == "" {
		s.OutDir = s.FuncDir
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the settings for values a run cannot start with.
func (s *Settings) Validate() error {
	var errs []error
	if s.FuncDir == "" {
		errs = append(errs, errors.New("funcdir is required"))
	}
	if s.SymDir == "" {
		errs = append(errs, errors.New("symdir is required"))
	}
	if len(s.Suffixes) == 0 {
		errs = append(errs, errors.New("at least one prediction suffix is required"))
	}
	if s.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", s.Workers))
	}
	switch s.Summary.Format {
	case SummaryNone, SummaryJSON, SummaryYAML:
	default:
		errs = append(errs, fmt.Errorf("summary format must be none, json or yaml, got %q", s.Summary.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
