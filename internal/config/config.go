// Package config loads casecells settings from a YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/javajack/casecells"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfig           = "CASECELLS_CONFIG"
	EnvDelimiter        = "CASECELLS_DELIMITER"
	EnvRowHeight        = "CASECELLS_ROW_HEIGHT"
	EnvLogLevel         = "CASECELLS_LOG_LEVEL"
	EnvCaseNameTemplate = "CASECELLS_CASE_NAME_TEMPLATE"
)

// DefaultPath is the config file used when neither --config nor
// CASECELLS_CONFIG names one.
const DefaultPath = "casecells.yaml"

// Config holds all casecells settings.
type Config struct {
	Delimiter string  `yaml:"delimiter"`
	RowHeight float64 `yaml:"row_height"` // 0 keeps row heights
	Sheet     string  `yaml:"sheet"`      // empty = active sheet

	Keywords KeywordsConfig `yaml:"keywords"`
	Generate GenerateConfig `yaml:"generate"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// KeywordsConfig lists the header keywords per column role, in priority order.
type KeywordsConfig struct {
	CaseName        []string `yaml:"case_name"`
	StepDescription []string `yaml:"step_description"`
	ExpectedResult  []string `yaml:"expected_result"`
	Precondition    []string `yaml:"precondition"`
	Module          string   `yaml:"module"`
}

// GenerateConfig configures the JSON generator.
type GenerateConfig struct {
	CaseNameTemplate string `yaml:"case_name_template"`
	CaseType         string `yaml:"case_type"`
}

// LoggingConfig configures the CLI logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	kw := casecells.DefaultKeywords()
	return &Config{
		Delimiter: casecells.DefaultDelimiter,
		RowHeight: casecells.DefaultRowHeight,
		Keywords: KeywordsConfig{
			CaseName:        kw[casecells.RoleCaseName],
			StepDescription: kw[casecells.RoleStepDescription],
			ExpectedResult:  kw[casecells.RoleExpectedResult],
			Precondition:    kw[casecells.RolePrecondition],
			Module:          casecells.DefaultModuleKeyword,
		},
		Generate: GenerateConfig{
			CaseNameTemplate: casecells.DefaultCaseNameTemplate,
			CaseType:         casecells.DefaultCaseType,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads configuration from path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// defaults
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %q: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the config file to load: flag when set, then CASECELLS_CONFIG,
// then DefaultPath.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return DefaultPath
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvDelimiter); v != "" {
		c.Delimiter = v
	}
	if v := os.Getenv(EnvRowHeight); v != "" {
		h, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRowHeight, err)
		}
		c.RowHeight = h
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvCaseNameTemplate); v != "" {
		c.Generate.CaseNameTemplate = v
	}
	return nil
}

// Validate checks the configuration for values the transforms cannot use.
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	if c.RowHeight < 0 {
		return fmt.Errorf("row_height must not be negative, got %v", c.RowHeight)
	}
	if err := casecells.CheckTemplate(c.Generate.CaseNameTemplate); err != nil {
		return fmt.Errorf("generate.case_name_template: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("logging.level: %w", err)
	}
	return lvl, nil
}

// Options converts the configuration into processor options.
func (c *Config) Options() []casecells.Option {
	opts := []casecells.Option{
		casecells.WithDelimiter(c.Delimiter),
		casecells.WithRowHeight(c.RowHeight),
		casecells.WithCaseNameTemplate(c.Generate.CaseNameTemplate),
		casecells.WithCaseType(c.Generate.CaseType),
		casecells.WithSheet(c.Sheet),
	}
	for role, kws := range c.ResolverKeywords() {
		opts = append(opts, casecells.WithKeywords(role, kws...))
	}
	return opts
}

// ResolverKeywords returns the keyword sets for the column resolver. Roles
// left empty in the file fall back to the defaults.
func (c *Config) ResolverKeywords() casecells.Keywords {
	kw := casecells.DefaultKeywords()
	for role, kws := range map[casecells.Role][]string{
		casecells.RoleCaseName:        c.Keywords.CaseName,
		casecells.RoleStepDescription: c.Keywords.StepDescription,
		casecells.RoleExpectedResult:  c.Keywords.ExpectedResult,
		casecells.RolePrecondition:    c.Keywords.Precondition,
	} {
		if len(kws) > 0 {
			kw[role] = kws
		}
	}
	if c.Keywords.Module != "" {
		kw[casecells.RoleModuleLevel] = []string{c.Keywords.Module}
	}
	return kw
}
