// Package cliconfig layers rowsheet settings from flags, environment
// variables, a TOML file and defaults.
package cliconfig

import (
	"errors"
	"fmt"

	"dario.cat/mergo"
	"github.com/rs/zerolog"
	pflag "github.com/spf13/pflag"

	"github.com/ukaji3/rowsheet-go/pkg/rowsheet"
)

// DefaultListen is the default address of the interactive server.
const DefaultListen = ":8080"

// Setting names. They double as the long flag names of the commands.
const (
	FlagTemplateFile = "templateFile"
	FlagSourceFile   = "sourceFile"
	FlagOutputFile   = "outputFile"
	FlagMappingFile  = "mappingFile"
	FlagVerbose      = "verbose"
	FlagDuplicates   = "duplicates"
	FlagLogLevel     = "log-level"
	FlagListen       = "listen"
	FlagWatchMapping = "watch"
)

// Config holds CLI configuration for rowsheet.
type Config struct {
	TemplateFile string
	SourceFile   string
	OutputFile   string
	MappingFile  string

	Verbose    bool
	Duplicates string
	LogLevel   string

	Listen       string
	WatchMapping bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Duplicates: string(rowsheet.DuplicateFail),
		LogLevel:   zerolog.LevelWarnValue,
		Listen:     DefaultListen,
	}
}

// ApplyDefaults fills every unset field of cfg from DefaultConfig.
// The log level defaults to info instead of warn in verbose mode.
func ApplyDefaults(cfg *Config) error {
	if cfg.LogLevel == "" && cfg.Verbose {
		cfg.LogLevel = zerolog.LevelInfoValue
	}
	if err := mergo.Merge(cfg, DefaultConfig()); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	return nil
}

// ValidateConvert checks that every input of a batch conversion is present.
// A missing input is reported as a rowsheet.KindConfigMissing error naming the flag.
func (c *Config) ValidateConvert() error {
	required := []struct {
		flag  string
		value string
	}{
		{FlagTemplateFile, c.TemplateFile},
		{FlagSourceFile, c.SourceFile},
		{FlagMappingFile, c.MappingFile},
		{FlagOutputFile, c.OutputFile},
	}
	for _, r := range required {
		if r.value == "" {
			return rowsheet.NewError(rowsheet.KindConfigMissing, r.flag, fmt.Errorf("%s is required", r.flag))
		}
	}
	return c.validateCommon()
}

// ValidateServe checks the settings of the interactive server.
func (c *Config) ValidateServe() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.WatchMapping && c.MappingFile == "" {
		return errors.New("watching requires a default mapping file")
	}
	return c.validateCommon()
}

func (c *Config) validateCommon() error {
	if _, err := rowsheet.ParseDuplicatePolicy(c.Duplicates); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	return nil
}

// DuplicatePolicy returns the parsed duplicate policy. It assumes a validated config.
func (c *Config) DuplicatePolicy() rowsheet.DuplicatePolicy {
	p, _ := rowsheet.ParseDuplicatePolicy(c.Duplicates)
	return p
}

// ChangedFlags returns the settings set explicitly on the command line.
// Aliases map a command-specific flag name to the setting it overrides.
func ChangedFlags(fs *pflag.FlagSet, aliases map[string]string) map[string]bool {
	changed := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) {
		name := f.Name
		if alias, ok := aliases[name]; ok {
			name = alias
		}
		changed[name] = true
	})
	return changed
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
