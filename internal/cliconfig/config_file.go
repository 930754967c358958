package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config with optional booleans so absent keys stay unset.
type FileConfig struct {
	TemplateFile string `toml:"template_file"`
	SourceFile   string `toml:"source_file"`
	OutputFile   string `toml:"output_file"`
	MappingFile  string `toml:"mapping_file"`
	Verbose      *bool  `toml:"verbose"`
	Duplicates   string `toml:"duplicates"`
	LogLevel     string `toml:"log_level"`
	Listen       string `toml:"listen"`
	WatchMapping *bool  `toml:"watch_mapping"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.rowsheet/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".rowsheet", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setString(FlagTemplateFile, fc.TemplateFile, &cfg.TemplateFile)
	s.setString(FlagSourceFile, fc.SourceFile, &cfg.SourceFile)
	s.setString(FlagOutputFile, fc.OutputFile, &cfg.OutputFile)
	s.setString(FlagMappingFile, fc.MappingFile, &cfg.MappingFile)
	s.setString(FlagDuplicates, fc.Duplicates, &cfg.Duplicates)
	s.setString(FlagLogLevel, fc.LogLevel, &cfg.LogLevel)
	s.setString(FlagListen, fc.Listen, &cfg.Listen)

	s.setBool(FlagVerbose, fc.Verbose, &cfg.Verbose)
	s.setBool(FlagWatchMapping, fc.WatchMapping, &cfg.WatchMapping)
}

// LoadSettings applies the settings file at path, or at DefaultConfigPath when
// path is empty. A missing default file is not an error.
func LoadSettings(cfg *Config, path string, changed map[string]bool) error {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if path == "" || (!explicit && !FileExists(path)) {
		return nil
	}
	fc, err := LoadFileConfig(path)
	if err != nil {
		return err
	}
	ApplyFileConfig(cfg, fc, changed)
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
