package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (ROWSHEET_*).
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setString(FlagTemplateFile, os.Getenv("ROWSHEET_TEMPLATE_FILE"), &cfg.TemplateFile)
	s.setString(FlagSourceFile, os.Getenv("ROWSHEET_SOURCE_FILE"), &cfg.SourceFile)
	s.setString(FlagOutputFile, os.Getenv("ROWSHEET_OUTPUT_FILE"), &cfg.OutputFile)
	s.setString(FlagMappingFile, os.Getenv("ROWSHEET_MAPPING_FILE"), &cfg.MappingFile)
	s.setString(FlagDuplicates, os.Getenv("ROWSHEET_DUPLICATES"), &cfg.Duplicates)
	s.setString(FlagLogLevel, os.Getenv("ROWSHEET_LOG_LEVEL"), &cfg.LogLevel)
	s.setString(FlagListen, os.Getenv("ROWSHEET_LISTEN"), &cfg.Listen)

	s.setBoolFromString(FlagVerbose, os.Getenv("ROWSHEET_VERBOSE"), &cfg.Verbose)
	s.setBoolFromString(FlagWatchMapping, os.Getenv("ROWSHEET_WATCH_MAPPING"), &cfg.WatchMapping)
}
