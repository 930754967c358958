// Package main provides the CLI entry point for rowsheet.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/ukaji3/rowsheet-go/internal/cliconfig"
	"github.com/ukaji3/rowsheet-go/pkg/rowsheet"
	"github.com/ukaji3/rowsheet-go/pkg/rowsheet/output"
)

// logger reports failures, reconfigured once settings are known.
var logger, _ = cliconfig.NewLogger(os.Stderr, zerolog.LevelWarnValue)

func main() {
	rootCmd := newRootCmd()
	rootCmd.AddCommand(newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("rowsheet failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg cliconfig.Config
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "rowsheet",
		Short: "Copy spreadsheet rows into clones of a template sheet",
		Long: `rowsheet clones the model sheet of a template workbook once per row of a
source workbook and copies the mapped cells of each row into its clone.`,
		Example: `  rowsheet -t template.xlsx -s data.xlsx -m mapping.yaml -o generated.xlsx -v
  rowsheet serve --listen :8080 --mapping mapping.yaml --watch`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Flags(), &cfg, cfgPath, cmd.ErrOrStderr())
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.TemplateFile, cliconfig.FlagTemplateFile, "t", "", "Template workbook holding the model sheet")
	fs.StringVarP(&cfg.SourceFile, cliconfig.FlagSourceFile, "s", "", "Source workbook holding the rows")
	fs.StringVarP(&cfg.OutputFile, cliconfig.FlagOutputFile, "o", "", "Generated workbook path")
	fs.StringVarP(&cfg.MappingFile, cliconfig.FlagMappingFile, "m", "", "Mapping configuration (YAML)")
	fs.BoolVarP(&cfg.Verbose, cliconfig.FlagVerbose, "v", false, "Show progress and a success message")
	addCommonFlags(fs, &cfg, &cfgPath)

	return cmd
}

// addCommonFlags registers the flags shared by every command.
func addCommonFlags(fs *pflag.FlagSet, cfg *cliconfig.Config, cfgPath *string) {
	fs.StringVar(cfgPath, "config", "", "Settings file (default: ~/.rowsheet/config.toml)")
	fs.StringVar(&cfg.Duplicates, cliconfig.FlagDuplicates, "", "Clone name collision policy: fail or suffix (default: fail)")
	fs.StringVar(&cfg.LogLevel, cliconfig.FlagLogLevel, "", "Log level (default: warn, info with --verbose)")
}

// loadConfig layers the settings file, the environment and the defaults under
// the flags set on the command line.
func loadConfig(fs *pflag.FlagSet, cfg *cliconfig.Config, cfgPath string, aliases map[string]string) error {
	changed := cliconfig.ChangedFlags(fs, aliases)

	if err := cliconfig.LoadSettings(cfg, cfgPath, changed); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cliconfig.ApplyEnvConfig(cfg, changed)
	if err := cliconfig.ApplyDefaults(cfg); err != nil {
		return err
	}

	log, err := cliconfig.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	logger = log
	return nil
}

func runConvert(fs *pflag.FlagSet, cfg *cliconfig.Config, cfgPath string, stderr io.Writer) error {
	if err := loadConfig(fs, cfg, cfgPath, nil); err != nil {
		return err
	}
	if err := cfg.ValidateConvert(); err != nil {
		return err
	}
	return convert(*cfg, logger, stderr)
}

// convert runs one batch conversion. Nothing is written unless every sheet
// spec maps successfully.
func convert(cfg cliconfig.Config, log zerolog.Logger, stderr io.Writer) error {
	data, err := os.ReadFile(cfg.MappingFile)
	if err != nil {
		return rowsheet.NewError(rowsheet.KindIO, cfg.MappingFile, err)
	}
	mapping, err := rowsheet.ParseMapping(data)
	if err != nil {
		return err
	}

	template, err := rowsheet.OpenWorkbookFile(cfg.TemplateFile)
	if err != nil {
		return err
	}
	defer template.Close()

	source, err := rowsheet.OpenWorkbookFile(cfg.SourceFile)
	if err != nil {
		return err
	}
	defer source.Close()

	opts := rowsheet.DefaultOptions()
	opts.Duplicates = cfg.DuplicatePolicy()
	opts.Logger = log

	var progress *progressReporter
	if cfg.Verbose {
		progress = newProgressReporter(stderr)
		opts.Progress = progress.update
	}

	result, err := rowsheet.Run(rowsheet.Job{Mapping: mapping, Template: template, Source: source}, opts)
	progress.finish()
	if err != nil {
		return err
	}

	if err := output.WriteFile(template, cfg.OutputFile); err != nil {
		return err
	}

	log.Info().Str("output", cfg.OutputFile).Int("clones", result.Clones()).Msg("workbook generated")
	if cfg.Verbose {
		fmt.Fprintf(stderr, "File successfully generated: %s\n", cfg.OutputFile)
	}
	return nil
}
