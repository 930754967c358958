package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/ukaji3/rowsheet-go/internal/cliconfig"
	"github.com/ukaji3/rowsheet-go/internal/web"
)

const shutdownTimeout = 5 * time.Second

// serveAliases maps serve flag names to settings.
var serveAliases = map[string]string{"mapping": cliconfig.FlagMappingFile}

func newServeCmd() *cobra.Command {
	var cfg cliconfig.Config
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Serve the conversion form over HTTP",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd.Flags(), &cfg, cfgPath)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfg.Listen, cliconfig.FlagListen, "", "Listen address (default: "+cliconfig.DefaultListen+")")
	fs.StringVar(&cfg.MappingFile, "mapping", "", "Default mapping used when none is uploaded")
	fs.BoolVar(&cfg.WatchMapping, cliconfig.FlagWatchMapping, false, "Reload the default mapping when it changes")
	addCommonFlags(fs, &cfg, &cfgPath)

	return cmd
}

func runServe(ctx context.Context, fs *pflag.FlagSet, cfg *cliconfig.Config, cfgPath string) error {
	if err := loadConfig(fs, cfg, cfgPath, serveAliases); err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	log := logger.With().Str("component", "web").Logger()

	opts := []web.Option{
		web.WithDuplicates(cfg.DuplicatePolicy()),
		web.WithLogger(log),
	}
	if cfg.MappingFile != "" {
		mapping, err := web.LoadMappingSource(cfg.MappingFile, log)
		if err != nil {
			return fmt.Errorf("load default mapping: %w", err)
		}
		opts = append(opts, web.WithDefaultMapping(mapping))

		if cfg.WatchMapping {
			go func() {
				if err := mapping.Watch(ctx); err != nil {
					log.Error().Err(err).Msg("mapping watcher stopped")
				}
			}()
		}
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           web.NewServer(opts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("listen", cfg.Listen).Msg("serving")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		log.Info().Msg("received signal, stopping...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
