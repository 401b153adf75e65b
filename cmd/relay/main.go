package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-peer/internal/app"
	"github.com/vovakirdan/wirechat-peer/internal/config"
	"github.com/vovakirdan/wirechat-peer/internal/log"
)

func newRelayCommand() *cobra.Command {
	var (
		configPath string
		overrides  config.RelayConfig
	)

	cmd := &cobra.Command{
		Use:           "relay",
		Short:         "Run the wirechat relay",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootLogger := log.New(overrides.LogLevel, nil)
			cfg, path, err := config.Load(bootLogger, configPath)
			if err != nil {
				return err
			}
			relay := cfg.Relay
			relay.UpdateFrom(overrides)

			logger := log.New(relay.LogLevel, nil)
			logger.Info().Str("config", path).Msg("configuration loaded")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := app.NewRelay(&relay, logger).Run(ctx); err != nil {
				return err
			}
			logger.Info().Msg("relay stopped")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to config file")
	flags.StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&overrides.Secret, "secret", "", "require peer tokens signed with this secret")

	return cmd
}

func main() {
	if err := newRelayCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "relay:", err)
		os.Exit(1)
	}
}
