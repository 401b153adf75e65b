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

func newChatCommand() *cobra.Command {
	var (
		configPath string
		overrides  config.ClientConfig
	)

	cmd := &cobra.Command{
		Use:   "chat [name]",
		Short: "Group chat over a wirechat relay",
		Example: "  chat alice\n" +
			"  chat --relay ws://relay.local:8080/ws --group dev bob",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				overrides.Name = args[0]
			}

			bootLogger := log.New(overrides.LogLevel, os.Stderr)
			cfg, _, err := config.Load(bootLogger, configPath)
			if err != nil {
				return err
			}
			client := cfg.Client
			client.UpdateFrom(overrides)

			logger := log.New(client.LogLevel, os.Stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return app.NewClient(&client, logger).Run(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to config file")
	flags.StringVar(&overrides.RelayURL, "relay", "", "relay WebSocket URL")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&overrides.HistoryPath, "history", "", "transcript database path")
	flags.StringVarP(&overrides.DefaultGroup, "group", "g", "", "group to join on start")
	flags.BoolVarP(&overrides.Verbose, "verbose", "v", false, "log relay traffic")
	flags.BoolVar(&overrides.Color, "color", false, "highlight notices")

	return cmd
}

func main() {
	if err := newChatCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "chat:", err)
		os.Exit(1)
	}
}
