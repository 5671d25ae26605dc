package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haowjy/meridian-streamui-go/actions"
	"github.com/haowjy/meridian-streamui-go/logging"
	"github.com/haowjy/meridian-streamui-go/server"
	"github.com/haowjy/meridian-streamui-go/telemetry"
)

var (
	serveAddr     string
	serveProvider string
	serveModel    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the demo page",
	Long: `Serve the demo page and the streaming component action.

Examples:
  streamui serve
  streamui serve --addr :8080 --provider anthropic
  streamui serve --provider lorem --model lorem-slow`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.ApplyOverrides(serveProvider, serveModel)
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		shutdown, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:    "streamui",
			ServiceVersion: version,
			Enabled:        cfg.Telemetry.Enabled,
			OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		})
		if err != nil {
			return err
		}
		defer func() {
			_ = shutdown(context.Background())
		}()

		provider, err := newProvider(cfg)
		if err != nil {
			return err
		}
		action, err := actions.New(provider, cfg.ResolvedModel(), actions.WithSystem(cfg.SystemPrompt))
		if err != nil {
			return err
		}

		srv, err := server.New(action, server.Options{
			Addr:     cfg.Server.Addr,
			HomePath: cfg.Server.HomePath,
			Logger:   logging.WithComponent("server"),
		})
		if err != nil {
			return err
		}

		logging.Logger().Info("starting", "provider", provider.Name().String(), "model", action.Model)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :3000)")
	serveCmd.Flags().StringVar(&serveProvider, "provider", "", "Provider: openai, anthropic or lorem")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "Model (default: the provider's default model)")
}
