package main

import (
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haowjy/meridian-streamui-go/actions"
	"github.com/haowjy/meridian-streamui-go/terminal"
)

var (
	askProvider string
	askModel    string
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt...>",
	Short: "Run the component action in the terminal",
	Long: `Send a prompt through the component action and print the result.
A spinner is shown while the weather lookup runs.

Examples:
  streamui ask what is the weather in Paris
  streamui ask --provider lorem "tell me a joke"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.ApplyOverrides(askProvider, askModel)
		if err := cfg.Validate(); err != nil {
			return err
		}

		provider, err := newProvider(cfg)
		if err != nil {
			return err
		}
		action, err := actions.New(provider, cfg.ResolvedModel(), actions.WithSystem(cfg.SystemPrompt))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		updates, err := action.StreamComponent(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		_, err = terminal.Render(ctx, os.Stdout, os.Stderr, updates)
		return err
	},
}

func init() {
	askCmd.Flags().StringVar(&askProvider, "provider", "", "Provider: openai, anthropic or lorem")
	askCmd.Flags().StringVar(&askModel, "model", "", "Model (default: the provider's default model)")
}
