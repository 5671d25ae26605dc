package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	streamui "github.com/haowjy/meridian-streamui-go"
)

var modelsProvider string

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List catalogued models and their tool support",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		providers := []streamui.ProviderID{streamui.ProviderOpenAI, streamui.ProviderAnthropic, streamui.ProviderLorem}
		if modelsProvider != "" {
			id := streamui.ProviderID(modelsProvider)
			if !id.IsValid() {
				return fmt.Errorf("unknown provider %q", modelsProvider)
			}
			providers = []streamui.ProviderID{id}
		}

		registry := streamui.GetCapabilityRegistry()
		bold := color.New(color.Bold)
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		bold.Fprintln(tw, "PROVIDER\tMODEL\tTOOLS\tDEFAULT")
		for _, p := range providers {
			for _, model := range registry.Models(p.String()) {
				tools := "no"
				if registry.SupportsTools(p.String(), model) {
					tools = "yes"
				}
				def := ""
				if model == p.DefaultModel() {
					def = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p, model, tools, def)
			}
		}
		return tw.Flush()
	},
}

func init() {
	modelsCmd.Flags().StringVar(&modelsProvider, "provider", "", "Only list models for this provider")
}
