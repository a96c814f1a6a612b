package main

import (
	"github.com/spf13/cobra"

	"github.com/legalease/docanchor/internal/anchor"
	"github.com/legalease/docanchor/internal/bundle"
	"github.com/legalease/docanchor/internal/svcctx"
)

var highlightsCmd = &cobra.Command{
	Use:   "highlights <bundle.json>",
	Short: "Anchor the risk-flagged obligations of a bundle",
	Long: `Highlights scores the bundle's obligations for risk, anchors the
risky ones (or the top scored when nothing is flagged), and prints the
deduplicated anchor list for pre-highlighting in a viewer.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		svcs, err := newServices(logger)
		if err != nil {
			return err
		}
		ctx := svcctx.WithServices(cmd.Context(), svcs.svc)

		b, err := bundle.Load(args[0])
		if err != nil {
			return err
		}

		matches := svcs.locator.RiskHighlights(ctx, b.Document(), b.ObligationTexts())
		return printOutput(struct {
			Highlights []anchor.Match `json:"highlights" yaml:"highlights"`
		}{Highlights: matches})
	},
}

func init() {
	rootCmd.AddCommand(highlightsCmd)
}
