package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/legalease/docanchor/internal/anchor"
	"github.com/legalease/docanchor/internal/bundle"
	"github.com/legalease/docanchor/internal/svcctx"
)

var locateCmd = &cobra.Command{
	Use:   "locate <bundle.json> <query...>",
	Short: "Locate a text snippet inside a document bundle",
	Long: `Locate resolves a snippet against a document bundle and prints the
best anchor: page index, line-expanded character range, strategy tag, and,
when the page is image-backed and OCR succeeds, a normalized bounding box.

Examples:
  docanchor locate lease.json "security deposit"
  docanchor locate lease.json security deposit refund -o json`,
	Args: cobra.MinimumNArgs(2),
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
		query := strings.Join(args[1:], " ")

		matches := svcs.locator.Locate(ctx, b.Document(), query)
		if len(matches) == 0 {
			return fmt.Errorf("no match found")
		}
		return printOutput(struct {
			Matches []anchor.Match `json:"matches" yaml:"matches"`
		}{Matches: matches})
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
}
