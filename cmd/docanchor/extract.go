package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/legalease/docanchor/internal/bundle"
	"github.com/legalease/docanchor/internal/classify"
	"github.com/legalease/docanchor/internal/extract"
	"github.com/legalease/docanchor/internal/svcctx"
)

var (
	extractOut     string
	extractPrewarm bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <bundle.json>",
	Short: "Re-extract a bundle's pages through the OCR decision pipeline",
	Long: `Extract runs the bundle's pages through classification and, where
needed, OCR: scanned pages are recognized, ambiguous pages are verified with
the configured probe before their text layer is replaced. The updated bundle
is written back out with --write, and the OCR geometry cache can be
prewarmed for the first scanned pages.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		svcs, err := newServices(logger)
		if err != nil {
			return err
		}
		if svcs.pipeline == nil {
			return fmt.Errorf("no OCR provider enabled in config")
		}
		ctx := svcctx.WithServices(cmd.Context(), svcs.svc)

		b, err := bundle.Load(args[0])
		if err != nil {
			return err
		}

		inputs := make([]extract.PageInput, len(b.Pages))
		for i, text := range b.Pages {
			inputs[i] = extract.PageInput{
				Text:   text,
				Layout: classify.PageLayout{Text: text},
			}
			if i < len(b.PageImages) {
				inputs[i].Image = b.PageImages[i]
			}
		}

		result, err := svcs.pipeline.Run(ctx, b.ID, inputs)
		if err != nil {
			return err
		}
		for i, page := range result.Pages {
			b.Pages[i] = page.Text
		}

		if extractPrewarm {
			svcs.pipeline.Prewarm(ctx, b.ID, b.PageImages)
		}

		if extractOut != "" {
			if err := b.Save(extractOut); err != nil {
				return err
			}
			logger.Info("wrote updated bundle", "path", extractOut)
			return nil
		}
		return printOutput(result)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractOut, "write", "", "write the updated bundle to this path")
	extractCmd.Flags().BoolVar(&extractPrewarm, "prewarm", false, "prewarm OCR geometry for the first scanned pages")
	rootCmd.AddCommand(extractCmd)
}
