package main

import (
	"github.com/spf13/cobra"

	"github.com/legalease/docanchor/internal/bundle"
	"github.com/legalease/docanchor/internal/classify"
)

var classifyForceOCR bool

var classifyCmd = &cobra.Command{
	Use:   "classify <bundle.json>",
	Short: "Classify each page of a bundle as scanned or digital",
	Long: `Classify runs the scanned-page heuristic over every page of a
bundle using its text layer, and prints the per-page class. Bundles carry no
block layout, so the decision here rests on text presence and content; use
the extraction pipeline for full layout-aware classification.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		svcs, err := newServices(logger)
		if err != nil {
			return err
		}

		b, err := bundle.Load(args[0])
		if err != nil {
			return err
		}

		type pageClass struct {
			Page  int            `json:"page" yaml:"page"`
			Class classify.Class `json:"class" yaml:"class"`
			Chars int            `json:"chars" yaml:"chars"`
		}
		out := make([]pageClass, len(b.Pages))
		for i, text := range b.Pages {
			layout := classify.PageLayout{Text: text}
			out[i] = pageClass{
				Page:  i,
				Class: classify.Classify(layout, svcs.cfg.Heuristics, classifyForceOCR),
				Chars: len(text),
			}
		}
		return printOutput(struct {
			Pages []pageClass `json:"pages" yaml:"pages"`
		}{Pages: out})
	},
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyForceOCR, "force-ocr", false, "treat every page as scanned")
	rootCmd.AddCommand(classifyCmd)
}
