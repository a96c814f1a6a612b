package main

import (
	"github.com/spf13/cobra"

	"github.com/legalease/docanchor/internal/pdfinfo"
)

var pagesCmd = &cobra.Command{
	Use:   "pages <file.pdf>",
	Short: "Print a PDF's page inventory",
	Long:  `Pages reads a PDF and prints its page count and per-page dimensions.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := pdfinfo.Inspect(args[0])
		if err != nil {
			return err
		}

		type pageDim struct {
			Page   int     `json:"page" yaml:"page"`
			Width  float64 `json:"width" yaml:"width"`
			Height float64 `json:"height" yaml:"height"`
		}
		dims := make([]pageDim, len(info.Pages))
		for i, p := range info.Pages {
			dims[i] = pageDim{Page: i, Width: p.Width, Height: p.Height}
		}
		return printOutput(struct {
			Path      string    `json:"path" yaml:"path"`
			PageCount int       `json:"page_count" yaml:"page_count"`
			Pages     []pageDim `json:"pages" yaml:"pages"`
		}{Path: info.Path, PageCount: info.PageCount, Pages: dims})
	},
}

func init() {
	rootCmd.AddCommand(pagesCmd)
}
