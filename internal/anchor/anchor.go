// Package anchor resolves a snippet of text to its best location inside a
// document: a page index, a line-expanded character range, and, for
// image-backed pages, a normalized bounding box on the page image.
package anchor

import (
	"github.com/legalease/docanchor/internal/ocrgeom"
)

// Strategy tags describe how a match was obtained. The base tag is the text
// matching mode; suffixes record augmentation.
const (
	StrategyNormalized = "text:normalized" // exact normalized substring
	StrategyNgram      = "text:ngram"      // windowed fuzzy token match

	SuffixOCR  = "+ocr"  // a bounding box was attached from OCR geometry
	SuffixRisk = "+risk" // produced by the risk pre-highlight pass
)

// Match is one resolved anchor.
type Match struct {
	PageIndex int           `json:"page_index" yaml:"page_index"`
	CharStart int           `json:"char_start" yaml:"char_start"`
	CharEnd   int           `json:"char_end" yaml:"char_end"`
	Boxes     []ocrgeom.Box `json:"boxes,omitempty" yaml:"boxes,omitempty"`
	Strategy  string        `json:"strategy" yaml:"strategy"`
}

// Document is the locate input: ordered page texts plus, for image-backed
// pages, a parallel list of page image references (data URI or URL, empty
// string when the page has no image).
type Document struct {
	ID         string
	Pages      []string
	PageImages []string
}

// Image returns the page image reference for a page, or "" when absent.
func (d Document) Image(page int) string {
	if page < 0 || page >= len(d.PageImages) {
		return ""
	}
	return d.PageImages[page]
}
