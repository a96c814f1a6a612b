// Package classify decides, per page, whether the extracted text layer can
// be trusted or whether the page is really a scan that needs OCR. The
// heuristics are geometric and statistical, so the overwhelming majority of
// pages resolve locally; only genuinely ambiguous pages justify an AI probe,
// and only provably scanned pages pay for full OCR.
package classify

import (
	"unicode"

	"github.com/legalease/docanchor/internal/config"
)

// Class is the per-page classification result.
type Class string

const (
	// ClassForcedScan marks pages classified under the force-OCR override.
	ClassForcedScan Class = "ocr_forced"
	// ClassScanned pages are effectively raster images; full OCR required.
	ClassScanned Class = "scanned"
	// ClassDigital pages have a trustworthy native text layer.
	ClassDigital Class = "digital"
	// ClassAmbiguous pages have a text layer that may be incomplete; a cheap
	// probe should confirm before it is trusted.
	ClassAmbiguous Class = "ambiguous"
)

// Rect is an axis-aligned bounding box in page coordinates (points).
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the rect width, never negative.
func (r Rect) Width() float64 {
	if r.X1 < r.X0 {
		return 0
	}
	return r.X1 - r.X0
}

// Height returns the rect height, never negative.
func (r Rect) Height() float64 {
	if r.Y1 < r.Y0 {
		return 0
	}
	return r.Y1 - r.Y0
}

// Area returns the rect area, never negative.
func (r Rect) Area() float64 {
	return r.Width() * r.Height()
}

// ImageInfo describes an embedded raster image's intrinsic pixel dimensions.
// Used when block geometry is unavailable.
type ImageInfo struct {
	WidthPx  float64
	HeightPx float64
}

// PageLayout is everything the classifier needs to know about one rendered
// page: geometry, text layer, raster block boxes, and embedded image sizes.
type PageLayout struct {
	Width  float64 // page width in points
	Height float64 // page height in points

	Text        string      // extracted text layer ("" if none)
	ImageBlocks []Rect      // raster block bounding boxes
	TextBlocks  int         // distinct text block count
	Images      []ImageInfo // embedded raster intrinsic pixel dims
}

// pageArea returns the page area, guarding against zero geometry.
func (p PageLayout) pageArea() float64 {
	a := p.Width * p.Height
	if a <= 0 {
		return 1.0
	}
	return a
}

// HasNearFullImage reports whether a single raster covers most of the page,
// either by block geometry or, failing that, by comparing embedded image
// pixel area against the page's pixel area at typical scan resolutions.
func (p PageLayout) HasNearFullImage(h config.Heuristics) bool {
	maxArea := 0.0
	for _, b := range p.ImageBlocks {
		if a := b.Area(); a > maxArea {
			maxArea = a
		}
	}
	if maxArea/p.pageArea() >= h.FullPageImageRatio {
		return true
	}

	// Fallback: no usable block geometry, estimate from intrinsic pixel
	// sizes at each candidate scan DPI to avoid under/over-estimation.
	if len(p.Images) == 0 {
		return false
	}
	for _, dpi := range h.CandidateDPIs {
		pageWPx := (p.Width / 72.0) * dpi
		pageHPx := (p.Height / 72.0) * dpi
		pagePxArea := pageWPx * pageHPx
		if pagePxArea < 1.0 {
			pagePxArea = 1.0
		}
		for _, img := range p.Images {
			if img.WidthPx <= 0 || img.HeightPx <= 0 {
				continue
			}
			if (img.WidthPx*img.HeightPx)/pagePxArea >= h.FullPageImagePixelRatio {
				return true
			}
		}
	}
	return false
}

// Flags are the transient ambiguity signals computed for a tentatively
// digital page. They are consumed once by the probe decision and discarded.
type Flags struct {
	ImageAreaRatio float64 // total image block area / page area
	LargeImage     bool    // one image block spans >=30% of width or height
	NonAlnumRatio  float64 // non-alphanumeric share of the text layer
	Fragmented     bool    // text layer split into many small blocks
	ImageBlockN    int
	DigitalLen     int // length of the extracted text layer
}

// Signals computes the ambiguity flags for a page.
func Signals(p PageLayout, h config.Heuristics) Flags {
	imgArea := 0.0
	largeImage := false
	for _, b := range p.ImageBlocks {
		imgArea += b.Area()
		w, ht := p.Width, p.Height
		if w <= 0 {
			w = 1
		}
		if ht <= 0 {
			ht = 1
		}
		if b.Width()/w >= h.AmbiguousImageSpanRatio || b.Height()/ht >= h.AmbiguousImageSpanRatio {
			largeImage = true
		}
	}

	return Flags{
		ImageAreaRatio: imgArea / p.pageArea(),
		LargeImage:     largeImage,
		NonAlnumRatio:  nonAlnumRatio(p.Text),
		Fragmented:     p.TextBlocks >= h.AmbiguousTextBlocks,
		ImageBlockN:    len(p.ImageBlocks),
		DigitalLen:     len(p.Text),
	}
}

// Classify runs the per-page decision tree. forceOCR short-circuits
// everything; otherwise full-image coverage wins over text presence, a sparse
// text layer without a raster substitute is conservatively treated as
// scanned, and pages with a plausible text layer are checked for ambiguity
// signals before being trusted as digital.
func Classify(p PageLayout, h config.Heuristics, forceOCR bool) Class {
	if forceOCR {
		return ClassForcedScan
	}

	if p.HasNearFullImage(h) {
		return ClassScanned
	}

	if len(p.Text) <= h.MinCharsPerPage {
		return ClassScanned
	}

	f := Signals(p, h)
	if f.ImageAreaRatio >= h.AmbiguousImageAreaRatio ||
		f.LargeImage ||
		f.NonAlnumRatio >= h.AmbiguousNonAlnumRatio ||
		f.Fragmented ||
		f.ImageBlockN >= h.AmbiguousImageBlocks {
		return ClassAmbiguous
	}

	return ClassDigital
}

// ShouldAdoptOCR decides whether probe-confirmed OCR output should replace
// an ambiguous page's digital text. The probe must find materially more text
// than the digital layer, or the digital layer must be near-empty while the
// probe finds plausible text, or the page is fragmented and the probe finds
// moderately more. Pages not meeting the bar keep their digital extraction.
func ShouldAdoptOCR(f Flags, probeLen int, h config.Heuristics) bool {
	floor := h.MinCharsPerPage
	if grown := int(float64(f.DigitalLen) * h.ProbeGrowthFactor); grown > floor {
		floor = grown
	}
	if probeLen >= floor && probeLen-f.DigitalLen >= h.ProbeGrowthChars {
		return true
	}
	if f.DigitalLen < h.MinCharsPerPage && probeLen >= int(float64(h.MinCharsPerPage)*0.8) {
		return true
	}
	if f.Fragmented && probeLen > f.DigitalLen+h.ProbeFragmentedMargin {
		return true
	}
	return false
}

// nonAlnumRatio returns the share of the text that is neither letter nor
// digit. Empty text counts as fully non-alphanumeric.
func nonAlnumRatio(text string) float64 {
	if text == "" {
		return 1.0
	}
	total, alnum := 0, 0
	for _, r := range text {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	return 1.0 - float64(alnum)/float64(total)
}
