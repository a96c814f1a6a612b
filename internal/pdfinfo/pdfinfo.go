// Package pdfinfo inventories a PDF for the classifier: page count and
// per-page geometry. It sees only the PDF structure, not rendered content,
// so the layouts it produces carry dimensions without text or image blocks.
package pdfinfo

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/legalease/docanchor/internal/classify"
)

// Info describes one PDF file.
type Info struct {
	Path      string
	PageCount int
	Pages     []classify.PageLayout
}

// Inspect reads a PDF and returns its page inventory.
func Inspect(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get page count for %s: %w", path, err)
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("failed to rewind %s: %w", path, err)
	}
	dims, err := api.PageDims(f, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get page dimensions for %s: %w", path, err)
	}

	info := &Info{
		Path:      path,
		PageCount: pageCount,
		Pages:     make([]classify.PageLayout, 0, pageCount),
	}
	for i := 0; i < pageCount; i++ {
		layout := classify.PageLayout{}
		if i < len(dims) {
			layout.Width = dims[i].Width
			layout.Height = dims[i].Height
		}
		info.Pages = append(info.Pages, layout)
	}
	return info, nil
}

// Layouts merges extracted page texts into the structural inventory so the
// result can be classified. Texts beyond the page count are ignored.
func (i *Info) Layouts(texts []string) []classify.PageLayout {
	out := make([]classify.PageLayout, len(i.Pages))
	copy(out, i.Pages)
	for idx := range out {
		if idx < len(texts) {
			out[idx].Text = texts[idx]
		}
	}
	return out
}
