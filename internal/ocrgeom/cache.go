// Package ocrgeom builds and caches per-page OCR token geometry: the
// aggregated normalized OCR text, its position map back into the raw OCR
// text, and the page-fraction bounding box of every recognized token. The
// anchor resolver uses an entry to turn a normalized-text match range into a
// single padded bounding box on the page image.
package ocrgeom

import (
	"sync"

	"github.com/legalease/docanchor/internal/providers"
)

// DefaultBoxPadding is the page-fraction margin added around a union box.
const DefaultBoxPadding = 0.005

// Key identifies one page of one document.
type Key struct {
	DocID string
	Page  int
}

// TokenBox is one recognized token's span in the raw aggregated OCR text
// plus its bounding box in page-fraction coordinates.
type TokenBox struct {
	Start int
	End   int
	Box   providers.Quad
}

// Box is a normalized rectangle in page-fraction units.
type Box struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Entry is the cached geometry for one page. Text and Map come from running
// the text normalizer over the raw aggregated OCR text; Tokens are sorted by
// raw start offset.
type Entry struct {
	Text       string
	Map        []int
	Tokens     []TokenBox
	PageWidth  float64
	PageHeight float64
}

// BoxForRange unions the boxes of every token overlapping the raw range
// [rawStart, rawEnd), pads the union and clamps it to the page. Returns
// false when no token overlaps; the caller keeps a text-only anchor.
func (e *Entry) BoxForRange(rawStart, rawEnd int, pad float64) (Box, bool) {
	var q providers.Quad
	found := false
	for _, t := range e.Tokens {
		if t.End <= rawStart {
			continue
		}
		if t.Start >= rawEnd {
			break
		}
		if !found {
			q = t.Box
			found = true
			continue
		}
		if t.Box.X0 < q.X0 {
			q.X0 = t.Box.X0
		}
		if t.Box.Y0 < q.Y0 {
			q.Y0 = t.Box.Y0
		}
		if t.Box.X1 > q.X1 {
			q.X1 = t.Box.X1
		}
		if t.Box.Y1 > q.Y1 {
			q.Y1 = t.Box.Y1
		}
	}
	if !found {
		return Box{}, false
	}

	x0 := clamp01(q.X0 - pad)
	y0 := clamp01(q.Y0 - pad)
	x1 := clamp01(q.X1 + pad)
	y1 := clamp01(q.Y1 + pad)
	return Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Store holds built entries. The production store is process-wide and
// concurrent-safe; tests may pre-seed a store or assert on population.
type Store interface {
	Get(key Key) (*Entry, bool)
	Put(key Key, entry *Entry)
	Invalidate(key Key)
}

// MemoryStore is a concurrent-safe in-memory Store. Entries live for the
// process lifetime; the scanned-page set per document is small enough that
// no eviction is needed.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Key]*Entry
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[Key]*Entry)}
}

// Get returns the entry for a key, if present.
func (s *MemoryStore) Get(key Key) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

// Put stores an entry. Concurrent builds for the same key converge by
// last write wins; the build is deterministic for identical inputs.
func (s *MemoryStore) Put(key Key, entry *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
}

// Invalidate drops the entry for a key.
func (s *MemoryStore) Invalidate(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len reports how many entries are cached.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
