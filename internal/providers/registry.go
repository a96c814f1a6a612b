package providers

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds references to OCR providers and page probes.
// It supports config-driven instantiation, hot-reload, and thread-safe access.
type Registry struct {
	mu           sync.RWMutex
	ocrProviders map[string]OCRProvider
	probes       map[string]PageProbe
	logger       *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		ocrProviders: make(map[string]OCRProvider),
		probes:       make(map[string]PageProbe),
		logger:       slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// RegisterOCR registers an OCR provider by name.
func (r *Registry) RegisterOCR(name string, provider OCRProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ocrProviders[name] = provider
	if r.logger != nil {
		r.logger.Info("registered OCR provider", "name", name)
	}
}

// UnregisterOCR removes an OCR provider by name.
func (r *Registry) UnregisterOCR(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ocrProviders, name)
	if r.logger != nil {
		r.logger.Info("unregistered OCR provider", "name", name)
	}
}

// RegisterProbe registers a page probe by name.
func (r *Registry) RegisterProbe(name string, probe PageProbe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probes[name] = probe
	if r.logger != nil {
		r.logger.Info("registered page probe", "name", name)
	}
}

// GetOCR returns an OCR provider by name.
func (r *Registry) GetOCR(name string) (OCRProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.ocrProviders[name]
	if !ok {
		return nil, fmt.Errorf("OCR provider not found: %s", name)
	}
	return provider, nil
}

// GetProbe returns a page probe by name.
func (r *Registry) GetProbe(name string) (PageProbe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	probe, ok := r.probes[name]
	if !ok {
		return nil, fmt.Errorf("page probe not found: %s", name)
	}
	return probe, nil
}

// FirstOCR returns any registered OCR provider, preferring the given name.
// Returns nil when none are registered.
func (r *Registry) FirstOCR(prefer string) OCRProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.ocrProviders[prefer]; ok {
		return p
	}
	for _, p := range r.ocrProviders {
		return p
	}
	return nil
}

// FirstProbe returns any registered page probe, preferring the given name.
// Returns nil when none are registered.
func (r *Registry) FirstProbe(prefer string) PageProbe {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.probes[prefer]; ok {
		return p
	}
	for _, p := range r.probes {
		return p
	}
	return nil
}

// OCRNames returns the registered OCR provider names.
func (r *Registry) OCRNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ocrProviders))
	for name := range r.ocrProviders {
		names = append(names, name)
	}
	return names
}
