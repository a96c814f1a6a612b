package config

import (
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.OCRProviders) == 0 {
		t.Error("expected a default OCR provider")
	}
	if cfg.OCRProviders["vision"].APIKey != "${VISION_OCR_API_KEY}" {
		t.Error("expected vision API key placeholder")
	}
	if !cfg.Probe.Enabled {
		t.Error("expected probe enabled by default")
	}
	if cfg.Extract.ForceOCR {
		t.Error("force OCR must default off")
	}
}

func TestDefaultHeuristics(t *testing.T) {
	h := DefaultHeuristics()

	if h.MinCharsPerPage != 50 {
		t.Errorf("min chars per page = %d", h.MinCharsPerPage)
	}
	if h.FullPageImageRatio != 0.88 {
		t.Errorf("full page image ratio = %v", h.FullPageImageRatio)
	}
	if h.FullPageImagePixelRatio != 0.80 {
		t.Errorf("pixel ratio = %v", h.FullPageImagePixelRatio)
	}
	if len(h.CandidateDPIs) != 3 {
		t.Errorf("expected 3 candidate DPIs, got %v", h.CandidateDPIs)
	}
	if h.BoxPadding != 0.005 {
		t.Errorf("box padding = %v", h.BoxPadding)
	}
	if h.BatchAnchorCap != 12 {
		t.Errorf("batch anchor cap = %d", h.BatchAnchorCap)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		os.Setenv("TEST_ANCHOR_KEY", "secret123")
		defer os.Unsetenv("TEST_ANCHOR_KEY")

		result := ResolveEnvVars("${TEST_ANCHOR_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestDump(t *testing.T) {
	out, err := Dump(DefaultConfig())
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if out == "" {
		t.Error("expected yaml output")
	}
}
