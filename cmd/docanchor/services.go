package main

import (
	"log/slog"

	"github.com/legalease/docanchor/internal/anchor"
	"github.com/legalease/docanchor/internal/config"
	"github.com/legalease/docanchor/internal/extract"
	"github.com/legalease/docanchor/internal/ocrgeom"
	"github.com/legalease/docanchor/internal/providers"
	"github.com/legalease/docanchor/internal/svcctx"
)

// services bundles everything a command needs, wired once from config.
type services struct {
	svc      *svcctx.Services
	cfg      *config.Config
	geometry *ocrgeom.Builder
	probe    providers.PageProbe
	locator  *anchor.Locator
	pipeline *extract.Pipeline
}

// newServices loads configuration and wires the provider registry, geometry
// cache, locator, and extraction pipeline.
func newServices(logger *slog.Logger) (*services, error) {
	cfgMgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg := cfgMgr.Get()

	registry := providers.NewRegistry()
	registry.SetLogger(logger)
	for name, pc := range cfg.OCRProviders {
		if !pc.Enabled {
			continue
		}
		switch pc.Type {
		case "vision-http":
			registry.RegisterOCR(name, providers.NewVisionHTTPClient(providers.VisionHTTPConfig{
				APIKey:    config.ResolveEnvVars(pc.APIKey),
				BaseURL:   pc.BaseURL,
				RateLimit: pc.RateLimit,
			}))
		case "mock":
			registry.RegisterOCR(name, providers.NewMockOCR())
		default:
			logger.Warn("unknown OCR provider type, skipping", "name", name, "type", pc.Type)
		}
	}

	var probe providers.PageProbe
	if cfg.Probe.Enabled {
		switch cfg.Probe.Type {
		case "openai":
			probe = providers.NewOpenAIProbe(providers.OpenAIProbeConfig{
				APIKey: config.ResolveEnvVars(cfg.Probe.APIKey),
				Model:  cfg.Probe.Model,
			})
			registry.RegisterProbe(probe.Name(), probe)
		case "mock":
			probe = &providers.MockProbe{}
			registry.RegisterProbe(probe.Name(), probe)
		default:
			logger.Warn("unknown probe type, skipping", "type", cfg.Probe.Type)
		}
	}

	store := ocrgeom.NewMemoryStore()
	var geometry *ocrgeom.Builder
	var pipeline *extract.Pipeline
	if ocr := registry.FirstOCR(""); ocr != nil {
		geometry = ocrgeom.NewBuilder(ocr, store, logger)
		pipeline = extract.NewPipeline(geometry, probe, cfg.Extract, cfg.Heuristics, logger)
	}

	locator := anchor.NewLocator(anchor.Options{
		Geometry:   geometry,
		BoxPadding: cfg.Heuristics.BoxPadding,
		BatchCap:   cfg.Heuristics.BatchAnchorCap,
		Logger:     logger,
	})

	return &services{
		svc: &svcctx.Services{
			ConfigManager: cfgMgr,
			Registry:      registry,
			GeometryStore: store,
			Logger:        logger,
		},
		cfg:      cfg,
		geometry: geometry,
		probe:    probe,
		locator:  locator,
		pipeline: pipeline,
	}, nil
}
