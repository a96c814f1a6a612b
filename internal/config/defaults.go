package config

// DefaultConfig returns configuration with the production thresholds.
// The heuristic values encode the scanned-vs-digital decision contract;
// they were tuned on typical legal document scans with narrow margins.
func DefaultConfig() *Config {
	return &Config{
		OCRProviders: map[string]OCRProviderCfg{
			"vision": {
				Type:      "vision-http",
				APIKey:    "${VISION_OCR_API_KEY}",
				RateLimit: 6.0,
				Enabled:   true,
			},
		},
		Probe: ProbeCfg{
			Type:    "openai",
			Model:   "gpt-4o-mini",
			APIKey:  "${OPENAI_API_KEY}",
			Enabled: true,
		},
		Extract: ExtractCfg{
			ForceOCR:     false,
			MaxWorkers:   4,
			PrewarmPages: 3,
		},
		Heuristics: DefaultHeuristics(),
	}
}

// DefaultHeuristics returns the tuned classification and geometry thresholds.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		MinCharsPerPage:         50,
		FullPageImageRatio:      0.88,
		FullPageImagePixelRatio: 0.80,
		CandidateDPIs:           []float64{150, 200, 300},

		AmbiguousImageAreaRatio: 0.25,
		AmbiguousImageSpanRatio: 0.30,
		AmbiguousNonAlnumRatio:  0.45,
		AmbiguousTextBlocks:     50,
		AmbiguousImageBlocks:    2,

		ProbeGrowthFactor:     1.2,
		ProbeGrowthChars:      100,
		ProbeFragmentedMargin: 50,

		BoxPadding:     0.005,
		BatchAnchorCap: 12,
	}
}
