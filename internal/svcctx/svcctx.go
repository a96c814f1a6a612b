// Package svcctx provides service context for dependency injection via context.
// Commands wire services once at startup; components extract what they need.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/legalease/docanchor/internal/config"
	"github.com/legalease/docanchor/internal/ocrgeom"
	"github.com/legalease/docanchor/internal/providers"
)

// Services holds all core services that flow through context.
type Services struct {
	ConfigManager *config.Manager
	Registry      *providers.Registry
	GeometryStore ocrgeom.Store
	Logger        *slog.Logger
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// ConfigManagerFrom extracts the config manager from context.
func ConfigManagerFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigManager
	}
	return nil
}

// RegistryFrom extracts the provider registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
	}
	return nil
}

// GeometryStoreFrom extracts the OCR geometry store from context.
func GeometryStoreFrom(ctx context.Context) ocrgeom.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.GeometryStore
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}
