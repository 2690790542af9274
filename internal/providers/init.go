// Package providers initializes and registers all concrete data providers
// with the global provider registry.
package providers

import (
	"os"

	"github.com/frhd/quantum-kapital/internal/provider"
	"github.com/frhd/quantum-kapital/internal/providers/alphavantage"
	"github.com/frhd/quantum-kapital/internal/providers/mockdata"
	"github.com/frhd/quantum-kapital/internal/providers/rssnews"
	"github.com/frhd/quantum-kapital/internal/providers/stockanalysis"
)

// RegisterAll creates and registers all available providers with the
// global registry. Providers that require API keys will only be registered
// if their environment variable is set. Registration order sets fallback
// priority: live API, then scraper, then offline mock data.
func RegisterAll() error {
	return RegisterAllTo(provider.Global())
}

// RegisterAllTo registers all available providers to the given registry,
// reading credentials from the environment.
func RegisterAllTo(reg *provider.Registry) error {
	return RegisterAllToWithKey(reg, os.Getenv("ALPHAVANTAGE_API_KEY"))
}

// RegisterAllToWithKey registers all available providers using an explicit
// Alpha Vantage key, typically sourced from the config layer.
func RegisterAllToWithKey(reg *provider.Registry, apiKey string) error {
	// --- Alpha Vantage (requires API key) ---
	if apiKey != "" {
		av := alphavantage.New()
		if err := av.Init(map[string]string{"api_key": apiKey}); err != nil {
			return err
		}
		if err := reg.Register(av); err != nil {
			return err
		}
	}

	// --- stockanalysis.com scraper (free, no API key) ---
	sa := stockanalysis.New()
	if err := sa.Init(nil); err != nil {
		return err
	}
	if err := reg.Register(sa); err != nil {
		return err
	}

	// --- RSS market news (free, no API key) ---
	news := rssnews.New()
	if err := news.Init(nil); err != nil {
		return err
	}
	if err := reg.Register(news); err != nil {
		return err
	}

	// --- Offline mock data (always available, lowest priority) ---
	mock := mockdata.New()
	if err := mock.Init(nil); err != nil {
		return err
	}
	if err := reg.Register(mock); err != nil {
		return err
	}

	return nil
}
