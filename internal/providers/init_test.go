package providers

import (
	"testing"

	"github.com/frhd/quantum-kapital/internal/provider"
)

func TestRegisterAllTo(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}

	// The scraper and mock providers should always be registered (no key needed).
	for _, name := range []string{"stockanalysis", "rssnews", "mockdata"} {
		p, err := reg.Get(name)
		if err != nil {
			t.Fatalf("%s not registered: %v", name, err)
		}
		if p.Info().Name != name {
			t.Errorf("wrong provider name for %s", name)
		}
	}

	// Alpha Vantage should only be registered if ALPHAVANTAGE_API_KEY is set.
	_, err := reg.Get("alphavantage")
	if err == nil {
		t.Log("alphavantage registered (ALPHAVANTAGE_API_KEY env var is set)")
	} else {
		t.Log("alphavantage not registered (no ALPHAVANTAGE_API_KEY)")
	}
}

func TestRegisterAllToWithModelCoverage(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}

	// Every model must be servable without API keys.
	coverage := reg.ModelCoverage()
	for _, m := range provider.AllModels() {
		provs, ok := coverage[m]
		if !ok || len(provs) == 0 {
			t.Errorf("no providers for model %s", m)
		}
	}
}

func TestRegisterAllIdempotent(t *testing.T) {
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg); err != nil {
		t.Fatalf("first RegisterAllTo: %v", err)
	}
	// Registering again should overwrite without error.
	if err := RegisterAllTo(reg); err != nil {
		t.Fatalf("second RegisterAllTo: %v", err)
	}

	// Still exactly one mockdata provider.
	list := reg.List()
	mockCount := 0
	for _, info := range list {
		if info.Name == "mockdata" {
			mockCount++
		}
	}
	if mockCount != 1 {
		t.Errorf("expected 1 mockdata, got %d", mockCount)
	}
}
