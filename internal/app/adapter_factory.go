package app

import (
	"context"
	"fmt"
	"time"

	"github.com/auroradesk/aurora/internal/config"
	"github.com/auroradesk/aurora/pkg/Logger"
	"github.com/auroradesk/aurora/pkg/assistant/adapters"
	"github.com/auroradesk/aurora/pkg/assistant/adapters/gemini"
	"github.com/auroradesk/aurora/pkg/assistant/adapters/ollama"
	"github.com/auroradesk/aurora/pkg/assistant/adapters/openai"
	"github.com/auroradesk/aurora/pkg/assistant/router"
)

// AdapterFactory builds model adapters from configuration.
type AdapterFactory struct {
	config *config.Settings
	logger *Logger.Logger
}

// NewAdapterFactory creates a new adapter factory
func NewAdapterFactory(cfg *config.Settings, logger *Logger.Logger) *AdapterFactory {
	return &AdapterFactory{
		config: cfg,
		logger: logger,
	}
}

// CreateRouter builds the model router with every configured adapter
// registered. Adapters that fail to construct are skipped with a warning
// so one bad credential doesn't take the gateway down.
func (f *AdapterFactory) CreateRouter(ctx context.Context, opts ...router.Option) (*router.Mux, error) {
	mux := router.New(router.Config{
		CapabilityBonus: f.config.Router.CapabilityBonus,
		CallTimeout:     time.Duration(f.config.Router.CallTimeoutSecs) * time.Second,
		ProbeTimeout:    time.Duration(f.config.Router.ProbeTimeoutSecs) * time.Second,
	}, f.logger, opts...)

	registered := 0
	for _, ac := range f.config.Adapters {
		adapter, err := f.createAdapter(ctx, ac)
		if err != nil {
			f.logger.Warnf("skipping adapter %q: %v", ac.Name, err)
			continue
		}
		if err := mux.Register(adapter); err != nil {
			f.logger.Warnf("failed to register adapter %q: %v", ac.Name, err)
			continue
		}
		if !ac.Enabled {
			if err := mux.SetEnabled(ac.Name, false); err != nil {
				f.logger.Warnf("failed to disable adapter %q: %v", ac.Name, err)
			}
		}
		registered++
	}

	if registered == 0 {
		return nil, fmt.Errorf("no model adapters configured")
	}
	f.logger.Infof("Model router created with %d adapter(s)", registered)
	return mux, nil
}

func (f *AdapterFactory) createAdapter(ctx context.Context, ac config.AdapterConfig) (adapters.ContractAdapter, error) {
	descriptor := adapters.Descriptor{
		Name:         ac.Name,
		Capabilities: capabilitiesFromConfig(ac.Capabilities),
		Priority:     ac.Priority,
		MaxTokens:    ac.MaxTokens,
		CostPerToken: ac.CostPerToken,
		Enabled:      ac.Enabled,
	}

	switch ac.Type {
	case "openai":
		return openai.New(openai.Config{
			APIKey:     ac.APIKey,
			Model:      ac.Model,
			Descriptor: descriptor,
		})
	case "ollama":
		return ollama.New(ollama.Config{
			URLs:       ac.URLs,
			Model:      ac.Model,
			Descriptor: descriptor,
		})
	case "gemini":
		return gemini.New(ctx, gemini.Config{
			APIKey:     ac.APIKey,
			Model:      ac.Model,
			Descriptor: descriptor,
		})
	default:
		return nil, fmt.Errorf("unknown adapter type %q", ac.Type)
	}
}

func capabilitiesFromConfig(names []string) []adapters.Capability {
	caps := make([]adapters.Capability, 0, len(names))
	for _, n := range names {
		caps = append(caps, adapters.Capability(n))
	}
	return caps
}
