package router

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/auroradesk/aurora/pkg/Logger"
	"github.com/auroradesk/aurora/pkg/assistant/adapters"
)

const (
	// latencyCeilingMs is the latency at which the latency score bottoms
	// out at zero; anything slower scores the same.
	latencyCeilingMs = 10000.0

	// emaOld/emaNew are the smoothing factors for the performance weight.
	emaOld = 0.9
	emaNew = 0.1

	defaultCapabilityBonus = 2.0
	defaultCallTimeout     = 60 * time.Second
)

// Config carries the router's tunable knobs.
type Config struct {
	// CapabilityBonus multiplies the score of adapters whose capability
	// set contains the classified category. Must be > 1 to matter.
	CapabilityBonus float64
	// CallTimeout bounds a single adapter invocation.
	CallTimeout time.Duration
	// ProbeTimeout bounds a single availability probe.
	ProbeTimeout time.Duration
}

// Usage is the completion record handed to the sink after a successful
// dispatch. Failed attempts are not recorded here; they surface as errors.
type Usage struct {
	Adapter    string
	Category   adapters.Capability
	TokensUsed int
	LatencyMs  int64
	Cost       float64
	Success    bool
}

// Sink receives usage records. Implementations must not block the caller
// for long; the router invokes it synchronously after each success.
type Sink interface {
	Record(ctx context.Context, u Usage)
}

type entry struct {
	adapter adapters.ContractAdapter
	enabled bool
}

// Mux routes requests across registered backend adapters. Selection
// combines static priority, a capability bonus for the classified request
// category, and a smoothed per-adapter performance weight. On invocation
// failure the mux retries against the next-best candidate.
type Mux struct {
	cfg    Config
	logger *Logger.Logger
	cache  ProbeCache
	sink   Sink

	mu      sync.RWMutex
	order   []string
	entries map[string]*entry
	weights map[string]float64
}

// Option customizes a Mux at construction time.
type Option func(*Mux)

// WithProbeCache memoizes availability probes.
func WithProbeCache(c ProbeCache) Option {
	return func(m *Mux) { m.cache = c }
}

// WithSink records usage after successful dispatches.
func WithSink(s Sink) Option {
	return func(m *Mux) { m.sink = s }
}

func New(cfg Config, logger *Logger.Logger, opts ...Option) *Mux {
	if cfg.CapabilityBonus <= 1 {
		cfg.CapabilityBonus = defaultCapabilityBonus
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	m := &Mux{
		cfg:     cfg,
		logger:  logger,
		entries: make(map[string]*entry),
		weights: make(map[string]float64),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds an adapter. Registration order is significant: it breaks
// score ties deterministically. The performance weight is seeded from the
// static priority, scaled into the weight range.
func (m *Mux) Register(a adapters.ContractAdapter) error {
	desc := a.Descriptor()
	if desc.Name == "" {
		return fmt.Errorf("adapter has empty name")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[desc.Name]; exists {
		return fmt.Errorf("adapter %q already registered", desc.Name)
	}
	m.order = append(m.order, desc.Name)
	m.entries[desc.Name] = &entry{adapter: a, enabled: desc.Enabled}
	m.weights[desc.Name] = float64(desc.Priority) / 10.0
	return nil
}

// SetEnabled toggles an adapter. A disabled adapter is excluded from
// selection but keeps its last weight for when it comes back.
func (m *Mux) SetEnabled(name string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[name]
	if !ok {
		return fmt.Errorf("unknown adapter %q", name)
	}
	e.enabled = enabled
	return nil
}

// Weight exposes the current performance weight, mainly for diagnostics.
func (m *Mux) Weight(name string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.weights[name]
	return w, ok
}

// Adapters lists registered descriptors in registration order, with the
// live enabled flag applied.
func (m *Mux) Adapters() []adapters.Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]adapters.Descriptor, 0, len(m.order))
	for _, name := range m.order {
		e := m.entries[name]
		d := e.adapter.Descriptor()
		d.Enabled = e.enabled
		out = append(out, d)
	}
	return out
}

// SelectAdapter picks the adapter for a request without invoking it.
// An explicit, available model preference always wins over the heuristic.
func (m *Mux) SelectAdapter(ctx context.Context, req adapters.Request) (adapters.ContractAdapter, error) {
	return m.selectAdapter(ctx, req, nil)
}

func (m *Mux) selectAdapter(ctx context.Context, req adapters.Request, excluded map[string]bool) (adapters.ContractAdapter, error) {
	// Preference short-circuit.
	if req.ModelPreference != "" && !excluded[req.ModelPreference] {
		m.mu.RLock()
		e, ok := m.entries[req.ModelPreference]
		m.mu.RUnlock()
		if ok && e.enabled && m.available(ctx, e.adapter) {
			return e.adapter, nil
		}
	}

	category := Classify(req)

	m.mu.RLock()
	names := make([]string, len(m.order))
	copy(names, m.order)
	m.mu.RUnlock()

	var (
		best      adapters.ContractAdapter
		bestScore float64
	)
	for _, name := range names {
		if excluded[name] {
			continue
		}
		m.mu.RLock()
		e := m.entries[name]
		enabled := e.enabled
		weight := m.weights[name]
		m.mu.RUnlock()
		if !enabled || !m.available(ctx, e.adapter) {
			continue
		}

		desc := e.adapter.Descriptor()
		score := float64(desc.Priority) * weight
		if desc.HasCapability(category) {
			score *= m.cfg.CapabilityBonus
		}
		// Strict inequality keeps the first-registered adapter on ties.
		if best == nil || score > bestScore {
			best = e.adapter
			bestScore = score
		}
	}

	if best == nil {
		return nil, adapters.ErrNoAdapterAvailable
	}
	return best, nil
}

// ProcessRequest selects an adapter, invokes it, and falls back to the
// next-best candidate on failure. Weights are only touched after a
// definitive success.
func (m *Mux) ProcessRequest(ctx context.Context, req adapters.Request) (*adapters.Response, error) {
	category := Classify(req)
	excluded := make(map[string]bool)
	var attempts []*adapters.InvocationError

	for {
		ad, err := m.selectAdapter(ctx, req, excluded)
		if err != nil {
			if len(attempts) > 0 {
				return nil, &adapters.AllAdaptersFailedError{Attempts: attempts}
			}
			return nil, err
		}
		name := ad.Descriptor().Name

		cctx, cancel := context.WithTimeout(ctx, m.cfg.CallTimeout)
		start := time.Now()
		resp, perr := ad.Process(cctx, req)
		cancel()
		latency := time.Since(start)

		if perr != nil {
			ie := &adapters.InvocationError{Adapter: name, Err: perr}
			if m.logger != nil {
				m.logger.Warnf("adapter %s failed after %s: %v", name, latency, perr)
			}
			attempts = append(attempts, ie)
			excluded[name] = true
			continue
		}

		resp.ModelUsed = name
		resp.Latency = latency
		m.updateWeight(name, latency, resp.Confidence)
		if m.sink != nil {
			m.sink.Record(ctx, Usage{
				Adapter:    name,
				Category:   category,
				TokensUsed: resp.TokensUsed,
				LatencyMs:  latency.Milliseconds(),
				Cost:       resp.Cost,
				Success:    true,
			})
		}
		return resp, nil
	}
}

// updateWeight folds one completed request into the EMA. The target blends
// a latency score (1 at instant, 0 at the ceiling) with the adapter's
// reported confidence.
func (m *Mux) updateWeight(name string, latency time.Duration, confidence float64) {
	latencyScore := 1 - math.Min(float64(latency.Milliseconds())/latencyCeilingMs, 1)
	target := (latencyScore + confidence) / 2

	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.weights[name]; ok {
		m.weights[name] = emaOld*w + emaNew*target
	}
}
