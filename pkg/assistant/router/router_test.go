package router

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/auroradesk/aurora/pkg/assistant/adapters"
)

// fakeAdapter is a scriptable backend for router tests.
type fakeAdapter struct {
	desc       adapters.Descriptor
	available  bool
	err        error
	confidence float64
	calls      int
}

func (f *fakeAdapter) Descriptor() adapters.Descriptor { return f.desc }

func (f *fakeAdapter) IsAvailable(ctx context.Context) bool { return f.available }

func (f *fakeAdapter) Process(ctx context.Context, req adapters.Request) (*adapters.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &adapters.Response{
		Text:       "ok from " + f.desc.Name,
		ModelUsed:  f.desc.Name,
		TokensUsed: 42,
		Confidence: f.confidence,
	}, nil
}

func newFake(name string, priority int, caps ...adapters.Capability) *fakeAdapter {
	return &fakeAdapter{
		desc: adapters.Descriptor{
			Name:         name,
			Capabilities: caps,
			Priority:     priority,
			MaxTokens:    4096,
			Enabled:      true,
		},
		available:  true,
		confidence: 0.9,
	}
}

// specTriplet registers the three adapters used by the worked examples:
// deepseek (10, coding+analysis), openai (8, creative+analysis),
// local (5, privacy+general).
func specTriplet(t *testing.T) (*Mux, *fakeAdapter, *fakeAdapter, *fakeAdapter) {
	t.Helper()
	m := New(Config{}, nil)
	deepseek := newFake("deepseek", 10, adapters.CapCoding, adapters.CapAnalysis)
	openai := newFake("openai", 8, adapters.CapCreative, adapters.CapAnalysis)
	local := newFake("local", 5, adapters.CapPrivacy, adapters.CapGeneral)
	for _, a := range []*fakeAdapter{deepseek, openai, local} {
		if err := m.Register(a); err != nil {
			t.Fatalf("register %s: %v", a.desc.Name, err)
		}
	}
	return m, deepseek, openai, local
}

func TestPreferenceWins(t *testing.T) {
	m, _, _, local := specTriplet(t)

	// "local" would never win on score for a coding prompt, but the
	// explicit preference overrides the heuristic.
	got, err := m.SelectAdapter(context.Background(), adapters.Request{
		Prompt:          "debug this function",
		ModelPreference: "local",
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got.Descriptor().Name != local.desc.Name {
		t.Errorf("expected local, got %s", got.Descriptor().Name)
	}
}

func TestPreferenceUnavailableFallsThrough(t *testing.T) {
	m, deepseek, _, local := specTriplet(t)
	local.available = false

	got, err := m.SelectAdapter(context.Background(), adapters.Request{
		Prompt:          "debug this function",
		ModelPreference: "local",
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got.Descriptor().Name != deepseek.desc.Name {
		t.Errorf("expected deepseek, got %s", got.Descriptor().Name)
	}
}

func TestCreativePromptPicksOpenai(t *testing.T) {
	// Worked example from the routing design: "write me a poem" is
	// creative, so openai's capability bonus beats deepseek's priority.
	m, _, openai, _ := specTriplet(t)

	got, err := m.SelectAdapter(context.Background(), adapters.Request{Prompt: "write me a poem"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got.Descriptor().Name != openai.desc.Name {
		t.Errorf("expected openai, got %s", got.Descriptor().Name)
	}
}

func TestCodingPromptWithDeepseekDown(t *testing.T) {
	// Second worked example: only capable coding adapter unavailable,
	// selection falls through to the highest remaining score.
	m, deepseek, openai, _ := specTriplet(t)
	deepseek.available = false

	got, err := m.SelectAdapter(context.Background(), adapters.Request{Prompt: "debug this function"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got.Descriptor().Name != openai.desc.Name {
		t.Errorf("expected openai, got %s", got.Descriptor().Name)
	}
}

func TestCapabilityDominatesEqualPriority(t *testing.T) {
	m := New(Config{}, nil)
	a := newFake("a", 5, adapters.CapAnalysis)
	b := newFake("b", 5, adapters.CapPrivacy)
	if err := m.Register(a); err != nil {
		t.Fatal(err)
	}
	if err := m.Register(b); err != nil {
		t.Fatal(err)
	}

	got, err := m.SelectAdapter(context.Background(), adapters.Request{
		Prompt:  "anything at all",
		Context: map[string]any{"sensitive": true},
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got.Descriptor().Name != "b" {
		t.Errorf("expected privacy-capable b, got %s", got.Descriptor().Name)
	}
}

func TestTieBreaksByRegistrationOrder(t *testing.T) {
	m := New(Config{}, nil)
	first := newFake("first", 5, adapters.CapGeneral)
	second := newFake("second", 5, adapters.CapGeneral)
	if err := m.Register(first); err != nil {
		t.Fatal(err)
	}
	if err := m.Register(second); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		got, err := m.SelectAdapter(context.Background(), adapters.Request{Prompt: "hello there"})
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if got.Descriptor().Name != "first" {
			t.Errorf("tie should keep first registered, got %s", got.Descriptor().Name)
		}
	}
}

func TestNoAdapterAvailable(t *testing.T) {
	m, deepseek, openai, local := specTriplet(t)
	deepseek.available = false
	openai.available = false
	local.available = false

	_, err := m.SelectAdapter(context.Background(), adapters.Request{Prompt: "hi"})
	if !errors.Is(err, adapters.ErrNoAdapterAvailable) {
		t.Errorf("expected ErrNoAdapterAvailable, got %v", err)
	}
}

func TestDisabledAdapterExcludedButKeepsWeight(t *testing.T) {
	m, deepseek, openai, _ := specTriplet(t)

	before, _ := m.Weight("deepseek")
	if err := m.SetEnabled("deepseek", false); err != nil {
		t.Fatal(err)
	}

	got, err := m.SelectAdapter(context.Background(), adapters.Request{Prompt: "debug this function"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got.Descriptor().Name == deepseek.desc.Name {
		t.Error("disabled adapter selected")
	}
	if got.Descriptor().Name != openai.desc.Name {
		t.Errorf("expected openai, got %s", got.Descriptor().Name)
	}

	after, ok := m.Weight("deepseek")
	if !ok || after != before {
		t.Errorf("disabled adapter weight changed: %v -> %v", before, after)
	}
}

func TestFallbackOnFailure(t *testing.T) {
	m, deepseek, openai, _ := specTriplet(t)
	deepseek.err = errors.New("upstream 503")

	openaiBefore, _ := m.Weight("openai")
	deepseekBefore, _ := m.Weight("deepseek")

	resp, err := m.ProcessRequest(context.Background(), adapters.Request{Prompt: "debug this function"})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if resp.ModelUsed != openai.desc.Name {
		t.Errorf("expected response from openai, got %s", resp.ModelUsed)
	}
	if deepseek.calls != 1 {
		t.Errorf("deepseek should be tried once, got %d", deepseek.calls)
	}

	// Failed attempt must not move the failed adapter's weight; the
	// successful one must move.
	if w, _ := m.Weight("deepseek"); w != deepseekBefore {
		t.Errorf("failed adapter weight mutated: %v -> %v", deepseekBefore, w)
	}
	if w, _ := m.Weight("openai"); w == openaiBefore {
		t.Error("successful adapter weight unchanged")
	}
}

func TestAllAdaptersFailed(t *testing.T) {
	m, deepseek, openai, local := specTriplet(t)
	deepseek.err = errors.New("timeout")
	openai.err = errors.New("bad payload")
	local.err = errors.New("connection refused")

	_, err := m.ProcessRequest(context.Background(), adapters.Request{Prompt: "debug this function"})
	var all *adapters.AllAdaptersFailedError
	if !errors.As(err, &all) {
		t.Fatalf("expected AllAdaptersFailedError, got %v", err)
	}
	if len(all.Attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(all.Attempts))
	}
	// Attempt order follows descending score: deepseek (coding bonus),
	// then openai, then local.
	wantOrder := []string{"deepseek", "openai", "local"}
	for i, want := range wantOrder {
		if all.Attempts[i].Adapter != want {
			t.Errorf("attempt %d: expected %s, got %s", i, want, all.Attempts[i].Adapter)
		}
	}
}

func TestWeightConvergence(t *testing.T) {
	m := New(Config{}, nil)
	a := newFake("solo", 10, adapters.CapGeneral)
	a.confidence = 0.8
	if err := m.Register(a); err != nil {
		t.Fatal(err)
	}

	// Fast fake calls have ~0ms latency, so the EMA target is
	// (1 + 0.8)/2 = 0.9.
	const target = 0.9
	prev, _ := m.Weight("solo")
	prevDist := math.Abs(prev - target)
	for i := 0; i < 50; i++ {
		if _, err := m.ProcessRequest(context.Background(), adapters.Request{Prompt: "hello"}); err != nil {
			t.Fatalf("process %d: %v", i, err)
		}
		w, _ := m.Weight("solo")
		dist := math.Abs(w - target)
		if dist > prevDist+1e-9 {
			t.Fatalf("iteration %d: distance to target grew: %v -> %v", i, prevDist, dist)
		}
		prevDist = dist
	}
	if prevDist > 0.01 {
		t.Errorf("weight did not converge: still %v away from %v", prevDist, target)
	}
}

func TestWeightUpdateFormula(t *testing.T) {
	m := New(Config{}, nil)
	a := newFake("solo", 10, adapters.CapGeneral)
	if err := m.Register(a); err != nil {
		t.Fatal(err)
	}

	w0, _ := m.Weight("solo")
	m.updateWeight("solo", 2500*time.Millisecond, 0.9)
	// latency score = 1 - 2500/10000 = 0.75, target = (0.75+0.9)/2
	want := 0.9*w0 + 0.1*((0.75+0.9)/2)
	got, _ := m.Weight("solo")
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Latency past the ceiling clamps to score zero.
	m.updateWeight("solo", 30*time.Second, 1.0)
	want = 0.9*got + 0.1*((0+1.0)/2)
	got, _ = m.Weight("solo")
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("clamped update: expected %v, got %v", want, got)
	}
}

type captureSink struct {
	records []Usage
}

func (c *captureSink) Record(ctx context.Context, u Usage) {
	c.records = append(c.records, u)
}

func TestSinkReceivesUsage(t *testing.T) {
	sink := &captureSink{}
	m := New(Config{}, nil, WithSink(sink))
	a := newFake("solo", 10, adapters.CapCoding)
	if err := m.Register(a); err != nil {
		t.Fatal(err)
	}

	if _, err := m.ProcessRequest(context.Background(), adapters.Request{Prompt: "debug this function"}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 usage record, got %d", len(sink.records))
	}
	rec := sink.records[0]
	if rec.Adapter != "solo" || rec.Category != adapters.CapCoding || !rec.Success {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.TokensUsed != 42 {
		t.Errorf("expected 42 tokens, got %d", rec.TokensUsed)
	}
}

type fixedCache struct {
	values map[string]bool
	sets   int
}

func (f *fixedCache) Get(name string) (bool, bool) {
	v, ok := f.values[name]
	return v, ok
}

func (f *fixedCache) Set(name string, available bool) {
	f.sets++
	f.values[name] = available
}

func TestProbeCacheShortCircuitsProbes(t *testing.T) {
	cache := &fixedCache{values: map[string]bool{"solo": false}}
	m := New(Config{}, nil, WithProbeCache(cache))
	a := newFake("solo", 10, adapters.CapGeneral)
	if err := m.Register(a); err != nil {
		t.Fatal(err)
	}

	// Cache says offline even though the adapter itself would answer.
	if _, err := m.SelectAdapter(context.Background(), adapters.Request{Prompt: "hi"}); !errors.Is(err, adapters.ErrNoAdapterAvailable) {
		t.Errorf("expected ErrNoAdapterAvailable from cached probe, got %v", err)
	}
	if cache.sets != 0 {
		t.Errorf("cache hit should not re-probe, got %d sets", cache.sets)
	}
}

func TestRegisterDuplicateName(t *testing.T) {
	m := New(Config{}, nil)
	if err := m.Register(newFake("dup", 5, adapters.CapGeneral)); err != nil {
		t.Fatal(err)
	}
	if err := m.Register(newFake("dup", 7, adapters.CapGeneral)); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}
