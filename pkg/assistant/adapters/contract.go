package adapters

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Capability tags a task category an adapter is suited for.
type Capability string

const (
	CapCoding   Capability = "coding"
	CapCreative Capability = "creative"
	CapAnalysis Capability = "analysis"
	CapPrivacy  Capability = "privacy"
	CapGeneral  Capability = "general"
)

// Descriptor is the static registration record for a backend adapter.
// Everything except Enabled is fixed for the process lifetime.
type Descriptor struct {
	Name         string
	Capabilities []Capability
	Priority     int
	MaxTokens    int
	CostPerToken float64 // per-token USD, 0 when unknown
	Enabled      bool
}

// HasCapability reports whether the descriptor advertises cap.
func (d Descriptor) HasCapability(cap Capability) bool {
	for _, c := range d.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// Request is a single prompt dispatched through the router.
type Request struct {
	ID              uuid.UUID
	Prompt          string
	Context         map[string]any
	ModelPreference string
	MaxTokens       int
	Temperature     float64
}

// Response is the completed result of one adapter invocation.
type Response struct {
	Text       string
	ModelUsed  string
	TokensUsed int
	Cost       float64
	Latency    time.Duration
	Confidence float64
}

// ContractAdapter is the uniform contract every backend implements.
// Process must return either a complete response or an error, never both.
// IsAvailable is a cheap reachability probe and should respect ctx deadlines.
type ContractAdapter interface {
	Descriptor() Descriptor
	Process(ctx context.Context, req Request) (*Response, error)
	IsAvailable(ctx context.Context) bool
}
