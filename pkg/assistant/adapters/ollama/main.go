package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/presbrey/ollamafarm"

	"github.com/auroradesk/aurora/pkg/assistant/adapters"
)

// Local models get a higher placeholder confidence than cloud ones in the
// original configuration; treated as opaque either way.
const reportedConfidence = 0.95

type Config struct {
	// URLs lists the ollama servers to pool; the farm tracks liveness
	// per server.
	URLs       []string
	Model      string
	Descriptor adapters.Descriptor
}

type localAdapter struct {
	desc  adapters.Descriptor
	model string
	farm  *ollamafarm.Farm
}

func New(cfg Config) (adapters.ContractAdapter, error) {
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("no ollama servers configured")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("no ollama model configured")
	}

	farm := ollamafarm.New()
	for _, u := range cfg.URLs {
		if err := farm.RegisterURL(u, nil); err != nil {
			return nil, fmt.Errorf("register ollama server %s: %w", u, err)
		}
	}

	return &localAdapter{
		desc:  cfg.Descriptor,
		model: cfg.Model,
		farm:  farm,
	}, nil
}

func (l *localAdapter) Descriptor() adapters.Descriptor { return l.desc }

// IsAvailable is satisfied by any online server in the farm; the farm's
// own health polling does the actual probing.
func (l *localAdapter) IsAvailable(ctx context.Context) bool {
	return l.farm.First(&ollamafarm.Where{Offline: false}) != nil
}

func (l *localAdapter) Process(ctx context.Context, req adapters.Request) (*adapters.Response, error) {
	server := l.farm.First(&ollamafarm.Where{Offline: false})
	if server == nil {
		return nil, fmt.Errorf("no online ollama server for model %s", l.model)
	}

	msgs := make([]api.Message, 0, 2)
	if sp, ok := req.Context["system_prompt"].(string); ok && sp != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: sp})
	}
	msgs = append(msgs, api.Message{Role: "user", Content: req.Prompt})

	stream := false
	chatReq := api.ChatRequest{
		Model:    l.model,
		Messages: msgs,
		Stream:   &stream,
	}

	var sb strings.Builder
	var tokens int
	err := server.Client().Chat(ctx, &chatReq, func(cr api.ChatResponse) error {
		sb.WriteString(cr.Message.Content)
		if cr.Done {
			tokens = cr.Metrics.PromptEvalCount + cr.Metrics.EvalCount
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}

	return &adapters.Response{
		Text:       sb.String(),
		ModelUsed:  l.desc.Name,
		TokensUsed: tokens,
		Cost:       float64(tokens) * l.desc.CostPerToken,
		Confidence: reportedConfidence,
	}, nil
}
