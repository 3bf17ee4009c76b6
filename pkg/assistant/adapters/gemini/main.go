package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/auroradesk/aurora/pkg/assistant/adapters"
)

const reportedConfidence = 0.9

type Config struct {
	APIKey     string
	Model      string
	Descriptor adapters.Descriptor
}

type geminiAdapter struct {
	desc   adapters.Descriptor
	model  string
	client *genai.Client
}

func New(ctx context.Context, cfg Config) (adapters.ContractAdapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash-latest"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini API client: %w", err)
	}

	return &geminiAdapter{
		desc:   cfg.Descriptor,
		model:  model,
		client: client,
	}, nil
}

func (g *geminiAdapter) Descriptor() adapters.Descriptor { return g.desc }

// IsAvailable uses CountTokens as a cheap authenticated reachability call.
func (g *geminiAdapter) IsAvailable(ctx context.Context) bool {
	_, err := g.client.GenerativeModel(g.model).CountTokens(ctx, genai.Text("ping"))
	return err == nil
}

func (g *geminiAdapter) Process(ctx context.Context, req adapters.Request) (*adapters.Response, error) {
	model := g.client.GenerativeModel(g.model)
	if sp, ok := req.Context["system_prompt"].(string); ok && sp != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(sp)}}
	}
	if maxTokens := g.effectiveMaxTokens(req); maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}
	if req.Temperature > 0 {
		model.SetTemperature(float32(req.Temperature))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	var tokens int
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &adapters.Response{
		Text:       sb.String(),
		ModelUsed:  g.desc.Name,
		TokensUsed: tokens,
		Cost:       float64(tokens) * g.desc.CostPerToken,
		Confidence: reportedConfidence,
	}, nil
}

func (g *geminiAdapter) effectiveMaxTokens(req adapters.Request) int {
	if req.MaxTokens > 0 && (g.desc.MaxTokens == 0 || req.MaxTokens <= g.desc.MaxTokens) {
		return req.MaxTokens
	}
	return g.desc.MaxTokens
}
