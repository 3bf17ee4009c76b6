package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/auroradesk/aurora/pkg/assistant/adapters"
)

// reportedConfidence is a provider-level placeholder; OpenAI exposes no
// per-response certainty signal.
const reportedConfidence = 0.9

type Config struct {
	APIKey     string
	Model      string
	Descriptor adapters.Descriptor
}

type openaiAdapter struct {
	desc   adapters.Descriptor
	model  openai.ChatModel
	client openai.Client
}

func New(cfg Config) (adapters.ContractAdapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is not configured")
	}
	model := openai.ChatModel(cfg.Model)
	if cfg.Model == "" {
		model = openai.ChatModelGPT4oMini
	}
	return &openaiAdapter{
		desc:   cfg.Descriptor,
		model:  model,
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
	}, nil
}

func (o *openaiAdapter) Descriptor() adapters.Descriptor { return o.desc }

// IsAvailable probes the models endpoint, the cheapest authenticated call.
func (o *openaiAdapter) IsAvailable(ctx context.Context) bool {
	_, err := o.client.Models.List(ctx)
	return err == nil
}

func (o *openaiAdapter) Process(ctx context.Context, req adapters.Request) (*adapters.Response, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if sp, ok := req.Context["system_prompt"].(string); ok && sp != "" {
		msgs = append(msgs, openai.SystemMessage(sp))
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    o.model,
	}
	if maxTokens := o.effectiveMaxTokens(req); maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	tokens := int(completion.Usage.TotalTokens)
	return &adapters.Response{
		Text:       completion.Choices[0].Message.Content,
		ModelUsed:  o.desc.Name,
		TokensUsed: tokens,
		Cost:       float64(tokens) * o.desc.CostPerToken,
		Confidence: reportedConfidence,
	}, nil
}

func (o *openaiAdapter) effectiveMaxTokens(req adapters.Request) int {
	if req.MaxTokens > 0 && (o.desc.MaxTokens == 0 || req.MaxTokens <= o.desc.MaxTokens) {
		return req.MaxTokens
	}
	return o.desc.MaxTokens
}
