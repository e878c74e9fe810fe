package drafting

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/voyantiq/itinerary/internal/domain"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAI drafts through the chat completions API in JSON mode.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds an OpenAI drafter. A non-empty baseURL points it at an
// OpenAI-compatible endpoint.
func NewOpenAI(apiKey, model, baseURL string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}
}

// Draft asks the model for an itinerary and decodes its reply.
func (o *OpenAI) Draft(ctx context.Context, req domain.DraftRequest) (domain.DraftItinerary, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	if err != nil {
		return domain.DraftItinerary{}, fmt.Errorf("drafting.OpenAI.Draft: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.DraftItinerary{}, fmt.Errorf("drafting.OpenAI.Draft: %w", errors.New("empty completion"))
	}
	return Decode([]byte(resp.Choices[0].Message.Content), req)
}

// Close is a no-op; the HTTP client needs no teardown.
func (o *OpenAI) Close() error { return nil }
