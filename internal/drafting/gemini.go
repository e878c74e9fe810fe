package drafting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/voyantiq/itinerary/internal/domain"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

var errNoContent = errors.New("model returned no content")

// Gemini drafts through the Gemini API with a JSON response type.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini connects to the Gemini API with an API key.
func NewGemini(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Gemini, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("drafting.NewGemini: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Draft asks the model for an itinerary and decodes its reply.
func (g *Gemini) Draft(ctx context.Context, req domain.DraftRequest) (domain.DraftItinerary, error) {
	m := g.client.GenerativeModel(g.model)
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0.2)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt(req)))
	if err != nil {
		return domain.DraftItinerary{}, fmt.Errorf("drafting.Gemini.Draft: %w", err)
	}
	text, err := replyText(resp)
	if err != nil {
		return domain.DraftItinerary{}, fmt.Errorf("drafting.Gemini.Draft: %w", err)
	}
	return Decode([]byte(text), req)
}

// Close releases the underlying connections.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// replyText joins the text parts of the first candidate.
func replyText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errNoContent
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", errNoContent
	}
	return b.String(), nil
}
