// Package drafting asks a language model for a structured itinerary draft.
// Models are always asked for a single JSON document; Decode validates it
// before anything reaches the itinerary engine.
package drafting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/voyantiq/itinerary/internal/domain"
)

// Provider names a drafting backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Client is a drafting backend.
type Client interface {
	Draft(ctx context.Context, req domain.DraftRequest) (domain.DraftItinerary, error)
	Close() error
}

// Config selects and configures a backend. BaseURL is only honoured by
// OpenAI-compatible backends.
type Config struct {
	Provider Provider
	APIKey   string
	Model    string
	BaseURL  string
}

// New builds the configured backend. It returns a nil Client and no error
// when Provider is empty, which leaves drafting disabled.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("drafting.New: %w: openai requires an API key", domain.ErrValidation)
		}
		return NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("drafting.New: %w: gemini requires an API key", domain.ErrValidation)
		}
		g, err := NewGemini(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("drafting.New: %w: unknown provider %q", domain.ErrValidation, cfg.Provider)
	}
}

// ParseProvider validates a provider name (case-insensitive). Empty and
// "none" both mean disabled.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "", "none":
		return "", nil
	case ProviderOpenAI, ProviderGemini:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown drafting provider %q", domain.ErrValidation, s)
}

const systemPrompt = `You are a travel planner. Reply with one JSON object and nothing else.
No markdown, no comments, no prose outside the JSON values.`

const schema = `{
  "destination": "string",
  "daily_plans": [
    {
      "day": 1,
      "activities": [
        {"start": "09:00", "end": "11:00", "title": "string", "description": "string",
         "location": "string", "cost": 0, "category": "sightseeing", "booking_url": "string"}
      ],
      "total_cost": 0
    }
  ],
  "budget_breakdown": {"accommodation": 0, "activities": 0, "food": 0, "transportation": 0, "miscellaneous": 0},
  "recommendations": [{"name": "string", "description": "string", "category": "dining", "estimated_cost": 0}],
  "local_tips": ["string"]
}`

// prompt renders the user message for req.
func prompt(req domain.DraftRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan a %d-day trip to %s with a total budget of %.2f.\n", req.Duration, req.Destination, req.Budget)
	if len(req.Activities) > 0 {
		fmt.Fprintf(&b, "Preferred activities: %s.\n", strings.Join(req.Activities, ", "))
	}
	if req.Preferences != "" {
		fmt.Fprintf(&b, "Traveller notes: %s\n", req.Preferences)
	}
	b.WriteString("\nReturn JSON matching this schema exactly:\n")
	b.WriteString(schema)
	fmt.Fprintf(&b, "\n\nRules:\n- Exactly %d entries in daily_plans, day numbered 1..%d.\n", req.Duration, req.Duration)
	b.WriteString("- Times are 24-hour HH:MM and start is before end on the same day.\n")
	b.WriteString("- Activities within a day do not overlap.\n")
	b.WriteString("- category is one of: ")
	for i, c := range domain.Categories {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(c))
	}
	b.WriteString(".\n- Costs are non-negative numbers in the trip currency.\n")
	return b.String()
}

// Decode parses and validates a model reply.
//   - The reply must be a single JSON object.
//   - Every day is >= 1 and no day appears twice.
//   - Every activity has a title, HH:MM start and end, end after start and a
//     non-negative cost.
//
// Unknown categories fall back to domain.DefaultCategory and a blank
// destination is filled from req.
func Decode(raw []byte, req domain.DraftRequest) (domain.DraftItinerary, error) {
	raw = bytes.TrimSpace(raw)
	var draft domain.DraftItinerary
	if err := json.Unmarshal(raw, &draft); err != nil {
		return domain.DraftItinerary{}, fmt.Errorf("drafting.Decode: %w: reply is not a JSON itinerary: %v", domain.ErrMalformedDraft, err)
	}
	if strings.TrimSpace(draft.Destination) == "" {
		draft.Destination = req.Destination
	}

	seen := make(map[int]bool, len(draft.DailyPlans))
	for i := range draft.DailyPlans {
		day := &draft.DailyPlans[i]
		if day.Day < 1 {
			return domain.DraftItinerary{}, fmt.Errorf("drafting.Decode: %w: day %d is not 1-based", domain.ErrMalformedDraft, day.Day)
		}
		if seen[day.Day] {
			return domain.DraftItinerary{}, fmt.Errorf("drafting.Decode: %w: day %d appears twice", domain.ErrMalformedDraft, day.Day)
		}
		seen[day.Day] = true

		for j := range day.Activities {
			a := &day.Activities[j]
			if err := validatePlanned(*a); err != nil {
				return domain.DraftItinerary{}, fmt.Errorf("drafting.Decode: day %d: %w", day.Day, err)
			}
			if c, err := domain.ParseCategory(string(a.Category)); err == nil {
				a.Category = c
			} else {
				a.Category = domain.DefaultCategory
			}
		}
	}
	if draft.DailyPlans == nil {
		draft.DailyPlans = []domain.DayPlan{}
	}
	return draft, nil
}

func validatePlanned(a domain.PlannedActivity) error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%w: activity title is required", domain.ErrMalformedDraft)
	}
	start, err := time.Parse("15:04", strings.TrimSpace(a.Start))
	if err != nil {
		return fmt.Errorf("%w: %q: start must be HH:MM", domain.ErrMalformedDraft, a.Title)
	}
	end, err := time.Parse("15:04", strings.TrimSpace(a.End))
	if err != nil {
		return fmt.Errorf("%w: %q: end must be HH:MM", domain.ErrMalformedDraft, a.Title)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: %q: end must be after start", domain.ErrMalformedDraft, a.Title)
	}
	if a.Cost < 0 {
		return fmt.Errorf("%w: %q: cost must be non-negative", domain.ErrMalformedDraft, a.Title)
	}
	return nil
}
