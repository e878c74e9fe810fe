package drafting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyantiq/itinerary/internal/domain"
	"github.com/voyantiq/itinerary/internal/drafting"
)

var req = domain.DraftRequest{Destination: "Lisbon", Budget: 800, Duration: 2}

const reply = `
{
  "destination": "Lisbon",
  "daily_plans": [
    {"day": 1, "activities": [
      {"start": "09:00", "end": "11:30", "title": "Belem Tower", "cost": 10, "category": "Culture"},
      {"start": "20:00", "end": "22:00", "title": "Fado night", "cost": 35, "category": "nightlife"}
    ], "total_cost": 45},
    {"day": 2, "activities": [], "total_cost": 0}
  ],
  "budget_breakdown": {"accommodation": 300, "activities": 45, "food": 120, "transportation": 40, "miscellaneous": 20},
  "recommendations": [{"name": "Pasteis de Belem", "category": "dining", "estimated_cost": 5}],
  "local_tips": ["Buy a Viva Viagem card"]
}`

func TestDecode_Valid(t *testing.T) {
	draft, err := drafting.Decode([]byte(reply), req)

	require.NoError(t, err)
	assert.Equal(t, "Lisbon", draft.Destination)
	require.Len(t, draft.DailyPlans, 2)
	acts := draft.DailyPlans[0].Activities
	require.Len(t, acts, 2)
	assert.Equal(t, domain.CategoryCulture, acts[0].Category, "category is case-folded")
	assert.Equal(t, domain.DefaultCategory, acts[1].Category, "unknown category falls back")
	assert.InDelta(t, 525.0, draft.BudgetBreakdown.Total(), 1e-9)
	assert.Equal(t, []string{"Buy a Viva Viagem card"}, draft.LocalTips)
}

func TestDecode_FillsDestination(t *testing.T) {
	draft, err := drafting.Decode([]byte(`{"daily_plans": []}`), req)

	require.NoError(t, err)
	assert.Equal(t, "Lisbon", draft.Destination)
	assert.NotNil(t, draft.DailyPlans)
}

func TestDecode_Rejects(t *testing.T) {
	tests := map[string]string{
		"prose":          `Here is your plan: day 1 visit the tower`,
		"markdown fence": "```json\n{\"daily_plans\": []}\n```",
		"array":          `[{"day": 1}]`,
		"day zero":       `{"daily_plans": [{"day": 0, "activities": []}]}`,
		"duplicate day":  `{"daily_plans": [{"day": 1}, {"day": 1}]}`,
		"bad clock":      `{"daily_plans": [{"day": 1, "activities": [{"start": "9am", "end": "11:00", "title": "x"}]}]}`,
		"end before":     `{"daily_plans": [{"day": 1, "activities": [{"start": "11:00", "end": "09:00", "title": "x"}]}]}`,
		"negative cost":  `{"daily_plans": [{"day": 1, "activities": [{"start": "09:00", "end": "11:00", "title": "x", "cost": -3}]}]}`,
		"missing title":  `{"daily_plans": [{"day": 1, "activities": [{"start": "09:00", "end": "11:00"}]}]}`,
		"string cost":    `{"daily_plans": [{"day": 1, "activities": [{"start": "09:00", "end": "11:00", "title": "x", "cost": "ten"}]}]}`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := drafting.Decode([]byte(raw), req)
			assert.ErrorIs(t, err, domain.ErrMalformedDraft)
		})
	}
}

func TestParseProvider(t *testing.T) {
	for in, want := range map[string]drafting.Provider{
		"":        "",
		"none":    "",
		"OpenAI":  drafting.ProviderOpenAI,
		" gemini": drafting.ProviderGemini,
	} {
		got, err := drafting.ParseProvider(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := drafting.ParseProvider("claude")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNew(t *testing.T) {
	c, err := drafting.New(context.Background(), drafting.Config{})
	require.NoError(t, err)
	assert.Nil(t, c, "no provider means drafting is disabled")

	_, err = drafting.New(context.Background(), drafting.Config{Provider: drafting.ProviderOpenAI})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = drafting.New(context.Background(), drafting.Config{Provider: drafting.ProviderGemini})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = drafting.New(context.Background(), drafting.Config{Provider: "mistral", APIKey: "k"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	c, err = drafting.New(context.Background(), drafting.Config{Provider: drafting.ProviderOpenAI, APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &drafting.OpenAI{}, c)
	assert.NoError(t, c.Close())
}
