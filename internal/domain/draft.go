package domain

// DraftRequest is the structured input handed to the AI drafting collaborator.
type DraftRequest struct {
	Destination string   `json:"destination"`
	Budget      float64  `json:"budget"`
	Duration    int      `json:"duration"` // days
	Activities  []string `json:"activities,omitempty"`
	Preferences string   `json:"preferences,omitempty"`
}

// DraftItinerary is the structured itinerary emitted by the drafting
// collaborator. The core never parses free text; a draft arrives already
// shaped like this.
type DraftItinerary struct {
	Destination     string           `json:"destination"`
	DailyPlans      []DayPlan        `json:"daily_plans"`
	BudgetBreakdown BudgetBreakdown  `json:"budget_breakdown"`
	Recommendations []Recommendation `json:"recommendations"`
	LocalTips       []string         `json:"local_tips"`
}

// DayPlan groups the planned activities of one trip day. Day is 1-based.
type DayPlan struct {
	Day        int               `json:"day"`
	Activities []PlannedActivity `json:"activities"`
	TotalCost  float64           `json:"total_cost"`
}

// PlannedActivity is one drafted slot. Start and End are "15:04" clock times
// relative to the plan's day.
type PlannedActivity struct {
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Cost        float64  `json:"cost"`
	Category    Category `json:"category"`
	BookingURL  string   `json:"booking_url,omitempty"`
}

// BudgetBreakdown splits a draft's estimated spend.
type BudgetBreakdown struct {
	Accommodation  float64 `json:"accommodation"`
	Activities     float64 `json:"activities"`
	Food           float64 `json:"food"`
	Transportation float64 `json:"transportation"`
	Miscellaneous  float64 `json:"miscellaneous"`
}

// Total sums every line of the breakdown.
func (b BudgetBreakdown) Total() float64 {
	return b.Accommodation + b.Activities + b.Food + b.Transportation + b.Miscellaneous
}

// Recommendation is an optional suggestion outside the daily plans.
type Recommendation struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Category      Category `json:"category"`
	EstimatedCost float64  `json:"estimated_cost"`
}
