package domain

import (
	"time"

	"github.com/google/uuid"
)

// KeyResult is a quantitative measure of progress toward an Objective.
type KeyResult struct {
	Title         string   `json:"title"`
	BaselineValue float64  `json:"baseline_value"`
	TargetValue   float64  `json:"target_value"`
	Unit          string   `json:"unit"`
	CurrentValue  *float64 `json:"current_value,omitempty"`
	Actual        *float64 `json:"actual,omitempty"`
	OrderIndex    string   `json:"order_index,omitempty"`
}

// Objective is a qualitative goal with an ordered list of key results.
type Objective struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	OrderIndex  string      `json:"order_index,omitempty"`
	KeyResults  []KeyResult `json:"key_results"`
}

// CountKeyResults returns the number of key results across objectives.
func CountKeyResults(objectives []Objective) int {
	n := 0
	for _, o := range objectives {
		n += len(o.KeyResults)
	}
	return n
}

// OKRGeneration is a row of the okr_generations table.
type OKRGeneration struct {
	ID                 uuid.UUID   `json:"id"`
	UserID             string      `json:"user_id"`
	WebsiteURL         *string     `json:"website_url"`
	CompanyName        string      `json:"company_name"`
	PlanningPeriod     string      `json:"planning_period"`
	StrategicNarrative string      `json:"strategic_narrative"`
	OKRs               []Objective `json:"okrs"`
	IsDraft            bool        `json:"is_draft"`
	CreatedAt          time.Time   `json:"created_at"`
}
