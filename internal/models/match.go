package models

import "time"

// Fit category tokens. Any other value is rejected before persistence.
const (
	FitSafety = "Safety"
	FitTarget = "Target"
	FitReach  = "Reach"
)

// ValidFitCategory reports whether the token is one of the three allowed values.
func ValidFitCategory(fit string) bool {
	return fit == FitSafety || fit == FitTarget || fit == FitReach
}

// CollegeMatch is one AI- or dream-sourced recommendation row.
type CollegeMatch struct {
	ID              string     `db:"id" json:"id"`
	StudentID       string     `db:"student_id" json:"student_id"`
	CollegeName     string     `db:"college_name" json:"college_name"`
	MatchScore      float64    `db:"match_score" json:"match_score"`
	AdmissionChance float64    `db:"admission_chance" json:"admission_chance"`
	FitCategory     string     `db:"fit_category" json:"fit_category"`
	Justification   string     `db:"justification" json:"justification"`
	MatchReasons    StringList `db:"match_reasons" json:"match_reasons"`
	Country         string     `db:"country" json:"country"`
	City            string     `db:"city" json:"city"`
	EstimatedCost   string     `db:"estimated_cost" json:"estimated_cost"`
	AcceptanceRate  *float64   `db:"acceptance_rate" json:"acceptance_rate,omitempty"`
	Website         string     `db:"website" json:"website"`
	IsDreamCollege  bool       `db:"is_dream_college" json:"is_dream_college"`
	GeneratedAt     time.Time  `db:"generated_at" json:"generated_at"`
}

// MatchSet is the combined result of a recommendation run.
type MatchSet struct {
	Matches    []CollegeMatch `json:"matches"`
	AICount    int            `json:"ai_count"`
	DreamCount int            `json:"dream_count"`
}

// AIInvocationLog records one call to the generative model for observability.
type AIInvocationLog struct {
	ID               string    `db:"id" json:"id"`
	StudentID        *string   `db:"student_id" json:"student_id,omitempty"`
	Operation        string    `db:"operation" json:"operation"`
	PromptText       string    `db:"prompt_text" json:"prompt_text"`
	ResponseText     string    `db:"response_text" json:"response_text"`
	ModelUsed        string    `db:"model_used" json:"model_used"`
	ProcessingTimeMS int64     `db:"processing_time_ms" json:"processing_time_ms"`
	Success          bool      `db:"success" json:"success"`
	ErrorMessage     string    `db:"error_message" json:"error_message"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// AI invocation operation labels.
const (
	AIOperationRecommendations = "recommendations"
	AIOperationCollegeDetail   = "college_detail"
	AIOperationCoachChat       = "coach_chat"
)
