package models

import "time"

// ApplicationProgress counts a student's list items per pipeline stage.
type ApplicationProgress struct {
	Considering     int `json:"considering"`
	PlanningToApply int `json:"planning_to_apply"`
	Applied         int `json:"applied"`
	Interviewing    int `json:"interviewing"`
	Accepted        int `json:"accepted"`
	Rejected        int `json:"rejected"`
	Enrolled        int `json:"enrolled"`
}

// Total returns the sum over all stages.
func (p ApplicationProgress) Total() int {
	return p.Considering + p.PlanningToApply + p.Applied +
		p.Interviewing + p.Accepted + p.Rejected + p.Enrolled
}

// StudentSummary is one row of a coach's portfolio.
type StudentSummary struct {
	StudentID           string              `json:"student_id"`
	FullName            string              `json:"full_name"`
	Email               string              `json:"email"`
	GradeLevel          string              `json:"grade_level"`
	ProfileCompletion   int                 `json:"profile_completion"`
	RecommendationCount int                 `json:"recommendation_count"`
	CollegeListCount    int                 `json:"college_list_count"`
	ApplicationProgress ApplicationProgress `json:"application_progress"`
	LastActivity        *time.Time          `json:"last_activity,omitempty"`
	NeedsAttention      bool                `json:"needs_attention"`
	AssignedAt          time.Time           `json:"assigned_at"`
}

// PortfolioSummary aggregates the coach's whole caseload.
type PortfolioSummary struct {
	TotalStudents            int     `json:"total_students"`
	AverageProfileCompletion float64 `json:"average_profile_completion"`
	TotalRecommendations     int     `json:"total_recommendations"`
	TotalCollegesInLists     int     `json:"total_colleges_in_lists"`
	TotalApplications        int     `json:"total_applications"`
	StudentsNeedingAttention int     `json:"students_needing_attention"`
}

// Portfolio is the cached coach dashboard payload.
type Portfolio struct {
	Summary  PortfolioSummary `json:"summary"`
	Students []StudentSummary `json:"students"`
}

// StudentDetail is the per-student drill-down view for a coach.
type StudentDetail struct {
	Student           UserInfo          `json:"student"`
	Profile           *StudentProfile   `json:"profile,omitempty"`
	ProfileCompletion int               `json:"profile_completion"`
	Matches           []CollegeMatch    `json:"matches"`
	CollegeList       []CollegeListItem `json:"college_list"`
	Notes             []StudentNote     `json:"notes"`
}

// Chat roles.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of a coach chat conversation.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest is a coach chat turn with prior history.
type ChatRequest struct {
	Message string        `json:"message" validate:"required"`
	History []ChatMessage `json:"history" validate:"dive"`
}

// ChatResponse is the assistant's reply plus routing metadata.
type ChatResponse struct {
	Reply           string `json:"reply"`
	Mode            string `json:"mode"`
	ResolvedStudent string `json:"resolved_student,omitempty"`
}

// Chat answer modes.
const (
	ChatModeFactual      = "factual"
	ChatModeNotesSummary = "notes_summary"
	ChatModeCoaching     = "coaching"
)
