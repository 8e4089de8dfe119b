package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Application pipeline statuses, in Kanban column order.
const (
	StatusConsidering     = "Considering"
	StatusPlanningToApply = "Planning to Apply"
	StatusApplied         = "Applied"
	StatusInterviewing    = "Interviewing"
	StatusAccepted        = "Accepted"
	StatusRejected        = "Rejected"
	StatusEnrolled        = "Enrolled"
)

// ApplicationStatuses lists every valid pipeline status.
var ApplicationStatuses = []string{
	StatusConsidering,
	StatusPlanningToApply,
	StatusApplied,
	StatusInterviewing,
	StatusAccepted,
	StatusRejected,
	StatusEnrolled,
}

// ValidApplicationStatus reports whether s is a known pipeline status.
func ValidApplicationStatus(s string) bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// List item sources.
const (
	SourceManual          = "Manually Added"
	SourceRecommendations = "AI Recommendations"
)

// Task is a single checklist entry attached to a list item.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TaskList is a JSONB-backed slice of tasks.
type TaskList []Task

func (t TaskList) Value() (driver.Value, error) {
	if t == nil {
		return json.Marshal([]Task{})
	}
	return json.Marshal(t)
}

func (t *TaskList) Scan(src interface{}) error {
	return scanJSON(src, t)
}

// CollegeListItem is one college on a student's working list.
type CollegeListItem struct {
	ID                  string     `db:"id" json:"id"`
	StudentID           string     `db:"student_id" json:"student_id"`
	CollegeName         string     `db:"college_name" json:"college_name"`
	CollegeLocation     string     `db:"college_location" json:"college_location"`
	CollegeType         string     `db:"college_type" json:"college_type"`
	TuitionRange        string     `db:"tuition_range" json:"tuition_range"`
	AcceptanceRate      *float64   `db:"acceptance_rate" json:"acceptance_rate,omitempty"`
	Source              string     `db:"source" json:"source"`
	Notes               string     `db:"notes" json:"notes"`
	Priority            int        `db:"priority" json:"priority"`
	ApplicationStatus   string     `db:"application_status" json:"application_status"`
	ApplicationDeadline *time.Time `db:"application_deadline" json:"application_deadline,omitempty"`
	Tasks               TaskList   `db:"tasks" json:"tasks"`
	IsFavorite          bool       `db:"is_favorite" json:"is_favorite"`
	StageOrder          int        `db:"stage_order" json:"stage_order"`
	AddedAt             time.Time  `db:"added_at" json:"added_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// AddCollegeRequest adds a college to the student's list.
type AddCollegeRequest struct {
	CollegeName         string     `json:"college_name" validate:"required"`
	CollegeLocation     string     `json:"college_location"`
	CollegeType         string     `json:"college_type"`
	TuitionRange        string     `json:"tuition_range"`
	AcceptanceRate      *float64   `json:"acceptance_rate"`
	Source              string     `json:"source"`
	Notes               string     `json:"notes"`
	Priority            int        `json:"priority" validate:"min=0,max=3"`
	ApplicationDeadline *time.Time `json:"application_deadline"`
}

// UpdateCollegeRequest updates mutable fields on a list item. Nil means unchanged.
type UpdateCollegeRequest struct {
	Notes               *string    `json:"notes"`
	Priority            *int       `json:"priority" validate:"omitempty,min=0,max=3"`
	ApplicationStatus   *string    `json:"application_status"`
	ApplicationDeadline *time.Time `json:"application_deadline"`
	TuitionRange        *string    `json:"tuition_range"`
	CollegeLocation     *string    `json:"college_location"`
	CollegeType         *string    `json:"college_type"`
}

// MoveCollegeRequest moves an item to a new Kanban column and position.
type MoveCollegeRequest struct {
	ApplicationStatus string `json:"application_status" validate:"required"`
	StageOrder        int    `json:"stage_order" validate:"min=0"`
}

// UpdateTasksRequest replaces the item's task checklist.
type UpdateTasksRequest struct {
	Tasks []Task `json:"tasks" validate:"required"`
}

// CollegeListStats summarizes a student's list for the dashboard.
type CollegeListStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[string]int `json:"by_priority"`
	BySource   map[string]int `json:"by_source"`
	Favorites  int            `json:"favorites"`
}

// PriorityLabel maps a numeric priority to its display label.
func PriorityLabel(p int) string {
	switch p {
	case 1:
		return "High"
	case 2:
		return "Medium"
	case 3:
		return "Low"
	default:
		return "Not Set"
	}
}
