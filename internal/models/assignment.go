package models

import "time"

// CoachStudentAssignment links a coach to a student they advise.
type CoachStudentAssignment struct {
	ID         string    `db:"id" json:"id"`
	CoachID    string    `db:"coach_id" json:"coach_id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
	IsActive   bool      `db:"is_active" json:"is_active"`
}

// AssignStudentRequest assigns one student to a coach.
type AssignStudentRequest struct {
	CoachID   string `json:"coach_id" validate:"required,uuid"`
	StudentID string `json:"student_id" validate:"required,uuid"`
}

// BulkAssignRequest assigns several students to a coach at once.
type BulkAssignRequest struct {
	CoachID    string   `json:"coach_id" validate:"required,uuid"`
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,uuid"`
}

// SystemMetrics is a point-in-time snapshot of runtime counters exposed alongside
// the platform stats for admins.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	ModelCalls               uint64    `json:"model_calls"`
	ModelCallFailures        uint64    `json:"model_call_failures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// PlatformStats is the admin dashboard snapshot.
type PlatformStats struct {
	TotalStudents     int `json:"total_students"`
	TotalCoaches      int `json:"total_coaches"`
	TotalParents      int `json:"total_parents"`
	TotalMatches      int `json:"total_matches"`
	TotalListItems    int `json:"total_list_items"`
	ActiveAssignments int `json:"active_assignments"`
}
