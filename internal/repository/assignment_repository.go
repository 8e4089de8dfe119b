package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/narengee/c4c-api/internal/models"
)

// AssignmentRepository provides database access for coach-student assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create stores an assignment, reactivating a prior inactive one if present.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.CoachStudentAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now().UTC()
	}
	assignment.IsActive = true

	const query = `INSERT INTO coach_student_assignments (id, coach_id, student_id, assigned_at, is_active) VALUES (:id, :coach_id, :student_id, :assigned_at, :is_active)
		ON CONFLICT (coach_id, student_id) DO UPDATE SET is_active = TRUE, assigned_at = EXCLUDED.assigned_at`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Deactivate ends an assignment without deleting its history.
func (r *AssignmentRepository) Deactivate(ctx context.Context, coachID, studentID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE coach_student_assignments SET is_active = FALSE WHERE coach_id = $1 AND student_id = $2 AND is_active = TRUE`, coachID, studentID)
	if err != nil {
		return fmt.Errorf("deactivate assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("count deactivated assignments: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IsAssigned reports whether the coach actively advises the student.
func (r *AssignmentRepository) IsAssigned(ctx context.Context, coachID, studentID string) (bool, error) {
	var count int
	const query = `SELECT COUNT(*) FROM coach_student_assignments WHERE coach_id = $1 AND student_id = $2 AND is_active = TRUE`
	if err := r.db.GetContext(ctx, &count, query, coachID, studentID); err != nil {
		return false, fmt.Errorf("check assignment: %w", err)
	}
	return count > 0, nil
}

// AssignedStudentRow joins an assignment with the student's account fields.
type AssignedStudentRow struct {
	StudentID  string    `db:"student_id"`
	FullName   string    `db:"full_name"`
	Email      string    `db:"email"`
	AssignedAt time.Time `db:"assigned_at"`
}

// ListStudents returns active students assigned to the coach.
func (r *AssignmentRepository) ListStudents(ctx context.Context, coachID string) ([]AssignedStudentRow, error) {
	const query = `SELECT a.student_id, u.full_name, u.email, a.assigned_at
		FROM coach_student_assignments a
		JOIN users u ON u.id = a.student_id
		WHERE a.coach_id = $1 AND a.is_active = TRUE AND u.active = TRUE
		ORDER BY u.full_name ASC`
	var rows []AssignedStudentRow
	if err := r.db.SelectContext(ctx, &rows, query, coachID); err != nil {
		if isUndefinedTable(err) {
			return []AssignedStudentRow{}, nil
		}
		return nil, fmt.Errorf("list assigned students: %w", err)
	}
	return rows, nil
}

// CountActive returns the number of active assignments platform-wide.
func (r *AssignmentRepository) CountActive(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM coach_student_assignments WHERE is_active = TRUE`); err != nil {
		if isUndefinedTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count active assignments: %w", err)
	}
	return total, nil
}
