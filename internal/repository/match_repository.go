package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/narengee/c4c-api/internal/models"
)

// pqCode extracts the Postgres error code, or "" for non-pq errors.
func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// isUndefinedTable reports whether the error is a missing-relation error.
// Fresh environments may not have run migrations yet; reads treat this as empty.
func isUndefinedTable(err error) bool {
	return pqCode(err) == "42P01"
}

// IsUniqueViolation reports whether the error is a unique-constraint violation.
func IsUniqueViolation(err error) bool {
	return pqCode(err) == "23505"
}

// IsNotNullViolation reports whether the error is a not-null constraint violation.
func IsNotNullViolation(err error) bool {
	return pqCode(err) == "23502"
}

// IsForeignKeyViolation reports whether the error is a foreign-key violation.
func IsForeignKeyViolation(err error) bool {
	return pqCode(err) == "23503"
}

// IsInsufficientPrivilege reports whether the database rejected the statement
// for lack of privileges.
func IsInsufficientPrivilege(err error) bool {
	return pqCode(err) == "42501"
}

// MatchRepository provides database access for college match rows.
type MatchRepository struct {
	db *sqlx.DB
}

// NewMatchRepository creates a new instance of MatchRepository.
func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

const matchColumns = `id, student_id, college_name, match_score, admission_chance, fit_category, justification, match_reasons, country, city, estimated_cost, acceptance_rate, website, is_dream_college, generated_at`

// ListByStudent returns every match for a student, best score first.
func (r *MatchRepository) ListByStudent(ctx context.Context, studentID string) ([]models.CollegeMatch, error) {
	query := fmt.Sprintf(`SELECT %s FROM college_matches WHERE student_id = $1 ORDER BY match_score DESC, college_name ASC`, matchColumns)
	var matches []models.CollegeMatch
	if err := r.db.SelectContext(ctx, &matches, query, studentID); err != nil {
		if isUndefinedTable(err) {
			return []models.CollegeMatch{}, nil
		}
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}

// ListDream returns the student's dream-college rows.
func (r *MatchRepository) ListDream(ctx context.Context, studentID string) ([]models.CollegeMatch, error) {
	query := fmt.Sprintf(`SELECT %s FROM college_matches WHERE student_id = $1 AND is_dream_college = TRUE ORDER BY college_name ASC`, matchColumns)
	var matches []models.CollegeMatch
	if err := r.db.SelectContext(ctx, &matches, query, studentID); err != nil {
		if isUndefinedTable(err) {
			return []models.CollegeMatch{}, nil
		}
		return nil, fmt.Errorf("list dream matches: %w", err)
	}
	return matches, nil
}

// Insert stores a single match row.
func (r *MatchRepository) Insert(ctx context.Context, match *models.CollegeMatch) error {
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	if match.GeneratedAt.IsZero() {
		match.GeneratedAt = time.Now().UTC()
	}
	const query = `INSERT INTO college_matches (id, student_id, college_name, match_score, admission_chance, fit_category, justification, match_reasons, country, city, estimated_cost, acceptance_rate, website, is_dream_college, generated_at) VALUES (:id, :student_id, :college_name, :match_score, :admission_chance, :fit_category, :justification, :match_reasons, :country, :city, :estimated_cost, :acceptance_rate, :website, :is_dream_college, :generated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, match); err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

// ReplaceAIGenerated atomically swaps the student's AI-generated rows for the
// given set, leaving dream-college rows untouched.
func (r *MatchRepository) ReplaceAIGenerated(ctx context.Context, studentID string, matches []models.CollegeMatch) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace matches: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM college_matches WHERE student_id = $1 AND is_dream_college = FALSE`, studentID); err != nil {
		return fmt.Errorf("clear generated matches: %w", err)
	}

	const insertQuery = `INSERT INTO college_matches (id, student_id, college_name, match_score, admission_chance, fit_category, justification, match_reasons, country, city, estimated_cost, acceptance_rate, website, is_dream_college, generated_at) VALUES (:id, :student_id, :college_name, :match_score, :admission_chance, :fit_category, :justification, :match_reasons, :country, :city, :estimated_cost, :acceptance_rate, :website, :is_dream_college, :generated_at)`
	now := time.Now().UTC()
	for i := range matches {
		if matches[i].ID == "" {
			matches[i].ID = uuid.NewString()
		}
		matches[i].StudentID = studentID
		if matches[i].GeneratedAt.IsZero() {
			matches[i].GeneratedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, insertQuery, matches[i]); err != nil {
			return fmt.Errorf("insert generated match: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace matches: %w", err)
	}
	return nil
}

// DeleteAIGenerated removes the student's AI-generated rows.
func (r *MatchRepository) DeleteAIGenerated(ctx context.Context, studentID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM college_matches WHERE student_id = $1 AND is_dream_college = FALSE`, studentID)
	if err != nil {
		return 0, fmt.Errorf("delete generated matches: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted matches: %w", err)
	}
	return affected, nil
}

// DeleteDreamByNames removes dream rows whose college name is in the given set.
func (r *MatchRepository) DeleteDreamByNames(ctx context.Context, studentID string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM college_matches WHERE student_id = ? AND is_dream_college = TRUE AND college_name IN (?)`, studentID, names)
	if err != nil {
		return fmt.Errorf("build dream delete: %w", err)
	}
	query = r.db.Rebind(query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete dream matches: %w", err)
	}
	return nil
}

// CountByStudent returns the student's total match count.
func (r *MatchRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM college_matches WHERE student_id = $1`, studentID); err != nil {
		if isUndefinedTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return total, nil
}

// CountAll returns the platform-wide match count.
func (r *MatchRepository) CountAll(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM college_matches`); err != nil {
		if isUndefinedTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count all matches: %w", err)
	}
	return total, nil
}

// CreateInvocationLog stores a model-call log entry.
func (r *MatchRepository) CreateInvocationLog(ctx context.Context, log *models.AIInvocationLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO gemini_logs (id, student_id, operation, prompt_text, response_text, model_used, processing_time_ms, success, error_message, created_at) VALUES (:id, :student_id, :operation, :prompt_text, :response_text, :model_used, :processing_time_ms, :success, :error_message, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create invocation log: %w", err)
	}
	return nil
}
