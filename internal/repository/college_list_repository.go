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

// CollegeListRepository provides database access for student college lists.
type CollegeListRepository struct {
	db *sqlx.DB
}

// NewCollegeListRepository creates a new instance of CollegeListRepository.
func NewCollegeListRepository(db *sqlx.DB) *CollegeListRepository {
	return &CollegeListRepository{db: db}
}

const listColumns = `id, student_id, college_name, college_location, college_type, tuition_range, acceptance_rate, source, notes, priority, application_status, application_deadline, tasks, is_favorite, stage_order, added_at, updated_at`

// ListByStudent returns the student's list ordered by priority then recency.
func (r *CollegeListRepository) ListByStudent(ctx context.Context, studentID string) ([]models.CollegeListItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM college_list_items WHERE student_id = $1 ORDER BY priority ASC, added_at DESC`, listColumns)
	var items []models.CollegeListItem
	if err := r.db.SelectContext(ctx, &items, query, studentID); err != nil {
		if isUndefinedTable(err) {
			return []models.CollegeListItem{}, nil
		}
		return nil, fmt.Errorf("list college list: %w", err)
	}
	return items, nil
}

// GetByIDAndStudent returns the item only when it belongs to the student.
func (r *CollegeListRepository) GetByIDAndStudent(ctx context.Context, id, studentID string) (*models.CollegeListItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM college_list_items WHERE id = $1 AND student_id = $2 LIMIT 1`, listColumns)
	var item models.CollegeListItem
	if err := r.db.GetContext(ctx, &item, query, id, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get college list item: %w", err)
	}
	return &item, nil
}

// Insert adds an item to the student's list.
func (r *CollegeListRepository) Insert(ctx context.Context, item *models.CollegeListItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.AddedAt.IsZero() {
		item.AddedAt = now
	}
	item.UpdatedAt = now

	const query = `INSERT INTO college_list_items (id, student_id, college_name, college_location, college_type, tuition_range, acceptance_rate, source, notes, priority, application_status, application_deadline, tasks, is_favorite, stage_order, added_at, updated_at) VALUES (:id, :student_id, :college_name, :college_location, :college_type, :tuition_range, :acceptance_rate, :source, :notes, :priority, :application_status, :application_deadline, :tasks, :is_favorite, :stage_order, :added_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("insert college list item: %w", err)
	}
	return nil
}

// Update persists mutable fields of an item.
func (r *CollegeListRepository) Update(ctx context.Context, item *models.CollegeListItem) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE college_list_items SET college_location = :college_location, college_type = :college_type, tuition_range = :tuition_range, notes = :notes, priority = :priority, application_status = :application_status, application_deadline = :application_deadline, updated_at = :updated_at WHERE id = :id AND student_id = :student_id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("update college list item: %w", err)
	}
	return nil
}

// UpdateTasks replaces an item's task checklist.
func (r *CollegeListRepository) UpdateTasks(ctx context.Context, id, studentID string, tasks models.TaskList) error {
	const query = `UPDATE college_list_items SET tasks = $3, updated_at = $4 WHERE id = $1 AND student_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, studentID, tasks, time.Now().UTC()); err != nil {
		return fmt.Errorf("update tasks: %w", err)
	}
	return nil
}

// UpdateStatusOrder moves an item to a pipeline column and position.
func (r *CollegeListRepository) UpdateStatusOrder(ctx context.Context, id, studentID, status string, stageOrder int) error {
	const query = `UPDATE college_list_items SET application_status = $3, stage_order = $4, updated_at = $5 WHERE id = $1 AND student_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, studentID, status, stageOrder, time.Now().UTC()); err != nil {
		return fmt.Errorf("update status order: %w", err)
	}
	return nil
}

// SetFavorite stores the favorite flag for an item.
func (r *CollegeListRepository) SetFavorite(ctx context.Context, id, studentID string, favorite bool) error {
	const query = `UPDATE college_list_items SET is_favorite = $3, updated_at = $4 WHERE id = $1 AND student_id = $2`
	if _, err := r.db.ExecContext(ctx, query, id, studentID, favorite, time.Now().UTC()); err != nil {
		return fmt.Errorf("set favorite: %w", err)
	}
	return nil
}

// Delete removes an item from the student's list.
func (r *CollegeListRepository) Delete(ctx context.Context, id, studentID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM college_list_items WHERE id = $1 AND student_id = $2`, id, studentID)
	if err != nil {
		return fmt.Errorf("delete college list item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("count deleted items: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// StatusRow pairs one grouping key with its item count.
type StatusRow struct {
	Key   string `db:"key"`
	Count int    `db:"count"`
}

// StatusCounts groups the student's items by application status.
func (r *CollegeListRepository) StatusCounts(ctx context.Context, studentID string) ([]StatusRow, error) {
	const query = `SELECT application_status AS key, COUNT(*) AS count FROM college_list_items WHERE student_id = $1 GROUP BY application_status`
	var rows []StatusRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		if isUndefinedTable(err) {
			return []StatusRow{}, nil
		}
		return nil, fmt.Errorf("status counts: %w", err)
	}
	return rows, nil
}

// PriorityCounts groups the student's items by numeric priority.
func (r *CollegeListRepository) PriorityCounts(ctx context.Context, studentID string) ([]StatusRow, error) {
	const query = `SELECT priority::text AS key, COUNT(*) AS count FROM college_list_items WHERE student_id = $1 GROUP BY priority`
	var rows []StatusRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		if isUndefinedTable(err) {
			return []StatusRow{}, nil
		}
		return nil, fmt.Errorf("priority counts: %w", err)
	}
	return rows, nil
}

// SourceCounts groups the student's items by source.
func (r *CollegeListRepository) SourceCounts(ctx context.Context, studentID string) ([]StatusRow, error) {
	const query = `SELECT source AS key, COUNT(*) AS count FROM college_list_items WHERE student_id = $1 GROUP BY source`
	var rows []StatusRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		if isUndefinedTable(err) {
			return []StatusRow{}, nil
		}
		return nil, fmt.Errorf("source counts: %w", err)
	}
	return rows, nil
}

// CountFavorites returns how many items the student marked favorite.
func (r *CollegeListRepository) CountFavorites(ctx context.Context, studentID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM college_list_items WHERE student_id = $1 AND is_favorite = TRUE`, studentID); err != nil {
		if isUndefinedTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count favorites: %w", err)
	}
	return total, nil
}

// CountByStudent returns the student's total list size.
func (r *CollegeListRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM college_list_items WHERE student_id = $1`, studentID); err != nil {
		if isUndefinedTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count college list: %w", err)
	}
	return total, nil
}

// CountAll returns the platform-wide list item count.
func (r *CollegeListRepository) CountAll(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM college_list_items`); err != nil {
		if isUndefinedTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count all college list items: %w", err)
	}
	return total, nil
}
