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

// NoteRepository provides database access for coaching notes.
type NoteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository creates a new instance of NoteRepository.
func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create stores a note or a reply.
func (r *NoteRepository) Create(ctx context.Context, note *models.StudentNote) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO student_notes (id, student_id, author_id, note_type, content, visible_to_student, parent_note_id, is_reply, created_at) VALUES (:id, :student_id, :author_id, :note_type, :content, :visible_to_student, :parent_note_id, :is_reply, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, note); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// FindByID returns a note by identifier.
func (r *NoteRepository) FindByID(ctx context.Context, id string) (*models.StudentNote, error) {
	const query = `SELECT id, student_id, author_id, note_type, content, visible_to_student, parent_note_id, is_reply, created_at FROM student_notes WHERE id = $1 LIMIT 1`
	var note models.StudentNote
	if err := r.db.GetContext(ctx, &note, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find note: %w", err)
	}
	return &note, nil
}

// ListByStudent returns the student's notes newest first, with author names.
// When visibleOnly is set, only notes shared with the student are returned.
func (r *NoteRepository) ListByStudent(ctx context.Context, studentID string, visibleOnly bool) ([]models.StudentNote, error) {
	query := `SELECT n.id, n.student_id, n.author_id, n.note_type, n.content, n.visible_to_student, n.parent_note_id, n.is_reply, n.created_at, u.full_name AS author_name
		FROM student_notes n
		JOIN users u ON u.id = n.author_id
		WHERE n.student_id = $1`
	if visibleOnly {
		query += ` AND n.visible_to_student = TRUE`
	}
	query += ` ORDER BY n.created_at DESC`

	var notes []models.StudentNote
	if err := r.db.SelectContext(ctx, &notes, query, studentID); err != nil {
		if isUndefinedTable(err) {
			return []models.StudentNote{}, nil
		}
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Delete removes a note authored by the given user.
func (r *NoteRepository) Delete(ctx context.Context, id, authorID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM student_notes WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("count deleted notes: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
