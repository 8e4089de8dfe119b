package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/narengee/c4c-api/internal/models"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
)

type noteRepository interface {
	Create(ctx context.Context, note *models.StudentNote) error
	FindByID(ctx context.Context, id string) (*models.StudentNote, error)
	ListByStudent(ctx context.Context, studentID string, visibleOnly bool) ([]models.StudentNote, error)
	Delete(ctx context.Context, id, authorID string) error
}

type noteAssignmentRepository interface {
	IsAssigned(ctx context.Context, coachID, studentID string) (bool, error)
}

// NoteService manages coaching notes and their replies.
type NoteService struct {
	repo        noteRepository
	assignments noteAssignmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewNoteService constructs the note service.
func NewNoteService(repo noteRepository, assignments noteAssignmentRepository, validate *validator.Validate, logger *zap.Logger) *NoteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{repo: repo, assignments: assignments, validator: validate, logger: logger}
}

// Create adds a note. Coaches must be assigned to the student; students may
// only reply to notes that were shared with them.
func (s *NoteService) Create(ctx context.Context, authorID string, authorRole models.UserRole, studentID string, req models.CreateNoteRequest) (*models.StudentNote, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}

	switch authorRole {
	case models.RoleCoach:
		assigned, err := s.assignments.IsAssigned(ctx, authorID, studentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
		}
		if !assigned {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not assigned to you")
		}
	case models.RoleStudent:
		if authorID != studentID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "students can only write on their own thread")
		}
		if req.ParentNoteID == nil {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "students can only reply to shared notes")
		}
	case models.RoleSuperAdmin:
		// Admins may write anywhere.
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot write notes")
	}

	note := &models.StudentNote{
		StudentID:        studentID,
		AuthorID:         authorID,
		NoteType:         req.NoteType,
		Content:          req.Content,
		VisibleToStudent: req.VisibleToStudent,
	}

	if req.ParentNoteID != nil {
		parent, err := s.repo.FindByID(ctx, *req.ParentNoteID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "parent note not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent note")
		}
		if parent.StudentID != studentID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "parent note belongs to a different student")
		}
		if authorRole == models.RoleStudent && !parent.VisibleToStudent {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot reply to a private note")
		}
		note.ParentNoteID = req.ParentNoteID
		note.IsReply = true
		// Replies inherit the thread's visibility so the conversation stays whole.
		if authorRole == models.RoleStudent {
			note.VisibleToStudent = true
		}
	}

	if err := s.repo.Create(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create note")
	}
	return note, nil
}

// List returns the student's notes. Coaches see everything on assigned
// students; students see only what was shared with them.
func (s *NoteService) List(ctx context.Context, requesterID string, requesterRole models.UserRole, studentID string) ([]models.StudentNote, error) {
	visibleOnly := false
	switch requesterRole {
	case models.RoleCoach:
		assigned, err := s.assignments.IsAssigned(ctx, requesterID, studentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
		}
		if !assigned {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not assigned to you")
		}
	case models.RoleStudent:
		if requesterID != studentID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot read another student's notes")
		}
		visibleOnly = true
	case models.RoleSuperAdmin:
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot read notes")
	}

	notes, err := s.repo.ListByStudent(ctx, studentID, visibleOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notes")
	}
	return notes, nil
}

// Delete removes a note the author owns.
func (s *NoteService) Delete(ctx context.Context, authorID, noteID string) error {
	if err := s.repo.Delete(ctx, noteID, authorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "note not found or not yours")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete note")
	}
	return nil
}
