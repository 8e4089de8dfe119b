package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/narengee/c4c-api/internal/models"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
)

type mockNoteRepo struct {
	notes           map[string]*models.StudentNote
	lastVisibleOnly bool
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: make(map[string]*models.StudentNote)}
}

func (m *mockNoteRepo) Create(ctx context.Context, note *models.StudentNote) error {
	if note.ID == "" {
		note.ID = "generated"
	}
	clone := *note
	m.notes[note.ID] = &clone
	return nil
}

func (m *mockNoteRepo) FindByID(ctx context.Context, id string) (*models.StudentNote, error) {
	if note, ok := m.notes[id]; ok {
		clone := *note
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockNoteRepo) ListByStudent(ctx context.Context, studentID string, visibleOnly bool) ([]models.StudentNote, error) {
	m.lastVisibleOnly = visibleOnly
	out := make([]models.StudentNote, 0)
	for _, note := range m.notes {
		if note.StudentID != studentID {
			continue
		}
		if visibleOnly && !note.VisibleToStudent {
			continue
		}
		out = append(out, *note)
	}
	return out, nil
}

func (m *mockNoteRepo) Delete(ctx context.Context, id, authorID string) error {
	note, ok := m.notes[id]
	if !ok || note.AuthorID != authorID {
		return sql.ErrNoRows
	}
	delete(m.notes, id)
	return nil
}

type mockNoteAssignments struct {
	assigned map[string]bool
}

func (m *mockNoteAssignments) IsAssigned(ctx context.Context, coachID, studentID string) (bool, error) {
	return m.assigned[coachID+"/"+studentID], nil
}

func TestNoteCreateRequiresAssignment(t *testing.T) {
	repo := newMockNoteRepo()
	svc := NewNoteService(repo, &mockNoteAssignments{assigned: map[string]bool{}}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), "coach-1", models.RoleCoach, "s1", models.CreateNoteRequest{
		NoteType: models.NoteGeneral,
		Content:  "First meeting went well",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.notes)
}

func TestNoteCreateByAssignedCoach(t *testing.T) {
	repo := newMockNoteRepo()
	assignments := &mockNoteAssignments{assigned: map[string]bool{"coach-1/s1": true}}
	svc := NewNoteService(repo, assignments, nil, zap.NewNop())

	note, err := svc.Create(context.Background(), "coach-1", models.RoleCoach, "s1", models.CreateNoteRequest{
		NoteType:         models.NoteMeeting,
		Content:          "Discussed essay drafts",
		VisibleToStudent: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "coach-1", note.AuthorID)
	assert.False(t, note.IsReply)
	assert.True(t, note.VisibleToStudent)
}

func TestStudentCanOnlyReplyToSharedNotes(t *testing.T) {
	repo := newMockNoteRepo()
	repo.notes["7c9e6679-7425-40de-944b-e07fc1f90ae1"] = &models.StudentNote{ID: "7c9e6679-7425-40de-944b-e07fc1f90ae1", StudentID: "s1", AuthorID: "coach-1", VisibleToStudent: false}
	repo.notes["7c9e6679-7425-40de-944b-e07fc1f90ae2"] = &models.StudentNote{ID: "7c9e6679-7425-40de-944b-e07fc1f90ae2", StudentID: "s1", AuthorID: "coach-1", VisibleToStudent: true}
	svc := NewNoteService(repo, &mockNoteAssignments{}, nil, zap.NewNop())

	// A top-level student note is rejected.
	_, err := svc.Create(context.Background(), "s1", models.RoleStudent, "s1", models.CreateNoteRequest{
		NoteType: models.NoteGeneral,
		Content:  "hello",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// Replying to a private note is rejected.
	private := "7c9e6679-7425-40de-944b-e07fc1f90ae1"
	_, err = svc.Create(context.Background(), "s1", models.RoleStudent, "s1", models.CreateNoteRequest{
		NoteType:     models.NoteGeneral,
		Content:      "hello",
		ParentNoteID: &private,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// Replying to a shared note works and stays visible.
	shared := "7c9e6679-7425-40de-944b-e07fc1f90ae2"
	note, err := svc.Create(context.Background(), "s1", models.RoleStudent, "s1", models.CreateNoteRequest{
		NoteType:     models.NoteGeneral,
		Content:      "thanks for the feedback",
		ParentNoteID: &shared,
	})
	require.NoError(t, err)
	assert.True(t, note.IsReply)
	assert.True(t, note.VisibleToStudent)
	require.NotNil(t, note.ParentNoteID)
	assert.Equal(t, "7c9e6679-7425-40de-944b-e07fc1f90ae2", *note.ParentNoteID)
}

func TestNoteReplyMustMatchStudent(t *testing.T) {
	repo := newMockNoteRepo()
	repo.notes["7c9e6679-7425-40de-944b-e07fc1f90ae1"] = &models.StudentNote{ID: "7c9e6679-7425-40de-944b-e07fc1f90ae1", StudentID: "other-student", AuthorID: "coach-1", VisibleToStudent: true}
	assignments := &mockNoteAssignments{assigned: map[string]bool{"coach-1/s1": true}}
	svc := NewNoteService(repo, assignments, nil, zap.NewNop())

	parent := "7c9e6679-7425-40de-944b-e07fc1f90ae1"
	_, err := svc.Create(context.Background(), "coach-1", models.RoleCoach, "s1", models.CreateNoteRequest{
		NoteType:     models.NoteFollowUp,
		Content:      "checking in",
		ParentNoteID: &parent,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestNoteListVisibility(t *testing.T) {
	repo := newMockNoteRepo()
	repo.notes["7c9e6679-7425-40de-944b-e07fc1f90ae1"] = &models.StudentNote{ID: "7c9e6679-7425-40de-944b-e07fc1f90ae1", StudentID: "s1", AuthorID: "coach-1", VisibleToStudent: false}
	repo.notes["7c9e6679-7425-40de-944b-e07fc1f90ae2"] = &models.StudentNote{ID: "7c9e6679-7425-40de-944b-e07fc1f90ae2", StudentID: "s1", AuthorID: "coach-1", VisibleToStudent: true}
	assignments := &mockNoteAssignments{assigned: map[string]bool{"coach-1/s1": true}}
	svc := NewNoteService(repo, assignments, nil, zap.NewNop())

	notes, err := svc.List(context.Background(), "coach-1", models.RoleCoach, "s1")
	require.NoError(t, err)
	assert.Len(t, notes, 2)
	assert.False(t, repo.lastVisibleOnly)

	notes, err = svc.List(context.Background(), "s1", models.RoleStudent, "s1")
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.True(t, repo.lastVisibleOnly)

	_, err = svc.List(context.Background(), "s2", models.RoleStudent, "s1")
	require.Error(t, err)
}

func TestNoteDeleteAuthorScoped(t *testing.T) {
	repo := newMockNoteRepo()
	repo.notes["7c9e6679-7425-40de-944b-e07fc1f90ae1"] = &models.StudentNote{ID: "7c9e6679-7425-40de-944b-e07fc1f90ae1", StudentID: "s1", AuthorID: "coach-1"}
	svc := NewNoteService(repo, &mockNoteAssignments{}, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "coach-2", "7c9e6679-7425-40de-944b-e07fc1f90ae1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), "coach-1", "7c9e6679-7425-40de-944b-e07fc1f90ae1"))
	assert.Empty(t, repo.notes)
}
