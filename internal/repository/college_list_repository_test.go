package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narengee/c4c-api/internal/models"
)

func TestListByStudentOrdering(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCollegeListRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "college_name", "college_location", "college_type", "tuition_range", "acceptance_rate", "source", "notes", "priority", "application_status", "application_deadline", "tasks", "is_favorite", "stage_order", "added_at", "updated_at"}).
		AddRow("i1", "s1", "Alpha University", "Boston, MA", "Private", "$50k-$60k", 0.12, models.SourceManual, "", 1, models.StatusConsidering, nil, []byte(`[]`), false, 0, now, now)
	mock.ExpectQuery("SELECT .+ FROM college_list_items WHERE student_id = .+ ORDER BY priority ASC, added_at DESC").
		WithArgs("s1").
		WillReturnRows(rows)

	items, err := repo.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Alpha University", items[0].CollegeName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDuplicateCollege(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCollegeListRepository(db)

	mock.ExpectExec("INSERT INTO college_list_items").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Insert(context.Background(), &models.CollegeListItem{
		StudentID:         "s1",
		CollegeName:       "Alpha University",
		Source:            models.SourceManual,
		ApplicationStatus: models.StatusConsidering,
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingItem(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCollegeListRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM college_list_items WHERE id = $1 AND student_id = $2")).
		WithArgs("missing", "s1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing", "s1")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusCountsMissingTable(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCollegeListRepository(db)

	mock.ExpectQuery("SELECT application_status AS key").
		WillReturnError(&pq.Error{Code: "42P01"})

	rows, err := repo.StatusCounts(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
