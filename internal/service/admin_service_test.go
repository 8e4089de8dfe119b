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

type mockAdminAssignments struct {
	created []models.CoachStudentAssignment
	active  int
}

func (m *mockAdminAssignments) Create(ctx context.Context, assignment *models.CoachStudentAssignment) error {
	if assignment.ID == "" {
		assignment.ID = "a1"
	}
	m.created = append(m.created, *assignment)
	m.active++
	return nil
}

func (m *mockAdminAssignments) Deactivate(ctx context.Context, coachID, studentID string) error {
	for _, a := range m.created {
		if a.CoachID == coachID && a.StudentID == studentID {
			m.active--
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockAdminAssignments) CountActive(ctx context.Context) (int, error) {
	return m.active, nil
}

type mockAdminUsers struct {
	users   map[string]*models.User
	byRole  map[string]int
	listErr error
}

func (m *mockAdminUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAdminUsers) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	out := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, *user)
	}
	return out, len(out), nil
}

func (m *mockAdminUsers) CountByRole(ctx context.Context, role string) (int, error) {
	return m.byRole[role], nil
}

type mockCounter struct{ count int }

func (m *mockCounter) CountAll(ctx context.Context) (int, error) { return m.count, nil }

type mockInvalidator struct{ coaches []string }

func (m *mockInvalidator) InvalidatePortfolio(ctx context.Context, coachID string) {
	m.coaches = append(m.coaches, coachID)
}

const (
	testCoachID    = "2c96a8b2-98a1-4e13-bcb5-7a7f7b3c0001"
	testStudentID  = "2c96a8b2-98a1-4e13-bcb5-7a7f7b3c0002"
	testStudent2ID = "2c96a8b2-98a1-4e13-bcb5-7a7f7b3c0003"
)

func adminFixture() (*AdminService, *mockAdminAssignments, *mockInvalidator) {
	assignments := &mockAdminAssignments{}
	users := &mockAdminUsers{users: map[string]*models.User{
		testCoachID:    {ID: testCoachID, Role: models.RoleCoach, Active: true},
		testStudentID:  {ID: testStudentID, Role: models.RoleStudent, Active: true},
		testStudent2ID: {ID: testStudent2ID, Role: models.RoleStudent, Active: false},
	}}
	invalidator := &mockInvalidator{}
	svc := NewAdminService(assignments, users, &mockCounter{}, &mockCounter{}, invalidator, nil, zap.NewNop())
	return svc, assignments, invalidator
}

func TestAssignStudentToCoach(t *testing.T) {
	svc, assignments, invalidator := adminFixture()

	assignment, err := svc.Assign(context.Background(), models.AssignStudentRequest{CoachID: testCoachID, StudentID: testStudentID})
	require.NoError(t, err)
	assert.NotEmpty(t, assignment.ID)
	assert.Len(t, assignments.created, 1)
	assert.Equal(t, []string{testCoachID}, invalidator.coaches)
}

func TestAssignRejectsWrongRoles(t *testing.T) {
	svc, assignments, _ := adminFixture()

	// Student in the coach slot.
	_, err := svc.Assign(context.Background(), models.AssignStudentRequest{CoachID: testStudentID, StudentID: testStudentID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	// Inactive student.
	_, err = svc.Assign(context.Background(), models.AssignStudentRequest{CoachID: testCoachID, StudentID: testStudent2ID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	assert.Empty(t, assignments.created)
}

func TestAssignUnknownUser(t *testing.T) {
	svc, _, _ := adminFixture()

	_, err := svc.Assign(context.Background(), models.AssignStudentRequest{
		CoachID:   testCoachID,
		StudentID: "2c96a8b2-98a1-4e13-bcb5-7a7f7b3c0099",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBulkAssignReportsPerStudentFailures(t *testing.T) {
	svc, assignments, _ := adminFixture()

	created, failed, err := svc.BulkAssign(context.Background(), models.BulkAssignRequest{
		CoachID:    testCoachID,
		StudentIDs: []string{testStudentID, testStudent2ID},
	})
	require.NoError(t, err)
	assert.Len(t, created, 1)
	assert.Len(t, failed, 1)
	assert.Contains(t, failed, testStudent2ID)
	assert.Len(t, assignments.created, 1)
}

func TestUnassignMissingAssignment(t *testing.T) {
	svc, _, _ := adminFixture()

	err := svc.Unassign(context.Background(), testCoachID, testStudentID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPlatformStats(t *testing.T) {
	assignments := &mockAdminAssignments{active: 4}
	users := &mockAdminUsers{byRole: map[string]int{
		string(models.RoleStudent): 20,
		string(models.RoleCoach):   3,
		string(models.RoleParent):  8,
	}}
	svc := NewAdminService(assignments, users, &mockCounter{count: 120}, &mockCounter{count: 45}, nil, nil, zap.NewNop())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, stats.TotalStudents)
	assert.Equal(t, 3, stats.TotalCoaches)
	assert.Equal(t, 8, stats.TotalParents)
	assert.Equal(t, 120, stats.TotalMatches)
	assert.Equal(t, 45, stats.TotalListItems)
	assert.Equal(t, 4, stats.ActiveAssignments)
}

func TestListUsersPaginationDefaults(t *testing.T) {
	svc, _, _ := adminFixture()

	_, page, err := svc.ListUsers(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, 3, page.TotalCount)
}
