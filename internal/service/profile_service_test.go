package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/narengee/c4c-api/internal/models"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
)

type mockProfileStore struct {
	profiles map[string]*models.StudentProfile
	upserts  int
}

func newMockProfileStore() *mockProfileStore {
	return &mockProfileStore{profiles: make(map[string]*models.StudentProfile)}
}

func (m *mockProfileStore) GetByStudentID(ctx context.Context, studentID string) (*models.StudentProfile, error) {
	if p, ok := m.profiles[studentID]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfileStore) Upsert(ctx context.Context, profile *models.StudentProfile) error {
	m.upserts++
	clone := *profile
	m.profiles[profile.StudentID] = &clone
	return nil
}

type mockDreamSyncer struct {
	synced []string
}

func (m *mockDreamSyncer) SyncDreamColleges(ctx context.Context, studentID string) error {
	m.synced = append(m.synced, studentID)
	return nil
}

func TestProfileGetNotFound(t *testing.T) {
	svc := NewProfileService(newMockProfileStore(), nil, zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProfileUpdatePreservesIdentity(t *testing.T) {
	store := newMockProfileStore()
	created := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	store.profiles["s1"] = &models.StudentProfile{ID: "p1", StudentID: "s1", GradeLevel: "10th Grade", CreatedAt: created}
	svc := NewProfileService(store, nil, zap.NewNop())

	updated, err := svc.Update(context.Background(), "s1", &models.StudentProfile{GradeLevel: "11th Grade"})
	require.NoError(t, err)
	assert.Equal(t, "p1", updated.ID)
	assert.Equal(t, "s1", updated.StudentID)
	assert.Equal(t, created, updated.CreatedAt)
	assert.Equal(t, "11th Grade", store.profiles["s1"].GradeLevel)
}

func TestProfileUpdateTriggersDreamSync(t *testing.T) {
	store := newMockProfileStore()
	store.profiles["s1"] = &models.StudentProfile{ID: "p1", StudentID: "s1", DreamColleges: models.StringList{"MIT"}}
	syncer := &mockDreamSyncer{}
	svc := NewProfileService(store, nil, zap.NewNop())
	svc.SetDreamSyncer(syncer)

	// Same set in a different order is not a change.
	_, err := svc.Update(context.Background(), "s1", &models.StudentProfile{DreamColleges: models.StringList{"MIT"}})
	require.NoError(t, err)
	assert.Empty(t, syncer.synced)

	_, err = svc.Update(context.Background(), "s1", &models.StudentProfile{DreamColleges: models.StringList{"MIT", "Stanford University"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, syncer.synced)
}

func TestProfileUpdateFirstWrite(t *testing.T) {
	store := newMockProfileStore()
	syncer := &mockDreamSyncer{}
	svc := NewProfileService(store, nil, zap.NewNop())
	svc.SetDreamSyncer(syncer)

	_, err := svc.Update(context.Background(), "s1", &models.StudentProfile{DreamColleges: models.StringList{"MIT"}})
	require.NoError(t, err)
	assert.Equal(t, 1, store.upserts)
	assert.Equal(t, []string{"s1"}, syncer.synced)
}

func TestProfileUpdateNilPayload(t *testing.T) {
	svc := NewProfileService(newMockProfileStore(), nil, zap.NewNop())

	_, err := svc.Update(context.Background(), "s1", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProfileCompletionMissingProfile(t *testing.T) {
	svc := NewProfileService(newMockProfileStore(), nil, zap.NewNop())

	score, err := svc.Completion(context.Background(), "missing", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}
