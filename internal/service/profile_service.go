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

type profileRepository interface {
	GetByStudentID(ctx context.Context, studentID string) (*models.StudentProfile, error)
	Upsert(ctx context.Context, profile *models.StudentProfile) error
}

// dreamSyncer reconciles dream-college rows after profile edits.
type dreamSyncer interface {
	SyncDreamColleges(ctx context.Context, studentID string) error
}

// ProfileService handles student profile use-cases.
type ProfileService struct {
	repo      profileRepository
	syncer    dreamSyncer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(repo profileRepository, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{repo: repo, validator: validate, logger: logger}
}

// SetDreamSyncer attaches the syncer after construction. The recommendation
// service depends on profiles, so the link is wired late to avoid a cycle.
func (s *ProfileService) SetDreamSyncer(syncer dreamSyncer) {
	s.syncer = syncer
}

// Get returns the student's profile.
func (s *ProfileService) Get(ctx context.Context, studentID string) (*models.StudentProfile, error) {
	profile, err := s.repo.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// Completion returns the student's progress score.
func (s *ProfileService) Completion(ctx context.Context, studentID string, matchCount, listCount int) (int, error) {
	profile, err := s.repo.GetByStudentID(ctx, studentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profileCompletion(profile, matchCount, listCount), nil
}

// Update upserts the student's profile. When the dream-college list changed,
// the match rows are reconciled before returning.
func (s *ProfileService) Update(ctx context.Context, studentID string, profile *models.StudentProfile) (*models.StudentProfile, error) {
	if profile == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "profile payload is required")
	}
	profile.StudentID = studentID

	previous, err := s.repo.GetByStudentID(ctx, studentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing profile")
	}
	if previous != nil {
		profile.ID = previous.ID
		profile.CreatedAt = previous.CreatedAt
	}

	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save profile")
	}

	if s.syncer != nil && dreamListChanged(previous, profile) {
		if err := s.syncer.SyncDreamColleges(ctx, studentID); err != nil {
			s.logger.Warn("dream college sync failed after profile update",
				zap.String("student_id", studentID), zap.Error(err))
		}
	}

	return profile, nil
}

// dreamListChanged compares dream-college sets ignoring order.
func dreamListChanged(previous, current *models.StudentProfile) bool {
	var before []string
	if previous != nil {
		before = previous.DreamColleges
	}
	after := current.DreamColleges
	if len(before) != len(after) {
		return true
	}
	seen := make(map[string]struct{}, len(before))
	for _, name := range before {
		seen[name] = struct{}{}
	}
	for _, name := range after {
		if _, ok := seen[name]; !ok {
			return true
		}
	}
	return false
}
