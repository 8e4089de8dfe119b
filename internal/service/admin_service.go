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

type adminAssignmentRepository interface {
	Create(ctx context.Context, assignment *models.CoachStudentAssignment) error
	Deactivate(ctx context.Context, coachID, studentID string) error
	CountActive(ctx context.Context) (int, error)
}

type adminUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	CountByRole(ctx context.Context, role string) (int, error)
}

type platformCounter interface {
	CountAll(ctx context.Context) (int, error)
}

type portfolioInvalidator interface {
	InvalidatePortfolio(ctx context.Context, coachID string)
}

// AdminService covers assignment management and platform statistics.
type AdminService struct {
	assignments adminAssignmentRepository
	users       adminUserRepository
	matches     platformCounter
	lists       platformCounter
	coaches     portfolioInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAdminService constructs the admin service.
func NewAdminService(assignments adminAssignmentRepository, users adminUserRepository, matches, lists platformCounter, coaches portfolioInvalidator, validate *validator.Validate, logger *zap.Logger) *AdminService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{assignments: assignments, users: users, matches: matches, lists: lists, coaches: coaches, validator: validate, logger: logger}
}

// Assign links one student to a coach.
func (s *AdminService) Assign(ctx context.Context, req models.AssignStudentRequest) (*models.CoachStudentAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if err := s.verifyRole(ctx, req.CoachID, models.RoleCoach); err != nil {
		return nil, err
	}
	if err := s.verifyRole(ctx, req.StudentID, models.RoleStudent); err != nil {
		return nil, err
	}

	assignment := &models.CoachStudentAssignment{CoachID: req.CoachID, StudentID: req.StudentID}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	if s.coaches != nil {
		s.coaches.InvalidatePortfolio(ctx, req.CoachID)
	}
	return assignment, nil
}

// BulkAssign links several students to a coach in one call. Failures are
// reported per student without aborting the batch.
func (s *AdminService) BulkAssign(ctx context.Context, req models.BulkAssignRequest) ([]models.CoachStudentAssignment, map[string]string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk assignment payload")
	}
	if err := s.verifyRole(ctx, req.CoachID, models.RoleCoach); err != nil {
		return nil, nil, err
	}

	var created []models.CoachStudentAssignment
	failed := make(map[string]string)
	for _, studentID := range req.StudentIDs {
		if err := s.verifyRole(ctx, studentID, models.RoleStudent); err != nil {
			failed[studentID] = appErrors.FromError(err).Message
			continue
		}
		assignment := &models.CoachStudentAssignment{CoachID: req.CoachID, StudentID: studentID}
		if err := s.assignments.Create(ctx, assignment); err != nil {
			s.logger.Warn("bulk assignment failed for student",
				zap.String("coach_id", req.CoachID), zap.String("student_id", studentID), zap.Error(err))
			failed[studentID] = "failed to create assignment"
			continue
		}
		created = append(created, *assignment)
	}
	if s.coaches != nil {
		s.coaches.InvalidatePortfolio(ctx, req.CoachID)
	}
	return created, failed, nil
}

// Unassign deactivates a coach-student assignment.
func (s *AdminService) Unassign(ctx context.Context, coachID, studentID string) error {
	if err := s.assignments.Deactivate(ctx, coachID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "active assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate assignment")
	}
	if s.coaches != nil {
		s.coaches.InvalidatePortfolio(ctx, coachID)
	}
	return nil
}

// ListUsers returns users for the admin console.
func (s *AdminService) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Stats returns the platform dashboard snapshot.
func (s *AdminService) Stats(ctx context.Context) (*models.PlatformStats, error) {
	stats := &models.PlatformStats{}
	var err error

	if stats.TotalStudents, err = s.users.CountByRole(ctx, string(models.RoleStudent)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	if stats.TotalCoaches, err = s.users.CountByRole(ctx, string(models.RoleCoach)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count coaches")
	}
	if stats.TotalParents, err = s.users.CountByRole(ctx, string(models.RoleParent)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count parents")
	}
	if stats.TotalMatches, err = s.matches.CountAll(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count matches")
	}
	if stats.TotalListItems, err = s.lists.CountAll(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count list items")
	}
	if stats.ActiveAssignments, err = s.assignments.CountActive(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count assignments")
	}
	return stats, nil
}

func (s *AdminService) verifyRole(ctx context.Context, userID string, role models.UserRole) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role != role {
		return appErrors.Clone(appErrors.ErrValidation, "user has the wrong role for this assignment")
	}
	if !user.Active {
		return appErrors.Clone(appErrors.ErrValidation, "user account is inactive")
	}
	return nil
}
