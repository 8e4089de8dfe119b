package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/narengee/c4c-api/internal/models"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
)

type accessAssignmentRepository interface {
	IsAssigned(ctx context.Context, coachID, studentID string) (bool, error)
}

type accessLinkRepository interface {
	HasAcceptedLink(ctx context.Context, studentID, linkedUserID string) (bool, error)
}

// AccessService decides whether a caller may view another student's data.
type AccessService struct {
	assignments accessAssignmentRepository
	links       accessLinkRepository
	logger      *zap.Logger
}

// NewAccessService constructs the access service.
func NewAccessService(assignments accessAssignmentRepository, links accessLinkRepository, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{assignments: assignments, links: links, logger: logger}
}

// CanViewStudent allows the student themself, superadmins, assigned coaches
// and accepted linked accounts.
func (s *AccessService) CanViewStudent(ctx context.Context, claims *models.JWTClaims, studentID string) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.UserID == studentID || claims.Role == models.RoleSuperAdmin {
		return nil
	}

	if claims.Role == models.RoleCoach {
		assigned, err := s.assignments.IsAssigned(ctx, claims.UserID, studentID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check assignment")
		}
		if assigned {
			return nil
		}
	}

	linked, err := s.links.HasAcceptedLink(ctx, studentID, claims.UserID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "check link")
	}
	if linked {
		return nil
	}

	return appErrors.Clone(appErrors.ErrForbidden, "no access to this student")
}
