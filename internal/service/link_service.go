package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/narengee/c4c-api/internal/models"
	"github.com/narengee/c4c-api/pkg/email"
	appErrors "github.com/narengee/c4c-api/pkg/errors"
	"github.com/narengee/c4c-api/pkg/jobs"
)

type linkRepository interface {
	CreateInvitation(ctx context.Context, token *models.InvitationToken) error
	FindInvitation(ctx context.Context, id string) (*models.InvitationToken, error)
	FindPendingInvitation(ctx context.Context, studentID, email string) (*models.InvitationToken, error)
	ListPendingInvitations(ctx context.Context, studentID string) ([]models.InvitationToken, error)
	MarkInvitationUsed(ctx context.Context, id string) error
	ExtendInvitation(ctx context.Context, id string, expiresAt time.Time) error
	CreateLink(ctx context.Context, link *models.StudentLink) error
	FindLinkByInvitation(ctx context.Context, invitationID string) (*models.StudentLink, error)
	AcceptLink(ctx context.Context, id, linkedUserID string, linkedAt time.Time) error
	DeleteLink(ctx context.Context, id string) error
	HasAcceptedLink(ctx context.Context, studentID, linkedUserID string) (bool, error)
	ListLinkedUsers(ctx context.Context, studentID string) ([]models.LinkedUser, error)
	ListStudentsForParent(ctx context.Context, linkedUserID string) ([]models.LinkedUser, error)
}

type linkUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// LinkConfig governs invitation lifetime and the accept-page URL.
type LinkConfig struct {
	TTL    time.Duration
	AppURL string
}

// LinkService manages parent invitations and student-parent links.
type LinkService struct {
	repo      linkRepository
	users     linkUserRepository
	auth      *AuthService
	sender    email.Sender
	outbox    *jobs.Queue
	config    LinkConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLinkService constructs the link service.
func NewLinkService(repo linkRepository, users linkUserRepository, auth *AuthService, sender email.Sender, outbox *jobs.Queue, cfg LinkConfig, validate *validator.Validate, logger *zap.Logger) *LinkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	return &LinkService{repo: repo, users: users, auth: auth, sender: sender, outbox: outbox, config: cfg, validator: validate, logger: logger}
}

// Invite sends a single-use invitation to a parent or guardian.
func (s *LinkService) Invite(ctx context.Context, studentID string, req models.InviteParentRequest) (*models.InvitationToken, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invitation payload")
	}

	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if _, err := s.repo.FindPendingInvitation(ctx, studentID, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrInvitationPending, "an invitation for this email is already pending")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending invitations")
	}

	token := &models.InvitationToken{
		Email:        req.Email,
		StudentID:    studentID,
		Relationship: req.Relationship,
		ExpiresAt:    time.Now().UTC().Add(s.config.TTL),
	}
	if err := s.repo.CreateInvitation(ctx, token); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create invitation")
	}

	link := &models.StudentLink{
		StudentID:       studentID,
		Relationship:    req.Relationship,
		Status:          models.LinkPending,
		InvitedEmail:    req.Email,
		InvitationToken: &token.ID,
	}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create link")
	}

	s.sendInvitationEmail(token, student.FullName)

	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &studentID,
		Action:     models.AuditActionInvitationSend,
		Resource:   "invitation",
		ResourceID: &token.ID,
		NewValues:  []byte(fmt.Sprintf(`{"email":%q}`, req.Email)),
	}); err != nil {
		s.logger.Warn("failed to record invitation audit log", zap.Error(err))
	}

	return token, nil
}

// Validate describes an invitation to the accept page without consuming it.
func (s *LinkService) Validate(ctx context.Context, tokenID string) (*models.ValidateInvitationResponse, error) {
	token, err := s.repo.FindInvitation(ctx, tokenID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.ValidateInvitationResponse{Valid: false, Reason: "invitation not found"}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invitation")
	}
	if token.Used {
		return &models.ValidateInvitationResponse{Valid: false, Reason: "invitation already used"}, nil
	}
	if token.Expired(time.Now().UTC()) {
		return &models.ValidateInvitationResponse{Valid: false, Reason: "invitation expired"}, nil
	}

	resp := &models.ValidateInvitationResponse{
		Valid:        true,
		Email:        token.Email,
		Relationship: token.Relationship,
	}
	if student, err := s.users.FindByID(ctx, token.StudentID); err == nil {
		resp.StudentName = student.FullName
	}
	return resp, nil
}

// Accept consumes an invitation. A new parent account is created when the
// email is unknown; otherwise the password must match the existing account.
func (s *LinkService) Accept(ctx context.Context, req models.AcceptInvitationRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid accept payload")
	}

	token, err := s.repo.FindInvitation(ctx, req.Token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invitation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invitation")
	}
	if token.Used {
		return nil, appErrors.Clone(appErrors.ErrInvitationUsed, "this invitation has already been used")
	}
	if token.Expired(time.Now().UTC()) {
		return nil, appErrors.Clone(appErrors.ErrInvitationExpired, "this invitation has expired")
	}

	user, err := s.users.FindByEmail(ctx, token.Email)
	switch {
	case err == nil:
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid password for existing account")
		}
	case errors.Is(err, sql.ErrNoRows):
		if req.FullName == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "full name is required for a new account")
		}
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, appErrors.Wrap(hashErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		user = &models.User{
			Email:        token.Email,
			PasswordHash: string(hash),
			FullName:     req.FullName,
			Role:         models.RoleParent,
			Active:       true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
		}
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	linked, err := s.repo.HasAcceptedLink(ctx, token.StudentID, user.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing link")
	}
	if linked {
		return nil, appErrors.Clone(appErrors.ErrAlreadyLinked, "this account is already linked to the student")
	}

	if err := s.repo.MarkInvitationUsed(ctx, token.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvitationUsed, "this invitation has already been used")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to consume invitation")
	}

	s.finalizeLink(ctx, token.ID, user.ID)

	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionInvitationAccept,
		Resource:   "invitation",
		ResourceID: &token.ID,
		NewValues:  []byte(fmt.Sprintf(`{"student_id":%q}`, token.StudentID)),
	}); err != nil {
		s.logger.Warn("failed to record accept audit log", zap.Error(err))
	}

	return s.auth.issueTokens(ctx, user, "", "")
}

// Cancel voids a pending invitation the student owns.
func (s *LinkService) Cancel(ctx context.Context, studentID, tokenID string) error {
	token, err := s.repo.FindInvitation(ctx, tokenID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "invitation not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invitation")
	}
	if token.StudentID != studentID {
		return appErrors.Clone(appErrors.ErrForbidden, "invitation does not belong to you")
	}
	if err := s.repo.MarkInvitationUsed(ctx, tokenID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrInvitationUsed, "invitation is no longer pending")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel invitation")
	}
	if link, err := s.repo.FindLinkByInvitation(ctx, tokenID); err == nil && link.Status == models.LinkPending {
		if err := s.repo.DeleteLink(ctx, link.ID); err != nil {
			s.logger.Warn("failed to remove cancelled link", zap.String("link_id", link.ID), zap.Error(err))
		}
	}
	return nil
}

// Resend extends a pending invitation and emails it again.
func (s *LinkService) Resend(ctx context.Context, studentID, tokenID string) error {
	token, err := s.repo.FindInvitation(ctx, tokenID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "invitation not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invitation")
	}
	if token.StudentID != studentID {
		return appErrors.Clone(appErrors.ErrForbidden, "invitation does not belong to you")
	}
	if token.Used {
		return appErrors.Clone(appErrors.ErrInvitationUsed, "this invitation has already been used")
	}
	if token.Expired(time.Now().UTC()) {
		return appErrors.Clone(appErrors.ErrInvitationExpired, "this invitation has expired")
	}

	token.ExpiresAt = time.Now().UTC().Add(s.config.TTL)
	if err := s.repo.ExtendInvitation(ctx, tokenID, token.ExpiresAt); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to extend invitation")
	}

	studentName := ""
	if student, err := s.users.FindByID(ctx, studentID); err == nil {
		studentName = student.FullName
	}
	s.sendInvitationEmail(token, studentName)
	return nil
}

// Pending returns the student's open invitations.
func (s *LinkService) Pending(ctx context.Context, studentID string) ([]models.InvitationToken, error) {
	tokens, err := s.repo.ListPendingInvitations(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invitations")
	}
	return tokens, nil
}

// LinkedUsers returns accounts linked to the student.
func (s *LinkService) LinkedUsers(ctx context.Context, studentID string) ([]models.LinkedUser, error) {
	users, err := s.repo.ListLinkedUsers(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list linked users")
	}
	return users, nil
}

// StudentsForParent returns students the parent account can view.
func (s *LinkService) StudentsForParent(ctx context.Context, parentID string) ([]models.LinkedUser, error) {
	students, err := s.repo.ListStudentsForParent(ctx, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// finalizeLink attaches the account to the pending link. Failures are retried
// through the outbox so the accepted invitation is never left dangling.
func (s *LinkService) finalizeLink(ctx context.Context, tokenID, userID string) {
	link, err := s.repo.FindLinkByInvitation(ctx, tokenID)
	if err != nil {
		s.logger.Error("accepted invitation has no link row", zap.String("token_id", tokenID), zap.Error(err))
		return
	}
	if err := s.repo.AcceptLink(ctx, link.ID, userID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to finalize link, retrying via outbox", zap.String("link_id", link.ID), zap.Error(err))
		if s.outbox != nil {
			payload, _ := json.Marshal(AcceptLinkPayload{LinkID: link.ID, LinkedUserID: userID})
			if qErr := s.outbox.Enqueue(jobs.Job{Type: JobTypeAcceptLink, Payload: payload}); qErr != nil {
				s.logger.Error("failed to enqueue link finalization", zap.String("link_id", link.ID), zap.Error(qErr))
			}
		}
	}
}

func (s *LinkService) sendInvitationEmail(token *models.InvitationToken, studentName string) {
	if s.sender == nil {
		return
	}
	inviteURL := fmt.Sprintf("%s/invite/%s", s.config.AppURL, token.ID)
	if err := s.sender.SendInvitation(token.Email, studentName, inviteURL); err != nil {
		s.logger.Warn("failed to send invitation email", zap.String("email", token.Email), zap.Error(err))
	}
}
