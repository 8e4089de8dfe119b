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

// LinkRepository provides database access for parent invitations and links.
type LinkRepository struct {
	db *sqlx.DB
}

// NewLinkRepository creates a new instance of LinkRepository.
func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// CreateInvitation stores a new invitation token.
func (r *LinkRepository) CreateInvitation(ctx context.Context, token *models.InvitationToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO invitation_tokens (id, email, student_id, relationship, used, expires_at, created_at) VALUES (:id, :email, :student_id, :relationship, :used, :expires_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

// FindInvitation returns an invitation by its token identifier.
func (r *LinkRepository) FindInvitation(ctx context.Context, id string) (*models.InvitationToken, error) {
	const query = `SELECT id, email, student_id, relationship, used, expires_at, created_at FROM invitation_tokens WHERE id = $1 LIMIT 1`
	var token models.InvitationToken
	if err := r.db.GetContext(ctx, &token, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	return &token, nil
}

// FindPendingInvitation returns an unused, unexpired invitation for the pair.
func (r *LinkRepository) FindPendingInvitation(ctx context.Context, studentID, email string) (*models.InvitationToken, error) {
	const query = `SELECT id, email, student_id, relationship, used, expires_at, created_at FROM invitation_tokens WHERE student_id = $1 AND LOWER(email) = LOWER($2) AND used = FALSE AND expires_at > $3 LIMIT 1`
	var token models.InvitationToken
	if err := r.db.GetContext(ctx, &token, query, studentID, email, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find pending invitation: %w", err)
	}
	return &token, nil
}

// ListPendingInvitations returns the student's unused, unexpired invitations.
func (r *LinkRepository) ListPendingInvitations(ctx context.Context, studentID string) ([]models.InvitationToken, error) {
	const query = `SELECT id, email, student_id, relationship, used, expires_at, created_at FROM invitation_tokens WHERE student_id = $1 AND used = FALSE AND expires_at > $2 ORDER BY created_at DESC`
	var tokens []models.InvitationToken
	if err := r.db.SelectContext(ctx, &tokens, query, studentID, time.Now().UTC()); err != nil {
		if isUndefinedTable(err) {
			return []models.InvitationToken{}, nil
		}
		return nil, fmt.Errorf("list pending invitations: %w", err)
	}
	return tokens, nil
}

// MarkInvitationUsed consumes an invitation. Cancellation uses the same mark.
func (r *LinkRepository) MarkInvitationUsed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE invitation_tokens SET used = TRUE WHERE id = $1 AND used = FALSE`, id)
	if err != nil {
		return fmt.Errorf("mark invitation used: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("count consumed invitations: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ExtendInvitation pushes out the expiry window on resend.
func (r *LinkRepository) ExtendInvitation(ctx context.Context, id string, expiresAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE invitation_tokens SET expires_at = $2 WHERE id = $1 AND used = FALSE`, id, expiresAt); err != nil {
		return fmt.Errorf("extend invitation: %w", err)
	}
	return nil
}

// CreateLink stores a pending student link.
func (r *LinkRepository) CreateLink(ctx context.Context, link *models.StudentLink) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO student_links (id, student_id, linked_user_id, relationship, status, invited_email, invitation_token, linked_at, created_at) VALUES (:id, :student_id, :linked_user_id, :relationship, :status, :invited_email, :invitation_token, :linked_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("create link: %w", err)
	}
	return nil
}

// FindLinkByInvitation returns the link created for a given invitation token.
func (r *LinkRepository) FindLinkByInvitation(ctx context.Context, invitationID string) (*models.StudentLink, error) {
	const query = `SELECT id, student_id, linked_user_id, relationship, status, invited_email, invitation_token, linked_at, created_at FROM student_links WHERE invitation_token = $1 LIMIT 1`
	var link models.StudentLink
	if err := r.db.GetContext(ctx, &link, query, invitationID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find link by invitation: %w", err)
	}
	return &link, nil
}

// AcceptLink marks a link accepted and attaches the linked account.
func (r *LinkRepository) AcceptLink(ctx context.Context, id, linkedUserID string, linkedAt time.Time) error {
	const query = `UPDATE student_links SET linked_user_id = $2, status = $3, linked_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, linkedUserID, models.LinkAccepted, linkedAt); err != nil {
		return fmt.Errorf("accept link: %w", err)
	}
	return nil
}

// DeleteLink removes a link row. Used when an invitation is cancelled.
func (r *LinkRepository) DeleteLink(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM student_links WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	return nil
}

// HasAcceptedLink reports whether the account is already linked to the student.
func (r *LinkRepository) HasAcceptedLink(ctx context.Context, studentID, linkedUserID string) (bool, error) {
	var count int
	const query = `SELECT COUNT(*) FROM student_links WHERE student_id = $1 AND linked_user_id = $2 AND status = $3`
	if err := r.db.GetContext(ctx, &count, query, studentID, linkedUserID, models.LinkAccepted); err != nil {
		return false, fmt.Errorf("check accepted link: %w", err)
	}
	return count > 0, nil
}

// ListLinkedUsers returns accepted links joined to the linked accounts.
func (r *LinkRepository) ListLinkedUsers(ctx context.Context, studentID string) ([]models.LinkedUser, error) {
	const query = `SELECT u.id AS user_id, u.email, u.full_name, l.relationship, l.linked_at
		FROM student_links l
		JOIN users u ON u.id = l.linked_user_id
		WHERE l.student_id = $1 AND l.status = $2
		ORDER BY l.linked_at DESC`
	var users []models.LinkedUser
	if err := r.db.SelectContext(ctx, &users, query, studentID, models.LinkAccepted); err != nil {
		if isUndefinedTable(err) {
			return []models.LinkedUser{}, nil
		}
		return nil, fmt.Errorf("list linked users: %w", err)
	}
	return users, nil
}

// ListStudentsForParent returns students whose accepted links point at the account.
func (r *LinkRepository) ListStudentsForParent(ctx context.Context, linkedUserID string) ([]models.LinkedUser, error) {
	const query = `SELECT u.id AS user_id, u.email, u.full_name, l.relationship, l.linked_at
		FROM student_links l
		JOIN users u ON u.id = l.student_id
		WHERE l.linked_user_id = $1 AND l.status = $2
		ORDER BY l.linked_at DESC`
	var users []models.LinkedUser
	if err := r.db.SelectContext(ctx, &users, query, linkedUserID, models.LinkAccepted); err != nil {
		if isUndefinedTable(err) {
			return []models.LinkedUser{}, nil
		}
		return nil, fmt.Errorf("list students for parent: %w", err)
	}
	return users, nil
}
