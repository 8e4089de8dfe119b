package models

import "time"

// Link relationship kinds.
const (
	RelationshipParent   = "parent"
	RelationshipGuardian = "guardian"
)

// Link statuses.
const (
	LinkPending  = "pending"
	LinkAccepted = "accepted"
	LinkDeclined = "declined"
)

// InvitationToken is a single-use parent invitation.
type InvitationToken struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Relationship string    `db:"relationship" json:"relationship"`
	Used         bool      `db:"used" json:"used"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the invitation is past its expiry at the given instant.
func (t *InvitationToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// StudentLink connects a student to a parent or guardian account.
type StudentLink struct {
	ID              string     `db:"id" json:"id"`
	StudentID       string     `db:"student_id" json:"student_id"`
	LinkedUserID    *string    `db:"linked_user_id" json:"linked_user_id,omitempty"`
	Relationship    string     `db:"relationship" json:"relationship"`
	Status          string     `db:"status" json:"status"`
	InvitedEmail    string     `db:"invited_email" json:"invited_email"`
	InvitationToken *string    `db:"invitation_token" json:"invitation_token,omitempty"`
	LinkedAt        *time.Time `db:"linked_at" json:"linked_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// LinkedUser is a linked account as shown to the student.
type LinkedUser struct {
	UserID       string    `db:"user_id" json:"user_id"`
	Email        string    `db:"email" json:"email"`
	FullName     string    `db:"full_name" json:"full_name"`
	Relationship string    `db:"relationship" json:"relationship"`
	LinkedAt     time.Time `db:"linked_at" json:"linked_at"`
}

// InviteParentRequest sends an invitation to the given email.
type InviteParentRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Relationship string `json:"relationship" validate:"required,oneof=parent guardian"`
}

// ValidateInvitationResponse describes an invitation to the accept page.
type ValidateInvitationResponse struct {
	Valid        bool   `json:"valid"`
	Email        string `json:"email,omitempty"`
	StudentName  string `json:"student_name,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// AcceptInvitationRequest accepts an invitation, creating an account when needed.
type AcceptInvitationRequest struct {
	Token    string `json:"token" validate:"required"`
	FullName string `json:"full_name"`
	Password string `json:"password" validate:"required,min=6"`
}
