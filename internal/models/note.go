package models

import "time"

// Note types.
const (
	NoteGeneral  = "general"
	NoteMeeting  = "meeting"
	NoteFollowUp = "follow_up"
	NoteConcern  = "concern"
)

// StudentNote is a coach's note on a student, optionally visible to the student.
type StudentNote struct {
	ID               string    `db:"id" json:"id"`
	StudentID        string    `db:"student_id" json:"student_id"`
	AuthorID         string    `db:"author_id" json:"author_id"`
	NoteType         string    `db:"note_type" json:"note_type"`
	Content          string    `db:"content" json:"content"`
	VisibleToStudent bool      `db:"visible_to_student" json:"visible_to_student"`
	ParentNoteID     *string   `db:"parent_note_id" json:"parent_note_id,omitempty"`
	IsReply          bool      `db:"is_reply" json:"is_reply"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`

	AuthorName string `db:"author_name" json:"author_name,omitempty"`
}

// CreateNoteRequest adds a note or a reply to an existing note.
type CreateNoteRequest struct {
	NoteType         string  `json:"note_type" validate:"required,oneof=general meeting follow_up concern"`
	Content          string  `json:"content" validate:"required"`
	VisibleToStudent bool    `json:"visible_to_student"`
	ParentNoteID     *string `json:"parent_note_id" validate:"omitempty,uuid"`
}
