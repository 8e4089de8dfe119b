package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/narengee/c4c-api/internal/models"
	"github.com/narengee/c4c-api/pkg/jobs"
)

// Outbox job types. Secondary writes that must not fail the primary request
// are retried through the queue instead of being silently dropped.
const (
	JobTypeCreateProfile = "profile.create"
	JobTypeAcceptLink    = "link.accept"
)

// CreateProfilePayload asks the outbox to create an empty student profile.
type CreateProfilePayload struct {
	StudentID string `json:"student_id"`
}

// AcceptLinkPayload asks the outbox to finalize a student link.
type AcceptLinkPayload struct {
	LinkID       string `json:"link_id"`
	LinkedUserID string `json:"linked_user_id"`
}

type outboxLinkRepository interface {
	AcceptLink(ctx context.Context, id, linkedUserID string, linkedAt time.Time) error
}

// NewOutboxHandler dispatches queued jobs to their repositories.
func NewOutboxHandler(profiles authProfileRepository, links outboxLinkRepository, logger *zap.Logger) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job) error {
		data, ok := job.Payload.([]byte)
		if !ok {
			logger.Error("outbox job has unexpected payload type", zap.String("type", job.Type))
			return nil
		}
		switch job.Type {
		case JobTypeCreateProfile:
			var payload CreateProfilePayload
			if err := json.Unmarshal(data, &payload); err != nil {
				logger.Error("invalid profile creation payload", zap.Error(err))
				return nil
			}
			if err := profiles.Upsert(ctx, &models.StudentProfile{StudentID: payload.StudentID}); err != nil {
				return fmt.Errorf("outbox create profile: %w", err)
			}
			return nil
		case JobTypeAcceptLink:
			var payload AcceptLinkPayload
			if err := json.Unmarshal(data, &payload); err != nil {
				logger.Error("invalid accept link payload", zap.Error(err))
				return nil
			}
			if err := links.AcceptLink(ctx, payload.LinkID, payload.LinkedUserID, time.Now().UTC()); err != nil {
				return fmt.Errorf("outbox accept link: %w", err)
			}
			return nil
		default:
			logger.Warn("unknown outbox job type", zap.String("type", job.Type))
			return nil
		}
	}
}
