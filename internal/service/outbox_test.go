package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/narengee/c4c-api/pkg/jobs"
)

type mockOutboxLinks struct {
	accepted []string
	err      error
}

func (m *mockOutboxLinks) AcceptLink(ctx context.Context, id, linkedUserID string, linkedAt time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.accepted = append(m.accepted, id+"/"+linkedUserID)
	return nil
}

func TestOutboxCreatesProfile(t *testing.T) {
	profiles := &mockProfileUpserter{}
	handler := NewOutboxHandler(profiles, &mockOutboxLinks{}, zap.NewNop())

	payload, err := json.Marshal(CreateProfilePayload{StudentID: "s1"})
	require.NoError(t, err)

	err = handler(context.Background(), jobs.Job{Type: JobTypeCreateProfile, Payload: payload})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, profiles.upserts)
}

func TestOutboxAcceptsLink(t *testing.T) {
	links := &mockOutboxLinks{}
	handler := NewOutboxHandler(&mockProfileUpserter{}, links, zap.NewNop())

	payload, err := json.Marshal(AcceptLinkPayload{LinkID: "l1", LinkedUserID: "p1"})
	require.NoError(t, err)

	err = handler(context.Background(), jobs.Job{Type: JobTypeAcceptLink, Payload: payload})
	require.NoError(t, err)
	assert.Equal(t, []string{"l1/p1"}, links.accepted)
}

func TestOutboxReturnsRepoFailuresForRetry(t *testing.T) {
	links := &mockOutboxLinks{err: errors.New("db down")}
	handler := NewOutboxHandler(&mockProfileUpserter{}, links, zap.NewNop())

	payload, err := json.Marshal(AcceptLinkPayload{LinkID: "l1", LinkedUserID: "p1"})
	require.NoError(t, err)

	err = handler(context.Background(), jobs.Job{Type: JobTypeAcceptLink, Payload: payload})
	require.Error(t, err)
}

func TestOutboxSwallowsBadPayloads(t *testing.T) {
	profiles := &mockProfileUpserter{}
	handler := NewOutboxHandler(profiles, &mockOutboxLinks{}, zap.NewNop())

	require.NoError(t, handler(context.Background(), jobs.Job{Type: JobTypeCreateProfile, Payload: []byte("{not json")}))
	require.NoError(t, handler(context.Background(), jobs.Job{Type: "unknown.job", Payload: []byte("{}")}))
	require.NoError(t, handler(context.Background(), jobs.Job{Type: JobTypeCreateProfile, Payload: 42}))
	assert.Empty(t, profiles.upserts)
}
