package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueAssignsJobID(t *testing.T) {
	handled := make(chan Job, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		handled <- job
		return nil
	}, QueueConfig{Workers: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Type: "email"}))

	select {
	case job := <-handled:
		assert.NotEmpty(t, job.ID)
		assert.Equal(t, "email", job.Type)
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("job was never handled")
	}
}

func TestEnqueueBeforeStartFails(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	require.Error(t, q.Enqueue(Job{Type: "email"}))
}
