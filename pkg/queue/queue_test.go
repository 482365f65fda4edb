package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ JobQueue = (*Queue)(nil)
	_ JobQueue = (*MemoryQueue)(nil)
)

func TestMemoryQueueRoundTrip(t *testing.T) {
	q := NewMemoryQueue(4, nil)
	ctx := context.Background()

	payload := BlastDeliveryPayload{
		BlastID:    "b1",
		Channels:   []string{"sms", "app"},
		Recipients: []Recipient{{MemberID: "6", Name: "Michael Chen", Phone: "610-555-0123"}},
	}
	enqueued, err := q.EnqueueBlastDelivery(ctx, payload)
	require.NoError(t, err)
	assert.NotEmpty(t, enqueued.ID)
	assert.Equal(t, 1, q.Len())

	job, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, enqueued.ID, job.ID)
	assert.Equal(t, JobTypeBlastDelivery, job.Type)

	var got BlastDeliveryPayload
	require.NoError(t, json.Unmarshal(job.Payload, &got))
	assert.Equal(t, payload, got)
}

func TestMemoryQueueRetryThenDLQ(t *testing.T) {
	q := NewMemoryQueue(4, nil)
	ctx := context.Background()
	_, err := q.EnqueueBlastDelivery(ctx, BlastDeliveryPayload{BlastID: "b1"})
	require.NoError(t, err)

	for attempt := 1; attempt < MaxRetries; attempt++ {
		job, err := q.Dequeue(ctx)
		require.NoError(t, err)
		require.NoError(t, q.Retry(ctx, job))
		assert.Equal(t, attempt, job.Attempt)
		assert.Empty(t, q.DeadLetters())
	}

	job, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Retry(ctx, job))
	assert.Equal(t, 0, q.Len())
	dead := q.DeadLetters()
	require.Len(t, dead, 1)
	assert.Equal(t, MaxRetries, dead[0].Attempt)
}

func TestMemoryQueueFull(t *testing.T) {
	q := NewMemoryQueue(1, nil)
	ctx := context.Background()
	_, err := q.EnqueueBlastDelivery(ctx, BlastDeliveryPayload{BlastID: "a"})
	require.NoError(t, err)
	_, err = q.EnqueueBlastDelivery(ctx, BlastDeliveryPayload{BlastID: "b"})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestMemoryQueueDequeueHonoursContext(t *testing.T) {
	q := NewMemoryQueue(1, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	job, err := q.Dequeue(ctx)
	assert.Nil(t, job)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
