package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesAndDrainsOnStop(t *testing.T) {
	var mu sync.Mutex
	seen := make([]string, 0)
	q := NewQueue("snapshots", func(_ context.Context, job Job) error {
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		seen = append(seen, job.Payload.(string))
		mu.Unlock()
		return nil
	}, QueueConfig{Workers: 2, BufferSize: 8})
	q.Start(context.Background())

	for _, p := range []string{"a", "b", "c", "d"} {
		require.NoError(t, q.Enqueue(Job{Type: "upload", Payload: p}))
	}
	q.Stop()

	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, seen)
	assert.Equal(t, int64(0), q.Pending())
	assert.Error(t, q.Enqueue(Job{Type: "upload"}))
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts atomic.Int32
	q := NewQueue("snapshots", func(_ context.Context, job Job) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{Type: "upload"}))
	q.Stop()

	assert.Equal(t, int32(3), attempts.Load())
}

func TestQueueGivesUpAfterMaxRetries(t *testing.T) {
	var attempts atomic.Int32
	q := NewQueue("snapshots", func(context.Context, Job) error {
		attempts.Add(1)
		return errors.New("permanent")
	}, QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{Type: "upload"}))
	q.Stop()

	assert.Equal(t, int32(3), attempts.Load())
}

func TestEnqueueBeforeStartFails(t *testing.T) {
	q := NewQueue("snapshots", func(context.Context, Job) error { return nil }, QueueConfig{})
	require.Error(t, q.Enqueue(Job{}))
}
