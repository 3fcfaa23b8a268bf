package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPublisher captures job events for assertions
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) PublishJobEvent(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) recorded() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

func newTestExecutor(store Store, handlers map[string]HandlerFunc, events EventPublisher) *Executor {
	return NewExecutor(&ExecutorConfig{
		Store:        store,
		Handlers:     handlers,
		Events:       events,
		Logger:       testLogger(),
		WorkerID:     "worker-test",
		Concurrency:  2,
		PollInterval: 10 * time.Millisecond,
		BatchSize:    10,
		JobTimeout:   time.Second,
	})
}

func TestExecutorRunsDueJob(t *testing.T) {
	store := newMemStore(time.Minute)
	scheduler := NewScheduler(store, testLogger())

	var mu sync.Mutex
	var gotPayload string

	handlers := map[string]HandlerFunc{
		"generate-player-artifact": func(ctx context.Context, payload json.RawMessage) error {
			var p struct {
				PlayerID string `json:"player_id"`
			}
			if err := json.Unmarshal(payload, &p); err != nil {
				return err
			}
			mu.Lock()
			gotPayload = p.PlayerID
			mu.Unlock()
			return nil
		},
	}

	jobID, err := scheduler.Schedule(context.Background(), 0, "generate-player-artifact", map[string]string{"player_id": "p-1"})
	require.NoError(t, err)

	e := newTestExecutor(store, handlers, nil)
	e.claimAndDispatch(context.Background())
	e.Stop()

	mu.Lock()
	assert.Equal(t, "p-1", gotPayload)
	mu.Unlock()

	job, err := store.GetByID(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, job.State)
	assert.False(t, job.LockedAt.Valid)
}

func TestExecutorFailsJobOnHandlerError(t *testing.T) {
	store := newMemStore(time.Minute)
	scheduler := NewScheduler(store, testLogger())

	handlers := map[string]HandlerFunc{
		"generate-player-artifact": func(ctx context.Context, payload json.RawMessage) error {
			return errors.New("render blew up")
		},
	}

	jobID, err := scheduler.Schedule(context.Background(), 0, "generate-player-artifact", nil)
	require.NoError(t, err)

	events := &recordingPublisher{}
	e := newTestExecutor(store, handlers, events)
	e.claimAndDispatch(context.Background())
	e.Stop()

	job, err := store.GetByID(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, job.State)
	assert.Equal(t, "render blew up", job.FailReason.String)

	// a failed job is terminal and never picked up again
	claimed, err := store.ClaimDue(context.Background(), "worker-test", 10)
	require.NoError(t, err)
	assert.Empty(t, claimed)

	// exactly one failure event
	recorded := events.recorded()
	require.Len(t, recorded, 1)
	assert.Equal(t, jobID, recorded[0].JobID)
	assert.Equal(t, StateFailed, recorded[0].State)
	assert.Equal(t, "render blew up", recorded[0].Error)
}

func TestExecutorFailsUnknownJobName(t *testing.T) {
	store := newMemStore(time.Minute)
	scheduler := NewScheduler(store, testLogger())

	jobID, err := scheduler.Schedule(context.Background(), 0, "no-such-job", nil)
	require.NoError(t, err)

	events := &recordingPublisher{}
	e := newTestExecutor(store, map[string]HandlerFunc{}, events)
	e.claimAndDispatch(context.Background())
	e.Stop()

	job, err := store.GetByID(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, job.State)
	assert.Contains(t, job.FailReason.String, "no handler registered")

	recorded := events.recorded()
	require.Len(t, recorded, 1)
	assert.Equal(t, StateFailed, recorded[0].State)
}

func TestExecutorRecoversHandlerPanic(t *testing.T) {
	store := newMemStore(time.Minute)
	scheduler := NewScheduler(store, testLogger())

	handlers := map[string]HandlerFunc{
		"generate-player-artifact": func(ctx context.Context, payload json.RawMessage) error {
			panic("template gone")
		},
	}

	jobID, err := scheduler.Schedule(context.Background(), 0, "generate-player-artifact", nil)
	require.NoError(t, err)

	e := newTestExecutor(store, handlers, nil)
	e.claimAndDispatch(context.Background())
	e.Stop()

	job, err := store.GetByID(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, job.State)
	assert.Contains(t, job.FailReason.String, "handler panicked")
	assert.Contains(t, job.FailReason.String, "template gone")
}

func TestExecutorPublishesSuccessEvent(t *testing.T) {
	store := newMemStore(time.Minute)
	scheduler := NewScheduler(store, testLogger())

	handlers := map[string]HandlerFunc{
		"delete-remote-artifact": func(ctx context.Context, payload json.RawMessage) error {
			return nil
		},
	}

	jobID, err := scheduler.Schedule(context.Background(), 0, "delete-remote-artifact", nil)
	require.NoError(t, err)

	events := &recordingPublisher{}
	e := newTestExecutor(store, handlers, events)
	e.claimAndDispatch(context.Background())
	e.Stop()

	recorded := events.recorded()
	require.Len(t, recorded, 1)
	assert.Equal(t, jobID, recorded[0].JobID)
	assert.Equal(t, StateSucceeded, recorded[0].State)
	assert.Empty(t, recorded[0].Error)
}

func TestExecutorRunStopsOnContextCancel(t *testing.T) {
	store := newMemStore(time.Minute)

	e := newTestExecutor(store, map[string]HandlerFunc{}, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- e.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("executor did not stop after context cancel")
	}
}

func TestExecutorHonorsJobTimeout(t *testing.T) {
	store := newMemStore(time.Minute)
	scheduler := NewScheduler(store, testLogger())

	handlers := map[string]HandlerFunc{
		"generate-player-artifact": func(ctx context.Context, payload json.RawMessage) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}

	jobID, err := scheduler.Schedule(context.Background(), 0, "generate-player-artifact", nil)
	require.NoError(t, err)

	e := NewExecutor(&ExecutorConfig{
		Store:        store,
		Handlers:     handlers,
		Logger:       testLogger(),
		WorkerID:     "worker-test",
		Concurrency:  1,
		PollInterval: 10 * time.Millisecond,
		BatchSize:    1,
		JobTimeout:   20 * time.Millisecond,
	})
	e.claimAndDispatch(context.Background())
	e.Stop()

	job, err := store.GetByID(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, job.State)
	assert.Contains(t, job.FailReason.String, "context deadline exceeded")
}
