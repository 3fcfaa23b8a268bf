package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// HandlerFunc processes one job's payload. Handlers must be safe to run
// concurrently with each other, including for jobs touching the same record.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// ExecutorConfig holds executor construction parameters. Handlers is the
// complete handler map; there is no process-wide registry and nothing can be
// registered after construction.
type ExecutorConfig struct {
	Store        Store
	Handlers     map[string]HandlerFunc
	Events       EventPublisher // optional
	Logger       *slog.Logger
	WorkerID     string
	Concurrency  int
	PollInterval time.Duration
	BatchSize    int
	JobTimeout   time.Duration
}

// Executor polls the store for due jobs, leases them and dispatches each to
// the handler registered under the job's name. Handler errors fail the job;
// they never terminate the loop.
type Executor struct {
	store        Store
	handlers     map[string]HandlerFunc
	events       EventPublisher
	logger       *slog.Logger
	workerID     string
	pollInterval time.Duration
	batchSize    int
	jobTimeout   time.Duration

	sem      chan struct{}
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewExecutor creates an Executor from cfg
func NewExecutor(cfg *ExecutorConfig) *Executor {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = concurrency
	}

	return &Executor{
		store:        cfg.Store,
		handlers:     cfg.Handlers,
		events:       cfg.Events,
		logger:       cfg.Logger,
		workerID:     cfg.WorkerID,
		pollInterval: cfg.PollInterval,
		batchSize:    batchSize,
		jobTimeout:   cfg.JobTimeout,
		sem:          make(chan struct{}, concurrency),
		stopChan:     make(chan struct{}),
	}
}

// Run polls until the context is canceled or Stop is called. It drains one
// claim immediately on start so due jobs do not wait a full poll interval
// after a restart.
func (e *Executor) Run(ctx context.Context) error {
	e.logger.Info("Executor started",
		slog.String("worker_id", e.workerID),
		slog.Int("concurrency", cap(e.sem)),
		slog.Duration("poll_interval", e.pollInterval),
	)

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	e.claimAndDispatch(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Executor stopping - context canceled",
				slog.String("worker_id", e.workerID),
			)
			return nil

		case <-e.stopChan:
			e.logger.Info("Executor stopping - stop requested",
				slog.String("worker_id", e.workerID),
			)
			return nil

		case <-ticker.C:
			e.claimAndDispatch(ctx)
		}
	}
}

// Stop requests shutdown and waits for in-flight jobs to finish
func (e *Executor) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopChan)
	})
	e.wg.Wait()
}

func (e *Executor) claimAndDispatch(ctx context.Context) {
	claimed, err := e.store.ClaimDue(ctx, e.workerID, e.batchSize)
	if err != nil {
		e.logger.Error("Failed to claim due jobs",
			slog.String("worker_id", e.workerID),
			slog.Any("error", err),
		)
		return
	}

	for i := range claimed {
		job := claimed[i]

		select {
		case e.sem <- struct{}{}:
		case <-ctx.Done():
			return
		case <-e.stopChan:
			return
		}

		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			defer func() { <-e.sem }()
			e.execute(ctx, &job)
		}()
	}
}

// execute runs a single claimed job and records the outcome
func (e *Executor) execute(ctx context.Context, job *Job) {
	e.logger.Info("Executing job",
		slog.String("job_id", job.ID),
		slog.String("name", job.Name),
		slog.String("worker_id", e.workerID),
	)

	start := time.Now()
	err := e.invokeHandler(ctx, job)
	elapsed := time.Since(start)

	if err != nil {
		e.logger.Error("Job failed",
			slog.String("job_id", job.ID),
			slog.String("name", job.Name),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", err),
		)

		if markErr := e.store.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			e.logger.Error("Failed to record job failure",
				slog.String("job_id", job.ID),
				slog.Any("error", markErr),
			)
		}

		e.publishEvent(ctx, Event{
			JobID: job.ID,
			Name:  job.Name,
			State: StateFailed,
			Error: err.Error(),
			At:    time.Now().UTC(),
		})
		return
	}

	e.logger.Info("Job succeeded",
		slog.String("job_id", job.ID),
		slog.String("name", job.Name),
		slog.Duration("elapsed", elapsed),
	)

	if markErr := e.store.MarkSucceeded(ctx, job.ID); markErr != nil {
		e.logger.Error("Failed to record job success",
			slog.String("job_id", job.ID),
			slog.Any("error", markErr),
		)
	}

	e.publishEvent(ctx, Event{
		JobID: job.ID,
		Name:  job.Name,
		State: StateSucceeded,
		At:    time.Now().UTC(),
	})
}

// invokeHandler dispatches to the registered handler under a per-job timeout,
// converting panics into ordinary job failures
func (e *Executor) invokeHandler(ctx context.Context, job *Job) (err error) {
	handler, ok := e.handlers[job.Name]
	if !ok {
		return fmt.Errorf("no handler registered for job %q", job.Name)
	}

	jobCtx := ctx
	if e.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, e.jobTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return handler(jobCtx, job.Payload)
}

func (e *Executor) publishEvent(ctx context.Context, event Event) {
	if e.events == nil {
		return
	}

	if err := e.events.PublishJobEvent(ctx, event); err != nil {
		e.logger.Warn("Failed to publish job event",
			slog.String("job_id", event.JobID),
			slog.Any("error", err),
		)
	}
}
