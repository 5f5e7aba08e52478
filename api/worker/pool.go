// Package worker provides an asynchronous worker pool for persisting
// generated responses and profile descriptions with the provided
// storage.Driver.
//
// The pool keeps storage writes off the streaming hot path so a slow
// database never delays the tokens a client is waiting for.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/papercomputeco/wingman/pkg/dating"
	"github.com/papercomputeco/wingman/pkg/storage"
	"github.com/papercomputeco/wingman/pkg/utils"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// previewLength bounds the response text included in debug logs.
const previewLength = 80

// Description is a profile description to store on a user.
type Description struct {
	UserID int64
	Text   string
}

// Job is a unit of work for the worker pool to execute against. Either
// field may be nil.
type Job struct {
	Response    *dating.Response
	Description *Description
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend jobs are written to.
	Driver storage.Driver

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided slog logger
	Logger *slog.Logger
}

// Pool processes storage jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	closeOnce sync.Once
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, fmt.Errorf("worker pool requires a storage driver")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("job queued", jobAttrs(job)...)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped", jobAttrs(job)...)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the API server has stopped.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("storage worker stopped", "worker_id", id)
}

// processJob writes everything a job carries. Failures are logged, never
// returned: the client already has its answer.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	if r := job.Response; r != nil {
		if err := p.config.Driver.PutResponse(ctx, r); err != nil {
			p.logger.Error("async response storage failed",
				"user_id", r.UserID,
				"error", err,
			)
		} else {
			p.logger.Debug("response stored",
				"id", r.ID,
				"user_id", r.UserID,
				"preview", utils.Truncate(r.Response, previewLength),
			)
		}
	}

	if d := job.Description; d != nil {
		if err := p.config.Driver.SetDescription(ctx, d.UserID, d.Text); err != nil {
			p.logger.Error("async description storage failed",
				"user_id", d.UserID,
				"error", err,
			)
		} else {
			p.logger.Debug("description stored", "user_id", d.UserID)
		}
	}
}

func jobAttrs(job Job) []any {
	attrs := []any{}
	if job.Response != nil {
		attrs = append(attrs, "kind", "response", "user_id", job.Response.UserID)
	}
	if job.Description != nil {
		attrs = append(attrs, "kind", "description", "user_id", job.Description.UserID)
	}
	return attrs
}
