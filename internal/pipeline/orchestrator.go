package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dbarrow/outliner/internal/config"
	"github.com/dbarrow/outliner/internal/recommend"
	"github.com/dbarrow/outliner/internal/schema"
	"github.com/dbarrow/outliner/internal/store"
)

// Orchestrator manages the document processing pipeline.
type Orchestrator struct {
	jobs   *JobStore
	queue  chan *Job
	worker *Worker
	stats  *Stats
	dedup  *dedupIndex
	log    *slog.Logger
	cfg    config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewOrchestrator wires the pipeline around caller-owned collaborators.
func NewOrchestrator(cfg config.Config, st *store.Store, eng *recommend.Engine, val *schema.Validator, log *slog.Logger) *Orchestrator {
	stats := NewStats(time.Hour)
	dedup := newDedupIndex()
	return &Orchestrator{
		jobs:   NewJobStore(cfg.JobTTL),
		queue:  make(chan *Job, cfg.MaxQueueSize),
		worker: NewWorker(st, eng, val, stats, dedup, log, cfg.OutlineOptions(), cfg.ExtendedOutput),
		stats:  stats,
		dedup:  dedup,
		log:    log,
		cfg:    cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.worker.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline. Safe to call more than once;
// Submit calls racing Stop fail cleanly instead of sending on a closed queue.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.queue)
	}
	o.mu.Unlock()
	o.wg.Wait()
}

// Submit queues a new job for background processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		job.SetStatus(StatusFailed, "shutdown")
		job.finish()
		return fmt.Errorf("pipeline is shutting down")
	}
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		job.finish()
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// ProcessSync runs a job to completion on the calling goroutine. Used by the
// single-upload path where the caller waits for the result.
func (o *Orchestrator) ProcessSync(ctx context.Context, job *Job) {
	o.jobs.Put(job)
	o.worker.Process(ctx, job)
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns a snapshot of pipeline counters and latencies.
func (o *Orchestrator) Stats() StatsSnapshot {
	return o.stats.Snapshot()
}

// ForgetSession drops the session's duplicate-detection state. Called when a
// session is cleaned up.
func (o *Orchestrator) ForgetSession(sessionID string) {
	o.dedup.forgetSession(sessionID)
}
