// internal/server/manager.go
package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quilbridge/internal/digest"
	"quilbridge/internal/quil"
	"quilbridge/internal/qvm"
	"quilbridge/internal/sim"
)

var (
	// ErrQueueFull is returned when the pending backlog is at capacity.
	ErrQueueFull = errors.New("server: job queue full")
	// ErrJobTerminal is returned when cancelling a finished job.
	ErrJobTerminal = errors.New("server: job already finished")
)

const retryInterval = time.Second

// Manager owns the job queue and the simulation workers. Jobs are
// persisted before they are queued, so a restart picks up where the
// previous process stopped.
type Manager struct {
	cfg   Config
	store *JobStore
	sim   *sim.Simulator
	log   *zap.Logger

	queue   chan string
	backlog atomic.Int64 // jobs parked in the connected state

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewManager wires a manager over the given store. Call Start before
// submitting jobs.
func NewManager(cfg Config, store *JobStore, log *zap.Logger) *Manager {
	return &Manager{
		cfg:   cfg,
		store: store,
		sim:   &sim.Simulator{MaxQubits: cfg.MaxQubits},
		log:   log,
		queue: make(chan string, cfg.QueueSize),
	}
}

// Start requeues unfinished jobs from the store and launches the
// worker pool.
func (m *Manager) Start(ctx context.Context) error {
	jobs, err := m.store.List()
	if err != nil {
		return fmt.Errorf("requeue jobs: %w", err)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].CreatedAt.Before(jobs[k].CreatedAt) })
	requeued := 0
	for _, j := range jobs {
		switch j.Status {
		case qvm.StatusConnected, qvm.StatusLoaded, qvm.StatusRunning:
		default:
			continue
		}
		if !m.enqueue(j) {
			m.backlog.Add(1)
		}
		requeued++
	}
	if requeued > 0 {
		m.log.Info("requeued unfinished jobs", zap.Int("count", requeued))
	}

	ctx, m.cancel = context.WithCancel(ctx)
	for i := 0; i < m.cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker(ctx)
	}
	m.wg.Add(1)
	go m.retryLoop(ctx)
	return nil
}

// Stop halts the workers. Jobs still queued stay persisted and are
// requeued on the next Start.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// Submit validates, persists and queues a program for execution.
func (m *Manager) Submit(program string, shots int, seed *int64) (*Job, error) {
	if _, err := quil.Parse(program); err != nil {
		return nil, err
	}
	if len(m.queue) == cap(m.queue) && m.backlog.Load() >= int64(m.cfg.QueueSize) {
		return nil, ErrQueueFull
	}

	j := &Job{
		ID:        uuid.New().String(),
		Program:   program,
		Shots:     shots,
		Seed:      seed,
		Digest:    digest.Hex([]byte(program)),
		Status:    qvm.StatusConnected,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.Put(j); err != nil {
		return nil, err
	}
	jobsSubmittedTotal.Inc()
	if !m.enqueue(j) {
		m.backlog.Add(1)
	}
	return j.clone(), nil
}

// enqueue hands the job to a worker if the queue has room, flipping it
// to the loaded state. The job must already be persisted.
func (m *Manager) enqueue(j *Job) bool {
	select {
	case m.queue <- j.ID:
	default:
		return false
	}
	queueDepth.Inc()
	if j.Status != qvm.StatusLoaded {
		j.Status = qvm.StatusLoaded
		if err := m.store.Put(j); err != nil {
			m.log.Warn("persist job status", zap.String("job", j.ID), zap.Error(err))
		}
	}
	return true
}

// Job returns the current record for id.
func (m *Manager) Job(id string) (*Job, error) {
	return m.store.Get(id)
}

// Jobs returns all records, newest first.
func (m *Manager) Jobs() ([]*Job, error) {
	jobs, err := m.store.List()
	if err != nil {
		return nil, err
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].CreatedAt.After(jobs[k].CreatedAt) })
	return jobs, nil
}

// Cancel marks a queued or running job cancelled. Workers will not
// overwrite a cancelled record, though a shot batch already in flight
// runs to completion.
func (m *Manager) Cancel(id string) (*Job, error) {
	j, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}
	if j.Terminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrJobTerminal, id, j.Status)
	}
	wasParked := j.Status == qvm.StatusConnected
	now := time.Now().UTC()
	j.Status = qvm.StatusCancelled
	j.EndedAt = &now
	if err := m.store.Put(j); err != nil {
		return nil, err
	}
	if wasParked {
		m.backlog.Add(-1)
	}
	jobsCompletedTotal.WithLabelValues(qvm.StatusCancelled).Inc()
	m.log.Info("job cancelled", zap.String("job", id))
	return j, nil
}

func (m *Manager) worker(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-m.queue:
			queueDepth.Dec()
			m.run(id)
		}
	}
}

// retryLoop drains the connected backlog as queue slots free up.
func (m *Manager) retryLoop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.backlog.Load() == 0 {
				continue
			}
			jobs, err := m.store.List()
			if err != nil {
				m.log.Warn("list backlog", zap.Error(err))
				continue
			}
			sort.Slice(jobs, func(i, k int) bool { return jobs[i].CreatedAt.Before(jobs[k].CreatedAt) })
			for _, j := range jobs {
				if j.Status != qvm.StatusConnected {
					continue
				}
				if !m.enqueue(j) {
					break
				}
				m.backlog.Add(-1)
			}
		}
	}
}

// run executes one job end to end.
func (m *Manager) run(id string) {
	j, err := m.store.Get(id)
	if err != nil {
		m.log.Warn("load queued job", zap.String("job", id), zap.Error(err))
		return
	}
	if j.Terminal() {
		return
	}

	now := time.Now().UTC()
	j.Status = qvm.StatusRunning
	j.StartedAt = &now
	if err := m.store.Put(j); err != nil {
		m.log.Warn("persist job status", zap.String("job", id), zap.Error(err))
	}

	p, err := quil.Parse(j.Program)
	if err != nil {
		m.fail(j, err)
		return
	}
	var seed int64
	if j.Seed != nil {
		seed = *j.Seed
	}

	start := time.Now()
	rows, err := m.sim.Sample(p, j.Shots, seed)
	elapsed := time.Since(start)
	jobDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.fail(j, err)
		return
	}

	// A cancel issued while the job was simulating wins.
	cur, err := m.store.Get(id)
	if err == nil && cur.Status == qvm.StatusCancelled {
		return
	}

	ended := time.Now().UTC()
	j.Status = qvm.StatusDone
	j.Result = rows
	j.EndedAt = &ended
	if err := m.store.Put(j); err != nil {
		m.log.Error("persist job result", zap.String("job", id), zap.Error(err))
		return
	}
	jobsCompletedTotal.WithLabelValues(qvm.StatusDone).Inc()
	shotsExecutedTotal.Add(float64(j.Shots))
	m.log.Info("job done",
		zap.String("job", id),
		zap.Int("shots", j.Shots),
		zap.Duration("elapsed", elapsed),
	)
}

func (m *Manager) fail(j *Job, cause error) {
	now := time.Now().UTC()
	j.Status = qvm.StatusFailed
	j.Error = cause.Error()
	j.EndedAt = &now
	if err := m.store.Put(j); err != nil {
		m.log.Error("persist job failure", zap.String("job", j.ID), zap.Error(err))
		return
	}
	jobsCompletedTotal.WithLabelValues(qvm.StatusFailed).Inc()
	m.log.Warn("job failed", zap.String("job", j.ID), zap.Error(cause))
}
