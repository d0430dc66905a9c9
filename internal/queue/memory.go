package queue

import (
	"container/heap"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/viral-factory/internal/errs"
)

const (
	defaultMaxAttempts = 3
	defaultBackoffBase = time.Second
	defaultConcurrency = 5
)

// DeadJob is a job that exhausted its attempts or failed hard.
type DeadJob struct {
	Job      Job
	Err      string
	FailedAt time.Time
}

type queuedJob struct {
	job      Job
	readyAt  time.Time
	priority int
	seq      uint64
	index    int
}

// readyHeap orders ready jobs by priority (lower first), then enqueue
// sequence.
type readyHeap []*queuedJob

func (h readyHeap) Len() int { return len(h) }
func (h readyHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h readyHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *readyHeap) Push(x any) {
	qj := x.(*queuedJob)
	qj.index = len(*h)
	*h = append(*h, qj)
}
func (h *readyHeap) Pop() any {
	old := *h
	n := len(old)
	qj := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return qj
}

// delayedHeap orders held-back jobs by due time.
type delayedHeap []*queuedJob

func (h delayedHeap) Len() int           { return len(h) }
func (h delayedHeap) Less(i, j int) bool { return h[i].readyAt.Before(h[j].readyAt) }
func (h delayedHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *delayedHeap) Push(x any) {
	qj := x.(*queuedJob)
	qj.index = len(*h)
	*h = append(*h, qj)
}
func (h *delayedHeap) Pop() any {
	old := *h
	n := len(old)
	qj := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return qj
}

type typeQueue struct {
	ready   readyHeap
	delayed delayedHeap
}

// Memory is an in-process Queue with per-type worker pools, delayed
// delivery, priority ordering and bounded exponential-backoff retries.
type Memory struct {
	mu          sync.Mutex
	cond        *sync.Cond
	pending     map[JobType]*typeQueue
	handlers    map[JobType]Handler
	concurrency map[JobType]int
	dead        []DeadJob
	inflight    int
	seq         uint64
	closed      bool

	maxAttempts int
	backoffBase time.Duration
	logger      *log.Logger
	group       *errgroup.Group
}

// NewMemory builds an idle queue; call Register for each job type, then
// Start.
func NewMemory(logger *log.Logger) *Memory {
	m := &Memory{
		pending:     make(map[JobType]*typeQueue),
		handlers:    make(map[JobType]Handler),
		concurrency: make(map[JobType]int),
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
		logger:      logger,
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Register binds a handler and worker count to a job type. Must be called
// before Start.
func (m *Memory) Register(jobType JobType, handler Handler, concurrency int) {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[jobType] = handler
	m.concurrency[jobType] = concurrency
	if m.pending[jobType] == nil {
		m.pending[jobType] = &typeQueue{}
	}
}

// Enqueue adds a job. Job types without a registered handler are accepted
// and sit pending, matching broker behavior.
func (m *Memory) Enqueue(ctx context.Context, jobType JobType, payload any, opts Options) (uuid.UUID, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshaling %s payload: %w", jobType, err)
	}
	job := Job{
		ID:         uuid.New(),
		Type:       jobType,
		Payload:    data,
		Attempt:    1,
		EnqueuedAt: time.Now(),
	}
	m.push(job, opts.Delay, opts.Priority)
	m.logger.Printf("[Queue] enqueued %s job %s (delay %s)", jobType, job.ID, opts.Delay)
	return job.ID, nil
}

func (m *Memory) push(job Job, delay time.Duration, priority int) {
	m.mu.Lock()
	tq := m.pending[job.Type]
	if tq == nil {
		tq = &typeQueue{}
		m.pending[job.Type] = tq
	}
	m.seq++
	qj := &queuedJob{job: job, priority: priority, seq: m.seq}
	if delay > 0 {
		qj.readyAt = time.Now().Add(delay)
		heap.Push(&tq.delayed, qj)
		time.AfterFunc(delay, func() { m.cond.Broadcast() })
	} else {
		heap.Push(&tq.ready, qj)
	}
	m.mu.Unlock()
	m.cond.Broadcast()
}

// Start launches the worker pools. Workers exit when ctx is cancelled or
// Close is called.
func (m *Memory) Start(ctx context.Context) {
	group, ctx := errgroup.WithContext(ctx)
	m.group = group
	go func() {
		<-ctx.Done()
		m.cond.Broadcast()
	}()
	m.mu.Lock()
	defer m.mu.Unlock()
	for jobType, workers := range m.concurrency {
		handler := m.handlers[jobType]
		for i := 0; i < workers; i++ {
			jt := jobType
			group.Go(func() error {
				m.work(ctx, jt, handler)
				return nil
			})
		}
	}
}

// Close stops delivery and waits for in-flight handlers to return.
func (m *Memory) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cond.Broadcast()
	if m.group != nil {
		_ = m.group.Wait()
	}
}

func (m *Memory) work(ctx context.Context, jobType JobType, handler Handler) {
	for {
		qj, ok := m.next(ctx, jobType)
		if !ok {
			return
		}
		err := handler(ctx, qj.job)
		if err != nil {
			// Re-push before dropping inflight so Drain never observes a
			// false idle between failure and retry.
			m.settleFailure(qj, err)
		}
		m.mu.Lock()
		m.inflight--
		m.mu.Unlock()
	}
}

// next blocks until a ready job for jobType exists or the queue shuts down.
// Due delayed jobs are promoted into the ready heap first, so priority
// ordering applies among everything currently runnable.
func (m *Memory) next(ctx context.Context, jobType JobType) (*queuedJob, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		if m.closed || ctx.Err() != nil {
			return nil, false
		}
		tq := m.pending[jobType]
		if tq != nil {
			now := time.Now()
			for tq.delayed.Len() > 0 && !tq.delayed[0].readyAt.After(now) {
				heap.Push(&tq.ready, heap.Pop(&tq.delayed))
			}
			if tq.ready.Len() > 0 {
				qj := heap.Pop(&tq.ready).(*queuedJob)
				m.inflight++
				return qj, true
			}
			if tq.delayed.Len() > 0 {
				// Nothing runnable; arm a wakeup for the next due job.
				time.AfterFunc(tq.delayed[0].readyAt.Sub(now), func() { m.cond.Broadcast() })
			}
		}
		m.cond.Wait()
	}
}

func (m *Memory) settleFailure(qj *queuedJob, err error) {
	job := qj.job
	if errs.IsRetryable(err) && job.Attempt < m.maxAttempts {
		backoff := m.backoffBase << (job.Attempt - 1)
		job.Attempt++
		m.logger.Printf("[Queue] %s job %s failed (attempt %d, retrying in %s): %v",
			job.Type, job.ID, job.Attempt-1, backoff, err)
		m.push(job, backoff, qj.priority)
		return
	}
	m.logger.Printf("[Queue] %s job %s dead-lettered after attempt %d: %v",
		job.Type, job.ID, job.Attempt, err)
	m.mu.Lock()
	m.dead = append(m.dead, DeadJob{Job: job, Err: err.Error(), FailedAt: time.Now()})
	m.mu.Unlock()
}

// DeadLetters returns a snapshot of dead-lettered jobs.
func (m *Memory) DeadLetters() []DeadJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DeadJob, len(m.dead))
	copy(out, m.dead)
	return out
}

// Drain blocks until no jobs are pending or in flight, or the timeout
// elapses. Test helper; delayed jobs count as pending.
func (m *Memory) Drain(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		idle := m.inflight == 0
		for _, tq := range m.pending {
			if tq.ready.Len() > 0 || tq.delayed.Len() > 0 {
				idle = false
				break
			}
		}
		m.mu.Unlock()
		if idle {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
