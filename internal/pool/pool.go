package pool

import (
	"sync"
	"sync/atomic"

	"github.com/Iron-Ham/parawalk/internal/errors"
	"github.com/Iron-Ham/parawalk/internal/logging"
	"github.com/Iron-Ham/parawalk/internal/taskqueue"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the logger used for worker lifecycle events.
func WithLogger(logger *logging.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Pool is a fixed set of workers draining a shared task queue.
type Pool struct {
	queue   *taskqueue.Queue
	size    int
	logger  *logging.Logger
	group   errgroup.Group
	metrics *metrics

	executed atomic.Uint64
	rejected atomic.Uint64
	running  atomic.Int64

	// mu orders Wait and Close. It is never held while the queue lock is
	// requested from a worker, and workers never take it.
	mu      sync.Mutex
	joining bool
	joined  bool
	closed  bool
}

// New starts a pool of n workers. The workers block on the empty queue until
// tasks are submitted.
func New(n int, opts ...Option) (*Pool, error) {
	if n < 1 {
		return nil, errors.NewPoolError("cannot start pool", errors.ErrInvalidWorkerCount).WithWorkers(n)
	}

	p := &Pool{
		queue:  taskqueue.New(),
		size:   n,
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.metrics = newMetrics(p)

	for i := 0; i < n; i++ {
		w := &worker{
			id:     i,
			pool:   p,
			logger: p.logger.WithWorker(i),
		}
		p.running.Add(1)
		p.group.Go(w.run)
	}

	p.logger.Debug("pool started", "workers", n)
	return p, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Submit hands t to the pool from outside the workers. It fails with
// ErrShutdownRequested once Wait has begun; in that case t is destroyed
// without running. Tasks already executing submit follow-up work through the
// Spawner passed to them, which is never rejected.
func (p *Pool) Submit(t *taskqueue.Task) error {
	if p.queue.TryEnqueue(t) {
		return nil
	}

	p.rejected.Add(1)
	t.Destroy()
	p.logger.Warn("rejected submission after shutdown request")
	return errors.NewPoolError("submit rejected", errors.ErrShutdownRequested).WithWorkers(p.size)
}

// Wait requests shutdown and blocks until every worker has exited. After it
// returns, all submitted and spawned tasks have run and the queue is empty.
// Only the first call waits; later calls return ErrAlreadyJoined.
func (p *Pool) Wait() error {
	p.mu.Lock()
	if p.joining {
		p.mu.Unlock()
		return errors.NewPoolError("wait called twice", errors.ErrAlreadyJoined).WithWorkers(p.size)
	}
	p.joining = true
	p.mu.Unlock()

	p.queue.RequestShutdown()
	err := p.group.Wait()

	p.mu.Lock()
	p.joined = true
	p.mu.Unlock()

	stats := p.queue.Stats()
	p.logger.Debug("pool joined",
		"enqueued", stats.Enqueued,
		"executed", p.executed.Load(),
		"rejected", p.rejected.Load(),
	)
	return err
}

// Close destroys any tasks still linked in the queue. It is valid only after
// Wait has returned; calling it earlier returns ErrNotJoined. Close is
// idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.joined {
		return errors.NewPoolError("close before join", errors.ErrNotJoined).WithWorkers(p.size)
	}
	if p.closed {
		return nil
	}
	p.closed = true

	leftover := p.queue.Drain()
	for _, t := range leftover {
		t.Destroy()
	}
	if len(leftover) > 0 {
		p.logger.Warn("destroyed tasks left after join", "count", len(leftover))
	}
	return nil
}

// Stats returns a snapshot of the underlying queue's counters.
func (p *Pool) Stats() taskqueue.Stats {
	return p.queue.Stats()
}

// Registry returns the prometheus registry holding this pool's metrics.
func (p *Pool) Registry() *prometheus.Registry {
	return p.metrics.registry
}

// worker is one of the pool's goroutines. It is the Spawner handed to every
// task it executes.
type worker struct {
	id       int
	pool     *Pool
	logger   *logging.Logger
	executed int
}

// Spawn enqueues follow-up work. It is accepted even after shutdown has been
// requested, because the spawning worker has not yet looked for its next task.
func (w *worker) Spawn(t *taskqueue.Task) {
	w.pool.queue.Enqueue(t)
}

func (w *worker) run() error {
	defer w.pool.running.Add(-1)
	w.logger.Debug("worker started")

	for {
		t := w.pool.queue.Dequeue()
		if t == nil {
			break
		}
		t.Execute(w)
		t.Destroy()
		w.executed++
		w.pool.executed.Add(1)
	}

	w.logger.Debug("worker exited", "executed", w.executed)
	return nil
}
