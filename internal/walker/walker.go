package walker

import (
	"context"
	"fmt"

	"github.com/Iron-Ham/parawalk/internal/errors"
	"github.com/Iron-Ham/parawalk/internal/graph"
	"github.com/Iron-Ham/parawalk/internal/logging"
	"github.com/Iron-Ham/parawalk/internal/pool"
	"github.com/Iron-Ham/parawalk/internal/taskqueue"
	"github.com/jacobsa/syncutil"
)

// Option configures a Walker.
type Option func(*Walker)

// WithLogger sets the logger used for seeding and completion events.
func WithLogger(logger *logging.Logger) Option {
	return func(w *Walker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Walker sums the values of every node reachable from its seeds, expanding
// nodes as tasks on a pool.
type Walker struct {
	pool   *pool.Pool
	logger *logging.Logger

	mu syncutil.InvariantMutex

	// INVARIANT: len(graph.Visited) == graph.Len()
	// INVARIANT: total is the sum of Value over every Done node
	// INVARIANT: visited is the number of Done nodes
	//
	// GUARDED_BY(mu)
	graph *graph.Graph

	// GUARDED_BY(mu)
	total int64

	// GUARDED_BY(mu)
	visited int
}

// New creates a walker over g that runs its tasks on p. Every node of g is
// reset to NotVisited. g must not be touched by anything else until the pool
// has been joined. Graphs not built by graph.Load should pass
// Validate first; it rules out neighbours out of range and totals that
// overflow int64.
func New(g *graph.Graph, p *pool.Pool, opts ...Option) *Walker {
	g.Reset()

	w := &Walker{
		graph:  g,
		pool:   p,
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.mu = syncutil.NewInvariantMutex(w.checkInvariants)
	return w
}

// LOCKS_REQUIRED(w.mu)
func (w *Walker) checkInvariants() {
	if len(w.graph.Visited) != w.graph.Len() {
		panic(fmt.Sprintf("walker: %d visit states for %d nodes", len(w.graph.Visited), w.graph.Len()))
	}

	var sum int64
	var done int
	for i, s := range w.graph.Visited {
		if s == graph.Done {
			sum += w.graph.Nodes[i].Value
			done++
		}
	}
	if sum != w.total {
		panic(fmt.Sprintf("walker: total %d, sum of done nodes %d", w.total, sum))
	}
	if done != w.visited {
		panic(fmt.Sprintf("walker: visited %d, done nodes %d", w.visited, done))
	}
}

// Seed submits one task per start node. All indices are checked before any
// task is submitted. Seeding the same node twice is harmless.
func (w *Walker) Seed(start ...int) error {
	for _, idx := range start {
		if !w.graph.Contains(idx) {
			return errors.NewGraphError(
				fmt.Sprintf("start node %d outside [0, %d)", idx, w.graph.Len()),
				errors.ErrNodeOutOfRange,
			).WithNode(idx)
		}
	}

	for _, idx := range start {
		if err := w.pool.Submit(taskqueue.NewTask(w.process, idx, nil)); err != nil {
			return err
		}
	}
	w.logger.Debug("seeded walk", "start", start)
	return nil
}

// process expands a single node. A node already Done is left alone, so
// duplicate tasks for the same node are harmless.
func (w *Walker) process(s taskqueue.Spawner, idx int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.graph.Visited[idx] == graph.Done {
		return
	}

	node := &w.graph.Nodes[idx]
	w.total += node.Value
	w.graph.Visited[idx] = graph.Done
	w.visited++

	for _, nb := range node.Neighbours {
		if w.graph.Visited[nb] == graph.NotVisited {
			s.Spawn(taskqueue.NewTask(w.process, nb, nil))
		}
	}
}

// Total returns the sum of the values of every node processed so far. It is
// final once the pool has been joined.
func (w *Walker) Total() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.total
}

// Visited returns the number of nodes processed so far.
func (w *Walker) Visited() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visited
}

// Run seeds the walk, joins the pool and returns the total. The pool is
// closed before Run returns. A seeding error is reported only after the join,
// so tasks already submitted always finish. ctx is checked only before
// seeding; a walk in progress runs to completion.
func (w *Walker) Run(ctx context.Context, start ...int) (int64, error) {
	seedErr := ctx.Err()
	if seedErr == nil {
		seedErr = w.Seed(start...)
	}

	if err := w.pool.Wait(); err != nil {
		return 0, err
	}
	if err := w.pool.Close(); err != nil {
		return 0, err
	}
	if seedErr != nil {
		return 0, seedErr
	}

	total := w.Total()
	w.logger.Info("walk finished", "total", total, "visited", w.Visited())
	return total, nil
}

// Run walks g from starts on a fresh pool of the given size and returns the
// total.
func Run(ctx context.Context, g *graph.Graph, workers int, starts ...int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p, err := pool.New(workers)
	if err != nil {
		return 0, err
	}
	return New(g, p).Run(ctx, starts...)
}
