package taskqueue

import (
	"fmt"
	"sync"

	"github.com/jacobsa/syncutil"
)

// node is a queue-owned link. Tasks carry no list pointers of their own.
type node struct {
	task *Task
	next *node
}

// Stats is a snapshot of the queue's lifetime counters.
type Stats struct {
	Enqueued uint64 `json:"enqueued"`
	Dequeued uint64 `json:"dequeued"`
	Drained  uint64 `json:"drained"`
	Pending  int    `json:"pending"`
}

// Queue is a blocking LIFO task queue with a cooperative shutdown flag.
// All methods are safe for concurrent use.
type Queue struct {
	mu syncutil.InvariantMutex

	// Signalled on every Enqueue and on RequestShutdown. Waiters poll
	// "head != nil || shutdown", so every wake is a broadcast.
	cond *sync.Cond

	// Top of the stack.
	//
	// GUARDED_BY(mu)
	head *node

	// INVARIANT: count == number of nodes reachable from head
	//
	// GUARDED_BY(mu)
	count int

	// GUARDED_BY(mu)
	shutdown bool

	// INVARIANT: enqueued == dequeued + drained + count
	//
	// GUARDED_BY(mu)
	enqueued uint64
	dequeued uint64
	drained  uint64
}

// New creates an empty queue.
func New() *Queue {
	q := &Queue{}
	q.mu = syncutil.NewInvariantMutex(q.checkInvariants)
	q.cond = sync.NewCond(&q.mu)
	return q
}

// LOCKS_REQUIRED(q.mu)
func (q *Queue) checkInvariants() {
	n := 0
	for cur := q.head; cur != nil; cur = cur.next {
		if cur.task == nil {
			panic(fmt.Sprintf("nil task linked at depth %d", n))
		}
		n++
	}

	// INVARIANT: count == number of nodes reachable from head
	if n != q.count {
		panic(fmt.Sprintf("count mismatch: %d linked vs. count %d", n, q.count))
	}

	// INVARIANT: enqueued == dequeued + drained + count
	if q.enqueued != q.dequeued+q.drained+uint64(q.count) {
		panic(fmt.Sprintf(
			"counter mismatch: enqueued %d, dequeued %d, drained %d, count %d",
			q.enqueued, q.dequeued, q.drained, q.count))
	}
}

// Enqueue pushes t onto the queue and wakes every blocked Dequeue. It never
// blocks on capacity and is accepted whether or not shutdown was requested,
// since running tasks may still produce follow-up work. See TryEnqueue.
func (q *Queue) Enqueue(t *Task) {
	if t == nil {
		panic("taskqueue: enqueue nil task")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.push(t)
}

// TryEnqueue pushes t unless shutdown has been requested, deciding under the
// same lock hold that RequestShutdown takes. It reports whether t was
// enqueued; on false the caller still owns t.
func (q *Queue) TryEnqueue(t *Task) bool {
	if t == nil {
		panic("taskqueue: enqueue nil task")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.shutdown {
		return false
	}
	q.push(t)
	return true
}

// LOCKS_REQUIRED(q.mu)
func (q *Queue) push(t *Task) {
	q.head = &node{task: t, next: q.head}
	q.count++
	q.enqueued++
	q.cond.Broadcast()
}

// Dequeue removes and returns the most recently enqueued task, blocking while
// the queue is empty and shutdown has not been requested. It returns nil only
// after observing an empty queue with shutdown requested.
func (q *Queue) Dequeue() *Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.head == nil && !q.shutdown {
		q.cond.Wait()
	}

	if q.head == nil {
		return nil
	}

	n := q.head
	q.head = n.next
	n.next = nil
	q.count--
	q.dequeued++
	return n.task
}

// RequestShutdown raises the shutdown flag and wakes every blocked Dequeue.
// Queued tasks are not discarded. It returns false if shutdown was already
// requested.
func (q *Queue) RequestShutdown() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.shutdown {
		return false
	}
	q.shutdown = true
	q.cond.Broadcast()
	return true
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Stats returns a snapshot of the queue's counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Enqueued: q.enqueued,
		Dequeued: q.dequeued,
		Drained:  q.drained,
		Pending:  q.count,
	}
}

// Drain unlinks and returns every queued task in retrieval order. The caller
// takes ownership of the returned tasks.
func (q *Queue) Drain() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	tasks := make([]*Task, 0, q.count)
	for q.head != nil {
		n := q.head
		q.head = n.next
		tasks = append(tasks, n.task)
	}
	q.drained += uint64(q.count)
	q.count = 0
	return tasks
}
