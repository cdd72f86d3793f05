// Package taskqueue provides the unit of work and the synchronized queue
// shared by a fixed set of workers.
//
// A [Task] is a closure over an owned argument plus an optional destructor.
// It moves through exactly one owner at a time: the producer creates it, the
// [Queue] holds it while enqueued, and a single worker receives it from
// [Queue.Dequeue], executes it once, and destroys it once.
//
// The queue is a stack: Enqueue and Dequeue operate on the same end, so the
// most recently enqueued task is retrieved first. Workers that produce
// follow-up tasks therefore tend to continue depth-first on their own work.
//
// Termination is cooperative. [Queue.RequestShutdown] does not discard
// queued work and does not stop producers; it only changes what Dequeue does
// when it finds the queue empty. Dequeue returns nil only when, under the
// queue lock, the queue is empty and shutdown has been requested.
//
// Usage:
//
//	q := taskqueue.New()
//	q.Enqueue(taskqueue.NewTask(visit, 0, nil))
//
//	// worker loop
//	for {
//	    t := q.Dequeue()
//	    if t == nil {
//	        return
//	    }
//	    t.Execute(spawner)
//	    t.Destroy()
//	}
package taskqueue
