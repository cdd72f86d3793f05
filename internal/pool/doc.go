// Package pool runs a fixed number of long-lived workers against a shared
// [taskqueue.Queue].
//
// Each worker loops: dequeue a task, execute it, destroy it. A task's action
// receives its worker as a [taskqueue.Spawner], so running tasks can submit
// follow-up work; the pool is self-sustaining until no task produces more.
//
// # Lifecycle
//
//	p, err := pool.New(4, pool.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := p.Submit(seed); err != nil {
//	    return err
//	}
//	if err := p.Wait(); err != nil { // request shutdown, join all workers
//	    return err
//	}
//	return p.Close()
//
// Wait raises the queue's shutdown flag and blocks until every worker has
// exited. A worker exits only after finding the queue empty with shutdown
// set; a worker still executing a task has not asked for more work yet, so
// any tasks it spawns are picked up before it can exit. Wait must therefore
// be called after the last external Submit. Submit calls that arrive after
// Wait has begun are rejected with [errors.ErrShutdownRequested].
//
// # Metrics
//
// Each pool owns a prometheus registry, available from [Pool.Registry],
// exposing task and worker counters under the parawalk_pool_ prefix.
package pool
