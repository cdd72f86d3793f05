// Package walker computes the sum of node values over the part of a graph
// reachable from one or more start nodes, using a worker pool.
//
// Each node is expanded by its own task. Processing a node takes the walker
// lock, adds the node's value once, marks it Done and spawns tasks for its
// neighbours that are still NotVisited. Several tasks may target the same
// node; every one after the first finds it Done and returns. The total is
// therefore independent of the worker count and of task ordering.
//
// Basic usage:
//
//	p, err := pool.New(4)
//	if err != nil {
//	    return err
//	}
//	w := walker.New(g, p)
//	if err := w.Seed(0); err != nil {
//	    return err
//	}
//	if err := p.Wait(); err != nil {
//	    return err
//	}
//	total := w.Total()
//
// The walker lock and the queue lock are never held in the opposite order:
// while the walker lock is held, the only queue operation performed is the
// enqueue behind Spawn.
package walker
