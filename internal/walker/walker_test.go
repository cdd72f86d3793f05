package walker

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"testing"

	"github.com/Iron-Ham/parawalk/internal/errors"
	"github.com/Iron-Ham/parawalk/internal/graph"
	"github.com/Iron-Ham/parawalk/internal/pool"
	"github.com/jacobsa/syncutil"
)

func TestMain(m *testing.M) {
	syncutil.EnableInvariantChecking()
	os.Exit(m.Run())
}

var workerCounts = []int{1, 2, 4, 16}

// exampleGraph is {0:10->[1,2], 1:20->[2], 2:30->[]}, plus an isolated node
// 3 valued 99 when withIsland is set.
func exampleGraph(withIsland bool) *graph.Graph {
	nodes := []graph.Node{
		{Value: 10, Neighbours: []int{1, 2}},
		{Value: 20, Neighbours: []int{2}},
		{Value: 30},
	}
	if withIsland {
		nodes = append(nodes, graph.Node{Value: 99})
	}
	return graph.New(nodes)
}

// reachableSum walks g sequentially and returns the reference total and
// reachable node count.
func reachableSum(g *graph.Graph, starts ...int) (int64, int) {
	seen := make([]bool, g.Len())
	stack := append([]int(nil), starts...)
	var total int64
	var count int
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[idx] {
			continue
		}
		seen[idx] = true
		total += g.Nodes[idx].Value
		count++
		stack = append(stack, g.Nodes[idx].Neighbours...)
	}
	return total, count
}

func randomGraph(r *rand.Rand, n, edges int) *graph.Graph {
	nodes := make([]graph.Node, n)
	for i := range nodes {
		nodes[i].Value = r.Int63n(2000) - 1000
	}
	g := graph.New(nodes)
	for i := 0; i < edges; i++ {
		g.AddEdge(r.Intn(n), r.Intn(n))
	}
	return g
}

func walk(t *testing.T, g *graph.Graph, workers int, starts ...int) *Walker {
	t.Helper()
	p, err := pool.New(workers)
	if err != nil {
		t.Fatalf("pool.New(%d): %v", workers, err)
	}
	w := New(g, p)
	if err := w.Seed(starts...); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := p.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return w
}

func TestWalker_ExampleGraph(t *testing.T) {
	for _, n := range workerCounts {
		t.Run(fmt.Sprintf("workers=%d", n), func(t *testing.T) {
			w := walk(t, exampleGraph(false), n, 0)
			if got := w.Total(); got != 60 {
				t.Errorf("Total() = %d, want 60", got)
			}
			if got := w.Visited(); got != 3 {
				t.Errorf("Visited() = %d, want 3", got)
			}
		})
	}
}

func TestWalker_ExcludesUnreachableNodes(t *testing.T) {
	nodes := []graph.Node{
		{Value: 10, Neighbours: []int{1, 2}},
		{Value: 20, Neighbours: []int{2}},
		{Value: 30},
		{Value: 1, Neighbours: []int{4}},
		{Value: 2},
		{Value: 99, Neighbours: []int{0}},
	}
	g := graph.New(nodes)

	w := walk(t, g, 4, 0)
	if got := w.Total(); got != 60 {
		t.Errorf("Total() = %d, want 60", got)
	}
	for idx, want := range []graph.State{graph.Done, graph.Done, graph.Done, graph.NotVisited, graph.NotVisited, graph.NotVisited} {
		if g.Visited[idx] != want {
			t.Errorf("node %d state = %s, want %s", idx, g.Visited[idx], want)
		}
	}
}

func TestWalker_MatchesSequentialReference(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for trial := 0; trial < 5; trial++ {
		g := randomGraph(r, 200, 300)
		starts := []int{r.Intn(200), r.Intn(200)}
		wantTotal, wantCount := reachableSum(g, starts...)

		for _, n := range workerCounts {
			t.Run(fmt.Sprintf("trial=%d/workers=%d", trial, n), func(t *testing.T) {
				w := walk(t, g, n, starts...)
				if got := w.Total(); got != wantTotal {
					t.Errorf("Total() = %d, want %d", got, wantTotal)
				}
				if got := w.Visited(); got != wantCount {
					t.Errorf("Visited() = %d, want %d", got, wantCount)
				}

				done := 0
				for _, s := range g.Visited {
					if s == graph.Done {
						done++
					}
				}
				if done != wantCount {
					t.Errorf("%d nodes Done, want %d", done, wantCount)
				}
			})
		}
	}
}

func TestWalker_DuplicateTasksDoNotDoubleCount(t *testing.T) {
	// Every node points at node 0, so node 0 is targeted by many tasks.
	const n = 64
	nodes := make([]graph.Node, n)
	for i := range nodes {
		nodes[i].Value = int64(i + 1)
		nodes[i].Neighbours = []int{0}
	}
	g := graph.New(nodes)

	starts := make([]int, 0, 3*n)
	for i := 0; i < 3; i++ {
		for j := 0; j < n; j++ {
			starts = append(starts, j)
		}
	}

	for _, workers := range workerCounts {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			w := walk(t, g, workers, starts...)
			if got, want := w.Total(), int64(n*(n+1)/2); got != want {
				t.Errorf("Total() = %d, want %d", got, want)
			}
			if got := w.Visited(); got != n {
				t.Errorf("Visited() = %d, want %d", got, n)
			}
		})
	}
}

func TestWalker_SelfLoopAndCycle(t *testing.T) {
	g := graph.New([]graph.Node{
		{Value: 5, Neighbours: []int{0, 1}},
		{Value: 7, Neighbours: []int{2}},
		{Value: -3, Neighbours: []int{0}},
	})
	w := walk(t, g, 2, 1)
	if got := w.Total(); got != 9 {
		t.Errorf("Total() = %d, want 9", got)
	}
}

func TestWalker_SeedOutOfRange(t *testing.T) {
	p, err := pool.New(2)
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	w := New(exampleGraph(false), p)

	for _, idx := range []int{-1, 3} {
		err := w.Seed(0, idx)
		if !errors.Is(err, errors.ErrNodeOutOfRange) {
			t.Errorf("Seed(0, %d) error = %v, want ErrNodeOutOfRange", idx, err)
		}
	}

	if err := p.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got := w.Total(); got != 0 {
		t.Errorf("Total() = %d after rejected seeds, want 0", got)
	}
}

func TestWalker_NewResetsVisited(t *testing.T) {
	g := exampleGraph(false)
	first := walk(t, g, 2, 0)
	if first.Total() != 60 {
		t.Fatalf("first walk total = %d, want 60", first.Total())
	}

	second := walk(t, g, 2, 1)
	if got := second.Total(); got != 50 {
		t.Errorf("second walk total = %d, want 50", got)
	}
}

func TestRun(t *testing.T) {
	total, err := Run(context.Background(), exampleGraph(true), 4, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if total != 60 {
		t.Errorf("Run() = %d, want 60", total)
	}

	total, err = Run(context.Background(), exampleGraph(true), 4, 3, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if total != 159 {
		t.Errorf("Run() with two seeds = %d, want 159", total)
	}
}

func TestRun_Errors(t *testing.T) {
	if _, err := Run(context.Background(), exampleGraph(false), 0, 0); !errors.Is(err, errors.ErrInvalidWorkerCount) {
		t.Errorf("Run with 0 workers error = %v, want ErrInvalidWorkerCount", err)
	}
	if _, err := Run(context.Background(), exampleGraph(false), 2, 9); !errors.Is(err, errors.ErrNodeOutOfRange) {
		t.Errorf("Run with bad start error = %v, want ErrNodeOutOfRange", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, exampleGraph(false), 2, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Run with cancelled context error = %v, want context.Canceled", err)
	}
}

func TestWalker_RunJoinsBeforeReportingErrors(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name   string
		ctx    context.Context
		starts []int
		wantIs error
	}{
		{name: "bad start", ctx: context.Background(), starts: []int{0, 9}, wantIs: errors.ErrNodeOutOfRange},
		{name: "cancelled", ctx: cancelled, starts: []int{0}, wantIs: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := pool.New(2)
			if err != nil {
				t.Fatalf("pool.New: %v", err)
			}
			w := New(exampleGraph(false), p)

			if _, err := w.Run(tt.ctx, tt.starts...); !errors.Is(err, tt.wantIs) {
				t.Fatalf("Run() error = %v, want %v", err, tt.wantIs)
			}
			if err := p.Wait(); !errors.Is(err, errors.ErrAlreadyJoined) {
				t.Errorf("pool not joined by Run: Wait() = %v", err)
			}
			if w.Visited() != 0 {
				t.Errorf("Visited() = %d, want 0", w.Visited())
			}
		})
	}
}
