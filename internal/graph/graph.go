// Package graph holds the node data traversed by the walker and loads it from
// text or YAML descriptions.
//
// A Graph is plain data and is not safe for concurrent use. The walker guards
// Visited and its running total with its own lock.
package graph

import (
	"fmt"
	"math"

	"github.com/Iron-Ham/parawalk/internal/errors"
)

// State is a node's traversal state.
type State uint8

const (
	// NotVisited is the initial state of every node.
	NotVisited State = iota
	// Done marks a node whose value has been counted and whose neighbours
	// have been expanded. It is terminal.
	Done
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case NotVisited:
		return "not-visited"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Node is a single graph vertex.
type Node struct {
	Value      int64 `yaml:"value" json:"value"`
	Neighbours []int `yaml:"neighbours" json:"neighbours"`
}

// Graph is a set of nodes addressed by index plus their traversal states.
type Graph struct {
	Nodes   []Node
	Visited []State
}

// New creates a graph over nodes with every node NotVisited. The slice is
// used as is, not copied.
func New(nodes []Node) *Graph {
	return &Graph{
		Nodes:   nodes,
		Visited: make([]State, len(nodes)),
	}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// Contains reports whether idx names a node.
func (g *Graph) Contains(idx int) bool {
	return idx >= 0 && idx < len(g.Nodes)
}

// Reset sizes Visited to the node count and marks every node NotVisited.
func (g *Graph) Reset() {
	if len(g.Visited) != len(g.Nodes) {
		g.Visited = make([]State, len(g.Nodes))
		return
	}
	for i := range g.Visited {
		g.Visited[i] = NotVisited
	}
}

// Validate checks that every neighbour index names a node and that no subset
// of node values can overflow an int64 total.
func (g *Graph) Validate() error {
	// Any partial sum lies between the sum of the negative values and the
	// sum of the positive values, so bounding those two bounds every total.
	var pos, neg int64
	for i, n := range g.Nodes {
		if (n.Value > 0 && pos > math.MaxInt64-n.Value) || (n.Value < 0 && neg < math.MinInt64-n.Value) {
			return errors.NewGraphError(
				fmt.Sprintf("value %d can overflow the total", n.Value),
				errors.ErrInvalidGraph,
			).WithNode(i)
		}
		if n.Value > 0 {
			pos += n.Value
		} else {
			neg += n.Value
		}
	}

	for i, n := range g.Nodes {
		for _, nb := range n.Neighbours {
			if !g.Contains(nb) {
				return errors.NewGraphError(
					fmt.Sprintf("neighbour %d out of range [0, %d)", nb, len(g.Nodes)),
					errors.ErrNodeOutOfRange,
				).WithNode(i)
			}
		}
	}
	return nil
}

// AddEdge links a and b in both directions.
func (g *Graph) AddEdge(a, b int) {
	g.Nodes[a].Neighbours = append(g.Nodes[a].Neighbours, b)
	g.Nodes[b].Neighbours = append(g.Nodes[b].Neighbours, a)
}
