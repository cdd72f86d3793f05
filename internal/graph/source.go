package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Iron-Ham/parawalk/internal/errors"
	"gopkg.in/yaml.v3"
)

// Format identifies a graph description format.
type Format string

const (
	// FormatText is "N M", then N node values, then M undirected edges "a b".
	// Tokens are whitespace separated and may span lines freely.
	FormatText Format = "text"

	// FormatYAML is a document with a "nodes" list of {value, neighbours}.
	// Neighbour lists are directed as written. JSON input is accepted too.
	FormatYAML Format = "yaml"
)

// FormatForPath picks a format from the file extension. Unknown extensions
// are read as text.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return FormatYAML
	default:
		return FormatText
	}
}

// Load reads and validates the graph at path. The format is chosen by
// FormatForPath.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewGraphError("cannot open graph", err).WithPath(path)
	}
	defer f.Close()

	g, err := Parse(f, FormatForPath(path))
	if err != nil {
		var graphErr *errors.GraphError
		if errors.As(err, &graphErr) {
			return nil, graphErr.WithPath(path)
		}
		return nil, errors.NewGraphError("cannot read graph", err).WithPath(path)
	}
	return g, nil
}

// Parse reads a graph in the given format and validates it.
func Parse(r io.Reader, format Format) (*Graph, error) {
	var (
		g   *Graph
		err error
	)
	switch format {
	case FormatText:
		g, err = ParseText(r)
	case FormatYAML:
		g, err = ParseYAML(r)
	default:
		return nil, errors.NewGraphError(fmt.Sprintf("unknown format %q", format), errors.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// maxTextNodes bounds the node count accepted from a text header.
const maxTextNodes = 1 << 26

// tokenizer yields whitespace-separated integers and remembers the line each
// came from.
type tokenizer struct {
	sc      *bufio.Scanner
	line    int
	pending []string
}

func newTokenizer(r io.Reader) *tokenizer {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &tokenizer{sc: sc}
}

// next returns the next integer, naming what was expected on failure.
func (t *tokenizer) next(what string) (int64, error) {
	for len(t.pending) == 0 {
		if !t.sc.Scan() {
			if err := t.sc.Err(); err != nil {
				return 0, errors.NewGraphError("read failed", err).WithLine(t.line)
			}
			return 0, errors.NewGraphError(
				fmt.Sprintf("unexpected end of input, want %s", what),
				errors.ErrInvalidGraph,
			).WithLine(t.line)
		}
		t.line++
		t.pending = strings.Fields(t.sc.Text())
	}

	tok := t.pending[0]
	t.pending = t.pending[1:]

	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, errors.NewGraphError(
			fmt.Sprintf("want %s, got %q", what, tok),
			errors.ErrInvalidGraph,
		).WithLine(t.line)
	}
	return v, nil
}

// ParseText reads the text format. Each edge is added in both directions.
func ParseText(r io.Reader) (*Graph, error) {
	tk := newTokenizer(r)

	n, err := tk.next("node count")
	if err != nil {
		return nil, err
	}
	m, err := tk.next("edge count")
	if err != nil {
		return nil, err
	}
	if n < 0 || m < 0 || n > maxTextNodes {
		return nil, errors.NewGraphError(
			fmt.Sprintf("bad header %d %d", n, m),
			errors.ErrInvalidGraph,
		).WithLine(tk.line)
	}

	nodes := make([]Node, n)
	for i := range nodes {
		v, err := tk.next(fmt.Sprintf("value of node %d", i))
		if err != nil {
			return nil, err
		}
		nodes[i].Value = v
	}

	g := New(nodes)
	for i := int64(0); i < m; i++ {
		a, err := tk.next(fmt.Sprintf("edge %d source", i))
		if err != nil {
			return nil, err
		}
		b, err := tk.next(fmt.Sprintf("edge %d target", i))
		if err != nil {
			return nil, err
		}
		for _, end := range []int64{a, b} {
			if end < 0 || end >= n {
				return nil, errors.NewGraphError(
					fmt.Sprintf("edge %d endpoint %d out of range [0, %d)", i, end, n),
					errors.ErrNodeOutOfRange,
				).WithLine(tk.line)
			}
		}
		g.AddEdge(int(a), int(b))
	}

	return g, nil
}

// yamlGraph is the on-disk YAML shape.
type yamlGraph struct {
	Nodes []Node `yaml:"nodes"`
}

// ParseYAML reads the YAML (or JSON) format.
func ParseYAML(r io.Reader) (*Graph, error) {
	var doc yamlGraph
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, errors.NewGraphError("empty document", errors.ErrInvalidGraph)
		}
		return nil, errors.NewGraphError("cannot decode yaml", errors.Join(errors.ErrInvalidGraph, err))
	}
	return New(doc.Nodes), nil
}
