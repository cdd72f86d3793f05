package errors

import (
	"errors"
	"fmt"
	"testing"
)

// -----------------------------------------------------------------------------
// PoolError Tests
// -----------------------------------------------------------------------------

func TestPoolError(t *testing.T) {
	err := NewPoolError("submit rejected", ErrShutdownRequested).WithWorkers(4)

	want := "pool error [workers=4]: submit rejected: pool shutdown already requested"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrShutdownRequested) {
		t.Error("errors.Is(err, ErrShutdownRequested) = false, want true")
	}
	if !IsUserFacing(err) {
		t.Error("IsUserFacing() = false, want true")
	}
}

func TestPoolError_NoWorkers(t *testing.T) {
	err := NewPoolError("close before join", nil)
	if got, want := err.Error(), "pool error: close before join"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// -----------------------------------------------------------------------------
// GraphError Tests
// -----------------------------------------------------------------------------

func TestGraphError(t *testing.T) {
	tests := []struct {
		name string
		err  *GraphError
		want string
	}{
		{
			name: "no context",
			err:  NewGraphError("empty input", ErrInvalidGraph),
			want: "graph error: empty input: invalid graph",
		},
		{
			name: "path and line",
			err:  NewGraphError("bad edge", ErrInvalidGraph).WithPath("g.in").WithLine(3),
			want: "graph error [path=g.in, line=3]: bad edge: invalid graph",
		},
		{
			name: "node zero is reported",
			err:  NewGraphError("neighbour out of range", ErrNodeOutOfRange).WithNode(0),
			want: "graph error [node=0]: neighbour out of range: node index out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if !IsUserFacing(tt.err) {
				t.Error("IsUserFacing() = false, want true")
			}
		})
	}
}

func TestGraphError_As(t *testing.T) {
	var err error = fmt.Errorf("load: %w", NewGraphError("bad", ErrInvalidGraph).WithPath("x"))

	var graphErr *GraphError
	if !As(err, &graphErr) {
		t.Fatal("As(*GraphError) = false, want true")
	}
	if graphErr.Path != "x" {
		t.Errorf("Path = %q, want %q", graphErr.Path, "x")
	}
	if !Is(err, ErrInvalidGraph) {
		t.Error("Is(ErrInvalidGraph) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// ValidationError Tests
// -----------------------------------------------------------------------------

func TestValidationError(t *testing.T) {
	err := NewValidationError("must be positive").WithField("pool.workers").WithValue(0)

	want := "validation error [field=pool.workers, value=0]: must be positive"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("errors.Is(err, ErrInvalidInput) = false, want true")
	}
}

func TestValidationError_Cause(t *testing.T) {
	cause := New("yaml: line 2: did not find expected key")
	err := NewValidationError("cannot read config file").WithField("config").WithValue("c.yaml").WithCause(cause)

	want := "validation error [field=config, value=c.yaml]: cannot read config file: yaml: line 2: did not find expected key"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, cause) {
		t.Error("error should match both ErrInvalidInput and its cause")
	}
}

// -----------------------------------------------------------------------------
// Helper Tests
// -----------------------------------------------------------------------------

func TestClassification_PlainErrors(t *testing.T) {
	plain := New("boom")

	if IsUserFacing(plain) {
		t.Error("IsUserFacing(plain) = true, want false")
	}
	if !IsUserFacing(fmt.Errorf("context: %w", NewValidationError("bad"))) {
		t.Error("IsUserFacing(wrapped validation error) = false, want true")
	}
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true, want false")
	}
}
