package taskqueue

import "fmt"

// TaskState represents where a task is in its single-use lifecycle.
type TaskState int

const (
	// TaskPending indicates the task has been created but not executed.
	TaskPending TaskState = iota

	// TaskExecuted indicates the task's action has been run.
	TaskExecuted

	// TaskDestroyed indicates the task's argument has been released.
	TaskDestroyed
)

// String returns the string representation of the task state.
func (s TaskState) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskExecuted:
		return "executed"
	case TaskDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("TaskState(%d)", int(s))
	}
}

// Spawner accepts follow-up tasks produced by a running task.
type Spawner interface {
	Spawn(t *Task)
}

// Task is a single unit of work. A task has exactly one owner at a time and
// is not safe for concurrent use; ownership moves between goroutines only
// through the Queue, whose lock orders the handoff.
type Task struct {
	run     func(Spawner)
	destroy func()
	state   TaskState
}

// NewTask creates a task that calls action(s, arg) when executed. If destroy
// is non-nil it is called with arg exactly once when the task is destroyed,
// whether or not the task ever ran.
func NewTask[A any](action func(Spawner, A), arg A, destroy func(A)) *Task {
	if action == nil {
		panic("taskqueue: nil action")
	}

	t := &Task{
		run: func(s Spawner) { action(s, arg) },
	}
	if destroy != nil {
		t.destroy = func() { destroy(arg) }
	}
	return t
}

// Func creates a task with no argument and no destructor.
func Func(action func(Spawner)) *Task {
	if action == nil {
		panic("taskqueue: nil action")
	}
	return &Task{run: action}
}

// State returns the task's lifecycle state. Only the current owner may call it.
func (t *Task) State() TaskState {
	return t.state
}

// Execute runs the task's action. It panics if the task was already executed
// or destroyed.
func (t *Task) Execute(s Spawner) {
	if t.state != TaskPending {
		panic(fmt.Sprintf("taskqueue: execute task in state %s", t.state))
	}
	t.state = TaskExecuted
	t.run(s)
}

// Destroy releases the task's argument. A pending task may be destroyed
// without running, e.g. when it is rejected or drained. Destroy panics if the
// task was already destroyed.
func (t *Task) Destroy() {
	if t.state == TaskDestroyed {
		panic("taskqueue: task destroyed twice")
	}
	t.state = TaskDestroyed
	if t.destroy != nil {
		t.destroy()
	}
	t.run = nil
	t.destroy = nil
}
