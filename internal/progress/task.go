package progress

import (
	"context"
	"sync"

	"studykit/internal/domain"
)

// Snapshot is a point-in-time view of a task.
type Snapshot struct {
	ID       string          `json:"id"`
	State    domain.JobState `json:"state"`
	Progress int             `json:"progress"`
}

// Task is the handle of one running schedule.
type Task struct {
	id string

	// emitMu orders reports against cancellation: once Cancel returns, no report follows.
	emitMu sync.Mutex

	mu       sync.Mutex
	state    domain.JobState
	progress int

	cancel context.CancelFunc
	done   chan struct{}
}

func newTask(id string, cancel context.CancelFunc) *Task {
	return &Task{
		id:     id,
		state:  domain.JobPending,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// ID returns the task identifier.
func (t *Task) ID() string {
	return t.id
}

// Snapshot returns the current state and progress.
// A succeeded task reports progress 0.
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{ID: t.id, State: t.state, Progress: t.progress}
}

// Done is closed once the task reached a terminal state and released its ticker.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Cancel stops the task. It reports whether this call moved the task to cancelled.
func (t *Task) Cancel() bool {
	t.emitMu.Lock()
	changed := t.markCancelled()
	t.emitMu.Unlock()
	t.cancel()
	return changed
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) (domain.JobState, error) {
	select {
	case <-t.done:
		return t.Snapshot().State, nil
	case <-ctx.Done():
		return t.Snapshot().State, ctx.Err()
	}
}

func (t *Task) emit(ctx context.Context, value int, report ReportFunc) bool {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()

	if ctx.Err() != nil {
		t.markCancelled()
		return false
	}

	t.mu.Lock()
	if t.state.Terminal() {
		t.mu.Unlock()
		return false
	}
	t.state = domain.JobRunning
	t.progress = value
	t.mu.Unlock()

	if report != nil {
		report(t.id, value)
	}
	// Reaching 100 settles the task before Cancel can observe it as running.
	if value >= maxProgress {
		t.mu.Lock()
		t.state = domain.JobSucceeded
		t.progress = 0
		t.mu.Unlock()
	}
	return true
}

func (t *Task) markCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Terminal() {
		return false
	}
	t.state = domain.JobCancelled
	return true
}
