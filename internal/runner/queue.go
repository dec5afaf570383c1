package runner

import (
	"sync"

	"github.com/gruntwork-io/assetflow/internal/buildgraph"
)

// Status is the scheduling state of a step.
type Status int

const (
	StatusPending Status = iota
	StatusBlocked
	StatusReady
	StatusRunning
	StatusSucceeded
	StatusFailed
	StatusAncestorFailed
	StatusFailFast
	StatusCanceled
)

func (status Status) String() string {
	switch status {
	case StatusPending:
		return "pending"
	case StatusBlocked:
		return "blocked"
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusAncestorFailed:
		return "ancestor failed"
	case StatusFailFast:
		return "fail fast"
	default:
		return "canceled"
	}
}

// entry ties one immutable step to its mutable runtime state.
type entry struct {
	step      *buildgraph.Step
	err       error
	blockedBy []*entry
	status    Status
}

// queue keeps DAG state; NO goroutines here.
type queue struct {
	entries  []*entry
	failFast bool
	mu       sync.Mutex
}

func buildQueue(steps []*buildgraph.Step, failFast bool) *queue {
	q := &queue{failFast: failFast}
	byStep := make(map[*buildgraph.Step]*entry, len(steps))

	for _, step := range steps {
		e := &entry{step: step, status: StatusPending}
		q.entries = append(q.entries, e)
		byStep[step] = e
	}

	for _, e := range q.entries {
		for _, pred := range e.step.Predecessors {
			if p, ok := byStep[pred]; ok {
				e.blockedBy = append(e.blockedBy, p)
			}
		}

		if len(e.blockedBy) > 0 {
			e.status = StatusBlocked
		} else {
			e.status = StatusReady
		}
	}

	return q
}

// getReady marks up to n ready entries running and returns them in plan order.
func (q *queue) getReady(n int) []*entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []*entry

	if n <= 0 {
		return out
	}

	for _, e := range q.entries {
		if e.status == StatusReady {
			e.status = StatusRunning
			out = append(out, e)

			if len(out) == n {
				break
			}
		}
	}

	return out
}

func (q *queue) done(e *entry, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e.err = err
	if err == nil {
		e.status = StatusSucceeded
	} else {
		e.status = StatusFailed
	}

	if q.failFast && e.status == StatusFailed {
		for _, other := range q.entries {
			switch other.status {
			case StatusPending, StatusReady, StatusBlocked:
				other.status = StatusFailFast
			}
		}

		return
	}

	// Unblock children and mark ancestor failures. Entries are in plan order so a
	// failure propagates through the whole subtree in one pass.
	for _, child := range q.entries {
		if child.status != StatusBlocked {
			continue
		}

		ready := true

		for _, p := range child.blockedBy {
			if p.status == StatusSucceeded {
				continue
			}

			ready = false

			if p.status == StatusFailed || p.status == StatusAncestorFailed || p.status == StatusFailFast {
				child.status = StatusAncestorFailed
			}

			break
		}

		if ready {
			child.status = StatusReady
		}
	}
}

// cancel marks every entry that has not started as canceled.
func (q *queue) cancel() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		switch e.status {
		case StatusPending, StatusReady, StatusBlocked:
			e.status = StatusCanceled
		}
	}
}

func (q *queue) empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		switch e.status {
		case StatusPending, StatusBlocked, StatusReady, StatusRunning:
			return false
		}
	}

	return true
}

// failedDependency returns the location of the first predecessor of e that did not succeed.
func (q *queue) failedDependency(e *entry) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, p := range e.blockedBy {
		if p.status == StatusFailed || p.status == StatusAncestorFailed {
			return p.step.Location()
		}
	}

	return ""
}
