// Package pipeline is the executor boundary of the filter engine.
//
// Filters announce "re-run from me" through Queue.Update, which records
// the request and returns at once. A Runner later drains the queue and
// re-executes the active filters from the earliest requested position,
// reusing cached intermediate images for the stages in front of it.
// Requests only carry a hint: if a filter flips twice before the runner
// reacts, the run simply reflects the net state.
package pipeline

import (
	"sync"
)

// Queue collects pipeline run requests. Repeated requests for the same
// filter coalesce. Queue is safe for concurrent use so a runner on
// another goroutine may drain it.
type Queue struct {
	mu      sync.Mutex
	pending []string
	seen    map[string]struct{}
	ready   chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		seen:  make(map[string]struct{}),
		ready: make(chan struct{}, 1),
	}
}

// Update records that the output must be recomputed from uniqueName.
// It never blocks.
func (q *Queue) Update(uniqueName string) {
	q.mu.Lock()
	if _, dup := q.seen[uniqueName]; !dup {
		q.seen[uniqueName] = struct{}{}
		q.pending = append(q.pending, uniqueName)
	}
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Drain returns the pending requests in arrival order and empties the
// queue.
func (q *Queue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.pending
	q.pending = nil
	clear(q.seen)
	return out
}

// Len returns the number of distinct pending requests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Ready is signalled after Update. A single signal may stand for many
// requests.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}
