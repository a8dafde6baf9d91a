package queue

// #region imports
import (
	"sync"
	"time"
)

// #endregion imports

// #region entry

// Entry is one pending problem assignment. Created by the adaptive
// agent, consumed exactly once by the engine driver, then gone.
type Entry struct {
	ID         string
	StudentID  string
	ProblemID  string
	Tier       int
	Priority   int // higher dequeues first; 0 is the normal lane
	EnqueuedAt time.Time
}

// #endregion entry

// #region queue

// Queue is a mutex-guarded, priority-aware FIFO of pending assignments.
// Entries of equal priority dequeue in insertion order; the only
// override is a higher priority (e.g. an immediate retry). The adaptive
// agent decides priorities, the queue just honors the ordering.
type Queue struct {
	mu      sync.Mutex
	entries []Entry
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue inserts an entry behind all entries of equal or higher priority.
func (q *Queue) Enqueue(e Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := len(q.entries)
	for i > 0 && q.entries[i-1].Priority < e.Priority {
		i--
	}
	q.entries = append(q.entries, Entry{})
	copy(q.entries[i+1:], q.entries[i:])
	q.entries[i] = e
}

// Dequeue removes and returns the head entry, if any.
func (q *Queue) Dequeue() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return Entry{}, false
	}
	e := q.entries[0]
	q.entries = q.entries[1:]
	return e, true
}

// Len reports the number of pending entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// #endregion queue
