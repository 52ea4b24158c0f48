package activity

import (
	"sync"
	"time"
)

// Kinds of activity entries.
const (
	KindCreated = "task_created"
	KindUpdated = "task_updated"
	KindDeleted = "task_deleted"
	KindCleared = "tasks_cleared"
)

// DefaultCapacity is the number of entries retained when none is configured.
const DefaultCapacity = 100

// Entry is one recorded task event.
type Entry struct {
	Kind       string    `json:"kind"`
	TaskID     uint      `json:"task_id,omitempty"`
	Message    string    `json:"message"`
	Fields     []string  `json:"fields,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Feed is a bounded, thread-safe log of recent entries.
// Once full, each new entry evicts the oldest one.
type Feed struct {
	mu       sync.RWMutex
	entries  []Entry
	next     int
	full     bool
	capacity int
}

// NewFeed creates a feed holding at most capacity entries.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{
		entries:  make([]Entry, capacity),
		capacity: capacity,
	}
}

// Record appends an entry.
func (f *Feed) Record(e Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[f.next] = e
	f.next = (f.next + 1) % f.capacity
	if f.next == 0 {
		f.full = true
	}
}

// Len returns the number of retained entries.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.size()
}

// Capacity returns the maximum number of retained entries.
func (f *Feed) Capacity() int {
	return f.capacity
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns everything retained.
func (f *Feed) Recent(limit int) []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n := f.size()
	if limit <= 0 || limit > n {
		limit = n
	}

	result := make([]Entry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (f.next - i + f.capacity) % f.capacity
		result = append(result, f.entries[idx])
	}
	return result
}

func (f *Feed) size() int {
	if f.full {
		return f.capacity
	}
	return f.next
}
