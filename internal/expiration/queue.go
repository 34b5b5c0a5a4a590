// Package expiration implements the TTL sweep a Node runs over its own
// entries. Writes never mutate or remove a queue record; they only
// ever push a new one. So a key can accumulate several stale records
// across its lifetime (overwritten with a longer TTL, deleted, or
// TTL removed entirely). The sweep reconciles this at pop time by
// checking the record's version against the entry's current version
// rather than trusting the record alone. This keeps writes O(1) in the
// queue (push only); the cost is queue garbage bounded by write
// throughput times TTL.
package expiration

import (
	"container/heap"
	"sync"
	"time"
)

// Record is one scheduled expiration check: the key, the deadline the
// write that pushed it computed, and the entry version that write
// produced. VersionAtInsert lets the sweep tell a current record apart
// from a stale one describing an entry that's since been overwritten.
type Record struct {
	ExpiresAt       time.Time
	Key             string
	VersionAtInsert uint64
}

// innerHeap is the container/heap.Interface implementation backing
// Queue. Kept unexported: Queue is the only thing that should touch it.
type innerHeap []Record

func (h innerHeap) Len() int            { return len(h) }
func (h innerHeap) Less(i, j int) bool  { return h[i].ExpiresAt.Before(h[j].ExpiresAt) }
func (h innerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *innerHeap) Push(x interface{}) { *h = append(*h, x.(Record)) }
func (h *innerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Queue is a thread-safe min-heap of expiration Records ordered by
// ExpiresAt. It is single-consumer (the sweep goroutine calls Pop) and
// multi-producer (writer goroutines call Push), matching spec.md
// §5's "short critical section around push" note.
type Queue struct {
	mu sync.Mutex
	h  innerHeap
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	q := &Queue{}
	heap.Init(&q.h)
	return q
}

// Push schedules a record. O(log n).
func (q *Queue) Push(r Record) {
	q.mu.Lock()
	heap.Push(&q.h, r)
	q.mu.Unlock()
}

// PeekExpired reports whether the queue's earliest record's deadline
// has already passed as of now, without removing it.
func (q *Queue) PeekExpired(now time.Time) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.h) == 0 {
		return false
	}
	return !q.h[0].ExpiresAt.After(now)
}

// PopExpired removes and returns the earliest record if its deadline
// has passed as of now. The second return value is false if the queue
// is empty or its earliest record is still in the future. Callers
// should stop sweeping when they see false.
func (q *Queue) PopExpired(now time.Time) (Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.h) == 0 || q.h[0].ExpiresAt.After(now) {
		return Record{}, false
	}
	return heap.Pop(&q.h).(Record), true
}

// Len returns the number of records currently queued, including stale
// ones not yet reconciled by a sweep.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h)
}
