// Package storage implements the concurrent map a Node stores its entries
// in. It is lock-striped rather than guarded by one mutex: each key is
// routed to one of a fixed number of buckets by hashing, and each bucket
// has its own RWMutex, so unrelated keys never contend with each other.
// This is what lets Node.Get stay in the ~100ns range instead of
// serializing on a single process-wide lock.
package storage

import (
	"errors"
	"runtime"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/dreamware/volt/internal/entry"
)

// ErrKeyNotFound is returned when a key doesn't exist in the store.
var ErrKeyNotFound = errors.New("key not found")

type bucket struct {
	mu   sync.RWMutex
	data map[string]entry.Entry
}

// Shards is a lock-striped, thread-safe map from key to Entry.
type Shards struct {
	buckets []*bucket
	mask    uint64
}

// NewShards creates a Shards with enough buckets to keep per-bucket
// contention low under concurrent access. numBuckets is rounded up to
// the next power of two; a value <= 0 picks a default scaled off
// GOMAXPROCS.
func NewShards(numBuckets int) *Shards {
	if numBuckets <= 0 {
		numBuckets = runtime.GOMAXPROCS(0) * 4
	}
	n := nextPowerOfTwo(numBuckets)

	buckets := make([]*bucket, n)
	for i := range buckets {
		buckets[i] = &bucket{data: make(map[string]entry.Entry)}
	}
	return &Shards{buckets: buckets, mask: uint64(n - 1)}
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	if p < 1 {
		p = 1
	}
	return p
}

func (s *Shards) bucketFor(key string) *bucket {
	h := xxhash.Sum64String(key)
	return s.buckets[h&s.mask]
}

// Get retrieves the raw Entry stored for key, regardless of expiration.
// Callers are responsible for treating an expired Entry as absent.
// Storage has no notion of time.
func (s *Shards) Get(key string) (entry.Entry, error) {
	b := s.bucketFor(key)
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.data[key]
	if !ok {
		return entry.Entry{}, ErrKeyNotFound
	}
	return e, nil
}

// Put stores e under key, replacing any existing entry.
func (s *Shards) Put(key string, e entry.Entry) {
	b := s.bucketFor(key)
	b.mu.Lock()
	b.data[key] = e
	b.mu.Unlock()
}

// Delete removes key. It reports whether the key was present.
func (s *Shards) Delete(key string) bool {
	b := s.bucketFor(key)
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.data[key]
	if ok {
		delete(b.data, key)
	}
	return ok
}

// Len returns the number of keys across all buckets. Best-effort: it
// takes each bucket's read lock in turn rather than a single atomic
// snapshot of the whole map, so it may include entries that are
// expired-but-not-yet-swept, and a concurrent write may or may not be
// reflected.
func (s *Shards) Len() int {
	total := 0
	for _, b := range s.buckets {
		b.mu.RLock()
		total += len(b.data)
		b.mu.RUnlock()
	}
	return total
}

// Keys returns a snapshot of all keys currently stored, regardless of
// expiration. For diagnostics; not meant for the hot read/write path.
func (s *Shards) Keys() []string {
	keys := make([]string, 0, s.Len())
	for _, b := range s.buckets {
		b.mu.RLock()
		for k := range b.data {
			keys = append(keys, k)
		}
		b.mu.RUnlock()
	}
	return keys
}
