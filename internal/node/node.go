// Package node implements the per-shard storage unit: the owner of one
// slice of the keyspace, wrapping a concurrent map and its own TTL
// expiration queue. A Cluster owns many Nodes and routes each request
// to the ones a ring lookup names; a Node itself knows nothing about
// the ring, replication, or its sibling nodes.
package node

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dreamware/volt/internal/entry"
	"github.com/dreamware/volt/internal/expiration"
	"github.com/dreamware/volt/internal/storage"
)

// OperationStats tracks per-operation counts for a Node, for diagnostics.
type OperationStats struct {
	Gets   uint64
	Sets   uint64
	Dels   uint64
	Misses uint64
}

// Node is one logical shard: a descriptor naming it within a Cluster, a
// concurrent map of its entries, a monotonic write-version counter, and
// an expiration queue plus the driver sweeping it.
type Node struct {
	ID string

	store   *storage.Shards
	queue   *expiration.Queue
	driver  *expiration.Driver
	version uint64 // atomically incremented on every successful write
	stats   OperationStats
}

// New constructs a Node. numBuckets is passed through to the backing
// storage.Shards (<=0 picks its default); tickInterval is passed to the
// expiration driver (<=0 picks expiration.DefaultTickInterval).
func New(id string, numBuckets int, tickInterval time.Duration, log *logrus.Entry) *Node {
	store := storage.NewShards(numBuckets)
	queue := expiration.NewQueue()
	n := &Node{
		ID:    id,
		store: store,
		queue: queue,
	}
	n.driver = expiration.NewDriver(id, queue, store, tickInterval, log)
	return n
}

// Run starts the Node's background expiration sweep and blocks until
// ctx is cancelled. Per spec.md §4.3, the expiration driver MUST be
// running before any TTL'd write can expire observably. Callers
// typically run this in its own goroutine immediately after
// constructing the Node and before routing any writes to it.
func (n *Node) Run(ctx context.Context) {
	n.driver.Run(ctx)
}

// Get retrieves value for key. Synchronous: spec.md §5 requires reads
// never suspend. An expired entry is treated as a miss regardless of
// whether the background sweep has reconciled it yet (lazy eviction).
func (n *Node) Get(key string) ([]byte, bool) {
	atomic.AddUint64(&n.stats.Gets, 1)

	e, err := n.store.Get(key)
	if err != nil {
		atomic.AddUint64(&n.stats.Misses, 1)
		return nil, false
	}
	if e.Expired(time.Now()) {
		atomic.AddUint64(&n.stats.Misses, 1)
		return nil, false
	}
	return e.Value, true
}

// Contains reports whether key currently has a live (unexpired) entry,
// without returning its value.
func (n *Node) Contains(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Set writes value under key with the given ttl (0 means "never
// expires"). Bumps the node's version counter and replaces any existing
// entry atomically. If ttl > 0, pushes an expiration record onto the
// queue. The record may outlive this specific write if key is later
// overwritten or deleted; the sweep reconciles that (internal/expiration).
func (n *Node) Set(key string, value []byte, ttl time.Duration) {
	atomic.AddUint64(&n.stats.Sets, 1)

	now := time.Now()
	v := atomic.AddUint64(&n.version, 1)
	e := entry.New(value, ttl, v, now)
	n.store.Put(key, e)

	if ttl > 0 {
		n.queue.Push(expiration.Record{
			ExpiresAt:       e.ExpiresAt,
			Key:             key,
			VersionAtInsert: v,
		})
	}
}

// Del removes key. Reports whether the key was present (and live) at
// the time of deletion.
func (n *Node) Del(key string) bool {
	atomic.AddUint64(&n.stats.Dels, 1)

	e, err := n.store.Get(key)
	if err != nil {
		return false
	}
	wasLive := !e.Expired(time.Now())
	n.store.Delete(key)
	return wasLive
}

// Len returns the number of keys currently stored, including any not
// yet swept past expiration.
func (n *Node) Len() int {
	return n.store.Len()
}

// Stats returns a snapshot of this Node's operation counters.
func (n *Node) Stats() OperationStats {
	return OperationStats{
		Gets:   atomic.LoadUint64(&n.stats.Gets),
		Sets:   atomic.LoadUint64(&n.stats.Sets),
		Dels:   atomic.LoadUint64(&n.stats.Dels),
		Misses: atomic.LoadUint64(&n.stats.Misses),
	}
}
