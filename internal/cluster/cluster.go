// Package cluster implements Volt's public facade: the entry point that
// owns every Node and the hash ring mapping keys to them, and routes
// each operation to the right node or set of nodes. Reads are
// single-replica and synchronous; writes and deletes fan out to the
// replica list concurrently and wait for all of them before returning.
package cluster

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dreamware/volt/internal/node"
	"github.com/dreamware/volt/internal/ring"
)

// Config holds the immutable, post-construction-fixed parameters of a
// Cluster. spec.md §6 treats (VirtualNodes, ReplicationFactor) as
// immutable after New. Dynamic reconfiguration is out of scope.
type Config struct {
	VirtualNodes      int
	ReplicationFactor int
	NumBuckets        int           // per-node storage bucket count; <=0 picks storage's default
	TickInterval      time.Duration // per-node expiration sweep cadence; <=0 picks expiration's default
}

// Cluster owns the descriptor->Node map and the ring, and is the only
// thing callers talk to: Get/Set/Del/AddNode/RemoveNode.
type Cluster struct {
	cfg Config
	log *logrus.Entry

	mu     sync.RWMutex // protects nodes/cancels; ring is published separately
	nodes  map[string]*node.Node
	cancel map[string]context.CancelFunc // stops each node's expiration driver

	ringPtr atomic.Pointer[ring.Ring]
}

// New constructs an empty Cluster. It does not spawn any background
// work itself; each Node's expiration driver starts when that node is
// added via AddNode, per spec.md §4.3's requirement that the driver be
// running before any TTL'd write on that node can expire observably.
func New(cfg Config, log *logrus.Entry) *Cluster {
	if cfg.ReplicationFactor < 1 {
		cfg.ReplicationFactor = 1
	}
	if cfg.VirtualNodes < 1 {
		cfg.VirtualNodes = 100
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	c := &Cluster{
		cfg:    cfg,
		log:    log,
		nodes:  make(map[string]*node.Node),
		cancel: make(map[string]context.CancelFunc),
	}
	c.ringPtr.Store(ring.New(cfg.VirtualNodes))
	return c
}

// AddNode creates a Node for descriptor, starts its expiration driver in
// its own goroutine, inserts it into the descriptor map, and only then
// publishes a new ring that references it. This ordering matters: a
// concurrent Get observing the new ring must always find a
// fully-constructed Node in the map (spec.md §4.3). A duplicate
// descriptor is a no-op. The driver runs until RemoveNode or Close.
func (c *Cluster) AddNode(descriptor string) {
	c.mu.Lock()
	if _, exists := c.nodes[descriptor]; exists {
		c.mu.Unlock()
		return
	}

	n := node.New(descriptor, c.cfg.NumBuckets, c.cfg.TickInterval, c.log)
	ctx, cancel := context.WithCancel(context.Background())
	c.nodes[descriptor] = n
	c.cancel[descriptor] = cancel
	c.mu.Unlock()

	go n.Run(ctx)

	for {
		old := c.ringPtr.Load()
		next := old.AddNode(descriptor)
		if c.ringPtr.CompareAndSwap(old, next) {
			break
		}
	}

	c.log.WithField("node", descriptor).Info("node added")
}

// RemoveNode removes descriptor from the ring first, then stops its
// expiration driver and drops it from the node map. Any operation
// already holding a reference to the Node completes against it; the Go
// garbage collector keeps that Node alive for as long as the in-flight
// call's stack references it (see DESIGN.md's Open Question decision
// on this). No new operation will ever be routed to a removed
// descriptor once this call returns.
func (c *Cluster) RemoveNode(descriptor string) {
	for {
		old := c.ringPtr.Load()
		next := old.RemoveNode(descriptor)
		if c.ringPtr.CompareAndSwap(old, next) {
			break
		}
	}

	c.mu.Lock()
	if cancel, ok := c.cancel[descriptor]; ok {
		cancel()
		delete(c.cancel, descriptor)
	}
	delete(c.nodes, descriptor)
	c.mu.Unlock()

	c.log.WithField("node", descriptor).Info("node removed")
}

// Size returns the number of nodes currently in the cluster.
func (c *Cluster) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.nodes)
}

// nodeFor resolves a descriptor to its *node.Node under the node map's
// read lock. Returns false if the ring named a descriptor absent from
// the map: an internal invariant violation (spec.md §7). The ring is
// only ever published after its node is inserted, and a node is only
// ever removed from the map after being dropped from the ring, so this
// should never happen in a correctly-operating cluster.
func (c *Cluster) nodeFor(descriptor string) (*node.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.nodes[descriptor]
	return n, ok
}

// Get looks up key's primary replica and delegates to it. Synchronous:
// spec.md §5 requires reads never suspend. Replicas are not consulted.
func (c *Cluster) Get(key string) ([]byte, bool) {
	r := c.ringPtr.Load()
	descriptors := r.Lookup(key, 1)
	if len(descriptors) == 0 {
		return nil, false
	}

	n, ok := c.nodeFor(descriptors[0])
	if !ok {
		c.log.WithField("node", descriptors[0]).Error("ring named a descriptor absent from the node map")
		return nil, false
	}
	return n.Get(key)
}

// Set resolves key's replica list from a single ring snapshot and
// writes to all of them concurrently, waiting for every write to
// complete before returning. Taking one snapshot up front (rather than
// calling Lookup again per goroutine) ensures a concurrent AddNode or
// RemoveNode can't split this write's replica set across two ring
// states (spec.md §4.3's "ring snapshots" invariant). If the
// replication factor exceeds the node count, this writes to every
// available node (degraded replication, spec.md §9's permissive
// behavior).
func (c *Cluster) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	r := c.ringPtr.Load()
	descriptors := r.Lookup(key, c.cfg.ReplicationFactor)
	if len(descriptors) == 0 {
		return fmt.Errorf("cluster: no nodes available to write key %q", key)
	}

	g, _ := errgroup.WithContext(ctx)
	for _, d := range descriptors {
		d := d
		n, ok := c.nodeFor(d)
		if !ok {
			c.log.WithField("node", d).Error("ring named a descriptor absent from the node map")
			continue
		}
		g.Go(func() error {
			n.Set(key, value, ttl)
			return nil
		})
	}
	return g.Wait()
}

// Del removes key from its replica list, using the same single-snapshot
// fan-out discipline as Set. Returns true iff at least one replica
// reported the key present.
func (c *Cluster) Del(ctx context.Context, key string) (bool, error) {
	r := c.ringPtr.Load()
	descriptors := r.Lookup(key, c.cfg.ReplicationFactor)
	if len(descriptors) == 0 {
		return false, fmt.Errorf("cluster: no nodes available to delete key %q", key)
	}

	var mu sync.Mutex
	anyPresent := false

	g, _ := errgroup.WithContext(ctx)
	for _, d := range descriptors {
		d := d
		n, ok := c.nodeFor(d)
		if !ok {
			c.log.WithField("node", d).Error("ring named a descriptor absent from the node map")
			continue
		}
		g.Go(func() error {
			present := n.Del(key)
			if present {
				mu.Lock()
				anyPresent = true
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	return anyPresent, nil
}

// Close stops every remaining node's background expiration sweep.
// Intended for test teardown and graceful process shutdown.
func (c *Cluster) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cancel := range c.cancel {
		cancel()
	}
	c.cancel = make(map[string]context.CancelFunc)
}
