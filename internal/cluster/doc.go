// Package cluster implements Volt's public facade: the single
// in-process object an edge layer (cmd/volt) or embedding program talks
// to. There is no coordinator process and no inter-node network
// protocol. A Cluster owns every Node directly, in the same address
// space, and routes each request to the node(s) a consistent-hash ring
// lookup names.
//
// # Architecture
//
//	Cluster
//	  - nodes: map[descriptor]*node.Node  (every shard, owned directly)
//	  - ringPtr: atomic.Pointer[ring.Ring] (published via copy-on-write)
//
//	Get(key)        -> ring.Lookup(key, 1)             -> one node.Get
//	Set(key, v, ttl) -> ring.Lookup(key, R) (snapshot)  -> fan out to R node.Set, await all
//	Del(key)        -> ring.Lookup(key, R) (snapshot)  -> fan out to R node.Del, await all
//
// # Node lifecycle
//
// AddNode constructs a Node, starts its expiration-sweep goroutine,
// inserts it into the node map, and only then publishes a ring that
// references its descriptor, so a concurrent Get observing the new
// ring always finds a fully-constructed Node. RemoveNode does the
// reverse: drop from the ring first, then stop the sweep goroutine and
// drop from the map. An operation already holding a *node.Node
// reference from before a RemoveNode completes normally against it;
// nothing routes new operations to it.
//
// # Concurrency
//
// The node map is guarded by a RWMutex; the ring is guarded by nothing.
// It's an immutable value behind an atomic.Pointer, swapped via
// compare-and-swap on every AddNode/RemoveNode. Set and Del each take
// exactly one ring snapshot before fanning out, so a concurrent
// membership change can never split one write across two ring states.
package cluster
