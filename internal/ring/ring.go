// Package ring implements the consistent-hash routing table that maps a
// key to an ordered list of node descriptors: a primary plus R-1
// replicas. Each logical node occupies V virtual positions on a 64-bit
// circular space so that, on average, adding or removing one node
// reassigns only about 1/M of the keyspace instead of rehashing
// everything.
//
// The ring is read-mostly: lookups happen on every Get and every Set,
// while AddNode/RemoveNode happen rarely (operator-driven). Ring is
// therefore built to be cheap to read and is expected to be guarded by
// its caller with a copy-on-write publish (see internal/cluster), not
// locked internally. A fresh Ring is built and swapped in rather than
// mutated under a lock shared with readers.
//
// Both virtual-node placement and key lookup hash with xxHash64
// (github.com/cespare/xxhash/v2).
package ring

import (
	"sort"

	"github.com/cespare/xxhash/v2"
)

// position is one virtual node's place on the ring: a 64-bit hash and
// the logical node descriptor it belongs to.
type position struct {
	hash       uint64
	descriptor string
}

// Ring is an immutable, fully-built consistent-hash ring. Build it with
// New, then share it read-only across goroutines; to add or remove a
// node, build a new Ring from the old one's descriptors rather than
// mutating this one.
type Ring struct {
	virtualNodes int
	positions    []position // sorted by hash
	descriptors  []string   // distinct logical nodes currently on the ring, insertion order
}

// New constructs an empty ring with the given virtual-node count (V).
// virtualNodes must be >= 1.
func New(virtualNodes int) *Ring {
	if virtualNodes < 1 {
		virtualNodes = 1
	}
	return &Ring{virtualNodes: virtualNodes}
}

// hashVirtualNode computes the stable 64-bit position for the i-th
// virtual node of descriptor. xxHash64 is the one hash function used
// for both ring placement and key lookup (see internal/ring's package
// doc and DESIGN.md). Every participant must agree on this choice for
// lookups to be deterministic across a cluster's lifetime.
func hashVirtualNode(descriptor string, i int) uint64 {
	var buf [4]byte
	buf[0] = byte(i)
	buf[1] = byte(i >> 8)
	buf[2] = byte(i >> 16)
	buf[3] = byte(i >> 24)

	h := xxhash.New()
	h.WriteString(descriptor)
	h.Write(buf[:])
	return h.Sum64()
}

func hashKey(key string) uint64 {
	return xxhash.Sum64String(key)
}

// AddNode returns a new Ring with descriptor added, alongside its V
// virtual positions. Idempotent: if descriptor is already present, the
// receiver itself is returned unchanged, so callers can always swap the
// returned pointer in without a branch.
func (r *Ring) AddNode(descriptor string) *Ring {
	for _, d := range r.descriptors {
		if d == descriptor {
			return r
		}
	}

	next := &Ring{
		virtualNodes: r.virtualNodes,
		positions:    make([]position, len(r.positions), len(r.positions)+r.virtualNodes),
		descriptors:  make([]string, len(r.descriptors), len(r.descriptors)+1),
	}
	copy(next.positions, r.positions)
	copy(next.descriptors, r.descriptors)
	next.descriptors = append(next.descriptors, descriptor)

	for i := 0; i < r.virtualNodes; i++ {
		next.positions = append(next.positions, position{
			hash:       hashVirtualNode(descriptor, i),
			descriptor: descriptor,
		})
	}
	sort.Slice(next.positions, func(i, j int) bool {
		return next.positions[i].hash < next.positions[j].hash
	})

	return next
}

// RemoveNode returns a new Ring with descriptor and all its virtual
// positions removed. Idempotent: removing an absent descriptor returns
// an equivalent Ring unchanged.
func (r *Ring) RemoveNode(descriptor string) *Ring {
	found := false
	for _, d := range r.descriptors {
		if d == descriptor {
			found = true
			break
		}
	}
	if !found {
		return r
	}

	next := &Ring{
		virtualNodes: r.virtualNodes,
		positions:    make([]position, 0, len(r.positions)),
		descriptors:  make([]string, 0, len(r.descriptors)-1),
	}
	for _, p := range r.positions {
		if p.descriptor != descriptor {
			next.positions = append(next.positions, p)
		}
	}
	for _, d := range r.descriptors {
		if d != descriptor {
			next.descriptors = append(next.descriptors, d)
		}
	}
	return next
}

// Lookup returns up to count distinct node descriptors for key, in
// stable preference order: index 0 is the primary, the rest are
// replicas. If count exceeds the number of distinct nodes on the ring,
// the returned slice is shorter than count (the permissive behavior for
// replication_factor > node_count, see DESIGN.md's Open Question
// decisions). Returns nil if the ring has no nodes.
func (r *Ring) Lookup(key string, count int) []string {
	if len(r.positions) == 0 || count <= 0 {
		return nil
	}
	if count > len(r.descriptors) {
		count = len(r.descriptors)
	}

	hash := hashKey(key)
	start := sort.Search(len(r.positions), func(i int) bool {
		return r.positions[i].hash >= hash
	})

	result := make([]string, 0, count)
	seen := make(map[string]bool, count)
	for i := 0; len(result) < count && i < len(r.positions); i++ {
		p := r.positions[(start+i)%len(r.positions)]
		if seen[p.descriptor] {
			continue
		}
		seen[p.descriptor] = true
		result = append(result, p.descriptor)
	}
	return result
}

// Size returns the number of distinct logical node descriptors on the
// ring.
func (r *Ring) Size() int {
	return len(r.descriptors)
}

// Descriptors returns a snapshot of the distinct node descriptors
// currently on the ring, in insertion order.
func (r *Ring) Descriptors() []string {
	out := make([]string, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}
