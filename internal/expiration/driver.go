package expiration

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dreamware/volt/internal/storage"
)

// DefaultTickInterval is the sweep cadence spec.md §4.4 suggests ("a
// small fixed tick, e.g. 10ms").
const DefaultTickInterval = 10 * time.Millisecond

// Driver runs the background sweep loop for one Node: it repeatedly
// pops expired records off a Queue and, for each one still describing
// the current Entry, deletes it from the backing Shards.
type Driver struct {
	nodeID       string
	queue        *Queue
	store        *storage.Shards
	tickInterval time.Duration
	log          *logrus.Entry
}

// NewDriver builds a Driver for nodeID, sweeping queue against store
// every tickInterval. A tickInterval <= 0 uses DefaultTickInterval.
func NewDriver(nodeID string, queue *Queue, store *storage.Shards, tickInterval time.Duration, log *logrus.Entry) *Driver {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Driver{
		nodeID:       nodeID,
		queue:        queue,
		store:        store,
		tickInterval: tickInterval,
		log:          log.WithField("node", nodeID),
	}
}

// Run blocks, sweeping on every tick, until ctx is cancelled. The
// expiration driver MUST be running before any TTL'd write can expire
// observably (spec.md §4.3). Callers start one Run per Node, typically
// in its own goroutine, before accepting writes.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.sweep(time.Now())
		}
	}
}

// sweep pops every record whose deadline has passed, reconciling each
// against the store's current entry before evicting.
func (d *Driver) sweep(now time.Time) {
	for {
		rec, ok := d.queue.PopExpired(now)
		if !ok {
			return
		}
		d.reconcile(rec, now)
	}
}

// reconcile implements spec.md §4.4 step 3: a popped record only
// evicts the key if the stored Entry still exists, is itself expired as
// of now, and its version matches the version the record was pushed
// for. Any mismatch means the record is stale: the key was
// overwritten with a longer TTL, its TTL was cleared, or it was
// deleted. The record is simply discarded.
func (d *Driver) reconcile(rec Record, now time.Time) {
	e, err := d.store.Get(rec.Key)
	if err == storage.ErrKeyNotFound {
		return
	}
	if !e.Expired(now) {
		return
	}
	if e.Version != rec.VersionAtInsert {
		return
	}
	d.store.Delete(rec.Key)
	d.log.WithFields(logrus.Fields{
		"key":     rec.Key,
		"version": rec.VersionAtInsert,
	}).Debug("expired key evicted")
}
