// Package storage implements Volt's in-process key-value map: the data
// structure a Node keeps its entries in.
//
// # Overview
//
// Shards is a lock-striped map from string key to entry.Entry. It exists
// because a single sync.RWMutex guarding one map becomes the bottleneck
// under concurrent access long before the map itself does. Every Get
// and Put on every key serializes on the same lock regardless of whether
// the keys are unrelated. Shards splits the keyspace across a fixed
// number of independently-locked buckets (selected by hashing the key
// with xxhash) so that operations on different keys only contend when
// they land in the same bucket.
//
// # Concurrency
//
//   - Reads take a bucket's RLock; writes take its Lock.
//   - Len and Keys walk every bucket in turn and are therefore
//     best-effort snapshots, not atomic across the whole map.
//   - Storage has no notion of time: it stores whatever entry.Entry it's
//     given, expired or not. Expiration is internal/expiration's job;
//     Shards is a dumb map that happens to store entries with a deadline
//     attached.
//
// # Usage
//
//	s := storage.NewShards(0) // default bucket count
//	s.Put("key", entry.New([]byte("value"), time.Minute, 1, time.Now()))
//	e, err := s.Get("key")
//	if err == storage.ErrKeyNotFound {
//	    // absent
//	}
package storage
