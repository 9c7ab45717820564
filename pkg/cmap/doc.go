// Package cmap provides a sharded concurrent map for string-like keys.
//
// The binding runtime keeps its thread and namespace registries here:
// lookups are far more frequent than inserts, so each shard is guarded by
// its own RWMutex and keys are spread across shards with murmur3.
//
// Usage:
//
//	m := cmap.NewWithShards[ThreadID, *Thread](32)
//	th, loaded := m.GetOrSet(id, &Thread{id: id})
//	m.Pop(id)
//
// All operations are safe for concurrent use. Range and Keys lock one shard
// at a time, so they do not observe a single consistent snapshot.
package cmap
