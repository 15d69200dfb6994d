// Package cache provides a generic, thread-safe map split into independently
// locked shards.
//
// Sharded is the backing table for short-lived in-memory state such as live
// sessions and vault entries, where many goroutines read and write unrelated
// keys at the same time. Each key hashes (hash/maphash) to one shard guarded
// by its own sync.RWMutex, so readers of one shard never wait on writers of
// another.
//
// # Usage
//
//	m := cache.NewSharded[string, int]()
//	m.Store("a", 1)
//	v, ok := m.Load("a")
//
//	// atomic read-modify-write
//	m.Compute("a", func(old int, loaded bool) (int, bool) {
//		return old + 1, true
//	})
//
//	// bulk expiry
//	removed := m.DeleteFunc(func(k string, v int) bool { return v > 10 })
//
// # Resource Cleanup
//
// Values that hold sensitive or external resources can be released as they
// leave the map with an evict callback:
//
//	m := cache.NewSharded(cache.WithEvictCallback(func(id string, rec cryptobox.Record) {
//		rec.Wipe()
//	}))
//
// The callback runs for Delete, DeleteFunc and Clear. LoadAndDelete and
// Compute hand ownership of the removed value back to the caller instead.
package cache
