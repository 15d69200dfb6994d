package cache

import (
	"hash/maphash"
	"sync"
)

// DefaultShards is the shard count used when none is configured.
const DefaultShards = 32

type shard[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// Sharded is a thread-safe map split into independently locked shards.
// Operations on keys in different shards never contend.
type Sharded[K comparable, V any] struct {
	seed    maphash.Seed
	shards  []*shard[K, V]
	mask    uint64
	onEvict func(key K, value V) // Called for entries removed by Delete, DeleteFunc and Clear
}

// ShardedOption configures a Sharded map.
type ShardedOption[K comparable, V any] func(*Sharded[K, V])

// WithShards sets the shard count, rounded up to a power of two.
// Non-positive values keep the default.
func WithShards[K comparable, V any](n int) ShardedOption[K, V] {
	return func(s *Sharded[K, V]) {
		if n > 0 {
			s.mask = uint64(nextPowerOfTwo(n) - 1)
		}
	}
}

// WithEvictCallback registers fn to run for every entry removed by Delete,
// DeleteFunc or Clear. It runs while the shard lock is held and must not call
// back into the map.
func WithEvictCallback[K comparable, V any](fn func(key K, value V)) ShardedOption[K, V] {
	return func(s *Sharded[K, V]) {
		s.onEvict = fn
	}
}

// NewSharded creates an empty sharded map.
func NewSharded[K comparable, V any](opts ...ShardedOption[K, V]) *Sharded[K, V] {
	s := &Sharded[K, V]{
		seed: maphash.MakeSeed(),
		mask: DefaultShards - 1,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard[K, V], s.mask+1)
	for i := range s.shards {
		s.shards[i] = &shard[K, V]{items: make(map[K]V)}
	}

	return s
}

func (s *Sharded[K, V]) shardFor(key K) *shard[K, V] {
	return s.shards[maphash.Comparable(s.seed, key)&s.mask]
}

// Load returns the value stored for key.
func (s *Sharded[K, V]) Load(key K) (V, bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	v, ok := sh.items[key]
	return v, ok
}

// Store sets the value for key, replacing any previous value.
func (s *Sharded[K, V]) Store(key K, value V) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.items[key] = value
}

// LoadOrStore returns the existing value for key if present. Otherwise it
// stores value and returns it. loaded reports whether the value was already there.
func (s *Sharded[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if v, ok := sh.items[key]; ok {
		return v, true
	}
	sh.items[key] = value
	return value, false
}

// Compute atomically replaces the entry for key with the result of fn.
// fn receives the current value and whether it exists; when keep is false
// the entry is removed without invoking the evict callback.
// Compute returns the stored value and whether an entry remains.
func (s *Sharded[K, V]) Compute(key K, fn func(old V, loaded bool) (value V, keep bool)) (V, bool) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	old, loaded := sh.items[key]
	value, keep := fn(old, loaded)
	if !keep {
		delete(sh.items, key)
		var zero V
		return zero, false
	}
	sh.items[key] = value
	return value, true
}

// LoadAndDelete removes key and hands its value to the caller.
// The evict callback is not invoked.
func (s *Sharded[K, V]) LoadAndDelete(key K) (V, bool) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	v, ok := sh.items[key]
	if ok {
		delete(sh.items, key)
	}
	return v, ok
}

// Delete removes key and reports whether it existed.
func (s *Sharded[K, V]) Delete(key K) bool {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	v, ok := sh.items[key]
	if !ok {
		return false
	}
	delete(sh.items, key)
	if s.onEvict != nil {
		s.onEvict(key, v)
	}
	return true
}

// DeleteFunc removes every entry for which fn returns true and returns the
// number removed. Shards are locked one at a time.
func (s *Sharded[K, V]) DeleteFunc(fn func(key K, value V) bool) int {
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for k, v := range sh.items {
			if fn(k, v) {
				delete(sh.items, k)
				if s.onEvict != nil {
					s.onEvict(k, v)
				}
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Range calls fn for each entry until fn returns false. Each shard is read
// under its own lock, so the view is not a global snapshot.
func (s *Sharded[K, V]) Range(fn func(key K, value V) bool) {
	for _, sh := range s.shards {
		sh.mu.RLock()
		for k, v := range sh.items {
			if !fn(k, v) {
				sh.mu.RUnlock()
				return
			}
		}
		sh.mu.RUnlock()
	}
}

// Len returns the number of entries.
func (s *Sharded[K, V]) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.items)
		sh.mu.RUnlock()
	}
	return n
}

// Clear removes all entries, invoking the evict callback for each.
func (s *Sharded[K, V]) Clear() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		if s.onEvict != nil {
			for k, v := range sh.items {
				s.onEvict(k, v)
			}
		}
		sh.items = make(map[K]V)
		sh.mu.Unlock()
	}
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
