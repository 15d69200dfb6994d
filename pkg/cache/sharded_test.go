package cache_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpgate/pkg/cache"
)

func TestSharded_Basic(t *testing.T) {
	t.Parallel()

	t.Run("store and load", func(t *testing.T) {
		t.Parallel()
		m := cache.NewSharded[string, int]()

		m.Store("a", 1)
		m.Store("b", 2)

		v, ok := m.Load("a")
		assert.True(t, ok)
		assert.Equal(t, 1, v)

		v, ok = m.Load("missing")
		assert.False(t, ok)
		assert.Equal(t, 0, v)

		assert.Equal(t, 2, m.Len())
	})

	t.Run("store replaces", func(t *testing.T) {
		t.Parallel()
		m := cache.NewSharded[string, int]()
		m.Store("a", 1)
		m.Store("a", 2)

		v, _ := m.Load("a")
		assert.Equal(t, 2, v)
		assert.Equal(t, 1, m.Len())
	})

	t.Run("load or store", func(t *testing.T) {
		t.Parallel()
		m := cache.NewSharded[string, int]()

		v, loaded := m.LoadOrStore("a", 1)
		assert.False(t, loaded)
		assert.Equal(t, 1, v)

		v, loaded = m.LoadOrStore("a", 2)
		assert.True(t, loaded)
		assert.Equal(t, 1, v)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		m := cache.NewSharded[string, int]()
		m.Store("a", 1)

		assert.True(t, m.Delete("a"))
		assert.False(t, m.Delete("a"))
		assert.Equal(t, 0, m.Len())
	})

	t.Run("load and delete", func(t *testing.T) {
		t.Parallel()
		m := cache.NewSharded[string, int]()
		m.Store("a", 7)

		v, ok := m.LoadAndDelete("a")
		assert.True(t, ok)
		assert.Equal(t, 7, v)

		_, ok = m.LoadAndDelete("a")
		assert.False(t, ok)
	})
}

func TestSharded_Compute(t *testing.T) {
	t.Parallel()
	m := cache.NewSharded[string, int]()

	v, ok := m.Compute("a", func(old int, loaded bool) (int, bool) {
		assert.False(t, loaded)
		return 1, true
	})
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = m.Compute("a", func(old int, loaded bool) (int, bool) {
		assert.True(t, loaded)
		return old + 1, true
	})
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = m.Compute("a", func(old int, loaded bool) (int, bool) {
		return 0, false
	})
	assert.False(t, ok)

	_, found := m.Load("a")
	assert.False(t, found)
}

func TestSharded_DeleteFunc(t *testing.T) {
	t.Parallel()
	m := cache.NewSharded[int, int]()
	for i := range 100 {
		m.Store(i, i)
	}

	removed := m.DeleteFunc(func(k, v int) bool { return v%2 == 0 })
	assert.Equal(t, 50, removed)
	assert.Equal(t, 50, m.Len())

	m.Range(func(k, v int) bool {
		assert.Equal(t, 1, v%2)
		return true
	})

	assert.Equal(t, 0, cache.NewSharded[int, int]().DeleteFunc(func(int, int) bool { return true }))
}

func TestSharded_Range(t *testing.T) {
	t.Parallel()
	m := cache.NewSharded[string, int]()
	for i := range 10 {
		m.Store(fmt.Sprintf("k%d", i), i)
	}

	sum := 0
	m.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	assert.Equal(t, 45, sum)

	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func TestSharded_EvictCallback(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	evicted := map[string]int{}
	m := cache.NewSharded(cache.WithEvictCallback(func(k string, v int) {
		mu.Lock()
		evicted[k] = v
		mu.Unlock()
	}))

	m.Store("a", 1)
	m.Store("b", 2)
	m.Store("c", 3)
	m.Store("d", 4)

	m.Delete("a")
	m.DeleteFunc(func(k string, _ int) bool { return k == "b" })
	_, _ = m.LoadAndDelete("c")
	m.Clear()

	assert.Equal(t, map[string]int{"a": 1, "b": 2, "d": 4}, evicted)
	assert.Equal(t, 0, m.Len())
}

func TestSharded_WithShards(t *testing.T) {
	t.Parallel()
	m := cache.NewSharded(cache.WithShards[int, int](1))
	for i := range 20 {
		m.Store(i, i)
	}
	assert.Equal(t, 20, m.Len())

	m = cache.NewSharded(cache.WithShards[int, int](5))
	for i := range 20 {
		m.Store(i, i)
	}
	assert.Equal(t, 20, m.Len())
}

func TestSharded_Concurrent(t *testing.T) {
	t.Parallel()
	m := cache.NewSharded[int, int]()

	const workers = 16
	const perWorker = 500

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				key := w*perWorker + i
				m.Store(key, key)
				v, ok := m.Load(key)
				if !ok || v != key {
					t.Errorf("lost key %d", key)
				}
				m.Compute(-1, func(old int, _ bool) (int, bool) { return old + 1, true })
			}
		}()
	}
	wg.Wait()

	counter, ok := m.Load(-1)
	require.True(t, ok)
	assert.Equal(t, workers*perWorker, counter)
	assert.Equal(t, workers*perWorker+1, m.Len())
}
