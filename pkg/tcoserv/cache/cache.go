// Package cache memoizes TCO results by their input parameters.
package cache

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/dal"
)

const keyPrefix = "tco:"

// Cache stores computed results under a key derived from their input
type Cache interface {
	Get(ctx context.Context, key string) (dal.TCOResult, bool, error)
	Set(ctx context.Context, key string, result dal.TCOResult) error
}

// Key hashes the bit patterns of every field in field order, so inputs that
// differ in any field get different keys.
func Key(p dal.InputParameters) string {
	d := xxhash.New()
	var buf [8]byte
	for _, v := range p.Values() {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = d.Write(buf[:])
	}
	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], d.Sum64())
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Noop never holds anything
type Noop struct{}

func (Noop) Get(context.Context, string) (dal.TCOResult, bool, error) {
	return dal.TCOResult{}, false, nil
}

func (Noop) Set(context.Context, string, dal.TCOResult) error { return nil }

// Memory is a bounded in-process cache. The oldest entry is evicted once
// capacity is reached.
type Memory struct {
	mu       sync.Mutex
	capacity int
	order    []string
	data     map[string]dal.TCOResult
}

// NewMemory returns a Memory cache holding at most capacity entries
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 1
	}
	return &Memory{
		capacity: capacity,
		data:     make(map[string]dal.TCOResult, capacity),
	}
}

func (m *Memory) Get(_ context.Context, key string) (dal.TCOResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.data[key]
	return r, ok, nil
}

func (m *Memory) Set(_ context.Context, key string, result dal.TCOResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[key]; ok {
		m.data[key] = result
		return nil
	}

	if len(m.order) >= m.capacity {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.data, oldest)
	}

	m.order = append(m.order, key)
	m.data[key] = result
	return nil
}

// Len returns the number of cached entries
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
