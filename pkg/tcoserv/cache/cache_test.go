package cache

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/dal"
)

func TestKey(t *testing.T) {
	base := Key(dal.Defaults())
	assert.True(t, strings.HasPrefix(base, "tco:"))
	assert.Len(t, base, len("tco:")+16)
	assert.Equal(t, base, Key(dal.Defaults()))

	seen := map[string]dal.Field{}
	for _, f := range dal.Fields() {
		v, _ := dal.Defaults().Get(f)
		p, err := dal.Defaults().With(f, v+1)
		require.NoError(t, err)

		k := Key(p)
		assert.NotEqual(t, base, k, "field %s", f)
		prev, dup := seen[k]
		assert.False(t, dup, "fields %s and %s share a key", prev, f)
		seen[k] = f
	}
}

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(4)

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	want := dal.TCOResult{TCOEV: 1, TCOGas: 2, DiffTCO: -1}
	require.NoError(t, m.Set(ctx, "a", want))

	got, ok, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestMemory_Evicts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)

	require.NoError(t, m.Set(ctx, "a", dal.TCOResult{KmTotal: 1}))
	require.NoError(t, m.Set(ctx, "b", dal.TCOResult{KmTotal: 2}))
	require.NoError(t, m.Set(ctx, "b", dal.TCOResult{KmTotal: 3}))
	assert.Equal(t, 2, m.Len())

	require.NoError(t, m.Set(ctx, "c", dal.TCOResult{KmTotal: 4}))
	assert.Equal(t, 2, m.Len())

	_, ok, _ := m.Get(ctx, "a")
	assert.False(t, ok)

	got, ok, _ := m.Get(ctx, "b")
	assert.True(t, ok)
	assert.Equal(t, float64(3), got.KmTotal)
}

func TestMemory_Concurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(16)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, _ := dal.Defaults().With(dal.FieldYears, float64(i%20+1))
			_ = m.Set(ctx, Key(p), dal.TCOResult{KmTotal: float64(i)})
			_, _, _ = m.Get(ctx, Key(p))
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, m.Len(), 16)
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Noop{}

	require.NoError(t, c.Set(ctx, "a", dal.TCOResult{KmTotal: 1}))
	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

// Runs only against a live server, e.g. TCO_TEST_REDIS_ADDR=localhost:6379.
func TestRedis_RoundTrip(t *testing.T) {
	addr := os.Getenv("TCO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TCO_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	r := NewRedis(addr, time.Minute)
	defer r.Close()
	require.NoError(t, r.Ping(ctx))

	key := Key(dal.Defaults())
	want := dal.TCOResult{KmTotal: 60000, DiffTCO: -25000}
	require.NoError(t, r.Set(ctx, key, want))

	got, ok, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	_, ok, err = r.Get(ctx, "tco:missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
