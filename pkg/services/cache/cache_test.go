package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name   string
	Amount decimal.Decimal
	Tags   []string
}

func TestTTLCache_SetGet(t *testing.T) {
	c := NewTTL[string, entry]("test", 10, time.Minute, zerolog.Nop())

	_, ok, err := c.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set("a", entry{Name: "Widget", Amount: decimal.RequireFromString("1200.50"), Tags: []string{"goods"}}))

	got, ok, err := c.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Widget", got.Name)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("1200.5")))
	assert.Equal(t, []string{"goods"}, got.Tags)
	assert.Equal(t, 1, c.Len())
}

func TestTTLCache_ReturnsCopies(t *testing.T) {
	c := NewTTL[string, entry]("test", 10, time.Minute, zerolog.Nop())
	require.NoError(t, c.Set("a", entry{Tags: []string{"goods"}}))

	first, _, err := c.Get("a")
	require.NoError(t, err)
	first.Tags[0] = "mutated"

	second, _, err := c.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "goods", second.Tags[0])
}

func TestTTLCache_Expiry(t *testing.T) {
	c := NewTTL[int, string]("test", 10, 20*time.Millisecond, zerolog.Nop())
	require.NoError(t, c.Set(1, "value"))

	assert.Eventually(t, func() bool {
		_, ok, err := c.Get(1)
		return err == nil && !ok
	}, time.Second, 10*time.Millisecond)
}

func TestTTLCache_RemoveAndBound(t *testing.T) {
	c := NewTTL[int, string]("test", 2, time.Minute, zerolog.Nop())
	require.NoError(t, c.Set(1, "one"))
	require.NoError(t, c.Set(2, "two"))
	require.NoError(t, c.Set(3, "three"))
	assert.Equal(t, 2, c.Len())

	_, ok, _ := c.Get(1)
	assert.False(t, ok, "oldest entry is evicted")

	require.NoError(t, c.Remove(2))
	_, ok, _ = c.Get(2)
	assert.False(t, ok)
}

func TestTTLCache_EncodeError(t *testing.T) {
	c := NewTTL[string, any]("test", 10, time.Minute, zerolog.Nop())
	err := c.Set("fn", func() {})
	assert.True(t, errors.Is(err, ErrCodec))
	assert.Equal(t, 0, c.Len())
}

func TestTTLCache_ConcurrentAccess(t *testing.T) {
	c := NewTTL[int, int]("test", 100, time.Minute, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = c.Set(j, i)
				_, _, _ = c.Get(j)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, c.Len())
}
