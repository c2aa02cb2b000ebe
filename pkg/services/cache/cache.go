package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrCodec marks values that could not be encoded or decoded.
var ErrCodec = errors.New("cache codec failure")

// Cache is a concurrent-safe keyed store. Get returns ok=false on a miss or after the entry expired.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool, error)
	Set(key K, value V) error
	Remove(key K) error
	Len() int
}

// ttlCache keeps msgpack-encoded copies so callers can never mutate a cached value.
type ttlCache[K comparable, V any] struct {
	name    string
	entries *expirable.LRU[K, []byte]
	log     zerolog.Logger
}

// NewTTL returns a bounded cache whose entries expire ttl after they were set.
// size <= 0 leaves the cache unbounded.
func NewTTL[K comparable, V any](name string, size int, ttl time.Duration, log zerolog.Logger) Cache[K, V] {
	logger := log.With().Str("component", "cache").Str("cache", name).Logger()
	onEvict := func(key K, _ []byte) {
		logger.Trace().Interface("key", key).Msg("cache entry evicted")
	}
	return &ttlCache[K, V]{
		name:    name,
		entries: expirable.NewLRU[K, []byte](size, onEvict, ttl),
		log:     logger,
	}
}

func (c *ttlCache[K, V]) Get(key K) (V, bool, error) {
	var value V
	raw, ok := c.entries.Get(key)
	if !ok {
		return value, false, nil
	}
	if err := msgpack.Unmarshal(raw, &value); err != nil {
		c.entries.Remove(key)
		return value, false, fmt.Errorf("%w: decode %s entry: %v", ErrCodec, c.name, err)
	}
	return value, true, nil
}

func (c *ttlCache[K, V]) Set(key K, value V) error {
	raw, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s entry: %v", ErrCodec, c.name, err)
	}
	c.entries.Add(key, raw)
	return nil
}

func (c *ttlCache[K, V]) Remove(key K) error {
	c.entries.Remove(key)
	return nil
}

func (c *ttlCache[K, V]) Len() int {
	return c.entries.Len()
}
