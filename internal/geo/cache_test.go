package geo_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stratawatch/cii-engine/internal/geo"
)

// countingBoundaries records how many lookups reached the inner index.
type countingBoundaries struct {
	codes map[string]string // keyed like the cache, "%.2f,%.2f"
	calls int
}

func (c *countingBoundaries) CountryAt(lat, lon float64) string {
	c.calls++
	return c.codes[fmt.Sprintf("%.2f,%.2f", lat, lon)]
}

func TestCachedBoundaryIndex(t *testing.T) {
	t.Run("repeated lookups hit the cache", func(t *testing.T) {
		inner := &countingBoundaries{codes: map[string]string{"48.85,2.35": "FR"}}
		cached := geo.NewCachedBoundaryIndex(inner, 10)

		assert.Equal(t, "FR", cached.CountryAt(48.85, 2.35))
		assert.Equal(t, "FR", cached.CountryAt(48.85, 2.35))
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("nearby coordinates share a cache cell", func(t *testing.T) {
		inner := &countingBoundaries{codes: map[string]string{"48.85,2.35": "FR"}}
		cached := geo.NewCachedBoundaryIndex(inner, 10)

		assert.Equal(t, "FR", cached.CountryAt(48.851, 2.351))
		assert.Equal(t, "FR", cached.CountryAt(48.854, 2.354))
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("misses are not cached", func(t *testing.T) {
		inner := &countingBoundaries{codes: map[string]string{}}
		cached := geo.NewCachedBoundaryIndex(inner, 10)

		assert.Empty(t, cached.CountryAt(0.5, 0.5))
		assert.Empty(t, cached.CountryAt(0.5, 0.5))
		assert.Equal(t, 2, inner.calls, "gaps must stay visible to boundary-set updates")
	})

	t.Run("evicts least recently used beyond capacity", func(t *testing.T) {
		inner := &countingBoundaries{codes: map[string]string{
			"10.00,10.00": "AA",
			"20.00,20.00": "BB",
			"30.00,30.00": "CC",
		}}
		cached := geo.NewCachedBoundaryIndex(inner, 2)

		cached.CountryAt(10, 10)
		cached.CountryAt(20, 20)
		cached.CountryAt(30, 30) // evicts (10,10)
		assert.Equal(t, 3, inner.calls)

		cached.CountryAt(10, 10)
		assert.Equal(t, 4, inner.calls, "evicted entry requires a fresh lookup")

		cached.CountryAt(20, 20)
		assert.Equal(t, 5, inner.calls, "(20,20) was evicted when (10,10) was re-fetched")
	})
}
