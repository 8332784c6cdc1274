package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type LRUTestSuite struct {
	suite.Suite
	cache *LRU
}

func (suite *LRUTestSuite) SetupSubTest() {
	suite.cache = New(2)
}

func (suite *LRUTestSuite) TestNew() {
	suite.Run("default capacity", func() {
		c := New(0)

		suite.Equal(DefaultCapacity, c.Stats().Capacity)
	})
}

func (suite *LRUTestSuite) TestGet() {
	suite.Run("miss", func() {
		e, ok := suite.cache.Get("abc123")

		suite.False(ok)
		suite.Zero(e)
		suite.Equal(uint64(1), suite.cache.Stats().Misses)
	})

	suite.Run("hit", func() {
		suite.cache.Put("abc123", Entry{OriginalURL: "https://example.com"})

		e, ok := suite.cache.Get("abc123")

		suite.True(ok)
		suite.Equal("https://example.com", e.OriginalURL)
		suite.False(e.Absent)
		suite.Equal(uint64(1), suite.cache.Stats().Hits)
	})

	suite.Run("tombstone is a hit", func() {
		suite.cache.Put("abc123", Tombstone)

		e, ok := suite.cache.Get("abc123")

		suite.True(ok)
		suite.True(e.Absent)
	})
}

func (suite *LRUTestSuite) TestEviction() {
	suite.Run("oldest insertion evicted first", func() {
		suite.cache.Put("a", Entry{OriginalURL: "https://example.com/a"})
		suite.cache.Put("b", Entry{OriginalURL: "https://example.com/b"})
		suite.cache.Put("c", Entry{OriginalURL: "https://example.com/c"})

		_, ok := suite.cache.Get("a")
		suite.False(ok)

		_, ok = suite.cache.Get("b")
		suite.True(ok)

		_, ok = suite.cache.Get("c")
		suite.True(ok)
	})

	suite.Run("read refreshes recency", func() {
		suite.cache.Put("a", Entry{OriginalURL: "https://example.com/a"})
		suite.cache.Put("b", Entry{OriginalURL: "https://example.com/b"})
		suite.cache.Get("a")
		suite.cache.Put("c", Entry{OriginalURL: "https://example.com/c"})

		_, ok := suite.cache.Get("b")
		suite.False(ok)

		_, ok = suite.cache.Get("a")
		suite.True(ok)
	})

	suite.Run("overwrite refreshes recency", func() {
		suite.cache.Put("a", Entry{OriginalURL: "https://example.com/a"})
		suite.cache.Put("b", Entry{OriginalURL: "https://example.com/b"})
		suite.cache.Put("a", Entry{OriginalURL: "https://example.com/a2"})
		suite.cache.Put("c", Entry{OriginalURL: "https://example.com/c"})

		_, ok := suite.cache.Get("b")
		suite.False(ok)

		e, ok := suite.cache.Get("a")
		suite.True(ok)
		suite.Equal("https://example.com/a2", e.OriginalURL)
	})

	suite.Run("size never exceeds capacity", func() {
		for i := 0; i < 10; i++ {
			suite.cache.Put(fmt.Sprintf("code%d", i), Tombstone)
		}

		suite.Equal(2, suite.cache.Len())
	})
}

func (suite *LRUTestSuite) TestInvalidate() {
	suite.Run("removes entry", func() {
		suite.cache.Put("abc123", Entry{OriginalURL: "https://example.com"})

		suite.cache.Invalidate("abc123")

		_, ok := suite.cache.Get("abc123")
		suite.False(ok)
	})

	suite.Run("unknown code", func() {
		suite.NotPanics(func() {
			suite.cache.Invalidate("unknown")
		})
	})
}

func (suite *LRUTestSuite) TestPutIfEpoch() {
	suite.Run("stored when nothing was invalidated", func() {
		epoch := suite.cache.Epoch()

		suite.True(suite.cache.PutIfEpoch("abc123", Tombstone, epoch))

		_, ok := suite.cache.Get("abc123")
		suite.True(ok)
	})

	suite.Run("dropped after invalidate", func() {
		epoch := suite.cache.Epoch()
		suite.cache.Invalidate("abc123")

		suite.False(suite.cache.PutIfEpoch("abc123", Tombstone, epoch))

		_, ok := suite.cache.Get("abc123")
		suite.False(ok)
	})

	suite.Run("dropped after clear", func() {
		epoch := suite.cache.Epoch()
		suite.cache.Clear()

		suite.False(suite.cache.PutIfEpoch("abc123", Entry{OriginalURL: "https://example.com"}, epoch))
	})

	suite.Run("stored after another code is invalidated", func() {
		epoch := suite.cache.Epoch()
		suite.cache.Invalidate("xyz789")

		suite.True(suite.cache.PutIfEpoch("abc123", Entry{OriginalURL: "https://example.com"}, epoch))

		e, ok := suite.cache.Get("abc123")
		suite.True(ok)
		suite.Equal("https://example.com", e.OriginalURL)
	})

	suite.Run("stored when taken after invalidate", func() {
		suite.cache.Invalidate("abc123")
		epoch := suite.cache.Epoch()

		suite.True(suite.cache.PutIfEpoch("abc123", Tombstone, epoch))
	})

	suite.Run("older token still dropped after a newer put", func() {
		older := suite.cache.Epoch()
		suite.cache.Invalidate("abc123")
		newer := suite.cache.Epoch()

		suite.True(suite.cache.PutIfEpoch("abc123", Entry{OriginalURL: "https://example.com/new"}, newer))
		suite.False(suite.cache.PutIfEpoch("abc123", Entry{OriginalURL: "https://example.com/old"}, older))

		e, ok := suite.cache.Get("abc123")
		suite.True(ok)
		suite.Equal("https://example.com/new", e.OriginalURL)
	})

	suite.Run("many invalidations keep tracking bounded", func() {
		epoch := suite.cache.Epoch()
		for i := 0; i < 5; i++ {
			suite.cache.Invalidate(fmt.Sprintf("code%d", i))
		}

		suite.LessOrEqual(len(suite.cache.invalidated), 2)
		suite.False(suite.cache.PutIfEpoch("code4", Tombstone, epoch))
		suite.True(suite.cache.PutIfEpoch("code4", Tombstone, suite.cache.Epoch()))
	})
}

func (suite *LRUTestSuite) TestClear() {
	suite.Run("drops entries and counters", func() {
		suite.cache.Put("a", Entry{OriginalURL: "https://example.com/a"})
		suite.cache.Get("a")
		suite.cache.Get("b")

		suite.cache.Clear()

		suite.Equal(Stats{Capacity: 2, TotalHits: 1, TotalMisses: 1}, suite.cache.Stats())
	})

	suite.Run("lifetime totals survive clear", func() {
		suite.cache.Put("a", Entry{OriginalURL: "https://example.com/a"})
		suite.cache.Get("a")
		suite.cache.Clear()
		suite.cache.Get("a")

		stats := suite.cache.Stats()

		suite.Zero(stats.Hits)
		suite.Equal(uint64(1), stats.Misses)
		suite.Equal(uint64(1), stats.TotalHits)
		suite.Equal(uint64(1), stats.TotalMisses)
	})
}

func (suite *LRUTestSuite) TestStats() {
	suite.Run("no accesses", func() {
		stats := suite.cache.Stats()

		suite.Zero(stats.HitRate)
		suite.Equal(2, stats.Capacity)
	})

	suite.Run("hit rate", func() {
		expiresAt := time.Now().Add(time.Hour)
		suite.cache.Put("a", Entry{OriginalURL: "https://example.com/a", ExpiresAt: &expiresAt})
		suite.cache.Get("a")
		suite.cache.Get("a")
		suite.cache.Get("a")
		suite.cache.Get("b")

		stats := suite.cache.Stats()

		suite.Equal(1, stats.Size)
		suite.Equal(uint64(3), stats.Hits)
		suite.Equal(uint64(1), stats.Misses)
		suite.InDelta(0.75, stats.HitRate, 1e-9)
	})
}

func (suite *LRUTestSuite) TestConcurrentAccess() {
	suite.Run("bounded under contention", func() {
		c := New(50)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(worker int) {
				defer wg.Done()

				for j := 0; j < 500; j++ {
					code := fmt.Sprintf("w%d-%d", worker, j%80)
					if _, ok := c.Get(code); !ok {
						c.Put(code, Entry{OriginalURL: "https://example.com/" + code})
					}
					if j%40 == 0 {
						c.Invalidate(code)
					}
				}
			}(i)
		}
		wg.Wait()

		stats := c.Stats()
		suite.LessOrEqual(stats.Size, 50)
		suite.Equal(uint64(8*500), stats.Hits+stats.Misses)
	})
}

func TestLRUTestSuite(t *testing.T) {
	suite.Run(t, new(LRUTestSuite))
}
