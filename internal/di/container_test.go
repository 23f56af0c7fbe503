package di_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/swapquote/internal/di"
)

type counter struct{ n int }

func TestContainer_LazySingleton(t *testing.T) {
	c := di.NewContainer()
	tok := di.NewToken[*counter]("test.counter")

	var built atomic.Int32
	di.RegisterToken(c, tok, func(di.ServiceRegistry) *counter {
		built.Add(1)
		return &counter{n: 7}
	})
	assert.Equal(t, int32(0), built.Load(), "factory must not run before first Get")

	var wg sync.WaitGroup
	results := make([]*counter, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = di.GetToken(c, tok)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), built.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestContainer_FactoriesResolveDependencies(t *testing.T) {
	c := di.NewContainer()
	c.Register("base", 40)

	tok := di.NewToken[int]("test.sum")
	di.RegisterToken(c, tok, func(sr di.ServiceRegistry) int {
		return sr.Get("base").(int) + 2
	})

	require.True(t, c.Has("test.sum"))
	assert.Equal(t, 42, di.GetToken(c, tok))
}

func TestContainer_MissingServicePanics(t *testing.T) {
	c := di.NewContainer()
	assert.False(t, c.Has("nope"))
	assert.Panics(t, func() { c.Get("nope") })

	c.Register("wrong", "a string")
	assert.Panics(t, func() { di.GetToken(c, di.NewToken[int]("wrong")) })
}
