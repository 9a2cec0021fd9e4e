package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type counter struct{ n int }

func TestPoolResetsOnPut(t *testing.T) {
	p := NewHotPool(func() *counter { return &counter{} }, 2).
		WithReset(func(c *counter) { c.n = 0 })

	c := p.Get()
	c.n = 42
	p.Put(c)

	assert.Equal(t, 0, c.n)
	assert.NotNil(t, p.Get())
}
