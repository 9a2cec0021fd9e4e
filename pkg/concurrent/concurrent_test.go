package concurrent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zeusync/ccd/pkg/sequence"
)

func TestParallelMapKeepsOrder(t *testing.T) {
	in := make([]int, 64)
	for i := range in {
		in[i] = i
	}
	square := func(v int) int { return v * v }

	for _, workers := range []int{0, 1, 4, 64} {
		out := ParallelMap(sequence.From(in), workers, square)
		for i, v := range out {
			assert.Equal(t, i*i, v, "workers=%d", workers)
		}
	}
}
