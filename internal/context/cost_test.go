package context

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMulCap(t *testing.T) {
	cases := []struct {
		a, b, want int
	}{
		{3, 4, 12},
		{0, math.MaxInt, 0},
		{-2, 5, 0},
		{math.MaxInt, 1, math.MaxInt},
		{math.MaxInt / 2, 3, math.MaxInt},
		{2000000000, 2000000000, 4000000000000000000},
		{4000000000000000000, 2000000000, math.MaxInt},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MulCap(tc.a, tc.b), "%d * %d", tc.a, tc.b)
	}
}

func TestAddCap(t *testing.T) {
	assert.Equal(t, 7, AddCap(3, 4))
	assert.Equal(t, 4, AddCap(-3, 4))
	assert.Equal(t, math.MaxInt, AddCap(math.MaxInt, 1))
	assert.Equal(t, math.MaxInt, AddCap(math.MaxInt-1, math.MaxInt-1))
	assert.Equal(t, math.MaxInt, AddCap(math.MaxInt, 0))
}
