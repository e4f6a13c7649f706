package uid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsIncreasing(t *testing.T) {
	require.NoError(t, Init(1))

	prev := Generate()
	for i := 0; i < 1000; i++ {
		next := Generate()
		assert.Greater(t, next, prev)
		prev = next
	}
}
