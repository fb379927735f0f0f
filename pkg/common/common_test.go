package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUUIDint64Unique(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := UUIDint64()
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestUUID(t *testing.T) {
	a, b := UUID(), UUID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestStringHelpers(t *testing.T) {
	assert.True(t, IsEmptyOrNA(""))
	assert.True(t, IsEmptyOrNA("N/A"))
	assert.False(t, IsEmptyOrNA("x"))
	assert.Equal(t, "", StringValue(nil))
	assert.Equal(t, "x", StringValue(StringPtr("x")))
}
