package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferBasics(t *testing.T) {
	b := New[int](3)
	assert.Equal(t, 4, b.Cap()) // rounded up to power of 2
	assert.True(t, b.Empty())

	assert.True(t, b.PushBack(1))
	assert.True(t, b.PushBack(2))
	assert.True(t, b.PushBack(3))
	assert.True(t, b.PushBack(4))
	assert.True(t, b.Full())
	assert.False(t, b.PushBack(5))

	v, ok := b.PeekFront()
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = b.PopFront()
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.False(t, b.Full())

	assert.True(t, b.PushBack(5))
	for _, want := range []int{2, 3, 4, 5} {
		v, ok := b.PopFront()
		assert.True(t, ok)
		assert.Equal(t, want, v)
	}
	assert.True(t, b.Empty())
	_, ok = b.PopFront()
	assert.False(t, ok)
}

func TestBufferWraparound(t *testing.T) {
	b := New[string](2)
	assert.True(t, b.PushBack("a"))
	assert.True(t, b.PushBack("b"))
	v, _ := b.PopFront()
	assert.Equal(t, "a", v)
	assert.True(t, b.PushBack("c"))
	v, _ = b.PopFront()
	assert.Equal(t, "b", v)
	v, _ = b.PopFront()
	assert.Equal(t, "c", v)
}
