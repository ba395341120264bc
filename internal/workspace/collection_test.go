package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionIDsAreMonotonic(t *testing.T) {
	c := NewCollection(0, "a", "b")
	assert.Equal(t, 2, c.Len())

	require.True(t, c.Remove(2))
	id := c.Add("c")
	assert.Equal(t, 3, id, "ids are never reused")

	var ids []int
	for _, it := range c.Items() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []int{1, 3}, ids)
}

func TestCollectionMinimumSize(t *testing.T) {
	c := NewCollection(1, "only")
	assert.False(t, c.CanRemove(1))
	assert.False(t, c.Remove(1))
	assert.Equal(t, 1, c.Len())

	c.Add("second")
	assert.True(t, c.Remove(1))
	assert.False(t, c.Remove(2))
}

func TestCollectionRemovablePredicate(t *testing.T) {
	c := NewCollection(0, 1, 2, 3)
	c.SetRemovable(func(it Item[int]) bool { return it.ID > 2 })
	assert.False(t, c.Remove(1))
	assert.True(t, c.Remove(3))
	assert.False(t, c.Remove(99))
}

func TestCollectionUpdateAndGet(t *testing.T) {
	c := NewCollection[string](0)
	id := c.Add("draft")
	require.True(t, c.Update(id, func(s *string) { *s = "final" }))
	v, ok := c.Get(id)
	require.True(t, ok)
	assert.Equal(t, "final", v)

	assert.False(t, c.Update(42, func(*string) {}))
	_, ok = c.Get(42)
	assert.False(t, ok)

	it, ok := c.At(0)
	require.True(t, ok)
	assert.Equal(t, id, it.ID)
	_, ok = c.At(1)
	assert.False(t, ok)
}

func TestCollectionItemsIsACopy(t *testing.T) {
	c := NewCollection(0, "x")
	items := c.Items()
	items[0].Value = "mutated"
	v, _ := c.Get(1)
	assert.Equal(t, "x", v)
}
