// Package workspace holds the console's view state independent of any
// renderer: navigation shell, case list, case detail and every detail tab.
package workspace

// Item is a collection record with its collection-scoped id.
type Item[T any] struct {
	ID    int
	Value T
}

// Collection is an ordered, editable list of records keyed by an int id.
// Ids start at 1, increase monotonically and are never reused, even after
// removal.
type Collection[T any] struct {
	items     []Item[T]
	nextID    int
	min       int
	removable func(Item[T]) bool
}

// NewCollection returns a collection that refuses to shrink below min and is
// pre-populated with seed in order.
func NewCollection[T any](min int, seed ...T) *Collection[T] {
	c := &Collection[T]{nextID: 1, min: min}
	for _, v := range seed {
		c.Add(v)
	}
	return c
}

// SetRemovable installs a per-item predicate consulted by Remove.
func (c *Collection[T]) SetRemovable(fn func(Item[T]) bool) {
	c.removable = fn
}

// Add appends v and returns its id.
func (c *Collection[T]) Add(v T) int {
	id := c.nextID
	c.nextID++
	c.items = append(c.items, Item[T]{ID: id, Value: v})
	return id
}

// CanRemove reports whether Remove(id) would succeed.
func (c *Collection[T]) CanRemove(id int) bool {
	if len(c.items) <= c.min {
		return false
	}
	i := c.index(id)
	if i < 0 {
		return false
	}
	return c.removable == nil || c.removable(c.items[i])
}

// Remove deletes the record with id. It is a no-op returning false when the
// id is unknown, the collection is at its minimum size or the record is not
// removable.
func (c *Collection[T]) Remove(id int) bool {
	if !c.CanRemove(id) {
		return false
	}
	i := c.index(id)
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// Update applies fn to the record with id in place.
func (c *Collection[T]) Update(id int, fn func(*T)) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	fn(&c.items[i].Value)
	return true
}

// Get returns the record with id.
func (c *Collection[T]) Get(id int) (T, bool) {
	if i := c.index(id); i >= 0 {
		return c.items[i].Value, true
	}
	var zero T
	return zero, false
}

// At returns the record at position i in display order.
func (c *Collection[T]) At(i int) (Item[T], bool) {
	if i < 0 || i >= len(c.items) {
		return Item[T]{}, false
	}
	return c.items[i], true
}

// Items returns a copy of the records in display order.
func (c *Collection[T]) Items() []Item[T] {
	out := make([]Item[T], len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of records.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

func (c *Collection[T]) index(id int) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}
