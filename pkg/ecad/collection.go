package ecad

import (
	"iter"
	"slices"
)

// Collection is an ordered set of entities, optionally indexed by name.
// Entities are kept in insertion order. When the collection is keyed, names
// are unique and matched case-sensitively; entities with an empty name are
// kept but not indexed.
//
// Collections returned by layout views and databases are the live owned
// sets: Clear empties the owner's collection. Entities are added only
// through the owner's create and add operations.
//
// Collection is not safe for concurrent use.
type Collection[T any] struct {
	items []T
	index map[string]int
	key   func(T) string
}

func newCollection[T any](key func(T) string) *Collection[T] {
	c := &Collection[T]{key: key}
	if key != nil {
		c.index = make(map[string]int)
	}
	return c
}

func (c *Collection[T]) add(item T) error {
	if c.key != nil {
		if name := c.key(item); name != "" {
			if _, ok := c.index[name]; ok {
				return ErrDuplicateName
			}
			c.index[name] = len(c.items)
		}
	}
	c.items = append(c.items, item)
	return nil
}

func (c *Collection[T]) taken(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Size returns the number of entities.
func (c *Collection[T]) Size() int {
	return len(c.items)
}

// At returns the entity at position i, or the zero value when i is out of
// range.
func (c *Collection[T]) At(i int) T {
	var zero T
	if i < 0 || i >= len(c.items) {
		return zero
	}
	return c.items[i]
}

// Lookup returns the entity with the given name, or the zero value when the
// collection is not keyed or the name is unknown.
func (c *Collection[T]) Lookup(name string) T {
	var zero T
	i, ok := c.index[name]
	if !ok {
		return zero
	}
	return c.items[i]
}

// Contains reports whether an entity with the given name exists.
func (c *Collection[T]) Contains(name string) bool {
	return c.taken(name)
}

// Names returns the indexed names in insertion order.
func (c *Collection[T]) Names() []string {
	if c.key == nil {
		return nil
	}
	names := make([]string, 0, len(c.index))
	for _, it := range c.items {
		if n := c.key(it); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// Items returns a copy of the entities in insertion order.
func (c *Collection[T]) Items() []T {
	return slices.Clone(c.items)
}

// All iterates over the entities in insertion order.
func (c *Collection[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, it := range c.items {
			if !yield(i, it) {
				return
			}
		}
	}
}

// Iter returns an iterator over a snapshot of the collection.
func (c *Collection[T]) Iter() *Iterator[T] {
	return &Iterator[T]{items: slices.Clone(c.items), pos: -1}
}

// Clear removes every entity.
func (c *Collection[T]) Clear() {
	clear(c.items)
	c.items = c.items[:0]
	if c.index != nil {
		clear(c.index)
	}
	changed()
}

func (c *Collection[T]) reindex() {
	if c.key == nil {
		return
	}
	clear(c.index)
	for i, it := range c.items {
		if n := c.key(it); n != "" {
			c.index[n] = i
		}
	}
}

// Iterator walks a snapshot of a collection taken when the iterator was
// created. Do not mutate the collection while iterating: changes made after
// the snapshot are not observed.
type Iterator[T any] struct {
	items []T
	pos   int
}

// Next advances and returns the next entity, or the zero value (nil for
// entity pointers) once the iterator is exhausted.
func (it *Iterator[T]) Next() T {
	var zero T
	if it.pos+1 >= len(it.items) {
		it.pos = len(it.items)
		return zero
	}
	it.pos++
	return it.items[it.pos]
}

// Current returns the entity returned by the last call to Next, or the zero
// value before the first call and after exhaustion.
func (it *Iterator[T]) Current() T {
	var zero T
	if it.pos < 0 || it.pos >= len(it.items) {
		return zero
	}
	return it.items[it.pos]
}

// Reset restarts iteration from the first entity.
func (it *Iterator[T]) Reset() {
	it.pos = -1
}

// Len returns the number of entities in the snapshot.
func (it *Iterator[T]) Len() int {
	return len(it.items)
}

// Clone returns an independent iterator at the same position.
func (it *Iterator[T]) Clone() *Iterator[T] {
	return &Iterator[T]{items: it.items, pos: it.pos}
}
