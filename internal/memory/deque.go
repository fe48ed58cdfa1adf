// Package memory tracks salient entities per speaker and for the whole
// conversation so pronoun subjects can be resolved later.
package memory

import "github.com/ppiankov/claimify/internal/model"

// DefaultDequeSize bounds each entity deque.
const DefaultDequeSize = 20

// EntityDeque is a bounded, most-recent-first list of entities with unique
// canonical forms.
type EntityDeque struct {
	items   []model.Entity
	maxSize int
}

// NewEntityDeque creates a deque holding at most maxSize entities.
func NewEntityDeque(maxSize int) *EntityDeque {
	if maxSize <= 0 {
		maxSize = DefaultDequeSize
	}
	return &EntityDeque{maxSize: maxSize}
}

// Push inserts e at the front. An entity with the same canonical form is
// replaced; the oldest entity is evicted when the deque is full.
func (d *EntityDeque) Push(e model.Entity) {
	items := make([]model.Entity, 0, len(d.items)+1)
	items = append(items, e)
	for _, it := range d.items {
		if it.Canonical != e.Canonical {
			items = append(items, it)
		}
	}
	if len(items) > d.maxSize {
		items = items[:d.maxSize]
	}
	d.items = items
}

// Pop removes and returns the most recent entity.
func (d *EntityDeque) Pop() (model.Entity, bool) {
	if len(d.items) == 0 {
		return model.Entity{}, false
	}
	e := d.items[0]
	d.items = d.items[1:]
	return e, true
}

// Peek returns the most recent entity without removing it.
func (d *EntityDeque) Peek() (model.Entity, bool) {
	if len(d.items) == 0 {
		return model.Entity{}, false
	}
	return d.items[0], true
}

// Get returns the entity with the given canonical form.
func (d *EntityDeque) Get(canonical string) (model.Entity, bool) {
	for _, it := range d.items {
		if it.Canonical == canonical {
			return it, true
		}
	}
	return model.Entity{}, false
}

// Items returns a copy of the entities, most recent first.
func (d *EntityDeque) Items() []model.Entity {
	out := make([]model.Entity, len(d.items))
	copy(out, d.items)
	return out
}

// Len returns the number of entities held.
func (d *EntityDeque) Len() int {
	return len(d.items)
}

// MostSalient returns the highest-salience entity. Ties go to the more
// recent entity.
func (d *EntityDeque) MostSalient() (model.Entity, bool) {
	if len(d.items) == 0 {
		return model.Entity{}, false
	}
	best := d.items[0]
	for _, it := range d.items[1:] {
		if it.Salience > best.Salience {
			best = it
		}
	}
	return best, true
}
