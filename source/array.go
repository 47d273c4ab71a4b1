package source

import (
	"slices"

	"znkr.io/sauce/diff"
)

// ArraySource is a leaf source with a single section that displays a snapshot of items.
//
// The snapshot is loaded lazily on first access. Replacing it with [ArraySource.Update] performs
// the edit actions that transform the old into the new snapshot. Items are identified by ==.
type ArraySource[T comparable] struct {
	node

	load   func() []T
	items  []T
	loaded bool
	index  map[T]int // lazily built position index, nil when stale

	views          func(s Surface)
	cell           func(item T, p Path) View
	supplementary  func(kind string, p Path) View
	sectionMetrics func(section int) SectionMetrics
	itemMetrics    func(item T, p Path) ItemMetrics
	canEdit        func(item T, p Path) bool
	moved          func(item T, from, to int)
}

// ArrayOption configures an [ArraySource].
type ArrayOption[T comparable] func(*ArraySource[T])

// WithViews sets the function that registers the reusable views of the source.
func WithViews[T comparable](f func(s Surface)) ArrayOption[T] {
	return func(a *ArraySource[T]) { a.views = f }
}

// WithCell sets the function that creates the view for an item. Without it, the item itself is
// used as view.
func WithCell[T comparable](f func(item T, p Path) View) ArrayOption[T] {
	return func(a *ArraySource[T]) { a.cell = f }
}

// WithSupplementary sets the function that creates supplementary views.
func WithSupplementary[T comparable](f func(kind string, p Path) View) ArrayOption[T] {
	return func(a *ArraySource[T]) { a.supplementary = f }
}

// WithSectionMetrics sets the function that returns the metrics of the section.
func WithSectionMetrics[T comparable](f func(section int) SectionMetrics) ArrayOption[T] {
	return func(a *ArraySource[T]) { a.sectionMetrics = f }
}

// WithItemMetrics sets the function that returns the metrics of an item.
func WithItemMetrics[T comparable](f func(item T, p Path) ItemMetrics) ArrayOption[T] {
	return func(a *ArraySource[T]) { a.itemMetrics = f }
}

// WithCanEdit sets the function that decides whether an item can be edited.
func WithCanEdit[T comparable](f func(item T, p Path) bool) ArrayOption[T] {
	return func(a *ArraySource[T]) { a.canEdit = f }
}

// WithMove enables moving items. f is called after the source reordered its snapshot.
func WithMove[T comparable](f func(item T, from, to int)) ArrayOption[T] {
	return func(a *ArraySource[T]) { a.moved = f }
}

// NewArray returns a source whose initial snapshot is loaded by load. A nil load function
// results in an empty snapshot.
func NewArray[T comparable](load func() []T, opts ...ArrayOption[T]) *ArraySource[T] {
	a := &ArraySource[T]{load: load}
	a.self = a
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(a)
	}
	return a
}

// Items returns the current snapshot. It must not be modified.
func (a *ArraySource[T]) Items() []T {
	if !a.loaded {
		if a.load != nil {
			a.items = a.load()
		}
		a.loaded = true
	}
	return a.items
}

// Loaded reports whether the snapshot has been materialized.
func (a *ArraySource[T]) Loaded() bool { return a.loaded }

// Len returns the number of items.
func (a *ArraySource[T]) Len() int { return len(a.Items()) }

// At returns the item at position i.
func (a *ArraySource[T]) At(i int) T {
	items := a.Items()
	if i < 0 || i >= len(items) {
		fatalf(ErrOutOfRange, "item %d of %d", i, len(items))
	}
	return items[i]
}

// IndexOf returns the position of item. It panics if the source doesn't contain item or if the
// snapshot contains an item more than once.
func (a *ArraySource[T]) IndexOf(item T) int {
	items := a.Items()
	if a.index == nil {
		a.index = make(map[T]int, len(items))
		for i, it := range items {
			if j, ok := a.index[it]; ok {
				a.index = nil
				fatalf(ErrDuplicate, "item %v at positions %d and %d", it, j, i)
			}
			a.index[it] = i
		}
	}
	i, ok := a.index[item]
	if !ok {
		fatalf(ErrNotFound, "item %v", item)
	}
	return i
}

// PathOf returns the path of item in the index space of the source.
func (a *ArraySource[T]) PathOf(item T) Path {
	return Path{0, a.IndexOf(item)}
}

// Update replaces the snapshot and performs the actions that transform the old snapshot into
// the new one as a single batch. Nothing is performed if the snapshots are equal.
func (a *ArraySource[T]) Update(items []T) {
	old := a.Items()
	a.items = items
	a.loaded = true
	a.index = nil

	if act, ok := ItemActions(diff.Compute(old, items), 0); ok {
		a.perform(act)
	}
}

// ReloadItems performs a reload of the items at the given positions without changing the
// snapshot.
func (a *ArraySource[T]) ReloadItems(positions ...int) {
	if len(positions) == 0 {
		return
	}
	paths := make([]Path, len(positions))
	for i, pos := range positions {
		a.At(pos)
		paths[i] = Path{0, pos}
	}
	a.perform(Reload(paths...))
}

func (a *ArraySource[T]) item(p Path) T {
	if p.Section != 0 {
		fatalf(ErrOutOfRange, "section %d of 1", p.Section)
	}
	return a.At(p.Item)
}

func (a *ArraySource[T]) SectionCount() int { return 1 }

func (a *ArraySource[T]) ItemCount(section int) int {
	if section != 0 {
		fatalf(ErrOutOfRange, "section %d of 1", section)
	}
	return a.Len()
}

func (a *ArraySource[T]) ItemAt(p Path) any { return a.item(p) }

func (a *ArraySource[T]) Cell(p Path) View {
	it := a.item(p)
	if a.cell == nil {
		return it
	}
	return a.cell(it, p)
}

func (a *ArraySource[T]) Supplementary(kind string, p Path) View {
	if a.supplementary == nil {
		return nil
	}
	return a.supplementary(kind, p)
}

func (a *ArraySource[T]) SectionMetrics(section int) SectionMetrics {
	if section != 0 {
		fatalf(ErrOutOfRange, "section %d of 1", section)
	}
	if a.sectionMetrics == nil {
		return nil
	}
	return a.sectionMetrics(section)
}

func (a *ArraySource[T]) ItemMetrics(p Path) ItemMetrics {
	it := a.item(p)
	if a.itemMetrics == nil {
		return nil
	}
	return a.itemMetrics(it, p)
}

func (a *ArraySource[T]) CanEdit(p Path) bool {
	it := a.item(p)
	return a.canEdit != nil && a.canEdit(it, p)
}

func (a *ArraySource[T]) RegisterViews(s Surface) {
	if a.views != nil {
		a.views(s)
	}
}

func (a *ArraySource[T]) Mover() Mover {
	if a.moved == nil {
		return nil
	}
	return arrayMover[T]{a}
}

type arrayMover[T comparable] struct{ a *ArraySource[T] }

func (m arrayMover[T]) CanMove(p Path) bool {
	m.a.item(p)
	return true
}

func (m arrayMover[T]) Move(from, to Path) {
	it := m.a.item(from)
	if to.Section != 0 || to.Item < 0 || to.Item >= m.a.Len() {
		fatalf(ErrOutOfRange, "move target %v", to)
	}
	items := slices.Clone(m.a.items)
	items = slices.Delete(items, from.Item, from.Item+1)
	items = slices.Insert(items, to.Item, it)
	m.a.items = items
	m.a.index = nil
	m.a.moved(it, from.Item, to.Item)
}
