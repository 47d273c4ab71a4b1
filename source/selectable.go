package source

// SelectableItem pairs an item with a selection flag. Selectable items are identified by pointer,
// so the flag can change without changing the identity of the item.
type SelectableItem[T comparable] struct {
	Item     T
	Selected bool
}

// SelectableSource shows the items of a wrapped source, one to one, as [SelectableItem]s.
//
// Changing the selection doesn't perform any action; callers that want the surface to redraw
// the affected items use [ArraySource.ReloadItems].
type SelectableSource[T comparable] struct {
	*ArraySource[*SelectableItem[T]]
	wrapped List[T]
}

// NewSelectable returns a source that makes the items of wrapped selectable. The selectable
// source becomes the container of wrapped.
func NewSelectable[T comparable](wrapped List[T]) *SelectableSource[T] {
	s := &SelectableSource[T]{wrapped: wrapped}
	s.ArraySource = NewArray(s.wrap,
		WithViews[*SelectableItem[T]](wrapped.RegisterViews),
		WithCell(func(_ *SelectableItem[T], p Path) View {
			return wrapped.Cell(p)
		}),
		WithSupplementary[*SelectableItem[T]](wrapped.Supplementary),
		WithSectionMetrics[*SelectableItem[T]](wrapped.SectionMetrics),
		WithItemMetrics(func(_ *SelectableItem[T], p Path) ItemMetrics {
			return wrapped.ItemMetrics(p)
		}),
		WithCanEdit(func(_ *SelectableItem[T], p Path) bool {
			return wrapped.CanEdit(p)
		}),
	)
	s.self = s
	wrapped.SetContainer(selectableContainer[T]{s})
	return s
}

// wrap wraps the items of the wrapped source, reusing the wrappers of items that are already
// shown so that they keep their identity and selection.
func (s *SelectableSource[T]) wrap() []*SelectableItem[T] {
	prev := make(map[T]*SelectableItem[T], len(s.items))
	for _, it := range s.items {
		prev[it.Item] = it
	}
	items := s.wrapped.Items()
	ret := make([]*SelectableItem[T], len(items))
	for i, it := range items {
		if w, ok := prev[it]; ok {
			ret[i] = w
		} else {
			ret[i] = &SelectableItem[T]{Item: it}
		}
	}
	return ret
}

// Wrapped returns the wrapped source.
func (s *SelectableSource[T]) Wrapped() List[T] { return s.wrapped }

// SetSelected sets the selection flag of the item at position i.
func (s *SelectableSource[T]) SetSelected(i int, selected bool) {
	s.At(i).Selected = selected
}

// SelectAll sets the selection flag of all items.
func (s *SelectableSource[T]) SelectAll(selected bool) {
	for _, it := range s.Items() {
		it.Selected = selected
	}
}

// SelectedItems returns the selected items, in order.
func (s *SelectableSource[T]) SelectedItems() []T {
	var ret []T
	for _, it := range s.Items() {
		if it.Selected {
			ret = append(ret, it.Item)
		}
	}
	return ret
}

// SelectedCount returns the number of selected items.
func (s *SelectableSource[T]) SelectedCount() int {
	n := 0
	for _, it := range s.Items() {
		if it.Selected {
			n++
		}
	}
	return n
}

// SetEditing sets the editing flag of s and the wrapped source.
func (s *SelectableSource[T]) SetEditing(editing bool) {
	s.ArraySource.SetEditing(editing)
	s.wrapped.SetEditing(editing)
}

// selectableContainer is the container of the wrapped source.
type selectableContainer[T comparable] struct {
	s *SelectableSource[T]
}

func (c selectableContainer[T]) Surface() Surface { return c.s.surface() }

func (c selectableContainer[T]) GlobalPath(local Path, _ Source) (Path, bool) {
	return GlobalPath(c.s, local)
}

func (c selectableContainer[T]) LocalPath(global Path, _ Source) (Path, bool) {
	return LocalPath(c.s, global)
}

// Perform rewraps the items whenever the wrapped source changed.
func (c selectableContainer[T]) Perform(_ Source, a Action) {
	if a.Kind == KindReload {
		c.s.perform(a)
		return
	}
	c.s.Update(c.s.wrap())
}
