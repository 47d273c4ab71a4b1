package source

// Scope is a named partition of the items a [Filter] can restrict to.
type Scope[S any] struct {
	Value S
	Title string
}

// Filter decides which items a [FilteredSource] shows.
type Filter[T, S any] interface {
	// Scopes returns the available scopes. The first scope is selected initially.
	Scopes() []Scope[S]
	Match(item T, scope S, search string) bool
}

// NewFilter returns a filter with the given scopes that uses match to decide about items.
func NewFilter[T, S any](scopes []Scope[S], match func(item T, scope S, search string) bool) Filter[T, S] {
	return funcFilter[T, S]{scopes, match}
}

type funcFilter[T, S any] struct {
	scopes []Scope[S]
	match  func(item T, scope S, search string) bool
}

func (f funcFilter[T, S]) Scopes() []Scope[S] { return f.scopes }

func (f funcFilter[T, S]) Match(item T, scope S, search string) bool {
	return f.match(item, scope, search)
}

// UnwrappingFilter applies a filter of T to selectable items of T.
type UnwrappingFilter[T comparable, S any] struct {
	Wrapped Filter[T, S]
}

func (f UnwrappingFilter[T, S]) Scopes() []Scope[S] { return f.Wrapped.Scopes() }

func (f UnwrappingFilter[T, S]) Match(item *SelectableItem[T], scope S, search string) bool {
	return f.Wrapped.Match(item.Item, scope, search)
}

// FilteredSource shows the items of a wrapped source that match a filter for the current scope
// and search text. It has two sections: a header section holding the search and scope controls
// and the section with the matching items.
//
// Whenever the scope, the search text or the items of the wrapped source change, the matching
// items are recomputed and the difference is performed like an [ArraySource.Update].
type FilteredSource[T comparable, S any] struct {
	*Composite

	filter  Filter[T, S]
	wrapped List[T]
	header  *Header
	content *ArraySource[T]

	scope  int
	search string
}

// NewFiltered returns a source that filters wrapped. The filtered source becomes the container
// of wrapped.
func NewFiltered[T comparable, S any](wrapped List[T], filter Filter[T, S]) *FilteredSource[T, S] {
	f := &FilteredSource[T, S]{
		Composite: NewComposite(),
		filter:    filter,
		wrapped:   wrapped,
	}
	f.self = f

	f.header = NewHeader(f.headerView)
	f.content = NewArray(f.matching,
		WithViews[T](wrapped.RegisterViews),
		WithCell(func(item T, _ Path) View {
			return wrapped.Cell(wrapped.PathOf(item))
		}),
		WithSectionMetrics[T](wrapped.SectionMetrics),
		WithItemMetrics(func(item T, _ Path) ItemMetrics {
			return wrapped.ItemMetrics(wrapped.PathOf(item))
		}),
		WithCanEdit(func(item T, _ Path) bool {
			return wrapped.CanEdit(wrapped.PathOf(item))
		}),
	)
	f.Add(f.header)
	f.Add(f.content)
	wrapped.SetContainer(filterContainer[T, S]{f})
	return f
}

func (f *FilteredSource[T, S]) matching() []T {
	var ret []T
	scope := f.Scope()
	for _, it := range f.wrapped.Items() {
		if f.filter.Match(it, scope, f.search) {
			ret = append(ret, it)
		}
	}
	return ret
}

func (f *FilteredSource[T, S]) refilter() { f.content.Update(f.matching()) }

func (f *FilteredSource[T, S]) headerView() HeaderView {
	v := HeaderView{
		Search:   f.search,
		Selected: f.scope,
	}
	for _, s := range f.filter.Scopes() {
		v.Scopes = append(v.Scopes, s.Title)
	}
	return v
}

// Header returns the header source.
func (f *FilteredSource[T, S]) Header() *Header { return f.header }

// Filter returns the filter.
func (f *FilteredSource[T, S]) Filter() Filter[T, S] { return f.filter }

// Wrapped returns the source being filtered.
func (f *FilteredSource[T, S]) Wrapped() List[T] { return f.wrapped }

// Scope returns the selected scope, or the zero value if the filter has no scopes.
func (f *FilteredSource[T, S]) Scope() S {
	scopes := f.filter.Scopes()
	if len(scopes) == 0 {
		var zero S
		return zero
	}
	return scopes[f.scope].Value
}

// ScopeIndex returns the index of the selected scope.
func (f *FilteredSource[T, S]) ScopeIndex() int { return f.scope }

// SelectScope selects the scope at index i.
func (f *FilteredSource[T, S]) SelectScope(i int) {
	if n := len(f.filter.Scopes()); i < 0 || i >= n {
		fatalf(ErrOutOfRange, "scope %d of %d", i, n)
	}
	f.scope = i
	f.refilter()
}

// SearchText returns the current search text.
func (f *FilteredSource[T, S]) SearchText() string { return f.search }

// SetSearchText sets the search text.
func (f *FilteredSource[T, S]) SetSearchText(search string) {
	f.search = search
	f.refilter()
}

// FilteredItems returns the matching items.
func (f *FilteredSource[T, S]) FilteredItems() []T { return f.content.Items() }

// Items implements [List].
func (f *FilteredSource[T, S]) Items() []T { return f.FilteredItems() }

// PathOf returns the path of a matching item in the index space of f.
func (f *FilteredSource[T, S]) PathOf(item T) Path {
	return f.UnmapPath(f.content.PathOf(item), f.content)
}

// WrappedPath translates a path of f into the index space of the wrapped source.
func (f *FilteredSource[T, S]) WrappedPath(p Path) Path {
	s, lp := f.MapPath(p)
	if s != Source(f.content) {
		fatalf(ErrOutOfRange, "%v is not a content path", p)
	}
	return f.wrapped.PathOf(f.content.At(lp.Item))
}

// SetEditing sets the editing flag of f and the wrapped source.
func (f *FilteredSource[T, S]) SetEditing(editing bool) {
	f.Composite.SetEditing(editing)
	f.wrapped.SetEditing(editing)
}

// filterContainer is the container of the wrapped source.
type filterContainer[T comparable, S any] struct {
	f *FilteredSource[T, S]
}

func (c filterContainer[T, S]) Surface() Surface { return c.f.Surface() }

func (c filterContainer[T, S]) GlobalPath(local Path, _ Source) (Path, bool) {
	p, ok := c.contentPath(local)
	if !ok {
		return Path{}, false
	}
	return GlobalPath(c.f.content, p)
}

func (c filterContainer[T, S]) LocalPath(global Path, _ Source) (Path, bool) {
	p, ok := LocalPath(c.f.content, global)
	if !ok {
		return Path{}, false
	}
	return c.f.wrapped.PathOf(c.f.content.At(p.Item)), true
}

// Perform refilters whenever the wrapped source changed.
func (c filterContainer[T, S]) Perform(_ Source, a Action) {
	switch a.Kind {
	case KindReload:
		// The snapshot is unchanged, forward reloads of visible items.
		var paths []Path
		for _, p := range a.Paths {
			if cp, ok := c.contentPath(p); ok {
				paths = append(paths, cp)
			}
		}
		if len(paths) > 0 {
			c.f.content.perform(Reload(paths...))
		}
	default:
		c.f.refilter()
	}
}

// contentPath translates a path of the wrapped source into a path of the content source. It
// returns false if the item doesn't match the filter.
func (c filterContainer[T, S]) contentPath(p Path) (Path, bool) {
	item := c.f.wrapped.ItemAt(p).(T)
	for i, it := range c.f.content.Items() {
		if it == item {
			return Path{0, i}, true
		}
	}
	return Path{}, false
}
