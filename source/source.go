// Package source composes independent data sources into the single section/item index space of a
// grid or list control.
//
// Sources form a tree. Leaves ([ArraySource]) own a snapshot of items, decorators
// ([FilteredSource], [SelectableSource]) derive their snapshot from a wrapped source and a
// [Composite] unions the sections of its children. Queries travel down the tree, edit actions
// travel up: every container translates the indices of an action into its own index space before
// passing it on, until the root container applies it to the rendering surface.
//
// All operations are synchronous and must happen on a single goroutine. Contract violations
// (out of range positions, unknown items or children) panic with an error wrapping one of the
// sentinel errors below.
package source

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange = errors.New("out of range")
	ErrNotFound   = errors.New("not found")
	ErrNotChild   = errors.New("not a child")
	ErrNoSurface  = errors.New("no surface")
	ErrCrossMove  = errors.New("move between sources")
	ErrDuplicate  = errors.New("duplicate")
)

func fatalf(err error, format string, args ...any) {
	panic(fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...)))
}

// View is whatever a source hands to the rendering surface to display an item or a supplementary
// element. The surface decides what to do with it.
type View any

// SectionMetrics and ItemMetrics are opaque to sources. A layout asserts that a source returns the
// variant it expects.
type (
	SectionMetrics any
	ItemMetrics    any
)

// Surface is the rendering control at the root of a source tree.
type Surface interface {
	// RegisterCell registers a reusable cell view.
	RegisterCell(reuseID string)
	// RegisterSupplementary registers a reusable supplementary view of the given kind.
	RegisterSupplementary(kind, reuseID string)
	// Apply applies an edit action. A batch is applied as one update.
	Apply(a Action)
}

// Source supplies sections and items to the rendering surface.
type Source interface {
	SectionCount() int
	ItemCount(section int) int
	// ItemAt returns the item at p, or nil if the source doesn't represent items.
	ItemAt(p Path) any
	Cell(p Path) View
	// Supplementary returns a supplementary view of kind for p, or nil if there is none.
	Supplementary(kind string, p Path) View
	SectionMetrics(section int) SectionMetrics
	ItemMetrics(p Path) ItemMetrics
	CanEdit(p Path) bool
	// Mover returns nil if the source doesn't support moving items.
	Mover() Mover
	RegisterViews(s Surface)

	Editing() bool
	SetEditing(editing bool)

	// Container returns the container the source is attached to, or nil.
	Container() Container
	SetContainer(c Container)
}

// Mover is implemented by sources that let the user reorder items on the surface.
type Mover interface {
	CanMove(p Path) bool
	// Move is called after the surface moved an item. The source must not perform an action for
	// it.
	Move(from, to Path)
}

// Container routes actions of a child source towards the rendering surface.
type Container interface {
	// Surface returns the rendering surface, or nil if the tree isn't attached to one.
	Surface() Surface
	// GlobalPath translates a path of child into a path of the surface.
	GlobalPath(local Path, child Source) (Path, bool)
	// LocalPath translates a path of the surface into a path of child.
	LocalPath(global Path, child Source) (Path, bool)
	// Perform is called by child for every action it performed.
	Perform(child Source, a Action)
}

// List is a source with a single section of items.
type List[T comparable] interface {
	Source
	Items() []T
	PathOf(item T) Path
}

// SurfaceOf returns the surface s is attached to, or nil.
func SurfaceOf(s Source) Surface {
	if c := s.Container(); c != nil {
		return c.Surface()
	}
	return nil
}

// MustSurface is like [SurfaceOf] but panics if s isn't attached to a surface.
func MustSurface(s Source) Surface {
	surf := SurfaceOf(s)
	if surf == nil {
		fatalf(ErrNoSurface, "%T", s)
	}
	return surf
}

// GlobalPath translates p from the index space of s into the index space of the surface.
func GlobalPath(s Source, p Path) (Path, bool) {
	if c := s.Container(); c != nil {
		return c.GlobalPath(p, s)
	}
	return Path{}, false
}

// LocalPath translates p from the index space of the surface into the index space of s.
func LocalPath(s Source, p Path) (Path, bool) {
	if c := s.Container(); c != nil {
		return c.LocalPath(p, s)
	}
	return Path{}, false
}

// node holds the state every source has. self is the outermost source the node is part of, it is
// what containers know the source as.
type node struct {
	self      Source
	container Container
	editing   bool
}

func (n *node) Container() Container     { return n.container }
func (n *node) SetContainer(c Container) { n.container = c }
func (n *node) Editing() bool            { return n.editing }
func (n *node) SetEditing(editing bool)  { n.editing = editing }

func (n *node) surface() Surface {
	if n.container == nil {
		return nil
	}
	return n.container.Surface()
}

func (n *node) perform(a Action) {
	if n.container != nil {
		n.container.Perform(n.self, a)
	}
}

var (
	_ Source    = (*ArraySource[int])(nil)
	_ List[int] = (*ArraySource[int])(nil)
	_ Source    = (*Composite)(nil)
	_ Container = (*Composite)(nil)
	_ Source    = (*FilteredSource[int, int])(nil)
	_ List[int] = (*FilteredSource[int, int])(nil)
	_ Source    = (*SelectableSource[int])(nil)
	_ Source    = (*Header)(nil)
	_ Source    = (*Empty)(nil)
)
