package surface

import (
	"fmt"

	"znkr.io/sauce/source"
)

// Controller is the container of a root source. It applies every action the source tree performs
// to its [Grid] and then passes it on to the observers.
type Controller struct {
	root      source.Source
	grid      *Grid
	observers []func(source.Action)
}

// New attaches root to a new grid and loads it.
func New(root source.Source) *Controller {
	c := &Controller{
		root: root,
		grid: NewGrid(root),
	}
	root.SetContainer(c)
	root.RegisterViews(c.grid)
	c.grid.Reload()
	return c
}

func (c *Controller) Root() source.Source { return c.root }
func (c *Controller) Grid() *Grid         { return c.grid }

// Observe registers f to be called with every action applied to the grid.
func (c *Controller) Observe(f func(source.Action)) {
	c.observers = append(c.observers, f)
}

// Detach detaches the root source. The grid keeps showing the items it had.
func (c *Controller) Detach() {
	if c.root.Container() == source.Container(c) {
		c.root.SetContainer(nil)
	}
}

// Reload reloads the grid from the root source.
func (c *Controller) Reload() { c.grid.Reload() }

// SetEditing sets the editing flag of the source tree.
func (c *Controller) SetEditing(editing bool) { c.root.SetEditing(editing) }

// CanMove reports whether the item at p can be moved by the user.
func (c *Controller) CanMove(p source.Path) bool {
	m := c.root.Mover()
	return m != nil && m.CanMove(p)
}

// MoveItem moves an item the way a user drags it: the grid moves the item first and then tells
// the source tree.
func (c *Controller) MoveItem(from, to source.Path) {
	m := c.root.Mover()
	if m == nil {
		panic(fmt.Errorf("%w: %T doesn't support moving", source.ErrCrossMove, c.root))
	}
	if source.MustSurface(c.root) != source.Surface(c.grid) {
		panic(fmt.Errorf("%w: root is attached elsewhere", source.ErrNoSurface))
	}
	c.grid.move(from, to)
	m.Move(from, to)
	c.grid.Verify()
}

// Surface implements [source.Container].
func (c *Controller) Surface() source.Surface { return c.grid }

// GlobalPath implements [source.Container]. The index space of the root is the global one.
func (c *Controller) GlobalPath(local source.Path, child source.Source) (source.Path, bool) {
	c.check(child)
	return local, true
}

// LocalPath implements [source.Container].
func (c *Controller) LocalPath(global source.Path, child source.Source) (source.Path, bool) {
	c.check(child)
	return global, true
}

// Perform implements [source.Container].
func (c *Controller) Perform(child source.Source, a source.Action) {
	c.check(child)
	c.grid.Apply(a)
	for _, f := range c.observers {
		f(a)
	}
}

func (c *Controller) check(child source.Source) {
	if child != c.root {
		panic(fmt.Errorf("%w: %T is not the root", source.ErrNotChild, child))
	}
}
