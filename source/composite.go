package source

import (
	"slices"
)

// Composite is a source that unions the sections of its children. Every child owns a contiguous
// run of sections, in the order of the children.
//
// Composite is a [Container] for its children: actions performed by a child are shifted by the
// first section of the child and passed on.
type Composite struct {
	node

	children []Source
	counts   []int // number of sections per child, valid only if mapped
	mapped   bool
	moving   bool
}

// NewComposite returns a composite with the given children.
func NewComposite(children ...Source) *Composite {
	c := &Composite{}
	c.self = c
	for _, ch := range children {
		c.Add(ch)
	}
	return c
}

// Children returns the children of c.
func (c *Composite) Children() []Source { return slices.Clone(c.children) }

// SetMovingEnabled enables or disables moving items on the surface. If disabled, [Composite.Mover]
// returns nil regardless of what the children support.
func (c *Composite) SetMovingEnabled(enabled bool) { c.moving = enabled }
func (c *Composite) MovingEnabled() bool           { return c.moving }

func (c *Composite) indexOf(s Source) int {
	return slices.IndexFunc(c.children, func(ch Source) bool { return ch == s })
}

func (c *Composite) invalidate() { c.mapped = false }

// updateMapping recomputes the section counts of the children. The counts are only cached while
// c is attached to a surface: detached descendants change their sections without performing
// actions, so c can't tell when the cache goes stale.
func (c *Composite) updateMapping() {
	attached := c.surface() != nil
	if c.mapped && attached {
		return
	}
	c.counts = c.counts[:0]
	for _, ch := range c.children {
		c.counts = append(c.counts, ch.SectionCount())
	}
	c.mapped = attached
}

// Add appends s to the children of c.
func (c *Composite) Add(s Source) { c.AddAt(s, len(c.children)) }

// AddAt inserts s into the children of c at index. Nothing happens if s already is a child.
func (c *Composite) AddAt(s Source, index int) {
	if c.indexOf(s) >= 0 {
		return
	}
	if index < 0 || index > len(c.children) {
		fatalf(ErrOutOfRange, "child index %d of %d", index, len(c.children))
	}

	s.SetContainer(c)
	s.SetEditing(c.editing)
	c.children = slices.Insert(c.children, index, s)
	c.invalidate()

	surf := c.surface()
	if surf == nil {
		return
	}
	s.RegisterViews(surf)
	var actions []Action
	for _, sec := range c.SectionsOf(s) {
		actions = append(actions, InsertSection(sec))
	}
	if len(actions) > 0 {
		c.perform(Batch(actions...))
	}
}

// Remove removes s from the children of c. Nothing happens if s is not a child.
func (c *Composite) Remove(s Source) {
	i := c.indexOf(s)
	if i < 0 {
		return
	}

	surf := c.surface()
	var old []int
	if surf != nil {
		old = c.SectionsOf(s)
	}

	s.SetContainer(nil)
	c.children = slices.Delete(c.children, i, i+1)
	c.invalidate()

	if len(old) == 0 {
		return
	}
	actions := make([]Action, len(old))
	for i, sec := range old {
		actions[i] = DeleteSection(sec)
	}
	c.perform(Batch(actions...))
}

// ReplaceChildren replaces the children of c with children. Children present before and after
// keep their identity; their sections are moved.
//
// The actions are performed as one batch: deleted sections (old index space) first, then moved
// sections of retained children, then inserted sections (new index space). Nothing is performed
// if children equals the current children. ReplaceChildren panics if children contains a source
// more than once.
func (c *Composite) ReplaceChildren(children []Source) {
	if slices.Equal(children, c.children) {
		return
	}

	oldSet := make(map[Source]bool, len(c.children))
	for _, ch := range c.children {
		oldSet[ch] = true
	}
	newSet := make(map[Source]bool, len(children))
	for i, ch := range children {
		if newSet[ch] {
			fatalf(ErrDuplicate, "child %T at index %d", ch, i)
		}
		newSet[ch] = true
	}

	var added, deleted, retained []Source
	for _, ch := range children {
		if oldSet[ch] {
			retained = append(retained, ch)
		} else {
			added = append(added, ch)
		}
	}
	for _, ch := range c.children {
		if !newSet[ch] {
			deleted = append(deleted, ch)
		}
	}

	surf := c.surface()
	var deletedSections []int
	var retainedSections [][]int
	if surf != nil {
		for _, ch := range deleted {
			deletedSections = append(deletedSections, c.SectionsOf(ch)...)
		}
		for _, ch := range retained {
			retainedSections = append(retainedSections, c.SectionsOf(ch))
		}
	}

	for _, ch := range added {
		ch.SetContainer(c)
		ch.SetEditing(c.editing)
	}
	for _, ch := range deleted {
		ch.SetContainer(nil)
	}

	c.children = slices.Clone(children)
	c.invalidate()

	if surf == nil {
		return
	}

	for _, ch := range added {
		ch.RegisterViews(surf)
	}

	var actions []Action
	for _, sec := range deletedSections {
		actions = append(actions, DeleteSection(sec))
	}
	for i, ch := range retained {
		now := c.SectionsOf(ch)
		for j := range min(len(now), len(retainedSections[i])) {
			if from, to := retainedSections[i][j], now[j]; from != to {
				actions = append(actions, MoveSection(from, to))
			}
		}
	}
	for _, ch := range added {
		for _, sec := range c.SectionsOf(ch) {
			actions = append(actions, InsertSection(sec))
		}
	}
	if len(actions) > 0 {
		c.perform(Batch(actions...))
	}
}

// offset returns the first section of the child at index i.
func (c *Composite) offset(i int) int {
	c.updateMapping()
	n := 0
	for _, cnt := range c.counts[:i] {
		n += cnt
	}
	return n
}

// SectionsOf returns the sections owned by child s.
func (c *Composite) SectionsOf(s Source) []int {
	i := c.indexOf(s)
	if i < 0 {
		fatalf(ErrNotChild, "%T", s)
	}
	first := c.offset(i)
	ret := make([]int, c.counts[i])
	for j := range ret {
		ret[j] = first + j
	}
	return ret
}

// Map returns the child owning section and the section in the index space of the child.
func (c *Composite) Map(section int) (Source, int) {
	c.updateMapping()
	acc := 0
	for i, cnt := range c.counts {
		if section >= acc && section < acc+cnt {
			return c.children[i], section - acc
		}
		acc += cnt
	}
	fatalf(ErrOutOfRange, "section %d of %d", section, acc)
	return nil, 0
}

// MapPath is like [Composite.Map] for a path.
func (c *Composite) MapPath(p Path) (Source, Path) {
	s, sec := c.Map(p.Section)
	return s, Path{sec, p.Item}
}

// Unmap translates section of child s into the index space of c.
func (c *Composite) Unmap(section int, s Source) int {
	i := c.indexOf(s)
	if i < 0 {
		fatalf(ErrNotChild, "%T", s)
	}
	return c.offset(i) + section
}

// UnmapPath is like [Composite.Unmap] for a path.
func (c *Composite) UnmapPath(p Path, s Source) Path {
	return Path{c.Unmap(p.Section, s), p.Item}
}

// SetEditing sets the editing flag of c and all its children.
func (c *Composite) SetEditing(editing bool) {
	c.editing = editing
	for _, ch := range c.children {
		ch.SetEditing(editing)
	}
}

func (c *Composite) SectionCount() int {
	c.updateMapping()
	n := 0
	for _, cnt := range c.counts {
		n += cnt
	}
	return n
}

func (c *Composite) ItemCount(section int) int {
	s, sec := c.Map(section)
	return s.ItemCount(sec)
}

func (c *Composite) ItemAt(p Path) any {
	s, lp := c.MapPath(p)
	return s.ItemAt(lp)
}

func (c *Composite) Cell(p Path) View {
	s, lp := c.MapPath(p)
	return s.Cell(lp)
}

func (c *Composite) Supplementary(kind string, p Path) View {
	s, lp := c.MapPath(p)
	return s.Supplementary(kind, lp)
}

func (c *Composite) SectionMetrics(section int) SectionMetrics {
	s, sec := c.Map(section)
	return s.SectionMetrics(sec)
}

func (c *Composite) ItemMetrics(p Path) ItemMetrics {
	s, lp := c.MapPath(p)
	return s.ItemMetrics(lp)
}

func (c *Composite) CanEdit(p Path) bool {
	s, lp := c.MapPath(p)
	return s.CanEdit(lp)
}

func (c *Composite) RegisterViews(surf Surface) {
	for _, ch := range c.children {
		ch.RegisterViews(surf)
	}
}

// Mover returns nil unless moving is enabled, so that the surface doesn't offer moving at all.
func (c *Composite) Mover() Mover {
	if !c.moving {
		return nil
	}
	return compositeMover{c}
}

type compositeMover struct{ c *Composite }

func (m compositeMover) CanMove(p Path) bool {
	s, lp := m.c.MapPath(p)
	mv := s.Mover()
	return mv != nil && mv.CanMove(lp)
}

func (m compositeMover) Move(from, to Path) {
	s, lfrom := m.c.MapPath(from)
	t, lto := m.c.MapPath(to)
	if s != t {
		fatalf(ErrCrossMove, "%v -> %v", from, to)
	}
	mv := s.Mover()
	if mv == nil {
		fatalf(ErrCrossMove, "%T doesn't support moving", s)
	}
	mv.Move(lfrom, lto)
}

// Surface implements [Container].
func (c *Composite) Surface() Surface { return c.surface() }

// GlobalPath implements [Container].
func (c *Composite) GlobalPath(local Path, child Source) (Path, bool) {
	p := c.UnmapPath(local, child)
	if c.container == nil {
		return Path{}, false
	}
	return c.container.GlobalPath(p, c.self)
}

// LocalPath implements [Container].
func (c *Composite) LocalPath(global Path, child Source) (Path, bool) {
	if c.container == nil {
		return Path{}, false
	}
	p, ok := c.container.LocalPath(global, c.self)
	if !ok {
		return Path{}, false
	}
	s, lp := c.MapPath(p)
	if s != child {
		fatalf(ErrNotChild, "%v belongs to %T", global, s)
	}
	return lp, true
}

// Perform implements [Container]. The action is shifted to the sections of child and passed
// on. Actions that insert or delete sections invalidate the mapping once the shift is computed,
// so that the surface sees the new section counts while it applies the action.
func (c *Composite) Perform(child Source, a Action) {
	i := c.indexOf(child)
	if i < 0 {
		fatalf(ErrNotChild, "%T", child)
	}
	mapped := a.Offset(c.offset(i))
	if a.AffectsSections() {
		c.invalidate()
	}
	c.perform(mapped)
}
