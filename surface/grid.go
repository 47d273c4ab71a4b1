// Package surface implements the root of a source tree: a headless grid that applies edit actions
// the way list and grid controls do and a controller that connects it to a root source.
package surface

import (
	"errors"
	"fmt"
	"slices"

	"znkr.io/sauce/source"
)

// ErrInconsistent is wrapped by the panic value of an update that doesn't match the data
// source.
var ErrInconsistent = errors.New("inconsistent update")

func inconsistent(format string, args ...any) {
	panic(fmt.Errorf("%w: %s", ErrInconsistent, fmt.Sprintf(format, args...)))
}

// Grid is a model of a grid control. It keeps a copy of all items it has shown and updates it
// only through [Grid.Apply] and [Grid.Reload]. After every update, the copy is compared with the
// data source.
type Grid struct {
	src      source.Source
	sections [][]any
	cells    map[string]bool
	supps    map[string]map[string]bool
	updates  int
}

// NewGrid returns a grid that shows src. The grid is empty until it is reloaded.
func NewGrid(src source.Source) *Grid {
	return &Grid{
		src:   src,
		cells: make(map[string]bool),
		supps: make(map[string]map[string]bool),
	}
}

func (g *Grid) RegisterCell(reuseID string) { g.cells[reuseID] = true }

func (g *Grid) RegisterSupplementary(kind, reuseID string) {
	if g.supps[kind] == nil {
		g.supps[kind] = make(map[string]bool)
	}
	g.supps[kind][reuseID] = true
}

// Cells returns the registered cell reuse identifiers, sorted.
func (g *Grid) Cells() []string { return sortedKeys(g.cells) }

// SupplementaryViews returns the registered reuse identifiers of kind, sorted.
func (g *Grid) SupplementaryViews(kind string) []string { return sortedKeys(g.supps[kind]) }

func sortedKeys(m map[string]bool) []string {
	var ret []string
	for k := range m {
		ret = append(ret, k)
	}
	slices.Sort(ret)
	return ret
}

// Reload discards the shown items and reads everything from the data source.
func (g *Grid) Reload() {
	g.sections = g.sections[:0]
	for s := range g.src.SectionCount() {
		g.sections = append(g.sections, g.fetch(s))
	}
	g.updates++
}

func (g *Grid) fetch(section int) []any {
	n := g.src.ItemCount(section)
	items := make([]any, n)
	for i := range items {
		items[i] = g.src.ItemAt(source.Path{Section: section, Item: i})
	}
	return items
}

func (g *Grid) SectionCount() int { return len(g.sections) }

func (g *Grid) ItemCount(section int) int {
	if section < 0 || section >= len(g.sections) {
		panic(fmt.Errorf("%w: section %d of %d", source.ErrOutOfRange, section, len(g.sections)))
	}
	return len(g.sections[section])
}

// Item returns the shown item at p.
func (g *Grid) Item(p source.Path) any {
	n := g.ItemCount(p.Section)
	if p.Item < 0 || p.Item >= n {
		panic(fmt.Errorf("%w: item %v, section has %d", source.ErrOutOfRange, p, n))
	}
	return g.sections[p.Section][p.Item]
}

// Sections returns a copy of the shown items.
func (g *Grid) Sections() [][]any {
	ret := make([][]any, len(g.sections))
	for i, s := range g.sections {
		ret[i] = slices.Clone(s)
	}
	return ret
}

// Updates returns the number of reloads and applied actions.
func (g *Grid) Updates() int { return g.updates }

// Apply applies a as a single update.
//
// Deletes and reloads refer to the sections and items before the update. Inserts and move
// targets refer to the sections and items after the update. Apply panics with an error wrapping
// [ErrInconsistent] if the actions don't transform the shown items into the items of the data
// source.
func (g *Grid) Apply(a source.Action) {
	u := newUpdate(len(g.sections))
	for _, b := range a.Flatten() {
		u.add(b, g.sections)
	}
	g.sections = u.apply(g)
	g.updates++
	g.Verify()
}

// Verify compares the shown items with the data source.
func (g *Grid) Verify() {
	if got, want := len(g.sections), g.src.SectionCount(); got != want {
		inconsistent("grid has %d sections, source has %d", got, want)
	}
	for s, items := range g.sections {
		if got, want := len(items), g.src.ItemCount(s); got != want {
			inconsistent("section %d: grid has %d items, source has %d", s, got, want)
		}
		for i, it := range items {
			p := source.Path{Section: s, Item: i}
			if want := g.src.ItemAt(p); it != want {
				inconsistent("item %v: grid has %v, source has %v", p, it, want)
			}
		}
	}
}

// move moves an item the way a user drags it, without involving the data source.
func (g *Grid) move(from, to source.Path) {
	it := g.Item(from)
	g.sections[from.Section] = slices.Delete(g.sections[from.Section], from.Item, from.Item+1)
	if to.Section < 0 || to.Section >= len(g.sections) || to.Item < 0 || to.Item > len(g.sections[to.Section]) {
		inconsistent("move target %v", to)
	}
	g.sections[to.Section] = slices.Insert(g.sections[to.Section], to.Item, it)
}

// update collects the actions of one update.
type update struct {
	before int // number of sections before the update

	deletedSections  map[int]bool // old index
	insertedSections map[int]bool // new index
	reloadedSections map[int]bool // old index
	movedSections    map[int]int  // old index -> new index

	deletedItems  map[source.Path]bool        // old path
	insertedItems map[source.Path]bool        // new path
	reloadedItems map[source.Path]bool        // old path
	movedItems    map[source.Path]source.Path // old path -> new path
}

func newUpdate(before int) *update {
	return &update{
		before:           before,
		deletedSections:  make(map[int]bool),
		insertedSections: make(map[int]bool),
		reloadedSections: make(map[int]bool),
		movedSections:    make(map[int]int),
		deletedItems:     make(map[source.Path]bool),
		insertedItems:    make(map[source.Path]bool),
		reloadedItems:    make(map[source.Path]bool),
		movedItems:       make(map[source.Path]source.Path),
	}
}

func (u *update) oldSection(s int) {
	if s < 0 || s >= u.before {
		inconsistent("section %d of %d before update", s, u.before)
	}
}

func (u *update) oldPath(p source.Path, old [][]any) {
	u.oldSection(p.Section)
	if p.Item < 0 || p.Item >= len(old[p.Section]) {
		inconsistent("item %v, section had %d items before update", p, len(old[p.Section]))
	}
}

func (u *update) add(a source.Action, old [][]any) {
	switch a.Kind {
	case source.KindDeleteSection, source.KindReloadSections:
		for _, s := range a.Sections {
			u.oldSection(s)
			if u.deletedSections[s] || u.reloadedSections[s] {
				inconsistent("section %d is deleted or reloaded twice", s)
			}
			if a.Kind == source.KindDeleteSection {
				u.deletedSections[s] = true
			} else {
				u.reloadedSections[s] = true
			}
		}
	case source.KindInsertSection:
		for _, s := range a.Sections {
			if u.insertedSections[s] {
				inconsistent("section %d is inserted twice", s)
			}
			u.insertedSections[s] = true
		}
	case source.KindMoveSection:
		from, to := a.From.Section, a.To.Section
		u.oldSection(from)
		if _, ok := u.movedSections[from]; ok {
			inconsistent("section %d is moved twice", from)
		}
		u.movedSections[from] = to
	case source.KindDelete, source.KindReload:
		for _, p := range a.Paths {
			u.oldPath(p, old)
			if u.deletedItems[p] || u.reloadedItems[p] {
				inconsistent("item %v is deleted or reloaded twice", p)
			}
			if a.Kind == source.KindDelete {
				u.deletedItems[p] = true
			} else {
				u.reloadedItems[p] = true
			}
		}
	case source.KindInsert:
		for _, p := range a.Paths {
			if u.insertedItems[p] {
				inconsistent("item %v is inserted twice", p)
			}
			u.insertedItems[p] = true
		}
	case source.KindMove:
		u.oldPath(a.From, old)
		if _, ok := u.movedItems[a.From]; ok {
			inconsistent("item %v is moved twice", a.From)
		}
		u.movedItems[a.From] = a.To
	default:
		inconsistent("unexpected action %v", a)
	}
}

// slot is a section or an item in the state after the update.
type slot struct {
	set    bool
	old    int  // index before the update, -1 if inserted
	reload bool // fetch from the data source
}

// place assigns positions after the update. Inserted and moved entries keep their new position,
// remaining entries fill the free positions in order.
func place(n int, inserted map[int]bool, moved map[int]int, remaining []int) []slot {
	slots := make([]slot, n)
	for i := range inserted {
		if i < 0 || i >= n {
			inconsistent("insert at %d of %d", i, n)
		}
		slots[i] = slot{set: true, old: -1, reload: true}
	}
	for from, to := range moved {
		if to < 0 || to >= n {
			inconsistent("move %d -> %d of %d", from, to, n)
		}
		if slots[to].set {
			inconsistent("position %d is the target of more than one insert or move", to)
		}
		slots[to] = slot{set: true, old: from}
	}
	next := 0
	for i := range slots {
		if slots[i].set {
			continue
		}
		if next >= len(remaining) {
			inconsistent("position %d of %d is neither inserted nor moved nor retained", i, n)
		}
		slots[i] = slot{set: true, old: remaining[next]}
		next++
	}
	if next != len(remaining) {
		inconsistent("%d entries remain, %d free positions after update", len(remaining), next)
	}
	return slots
}

func (u *update) apply(g *Grid) [][]any {
	old := g.sections

	// Sections.
	n := g.src.SectionCount()
	var remaining []int
	for s := range u.before {
		if _, moved := u.movedSections[s]; !moved && !u.deletedSections[s] {
			remaining = append(remaining, s)
		}
	}
	for from := range u.movedSections {
		if u.deletedSections[from] {
			inconsistent("section %d is deleted and moved", from)
		}
	}
	if want := u.before - len(u.deletedSections) + len(u.insertedSections); n != want {
		inconsistent("%d sections after update, %d before, %d inserted, %d deleted",
			n, u.before, len(u.insertedSections), len(u.deletedSections))
	}
	sections := place(n, u.insertedSections, u.movedSections, remaining)
	for i, sl := range sections {
		if u.reloadedSections[sl.old] {
			sections[i].reload = true
		}
	}

	// Items that move into a section, keyed by the new section.
	movedIn := make(map[int]map[int]int) // new section -> new item -> moved item slot
	var movedItems []any
	for from, to := range u.movedItems {
		if u.deletedItems[from] {
			inconsistent("item %v is deleted and moved", from)
		}
		if u.deletedSections[from.Section] {
			inconsistent("item %v is moved out of a deleted section", from)
		}
		if movedIn[to.Section] == nil {
			movedIn[to.Section] = make(map[int]int)
		}
		movedIn[to.Section][to.Item] = len(movedItems)
		movedItems = append(movedItems, old[from.Section][from.Item])
	}

	ret := make([][]any, n)
	for s, sl := range sections {
		if sl.reload {
			ret[s] = g.fetch(s)
			continue
		}
		ret[s] = u.applyItems(g, sl.old, s, old[sl.old], movedIn[s], movedItems)
	}
	return ret
}

// applyItems computes the items of section s after the update from section o before the update.
func (u *update) applyItems(g *Grid, o, s int, old []any, movedIn map[int]int, movedItems []any) []any {
	n := g.src.ItemCount(s)
	items := make([]any, n)
	filled := make([]bool, n)
	inserted := 0
	for p := range u.insertedItems {
		if p.Section != s {
			continue
		}
		if p.Item < 0 || p.Item >= n {
			inconsistent("insert at %v, section has %d items after update", p, n)
		}
		items[p.Item] = g.src.ItemAt(p)
		filled[p.Item] = true
		inserted++
	}
	for i, m := range movedIn {
		if i < 0 || i >= n {
			inconsistent("move to %d:%d, section has %d items after update", s, i, n)
		}
		if filled[i] {
			inconsistent("item %d:%d is the target of more than one insert or move", s, i)
		}
		items[i] = movedItems[m]
		filled[i] = true
	}

	deleted, movedOut := 0, 0
	j := 0
	for i, it := range old {
		p := source.Path{Section: o, Item: i}
		if u.deletedItems[p] {
			deleted++
			continue
		}
		if _, ok := u.movedItems[p]; ok {
			movedOut++
			continue
		}
		for j < n && filled[j] {
			j++
		}
		if j == n {
			inconsistent("invalid number of items in section %d: %d after update, %d before, %d inserted, %d deleted, %d moved in, %d moved out",
				s, n, len(old), inserted, deleted, len(movedIn), movedOut)
		}
		if u.reloadedItems[p] {
			it = g.src.ItemAt(source.Path{Section: s, Item: j})
		}
		items[j] = it
		filled[j] = true
	}
	if i := slices.Index(filled, false); i >= 0 {
		inconsistent("invalid number of items in section %d: %d after update, %d before, %d inserted, %d deleted, %d moved in, %d moved out",
			s, n, len(old), inserted, deleted, len(movedIn), movedOut)
	}
	return items
}
