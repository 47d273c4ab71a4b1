package source

import (
	"fmt"
	"strings"

	"znkr.io/sauce/diff"
)

// Kind describes the kind of an edit operation.
//
//go:generate go run golang.org/x/tools/cmd/stringer -type=Kind -trimprefix=Kind
type Kind int

const (
	KindInsert         Kind = iota // Insert items
	KindDelete                     // Delete items
	KindReload                     // Reload items in place
	KindMove                       // Move a single item
	KindReloadSections             // Reload whole sections
	KindInsertSection              // Insert a section
	KindDeleteSection              // Delete a section
	KindMoveSection                // Move a section
	KindBatch                      // Apply a group of actions as one update
)

// Path addresses an item in a section.
type Path struct {
	Section int
	Item    int
}

func (p Path) String() string { return fmt.Sprintf("%d:%d", p.Section, p.Item) }

// Action is a structural edit that a source performed and that the rendering surface has to
// apply.
//
// Within a batch, paths and sections of deletes and reloads refer to the state before the batch,
// inserts and move targets refer to the state after the batch.
//
//   - KindInsert, KindDelete, KindReload use Paths.
//   - KindMove uses From and To.
//   - KindReloadSections, KindInsertSection, KindDeleteSection use Sections.
//   - KindMoveSection uses From.Section and To.Section.
//   - KindBatch uses Actions.
type Action struct {
	Kind     Kind
	Paths    []Path
	Sections []int
	From, To Path
	Actions  []Action
}

func Insert(paths ...Path) Action { return Action{Kind: KindInsert, Paths: paths} }
func Delete(paths ...Path) Action { return Action{Kind: KindDelete, Paths: paths} }
func Reload(paths ...Path) Action { return Action{Kind: KindReload, Paths: paths} }
func Move(from, to Path) Action   { return Action{Kind: KindMove, From: from, To: to} }

func ReloadSections(sections ...int) Action {
	return Action{Kind: KindReloadSections, Sections: sections}
}

func InsertSection(section int) Action {
	return Action{Kind: KindInsertSection, Sections: []int{section}}
}

func DeleteSection(section int) Action {
	return Action{Kind: KindDeleteSection, Sections: []int{section}}
}

func MoveSection(from, to int) Action {
	return Action{Kind: KindMoveSection, From: Path{Section: from}, To: Path{Section: to}}
}

// Batch groups actions into a single update.
func Batch(actions ...Action) Action { return Action{Kind: KindBatch, Actions: actions} }

// Map returns a copy of a with every section index rewritten by section and every item path
// rewritten by path.
func (a Action) Map(section func(int) int, path func(Path) Path) Action {
	switch a.Kind {
	case KindBatch:
		actions := make([]Action, len(a.Actions))
		for i, b := range a.Actions {
			actions[i] = b.Map(section, path)
		}
		return Batch(actions...)
	case KindReloadSections, KindInsertSection, KindDeleteSection:
		sections := make([]int, len(a.Sections))
		for i, s := range a.Sections {
			sections[i] = section(s)
		}
		return Action{Kind: a.Kind, Sections: sections}
	case KindMoveSection:
		return MoveSection(section(a.From.Section), section(a.To.Section))
	case KindInsert, KindDelete, KindReload:
		paths := make([]Path, len(a.Paths))
		for i, p := range a.Paths {
			paths[i] = path(p)
		}
		return Action{Kind: a.Kind, Paths: paths}
	case KindMove:
		return Move(path(a.From), path(a.To))
	default:
		panic(fmt.Sprintf("unknown action kind %v", a.Kind))
	}
}

// Offset returns a copy of a with all sections shifted by n.
func (a Action) Offset(n int) Action {
	return a.Map(
		func(s int) int { return s + n },
		func(p Path) Path { return Path{p.Section + n, p.Item} },
	)
}

// AffectsSections reports whether a (or any action in a batch) inserts or deletes sections.
func (a Action) AffectsSections() bool {
	switch a.Kind {
	case KindInsertSection, KindDeleteSection:
		return true
	case KindBatch:
		for _, b := range a.Actions {
			if b.AffectsSections() {
				return true
			}
		}
	}
	return false
}

// Flatten returns the non-batch actions contained in a, in order.
func (a Action) Flatten() []Action {
	if a.Kind != KindBatch {
		return []Action{a}
	}
	var ret []Action
	for _, b := range a.Actions {
		ret = append(ret, b.Flatten()...)
	}
	return ret
}

func (a Action) String() string {
	var sb strings.Builder
	a.write(&sb)
	return sb.String()
}

func (a Action) write(sb *strings.Builder) {
	sb.WriteString(a.Kind.String())
	sb.WriteByte('(')
	switch a.Kind {
	case KindBatch:
		for i, b := range a.Actions {
			if i > 0 {
				sb.WriteString(", ")
			}
			b.write(sb)
		}
	case KindReloadSections, KindInsertSection, KindDeleteSection:
		for i, s := range a.Sections {
			if i > 0 {
				sb.WriteString(" ")
			}
			fmt.Fprintf(sb, "%d", s)
		}
	case KindMoveSection:
		fmt.Fprintf(sb, "%d -> %d", a.From.Section, a.To.Section)
	case KindInsert, KindDelete, KindReload:
		for i, p := range a.Paths {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(p.String())
		}
	case KindMove:
		fmt.Fprintf(sb, "%v -> %v", a.From, a.To)
	}
	sb.WriteByte(')')
}

// ItemActions turns an item script into a batch of item actions in section. Self moves are
// dropped when nothing is deleted or inserted. It returns false if there is nothing to do.
func ItemActions(s diff.Script, section int) (Action, bool) {
	s = s.WithoutNoopMoves()
	if s.Empty() {
		return Action{}, false
	}

	path := func(i int) Path { return Path{section, i} }
	var actions []Action
	if len(s.Deleted) > 0 {
		paths := make([]Path, len(s.Deleted))
		for i, d := range s.Deleted {
			paths[i] = path(d)
		}
		actions = append(actions, Delete(paths...))
	}
	if len(s.Inserted) > 0 {
		paths := make([]Path, len(s.Inserted))
		for i, d := range s.Inserted {
			paths[i] = path(d)
		}
		actions = append(actions, Insert(paths...))
	}
	for _, m := range s.Moved {
		actions = append(actions, Move(path(m.From), path(m.To)))
	}
	return Batch(actions...), true
}

// SectionActions turns a script over sections into a batch of section actions, shifting every
// section by offset. It returns false if there is nothing to do.
func SectionActions(s diff.Script, offset int) (Action, bool) {
	s = s.WithoutNoopMoves()
	if s.Empty() {
		return Action{}, false
	}

	var actions []Action
	for _, d := range s.Deleted {
		actions = append(actions, DeleteSection(d+offset))
	}
	for _, i := range s.Inserted {
		actions = append(actions, InsertSection(i+offset))
	}
	for _, m := range s.Moved {
		actions = append(actions, MoveSection(m.From+offset, m.To+offset))
	}
	return Batch(actions...), true
}
