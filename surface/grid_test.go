package surface

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"znkr.io/sauce/source"
)

// table is a source whose sections change without performing actions.
type table struct {
	sections  [][]string
	container source.Container
	editing   bool
}

// parseTable parses sections, "AB|C" stands for two sections with items A, B and C.
func parseTable(s string) *table {
	t := &table{}
	t.set(s)
	return t
}

func (t *table) set(s string) { t.sections = parseSections(s) }

func parseSections(s string) [][]string {
	if s == "" {
		return nil
	}
	var ret [][]string
	for _, sec := range strings.Split(s, "|") {
		items := []string{}
		if sec != "" {
			items = strings.Split(sec, "")
		}
		ret = append(ret, items)
	}
	return ret
}

// shown returns the sections as a grid holds them.
func shown(s string) [][]any {
	var ret [][]any
	for _, sec := range parseSections(s) {
		items := make([]any, len(sec))
		for i, it := range sec {
			items[i] = it
		}
		ret = append(ret, items)
	}
	if ret == nil {
		ret = [][]any{}
	}
	return ret
}

func (t *table) SectionCount() int                             { return len(t.sections) }
func (t *table) ItemCount(section int) int                     { return len(t.sections[section]) }
func (t *table) ItemAt(p source.Path) any                      { return t.sections[p.Section][p.Item] }
func (t *table) Cell(p source.Path) source.View                { return t.ItemAt(p) }
func (t *table) Supplementary(string, source.Path) source.View { return nil }
func (t *table) SectionMetrics(int) source.SectionMetrics      { return nil }
func (t *table) ItemMetrics(source.Path) source.ItemMetrics    { return nil }
func (t *table) CanEdit(source.Path) bool                      { return false }
func (t *table) Mover() source.Mover                           { return nil }
func (t *table) RegisterViews(s source.Surface)                { s.RegisterCell("Table") }
func (t *table) Editing() bool                                 { return t.editing }
func (t *table) SetEditing(editing bool)                       { t.editing = editing }
func (t *table) Container() source.Container                   { return t.container }
func (t *table) SetContainer(c source.Container)               { t.container = c }

func recoverError(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var ok bool
			if err, ok = r.(error); !ok {
				panic(r)
			}
		}
	}()
	f()
	return nil
}

func TestGridApply(t *testing.T) {
	type path = source.Path
	tests := []struct {
		name    string
		before  string
		after   string
		action  source.Action
		wantErr error
	}{
		{
			name:   "replace item",
			before: "ABC",
			after:  "ADC",
			action: source.Batch(
				source.Delete(path{Section: 0, Item: 1}),
				source.Insert(path{Section: 0, Item: 1}),
				source.Move(path{Section: 0, Item: 0}, path{Section: 0, Item: 0}),
				source.Move(path{Section: 0, Item: 2}, path{Section: 0, Item: 2}),
			),
		},
		{
			name:   "rotate",
			before: "ABC",
			after:  "CAB",
			action: source.Batch(
				source.Move(path{Section: 0, Item: 0}, path{Section: 0, Item: 1}),
				source.Move(path{Section: 0, Item: 1}, path{Section: 0, Item: 2}),
				source.Move(path{Section: 0, Item: 2}, path{Section: 0, Item: 0}),
			),
		},
		{
			name:   "delete only",
			before: "ABCD",
			after:  "AD",
			action: source.Delete(path{Section: 0, Item: 2}, path{Section: 0, Item: 1}),
		},
		{
			name:   "insert section",
			before: "A|B",
			after:  "A|X|B",
			action: source.InsertSection(1),
		},
		{
			name:   "delete and move sections",
			before: "A|B|C",
			after:  "C|A",
			action: source.Batch(
				source.DeleteSection(1),
				source.MoveSection(2, 0),
				source.MoveSection(0, 1),
			),
		},
		{
			name:   "reload section",
			before: "A|B",
			after:  "A|YZ",
			action: source.ReloadSections(1),
		},
		{
			name:   "reload item",
			before: "AB",
			after:  "AY",
			action: source.Reload(path{Section: 0, Item: 1}),
		},
		{
			name:   "move across sections",
			before: "AB|C",
			after:  "A|BC",
			action: source.Move(path{Section: 0, Item: 1}, path{Section: 1, Item: 0}),
		},
		{
			name:   "items of moved section",
			before: "A|BC",
			after:  "CD|A",
			action: source.Batch(
				source.Delete(path{Section: 1, Item: 0}),
				source.Insert(path{Section: 0, Item: 1}),
				source.MoveSection(1, 0),
				source.MoveSection(0, 1),
			),
		},
		{
			name:   "nested batches",
			before: "A|B",
			after:  "X|A|BC",
			action: source.Batch(
				source.Batch(source.InsertSection(0)),
				source.Batch(source.Insert(path{Section: 2, Item: 1})),
			),
		},
		{
			name:    "missing insert",
			before:  "A",
			after:   "AB",
			action:  source.Batch(),
			wantErr: ErrInconsistent,
		},
		{
			name:    "wrong order",
			before:  "AB",
			after:   "BA",
			action:  source.Batch(),
			wantErr: ErrInconsistent,
		},
		{
			name:    "missing section insert",
			before:  "A",
			after:   "A|B",
			action:  source.Insert(path{Section: 1, Item: 0}),
			wantErr: ErrInconsistent,
		},
		{
			name:    "delete out of range",
			before:  "AB",
			after:   "A",
			action:  source.Delete(path{Section: 0, Item: 5}),
			wantErr: ErrInconsistent,
		},
		{
			name:    "delete twice",
			before:  "ABC",
			after:   "A",
			action:  source.Batch(source.Delete(path{Section: 0, Item: 1}), source.Delete(path{Section: 0, Item: 1})),
			wantErr: ErrInconsistent,
		},
		{
			name:    "move onto insert",
			before:  "AB",
			after:   "AXB",
			action:  source.Batch(source.Insert(path{Section: 0, Item: 1}), source.Move(path{Section: 0, Item: 1}, path{Section: 0, Item: 1})),
			wantErr: ErrInconsistent,
		},
		{
			name:    "move deleted section",
			before:  "A|B",
			after:   "B",
			action:  source.Batch(source.DeleteSection(0), source.MoveSection(0, 0)),
			wantErr: ErrInconsistent,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			src := parseTable(test.before)
			g := NewGrid(src)
			g.Reload()

			src.set(test.after)
			err := recoverError(func() { g.Apply(test.action) })
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Apply(%v) = %v, want %v", test.action, err, test.wantErr)
			}
			if test.wantErr != nil {
				return
			}
			if diff := cmp.Diff(shown(test.after), g.Sections()); diff != "" {
				t.Errorf("Sections() after Apply(%v) (-want, +got):\n%s", test.action, diff)
			}
		})
	}
}

func TestGridQueries(t *testing.T) {
	src := parseTable("AB|C")
	g := NewGrid(src)
	if got := g.SectionCount(); got != 0 {
		t.Errorf("SectionCount() before Reload = %d, want 0", got)
	}
	g.Reload()
	if got := g.SectionCount(); got != 2 {
		t.Errorf("SectionCount() = %d, want 2", got)
	}
	if got := g.ItemCount(0); got != 2 {
		t.Errorf("ItemCount(0) = %d, want 2", got)
	}
	if got := g.Item(source.Path{Section: 1, Item: 0}); got != "C" {
		t.Errorf("Item(1:0) = %v, want C", got)
	}
	if got := g.Updates(); got != 1 {
		t.Errorf("Updates() = %d, want 1", got)
	}
	if err := recoverError(func() { g.ItemCount(2) }); !errors.Is(err, source.ErrOutOfRange) {
		t.Errorf("ItemCount(2) = %v, want ErrOutOfRange", err)
	}
	if err := recoverError(func() { g.Item(source.Path{Section: 0, Item: 2}) }); !errors.Is(err, source.ErrOutOfRange) {
		t.Errorf("Item(0:2) = %v, want ErrOutOfRange", err)
	}

	g.RegisterCell("B")
	g.RegisterCell("A")
	g.RegisterSupplementary(source.ElementSectionHeader, "H")
	if diff := cmp.Diff([]string{"A", "B"}, g.Cells()); diff != "" {
		t.Errorf("Cells() (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"H"}, g.SupplementaryViews(source.ElementSectionHeader)); diff != "" {
		t.Errorf("SupplementaryViews() (-want, +got):\n%s", diff)
	}
	if got := g.SupplementaryViews(source.ElementSectionFooter); len(got) > 0 {
		t.Errorf("SupplementaryViews(footer) = %v, want none", got)
	}
}
