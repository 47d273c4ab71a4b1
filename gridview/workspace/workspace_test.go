package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"znkr.io/sauce/gridview/griddoc"
	"znkr.io/sauce/layout"
	"znkr.io/sauce/source"
	"znkr.io/sauce/surface"
)

const (
	books = `# Books

## Fiction

- [novel] Dune
- [short] Exhalation

## Essays

- [essay] Walden
`
	todo = `# Todo

- [work] Write report
- [home] Fix sink
- [work] Review code
`
	config = `moving: true
sources:
  - doc: books.md
  - doc: todo.md
    selectable: true
    filter:
      scopes: [all, work, home]
`
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// open opens a workspace made of the files given and attaches it to a controller.
func open(t *testing.T, files map[string]string) (string, *Workspace, *surface.Controller) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		writeFile(t, dir, name, content)
	}
	w, err := Open(filepath.Join(dir, "gridview.yaml"))
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	return dir, w, surface.New(w.Root())
}

// titles returns the titles of the items shown by the grid.
func titles(w *Workspace, g *surface.Grid) [][]string {
	ret := make([][]string, g.SectionCount())
	for s := range ret {
		ret[s] = []string{}
		for i := range g.ItemCount(s) {
			ret[s] = append(ret[s], w.Cell(source.Path{Section: s, Item: i}).Title)
		}
	}
	return ret
}

func TestWorkspaceOpen(t *testing.T) {
	dir, w, c := open(t, map[string]string{
		"gridview.yaml": config,
		"books.md":      books,
		"todo.md":       todo,
	})

	want := [][]string{
		{"Dune", "Exhalation"},
		{"Walden"},
		{},
		{"Write report", "Fix sink", "Review code"},
	}
	if diff := cmp.Diff(want, titles(w, c.Grid())); diff != "" {
		t.Errorf("shown items (-want, +got):\n%s", diff)
	}

	wantPaths := []string{
		filepath.Join(dir, "gridview.yaml"),
		filepath.Join(dir, "books.md"),
		filepath.Join(dir, "todo.md"),
	}
	if diff := cmp.Diff(wantPaths, w.Paths()); diff != "" {
		t.Errorf("Paths() (-want, +got):\n%s", diff)
	}
	if got := w.Title(); got != "Books" {
		t.Errorf("Title() = %q, want %q", got, "Books")
	}
	if got := len(w.Docs()); got != 2 {
		t.Errorf("len(Docs()) = %d, want 2", got)
	}
	if got := w.Root().Supplementary(source.ElementSectionHeader, source.Path{Section: 1}); got != source.View("Essays") {
		t.Errorf("header of section 1 = %v, want Essays", got)
	}
	if got, want := w.Cell(source.Path{Section: 0, Item: 1}), (Cell{Title: "Exhalation", Scope: "short"}); got != want {
		t.Errorf("Cell(0:1) = %+v, want %+v", got, want)
	}
	if diff := cmp.Diff([]string{CellReuseID}, c.Grid().Cells()); diff != "" {
		t.Errorf("Cells() (-want, +got):\n%s", diff)
	}
	wantSupps := []string{source.HeaderReuseID, TitleReuseID}
	if diff := cmp.Diff(wantSupps, c.Grid().SupplementaryViews(source.ElementSectionHeader)); diff != "" {
		t.Errorf("SupplementaryViews() (-want, +got):\n%s", diff)
	}
}

func TestWorkspaceLayout(t *testing.T) {
	_, w, _ := open(t, map[string]string{
		"gridview.yaml": config,
		"books.md":      books,
		"todo.md":       todo,
	})
	fr := layout.NewFlow(w.Root()).Layout(320)
	if got := len(fr.Sections); got != 4 {
		t.Fatalf("laid out %d sections, want 4", got)
	}
	if got := fr.Sections[2].Header.Height; got != 36 {
		t.Errorf("filter header height = %v, want 36", got)
	}
	if got := fr.Sections[0].Header.Height; got != 28 {
		t.Errorf("section title height = %v, want 28", got)
	}
	if got := len(fr.Sections[3].Items); got != 3 {
		t.Errorf("filtered section has %d frames, want 3", got)
	}
}

func TestWorkspaceFilter(t *testing.T) {
	_, w, c := open(t, map[string]string{
		"gridview.yaml": config,
		"books.md":      books,
		"todo.md":       todo,
	})

	if w.Filter(0) != nil {
		t.Error("Filter(0) != nil for plain document")
	}
	f := w.Filter(2)
	if f == nil {
		t.Fatal("Filter(2) = nil")
	}
	if err := w.SetFilter(3, "work", ""); err != nil {
		t.Fatalf("SetFilter() = %v", err)
	}
	if got := f.ScopeIndex(); got != 1 {
		t.Errorf("ScopeIndex() = %d, want 1", got)
	}
	if err := w.SetFilter(2, "", "REVIEW"); err != nil {
		t.Fatalf("SetFilter() = %v", err)
	}
	want := [][]string{{"Dune", "Exhalation"}, {"Walden"}, {}, {"Review code"}}
	if diff := cmp.Diff(want, titles(w, c.Grid())); diff != "" {
		t.Errorf("shown items (-want, +got):\n%s", diff)
	}

	for _, test := range []struct {
		section       int
		scope, search string
	}{
		{0, "", "x"},
		{3, "nope", ""},
		{7, "", ""},
	} {
		if err := w.SetFilter(test.section, test.scope, test.search); err == nil {
			t.Errorf("SetFilter(%d, %q, %q) succeeded", test.section, test.scope, test.search)
		}
	}
}

func TestWorkspaceToggle(t *testing.T) {
	dir, w, c := open(t, map[string]string{
		"gridview.yaml": config,
		"books.md":      books,
		"todo.md":       todo,
	})
	var got []string
	c.Observe(func(a source.Action) { got = append(got, a.String()) })

	if err := w.Toggle(source.Path{Section: 3, Item: 1}); err != nil {
		t.Fatalf("Toggle() = %v", err)
	}
	if !w.Cell(source.Path{Section: 3, Item: 1}).Selected {
		t.Error("item not selected after Toggle")
	}
	if diff := cmp.Diff([]string{"Reload(3:1)"}, got); diff != "" {
		t.Errorf("observed actions (-want, +got):\n%s", diff)
	}
	wantSel := []griddoc.Item{{ID: "fix-sink", Title: "Fix sink", Scope: "home"}}
	if diff := cmp.Diff(wantSel, w.Selected()); diff != "" {
		t.Errorf("Selected() (-want, +got):\n%s", diff)
	}

	// Toggling through the filter selects the item of the unfiltered document.
	if err := w.SetFilter(3, "work", ""); err != nil {
		t.Fatal(err)
	}
	if err := w.Toggle(source.Path{Section: 3, Item: 1}); err != nil {
		t.Fatalf("Toggle() = %v", err)
	}
	if got := len(w.Selected()); got != 2 {
		t.Errorf("len(Selected()) = %d, want 2", got)
	}

	for _, p := range []source.Path{{Section: 0, Item: 0}, {Section: 2, Item: 0}, {Section: 3, Item: 5}} {
		if err := w.Toggle(p); err == nil {
			t.Errorf("Toggle(%v) succeeded", p)
		}
	}

	// Selection survives a reload for items that are still there.
	if err := w.SetFilter(3, "all", ""); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "todo.md", "- [home] Fix sink\n- [work] Write report\n- [home] Water plants\n")
	if err := w.Reload(); err != nil {
		t.Fatalf("Reload() = %v", err)
	}
	var sel []bool
	for i := range c.Grid().ItemCount(3) {
		sel = append(sel, w.Cell(source.Path{Section: 3, Item: i}).Selected)
	}
	if diff := cmp.Diff([]bool{true, false, false}, sel); diff != "" {
		t.Errorf("selection after Reload (-want, +got):\n%s", diff)
	}
}

func TestWorkspaceReload(t *testing.T) {
	dir, w, c := open(t, map[string]string{
		"gridview.yaml": config,
		"books.md":      books,
		"todo.md":       todo,
	})

	writeFile(t, dir, "books.md", "## Essays\n\n- [essay] Walden\n- [novel] Dune\n\n## Poetry\n\n- Odes\n")
	if err := w.Reload(); err != nil {
		t.Fatalf("Reload() = %v", err)
	}
	want := [][]string{
		{"Walden", "Dune"},
		{"Odes"},
		{},
		{"Write report", "Fix sink", "Review code"},
	}
	if diff := cmp.Diff(want, titles(w, c.Grid())); diff != "" {
		t.Errorf("shown items (-want, +got):\n%s", diff)
	}
	if got := w.Root().Supplementary(source.ElementSectionHeader, source.Path{Section: 1}); got != source.View("Poetry") {
		t.Errorf("header of section 1 = %v, want Poetry", got)
	}

	// Dropping a document from the configuration removes its sections.
	writeFile(t, dir, "gridview.yaml", "sources:\n  - doc: todo.md\n")
	if err := w.Reload(); err != nil {
		t.Fatalf("Reload() = %v", err)
	}
	want = [][]string{{"Write report", "Fix sink", "Review code"}}
	if diff := cmp.Diff(want, titles(w, c.Grid())); diff != "" {
		t.Errorf("shown items (-want, +got):\n%s", diff)
	}

	fresh := surface.NewGrid(w.Root())
	fresh.Reload()
	if diff := cmp.Diff(fresh.Sections(), c.Grid().Sections()); diff != "" {
		t.Errorf("grid differs from fresh grid (-want, +got):\n%s", diff)
	}
}

func TestWorkspaceReloadError(t *testing.T) {
	dir, w, c := open(t, map[string]string{
		"gridview.yaml": config,
		"books.md":      books,
		"todo.md":       todo,
	})
	before := titles(w, c.Grid())

	writeFile(t, dir, "books.md", "- Same\n- same\n")
	if err := w.Reload(); err == nil {
		t.Error("Reload() with duplicate items succeeded")
	}
	writeFile(t, dir, "books.md", books)
	writeFile(t, dir, "gridview.yaml", "sources: [{doc: books.md, bogus: 1}]\n")
	if err := w.Reload(); err == nil {
		t.Error("Reload() with bad config succeeded")
	}

	if diff := cmp.Diff(before, titles(w, c.Grid())); diff != "" {
		t.Errorf("shown items changed after failed reloads (-want, +got):\n%s", diff)
	}
}

func TestWorkspaceMove(t *testing.T) {
	_, w, c := open(t, map[string]string{
		"gridview.yaml": config,
		"books.md":      books,
		"todo.md":       todo,
	})

	if !c.CanMove(source.Path{Section: 0, Item: 0}) {
		t.Fatal("CanMove(0:0) = false")
	}
	if c.CanMove(source.Path{Section: 3, Item: 0}) {
		t.Error("CanMove(3:0) = true for filtered document")
	}
	c.MoveItem(source.Path{Section: 0, Item: 0}, source.Path{Section: 0, Item: 1})
	want := []string{"Exhalation", "Dune"}
	if diff := cmp.Diff(want, titles(w, c.Grid())[0]); diff != "" {
		t.Errorf("shown items (-want, +got):\n%s", diff)
	}
}

func TestWorkspaceNew(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "todo.md", todo)
	cfg, err := ParseConfig([]byte("sources: [{doc: todo.md}]"), dir)
	if err != nil {
		t.Fatal(err)
	}
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if got := w.Root().SectionCount(); got != 1 {
		t.Errorf("SectionCount() = %d, want 1", got)
	}
	if w.Root().Mover() != nil {
		t.Error("Mover() != nil with moving disabled")
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "todo.md")}, w.Paths()); diff != "" {
		t.Errorf("Paths() (-want, +got):\n%s", diff)
	}

	cfg.Sources = append(cfg.Sources, SourceConfig{Doc: "missing.md"})
	if _, err := New(cfg); err == nil {
		t.Error("New() with missing document succeeded")
	}
}
