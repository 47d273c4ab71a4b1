package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"znkr.io/sauce/gridview/griddoc"
	"znkr.io/sauce/source"
)

func parse(t *testing.T, in string) *griddoc.Doc {
	t.Helper()
	d, err := griddoc.Parse([]byte(in))
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	return d
}

func TestDocActions(t *testing.T) {
	x := parse(t, "## A\n\n- one\n- [x] two\n\n## B\n\n- three\n")
	y := parse(t, "## B\n\n- three\n\n## A\n\n- [y] two\n- four\n")

	sections, items := docActions(x, y)
	if diff := cmp.Diff("Batch(MoveSection(0 -> 1), MoveSection(1 -> 0))", sections.String()); diff != "" {
		t.Errorf("section actions (-want, +got):\n%s", diff)
	}
	var got []string
	for _, op := range items.Flatten() {
		got = append(got, op.String())
	}
	want := []string{"Delete(0:0)", "Insert(0:2)", "Move(0:1 -> 0:1)", "Move(0:2 -> 0:0)", "Reload(0:1)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("item actions (-want, +got):\n%s", diff)
	}
}

func TestDocActionsMovedAndChanged(t *testing.T) {
	x := parse(t, "- alpha\n- [x] beta\n")
	y := parse(t, "- [y] beta\n- alpha\n")

	_, items := docActions(x, y)
	var got []string
	for _, op := range items.Flatten() {
		got = append(got, op.String())
	}
	want := []string{"Move(0:0 -> 0:1)", "Move(0:1 -> 0:0)", "Reload(0:1)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("item actions (-want, +got):\n%s", diff)
	}
	for _, op := range items.Flatten() {
		if op.Kind == source.KindReload {
			if it := x.Items()[op.Paths[0].Item]; it.ID != "beta" {
				t.Errorf("reload targets %q, want beta", it.ID)
			}
		}
	}
}

func TestDocActionsUnchanged(t *testing.T) {
	x := parse(t, "## A\n\n- one\n")
	sections, items := docActions(x, x)
	if len(sections.Actions) != 0 || len(items.Actions) != 0 {
		t.Errorf("docActions() = %v, %v, want no actions", sections, items)
	}

	var buf bytes.Buffer
	printEdits(&buf, x, x)
	if got := buf.String(); got != "No changes\n" {
		t.Errorf("printEdits() = %q, want %q", got, "No changes\n")
	}
}

func TestPrintEdits(t *testing.T) {
	x := parse(t, "## A\n\n- one\n- two\n")
	y := parse(t, "## A\n\n- two\n- three\n")

	var buf bytes.Buffer
	printEdits(&buf, x, y)
	for _, want := range []string{"Items", "Delete(0:0)", "Insert(0:1)", "- A: one", "  A: two", "+ A: three"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("printEdits() doesn't contain %q:\n%s", want, buf.String())
		}
	}
	if strings.Contains(buf.String(), "Sections") {
		t.Errorf("printEdits() shows unchanged sections:\n%s", buf.String())
	}
}
