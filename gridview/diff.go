package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	zdiff "znkr.io/diff"
	"znkr.io/diff/textdiff"
	"znkr.io/sauce/diff"
	"znkr.io/sauce/gridview/griddoc"
	"znkr.io/sauce/source"
)

var (
	deleteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	insertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	moveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	headerStyle = lipgloss.NewStyle().Bold(true)
)

var diffCmd = &cobra.Command{
	Use:   "diff <old.md> <new.md>",
	Short: "Prints the edits that turn one version of a grid document into another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, err := griddoc.ParseFile(args[0])
		if err != nil {
			return err
		}
		y, err := griddoc.ParseFile(args[1])
		if err != nil {
			return err
		}
		printEdits(cmd.OutOrStdout(), x, y)
		return nil
	},
}

func sectionKey(s griddoc.Section) string { return s.ID + "\x00" + s.Title }

func itemKey(it griddoc.Item) string { return it.ID }

// docActions returns the section edits and the item edits that turn x into y. Items are
// identified across sections, item paths are positions in the list of all items. An empty
// action means there is nothing to do.
func docActions(x, y *griddoc.Doc) (sections, items source.Action) {
	if a, ok := source.SectionActions(diff.ComputeFunc(x.Sections, y.Sections, sectionKey), 0); ok {
		sections = a
	}

	xs, ys := x.Items(), y.Items()
	s := diff.ComputeFunc(xs, ys, itemKey)
	var actions []source.Action
	if a, ok := source.ItemActions(s, 0); ok {
		actions = append(actions, a)
	}
	// Items with the same id but a different scope or title are reloaded. Reloads refer to the
	// positions before the batch.
	var reloads []source.Path
	for _, m := range s.Moved {
		if xs[m.From] != ys[m.To] {
			reloads = append(reloads, source.Path{Item: m.From})
		}
	}
	if len(reloads) > 0 {
		actions = append(actions, source.Reload(reloads...))
	}
	if len(actions) > 0 {
		items = source.Batch(actions...)
	}
	return sections, items
}

func printEdits(w io.Writer, x, y *griddoc.Doc) {
	sections, items := docActions(x, y)
	if len(sections.Actions) == 0 && len(items.Actions) == 0 {
		fmt.Fprintln(w, "No changes")
		return
	}

	printScript(w, "Sections", sections)
	printScript(w, "Items", items)

	fmt.Fprintln(w, headerStyle.Render("Lines"))
	for _, edit := range textdiff.Edits(lines(x), lines(y), textdiff.IndentHeuristic()) {
		line := strings.TrimSuffix(edit.Line, "\n")
		switch edit.Op {
		case zdiff.Match:
			fmt.Fprintln(w, "  "+line)
		case zdiff.Delete:
			fmt.Fprintln(w, deleteStyle.Render("- "+line))
		case zdiff.Insert:
			fmt.Fprintln(w, insertStyle.Render("+ "+line))
		}
	}
}

func printScript(w io.Writer, title string, a source.Action) {
	if len(a.Actions) == 0 {
		return
	}
	fmt.Fprintln(w, headerStyle.Render(title))
	for _, op := range a.Flatten() {
		fmt.Fprintln(w, "  "+opStyle(op.Kind).Render(op.String()))
	}
	fmt.Fprintln(w)
}

func opStyle(k source.Kind) lipgloss.Style {
	switch k {
	case source.KindDelete, source.KindDeleteSection:
		return deleteStyle
	case source.KindInsert, source.KindInsertSection:
		return insertStyle
	case source.KindMove, source.KindMoveSection:
		return moveStyle
	default:
		return lipgloss.NewStyle()
	}
}

func lines(d *griddoc.Doc) string {
	l := d.Lines()
	if len(l) == 0 {
		return ""
	}
	return strings.Join(l, "\n") + "\n"
}
