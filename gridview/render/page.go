// Package render renders the state of a grid as HTML page, together with the journal of the
// edits that were applied to it.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"znkr.io/sauce/gridview/highlight"
	"znkr.io/sauce/layout"
	"znkr.io/sauce/source"
	"znkr.io/sauce/surface"
)

//go:embed assets
var assets embed.FS

var pageTmpl = template.Must(template.ParseFS(assets, "assets/page.html"))

// Cell is what the page shows for an item.
type Cell struct {
	Title    string
	Scope    string
	Selected bool
}

// Page is the data of a rendered page.
type Page struct {
	Title    string
	Updates  int
	Width    float64
	Height   float64
	Sections []Section
	Journal  []JournalEntry
	// Live enables the script that reloads the page whenever an edit is applied.
	Live bool
}

type Section struct {
	Index int
	// Title is set if the section has a section title as header, Filter if the header shows the
	// filter controls.
	Title      string
	Filter     *Filter
	Header     layout.Rect
	Separators bool
	Color      string
	Items      []Item
}

type Filter struct {
	Search string
	Scopes []Scope
}

type Scope struct {
	Title    string
	Selected bool
}

type Item struct {
	Cell
	Path  source.Path
	Frame layout.Rect
}

type JournalEntry struct {
	Seq   int
	Time  time.Time
	Ops   int
	Lines []highlight.Line
}

// Build collects the data of a page showing the grid g, which is attached to root. cell returns
// the cell shown for a path.
func Build(title string, g *surface.Grid, root source.Source, cell func(p source.Path) Cell, entries []Entry, width float64) (*Page, error) {
	frames := layout.NewFlow(root).Layout(width)
	if len(frames.Sections) != g.SectionCount() {
		return nil, fmt.Errorf("grid has %d sections, layout has %d", g.SectionCount(), len(frames.Sections))
	}

	p := &Page{
		Title:   title,
		Updates: g.Updates(),
		Width:   frames.Width,
		Height:  frames.Height,
	}
	for s, sf := range frames.Sections {
		sec := Section{
			Index:      s,
			Header:     sf.Header,
			Separators: sf.Separators,
			Color:      sf.Color.Hex(),
		}
		switch v := root.Supplementary(source.ElementSectionHeader, source.Path{Section: s}).(type) {
		case string:
			sec.Title = v
		case source.HeaderView:
			f := &Filter{Search: v.Search}
			for i, t := range v.Scopes {
				f.Scopes = append(f.Scopes, Scope{Title: t, Selected: i == v.Selected})
			}
			sec.Filter = f
		}
		for i, r := range sf.Items {
			path := source.Path{Section: s, Item: i}
			sec.Items = append(sec.Items, Item{
				Cell:  cell(path),
				Path:  path,
				Frame: r,
			})
		}
		p.Sections = append(p.Sections, sec)
	}

	for _, e := range entries {
		lines, err := highlight.Script(e.Action)
		if err != nil {
			return nil, fmt.Errorf("highlighting edit %d: %v", e.Seq, err)
		}
		p.Journal = append(p.Journal, JournalEntry{
			Seq:   e.Seq,
			Time:  e.Time,
			Ops:   e.Ops,
			Lines: lines,
		})
	}
	return p, nil
}

// Render writes the page as HTML to w.
func (p *Page) Render(w io.Writer) error {
	if err := pageTmpl.Execute(w, p); err != nil {
		return fmt.Errorf("rendering page: %v", err)
	}
	return nil
}

// File is a file of an exported page.
type File struct {
	Path     string
	MimeType string
	Data     []byte
}

// Asset returns the static file with the given name, or nil if there is none.
func Asset(name string) *File {
	var mime string
	switch name {
	case "style.css":
		mime = "text/css; charset=utf-8"
	case "preview.js":
		mime = "text/javascript; charset=utf-8"
	default:
		return nil
	}
	b, err := assets.ReadFile("assets/" + name)
	if err != nil {
		return nil
	}
	return &File{Path: name, MimeType: mime, Data: b}
}

// Files returns all files needed to show the page: the page itself, its assets and the feed of
// edits.
func (p *Page) Files(feed []byte) ([]File, error) {
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		return nil, err
	}
	files := []File{
		{Path: "index.html", MimeType: "text/html; charset=utf-8", Data: buf.Bytes()},
		*Asset("style.css"),
		{Path: "edits.atom", MimeType: "application/atom+xml; charset=utf-8", Data: feed},
	}
	if p.Live {
		files = append(files, *Asset("preview.js"))
	}
	return files, nil
}
