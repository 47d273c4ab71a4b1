// Package workspace builds the source tree of a set of grid documents and keeps it up to date
// when the documents change.
//
// Every document configured becomes one child of the root composite. Plain documents show one
// section per heading, documents with a filter or selection show all items in one section,
// wrapped in the respective decorators.
package workspace

import (
	"fmt"
	"log"
	"strings"

	"znkr.io/sauce/gridview/griddoc"
	"znkr.io/sauce/layout"
	"znkr.io/sauce/source"
)

// Reuse identifiers of the views registered by the workspace.
const (
	CellReuseID  = "Item"
	TitleReuseID = "SectionTitle"
)

// Cell is the cell view of an item.
type Cell struct {
	Title    string
	Scope    string
	Selected bool
}

// Filterable is implemented by the filtered sources of a workspace.
type Filterable interface {
	source.Source
	ScopeIndex() int
	SelectScope(i int)
	SearchText() string
	SetSearchText(search string)
	WrappedPath(p source.Path) source.Path
}

// Workspace owns the root source of a set of documents.
type Workspace struct {
	path string // configuration file, empty if there is none
	cfg  *Config
	root *source.Composite
	docs []*doc
}

type doc struct {
	key    string
	path   string
	cfg    SourceConfig
	parsed *griddoc.Doc
	src    source.Source // child of the root

	// Plain documents.
	sections *source.Composite
	leaves   map[string]*source.ArraySource[griddoc.Item]

	// Decorated documents.
	items  *source.ArraySource[griddoc.Item]
	sel    *source.SelectableSource[griddoc.Item]
	filter Filterable
}

// Open loads the configuration at path and all documents it lists.
func Open(path string) (*Workspace, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	w, err := New(cfg)
	if err != nil {
		return nil, err
	}
	w.path = path
	return w, nil
}

// New loads all documents of cfg.
func New(cfg *Config) (*Workspace, error) {
	w := &Workspace{root: source.NewComposite()}
	if err := w.load(cfg); err != nil {
		return nil, err
	}
	return w, nil
}

// Root returns the root source.
func (w *Workspace) Root() *source.Composite { return w.root }

// Config returns the current configuration.
func (w *Workspace) Config() *Config { return w.cfg }

// Paths returns the files the workspace is loaded from.
func (w *Workspace) Paths() []string {
	var ret []string
	if w.path != "" {
		ret = append(ret, w.path)
	}
	for _, d := range w.docs {
		ret = append(ret, d.path)
	}
	return ret
}

// Docs returns the parsed documents, in the order of the configuration.
func (w *Workspace) Docs() []*griddoc.Doc {
	ret := make([]*griddoc.Doc, len(w.docs))
	for i, d := range w.docs {
		ret[i] = d.parsed
	}
	return ret
}

// Title returns the title of the first document with one.
func (w *Workspace) Title() string {
	for _, d := range w.docs {
		if d.parsed.Title != "" {
			return d.parsed.Title
		}
	}
	return ""
}

// Reload reads the configuration and all documents again and updates the source tree. Sources
// of documents that are still configured the same way are kept and updated in place. Nothing is
// changed if any file fails to load.
func (w *Workspace) Reload() error {
	cfg := w.cfg
	if w.path != "" {
		var err error
		if cfg, err = LoadConfig(w.path); err != nil {
			return err
		}
	}
	return w.load(cfg)
}

func (w *Workspace) load(cfg *Config) error {
	parsed := make([]*griddoc.Doc, len(cfg.Sources))
	for i, s := range cfg.Sources {
		d, err := griddoc.ParseFile(cfg.DocPath(s))
		if err != nil {
			return fmt.Errorf("loading document: %v", err)
		}
		parsed[i] = d
	}

	prev := make(map[string]*doc, len(w.docs))
	for _, d := range w.docs {
		prev[d.key] = d
	}
	docs := make([]*doc, len(cfg.Sources))
	children := make([]source.Source, len(cfg.Sources))
	for i, s := range cfg.Sources {
		key := docKey(cfg, s)
		d, ok := prev[key]
		if ok {
			d.update(parsed[i], cfg.Moving)
		} else {
			d = newDoc(key, cfg.DocPath(s), s, parsed[i], cfg.Moving)
		}
		docs[i] = d
		children[i] = d.src
	}

	w.cfg = cfg
	w.docs = docs
	w.root.SetMovingEnabled(cfg.Moving)
	w.root.ReplaceChildren(children)
	return nil
}

// docKey identifies the sources built for s. Sources are only reused for the same key.
func docKey(cfg *Config, s SourceConfig) string {
	key := fmt.Sprintf("%s selectable=%v", cfg.DocPath(s), s.Selectable)
	if s.Filter != nil {
		key += " scopes=" + strings.Join(s.Filter.Scopes, ",")
	}
	return key
}

func newDoc(key, path string, cfg SourceConfig, parsed *griddoc.Doc, moving bool) *doc {
	d := &doc{key: key, path: path, cfg: cfg}
	if cfg.Plain() {
		d.sections = source.NewComposite()
		d.src = d.sections
		d.update(parsed, moving)
		return d
	}

	d.parsed = parsed
	d.items = source.NewArray(parsed.Items,
		source.WithViews[griddoc.Item](registerViews),
		source.WithCell(cell),
		source.WithSectionMetrics[griddoc.Item](func(int) source.SectionMetrics {
			return layout.SectionMetrics()
		}),
		source.WithItemMetrics(itemMetrics),
	)
	if cfg.Selectable {
		d.sel = source.NewSelectable[griddoc.Item](d.items)
	}
	switch {
	case cfg.Filter != nil && d.sel != nil:
		filter := source.UnwrappingFilter[griddoc.Item, string]{Wrapped: newFilter(cfg.Filter.Scopes)}
		d.filter = newFiltered[*source.SelectableItem[griddoc.Item]](d.sel, filter, cfg.Filter.Search)
	case cfg.Filter != nil:
		d.filter = newFiltered[griddoc.Item](d.items, newFilter(cfg.Filter.Scopes), cfg.Filter.Search)
	}
	switch {
	case d.filter != nil:
		d.src = d.filter
	case d.sel != nil:
		d.src = d.sel
	default:
		d.src = d.items
	}
	return d
}

func newFiltered[T comparable](wrapped source.List[T], filter source.Filter[T, string], search string) Filterable {
	f := source.NewFiltered(wrapped, filter)
	f.Header().SetMetrics(layout.HeaderMetrics())
	if search != "" {
		f.SetSearchText(search)
	}
	return f
}

// update replaces the document shown by d.
func (d *doc) update(parsed *griddoc.Doc, moving bool) {
	d.parsed = parsed
	if d.sections == nil {
		d.items.Update(parsed.Items())
		return
	}

	// Sections are identified by heading id and title.
	leaves := make(map[string]*source.ArraySource[griddoc.Item], len(parsed.Sections))
	children := make([]source.Source, len(parsed.Sections))
	for i, sec := range parsed.Sections {
		key := sec.ID + "\x00" + sec.Title
		leaf, ok := d.leaves[key]
		if ok {
			leaf.Update(sec.Items)
		} else {
			leaf = newSectionLeaf(sec)
		}
		leaves[key] = leaf
		children[i] = leaf
	}
	d.leaves = leaves
	d.sections.SetMovingEnabled(moving)
	d.sections.ReplaceChildren(children)
}

func newSectionLeaf(sec griddoc.Section) *source.ArraySource[griddoc.Item] {
	items := sec.Items
	title := sec.Title
	return source.NewArray(func() []griddoc.Item { return items },
		source.WithViews[griddoc.Item](registerViews),
		source.WithCell(cell),
		source.WithSupplementary[griddoc.Item](func(kind string, p source.Path) source.View {
			if kind != source.ElementSectionHeader || title == "" {
				return nil
			}
			return title
		}),
		source.WithSectionMetrics[griddoc.Item](func(int) source.SectionMetrics {
			m := layout.SectionMetrics()
			m.Insets.Bottom = 8
			if title != "" {
				m.HeaderSize = layout.Size{Width: 320, Height: 28}
			}
			return m
		}),
		source.WithItemMetrics(itemMetrics),
		source.WithMove(func(it griddoc.Item, from, to int) {
			log.Printf("Moved %q from %d to %d", it.Title, from, to)
		}),
	)
}

func registerViews(s source.Surface) {
	s.RegisterCell(CellReuseID)
	s.RegisterSupplementary(source.ElementSectionHeader, TitleReuseID)
}

func cell(it griddoc.Item, _ source.Path) source.View {
	return Cell{Title: it.Title, Scope: it.Scope}
}

func itemMetrics(griddoc.Item, source.Path) source.ItemMetrics { return layout.ItemMetrics() }

// newFilter returns a filter over the given scopes. The scope "all" matches every item. The
// search text matches case insensitively anywhere in the item title.
func newFilter(scopes []string) source.Filter[griddoc.Item, string] {
	ss := make([]source.Scope[string], len(scopes))
	for i, s := range scopes {
		ss[i] = source.Scope[string]{Value: s, Title: s}
	}
	return source.NewFilter(ss, func(it griddoc.Item, scope, search string) bool {
		if scope != "" && scope != ScopeAll && it.Scope != scope {
			return false
		}
		return search == "" || strings.Contains(strings.ToLower(it.Title), strings.ToLower(search))
	})
}

// Cell returns the cell view of the item at the global path p.
func (w *Workspace) Cell(p source.Path) Cell {
	c, _ := w.root.Cell(p).(Cell)
	if it, ok := w.root.ItemAt(p).(*source.SelectableItem[griddoc.Item]); ok {
		c.Selected = it.Selected
	}
	return c
}

// lookup returns the document shown at section of the root.
func (w *Workspace) lookup(section int) (*doc, source.Path, error) {
	if section < 0 || section >= w.root.SectionCount() {
		return nil, source.Path{}, fmt.Errorf("section %d doesn't exist", section)
	}
	child, local := w.root.Map(section)
	for _, d := range w.docs {
		if d.src == child {
			return d, source.Path{Section: local}, nil
		}
	}
	return nil, source.Path{}, fmt.Errorf("section %d doesn't belong to a document", section)
}

// Filter returns the filter of the document shown at section, or nil if the document isn't
// filterable.
func (w *Workspace) Filter(section int) Filterable {
	d, _, err := w.lookup(section)
	if err != nil {
		return nil
	}
	return d.filter
}

// SetFilter selects a scope by name and sets the search text of the document shown at section.
// An empty scope keeps the current scope.
func (w *Workspace) SetFilter(section int, scope, search string) error {
	d, _, err := w.lookup(section)
	if err != nil {
		return err
	}
	if d.filter == nil {
		return fmt.Errorf("%s isn't filterable", d.cfg.Doc)
	}
	if scope != "" {
		i := -1
		for j, s := range d.cfg.Filter.Scopes {
			if s == scope {
				i = j
			}
		}
		if i < 0 {
			return fmt.Errorf("%s has no scope %q", d.cfg.Doc, scope)
		}
		if i != d.filter.ScopeIndex() {
			d.filter.SelectScope(i)
		}
	}
	if search != d.filter.SearchText() {
		d.filter.SetSearchText(search)
	}
	return nil
}

// Toggle flips the selection of the item at the global path p.
func (w *Workspace) Toggle(p source.Path) error {
	d, local, err := w.lookup(p.Section)
	if err != nil {
		return err
	}
	if d.sel == nil {
		return fmt.Errorf("%s isn't selectable", d.cfg.Doc)
	}
	if p.Item < 0 || p.Item >= w.root.ItemCount(p.Section) {
		return fmt.Errorf("item %v doesn't exist", p)
	}
	local.Item = p.Item
	if d.filter != nil {
		local = d.filter.WrappedPath(local)
	}
	it := d.sel.At(local.Item)
	d.sel.SetSelected(local.Item, !it.Selected)
	d.sel.ReloadItems(local.Item)
	return nil
}

// Selected returns the selected items of all documents.
func (w *Workspace) Selected() []griddoc.Item {
	var ret []griddoc.Item
	for _, d := range w.docs {
		if d.sel != nil {
			ret = append(ret, d.sel.SelectedItems()...)
		}
	}
	return ret
}
