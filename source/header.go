package source

// Supplementary view kinds.
const (
	ElementSectionHeader = "section-header"
	ElementSectionFooter = "section-footer"
)

// HeaderReuseID is the reuse identifier of the filter header view.
const HeaderReuseID = "FilterHeader"

// HeaderView describes the search and scope controls of a [FilteredSource].
type HeaderView struct {
	ReuseID  string
	Search   string
	Scopes   []string
	Selected int
}

// Header is a source with one empty section that only shows a section header.
type Header struct {
	node
	view    func() HeaderView
	metrics SectionMetrics
}

// NewHeader returns a header source that shows the view returned by view.
func NewHeader(view func() HeaderView) *Header {
	h := &Header{view: view}
	h.self = h
	return h
}

// SetMetrics sets the section metrics of the header section.
func (h *Header) SetMetrics(m SectionMetrics) { h.metrics = m }

func (h *Header) SectionCount() int { return 1 }

func (h *Header) ItemCount(section int) int {
	if section != 0 {
		fatalf(ErrOutOfRange, "section %d of 1", section)
	}
	return 0
}

func (h *Header) ItemAt(p Path) any {
	fatalf(ErrOutOfRange, "item %v of empty header section", p)
	return nil
}

func (h *Header) Cell(p Path) View {
	fatalf(ErrOutOfRange, "item %v of empty header section", p)
	return nil
}

func (h *Header) Supplementary(kind string, p Path) View {
	if kind != ElementSectionHeader || p.Section != 0 {
		return nil
	}
	v := h.view()
	v.ReuseID = HeaderReuseID
	return v
}

func (h *Header) SectionMetrics(section int) SectionMetrics {
	if section != 0 {
		fatalf(ErrOutOfRange, "section %d of 1", section)
	}
	return h.metrics
}

func (h *Header) ItemMetrics(p Path) ItemMetrics {
	fatalf(ErrOutOfRange, "item %v of empty header section", p)
	return nil
}

func (h *Header) CanEdit(Path) bool { return false }
func (h *Header) Mover() Mover      { return nil }

func (h *Header) RegisterViews(s Surface) {
	s.RegisterSupplementary(ElementSectionHeader, HeaderReuseID)
}
