package source

// Empty is a source without any sections. It is useful as a placeholder child of a [Composite].
type Empty struct {
	node
}

// NewEmpty returns an empty source.
func NewEmpty() *Empty {
	e := &Empty{}
	e.self = e
	return e
}

func (e *Empty) SectionCount() int { return 0 }

func (e *Empty) ItemCount(section int) int {
	fatalf(ErrOutOfRange, "section %d of 0", section)
	return 0
}

func (e *Empty) ItemAt(p Path) any {
	fatalf(ErrOutOfRange, "item %v of empty source", p)
	return nil
}

func (e *Empty) Cell(p Path) View {
	fatalf(ErrOutOfRange, "item %v of empty source", p)
	return nil
}

func (e *Empty) Supplementary(string, Path) View { return nil }

func (e *Empty) SectionMetrics(section int) SectionMetrics {
	fatalf(ErrOutOfRange, "section %d of 0", section)
	return nil
}

func (e *Empty) ItemMetrics(p Path) ItemMetrics {
	fatalf(ErrOutOfRange, "item %v of empty source", p)
	return nil
}

func (e *Empty) CanEdit(Path) bool     { return false }
func (e *Empty) Mover() Mover          { return nil }
func (e *Empty) RegisterViews(Surface) {}
