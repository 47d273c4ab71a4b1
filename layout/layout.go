// Package layout lays out the sections and items of a source tree as a vertical flow.
//
// Sources hand out opaque metrics. A [Flow] expects every section to return [FlowSectionMetrics]
// and every item to return [FlowItemMetrics]; anything else is a configuration error and panics
// with [ErrMetricsMismatch].
package layout

import (
	"errors"
	"fmt"

	"znkr.io/sauce/source"
)

var ErrMetricsMismatch = errors.New("metrics mismatch")

type Size struct {
	Width, Height float64
}

type Insets struct {
	Top, Left, Bottom, Right float64
}

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// Hex returns the color as CSS hex string, without alpha.
func (c Color) Hex() string {
	ch := func(v float64) int { return int(min(max(v, 0), 1)*255 + 0.5) }
	return fmt.Sprintf("#%02x%02x%02x", ch(c.R), ch(c.G), ch(c.B))
}

// FlowSectionMetrics describes the layout of a section.
type FlowSectionMetrics struct {
	Insets                  Insets
	MinimumLineSpacing      float64
	MinimumInteritemSpacing float64
	HeaderSize              Size
	FooterSize              Size
	CellSeparators          bool
	SeparatorColor          Color
	// StretchCells makes every item as wide as the section.
	StretchCells bool
}

// SectionMetrics returns the default section metrics.
func SectionMetrics() FlowSectionMetrics {
	return FlowSectionMetrics{
		SeparatorColor: Color{0.78, 0.78, 0.8, 1},
		StretchCells:   true,
	}
}

// HeaderMetrics returns the metrics of a section that only shows a search header.
func HeaderMetrics() FlowSectionMetrics {
	m := SectionMetrics()
	m.HeaderSize = Size{320, 36}
	return m
}

// FlowItemMetrics describes the layout of an item.
type FlowItemMetrics struct {
	Size Size
}

// ItemMetrics returns the default item metrics.
func ItemMetrics() FlowItemMetrics {
	return FlowItemMetrics{Size: Size{320, 43}}
}

// Flow reads flow layout metrics from a source.
type Flow struct {
	src source.Source
}

func NewFlow(src source.Source) *Flow { return &Flow{src} }

func (f *Flow) section(section int) FlowSectionMetrics {
	m := f.src.SectionMetrics(section)
	fm, ok := m.(FlowSectionMetrics)
	if !ok {
		panic(fmt.Errorf("%w: section %d has %T, want FlowSectionMetrics", ErrMetricsMismatch, section, m))
	}
	return fm
}

func (f *Flow) item(p source.Path) FlowItemMetrics {
	m := f.src.ItemMetrics(p)
	fm, ok := m.(FlowItemMetrics)
	if !ok {
		panic(fmt.Errorf("%w: item %v has %T, want FlowItemMetrics", ErrMetricsMismatch, p, m))
	}
	return fm
}

func (f *Flow) ItemSize(p source.Path) Size            { return f.item(p).Size }
func (f *Flow) Insets(section int) Insets              { return f.section(section).Insets }
func (f *Flow) MinimumLineSpacing(section int) float64 { return f.section(section).MinimumLineSpacing }
func (f *Flow) HeaderSize(section int) Size            { return f.section(section).HeaderSize }
func (f *Flow) FooterSize(section int) Size            { return f.section(section).FooterSize }

func (f *Flow) MinimumInteritemSpacing(section int) float64 {
	return f.section(section).MinimumInteritemSpacing
}

// Separators returns whether items of section are separated by lines, and their color.
func (f *Flow) Separators(section int) (bool, Color) {
	m := f.section(section)
	return m.CellSeparators, m.SeparatorColor
}

// Rect is a rectangle in layout coordinates. Y grows downwards.
type Rect struct {
	X, Y, Width, Height float64
}

// SectionFrame holds the frames of a section. Header and Footer are zero if the section has
// none.
type SectionFrame struct {
	Header     Rect
	Items      []Rect
	Footer     Rect
	Separators bool
	Color      Color
}

// Frames is the result of laying out a source.
type Frames struct {
	Width    float64
	Height   float64
	Sections []SectionFrame
}

// Layout lays out all sections of the source for the given width.
//
// Items flow left to right and wrap onto a new line when they don't fit. Stretched items take
// the full width between the section insets.
func (f *Flow) Layout(width float64) Frames {
	fr := Frames{Width: width}
	y := 0.0
	for s := range f.src.SectionCount() {
		m := f.section(s)
		sf := SectionFrame{Separators: m.CellSeparators, Color: m.SeparatorColor}

		if m.HeaderSize.Height > 0 {
			sf.Header = Rect{0, y, width, m.HeaderSize.Height}
			y += m.HeaderSize.Height
		}

		y += m.Insets.Top
		left, right := m.Insets.Left, width-m.Insets.Right
		x, lineHeight := left, 0.0
		n := f.src.ItemCount(s)
		for i := range n {
			size := f.item(source.Path{Section: s, Item: i}).Size
			if m.StretchCells {
				size.Width = right - left
			}
			if x > left && x+size.Width > right {
				y += lineHeight + m.MinimumLineSpacing
				x, lineHeight = left, 0
			}
			sf.Items = append(sf.Items, Rect{x, y, size.Width, size.Height})
			x += size.Width + m.MinimumInteritemSpacing
			lineHeight = max(lineHeight, size.Height)
		}
		y += lineHeight + m.Insets.Bottom

		if m.FooterSize.Height > 0 {
			sf.Footer = Rect{0, y, width, m.FooterSize.Height}
			y += m.FooterSize.Height
		}
		fr.Sections = append(fr.Sections, sf)
	}
	fr.Height = y
	return fr
}
