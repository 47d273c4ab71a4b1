// Package griddoc parses grid documents.
//
// A grid document is a markdown document. Second level headings start sections and list items
// are the items of the section:
//
//	# Reading list
//	:summary: Books to read
//
//	## Fiction
//
//	- [novel] The Dispossessed
//	- [short] Exhalation
//
// An optional scope in brackets precedes the item title. Items before the first section heading
// belong to an untitled section.
package griddoc

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Doc is a parsed grid document.
type Doc struct {
	Title    string
	Summary  string
	Meta     map[string]string
	Sections []Section
}

type Section struct {
	ID    string
	Title string
	Items []Item
}

// Item is an entry of a section. Items are identified by their value.
type Item struct {
	ID    string
	Title string
	Scope string
}

func (it Item) String() string {
	if it.Scope == "" {
		return it.Title
	}
	return fmt.Sprintf("[%s] %s", it.Scope, it.Title)
}

// ParseFile reads and parses the grid document at path.
func ParseFile(path string) (*Doc, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %v", err)
	}
	doc, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %v", path, err)
	}
	return doc, nil
}

var scopeRE = regexp.MustCompile(`^\[([^\]]+)\]\s+(.+)$`)

// Parse parses a grid document. Item identifiers must be unique within the document.
func Parse(in []byte) (*Doc, error) {
	title, meta, body := parseHeader(in)
	doc := &Doc{
		Title:   title,
		Summary: meta["summary"],
		Meta:    meta,
	}

	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	root := md.Parser().Parse(text.NewReader(body))

	ids := make(map[string]string) // item id -> section title
	var cur *Section
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Heading:
			if n.Level != 2 {
				continue
			}
			doc.Sections = append(doc.Sections, Section{
				ID:    headingID(n),
				Title: lines(n, body),
			})
			cur = &doc.Sections[len(doc.Sections)-1]
		case *ast.List:
			if cur == nil {
				doc.Sections = append(doc.Sections, Section{})
				cur = &doc.Sections[len(doc.Sections)-1]
			}
			for li := n.FirstChild(); li != nil; li = li.NextSibling() {
				it := parseItem(li, body)
				if it.Title == "" {
					continue
				}
				if sec, ok := ids[it.ID]; ok {
					return nil, fmt.Errorf("duplicate item %q (section %q and %q)", it.ID, sec, cur.Title)
				}
				ids[it.ID] = cur.Title
				cur.Items = append(cur.Items, it)
			}
		}
	}
	return doc, nil
}

func headingID(h *ast.Heading) string {
	if id, ok := h.AttributeString("id"); ok {
		if b, ok := id.([]byte); ok {
			return string(b)
		}
	}
	return ""
}

// lines returns the raw text of a block node.
func lines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	segs := n.Lines()
	for i := range segs.Len() {
		if i > 0 {
			buf.WriteByte(' ')
		}
		seg := segs.At(i)
		buf.Write(bytes.TrimSpace(seg.Value(src)))
	}
	return buf.String()
}

func parseItem(li ast.Node, src []byte) Item {
	// The text of a list item is held by its first block, a text block for tight lists and a
	// paragraph otherwise.
	first := li.FirstChild()
	if first == nil {
		return Item{}
	}
	s := lines(first, src)

	var it Item
	if m := scopeRE.FindStringSubmatch(s); m != nil {
		it.Scope = strings.TrimSpace(m[1])
		s = m[2]
	}
	it.Title = s
	it.ID = slug(s)
	return it
}

// slug turns s into an identifier made of lower case letters, digits and dashes.
func slug(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r)
			dash = false
		} else {
			dash = true
		}
	}
	return sb.String()
}

// Items returns all items of the document, in order.
func (d *Doc) Items() []Item {
	var ret []Item
	for _, s := range d.Sections {
		ret = append(ret, s.Items...)
	}
	return ret
}

// Scopes returns the distinct item scopes in order of first appearance.
func (d *Doc) Scopes() []string {
	var ret []string
	seen := make(map[string]bool)
	for _, it := range d.Items() {
		if it.Scope == "" || seen[it.Scope] {
			continue
		}
		seen[it.Scope] = true
		ret = append(ret, it.Scope)
	}
	return ret
}

// Lines renders the items as one line per item, prefixed by the section title.
func (d *Doc) Lines() []string {
	var ret []string
	for _, s := range d.Sections {
		for _, it := range s.Items {
			ret = append(ret, s.Title+": "+it.String())
		}
	}
	return ret
}
