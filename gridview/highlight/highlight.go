// Package highlight renders edit scripts and snapshot diffs as highlighted HTML.
package highlight

import (
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"znkr.io/diff"
	"znkr.io/diff/textdiff"
	"znkr.io/sauce/source"
)

var style = map[chroma.TokenType]string{
	chroma.Keyword:         "hl-b",
	chroma.KeywordPseudo:   "",
	chroma.NameBuiltin:     "hl-bl",
	chroma.NameTag:         "hl-b",
	chroma.LiteralString:   "hl-i",
	chroma.LiteralNumber:   "hl-n",
	chroma.Operator:        "hl-o",
	chroma.Comment:         "hl-ii",
	chroma.GenericDeleted:  "hl-del",
	chroma.GenericInserted: "hl-ins",
	chroma.GenericEmph:     "hl-i",
	chroma.GenericHeading:  "hl-b",
	chroma.GenericStrong:   "hl-b",
}

// ScriptLang is the name of the lexer for edit scripts as printed by [source.Action.String].
const ScriptLang = "editscript"

var _ = lexers.Register(chroma.MustNewLexer(
	&chroma.Config{
		Name:      ScriptLang,
		Aliases:   []string{"script"},
		Filenames: []string{"*.script"},
	},
	func() chroma.Rules {
		return chroma.Rules{
			"root": {
				{Pattern: `\b(Batch)\b`, Type: chroma.KeywordPseudo},
				{Pattern: `\b(Delete|DeleteSection)\b`, Type: chroma.GenericDeleted},
				{Pattern: `\b(Insert|InsertSection)\b`, Type: chroma.GenericInserted},
				{Pattern: `\b(Move|MoveSection|Reload|ReloadSections)\b`, Type: chroma.Keyword},
				{Pattern: `\d+`, Type: chroma.LiteralNumber},
				{Pattern: `->`, Type: chroma.Operator},
				{Pattern: `[(),:]`, Type: chroma.Punctuation},
				{Pattern: `\s+`, Type: chroma.TextWhitespace},
				{Pattern: `.`, Type: chroma.Text},
			},
		}
	},
))

type Option func(*highlighter)

func Lang(lang string) Option {
	return func(o *highlighter) {
		o.lexer = lexers.Get(lang)
	}
}

type Line struct {
	LineNo  int
	Content template.HTML
}

func Highlight(in string, opts ...Option) ([]Line, error) {
	hl := fromOptions(opts)
	lines, err := hl.lines(in)
	if err != nil {
		return nil, fmt.Errorf("parsing input: %v", err)
	}

	ret := make([]Line, 0, len(lines))
	for i, line := range lines {
		ret = append(ret, Line{i + 1, template.HTML(hl.highlight(line))})
	}
	return ret, nil
}

// ScriptText formats a as edit script with one operation per line. Batches are flattened.
func ScriptText(a source.Action) string {
	var sb strings.Builder
	for _, op := range a.Flatten() {
		sb.WriteString(op.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Script highlights the edit script of a.
func Script(a source.Action) ([]Line, error) {
	return Highlight(ScriptText(a), Lang(ScriptLang))
}

type Edit struct {
	Op      diff.Op
	XLineNo int
	YLineNo int
	Content template.HTML
}

func (ed *Edit) IsMatch() bool  { return ed.Op == diff.Match }
func (ed *Edit) IsDelete() bool { return ed.Op == diff.Delete }
func (ed *Edit) IsInsert() bool { return ed.Op == diff.Insert }

// Diff highlights the line diff between two snapshots, one item per line.
func Diff(a, b []string, opts ...Option) ([]Edit, error) {
	hl := fromOptions(opts)

	edits := textdiff.Edits(join(a), join(b), textdiff.IndentHeuristic())

	ret := make([]Edit, 0, len(edits))
	s, t := 0, 0
	for _, edit := range edits {
		tokens, err := hl.tokens(strings.TrimSuffix(edit.Line, "\n"))
		if err != nil {
			return nil, err
		}
		ln := template.HTML(hl.highlight(tokens))
		switch edit.Op {
		case diff.Match:
			ret = append(ret, Edit{edit.Op, s + 1, t + 1, ln})
			s++
			t++
		case diff.Delete:
			ret = append(ret, Edit{edit.Op, s + 1, -1, ln})
			s++
		case diff.Insert:
			ret = append(ret, Edit{edit.Op, -1, t + 1, ln})
			t++
		}
	}
	return ret, nil
}

func join(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

type highlighter struct {
	lexer chroma.Lexer
}

func fromOptions(opts []Option) *highlighter {
	hl := &highlighter{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(hl)
	}

	if hl.lexer == nil {
		hl.lexer = lexers.Fallback
	}
	hl.lexer = chroma.Coalesce(hl.lexer)
	return hl
}

func (hl *highlighter) highlight(line []chroma.Token) string {
	var sb strings.Builder
	for _, token := range line {
		class := class(token.Type)
		if class != "" {
			fmt.Fprintf(&sb, "<span class=\"%s\">", class)
		}
		sb.WriteString(html.EscapeString(token.Value))
		if class != "" {
			sb.WriteString("</span>")
		}
	}
	return sb.String()
}

func (hl *highlighter) tokens(in string) ([]chroma.Token, error) {
	it, err := hl.lexer.Tokenise(nil, in)
	if err != nil {
		return nil, fmt.Errorf("creating iterator: %v", err)
	}
	return it.Tokens(), nil
}

func (hl *highlighter) lines(in string) ([][]chroma.Token, error) {
	it, err := hl.lexer.Tokenise(nil, in)
	if err != nil {
		return nil, fmt.Errorf("creating iterator: %v", err)
	}
	return chroma.SplitTokensIntoLines(it.Tokens()), nil
}

func class(t chroma.TokenType) string {
	s, ok := style[t]
	if ok {
		return s
	}
	s, ok = style[t.SubCategory()]
	if ok {
		return s
	}
	s, ok = style[t.Category()]
	if ok {
		return s
	}
	return ""
}
