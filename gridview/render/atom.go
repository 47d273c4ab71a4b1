package render

import (
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/tools/blog/atom"
	"znkr.io/sauce/gridview/highlight"
)

// Feed renders entries as Atom feed. base is the URL the page is served at.
func Feed(title, base string, entries []Entry) ([]byte, error) {
	base = strings.TrimSuffix(base, "/")
	feed := atom.Feed{
		Title: title + " edits",
		ID:    base + "/edits.atom",
		Link: []atom.Link{{
			Rel:  "self",
			Href: base + "/edits.atom",
		}},
	}
	if len(entries) > 0 {
		feed.Updated = atom.Time(entries[0].Time)
	}

	for _, e := range entries {
		lines, err := highlight.Script(e.Action)
		if err != nil {
			return nil, fmt.Errorf("highlighting edit %d: %v", e.Seq, err)
		}
		var body strings.Builder
		body.WriteString("<pre>")
		for _, l := range lines {
			body.WriteString(string(l.Content))
		}
		body.WriteString("</pre>")

		feed.Entry = append(feed.Entry, &atom.Entry{
			Title: fmt.Sprintf("Edit #%d: %d operations", e.Seq, e.Ops),
			ID:    fmt.Sprintf("%s#edit-%d", feed.ID, e.Seq),
			Link: []atom.Link{{
				Rel:  "alternate",
				Href: fmt.Sprintf("%s/#edit-%d", base, e.Seq),
			}},
			Published: atom.Time(e.Time),
			Updated:   atom.Time(e.Time),
			Summary: &atom.Text{
				Type: "text",
				Body: e.Action.String(),
			},
			Content: &atom.Text{
				Type: "html",
				Body: body.String(),
			},
		})
	}

	b, err := xml.Marshal(feed)
	if err != nil {
		return nil, fmt.Errorf("encoding feed: %v", err)
	}
	return b, nil
}
