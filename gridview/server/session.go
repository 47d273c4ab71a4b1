package server

import (
	"bytes"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"znkr.io/sauce/gridview/render"
	"znkr.io/sauce/gridview/workspace"
	"znkr.io/sauce/source"
	"znkr.io/sauce/surface"
)

// Session attaches a workspace to a grid and records every edit applied to it. All access to the
// source tree goes through the session, which serializes it.
type Session struct {
	mu      sync.Mutex
	ws      *workspace.Workspace
	ctrl    *surface.Controller
	journal *render.Journal

	reg     *prometheus.Registry
	metrics *metrics
	hub     *hub

	width       float64
	base        string
	journalSize int
}

// Option configures a [Session].
type Option func(*Session)

// Width sets the width of the laid out grid.
func Width(w float64) Option {
	return func(s *Session) { s.width = w }
}

// BaseURL sets the URL the session is served at, it's used in the feed of edits.
func BaseURL(url string) Option {
	return func(s *Session) { s.base = url }
}

// JournalSize sets the number of edits kept in the journal.
func JournalSize(n int) Option {
	return func(s *Session) { s.journalSize = n }
}

// NewSession attaches the root source of ws to a new grid. Metrics are registered with reg.
func NewSession(ws *workspace.Workspace, reg *prometheus.Registry, opts ...Option) *Session {
	s := &Session{
		ws:          ws,
		reg:         reg,
		width:       320,
		base:        "http://localhost:8080",
		journalSize: 50,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.journal = render.NewJournal(s.journalSize)
	s.metrics = newMetrics(reg)
	s.hub = newHub(s.metrics)
	s.ctrl = surface.New(ws.Root())
	s.ctrl.Observe(s.applied)
	return s
}

func (s *Session) applied(a source.Action) {
	e := s.journal.Record(a)
	s.metrics.batches.Inc()
	for _, op := range a.Flatten() {
		s.metrics.operations.WithLabelValues(op.Kind.String()).Inc()
	}
	s.hub.broadcast(message{Seq: e.Seq, Ops: e.Ops, Script: a.String()})
}

// Title returns the title of the workspace.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title()
}

func (s *Session) title() string {
	if t := s.ws.Title(); t != "" {
		return t
	}
	return "gridview"
}

// Paths returns the files the workspace is loaded from.
func (s *Session) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.Paths()
}

// Reload reloads the workspace. The grid is updated incrementally.
func (s *Session) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if err := s.ws.Reload(); err != nil {
		s.metrics.reloads.WithLabelValues("error").Inc()
		return err
	}
	s.metrics.reloads.WithLabelValues("ok").Inc()
	s.metrics.reloadSeconds.Observe(time.Since(start).Seconds())
	return nil
}

// SetFilter sets the scope and search text of the filtered document shown at section.
func (s *Session) SetFilter(section int, scope, search string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.SetFilter(section, scope, search)
}

// Toggle flips the selection of the item at p.
func (s *Session) Toggle(p source.Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.Toggle(p)
}

// Page returns the page showing the grid. Live pages reload whenever an edit is applied.
func (s *Session) Page(live bool) (*render.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell := func(p source.Path) render.Cell { return render.Cell(s.ws.Cell(p)) }
	p, err := render.Build(s.title(), s.ctrl.Grid(), s.ws.Root(), cell, s.journal.Entries(), s.width)
	if err != nil {
		return nil, err
	}
	p.Live = live
	return p, nil
}

// Feed returns the Atom feed of the recent edits.
func (s *Session) Feed() ([]byte, error) {
	return render.Feed(s.Title(), s.base, s.journal.Entries())
}

// Files returns the files of a static export of the page.
func (s *Session) Files() ([]render.File, error) {
	p, err := s.Page(false)
	if err != nil {
		return nil, err
	}
	feed, err := s.Feed()
	if err != nil {
		return nil, err
	}
	return p.Files(feed)
}

// HTML renders the page.
func (s *Session) HTML(live bool) ([]byte, error) {
	p, err := s.Page(live)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Close detaches the workspace from the grid and disconnects all live previews.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Detach()
	s.hub.close()
}
