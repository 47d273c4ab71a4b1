package server

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/tools/blog/atom"
	"znkr.io/sauce/gridview/workspace"
	"znkr.io/sauce/source"
)

const (
	todo   = "# Todo\n\n- [work] Write report\n- [home] Fix sink\n- [work] Review code\n"
	config = `sources:
  - doc: todo.md
    selectable: true
    filter:
      scopes: [all, work, home]
`
)

func newSession(t *testing.T) (string, *Session) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{"gridview.yaml": config, "todo.md": todo} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	ws, err := workspace.Open(filepath.Join(dir, "gridview.yaml"))
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	s := NewSession(ws, prometheus.NewRegistry(), JournalSize(10), BaseURL("http://example.com"))
	t.Cleanup(s.Close)
	return dir, s
}

func get(t *testing.T, c *http.Client, url string) (int, string) {
	t.Helper()
	resp, err := c.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading %s: %v", url, err)
	}
	return resp.StatusCode, string(b)
}

func TestSessionReload(t *testing.T) {
	dir, s := newSession(t)

	if err := os.WriteFile(filepath.Join(dir, "todo.md"), []byte("- [work] Write report\n- [home] Fix sink\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload() = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "todo.md"), []byte("- a\n- A\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err == nil {
		t.Error("Reload() with duplicate items succeeded")
	}

	if got := testutil.ToFloat64(s.metrics.reloads.WithLabelValues("ok")); got != 1 {
		t.Errorf("successful reloads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.metrics.reloads.WithLabelValues("error")); got != 1 {
		t.Errorf("failed reloads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.metrics.batches); got != 1 {
		t.Errorf("batches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.metrics.operations.WithLabelValues("Delete")); got != 1 {
		t.Errorf("delete operations = %v, want 1", got)
	}
	if got := s.journal.Seq(); got != 1 {
		t.Errorf("journal Seq() = %d, want 1", got)
	}
	if got := s.Title(); got != "gridview" {
		t.Errorf("Title() = %q, want %q", got, "gridview")
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "gridview.yaml"), filepath.Join(dir, "todo.md")}, s.Paths()); diff != "" {
		t.Errorf("Paths() (-want, +got):\n%s", diff)
	}
}

func TestHandler(t *testing.T) {
	_, s := newSession(t)
	srv := httptest.NewServer(newHandler(s))
	defer srv.Close()
	c := srv.Client()

	code, body := get(t, c, srv.URL+"/")
	if code != http.StatusOK {
		t.Fatalf("GET / = %d: %s", code, body)
	}
	for _, want := range []string{"<title>Todo</title>", "Write report", `<script src="preview.js"></script>`} {
		if !strings.Contains(body, want) {
			t.Errorf("GET / doesn't contain %q", want)
		}
	}

	resp, err := c.PostForm(srv.URL+"/filter", url.Values{"section": {"1"}, "scope": {"home"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Request.URL.Path != "/" {
		t.Errorf("POST /filter ended at %s with %d, want / with 200", resp.Request.URL.Path, resp.StatusCode)
	}

	resp, err = c.PostForm(srv.URL+"/select", url.Values{"section": {"1"}, "item": {"0"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("POST /select = %d, want 200", resp.StatusCode)
	}
	if diff := cmp.Diff([]string{"Fix sink"}, selected(s)); diff != "" {
		t.Errorf("selected items (-want, +got):\n%s", diff)
	}

	for _, form := range []url.Values{
		{"section": {"x"}},
		{"section": {"1"}, "item": {"9"}},
		{"section": {"1"}},
	} {
		resp, err := c.PostForm(srv.URL+"/select", form)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("POST /select %v = %d, want 400", form, resp.StatusCode)
		}
	}
	resp, err = c.PostForm(srv.URL+"/filter", url.Values{"section": {"1"}, "scope": {"garden"}})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("POST /filter with unknown scope = %d, want 400", resp.StatusCode)
	}

	code, body = get(t, c, srv.URL+"/edits.atom")
	if code != http.StatusOK {
		t.Fatalf("GET /edits.atom = %d: %s", code, body)
	}
	var feed atom.Feed
	if err := xml.Unmarshal([]byte(body), &feed); err != nil {
		t.Fatalf("decoding feed: %v", err)
	}
	if got := len(feed.Entry); got != 2 {
		t.Errorf("feed has %d entries, want 2", got)
	}

	code, body = get(t, c, srv.URL+"/metrics")
	if code != http.StatusOK {
		t.Fatalf("GET /metrics = %d", code)
	}
	for _, want := range []string{"gridview_batches_total 2", `gridview_operations_total{kind="Reload"} 1`} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics don't contain %q:\n%s", want, body)
		}
	}

	if code, _ := get(t, c, srv.URL+"/style.css"); code != http.StatusOK {
		t.Errorf("GET /style.css = %d, want 200", code)
	}
	if code, _ := get(t, c, srv.URL+"/page.html"); code != http.StatusNotFound {
		t.Errorf("GET /page.html = %d, want 404", code)
	}
}

func selected(s *Session) []string {
	var ret []string
	for _, it := range s.ws.Selected() {
		ret = append(ret, it.Title)
	}
	return ret
}

func TestLivePreview(t *testing.T) {
	_, s := newSession(t)
	srv := httptest.NewServer(newHandler(s))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()
	for deadline := time.Now().Add(5 * time.Second); s.hub.len() == 0; {
		if time.Now().After(deadline) {
			t.Fatal("preview never registered")
		}
		time.Sleep(time.Millisecond)
	}
	if got := testutil.ToFloat64(s.metrics.clients); got != 1 {
		t.Errorf("clients = %v, want 1", got)
	}

	if err := s.Toggle(source.Path{Section: 1, Item: 2}); err != nil {
		t.Fatalf("Toggle() = %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var got message
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("reading edit: %v", err)
	}
	want := message{Seq: 1, Ops: 1, Script: "Reload(1:2)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pushed edit (-want, +got):\n%s", diff)
	}

	s.hub.close()
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("ReadMessage() after close = %v, want normal closure", err)
	}
}

func TestRun(t *testing.T) {
	_, s := newSession(t)
	srv, err := Run("localhost:0", s)
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	code, _ := get(t, http.DefaultClient, "http://"+srv.Addr()+"/")
	if code != http.StatusOK {
		t.Errorf("GET / = %d, want 200", code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
	if err, ok := <-srv.Error(); ok {
		t.Errorf("Error() = %v after Shutdown", err)
	}
}

func TestFiles(t *testing.T) {
	_, s := newSession(t)
	files, err := s.Files()
	if err != nil {
		t.Fatalf("Files() = %v", err)
	}
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	if diff := cmp.Diff([]string{"index.html", "style.css", "edits.atom"}, paths); diff != "" {
		t.Errorf("Files() (-want, +got):\n%s", diff)
	}
}
