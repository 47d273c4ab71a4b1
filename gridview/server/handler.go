package server

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"znkr.io/sauce/gridview/render"
	"znkr.io/sauce/source"
)

type handler struct {
	session *Session
}

func newHandler(s *Session) http.Handler {
	h := &handler{session: s}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.page)
	mux.HandleFunc("GET /edits.atom", h.feed)
	mux.HandleFunc("GET /{asset}", h.asset)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	mux.Handle("GET /ws", s.hub)
	mux.HandleFunc("POST /filter", h.filter)
	mux.HandleFunc("POST /select", h.toggle)
	return mux
}

func (h *handler) page(w http.ResponseWriter, req *http.Request) {
	b, err := h.session.HTML(true)
	if err != nil {
		h.fail(w, req, http.StatusInternalServerError, err)
		return
	}
	h.write(w, req, "text/html; charset=utf-8", b)
}

func (h *handler) feed(w http.ResponseWriter, req *http.Request) {
	b, err := h.session.Feed()
	if err != nil {
		h.fail(w, req, http.StatusInternalServerError, err)
		return
	}
	h.write(w, req, "application/atom+xml; charset=utf-8", b)
}

func (h *handler) asset(w http.ResponseWriter, req *http.Request) {
	f := render.Asset(req.PathValue("asset"))
	if f == nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		if req.Method == http.MethodGet {
			w.Write([]byte("not found"))
		}
		return
	}
	h.write(w, req, f.MimeType, f.Data)
}

func (h *handler) filter(w http.ResponseWriter, req *http.Request) {
	section, err := intValue(req, "section")
	if err != nil {
		h.fail(w, req, http.StatusBadRequest, err)
		return
	}
	if err := h.session.SetFilter(section, req.FormValue("scope"), req.FormValue("search")); err != nil {
		h.fail(w, req, http.StatusBadRequest, err)
		return
	}
	http.Redirect(w, req, "/", http.StatusSeeOther)
}

func (h *handler) toggle(w http.ResponseWriter, req *http.Request) {
	section, err := intValue(req, "section")
	if err != nil {
		h.fail(w, req, http.StatusBadRequest, err)
		return
	}
	item, err := intValue(req, "item")
	if err != nil {
		h.fail(w, req, http.StatusBadRequest, err)
		return
	}
	if err := h.session.Toggle(source.Path{Section: section, Item: item}); err != nil {
		h.fail(w, req, http.StatusBadRequest, err)
		return
	}
	http.Redirect(w, req, "/", http.StatusSeeOther)
}

func intValue(req *http.Request, key string) (int, error) {
	v := req.FormValue(key)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}

func (h *handler) write(w http.ResponseWriter, req *http.Request, mime string, b []byte) {
	w.Header().Set("Content-Type", mime)
	if req.Method == http.MethodHead {
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func (h *handler) fail(w http.ResponseWriter, req *http.Request, code int, err error) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(code)
	w.Write([]byte(err.Error()))
	if code >= http.StatusInternalServerError {
		log.Printf("failed to serve %v: %v", req.URL.EscapedPath(), err)
	}
}
