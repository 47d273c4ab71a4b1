// Package server serves a live preview of a grid session via HTTP.
//
// The preview page is pushed every edit applied to the grid over a websocket. The server also
// serves an Atom feed of the recent edits and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Server serves a single session via HTTP.
type Server struct {
	http    *http.Server
	session *Session
	addr    net.Addr
	errc    chan error
}

// Run creates a new server and runs it in a new goroutine.
func Run(addr string, session *Session) (*Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("starting HTTP server: %v", err)
	}

	s := &Server{
		http: &http.Server{
			Handler: newHandler(session),
		},
		session: session,
		addr:    l.Addr(),
		errc:    make(chan error, 1),
	}

	go func() {
		if err := s.http.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errc <- err
		}
	}()

	return s, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string { return s.addr.String() }

// Shutdown gracefully stops the server and disconnects all live previews.
func (s *Server) Shutdown(ctx context.Context) error {
	s.session.hub.close()
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %v", err)
	}
	close(s.errc)
	return nil
}

// Error returns a channel to listen to errors while serving.
func (s *Server) Error() <-chan error {
	return s.errc
}
