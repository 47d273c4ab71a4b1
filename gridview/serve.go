package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"znkr.io/sauce/gridview/server"
	"znkr.io/sauce/gridview/workspace"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves a live preview of the grid, reloading it whenever a document changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := workspace.Open(configPath)
		if err != nil {
			return fmt.Errorf("loading workspace: %v", err)
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		session := server.NewSession(ws, reg, server.BaseURL("http://"+serveAddr))
		defer session.Close()

		// Start serving.
		srv, err := server.Run(serveAddr, session)
		if err != nil {
			return err
		}
		defer srv.Shutdown(context.Background())
		log.Printf("Now serving at %s, press Ctrl-C to shut down", srv.Addr())

		// Setup file watcher to trigger reloading of the workspace should anything change on disk.
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("starting watcher: %v", err)
		}
		defer watcher.Close()
		if err := watchPaths(watcher, session.Paths()); err != nil {
			return fmt.Errorf("starting watch: %v", err)
		}
		{
			wl := watcher.WatchList()
			slices.Sort(wl)
			log.Printf("Watching:\n    %v", strings.Join(wl, "\n    "))
		}

		// Setup signals to react to Ctrl-C.
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)

		for {
			select {
			case event := <-watcher.Events:
				if event.Has(fsnotify.Chmod) || !watched(session.Paths(), event.Name) {
					continue
				}

				start := time.Now()
				if err := session.Reload(); err != nil {
					log.Printf("failed to reload workspace: %v", err)
					continue
				}
				// The configuration may list documents in new directories.
				if err := watchPaths(watcher, session.Paths()); err != nil {
					return fmt.Errorf("adding watch: %v", err)
				}
				d := time.Since(start)
				log.Printf("Workspace reloaded (%v)", d)
			case err := <-watcher.Errors:
				return fmt.Errorf("watching: %v", err)
			case err := <-srv.Error():
				return fmt.Errorf("serving: %v", err)
			case <-sigint:
				fmt.Print("\r") // remove Ctrl-C output characters
				log.Printf("Received Ctrl-C, shutting down")
				return nil
			}
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "address to serve at")
}

// watchPaths watches the directories of all paths. Files are watched via their directory, most
// editors replace files instead of writing them in place.
func watchPaths(watcher *fsnotify.Watcher, paths []string) error {
	wl := watcher.WatchList()
	for _, p := range paths {
		dir := filepath.Dir(p)
		if slices.Contains(wl, dir) {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return err
		}
		wl = append(wl, dir)
	}
	return nil
}

// watched reports whether name is one of paths.
func watched(paths []string, name string) bool {
	name = filepath.Clean(name)
	for _, p := range paths {
		if filepath.Clean(p) == name {
			return true
		}
	}
	return false
}
