package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"znkr.io/sauce/gridview/pack"
	"znkr.io/sauce/gridview/server"
	"znkr.io/sauce/gridview/workspace"
)

var exportBaseURL string

var exportCmd = &cobra.Command{
	Use:   "export <file.tar>",
	Short: "Packs a static rendition of the grid into a .tar file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := workspace.Open(configPath)
		if err != nil {
			return fmt.Errorf("loading workspace: %v", err)
		}
		s := server.NewSession(ws, prometheus.NewRegistry(), server.BaseURL(exportBaseURL))
		defer s.Close()
		files, err := s.Files()
		if err != nil {
			return fmt.Errorf("rendering grid: %v", err)
		}
		return pack.Pack(args[0], files)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportBaseURL, "base-url", "http://localhost:8080", "URL the export is published at")
}
