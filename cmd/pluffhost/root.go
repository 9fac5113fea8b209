// Package main implements pluffhost, a command-line host program for the
// plug-in framework: it can scan, install, start, stop and uninstall
// plug-ins from the shell, drive an interactive console, or run as a
// long-lived server that watches its plug-in directories and serves an admin
// HTTP surface. Grounded on Andrei-cloud-go_hsm/cmd/go_hsm/cmd's cobra
// command layout.
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pluffgo/pluffgo/internal/hostconfig"
	"github.com/pluffgo/pluffgo/internal/manifest"
	"github.com/pluffgo/pluffgo/internal/nativert"
	"github.com/pluffgo/pluffgo/internal/obslog"
	"github.com/pluffgo/pluffgo/internal/schemavalidate"
	"github.com/pluffgo/pluffgo/pkg/pluff"
)

var rootCmd = &cobra.Command{
	Use:   "pluffhost",
	Short: "Host program for the pluffgo plug-in framework",
	Long:  `pluffhost scans, installs, starts, stops and uninstalls plug-ins found on disk, and can serve an admin HTTP surface while watching for changes.`,
}

// Execute runs the root command. Each subcommand adds itself to rootCmd in
// its own file's init function.
func Execute() error {
	return rootCmd.Execute()
}

// loadHost reads host configuration, wires logging and constructs a
// pluff.Context rooted at the configured directories. Every subcommand that
// needs a live context calls this once.
func loadHost() (hostconfig.Config, *pluff.Context, error) {
	cfg, _, err := hostconfig.Load()
	if err != nil {
		return hostconfig.Config{}, nil, fmt.Errorf("loading configuration: %w", err)
	}
	obslog.Init(cfg.Log.Level == "debug", cfg.Log.Format != "json")

	pluff.Init()
	// Registered framework-wide (§4.6, §9: "Framework-wide loggers and
	// init-count are process-wide state"), before any context exists, so it
	// observes every context loadHost or a later Scan/serve cycle creates.
	pluff.AddLogger(obslog.LogListener(), pluff.SeverityDebug, nil)

	loader := nativert.New(context.Background())
	parser := manifest.New()
	validator := schemavalidate.New()
	ctx := pluff.NewContext(loader, parser, validator)
	for _, dir := range cfg.Directories {
		ctx.AddDirectory(dir)
	}
	ctx.AddEventListener(obslog.EventListener())

	return cfg, ctx, nil
}
