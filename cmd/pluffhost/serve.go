package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pluffgo/pluffgo/internal/watch"
	"github.com/pluffgo/pluffgo/pkg/pluff"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a long-lived host: watch plug-in directories and serve the admin HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, ctx, err := loadHost()
		if err != nil {
			return err
		}
		defer ctx.Destroy(context.Background())

		if _, err := ctx.Scan(context.Background(), cfg.Flags()); err != nil {
			log.Error().Err(err).Msg("initial scan failed")
		}

		w := watch.New(contextScanner{ctx}, cfg.Flags(), 0)
		if err := w.Start(context.Background()); err != nil {
			return err
		}
		defer w.Stop()

		srv := &http.Server{
			Addr:         cfg.Admin.Addr,
			Handler:      newAdminServer(ctx),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("admin HTTP server exited")
			}
		}()
		log.Info().Str("addr", cfg.Admin.Addr).Msg("admin HTTP server listening")

		stopChan := make(chan os.Signal, 1)
		signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-stopChan
		log.Info().Str("signal", sig.String()).Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("admin HTTP server shutdown error")
		}
		ctx.StopAll(context.Background())
		return nil
	},
}

// contextScanner adapts *pluff.Context to watch.Scanner.
type contextScanner struct{ ctx *pluff.Context }

func (c contextScanner) Directories() []string { return c.ctx.Directories() }

func (c contextScanner) Scan(ctx context.Context, flags pluff.ScanFlags) (pluff.ScanResult, error) {
	return c.ctx.Scan(ctx, flags)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
