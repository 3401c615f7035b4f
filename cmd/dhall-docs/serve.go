package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/dhalldocs/internal/logfields"
	"github.com/dgallion1/dhalldocs/internal/preview"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Dir   string `short:"d" help:"Generated documentation directory (default ./docs)" type:"path"`
	Addr  string `short:"a" help:"Listen address (default :8000)"`
	Input string `short:"i" help:"Regenerate from this package root before serving" type:"existingdir"`
}

func (c *ServeCmd) Run(g *Global) error {
	cfg := g.Config
	if c.Dir != "" {
		cfg.OutputDir = c.Dir
	}
	if c.Addr != "" {
		cfg.PreviewAddr = c.Addr
	}
	log := g.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := preview.NewServer(cfg.OutputDir, log)
	if c.Input != "" {
		report, err := generate(ctx, g, cfg, c.Input)
		if err != nil {
			return err
		}
		srv.SetReport(report)
	}
	if info, err := os.Stat(cfg.OutputDir); err != nil || !info.IsDir() {
		return fmt.Errorf("no generated documentation at %s", cfg.OutputDir)
	}

	httpServer := &http.Server{
		Addr:         cfg.PreviewAddr,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go shutdownOnDone(ctx, httpServer, log, 10*time.Second)

	log.Info("serving documentation", "addr", cfg.PreviewAddr, "dir", cfg.OutputDir)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("preview server: %w", err)
	}
	return nil
}

// shutdownOnDone waits for ctx and then gracefully stops srv, giving open
// connections up to timeout to finish.
func shutdownOnDone(ctx context.Context, srv *http.Server, log *slog.Logger, timeout time.Duration) {
	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("preview server did not shut down cleanly", logfields.Error(err))
	}
}
