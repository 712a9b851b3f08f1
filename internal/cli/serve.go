package cli

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nickcecere/recipewriter/internal/config"
	"github.com/nickcecere/recipewriter/internal/server"
	"github.com/nickcecere/recipewriter/internal/ui"
	"github.com/nickcecere/recipewriter/internal/watcher"
)

var (
	serveAddr  string
	serveWatch bool
)

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recipe article API over HTTP",
	Long: `Start the HTTP API.

Endpoints:
  GET  /health         liveness and loaded recipe count
  POST /recipe-query   {"query": "..."} -> generated HTML article
  GET  /metrics        Prometheus metrics

The recipe library is loaded on the first request. With --watch the library
is reloaded whenever a sync rewrites the data files.

Examples:
  recipewriter serve
  recipewriter serve --addr :8080 --watch`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, PORT or :5000)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload the library when data files change")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if err := ui.SetServerMode(cfg.Server.LogFormat); err != nil {
		log.Warn("Falling back to text logs", "error", err)
	}

	serverCfg := cfg.Server
	if serveAddr != "" {
		serverCfg.Addr = serveAddr
	}

	cache := newLibraryCache(cfg)
	if _, err := cache.Library(); err != nil {
		log.Warn("Library not loaded yet; run 'recipewriter sync'", "error", err)
	}

	queries, err := newQueryService(cfg, cache)
	if err != nil {
		return err
	}

	srv := server.New(server.NewHandlers(queries, cache), serverCfg)

	ctx, cancel := signalContext()
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})

	if serveWatch {
		embPath, idxPath := cache.Paths()
		w, err := watcher.New([]string{embPath, idxPath}, func(context.Context) error {
			return cache.Reload()
		})
		if err != nil {
			return err
		}
		g.Go(func() error {
			if err := w.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}
