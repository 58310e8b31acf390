package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jgoulah/pumplog/internal/dashboard"
	"github.com/jgoulah/pumplog/internal/logger"
	"github.com/jgoulah/pumplog/internal/server"
)

var (
	serveAddr    string
	serveRefresh time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP dashboard",
	Long: `Serves the dashboard page, chart images and JSON endpoints. With a refresh
interval the feed is re-read in the background; without one every page load
re-reads it.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config, default :8080)")
	serveCmd.Flags().DurationVar(&serveRefresh, "refresh", 0, "background refresh interval (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := cfg.GetAddr()
	if serveAddr != "" {
		addr = serveAddr
	}
	interval := cfg.Server.RefreshInterval
	if cmd.Flags().Changed("refresh") {
		interval = serveRefresh
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	d := dashboard.New(p, logger.Log)

	width, height := cfg.GetChartSize()
	srv := server.New(d, server.Options{
		Unit:          cfg.GetUnit(),
		Width:         width,
		Height:        height,
		RefreshOnLoad: interval <= 0,
		Logger:        logger.Log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap := d.Refresh(ctx)
	fmt.Printf("=== Serving on %s (%d events from %s) ===\n", addr, len(snap.Events), snap.Source)
	logger.Log.Info("starting dashboard",
		zap.String("addr", addr),
		zap.Duration("refresh_interval", interval),
		zap.String("location", p.Location().String()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, addr)
	})
	if interval > 0 {
		g.Go(func() error {
			return d.Watch(gctx, interval)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Println("✓ Shut down")
	return nil
}
