package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/pumplog/internal/geometry"
	"github.com/jgoulah/pumplog/internal/render"
)

var (
	renderOut    string
	renderFormat string
	renderWidth  int
	renderHeight int
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write the weekly and time-of-day charts to files",
	Long:  `Reads the feed once and writes weekly.<format> and bubbles.<format> into the output directory.`,
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderOut, "out", ".", "output directory")
	renderCmd.Flags().StringVar(&renderFormat, "format", "svg", "image format (svg or png)")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "chart width in pixels (default from config)")
	renderCmd.Flags().IntVar(&renderHeight, "height", 0, "chart height in pixels (default from config)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Render started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	format, err := render.ParseFormat(renderFormat)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	width, height := cfg.GetChartSize()
	if renderWidth > 0 {
		width = renderWidth
	}
	if renderHeight > 0 {
		height = renderHeight
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	snap := p.Run(context.Background())
	fmt.Printf("Loaded %d events from %s\n", len(snap.Events), snap.Source)

	if err := os.MkdirAll(renderOut, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	weekly := filepath.Join(renderOut, "weekly."+string(format))
	if err := writeChart(weekly, func(f *os.File) error {
		return render.WeeklyChart(f, format, geometry.LayoutBars(snap.Week, width, height))
	}); err != nil {
		return err
	}
	fmt.Printf("✓ Wrote %s\n", weekly)

	bubbles := filepath.Join(renderOut, "bubbles."+string(format))
	if err := writeChart(bubbles, func(f *os.File) error {
		return render.BubbleChart(f, format, geometry.LayoutBubbles(snap.Bubbles, width, height))
	}); err != nil {
		return err
	}
	fmt.Printf("✓ Wrote %s\n", bubbles)

	return nil
}

func writeChart(path string, paint func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := paint(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
