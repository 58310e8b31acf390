package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/pumplog/internal/publisher"
)

var publishDryRun bool

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the last seven daily totals to Home Assistant and MQTT",
	Long: `Reads the feed once and publishes each day of the weekly window to the
Home Assistant backfill endpoint and, when enabled, a retained MQTT topic.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "print what would be published without sending")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	snap := p.Run(context.Background())

	// generated data must never reach Home Assistant by accident
	if snap.FetchError != "" {
		return fmt.Errorf("feed unavailable, not publishing sample data: %s", snap.FetchError)
	}

	if publishDryRun {
		for _, day := range snap.Week {
			fmt.Printf("%s  %s ml (morning %s, afternoon %s)\n", day.Date.Format("2006-01-02"), day.Total, day.Morning, day.Afternoon)
		}
		return nil
	}

	pub, err := publisher.New(cfg.MQTT, cfg.HomeAssistant)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	fmt.Printf("Publishing %d days...\n", len(snap.Week))
	published := 0
	for i, day := range snap.Week {
		fmt.Printf("[%d/%d] Publishing %s (%s ml)... ", i+1, len(snap.Week), day.Date.Format("2006-01-02"), day.Total)
		if err := pub.Publish(day); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			continue
		}
		fmt.Printf("✓\n")
		published++
	}

	fmt.Printf("Successfully published %d/%d days\n", published, len(snap.Week))
	return nil
}
