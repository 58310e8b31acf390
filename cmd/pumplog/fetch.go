package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/pumplog/internal/events"
	"github.com/jgoulah/pumplog/internal/feed"
)

var fetchRaw bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the feed and print every parsed event",
	Long: `Downloads the sheet export once, parses and normalizes it, then prints every
event newest first together with any field that could not be read. Nothing
falls back to sample data here; a failed download is an error.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchRaw, "raw", false, "print the raw records instead of normalized events")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Fetch started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	loc, err := cfg.GetLocation()
	if err != nil {
		return err
	}

	client := feed.NewClient(cfg.GetFeedURL(), cfg.GetTimeout())
	fmt.Printf("Feed: %s\n", client.URL())

	text, err := client.Fetch(context.Background())
	if err != nil {
		return fmt.Errorf("fetching feed: %w", err)
	}
	records := feed.ParseRecords(text)
	fmt.Printf("✓ Parsed %d records\n\n", len(records))

	if fetchRaw {
		for _, r := range records {
			fmt.Printf("%5d  %-20s  %-8s  %s\n", r.Line, r.Datetime, r.Amount, r.Flag)
		}
		return nil
	}

	evts, issues := events.Normalize(records, loc)
	fmt.Printf("%-17s  %8s  %s\n", "Timestamp", "Amount", "Pump")
	fmt.Println("----------------------------------------")
	for _, e := range evts {
		ts := "(unreadable)"
		if e.HasTime() {
			ts = e.Timestamp.Format("2006-01-02 15:04")
		}
		fmt.Printf("%-17s  %8s  %s\n", ts, e.Amount, e.Flag)
	}

	if len(issues) > 0 {
		fmt.Printf("\n%d field(s) could not be read:\n", len(issues))
		for _, issue := range issues {
			fmt.Printf("  %v\n", issue)
		}
	}
	return nil
}
