package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/pumplog/internal/dashboard"
	"github.com/jgoulah/pumplog/internal/server"
	"github.com/jgoulah/pumplog/pkg/models"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Print today's sessions and the weekly totals",
	Long:  `Reads the feed once and prints today's sessions with their total, followed by the daily totals of the last seven days.`,
	RunE:  runToday,
}

func init() {
	rootCmd.AddCommand(todayCmd)
}

func runToday(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	snap := p.Run(context.Background())
	unit := cfg.GetUnit()

	fmt.Println(snap.BuiltAt.Format(server.LongDateLayout))
	if snap.Source == dashboard.SourceSample {
		fmt.Println("(sample data)")
	}

	fmt.Println("----------------------------------------")
	if snap.Today.Empty() {
		fmt.Println("No data for today")
	} else {
		fmt.Printf("%-8s  %10s  %s\n", "Time", "Amount", "Pump")
		fmt.Println("----------------------------------------")
		for _, e := range snap.Today.Events {
			fmt.Printf("%-8s  %10s  %s\n", e.TimeLabel(), e.Amount.String()+" "+unit, e.Flag)
		}
	}
	fmt.Println("----------------------------------------")
	fmt.Printf("Total: %s %s\n", snap.Today.Total, unit)

	fmt.Printf("\nLast %d days:\n", len(snap.Week))
	fmt.Println("----------------------------------------")
	fmt.Printf("%-12s  %10s  %10s  %10s\n", "Date", "Morning", "Afternoon", "Total")
	fmt.Println("----------------------------------------")
	week := models.ML(0)
	for _, d := range snap.Week {
		fmt.Printf("%-12s  %10s  %10s  %10s\n", d.Date.Format("2006-01-02"), d.Morning, d.Afternoon, d.Total)
		week = week.Add(d.Total)
	}
	fmt.Println("----------------------------------------")
	if week.Valid {
		fmt.Printf("Week: %s %s\n", humanize.Comma(int64(week.ML)), unit)
	} else {
		fmt.Printf("Week: %s %s\n", week, unit)
	}

	return nil
}
