package main

import (
	"os"

	"github.com/jgoulah/pumplog/internal/logger"
)

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
