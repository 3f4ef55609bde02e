package seedposts

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Base-InfoFi/Backend/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	os.Stdout.WriteString(`InfoFi Seed Tool
================

Seeds a running reputation service with two projects, five authors and ten
scripted posts, then reads the leaderboards back and verifies their ordering.

Usage:
  go run cmd/seed-posts/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -top int
        Number of top entries to fetch from leaderboards (default 10)
  -timeout duration
        HTTP request timeout (default 60s)
  -async
        Submit posts through the async queue instead of waiting on scoring
  -log string
        Log file for seed output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed a local service
  go run cmd/seed-posts/main.go

  # Seed through the async queue with verbose output
  go run cmd/seed-posts/main.go -async -verbose

  # Seed a remote deployment
  go run cmd/seed-posts/main.go -url https://reputation.example.com -timeout 120s
`)
}
