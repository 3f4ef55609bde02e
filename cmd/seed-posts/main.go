package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/Base-InfoFi/Backend/internal/seedposts"
)

// Default configuration constants.
const (
	defaultTopN        = 10
	defaultTimeout     = 60 * time.Second
	defaultSeedTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		topN    = flag.Int("top", defaultTopN, "Number of top entries to fetch from leaderboards")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		async   = flag.Bool("async", false, "Submit posts through the async queue instead of waiting on scoring")
		logFile = flag.String("log", "", "Log file for seed output (default: seed_log_TIMESTAMP.log)")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seedposts.ShowHelp()
		return
	}

	// Setup logging
	if err := seedposts.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultSeedTimeout)
	defer cancel()

	// Create seed configuration
	config := &seedposts.Config{
		BaseURL: *baseURL,
		TopN:    *topN,
		Timeout: *timeout,
		Async:   *async,
		Verbose: *verbose,
		LogFile: *logFile,
	}

	// Run the seed pass
	if err := seedposts.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seed run failed: " + err.Error() + "\n")
		return
	}
}
