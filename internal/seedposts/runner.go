package seedposts

import (
	"context"
	"fmt"
	"time"

	"github.com/Base-InfoFi/Backend/pkg/logger"
)

// Run executes the complete seed pass.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting reputation seed run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("projects", len(seedProjects)),
		logger.Int("posts", len(seedPosts)),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("async", config.Async))

	client := newHTTPClient(config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Create projects
	if err := createProjects(ctx, client, config, stats); err != nil {
		return fmt.Errorf("project creation failed: %w", err)
	}

	// Step 3: Submit the scripted posts
	if err := submitPosts(ctx, client, config, stats); err != nil {
		return fmt.Errorf("post submission failed: %w", err)
	}

	// Step 4: Async submits are scored by the worker pool, give it time
	if config.Async && stats.PostsQueued > 0 {
		logger.Get().Info(ctx, "waiting for queued posts to be scored",
			logger.Duration("delay", AsyncDrainDelay))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(AsyncDrainDelay):
		}
	}

	// Step 5: Read leaderboards back and verify them
	if err := verifyLeaderboards(ctx, client, config, stats); err != nil {
		return fmt.Errorf("leaderboard verification failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seed run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats prints the final seed statistics.
func displayFinalStats(stats *Stats) {
	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("projectsCreated", stats.ProjectsCreated),
		logger.Int("projectsExisting", stats.ProjectsExisting),
		logger.Int("postsSubmitted", stats.PostsSubmitted),
		logger.Int("postsScored", stats.PostsScored),
		logger.Int("postsQueued", stats.PostsQueued),
		logger.Int("postsFailed", stats.PostsFailed),
		logger.Int("rewardTotal", stats.RewardTotal),
		logger.Int("slashTotal", stats.SlashTotal),
		logger.Int("labelMismatches", stats.LabelMismatches),
		logger.String("duration", stats.Duration.String()))
}
