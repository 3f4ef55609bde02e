package seedposts

import (
	"context"
	"fmt"
	"log"
	"math"
)

// shareTolerance bounds the float drift allowed when project shares are
// checked against a full distribution.
const shareTolerance = 0.001

// verifyLeaderboards reads the seeded leaderboards back and checks that the
// service ranks them consistently with the ledgers it just built.
func verifyLeaderboards(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) error {
	log.Println("🔍 Verifying leaderboards...")

	projects, err := fetchProjectLeaderboard(ctx, client, config)
	if err != nil {
		return fmt.Errorf("project leaderboard retrieval failed: %w", err)
	}

	if err := verifyProjectRows(projects); err != nil {
		log.Printf("⚠️  Project leaderboard warning: %v", err)
	} else {
		log.Println("✅ Project leaderboard consistent")
	}

	for _, project := range seedProjects {
		users, err := fetchUserLeaderboard(ctx, client, config, project.Slug)
		if err != nil {
			return fmt.Errorf("user leaderboard retrieval failed for %q: %w", project.Slug, err)
		}

		if err := verifyUserRows(users); err != nil {
			log.Printf("⚠️  Leaderboard warning for %s: %v", project.Slug, err)
		} else {
			log.Printf("✅ Leaderboard for %s consistent (%d entries)", project.Slug, len(users))
		}

		displayTopContributors(project.Slug, users, config)
	}

	log.Println("✅ Leaderboard verification completed")
	return nil
}

func fetchProjectLeaderboard(ctx context.Context, client *HTTPClient, config *Config) ([]projectRow, error) {
	url := fmt.Sprintf("%s/leaderboard?range=all&limit=%d", config.BaseURL, config.TopN)

	var rows []projectRow
	if err := getJSON(ctx, client, url, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func fetchUserLeaderboard(ctx context.Context, client *HTTPClient, config *Config, slug string) ([]userRow, error) {
	url := fmt.Sprintf("%s/projects/%s/leaderboard?range=all&limit=%d", config.BaseURL, slug, config.TopN)

	var rows []userRow
	if err := getJSON(ctx, client, url, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// verifyProjectRows checks ordering and the share distribution.
func verifyProjectRows(rows []projectRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("empty project leaderboard")
	}

	shareSum := 0.0
	for i, row := range rows {
		if i > 0 && row.NetScore > rows[i-1].NetScore {
			return fmt.Errorf("project leaderboard not sorted: %q above %q",
				rows[i-1].ProjectSlug, row.ProjectSlug)
		}
		if row.Rank != i+1 {
			return fmt.Errorf("project %q has rank %d at position %d", row.ProjectSlug, row.Rank, i+1)
		}
		shareSum += row.CurrentShare
	}

	if shareSum > 0 && math.Abs(shareSum-1.0) > shareTolerance {
		return fmt.Errorf("project shares sum to %.4f, want 1.0", shareSum)
	}
	return nil
}

// verifyUserRows checks ordering of a per-project user leaderboard.
func verifyUserRows(rows []userRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("empty leaderboard")
	}

	for i, row := range rows {
		if i > 0 && row.NetScore > rows[i-1].NetScore {
			return fmt.Errorf("leaderboard not sorted: %q above %q",
				rows[i-1].Handle, row.Handle)
		}
		if row.NetScore != row.TotalReward-row.TotalSlash {
			return fmt.Errorf("entry %q has net %d, want %d",
				row.Handle, row.NetScore, row.TotalReward-row.TotalSlash)
		}
	}
	return nil
}

// displayTopContributors shows the leading contributors per project.
func displayTopContributors(slug string, rows []userRow, config *Config) {
	topN := config.TopN
	if len(rows) < topN {
		topN = len(rows)
	}

	log.Printf("🏆 Top %d contributors for %s:", topN, slug)
	for i := 0; i < topN; i++ {
		row := rows[i]
		log.Printf("   %d. %s - net: %d (+%d/-%d, posts: %d)",
			row.Rank, row.Handle, row.NetScore, row.TotalReward, row.TotalSlash, row.WindowPosts)
	}

	if config.Verbose && len(rows) > 0 {
		net := 0
		for _, row := range rows {
			net += row.NetScore
		}
		log.Printf("📊 %s totals: %d contributors, combined net %d", slug, len(rows), net)
	}
}
