package seedposts

import "time"

// Config holds configuration for the seed run
type Config struct {
	BaseURL string        // Base URL of the service
	TopN    int           // Number of top entries to fetch from leaderboards
	Timeout time.Duration // HTTP request timeout
	Async   bool          // Submit posts through the async queue instead of waiting on scoring
	Verbose bool          // Enable verbose logging
	LogFile string        // Log file for seed output
}

// ProjectSeed describes one project to create before posting.
type ProjectSeed struct {
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	ContextSummary string `json:"contextSummary,omitempty"`
}

// AuthorSeed is a scripted author identity reused across posts.
type AuthorSeed struct {
	Handle string
	Wallet string
}

// PostSeed is one scripted submission plus the label it is expected to earn.
type PostSeed struct {
	ProjectSlug   string
	Author        AuthorSeed
	Content       string
	Tags          []string
	ExpectedLabel string
}

// submission is the wire shape of POST /posts and POST /posts/async.
type submission struct {
	ProjectSlug string    `json:"projectSlug"`
	Wallet      string    `json:"wallet,omitempty"`
	Handle      string    `json:"handle,omitempty"`
	Source      string    `json:"source,omitempty"`
	SourceID    string    `json:"sourceId,omitempty"`
	URL         string    `json:"url,omitempty"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags,omitempty"`
	PostedAt    time.Time `json:"postedAt,omitempty"`
}

// judgmentResponse is the subset of the judgment payload the seeder inspects.
type judgmentResponse struct {
	ID             string  `json:"id"`
	ContentID      string  `json:"contentId"`
	Label          string  `json:"finalLabel"`
	Reward         int     `json:"rewardPoints"`
	Slash          int     `json:"slashPoints"`
	SpamLikelihood float64 `json:"spamLikelihood"`
}

// evaluationResponse is the body of a synchronous submit.
type evaluationResponse struct {
	Content struct {
		ID       string `json:"id"`
		AuthorID string `json:"authorId"`
	} `json:"content"`
	Judgment judgmentResponse `json:"judgment"`
	Ledger   struct {
		UserID      string `json:"userId"`
		TotalReward int    `json:"totalReward"`
		TotalSlash  int    `json:"totalSlash"`
		NetScore    int    `json:"netScore"`
	} `json:"ledger"`
}

// asyncAckResponse is the body of an async submit.
type asyncAckResponse struct {
	Status  string `json:"status"`
	Content struct {
		ID string `json:"id"`
	} `json:"content"`
}

// userRow is one entry of a per-project user leaderboard.
type userRow struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	Handle      string `json:"handle"`
	TotalReward int    `json:"totalReward"`
	TotalSlash  int    `json:"totalSlash"`
	NetScore    int    `json:"netScore"`
	WindowPosts int    `json:"windowPosts"`
}

// projectRow is one entry of the cross-project leaderboard.
type projectRow struct {
	Rank         int     `json:"rank"`
	ProjectSlug  string  `json:"projectSlug"`
	NetScore     int     `json:"netScore"`
	PostCount    int     `json:"postCount"`
	CurrentShare float64 `json:"currentShare"`
}

// Stats holds seed run statistics
type Stats struct {
	ProjectsCreated  int
	ProjectsExisting int
	PostsSubmitted   int
	PostsScored      int
	PostsQueued      int
	PostsFailed      int
	RewardTotal      int
	SlashTotal       int
	LabelMismatches  int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
