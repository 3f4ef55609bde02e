package seedposts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// getJSON performs a GET and decodes the JSON body into out.
func getJSON(ctx context.Context, client *HTTPClient, url string, out interface{}) error {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// createProjects upserts the scripted projects through POST /projects.
// An already-registered slug answers with 409, which counts as existing.
func createProjects(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) error {
	url := config.BaseURL + "/projects"

	for _, project := range seedProjects {
		resp, err := client.Post(ctx, url, project)
		if err != nil {
			return fmt.Errorf("failed to create project %q: %w", project.Slug, err)
		}

		body, err := readResponseBody(resp)
		if err != nil {
			return fmt.Errorf("failed to read project response: %w", err)
		}

		switch resp.StatusCode {
		case StatusCreated:
			stats.ProjectsCreated++
			log.Printf("📁 Created project %s", project.Slug)
		case StatusConflict:
			stats.ProjectsExisting++
			log.Printf("📁 Project %s already exists", project.Slug)
		default:
			return fmt.Errorf("project %q creation failed with status %d: %s",
				project.Slug, resp.StatusCode, string(body))
		}
	}

	return nil
}

// submitPosts sends the scripted posts one by one. Synchronous submits block
// on scoring and report the earned label; async submits only collect the ack.
func submitPosts(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) error {
	url := config.BaseURL + "/posts"
	if config.Async {
		url = config.BaseURL + "/posts/async"
	}

	now := time.Now().UTC()
	total := len(seedPosts)

	for i, post := range seedPosts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		sub := submission{
			ProjectSlug: post.ProjectSlug,
			Wallet:      post.Author.Wallet,
			Handle:      post.Author.Handle,
			Source:      "x",
			SourceID:    fmt.Sprintf("seed-%d", i+1),
			URL:         fmt.Sprintf("https://x.com/user/status/%d", i+1),
			Content:     post.Content,
			Tags:        post.Tags,
			PostedAt:    now.Add(-time.Duration(total-i) * time.Hour),
		}

		resp, err := client.Post(ctx, url, sub)
		if err != nil {
			stats.PostsFailed++
			log.Printf("❌ Post %d/%d failed: %v", i+1, total, err)
			continue
		}
		stats.PostsSubmitted++

		body, err := readResponseBody(resp)
		if err != nil {
			stats.PostsFailed++
			log.Printf("❌ Post %d/%d: failed to read response: %v", i+1, total, err)
			continue
		}

		switch resp.StatusCode {
		case StatusOK:
			var eval evaluationResponse
			if err := json.Unmarshal(body, &eval); err != nil {
				stats.PostsFailed++
				log.Printf("❌ Post %d/%d: bad evaluation payload: %v", i+1, total, err)
				continue
			}
			recordScored(&eval, post, i+1, total, stats, config.Verbose)
		case StatusAccepted:
			stats.PostsQueued++
			if config.Verbose {
				log.Printf("📨 Post %d/%d queued for scoring", i+1, total)
			}
		default:
			stats.PostsFailed++
			log.Printf("❌ Post %d/%d rejected with status %d: %s",
				i+1, total, resp.StatusCode, string(body))
		}
	}

	log.Printf(`✅ Post submission completed:
   Scored: %d
   Queued: %d
   Failed: %d
`, stats.PostsScored, stats.PostsQueued, stats.PostsFailed)

	return nil
}

// recordScored updates counters from a synchronous evaluation and flags
// oracle labels that disagree with the scripted expectation.
func recordScored(eval *evaluationResponse, post PostSeed, n, total int, stats *Stats, verbose bool) {
	stats.PostsScored++
	stats.RewardTotal += eval.Judgment.Reward
	stats.SlashTotal += eval.Judgment.Slash

	if eval.Judgment.Label != post.ExpectedLabel {
		stats.LabelMismatches++
		log.Printf("⚠️  Post %d/%d labeled %q, expected %q", n, total, eval.Judgment.Label, post.ExpectedLabel)
		return
	}

	if verbose {
		log.Printf("✅ Post %d/%d: %s (+%d/-%d) for %s on %s",
			n, total, eval.Judgment.Label, eval.Judgment.Reward, eval.Judgment.Slash,
			post.Author.Handle, post.ProjectSlug)
	}
}
