package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Base-InfoFi/Backend/pkg/logger"
	"github.com/Base-InfoFi/Backend/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout   = 30 * time.Second
	defaultMaxTokens = 512
)

// Config carries the oracle connection settings. It is passed explicitly at
// construction so tests can inject a fake endpoint; nothing in this package
// reads process-wide environment.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// HTTPClient implements Client against an OpenAI-compatible
// chat-completions endpoint.
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client
	maxTokens  int
	logger     logger.Logger
}

// NewHTTPClient creates a client for the configured oracle endpoint.
func NewHTTPClient(cfg Config, opts ...Option) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &HTTPClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxTokens:  defaultMaxTokens,
		logger:     logger.Get().Named("oracle"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// chat wire types for the OpenAI-compatible API.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Stream      bool          `json:"stream"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Evaluate submits one content item and returns a validated Verdict.
// Malformed oracle output resolves to the fail-closed fallback verdict;
// transport failures are returned as ErrUnavailable for the caller to
// resolve. The per-call deadline is cfg.Timeout unless ctx is stricter.
func (c *HTTPClient) Evaluate(ctx context.Context, req Request) (Verdict, error) {
	raw, err := c.Complete(ctx, systemPrompt, userPrompt(req), req.Temperature, c.maxTokens)
	if err != nil {
		return Verdict{}, err
	}

	verdict, err := ParseVerdict(raw)
	if err != nil {
		metrics.RecordOracleParseError()
		c.logger.Warn(ctx, "oracle output failed strict parse; using fallback",
			logger.String("project", req.ProjectName),
			logger.String("raw", truncate(raw, 256)),
		)
		return FallbackParse(raw), nil
	}
	return verdict, nil
}

// Complete performs one chat completion and returns the raw text.
func (c *HTTPClient) Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	body := chatRequest{
		Model:  c.cfg.Model,
		Stream: false,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode oracle request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create oracle request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	metrics.RecordOracleCall()
	resp, err := c.httpClient.Do(httpReq)
	metrics.RecordOracleLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: decoding envelope: %v", ErrUnavailable, err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrUnavailable)
	}

	return decoded.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
