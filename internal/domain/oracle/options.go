package oracle

import (
	"net/http"

	"github.com/Base-InfoFi/Backend/pkg/logger"
)

// Option applies a configuration option to the HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying HTTP client, e.g. for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMaxTokens caps completion length for evaluation calls.
func WithMaxTokens(n int) Option {
	return func(c *HTTPClient) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}
