package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"digital.vasic.contracts/pkg/record"
)

// maxErrorBody bounds how much of a failed response is kept in
// the delivery error.
const maxErrorBody = 512

// HTTPOption configures an HTTPSink.
type HTTPOption func(*HTTPSink)

// WithBearerToken sends token in the Authorization header. An
// empty token sends no header.
func WithBearerToken(token string) HTTPOption {
	return func(s *HTTPSink) { s.token = token }
}

// WithHTTPTimeout overrides the default request timeout.
func WithHTTPTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSink) { s.client.Timeout = d }
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSink) { s.client = c }
}

// HTTPSink POSTs every record as JSON to a webhook endpoint.
// Any 2xx status counts as delivered.
type HTTPSink struct {
	url    string
	token  string
	client *http.Client
}

// NewHTTPSink creates a sink posting to url.
func NewHTTPSink(url string, opts ...HTTPOption) *HTTPSink {
	s := &HTTPSink{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *HTTPSink) Name() string { return "http" }

// Deliver posts rec.
func (s *HTTPSink) Deliver(ctx context.Context, rec *record.FunctionTestRecord) error {
	data, err := Encode(rec)
	if err != nil {
		return deliveryError(s.Name(), rec, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(data))
	if err != nil {
		return deliveryError(s.Name(), rec, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return deliveryError(s.Name(), rec, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return deliveryError(s.Name(), rec,
			fmt.Errorf("endpoint returned HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Close releases idle connections.
func (s *HTTPSink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
