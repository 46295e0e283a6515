package signer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client submits signed payloads to a venchmarks server's /upload endpoint.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Submit signs payload with s and POSTs it. It returns the server's response
// body; any non-2xx status is an error carrying that body.
func (c *Client) Submit(ctx context.Context, s *Signer, payload []byte) (string, error) {
	body, err := s.Sign(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, strings.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("upload rejected (%s): %s", resp.Status, strings.TrimSpace(string(text)))
	}
	return string(text), nil
}
