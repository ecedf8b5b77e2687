package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Notifier tells a vendor agent what happened to a barcode it scanned.
type Notifier interface {
	Dispense(ctx context.Context, agentURL string, req DispenseRequest) error
	Cancel(ctx context.Context, agentURL string, req CancelRequest) error
}

type DispenseRequest struct {
	Barcode string `json:"barcode"`
	Status  string `json:"status"`
	Secret  string `json:"secret"`
}

type CancelRequest struct {
	Secret  string `json:"secret"`
	Barcode string `json:"barcode"`
}

type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Dispense(ctx context.Context, agentURL string, req DispenseRequest) error {
	return c.post(ctx, agentURL, "/dispense", req)
}

func (c *Client) Cancel(ctx context.Context, agentURL string, req CancelRequest) error {
	return c.post(ctx, agentURL, "/cancel", req)
}

// post sends one JSON request. A non-2xx answer is logged and reported but never retried.
func (c *Client) post(ctx context.Context, agentURL, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal agent payload: %w", err)
	}

	url := strings.TrimRight(agentURL, "/") + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create agent request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/plain")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		slog.Error("vendor agent call failed", "url", url, "error", err)
		return fmt.Errorf("failed to call vendor agent: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("vendor agent answered with non-success status", "url", url, "status", resp.StatusCode)
		return fmt.Errorf("vendor agent returned status %d", resp.StatusCode)
	}

	slog.Info("vendor agent notified", "url", url, "status", resp.StatusCode)
	return nil
}
