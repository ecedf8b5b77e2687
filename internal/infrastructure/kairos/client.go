package kairos

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

const DefaultEnrollURL = "https://api.kairos.com/enroll"

type Credentials struct {
	AppID  string
	AppKey string
}

type EnrollRequest struct {
	Image       string `json:"image"`
	SubjectID   string `json:"subject_id"`
	GalleryName string `json:"gallery_name"`
}

type Client struct {
	httpClient *http.Client
	url        string
	creds      Credentials
}

func NewClient(httpClient *http.Client, url string, creds Credentials) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if url == "" {
		url = DefaultEnrollURL
	}
	return &Client{httpClient: httpClient, url: url, creds: creds}
}

// EnrollFile base64-encodes the image at path and enrolls it under subject in gallery.
// It returns the HTTP status code of the enrollment call.
func (c *Client) EnrollFile(ctx context.Context, path, subject, gallery string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read image: %w", err)
	}
	return c.Enroll(ctx, EnrollRequest{
		Image:       base64.StdEncoding.EncodeToString(raw),
		SubjectID:   subject,
		GalleryName: gallery,
	})
}

func (c *Client) Enroll(ctx context.Context, req EnrollRequest) (int, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal enroll request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create enroll request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Kairos expects the lower-case header names verbatim.
	httpReq.Header["app_id"] = []string{c.creds.AppID}
	httpReq.Header["app_key"] = []string{c.creds.AppKey}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("failed to send enroll request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
