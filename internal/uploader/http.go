package uploader

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

	"github.com/workforce-ai/roster-import/internal/importer"
)

const maxResponseBody = 1 << 20

// HTTPUploader posts the batch as a JSON array to the backend's bulk endpoint.
type HTTPUploader struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewHTTPUploader creates an uploader for endpoint. token, when set, is sent as a
// bearer token.
func NewHTTPUploader(endpoint, token string, timeout time.Duration) *HTTPUploader {
	return &HTTPUploader{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
	}
}

// Upload sends users in one request. A 200 response is success; any other status
// yields a *RejectedError carrying the backend's message. It never retries.
func (u *HTTPUploader) Upload(ctx context.Context, users []importer.ValidatedUser) error {
	if users == nil {
		users = []importer.ValidatedUser{}
	}
	body, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if u.token != "" {
		req.Header.Set("Authorization", "Bearer "+u.token)
	}

	start := time.Now()
	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("post batch: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	slog.Info("batch upload response",
		"endpoint", u.endpoint,
		"status_code", resp.StatusCode,
		"batch_size", len(users),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode == http.StatusOK {
		return nil
	}
	return &RejectedError{StatusCode: resp.StatusCode, Message: backendMessage(resp.StatusCode, respBody)}
}

// backendMessage extracts the text the backend meant for the operator: the
// "message" (or "error") field of a JSON body, otherwise the raw body unchanged.
func backendMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if strings.TrimSpace(string(body)) != "" {
		return string(body)
	}
	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}
