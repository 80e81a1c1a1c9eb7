// Package remotelog ships completed-challenge records to a PostgREST-compatible endpoint.
package remotelog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const tablePath = "/rest/v1/challenge_logs"

// Record is one completed challenge with its reflection.
type Record struct {
	UserID         string    `json:"user_id"`
	ChallengeID    string    `json:"challenge_id"`
	Reflection     string    `json:"reflection"`
	Emotion        string    `json:"emotion"`
	SentimentScore float64   `json:"sentiment_score"`
	AIFeedback     string    `json:"ai_feedback"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Recorder accepts completion records.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// Noop discards every record.
type Noop struct{}

func (Noop) Record(context.Context, Record) error { return nil }

// Client inserts records over HTTP.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// NewClient creates a client for baseURL. baseURL and apiKey must be non-empty.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   strings.TrimRight(strings.TrimSpace(baseURL), "/") + tablePath,
		apiKey:     strings.TrimSpace(apiKey),
	}
}

// Record inserts rec. Any non-2xx status is an error.
func (c *Client) Record(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("remote log status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
