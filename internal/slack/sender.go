package slack

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

const defaultAPIBaseURL = "https://slack.com/api"

// Sender delivers a DM to a user. Delivery is best-effort: failures are
// reported to the caller for logging, never retried.
type Sender interface {
	SendDM(ctx context.Context, userID string, blocks []Block, fallback string) error
}

// Client is the Slack Web API Sender.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// ClientConfig configures a Client. Zero values pick the public Slack
// API and a default HTTP client.
type ClientConfig struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a Slack Web API client.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		httpClient: cfg.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = defaultAPIBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return c
}

// apiResponse is the common envelope of Web API responses.
type apiResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Channel struct {
		ID string `json:"id"`
	} `json:"channel,omitempty"`
}

// SendDM opens (or reuses) a DM conversation with the user and posts
// the blocks there, with fallback as the notification text.
func (c *Client) SendDM(ctx context.Context, userID string, blocks []Block, fallback string) error {
	open, err := c.call(ctx, "conversations.open", map[string]any{"users": userID})
	if err != nil {
		return fmt.Errorf("open conversation with %s: %w", userID, err)
	}

	_, err = c.call(ctx, "chat.postMessage", map[string]any{
		"channel": open.Channel.ID,
		"blocks":  blocks,
		"text":    fallback,
	})
	if err != nil {
		return fmt.Errorf("post message to %s: %w", userID, err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, payload any) (*apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed apiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", method, err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("%s: slack error %q", method, parsed.Error)
	}
	return &parsed, nil
}
