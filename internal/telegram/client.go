package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultPollTimeout = 30 * time.Second

// Client is a thin Bot API client. Long polling uses its own HTTP client
// whose timeout exceeds the server-side hold so healthy empty polls do not
// surface as errors.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	pollClient  *http.Client
	pollTimeout time.Duration
}

// NewClient constructs a Bot API client for the given token.
func NewClient(token, apiBase string, pollTimeout time.Duration) *Client {
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}

	return &Client{
		baseURL:     strings.TrimRight(apiBase, "/") + "/bot" + token,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		pollClient:  &http.Client{Timeout: pollTimeout + 5*time.Second},
		pollTimeout: pollTimeout,
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// GetUpdates long-polls for updates with ids >= offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	payload := map[string]any{
		"offset":  offset,
		"timeout": int(c.pollTimeout.Seconds()),
	}

	var updates []Update
	if err := c.call(ctx, c.pollClient, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage posts a message, optionally with an inline keyboard.
func (c *Client) SendMessage(ctx context.Context, msg SendMessageRequest) error {
	return c.call(ctx, c.httpClient, "sendMessage", msg, nil)
}

// EditMessageText rewrites a previously sent message in place.
func (c *Client) EditMessageText(ctx context.Context, edit EditMessageTextRequest) error {
	return c.call(ctx, c.httpClient, "editMessageText", edit, nil)
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing its progress indicator.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	return c.call(ctx, c.httpClient, "answerCallbackQuery", map[string]string{"callback_query_id": callbackID}, nil)
}

func (c *Client) call(ctx context.Context, client *http.Client, method string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s request: %w", method, err)
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !api.OK {
		if api.Description != "" {
			return fmt.Errorf("telegram %s failed: %s", method, api.Description)
		}
		return fmt.Errorf("telegram %s failed with status %d", method, resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(api.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}
