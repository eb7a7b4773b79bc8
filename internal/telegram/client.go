// Package telegram is a minimal Bot API client. The service only ever calls
// sendMessage; linking chats to members happens outside this process.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// Config holds bot credentials. An empty Token disables the client.
type Config struct {
	Token   string
	BaseURL string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether a bot token is configured.
func (c *Client) Enabled() bool {
	return c.cfg.Token != ""
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// SendMessage delivers text to a chat. Transient failures (network errors,
// 429, 5xx) are retried a few times with fibonacci backoff before the error
// is returned; other API errors fail immediately.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(300*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.send(ctx, chatID, text)
		if err == nil {
			return nil
		}
		var se *statusError
		if errors.As(err, &se) && !se.transient() {
			return err
		}
		return retry.RetryableError(err)
	})
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("telegram sendMessage: status %d: %s", e.code, e.body)
}

func (e *statusError) transient() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

func (c *Client) send(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.cfg.BaseURL, c.cfg.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: string(b)}
	}

	return nil
}
