package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// telegramRelayChannel posts messages through the Telegram Bot API.
type telegramRelayChannel struct {
	apiHost string
	client  *http.Client
}

// NewTelegramRelayChannel creates a relay channel backed by the Telegram Bot
// API at apiHost. The client timeout bounds each delivery attempt; there are
// no retries, delivery is at most once.
func NewTelegramRelayChannel(apiHost string, client *http.Client) RelayChannel {
	return &telegramRelayChannel{
		apiHost: strings.TrimRight(apiHost, "/"),
		client:  client,
	}
}

type telegramSendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

func (c *telegramRelayChannel) Send(ctx context.Context, botToken, chatID, text string) error {
	payload, err := json.Marshal(telegramSendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("encoding sendMessage payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiHost, botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// The raw error can embed the URL, which contains the bot token.
		return fmt.Errorf("sending telegram message: request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}
