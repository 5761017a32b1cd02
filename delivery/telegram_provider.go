package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coreybb/lectio/models"
)

const (
	defaultTelegramBaseURL = "https://api.telegram.org"
	defaultTelegramTimeout = 10 * time.Second
)

// TelegramDeliveryProvider posts messages through the Telegram Bot API.
type TelegramDeliveryProvider struct {
	token   string
	baseURL string
	client  *http.Client
}

// NewTelegramDeliveryProvider builds a provider for the bot identified by
// token. An empty baseURL means the public Bot API.
func NewTelegramDeliveryProvider(token, baseURL string, timeout time.Duration) *TelegramDeliveryProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultTelegramBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTelegramTimeout
	}
	return &TelegramDeliveryProvider{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *TelegramDeliveryProvider) Type() string { return models.DestinationTypeTelegram }

// Deliver sends text to chatID with a single sendMessage call.
func (p *TelegramDeliveryProvider) Deliver(ctx context.Context, chatID string, text string) error {
	if p.token == "" {
		return &DeliveryError{Destination: p.Type(), Err: errors.New("bot token is not configured")}
	}
	if strings.TrimSpace(chatID) == "" {
		return &DeliveryError{Destination: p.Type(), Err: errors.New("chat ID is not configured")}
	}

	payload := tgSendMessage{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{Destination: p.Type(), Err: fmt.Errorf("failed to marshal telegram payload: %w", err)}
	}

	endpoint := p.baseURL + "/bot" + p.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Destination: p.Type(), Err: fmt.Errorf("failed to create telegram request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return &DeliveryError{Destination: p.Type(), Err: fmt.Errorf("telegram request failed: %w", p.redact(err))}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var result tgResponse
	decodeErr := json.Unmarshal(respBody, &result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(respBody))
		if decodeErr == nil && result.Description != "" {
			msg = result.Description
		}
		return &DeliveryError{Destination: p.Type(), StatusCode: resp.StatusCode, Err: fmt.Errorf("telegram rejected message: %s", msg)}
	}
	if decodeErr != nil {
		return &DeliveryError{Destination: p.Type(), StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed telegram response: %w", decodeErr)}
	}
	if !result.OK {
		return &DeliveryError{Destination: p.Type(), StatusCode: resp.StatusCode, Err: fmt.Errorf("telegram rejected message: %s", result.Description)}
	}

	return nil
}

// redact strips the bot token from transport errors, which embed the URL.
func (p *TelegramDeliveryProvider) redact(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, p.token) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, p.token, "<redacted>"))
}

// Telegram Bot API payload types.
type tgSendMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type tgResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}
