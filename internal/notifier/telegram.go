package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// DefaultAPIBase is the Telegram Bot API root.
const DefaultAPIBase = "https://api.telegram.org"

// Sender delivers a formatted report.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// LogSender writes reports to the process log. Used when Telegram is not configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, text string) error {
	log.Printf("[INFO] report:\n%s", text)
	return nil
}

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIBase  string
	Client   *http.Client
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		APIBase:  DefaultAPIBase,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (t *TelegramNotifier) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.APIBase, t.BotToken, method)
}

// Send sends an HTML message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	payload := map[string]string{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.methodURL("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SendWithRetry retries report delivery with exponential backoff.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int, baseBackoff time.Duration) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := t.Send(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == maxRetries {
			break
		}
		backoff := baseBackoff * time.Duration(1<<uint(i))
		log.Printf("[WARN] Telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d attempts exhausted: %w", maxRetries+1, lastErr)
}

// RetrySender adapts SendWithRetry to the Sender interface.
type RetrySender struct {
	Notifier    *TelegramNotifier
	MaxRetries  int
	BaseBackoff time.Duration
}

func (r RetrySender) Send(ctx context.Context, text string) error {
	return r.Notifier.SendWithRetry(ctx, text, r.MaxRetries, r.BaseBackoff)
}
