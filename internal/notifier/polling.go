package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// CommandHandler is called when a user command is received and returns the reply.
type CommandHandler func(ctx context.Context, command string) string

// telegramUpdate represents a Telegram update from long polling.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// PollOnce fetches one batch of updates starting at offset, dispatches them,
// and returns the next offset.
func (t *TelegramNotifier) PollOnce(ctx context.Context, client *http.Client, offset int, handler CommandHandler) (int, error) {
	apiURL := fmt.Sprintf("%s?offset=%d&timeout=30", t.methodURL("getUpdates"), offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return offset, fmt.Errorf("create polling request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return offset, fmt.Errorf("polling request: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return offset, fmt.Errorf("read polling response: %w", err)
	}

	var result struct {
		OK     bool             `json:"ok"`
		Result []telegramUpdate `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return offset, fmt.Errorf("decode polling response: %w", err)
	}

	for _, update := range result.Result {
		offset = update.UpdateID + 1
		if update.Message == nil || update.Message.Text == "" {
			continue
		}
		// Only the configured chat may drive the bot.
		if t.ChatID != "" && fmt.Sprint(update.Message.Chat.ID) != t.ChatID {
			log.Printf("[WARN] ignoring command from chat %d", update.Message.Chat.ID)
			continue
		}
		text := strings.TrimSpace(update.Message.Text)
		log.Printf("[INFO] received command: %s", text)
		if reply := handler(ctx, text); reply != "" {
			if err := t.Send(ctx, reply); err != nil {
				log.Printf("[ERROR] send reply: %v", err)
			}
		}
	}
	return offset, nil
}

// StartPolling long-polls for commands. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	client := &http.Client{Timeout: 35 * time.Second, Transport: t.Client.Transport}

	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] Telegram polling stopped")
			return
		default:
		}

		next, err := t.PollOnce(ctx, client, offset, handler)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("[INFO] Telegram polling stopped")
				return
			}
			log.Printf("[WARN] %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
			continue
		}
		offset = next
	}
}
