package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/notifier"
)

const defaultAPIURL = "https://api.telegram.org"

// Telegram implements the Notifier interface for Telegram Bot API
type Telegram struct {
	botToken string
	chatID   string
	apiURL   string
	client   *http.Client
}

// New creates a new Telegram notifier
func New(botToken, chatID string) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		apiURL:   defaultAPIURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) Init(cfg notifier.Config) error {
	if token, ok := cfg.Params["bot_token"].(string); ok {
		t.botToken = token
	}
	if chatID, ok := cfg.Params["chat_id"].(string); ok {
		t.chatID = chatID
	}
	if apiURL, ok := cfg.Params["api_url"].(string); ok {
		t.apiURL = apiURL
	}

	if t.botToken == "" {
		return fmt.Errorf("telegram: bot_token is required")
	}
	if t.chatID == "" {
		return fmt.Errorf("telegram: chat_id is required")
	}
	if t.apiURL == "" {
		t.apiURL = defaultAPIURL
	}
	if t.client == nil {
		t.client = &http.Client{Timeout: 30 * time.Second}
	}

	return nil
}

func (t *Telegram) Send(alert core.Alert) error {
	return t.sendMessage(formatAlert(alert))
}

func (t *Telegram) SendBatch(alerts []core.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🚨 *%d Risk Alerts*\n\n", len(alerts))

	for i, a := range alerts {
		sb.WriteString(formatAlert(a))
		if i < len(alerts)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return t.sendMessage(sb.String())
}

func formatAlert(a core.Alert) string {
	var sb strings.Builder

	emoji := "⚠️"
	if a.Severity == core.SeverityCritical {
		emoji = "🛑"
	}

	title := a.Rule
	if a.Status != "" {
		title += " " + strings.ToUpper(a.Status)
	}
	fmt.Fprintf(&sb, "%s *%s*\n", emoji, title)

	if a.Account != "" {
		fmt.Fprintf(&sb, "👤 Account: %s\n", a.Account)
	}
	if a.Limit != 0 {
		fmt.Fprintf(&sb, "📊 %.2f of %.2f\n", a.Current, a.Limit)
	}
	if a.Message != "" {
		fmt.Fprintf(&sb, "💡 %s\n", a.Message)
	}

	fmt.Fprintf(&sb, "⏰ Time: %s", a.FiredAt.Format("2006-01-02 15:04:05"))

	return sb.String()
}

func (t *Telegram) sendMessage(text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.botToken)

	payload := map[string]any{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: failed to marshal payload: %w", err)
	}

	resp, err := t.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var result map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		return fmt.Errorf("telegram: API error (status %d): %v", resp.StatusCode, result)
	}

	return nil
}
