package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"inmobiliaria/server/internal/models"
)

const DefaultBaseURL = "https://api.telegram.org"

var (
	ErrMissingToken  = errors.New("Telegram bot token is not configured")
	ErrMissingChatID = errors.New("Telegram chat ID is not configured")
)

type Service struct {
	logger  *logrus.Logger
	client  *http.Client
	baseURL string

	mu     sync.RWMutex
	config *models.TelegramConfig
}

func NewService(logger *logrus.Logger) *Service {
	return NewServiceWithClient(logger, &http.Client{Timeout: 10 * time.Second}, DefaultBaseURL)
}

// NewServiceWithClient builds a service talking to the Bot API at baseURL
func NewServiceWithClient(logger *logrus.Logger, client *http.Client, baseURL string) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{
		logger:  logger,
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		config:  &models.TelegramConfig{},
	}
}

func (s *Service) UpdateConfig(config *models.TelegramConfig) {
	if config == nil {
		config = &models.TelegramConfig{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = config
}

// Config returns a copy of the active configuration
func (s *Service) Config() models.TelegramConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.config
}

// SendMessage sends a message to the configured chat. Nothing is sent while
// notifications are disabled.
func (s *Service) SendMessage(ctx context.Context, message string) error {
	config := s.Config()
	if !config.IsEnabled {
		return nil
	}
	return s.SendWith(ctx, config.BotToken, config.ChatID, message)
}

// SendWith sends a message with explicit credentials, enabled or not.
// Used to check credentials before they are saved.
func (s *Service) SendWith(ctx context.Context, botToken, chatID, message string) error {
	if botToken == "" {
		return ErrMissingToken
	}
	if chatID == "" {
		return ErrMissingChatID
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, botToken)
	payload := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     message,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build Telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// NotifyNewLead sends a notification about a captured lead. property is the
// listing the lead asked about, nil for general contacts.
func (s *Service) NotifyNewLead(ctx context.Context, lead *models.Lead, property *models.Property) error {
	if !s.Config().IsEnabled {
		return nil
	}
	return s.SendMessage(ctx, FormatLeadMessage(lead, property))
}

// FormatLeadMessage renders the HTML notification for a lead
func FormatLeadMessage(lead *models.Lead, property *models.Property) string {
	var b strings.Builder

	b.WriteString("<b>🔔 Nuevo contacto</b>\n\n")
	fmt.Fprintf(&b, "👤 %s\n", html.EscapeString(lead.Name))
	fmt.Fprintf(&b, "✉️ %s\n", html.EscapeString(lead.Email))
	if lead.Phone != nil {
		fmt.Fprintf(&b, "📞 %s\n", html.EscapeString(*lead.Phone))
	}
	fmt.Fprintf(&b, "🏷️ %s\n", lead.SourceLabel())

	if property != nil {
		fmt.Fprintf(&b, "🏠 %s (%s)\n", html.EscapeString(property.Title), html.EscapeString(property.Location))
	}

	if lead.Message != nil {
		fmt.Fprintf(&b, "\n💬 %s", html.EscapeString(*lead.Message))
	}

	return strings.TrimRight(b.String(), "\n")
}

// MaskToken hides all but the last four characters of a bot token
func MaskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
