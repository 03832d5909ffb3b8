// Package telegram - минимальный клиент Bot API для отправки сообщений.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.telegram.org"

type Sender interface {
	SendMessage(ctx context.Context, chatID, text string, options ...MessageOption) error
}

type Client struct {
	botToken   string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient; пустой baseURL означает api.telegram.org.
func NewClient(botToken, baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		botToken:   botToken,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.Named("telegram"),
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

type MessageOption func(*sendMessageRequest)

func WithHTML() MessageOption {
	return func(req *sendMessageRequest) {
		req.ParseMode = "HTML"
	}
}

func WithMarkdownV2() MessageOption {
	return func(req *sendMessageRequest) {
		req.ParseMode = "MarkdownV2"
	}
}

func WithoutPreview() MessageOption {
	return func(req *sendMessageRequest) {
		req.DisableWebPagePreview = true
	}
}

// SendMessage; chatID - числовой идентификатор чата или @username канала.
func (c *Client) SendMessage(ctx context.Context, chatID, text string, options ...MessageOption) error {
	req := &sendMessageRequest{ChatID: chatID, Text: text}
	for _, opt := range options {
		opt(req)
	}
	return c.call(ctx, "sendMessage", req)
}

// APIError - ответ Bot API с ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API ошибка (%s): код %d, описание: %s", e.Method, e.Code, e.Description)
}

func (c *Client) call(ctx context.Context, method string, payload interface{}) error {
	if c.botToken == "" {
		return fmt.Errorf("токен Telegram-бота не установлен")
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации JSON: %w", err)
	}

	apiURL := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки запроса в Telegram: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа Telegram: %w", err)
	}
	c.logger.Debug("Ответ Telegram API", zap.String("method", method), zap.Int("status", resp.StatusCode))

	var telegramResp struct {
		OK          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
		ErrorCode   int    `json:"error_code,omitempty"`
	}
	if err := json.Unmarshal(body, &telegramResp); err != nil {
		return fmt.Errorf("ошибка декодирования ответа Telegram API: %w", err)
	}
	if !telegramResp.OK {
		return &APIError{Method: method, Code: telegramResp.ErrorCode, Description: telegramResp.Description}
	}
	return nil
}

// EscapeMarkdownV2 экранирует служебные символы MarkdownV2.
func EscapeMarkdownV2(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\", "_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]",
		"(", "\\(", ")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>",
		"#", "\\#", "+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|",
		"{", "\\{", "}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}
