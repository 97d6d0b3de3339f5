package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"plotvote-server/internal/interfaces"
)

var log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

// Client предоставляет интерфейс для работы с API нейросети
type Client struct {
	client     *openai.Client
	modelName  string
	timeout    time.Duration
	maxRetries int
	retryWait  time.Duration
}

// Compile-time check
var _ interfaces.AIClient = (*Client)(nil)

// Config содержит конфигурацию для клиента нейросети
type Config struct {
	APIKey     string
	BaseURL    string
	ModelName  string
	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration
}

// New создает новый экземпляр клиента нейросети
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("не указан API ключ для OpenRouter")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "meta-llama/llama-4-scout:free"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = time.Second
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL

	return &Client{
		client:     openai.NewClientWithConfig(config),
		modelName:  cfg.ModelName,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryWait:  cfg.RetryWait,
	}, nil
}

// GenerateText отправляет системный и пользовательский промпты и возвращает текст ответа.
// Повторяет запрос до maxRetries раз с линейно растущей паузой.
func (c *Client) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	attempts := 0
	for attempts < c.maxRetries {
		attempts++

		req := openai.ChatCompletionRequest{
			Model: c.modelName,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: userPrompt,
				},
			},
			Temperature: 0.7,
			MaxTokens:   4000,
			TopP:        0.95,
		}

		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempts).Str("model", c.modelName).Msg("AI request failed")
			if attempts >= c.maxRetries {
				return "", fmt.Errorf("ошибка при генерации текста главы: %w", err)
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.retryWait * time.Duration(attempts)):
			}
			continue
		}

		if len(resp.Choices) == 0 {
			log.Warn().Int("attempt", attempts).Msg("AI returned empty choices")
			if attempts >= c.maxRetries {
				return "", errors.New("пустой ответ от API: не получены варианты")
			}
			continue
		}

		return resp.Choices[0].Message.Content, nil
	}

	return "", errors.New("не удалось получить ответ от API после нескольких попыток")
}
