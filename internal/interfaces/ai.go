package interfaces

import "context"

// AIClient абстрагирует вызов LLM для генерации текста глав.
type AIClient interface {
	// GenerateText отправляет системный и пользовательский промпты
	// и возвращает сырой текст ответа модели.
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
