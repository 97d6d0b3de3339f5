package ai

import (
	"fmt"
	"strings"
)

// ParsedChapter — разобранный ответ модели.
type ParsedChapter struct {
	Title   string
	Content string
}

// ParseChapterResponse разбирает ответ модели в формате "TITLE: ... CONTENT: ...".
// Если маркеры отсутствуют, весь текст считается содержимым главы,
// а заголовок генерируется по номеру.
func ParseChapterResponse(raw string, chapterNumber int) ParsedChapter {
	text := strings.TrimSpace(raw)
	fallbackTitle := fmt.Sprintf("Chapter %d", chapterNumber)

	upperText := strings.ToUpper(text)
	titleIdx := strings.Index(upperText, "TITLE:")
	contentIdx := strings.Index(upperText, "CONTENT:")

	if titleIdx == -1 || contentIdx == -1 || contentIdx < titleIdx {
		return ParsedChapter{Title: fallbackTitle, Content: text}
	}

	title := strings.TrimSpace(text[titleIdx+len("TITLE:") : contentIdx])
	content := strings.TrimSpace(text[contentIdx+len("CONTENT:"):])

	// Модели иногда оборачивают заголовок в кавычки или markdown
	title = strings.Trim(title, "\"'*# ")

	if title == "" {
		title = fallbackTitle
	}
	if content == "" {
		content = text
	}

	return ParsedChapter{Title: title, Content: content}
}
