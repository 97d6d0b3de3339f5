package ai

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"plotvote-server/internal/models"
)

const (
	// Бюджет токенов на контекст предыдущих глав в пользовательском промпте.
	// Остальное место в окне модели остается под системный промпт и ответ.
	previousChaptersTokenBudget = 6000

	chapterSystemPrompt = `You are a skilled fiction writer continuing a collaborative serialized story. ` +
		`Write the next chapter following the reader-chosen direction. ` +
		`Keep continuity with previous chapters, maintain the story's genre and tone. ` +
		`Respond in exactly this format:
TITLE: <chapter title>
CONTENT:
<chapter text>`
)

// BuildChapterPrompt собирает системный и пользовательский промпты для генерации главы.
// Предыдущие главы включаются с конца (самые свежие первыми по приоритету) и
// усекаются под бюджет токенов.
func BuildChapterPrompt(story *models.Story, previous []*models.Chapter, direction string) (systemPrompt, userPrompt string) {
	var b strings.Builder

	fmt.Fprintf(&b, "Story: %s\n", story.Title)
	fmt.Fprintf(&b, "Genre: %s\n", story.Genre)
	if story.Language != "" {
		fmt.Fprintf(&b, "Language: write the chapter in %s\n", story.Language)
	}
	fmt.Fprintf(&b, "Premise: %s\n", story.Description)
	// Авторский каркас истории: пустые поля не включаем
	if story.Characters != "" {
		fmt.Fprintf(&b, "Characters: %s\n", story.Characters)
	}
	if story.Outline != "" {
		fmt.Fprintf(&b, "Outline: %s\n", story.Outline)
	}
	if story.WorldBuilding != "" {
		fmt.Fprintf(&b, "World: %s\n", story.WorldBuilding)
	}
	if story.Themes != "" {
		fmt.Fprintf(&b, "Themes: %s\n", story.Themes)
	}
	b.WriteString("\n")

	if contextText := buildPreviousContext(previous); contextText != "" {
		b.WriteString("Previous chapters:\n")
		b.WriteString(contextText)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Write chapter %d. Reader-chosen direction for this chapter:\n%s\n", len(previous)+1, direction)

	return chapterSystemPrompt, b.String()
}

// buildPreviousContext включает главы с конца, пока суммарный размер
// не превысит бюджет токенов. Более старые главы отбрасываются первыми.
func buildPreviousContext(previous []*models.Chapter) string {
	if len(previous) == 0 {
		return ""
	}

	counter := newTokenCounter()

	used := 0
	included := make([]string, 0, len(previous))
	for i := len(previous) - 1; i >= 0; i-- {
		ch := previous[i]
		part := fmt.Sprintf("Chapter %d: %s\n%s\n", ch.ChapterNumber, ch.Title, ch.Content)
		tokens := counter(part)
		if used+tokens > previousChaptersTokenBudget {
			// Старые главы заменяем кратким упоминанием, чтобы модель знала об их существовании
			included = append(included, fmt.Sprintf("(chapters 1-%d omitted)\n", ch.ChapterNumber))
			break
		}
		used += tokens
		included = append(included, part)
	}

	// Разворачиваем обратно в хронологический порядок
	var b strings.Builder
	for i := len(included) - 1; i >= 0; i-- {
		b.WriteString(included[i])
	}
	return b.String()
}

// newTokenCounter возвращает функцию подсчета токенов.
// При недоступности словаря tiktoken откатывается на грубую оценку по символам.
func newTokenCounter() func(string) int {
	tke, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		log.Warn().Err(err).Msg("tiktoken encoding unavailable, falling back to rune estimate")
		return func(s string) int { return len([]rune(s)) / 4 }
	}
	return func(s string) int { return len(tke.Encode(s, nil, nil)) }
}
