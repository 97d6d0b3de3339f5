package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"plotvote-server/internal/ai"
	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// GenerationHandler обрабатывает задачи генерации глав из очереди.
// Обработка идемпотентна: если глава для слота уже существует
// (повторная доставка сообщения), задача подтверждается без генерации.
type GenerationHandler struct {
	db          interfaces.DBTX
	storyRepo   interfaces.StoryRepository
	chapterRepo interfaces.ChapterRepository
	promptRepo  interfaces.PromptRepository
	aiClient    interfaces.AIClient
}

// NewGenerationHandler создает новый обработчик задач генерации.
func NewGenerationHandler(
	db interfaces.DBTX,
	storyRepo interfaces.StoryRepository,
	chapterRepo interfaces.ChapterRepository,
	promptRepo interfaces.PromptRepository,
	aiClient interfaces.AIClient,
) *GenerationHandler {
	return &GenerationHandler{
		db:          db,
		storyRepo:   storyRepo,
		chapterRepo: chapterRepo,
		promptRepo:  promptRepo,
		aiClient:    aiClient,
	}
}

// HandleTask обрабатывает одну задачу генерации главы.
func (h *GenerationHandler) HandleTask(ctx context.Context, task models.GenerationTask) (err error) {
	metricsIncrementTasksReceived()
	taskStartTime := time.Now()
	log.Printf("[TaskID: %s] Обработка задачи: StoryID=%s, ChapterNumber=%d",
		task.TaskID, task.StoryID, task.ChapterNumber)

	defer func() {
		duration := time.Since(taskStartTime)
		metricsRecordTaskDuration(duration)
		status := "success"
		if err != nil {
			status = "failed"
		}
		if pushErr := PushMetricsNow(); pushErr != nil {
			log.Printf("[TaskID: %s][WARN] Не удалось отправить метрики в конце задачи: %v", task.TaskID, pushErr)
		}
		log.Printf("[TaskID: %s] Завершение обработки задачи. Статус: %s. Общее время: %v.", task.TaskID, status, duration)
	}()

	// Повторная доставка: глава слота уже создана
	exists, err := h.chapterRepo.ExistsForSlot(ctx, h.db, task.StoryID, task.ChapterNumber)
	if err != nil {
		metricsIncrementTaskFailed("chapter_lookup")
		return fmt.Errorf("failed to check chapter slot: %w", err)
	}
	if exists {
		log.Printf("[TaskID: %s] Глава %d истории %s уже существует, задача пропущена.",
			task.TaskID, task.ChapterNumber, task.StoryID)
		return nil
	}

	story, err := h.storyRepo.GetByID(ctx, h.db, task.StoryID)
	if err != nil {
		if errors.Is(err, models.ErrStoryNotFound) {
			// История удалена после постановки задачи — ретраить бессмысленно
			log.Printf("[TaskID: %s] История %s не найдена, задача отброшена.", task.TaskID, task.StoryID)
			metricsIncrementTaskFailed("story_missing")
			return nil
		}
		metricsIncrementTaskFailed("story_lookup")
		return fmt.Errorf("failed to load story: %w", err)
	}

	// Генерируем только по промпту-победителю: задача с устаревшим или
	// отозванным промптом отбрасывается без ретраев
	prompt, err := h.promptRepo.GetByID(ctx, h.db, task.PromptID)
	if err != nil {
		if errors.Is(err, models.ErrPromptNotFound) {
			log.Printf("[TaskID: %s] Промпт %s не найден, задача отброшена.", task.TaskID, task.PromptID)
			metricsIncrementTaskFailed("prompt_missing")
			return nil
		}
		metricsIncrementTaskFailed("prompt_lookup")
		return fmt.Errorf("failed to load winning prompt: %w", err)
	}
	if prompt.Status != models.PromptStatusWinner {
		log.Printf("[TaskID: %s] Промпт %s не является победителем (статус %s), задача пропущена.",
			task.TaskID, task.PromptID, prompt.Status)
		metricsIncrementTaskFailed("prompt_not_winner")
		return nil
	}

	previous, err := h.chapterRepo.ListByStory(ctx, h.db, task.StoryID)
	if err != nil {
		metricsIncrementTaskFailed("chapters_lookup")
		return fmt.Errorf("failed to load previous chapters: %w", err)
	}

	direction := task.PromptText
	if direction == "" {
		// Текст мог не попасть в задачу
		direction = prompt.Text
	}

	systemPrompt, userPrompt := ai.BuildChapterPrompt(story, previous, direction)

	raw, err := h.aiClient.GenerateText(ctx, systemPrompt, userPrompt)
	if err != nil {
		log.Printf("[TaskID: %s] Ошибка генерации AI: %v", task.TaskID, err)
		metricsIncrementTaskFailed("ai_error")
		return fmt.Errorf("ai generation failed: %w", err)
	}

	parsed := ai.ParseChapterResponse(raw, task.ChapterNumber)
	wordCount := models.CountWords(parsed.Content)

	promptID := task.PromptID
	chapter := &models.Chapter{
		ID:              uuid.New(),
		StoryID:         task.StoryID,
		ChapterNumber:   task.ChapterNumber,
		Title:           parsed.Title,
		Content:         parsed.Content,
		WinningPromptID: &promptID,
		WordCount:       wordCount,
		ReadTimeMinutes: models.CalculateReadTime(wordCount),
	}

	if err := h.chapterRepo.Create(ctx, h.db, chapter); err != nil {
		if errors.Is(err, models.ErrChapterAlreadyExists) {
			// Гонка с параллельным воркером — глава уже есть, результат не нужен
			log.Printf("[TaskID: %s] Глава %d создана параллельно, результат отброшен.", task.TaskID, task.ChapterNumber)
			return nil
		}
		metricsIncrementTaskFailed("save_error")
		return fmt.Errorf("failed to save chapter: %w", err)
	}

	metricsIncrementTaskSucceeded()
	metricsAddWordsGenerated(float64(wordCount))
	log.Printf("[TaskID: %s] Глава %d истории %s сохранена: %q, %d слов.",
		task.TaskID, task.ChapterNumber, task.StoryID, parsed.Title, wordCount)
	return nil
}
