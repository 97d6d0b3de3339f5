package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"plotvote-server/internal/interfaces"
	"plotvote-server/internal/models"
)

// RabbitMQTaskPublisher публикует задачи генерации глав в durable-очередь воркера.
type RabbitMQTaskPublisher struct {
	conn      *amqp091.Connection
	ch        *amqp091.Channel
	queueName string
}

// Compile-time check
var _ interfaces.GenerationTaskPublisher = (*RabbitMQTaskPublisher)(nil)

// NewRabbitMQTaskPublisher создает нового издателя задач генерации.
// Важно: предполагается, что соединение conn уже установлено и переподключения
// управляются внешним кодом.
func NewRabbitMQTaskPublisher(conn *amqp091.Connection, queueName string) (*RabbitMQTaskPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open a channel")
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Объявляем durable-очередь, чтобы задачи пережили перезапуск брокера.
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		_ = ch.Close()
		log.Error().Err(err).Str("queue", queueName).Msg("Failed to declare task queue")
		return nil, fmt.Errorf("failed to declare queue '%s': %w", queueName, err)
	}

	log.Info().Str("queue", queueName).Msg("Generation task queue declared successfully")

	return &RabbitMQTaskPublisher{conn: conn, ch: ch, queueName: queueName}, nil
}

// PublishGenerationTask отправляет задачу в очередь с persistent-доставкой.
func (p *RabbitMQTaskPublisher) PublishGenerationTask(ctx context.Context, task models.GenerationTask) error {
	body, err := json.Marshal(task)
	if err != nil {
		log.Error().Err(err).Interface("task", task).Msg("Failed to marshal generation task")
		return fmt.Errorf("failed to marshal generation task: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		"",          // exchange (default)
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			MessageId:    task.TaskID,
		},
	)
	if err != nil {
		log.Error().Err(err).Str("taskID", task.TaskID).Msg("Failed to publish generation task")
		return fmt.Errorf("failed to publish generation task: %w", err)
	}

	log.Info().
		Str("taskID", task.TaskID).
		Str("storyID", task.StoryID.String()).
		Int("chapterNumber", task.ChapterNumber).
		Msg("Generation task published")
	return nil
}

// Close закрывает канал RabbitMQ.
func (p *RabbitMQTaskPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}
