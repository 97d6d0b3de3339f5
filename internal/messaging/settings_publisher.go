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

// RabbitMQSettingsPublisher рассылает события изменения настроек
// через fanout-обменник всем инстансам сервиса.
type RabbitMQSettingsPublisher struct {
	conn     *amqp091.Connection
	ch       *amqp091.Channel
	exchange string
}

// Compile-time check
var _ interfaces.SettingsEventPublisher = (*RabbitMQSettingsPublisher)(nil)

// NewRabbitMQSettingsPublisher создает нового издателя событий настроек.
func NewRabbitMQSettingsPublisher(conn *amqp091.Connection, exchange string) (*RabbitMQSettingsPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open a channel")
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Объявляем fanout exchange. Durable, чтобы пережил перезапуск брокера.
	err = ch.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		log.Error().Err(err).Str("exchange", exchange).Msg("Failed to declare settings exchange")
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchange, err)
	}

	log.Info().Str("exchange", exchange).Msg("Settings update exchange declared successfully")

	return &RabbitMQSettingsPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// PublishSettingUpdate публикует событие изменения настройки.
func (p *RabbitMQSettingsPublisher) PublishSettingUpdate(ctx context.Context, setting models.SiteSetting) error {
	event := models.SettingUpdateEvent{Key: setting.Key, Value: setting.Value}
	body, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("key", setting.Key).Msg("Failed to marshal setting event")
		return fmt.Errorf("failed to marshal setting event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange, // exchange
		"",         // routing key (не используется для fanout)
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		log.Error().Err(err).Str("key", setting.Key).Msg("Failed to publish setting event")
		return fmt.Errorf("failed to publish setting event: %w", err)
	}

	log.Debug().Str("key", setting.Key).Msg("Setting update event published")
	return nil
}

// Close закрывает канал RabbitMQ.
func (p *RabbitMQSettingsPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}
