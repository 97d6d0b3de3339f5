package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"plotvote-server/internal/models"
)

// SettingsUpdater обновляет кэш настроек при получении события.
type SettingsUpdater interface {
	Update(setting models.SiteSetting)
}

// SettingsConsumer получает broadcast-события изменения настроек.
// Каждый инстанс объявляет собственную эксклюзивную очередь, привязанную к fanout-обменнику.
type SettingsConsumer struct {
	conn     *amqp091.Connection
	updater  SettingsUpdater
	exchange string
	logger   *zap.Logger
	done     chan struct{}
	channel  *amqp091.Channel
}

// NewSettingsConsumer создает новый консьюмер событий настроек.
func NewSettingsConsumer(conn *amqp091.Connection, updater SettingsUpdater, exchange string, logger *zap.Logger) *SettingsConsumer {
	if logger == nil {
		panic("Logger is nil for SettingsConsumer")
	}
	return &SettingsConsumer{
		conn:     conn,
		updater:  updater,
		exchange: exchange,
		logger:   logger.Named("SettingsConsumer"),
		done:     make(chan struct{}),
	}
}

// Start начинает потребление событий настроек.
func (c *SettingsConsumer) Start() error {
	var err error
	c.channel, err = c.conn.Channel()
	if err != nil {
		c.logger.Error("Failed to open channel for settings consumer", zap.Error(err))
		return fmt.Errorf("failed to open channel: %w", err)
	}

	// Объявляем fanout exchange (на всякий случай, если его еще нет)
	err = c.channel.ExchangeDeclare(
		c.exchange, // name
		"fanout",   // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		_ = c.channel.Close()
		c.logger.Error("Failed to declare settings exchange", zap.Error(err), zap.String("exchange", c.exchange))
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	// Объявляем временную эксклюзивную очередь для broadcast сообщений
	q, err := c.channel.QueueDeclare(
		"",    // name (auto-generated)
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = c.channel.Close()
		c.logger.Error("Failed to declare exclusive queue for settings updates", zap.Error(err))
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	c.logger.Info("Declared exclusive queue for settings updates", zap.String("queueName", q.Name))

	err = c.channel.QueueBind(
		q.Name,     // queue name
		"",         // routing key (not used for fanout)
		c.exchange, // exchange
		false,
		nil,
	)
	if err != nil {
		_ = c.channel.Close()
		c.logger.Error("Failed to bind queue to settings exchange",
			zap.Error(err), zap.String("queue", q.Name), zap.String("exchange", c.exchange))
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := c.channel.Consume(
		q.Name, // queue
		"",     // consumer (auto-generated)
		true,   // auto-ack (обновляем кэш, потеря сообщения не критична)
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		_ = c.channel.Close()
		c.logger.Error("Failed to register settings consumer", zap.Error(err), zap.String("queue", q.Name))
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Settings consumer started, waiting for events...")

	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("Panic recovered in settings consumer goroutine", zap.Any("panic", r))
			}
			c.logger.Info("Settings consumer goroutine stopping...")
			close(c.done)
			if c.channel != nil {
				_ = c.channel.Close()
			}
		}()

		for d := range msgs {
			var event models.SettingUpdateEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				c.logger.Warn("Failed to unmarshal setting update event", zap.Error(err))
				continue
			}
			c.logger.Info("Setting update received", zap.String("key", event.Key))
			c.updater.Update(models.SiteSetting{Key: event.Key, Value: event.Value})
		}
	}()

	return nil
}

// Done возвращает канал, закрываемый при завершении горутины консьюмера.
func (c *SettingsConsumer) Done() <-chan struct{} {
	return c.done
}
