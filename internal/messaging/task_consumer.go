package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/rabbitmq/amqp091-go"

	"plotvote-server/internal/models"
)

// TaskHandler обрабатывает одну задачу генерации.
type TaskHandler interface {
	HandleTask(ctx context.Context, task models.GenerationTask) error
}

// TaskConsumer слушает durable-очередь задач генерации глав.
type TaskConsumer struct {
	conn        *amqp091.Connection
	handler     TaskHandler
	queueName   string
	stopChannel chan struct{}
}

// NewTaskConsumer создает новый консьюмер задач генерации.
func NewTaskConsumer(conn *amqp091.Connection, handler TaskHandler, queueName string) (*TaskConsumer, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	if handler == nil {
		return nil, fmt.Errorf("task handler is nil")
	}
	return &TaskConsumer{
		conn:        conn,
		handler:     handler,
		queueName:   queueName,
		stopChannel: make(chan struct{}),
	}, nil
}

// StartConsuming начинает прослушивание очереди задач.
// Блокируется до закрытия канала сообщений или вызова Stop.
func (c *TaskConsumer) StartConsuming() error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("consumer: не удалось открыть канал RabbitMQ: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("consumer: не удалось объявить очередь '%s': %w", c.queueName, err)
	}
	log.Printf("Consumer: очередь '%s' успешно объявлена/найдена", q.Name)

	err = ch.Qos(1, 0, false) // Обрабатываем по одному сообщению
	if err != nil {
		return fmt.Errorf("consumer: не удалось установить QoS: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"generation-worker", // consumer tag
		false,               // auto-ack = false
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,                 // args
	)
	if err != nil {
		return fmt.Errorf("consumer: не удалось зарегистрировать консьюмера: %w", err)
	}
	log.Printf("Consumer: запущен, ожидание задач из очереди '%s'...", q.Name)

	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				log.Println("Consumer: канал сообщений RabbitMQ закрыт")
				return nil
			}

			log.Printf("Consumer: получена задача (DeliveryTag: %d)", d.DeliveryTag)

			var task models.GenerationTask
			if err := json.Unmarshal(d.Body, &task); err != nil {
				log.Printf("Consumer: не удалось распарсить задачу (DeliveryTag: %d): %v. Nack.", d.DeliveryTag, err)
				_ = d.Nack(false, false) // Requeue = false: битое сообщение не вернется в очередь
				continue
			}

			if err := c.handler.HandleTask(context.Background(), task); err != nil {
				log.Printf("Consumer: ошибка обработки задачи %s: %v. Nack.", task.TaskID, err)
				_ = d.Nack(false, false)
				continue
			}

			_ = d.Ack(false)

		case <-c.stopChannel:
			log.Println("Consumer: получен сигнал остановки")
			return nil
		}
	}
}

// Stop останавливает консьюмер.
func (c *TaskConsumer) Stop() {
	log.Println("Consumer: остановка...")
	close(c.stopChannel)
}
