package worker

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	jobName = "chapter_generation_worker"
)

var (
	// Общий реестр для всех метрик этого воркера
	registry = prometheus.NewRegistry()

	// promauto.With(registry) регистрирует метрики в локальном реестре,
	// а не в глобальном prometheus.DefaultRegistry
	tasksReceived = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "chapter_worker_tasks_received_total",
			Help: "Total number of generation tasks received by the worker.",
		},
	)
	tasksFailed = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "chapter_worker_tasks_failed_total",
			Help: "Total number of failed tasks, partitioned by failure reason.",
		},
		[]string{"reason"},
	)
	tasksSucceeded = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "chapter_worker_tasks_succeeded_total",
			Help: "Total number of successfully generated chapters.",
		},
	)
	taskDuration = promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chapter_worker_task_duration_seconds",
			Help:    "Time spent processing a single generation task.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
	wordsGenerated = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "chapter_worker_words_generated_total",
			Help: "Total number of words in generated chapters.",
		},
	)

	// Pusher для отправки метрик в Pushgateway
	pusher *push.Pusher

	groupingKey map[string]string
)

// InitMetricsPusher инициализирует клиент Pushgateway.
func InitMetricsPusher(pushgatewayURL string) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
		log.Printf("[Metrics] Warning: could not get hostname: %v", err)
	}
	instanceID := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	groupingKey = map[string]string{
		"instance": instanceID,
	}

	log.Printf("[Metrics] Initializing Pushgateway pusher for job '%s' with instance '%s' to %s", jobName, instanceID, pushgatewayURL)

	pusher = push.New(pushgatewayURL, jobName).Gatherer(registry).Grouping("instance", instanceID)

	// Сразу отправляем нулевые метрики, чтобы проверить соединение
	if err := pusher.Push(); err != nil {
		return fmt.Errorf("could not push initial metrics to Pushgateway: %w", err)
	}
	log.Printf("[Metrics] Initial push to Pushgateway successful.")
	return nil
}

// StartMetricsPusher запускает горутину периодической отправки метрик.
func StartMetricsPusher(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			if pusher == nil {
				ticker.Stop()
				log.Println("[Metrics] Pusher is nil, stopping periodic push.")
				return
			}
			_ = pushMetrics()
		}
	}()
	log.Printf("[Metrics] Started periodic pusher with interval %v", interval)
}

func pushMetrics() error {
	if pusher == nil {
		return errors.New("pusher not initialized")
	}
	if err := pusher.Push(); err != nil {
		log.Printf("[Metrics] Error pushing metrics to Pushgateway: %v", err)
		return err
	}
	return nil
}

// PushMetricsNow принудительно отправляет накопленные метрики.
func PushMetricsNow() error {
	return pushMetrics()
}

func metricsIncrementTasksReceived() {
	tasksReceived.Inc()
}

func metricsIncrementTaskFailed(reason string) {
	tasksFailed.WithLabelValues(reason).Inc()
}

func metricsIncrementTaskSucceeded() {
	tasksSucceeded.Inc()
}

func metricsRecordTaskDuration(d time.Duration) {
	taskDuration.Observe(d.Seconds())
}

func metricsAddWordsGenerated(count float64) {
	wordsGenerated.Add(count)
}

// CleanupMetrics удаляет метрики этого инстанса из Pushgateway.
// Вызывается через defer в main.
func CleanupMetrics() {
	if pusher == nil {
		log.Println("[Metrics] Cleanup skipped: Pusher not initialized.")
		return
	}

	log.Printf("[Metrics] Deleting metrics from Pushgateway for job '%s', grouping key: %v", jobName, groupingKey)
	if err := pusher.Delete(); err != nil {
		log.Printf("[Metrics] Error deleting metrics from Pushgateway: %v", err)
	} else {
		log.Printf("[Metrics] Successfully deleted metrics from Pushgateway.")
	}
}
