package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"plotvote-server/internal/models"
)

// DefaultSignatureTolerance — максимальный допустимый возраст подписи вебхука.
const DefaultSignatureTolerance = 5 * time.Minute

// WebhookEvent — событие платежного провайдера, доставленное вебхуком.
type WebhookEvent struct {
	Type string `json:"type"` // checkout.completed / checkout.failed
	Data struct {
		SessionID       string `json:"session_id"`
		PaymentIntentID string `json:"payment_intent_id"` // Заполнен у завершенных платежей
	} `json:"data"`
}

// Типы событий, которые мы обрабатываем.
const (
	EventCheckoutCompleted = "checkout.completed"
	EventCheckoutFailed    = "checkout.failed"
)

// VerifySignature проверяет подпись вебхука в формате "t=<unix>,v1=<hex>".
// Подписывается строка "<t>.<body>" через HMAC-SHA256 с секретом вебхука.
// Возвращает models.ErrInvalidSignature при любой проблеме с подписью.
func VerifySignature(payload []byte, header, secret string, now time.Time, tolerance time.Duration) error {
	if header == "" {
		return fmt.Errorf("%w: signature header missing", models.ErrInvalidSignature)
	}

	var timestampStr, signatureHex string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestampStr = kv[1]
		case "v1":
			signatureHex = kv[1]
		}
	}
	if timestampStr == "" || signatureHex == "" {
		return fmt.Errorf("%w: malformed signature header", models.ErrInvalidSignature)
	}

	timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid timestamp", models.ErrInvalidSignature)
	}

	// Защита от replay: подпись старше допуска не принимается
	signedAt := time.Unix(timestamp, 0)
	if now.Sub(signedAt) > tolerance || signedAt.Sub(now) > tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", models.ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestampStr))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(signatureHex)
	if err != nil {
		return fmt.Errorf("%w: signature is not valid hex", models.ErrInvalidSignature)
	}

	if !hmac.Equal(expected, provided) {
		return fmt.Errorf("%w: signature mismatch", models.ErrInvalidSignature)
	}

	return nil
}

// SignPayload формирует заголовок подписи для полезной нагрузки.
// Используется в тестах и локальной эмуляции провайдера.
func SignPayload(payload []byte, secret string, at time.Time) string {
	timestampStr := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestampStr))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", timestampStr, hex.EncodeToString(mac.Sum(nil)))
}
