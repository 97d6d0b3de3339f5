package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plotvote-server/internal/models"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test_secret"
	payload := []byte(`{"type":"checkout.completed","data":{"session_id":"cs_123"}}`)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Valid signature", func(t *testing.T) {
		header := SignPayload(payload, secret, now)
		err := VerifySignature(payload, header, secret, now, DefaultSignatureTolerance)
		require.NoError(t, err)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		header := SignPayload(payload, "whsec_other", now)
		err := VerifySignature(payload, header, secret, now, DefaultSignatureTolerance)
		assert.ErrorIs(t, err, models.ErrInvalidSignature)
	})

	t.Run("Tampered payload", func(t *testing.T) {
		header := SignPayload(payload, secret, now)
		tampered := []byte(`{"type":"checkout.completed","data":{"session_id":"cs_999"}}`)
		err := VerifySignature(tampered, header, secret, now, DefaultSignatureTolerance)
		assert.ErrorIs(t, err, models.ErrInvalidSignature)
	})

	t.Run("Expired timestamp", func(t *testing.T) {
		header := SignPayload(payload, secret, now.Add(-10*time.Minute))
		err := VerifySignature(payload, header, secret, now, DefaultSignatureTolerance)
		assert.ErrorIs(t, err, models.ErrInvalidSignature)
	})

	t.Run("Timestamp from future outside tolerance", func(t *testing.T) {
		header := SignPayload(payload, secret, now.Add(10*time.Minute))
		err := VerifySignature(payload, header, secret, now, DefaultSignatureTolerance)
		assert.ErrorIs(t, err, models.ErrInvalidSignature)
	})

	t.Run("Missing header", func(t *testing.T) {
		err := VerifySignature(payload, "", secret, now, DefaultSignatureTolerance)
		assert.ErrorIs(t, err, models.ErrInvalidSignature)
	})

	t.Run("Malformed header", func(t *testing.T) {
		err := VerifySignature(payload, "v1=deadbeef", secret, now, DefaultSignatureTolerance)
		assert.ErrorIs(t, err, models.ErrInvalidSignature)
	})
}
