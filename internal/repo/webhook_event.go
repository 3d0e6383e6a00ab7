// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the WebhookEvent
// model used to deduplicate redelivered gateway webhooks.
package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roseate/go-payments-backend/internal/domain"
)

// ErrDuplicate indicates that a webhook event record already exists for the
// given (event, payment_id) tuple, i.e. this delivery is a replay.
var ErrDuplicate = errors.New("duplicate")

// RecordWebhookEvent inserts a delivery marker and returns ErrDuplicate on a
// unique violation. Callers insert the marker before performing any side
// effects so a redelivered event is acknowledged without reprocessing.
func RecordWebhookEvent(ctx context.Context, db *gorm.DB, event, paymentID string) error {
	rec := &domain.WebhookEvent{
		ID:        uuid.NewString(),
		Event:     event,
		PaymentID: paymentID,
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}
