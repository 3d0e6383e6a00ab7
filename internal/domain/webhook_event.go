// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// WebhookEvent records that a gateway webhook delivery was accepted for
// processing, keyed by (event, payment_id). The gateway retries deliveries
// and may send the same event more than once; inserting this row before any
// side effect lets a duplicate delivery be acknowledged without re-running
// downstream postings.
type WebhookEvent struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	Event     string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_event_payment,priority:1"`
	PaymentID string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_event_payment,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName implements the GORM tabler interface.
func (WebhookEvent) TableName() string { return "webhook_events" }
