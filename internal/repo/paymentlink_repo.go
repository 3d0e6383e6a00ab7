// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the PaymentLink
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a payment link is not found, functions return
//     gorm.ErrRecordNotFound (also exported here as ErrNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// The repository is keyed by the gateway's payment link identifier
// (plink_*), not the surrogate row ID, because every caller — webhook
// handlers included — only ever holds the gateway identifier.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roseate/go-payments-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreatePaymentLink inserts a new PaymentLink row. The row ID is a randomly
// generated UUID and CreatedAt is set to UTC; the Status defaults to
// "created" unless the caller set one.
func CreatePaymentLink(ctx context.Context, db *gorm.DB, link *domain.PaymentLink) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if link.Status == "" {
		link.Status = domain.PaymentLinkStatusCreated
	}
	link.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(link).Error
}

// GetPaymentLink fetches a single payment link by its gateway identifier.
// If the record does not exist, it returns ErrNotFound.
func GetPaymentLink(ctx context.Context, db *gorm.DB, paymentLinkID string) (*domain.PaymentLink, error) {
	var l domain.PaymentLink
	err := db.WithContext(ctx).
		Where("payment_link_id = ?", paymentLinkID).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdatePaymentLinkStatus sets the status of a payment link identified by its
// gateway identifier. If no rows are affected (link unknown), it returns
// ErrNotFound so webhook handlers can log unmatched events.
func UpdatePaymentLinkStatus(ctx context.Context, db *gorm.DB, paymentLinkID, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.PaymentLink{}).
		Where("payment_link_id = ?", paymentLinkID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountPaymentLinks returns the total number of payment links.
func CountPaymentLinks(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.PaymentLink{}).
		Count(&total).Error
	return total, err
}

// ListPaymentLinksPage returns a paginated slice of payment links ordered by
// creation time descending. The caller computes offset and limit.
func ListPaymentLinksPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.PaymentLink, error) {
	var out []domain.PaymentLink
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListPaymentLinksByStatus returns all payment links with the given status,
// most recent first.
func ListPaymentLinksByStatus(ctx context.Context, db *gorm.DB, status string) ([]domain.PaymentLink, error) {
	var out []domain.PaymentLink
	err := db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}
