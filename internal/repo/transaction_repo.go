// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Transaction
// model — the durable record of each webhook-reported payment event.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/roseate/go-payments-backend/internal/domain"
)

// CreateTransaction inserts a new Transaction row. The row ID is a randomly
// generated UUID and CreatedAt is set to UTC.
func CreateTransaction(ctx context.Context, db *gorm.DB, txn *domain.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	txn.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(txn).Error
}

// FindTransactionByPaymentID fetches a transaction by the gateway payment
// identifier. If the record does not exist, it returns ErrNotFound.
func FindTransactionByPaymentID(ctx context.Context, db *gorm.DB, paymentID string) (*domain.Transaction, error) {
	var t domain.Transaction
	err := db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTransactionReconciliation writes the serialized aggregate of
// downstream posting attempts onto the previously created transaction row.
// The row is updated in place, never replaced. ErrNotFound is returned when
// no transaction exists for paymentID.
func UpdateTransactionReconciliation(ctx context.Context, db *gorm.DB, paymentID string, aggregate datatypes.JSON) error {
	res := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("payment_id = ?", paymentID).
		Update("deposit_api_calls", aggregate)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListTransactionsByPaymentLinkID returns all transactions recorded against a
// payment link, most recent first.
func ListTransactionsByPaymentLinkID(ctx context.Context, db *gorm.DB, paymentLinkID string) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := db.WithContext(ctx).
		Where("payment_link_id = ?", paymentLinkID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// CountTransactions returns the total number of transactions.
func CountTransactions(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Count(&total).Error
	return total, err
}

// ListTransactionsPage returns a paginated slice of transactions ordered by
// creation time descending. The caller computes offset and limit.
func ListTransactionsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
