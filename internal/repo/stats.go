// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries over
// the transaction history, surfaced by the reporting endpoint. Each function
// is context-aware and safe to call from services or handlers.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/roseate/go-payments-backend/internal/domain"
)

// TransactionStats summarizes the transaction history: row counts per outcome
// and the sum of successfully collected amounts (major currency units).
type TransactionStats struct {
	TotalTransactions int64   `json:"total_transactions"`
	Successful        int64   `json:"successful"`
	Failed            int64   `json:"failed"`
	TotalAmount       float64 `json:"total_amount"`
}

// GetTransactionStats computes aggregate statistics in a single scan of the
// transaction_history table. Captured rows count toward Successful since a
// capture confirms funds were collected.
func GetTransactionStats(ctx context.Context, db *gorm.DB) (*TransactionStats, error) {
	var row struct {
		TotalTransactions int64
		Successful        int64
		Failed            int64
		TotalAmount       float64
	}
	err := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Select(
			"COUNT(*) AS total_transactions, " +
				"SUM(CASE WHEN status IN ('success','captured') THEN 1 ELSE 0 END) AS successful, " +
				"SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END) AS failed, " +
				"COALESCE(SUM(CASE WHEN status IN ('success','captured') THEN amount ELSE 0 END), 0) AS total_amount",
		).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &TransactionStats{
		TotalTransactions: row.TotalTransactions,
		Successful:        row.Successful,
		Failed:            row.Failed,
		TotalAmount:       row.TotalAmount,
	}, nil
}
