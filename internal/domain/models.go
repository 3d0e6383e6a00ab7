// Package domain defines the persistence models for payment links,
// transactions, and webhook events. These types are mapped with GORM and form
// the core data layer of the payments backend.
package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentLink statuses driven by the gateway lifecycle.
const (
	PaymentLinkStatusCreated   = "created"
	PaymentLinkStatusPaid      = "paid"
	PaymentLinkStatusCancelled = "cancelled"
	PaymentLinkStatusExpired   = "expired"
)

// Transaction statuses recorded from webhook events.
const (
	TransactionStatusSuccess  = "success"
	TransactionStatusCaptured = "captured"
	TransactionStatusFailed   = "failed"
)

// PaymentLink represents a hosted checkout page created through the payment
// gateway for a fixed amount against a hotel reservation.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - PaymentLinkID: gateway identifier (plink_*); unique, used for lookups.
//   - HotelID / ReservationID: PMS scope the link was issued for.
//   - Status: created|paid|cancelled|expired, driven by webhook events.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type PaymentLink struct {
	ID            string         `json:"id"              gorm:"type:char(36);primaryKey"`
	PaymentLinkID string         `json:"payment_link_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_payment_link_id"`
	CustomerName  string         `json:"customer_name"   gorm:"type:varchar(255);not null"`
	CustomerEmail string         `json:"customer_email,omitempty" gorm:"type:varchar(255)"`
	CustomerPhone string         `json:"customer_phone,omitempty" gorm:"type:varchar(32)"`
	Amount        float64        `json:"amount"          gorm:"not null"`
	Currency      string         `json:"currency"        gorm:"type:varchar(8);not null;default:'INR'"`
	Description   string         `json:"description,omitempty" gorm:"type:text"`
	ShortURL      string         `json:"short_url"       gorm:"type:varchar(255)"`
	HotelID       string         `json:"hotel_id"        gorm:"type:varchar(64);index:idx_link_hotel"`
	ReservationID string         `json:"reservation_id"  gorm:"type:varchar(64);index:idx_link_reservation"`
	Status        string         `json:"status"          gorm:"type:varchar(16);not null;default:'created';index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"               gorm:"index"`
}

// TableName returns the database table name for PaymentLink.
func (PaymentLink) TableName() string { return "payment_links" }

// Transaction is the durable record of one gateway payment event and, for
// captured payments, the outcome of its PMS reconciliation.
//
// Amount is stored in major currency units (the gateway reports paise).
// WebhookPayload keeps the raw event body for audit. DepositAPICalls holds
// the JSON-serialized aggregate of downstream posting attempts; it is written
// in place once reconciliation completes and stays empty for other events.
type Transaction struct {
	ID               string         `json:"id"                gorm:"type:char(36);primaryKey"`
	PaymentLinkID    string         `json:"payment_link_id,omitempty" gorm:"type:varchar(64);index:idx_txn_link"`
	PaymentID        string         `json:"payment_id"        gorm:"type:varchar(64);not null;index:idx_txn_payment"`
	OrderID          string         `json:"order_id,omitempty" gorm:"type:varchar(64)"`
	Amount           float64        `json:"amount"            gorm:"not null"`
	Currency         string         `json:"currency"          gorm:"type:varchar(8);not null"`
	Status           string         `json:"status"            gorm:"type:varchar(16);not null;check:status IN ('success','captured','failed');index"`
	Method           string         `json:"method,omitempty"  gorm:"type:varchar(32)"`
	Email            string         `json:"email,omitempty"   gorm:"type:varchar(255)"`
	Contact          string         `json:"contact,omitempty" gorm:"type:varchar(32)"`
	ErrorCode        string         `json:"error_code,omitempty"        gorm:"type:varchar(64)"`
	ErrorDescription string         `json:"error_description,omitempty" gorm:"type:text"`
	WebhookPayload   datatypes.JSON `json:"webhook_payload,omitempty"   gorm:"type:json"`
	DepositAPICalls  datatypes.JSON `json:"deposit_api_calls,omitempty" gorm:"type:json"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-"                 gorm:"index"`
}

// TableName returns the database table name for Transaction.
func (Transaction) TableName() string { return "transaction_history" }
