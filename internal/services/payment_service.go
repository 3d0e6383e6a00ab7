// Package services – PaymentService
//
// This file implements PaymentService, the application-level component that
// issues payment links through the gateway and exposes the stored link and
// transaction history. It validates inputs, serializes the purchase intent
// into the link's notes (the channel reconciliation later reads back), and
// persists the issued link.
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// hotel/reservation identifiers and pagination parameters where applicable.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/currency"
	"gorm.io/gorm"

	"github.com/roseate/go-payments-backend/internal/domain"
	"github.com/roseate/go-payments-backend/internal/gateway"
	"github.com/roseate/go-payments-backend/internal/repo"
)

// linkSource tags every issued link in its notes so webhook deliveries for
// links created elsewhere are distinguishable.
const linkSource = "payments-backend"

// LinkGateway is the slice of the gateway client PaymentService needs. The
// concrete implementation is *gateway.Client.
type LinkGateway interface {
	CreatePaymentLink(p gateway.CreateLinkParams) (*gateway.Link, error)
	CancelPaymentLink(paymentLinkID string) error
}

// PaymentService issues and tracks payment links.
type PaymentService struct {
	DB      *gorm.DB
	Gateway LinkGateway

	// DefaultCurrency applies when a request omits the currency code.
	DefaultCurrency string
}

// CreateLinkInput describes one payment link to issue. Amount is in major
// currency units. PolicyIDs and FolioIDs are comma-separated lists; together
// with Type and Description they determine how a later capture is posted
// into the PMS.
type CreateLinkInput struct {
	HotelID       string  `json:"hotelId"`
	ReservationID string  `json:"reservationId"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency,omitempty"`
	Type          string  `json:"type,omitempty"`
	PolicyIDs     string  `json:"policyIds,omitempty"`
	FolioIDs      string  `json:"folioIds,omitempty"`
	Description   string  `json:"description,omitempty"`
	CustomerName  string  `json:"name"`
	CustomerEmail string  `json:"email,omitempty"`
	CustomerPhone string  `json:"phone,omitempty"`
}

// CreateLink validates the request, issues the link through the gateway, and
// persists it. The purchase intent travels in the link's notes and comes back
// verbatim on every webhook for it.
func (s *PaymentService) CreateLink(ctx context.Context, in CreateLinkInput) (*domain.PaymentLink, error) {
	tr := otel.Tracer("services/PaymentService")
	ctx, span := tr.Start(ctx, "CreateLink",
		trace.WithAttributes(
			attribute.String("hotel.id", in.HotelID),
			attribute.String("reservation.id", in.ReservationID),
		),
	)
	defer span.End()

	in.HotelID = strings.TrimSpace(in.HotelID)
	in.ReservationID = strings.TrimSpace(in.ReservationID)
	if in.HotelID == "" || in.ReservationID == "" {
		return nil, ErrMissingScope
	}
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	cur := strings.ToUpper(strings.TrimSpace(in.Currency))
	if cur == "" {
		cur = s.DefaultCurrency
	}
	if _, err := currency.ParseISO(cur); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, cur)
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = fmt.Sprintf("Reservation #%s - %s", in.ReservationID, strings.TrimSpace(in.CustomerName))
	}

	info, err := json.Marshal(PaymentIntent{
		HotelID:       in.HotelID,
		ReservationID: in.ReservationID,
		Amount:        in.Amount,
		Type:          in.Type,
		PolicyIDs:     in.PolicyIDs,
		FolioIDs:      in.FolioIDs,
		Description:   description,
	})
	if err != nil {
		return nil, fmt.Errorf("encode payment intent: %w", err)
	}

	issued, err := s.Gateway.CreatePaymentLink(gateway.CreateLinkParams{
		Amount:        in.Amount,
		Currency:      cur,
		Description:   description,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		HotelID:       in.HotelID,
		ReservationID: in.ReservationID,
		Info:          string(info),
		Source:        linkSource,
	})
	if err != nil {
		return nil, err
	}

	link := &domain.PaymentLink{
		PaymentLinkID: issued.ID,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		Amount:        in.Amount,
		Currency:      cur,
		Description:   description,
		ShortURL:      issued.ShortURL,
		HotelID:       in.HotelID,
		ReservationID: in.ReservationID,
	}
	if err := repo.CreatePaymentLink(ctx, s.DB, link); err != nil {
		return nil, err
	}
	return link, nil
}

// GetLink fetches a payment link by its gateway identifier.
func (s *PaymentService) GetLink(ctx context.Context, paymentLinkID string) (*domain.PaymentLink, error) {
	link, err := repo.GetPaymentLink(ctx, s.DB, paymentLinkID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrLinkNotFound
	}
	return link, err
}

// ListLinks returns paginated payment links, most recent first.
func (s *PaymentService) ListLinks(ctx context.Context, page, pageSize int) ([]domain.PaymentLink, int64, error) {
	tr := otel.Tracer("services/PaymentService")
	ctx, span := tr.Start(ctx, "ListLinks",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	total, err := repo.CountPaymentLinks(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.PaymentLink{}, 0, nil
	}
	items, err := repo.ListPaymentLinksPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	return items, total, err
}

// ListLinksByStatus returns all links in one lifecycle state.
func (s *PaymentService) ListLinksByStatus(ctx context.Context, status string) ([]domain.PaymentLink, error) {
	switch status {
	case domain.PaymentLinkStatusCreated, domain.PaymentLinkStatusPaid,
		domain.PaymentLinkStatusCancelled, domain.PaymentLinkStatusExpired:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return repo.ListPaymentLinksByStatus(ctx, s.DB, status)
}

// CancelLink cancels an open link on the gateway and records the new status.
// Cancelling an already-cancelled link is a no-op.
func (s *PaymentService) CancelLink(ctx context.Context, paymentLinkID string) (*domain.PaymentLink, error) {
	tr := otel.Tracer("services/PaymentService")
	ctx, span := tr.Start(ctx, "CancelLink",
		trace.WithAttributes(attribute.String("payment_link.id", paymentLinkID)),
	)
	defer span.End()

	link, err := s.GetLink(ctx, paymentLinkID)
	if err != nil {
		return nil, err
	}
	if link.Status == domain.PaymentLinkStatusCancelled {
		return link, nil
	}

	if err := s.Gateway.CancelPaymentLink(paymentLinkID); err != nil {
		return nil, err
	}
	if err := repo.UpdatePaymentLinkStatus(ctx, s.DB, paymentLinkID, domain.PaymentLinkStatusCancelled); err != nil {
		return nil, err
	}
	link.Status = domain.PaymentLinkStatusCancelled
	return link, nil
}

// LinkTransactions returns the transactions recorded against one payment
// link, most recent first.
func (s *PaymentService) LinkTransactions(ctx context.Context, paymentLinkID string) ([]domain.Transaction, error) {
	if _, err := s.GetLink(ctx, paymentLinkID); err != nil {
		return nil, err
	}
	return repo.ListTransactionsByPaymentLinkID(ctx, s.DB, paymentLinkID)
}

// ListTransactions returns paginated transaction history, most recent first.
func (s *PaymentService) ListTransactions(ctx context.Context, page, pageSize int) ([]domain.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	total, err := repo.CountTransactions(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Transaction{}, 0, nil
	}
	items, err := repo.ListTransactionsPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Stats summarizes the transaction history.
func (s *PaymentService) Stats(ctx context.Context) (*repo.TransactionStats, error) {
	return repo.GetTransactionStats(ctx, s.DB)
}
