// Package services – WebhookService
//
// This file implements the gateway webhook pipeline: verify the HMAC
// signature over the raw body, decode the envelope, deduplicate redelivered
// events, and dispatch by event kind. Captured payments are handed to the
// ReconcileService; lifecycle events update the payment link and transaction
// records directly.
//
// Unknown event names are acknowledged but not processed — the gateway adds
// events over time and an unrecognized one must never cause redelivery
// storms.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/roseate/go-payments-backend/internal/domain"
	"github.com/roseate/go-payments-backend/internal/gateway"
	"github.com/roseate/go-payments-backend/internal/repo"
)

// EventKind enumerates the webhook events the backend understands. Parsing an
// unrecognized name yields EventUnknown rather than an error.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventPaymentLinkPaid
	EventPaymentCaptured
	EventPaymentFailed
	EventPaymentLinkCancelled
	EventPaymentLinkExpired
)

// ParseEventKind maps a gateway event name to its kind.
func ParseEventKind(event string) EventKind {
	switch event {
	case "payment_link.paid":
		return EventPaymentLinkPaid
	case "payment.captured":
		return EventPaymentCaptured
	case "payment.failed":
		return EventPaymentFailed
	case "payment_link.cancelled":
		return EventPaymentLinkCancelled
	case "payment_link.expired":
		return EventPaymentLinkExpired
	default:
		return EventUnknown
	}
}

// String returns the gateway event name for known kinds and "unknown"
// otherwise.
func (k EventKind) String() string {
	switch k {
	case EventPaymentLinkPaid:
		return "payment_link.paid"
	case EventPaymentCaptured:
		return "payment.captured"
	case EventPaymentFailed:
		return "payment.failed"
	case EventPaymentLinkCancelled:
		return "payment_link.cancelled"
	case EventPaymentLinkExpired:
		return "payment_link.expired"
	default:
		return "unknown"
	}
}

// webhookNotes is the notes bag attached to gateway entities. Info carries
// the JSON-encoded purchase intent.
type webhookNotes struct {
	HotelID       string `json:"hotelId"`
	ReservationID string `json:"reservationId"`
	Info          string `json:"info"`
	Source        string `json:"source"`
}

// UnmarshalJSON tolerates the gateway's habit of serializing an empty notes
// bag as [] instead of {}.
func (n *webhookNotes) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		*n = webhookNotes{}
		return nil
	}
	type alias webhookNotes
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*n = webhookNotes(a)
	return nil
}

// paymentEntity is the slice of the gateway payment entity the backend reads.
// Amount is in the gateway's minor units (paise).
type paymentEntity struct {
	ID               string       `json:"id"`
	OrderID          string       `json:"order_id"`
	Amount           int64        `json:"amount"`
	Currency         string       `json:"currency"`
	Status           string       `json:"status"`
	Method           string       `json:"method"`
	Email            string       `json:"email"`
	Contact          string       `json:"contact"`
	ErrorCode        string       `json:"error_code"`
	ErrorDescription string       `json:"error_description"`
	Notes            webhookNotes `json:"notes"`
}

// paymentLinkEntity is the slice of the gateway payment-link entity the
// backend reads.
type paymentLinkEntity struct {
	ID       string       `json:"id"`
	Amount   int64        `json:"amount"`
	Currency string       `json:"currency"`
	Status   string       `json:"status"`
	Notes    webhookNotes `json:"notes"`
}

// webhookEnvelope is the outer webhook document. Either entity may be absent
// depending on the event.
type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		PaymentLink struct {
			Entity paymentLinkEntity `json:"entity"`
		} `json:"payment_link"`
		Payment struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// WebhookResult is what a processed event reports back to the transport
// layer. Handled is false only for unrecognized events.
type WebhookResult struct {
	Handled       bool   `json:"handled"`
	Message       string `json:"message"`
	PaymentID     string `json:"payment_id,omitempty"`
	PaymentLinkID string `json:"payment_link_id,omitempty"`
}

// Reconciler applies a captured payment to the PMS. The concrete
// implementation is *ReconcileService.
type Reconciler interface {
	Reconcile(ctx context.Context, p CapturedPayment) (*ReconciliationResult, error)
}

// WebhookService verifies, deduplicates, and dispatches gateway webhooks.
type WebhookService struct {
	DB         *gorm.DB
	Secret     string
	Reconciler Reconciler
}

// Process handles one webhook delivery. body must be the exact bytes as
// received; signature is the hex HMAC from the delivery headers.
//
// It returns ErrSignatureMismatch before any side effect when verification
// fails. Redelivered events are acknowledged without reprocessing.
func (s *WebhookService) Process(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if !gateway.VerifySignature(body, signature, s.Secret) {
		webhookEventsTotal.WithLabelValues("unverified", "rejected").Inc()
		return nil, ErrSignatureMismatch
	}

	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		webhookEventsTotal.WithLabelValues("unknown", "malformed").Inc()
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	kind := ParseEventKind(env.Event)

	tr := otel.Tracer("services/WebhookService")
	ctx, span := tr.Start(ctx, "Process",
		trace.WithAttributes(attribute.String("webhook.event", kind.String())),
	)
	defer span.End()

	res, err := s.dispatch(ctx, kind, &env, body)
	switch {
	case err != nil:
		webhookEventsTotal.WithLabelValues(kind.String(), "error").Inc()
	case !res.Handled:
		webhookEventsTotal.WithLabelValues(kind.String(), "ignored").Inc()
	default:
		webhookEventsTotal.WithLabelValues(kind.String(), "handled").Inc()
	}
	return res, err
}

// dispatch routes one verified event to its handler. The switch is
// exhaustive over the known kinds.
func (s *WebhookService) dispatch(ctx context.Context, kind EventKind, env *webhookEnvelope, body []byte) (*WebhookResult, error) {
	link := &env.Payload.PaymentLink.Entity
	payment := &env.Payload.Payment.Entity

	switch kind {
	case EventPaymentLinkPaid:
		return s.handleLinkPaid(ctx, link, payment, body)
	case EventPaymentCaptured:
		return s.handleCaptured(ctx, link, payment, body)
	case EventPaymentFailed:
		return s.handleFailed(ctx, link, payment, body)
	case EventPaymentLinkCancelled:
		return s.handleLinkClosed(ctx, kind, link.ID, domain.PaymentLinkStatusCancelled, "Payment link cancelled")
	case EventPaymentLinkExpired:
		return s.handleLinkClosed(ctx, kind, link.ID, domain.PaymentLinkStatusExpired, "Payment link expired")
	default:
		log.Info().Str("event", env.Event).Msg("ignoring unrecognized webhook event")
		return &WebhookResult{Handled: false, Message: "Event received but not processed"}, nil
	}
}

// markDelivery records the (event, payment id) tuple and reports whether this
// delivery is a replay.
func (s *WebhookService) markDelivery(ctx context.Context, kind EventKind, paymentID string) (replay bool, err error) {
	switch err := repo.RecordWebhookEvent(ctx, s.DB, kind.String(), paymentID); {
	case err == nil:
		return false, nil
	case errors.Is(err, repo.ErrDuplicate):
		log.Info().Str("event", kind.String()).Str("payment_id", paymentID).
			Msg("duplicate webhook delivery acknowledged")
		return true, nil
	default:
		return false, err
	}
}

// handleLinkPaid marks the link paid and records the successful transaction.
func (s *WebhookService) handleLinkPaid(ctx context.Context, link *paymentLinkEntity, payment *paymentEntity, body []byte) (*WebhookResult, error) {
	dedupKey := payment.ID
	if dedupKey == "" {
		dedupKey = link.ID
	}
	replay, err := s.markDelivery(ctx, EventPaymentLinkPaid, dedupKey)
	if err != nil {
		return nil, err
	}
	res := &WebhookResult{
		Handled:       true,
		PaymentID:     payment.ID,
		PaymentLinkID: link.ID,
	}
	if replay {
		res.Message = "Event already processed"
		return res, nil
	}

	if err := repo.UpdatePaymentLinkStatus(ctx, s.DB, link.ID, domain.PaymentLinkStatusPaid); err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		// A link created outside this backend still gets its transaction
		// recorded below.
		log.Warn().Str("payment_link_id", link.ID).Msg("paid webhook for unknown payment link")
	}

	if payment.ID != "" {
		if _, err := repo.FindTransactionByPaymentID(ctx, s.DB, payment.ID); errors.Is(err, repo.ErrNotFound) {
			err = repo.CreateTransaction(ctx, s.DB, &domain.Transaction{
				PaymentLinkID:  link.ID,
				PaymentID:      payment.ID,
				OrderID:        payment.OrderID,
				Amount:         float64(payment.Amount) / 100,
				Currency:       payment.Currency,
				Status:         domain.TransactionStatusSuccess,
				Method:         payment.Method,
				Email:          payment.Email,
				Contact:        payment.Contact,
				WebhookPayload: datatypes.JSON(body),
			})
			if err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
	}

	res.Message = "Payment link paid successfully"
	return res, nil
}

// handleCaptured hands the payment to the reconciliation engine.
//
// The result is always a success acknowledgment: by the time a capture
// webhook arrives the money has moved, and a reconciliation problem is
// resolved from the recorded aggregate, not by failing the delivery.
func (s *WebhookService) handleCaptured(ctx context.Context, link *paymentLinkEntity, payment *paymentEntity, body []byte) (*WebhookResult, error) {
	replay, err := s.markDelivery(ctx, EventPaymentCaptured, payment.ID)
	if err != nil {
		return nil, err
	}
	res := &WebhookResult{
		Handled:       true,
		PaymentID:     payment.ID,
		PaymentLinkID: link.ID,
	}
	if replay {
		res.Message = "Event already processed"
		return res, nil
	}

	if _, err := s.Reconciler.Reconcile(ctx, CapturedPayment{
		PaymentID: payment.ID,
		LinkID:    link.ID,
		OrderID:   payment.OrderID,
		Amount:    float64(payment.Amount) / 100,
		Currency:  payment.Currency,
		Method:    payment.Method,
		Email:     payment.Email,
		Contact:   payment.Contact,
		NotesInfo: payment.Notes.Info,
		RawBody:   body,
	}); err != nil {
		return nil, err
	}

	res.Message = "Payment captured successfully"
	return res, nil
}

// handleFailed records the failed attempt. The payment link stays in its
// current status so the guest can retry from the same URL.
func (s *WebhookService) handleFailed(ctx context.Context, link *paymentLinkEntity, payment *paymentEntity, body []byte) (*WebhookResult, error) {
	replay, err := s.markDelivery(ctx, EventPaymentFailed, payment.ID)
	if err != nil {
		return nil, err
	}
	res := &WebhookResult{
		Handled:       true,
		PaymentID:     payment.ID,
		PaymentLinkID: link.ID,
	}
	if replay {
		res.Message = "Event already processed"
		return res, nil
	}

	if err := repo.CreateTransaction(ctx, s.DB, &domain.Transaction{
		PaymentLinkID:    link.ID,
		PaymentID:        payment.ID,
		OrderID:          payment.OrderID,
		Amount:           float64(payment.Amount) / 100,
		Currency:         payment.Currency,
		Status:           domain.TransactionStatusFailed,
		Method:           payment.Method,
		Email:            payment.Email,
		Contact:          payment.Contact,
		ErrorCode:        payment.ErrorCode,
		ErrorDescription: payment.ErrorDescription,
		WebhookPayload:   datatypes.JSON(body),
	}); err != nil {
		return nil, err
	}

	res.Message = "Payment failure recorded"
	return res, nil
}

// handleLinkClosed applies a terminal link status (cancelled or expired).
// The update is idempotent, so these events skip the delivery marker.
func (s *WebhookService) handleLinkClosed(ctx context.Context, kind EventKind, linkID, status, message string) (*WebhookResult, error) {
	if err := repo.UpdatePaymentLinkStatus(ctx, s.DB, linkID, status); err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		log.Warn().Str("event", kind.String()).Str("payment_link_id", linkID).
			Msg("lifecycle webhook for unknown payment link")
	}
	return &WebhookResult{Handled: true, Message: message, PaymentLinkID: linkID}, nil
}
