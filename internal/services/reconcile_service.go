// Package services – ReconcileService
//
// This file implements the reconciliation engine for captured payments. A
// capture confirms that funds left the guest's account; reconciliation is the
// follow-through that posts those funds onto the reservation inside the PMS.
//
// The engine first persists a Transaction row so the money trail survives even
// if every downstream posting fails, then parses the purchase intent carried
// in the gateway notes, classifies it into a posting strategy, fans the
// postings out (bounded by Parallelism, default sequential), and finally
// serializes the aggregate of all attempts back onto the transaction row.
//
// Posting failures are isolated per item: one failed policy posting never
// aborts the remaining ones, and the aggregate records each outcome by
// position.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/roseate/go-payments-backend/internal/domain"
	"github.com/roseate/go-payments-backend/internal/hotel"
	"github.com/roseate/go-payments-backend/internal/repo"
)

const (
	// paymentMethodCode is the PMS transaction code postings are booked under.
	paymentMethodCode = "RZ"

	// defaultFolioWindow receives deposit postings when the intent does not
	// target a specific window.
	defaultFolioWindow = "1"

	// adhocDescription marks an intent as a one-off deposit with no policy
	// schedule behind it.
	adhocDescription = "Adhoc payment"
)

// PMSPoster is the slice of the hotel client the engine needs. The concrete
// implementation is *hotel.Client.
type PMSPoster interface {
	PostDepositPayment(ctx context.Context, r hotel.DepositPaymentRequest) (json.RawMessage, error)
	PostFolioPayment(ctx context.Context, r hotel.FolioPaymentRequest) (json.RawMessage, error)
}

// PaymentIntent is the purchase context serialized into the payment link's
// notes at creation time and read back verbatim from the capture webhook. It
// is the only channel through which reconciliation learns what the guest paid
// for.
type PaymentIntent struct {
	HotelID       string  `json:"hotelId"`
	ReservationID string  `json:"reservationId"`
	Amount        float64 `json:"amount"`
	Type          string  `json:"type,omitempty"`
	PolicyIDs     string  `json:"policyIds,omitempty"`
	FolioIDs      string  `json:"folioIds,omitempty"`
	Description   string  `json:"description,omitempty"`
}

// PostingStrategy names how a captured payment is applied inside the PMS.
type PostingStrategy string

const (
	// StrategyDepositByPolicy posts one deposit per policy schedule id.
	StrategyDepositByPolicy PostingStrategy = "deposit_by_policy"
	// StrategyAdhocDeposit posts a single deposit with no policy reference.
	StrategyAdhocDeposit PostingStrategy = "adhoc_deposit"
	// StrategyPerFolio posts one payment per folio window.
	StrategyPerFolio PostingStrategy = "per_folio"
	// StrategyUnknown means the intent could not be classified; nothing is
	// posted and the aggregate records why.
	StrategyUnknown PostingStrategy = "unknown"
)

// classifyIntent maps a parsed intent to its posting strategy and the list of
// items to post, in the order given. Precedence: deposit-with-policies first,
// then adhoc, then folios.
func classifyIntent(intent PaymentIntent) (PostingStrategy, []string) {
	policies := splitIDs(intent.PolicyIDs)
	if intent.Type == "deposit" && len(policies) > 0 {
		return StrategyDepositByPolicy, policies
	}
	if intent.Description == adhocDescription {
		return StrategyAdhocDeposit, []string{""}
	}
	if folios := splitIDs(intent.FolioIDs); len(folios) > 0 {
		return StrategyPerFolio, folios
	}
	return StrategyUnknown, nil
}

// splitIDs parses a comma-separated id list, dropping empty segments.
func splitIDs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// postingRequest echoes the parameters of one PMS posting into the audit
// aggregate.
type postingRequest struct {
	HotelID       string  `json:"hotelId"`
	ReservationID string  `json:"reservationId"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	PaymentMethod string  `json:"paymentMethod"`
	FolioWindowNo string  `json:"folioWindowNo"`
	PolicyID      string  `json:"policyId,omitempty"`
	Comment       string  `json:"comment"`
}

// PostingAttempt records the outcome of one downstream posting.
type PostingAttempt struct {
	Strategy  PostingStrategy `json:"strategy"`
	ItemID    string          `json:"item_id,omitempty"`
	Request   postingRequest  `json:"request"`
	Response  json.RawMessage `json:"response,omitempty"`
	Error     string          `json:"error,omitempty"`
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
}

// ReconciliationResult is the aggregate serialized onto the transaction row.
// Attempts are ordered by item position, not completion time.
type ReconciliationResult struct {
	Strategy    PostingStrategy  `json:"strategy"`
	Error       string           `json:"error,omitempty"`
	Attempts    []PostingAttempt `json:"attempts,omitempty"`
	CompletedAt time.Time        `json:"completed_at"`
}

// CapturedPayment is the flattened payment.captured event the engine works
// from. Amount is in major currency units; RawBody is the webhook body as
// received, kept for audit.
type CapturedPayment struct {
	PaymentID string
	LinkID    string
	OrderID   string
	Amount    float64
	Currency  string
	Method    string
	Email     string
	Contact   string
	NotesInfo string
	RawBody   []byte
}

// ReconcileService posts captured payments into the PMS and records the
// outcome on the transaction history.
type ReconcileService struct {
	DB  *gorm.DB
	PMS PMSPoster

	// Parallelism bounds concurrent postings per capture. Values below 1
	// behave as 1, which preserves strict item order.
	Parallelism int
}

// Reconcile records the capture and applies it to the reservation. The
// transaction row is written before any posting is attempted; posting
// failures are captured in the aggregate and never returned as errors. Only a
// failure to persist the transaction itself is an error.
func (s *ReconcileService) Reconcile(ctx context.Context, p CapturedPayment) (*ReconciliationResult, error) {
	tr := otel.Tracer("services/ReconcileService")
	ctx, span := tr.Start(ctx, "Reconcile",
		trace.WithAttributes(attribute.String("payment.id", p.PaymentID)),
	)
	defer span.End()

	if err := s.ensureTransaction(ctx, p); err != nil {
		return nil, fmt.Errorf("record captured transaction: %w", err)
	}

	result := s.run(ctx, p)

	aggregate, err := json.Marshal(result)
	if err == nil {
		err = repo.UpdateTransactionReconciliation(ctx, s.DB, p.PaymentID, datatypes.JSON(aggregate))
	}
	if err != nil {
		// The postings already happened; losing the aggregate is an audit
		// gap, not a reason to make the gateway redeliver.
		log.Error().Err(err).Str("payment_id", p.PaymentID).
			Msg("failed to persist reconciliation aggregate")
	}
	return result, nil
}

// ensureTransaction inserts the captured transaction unless an earlier event
// (payment_link.paid) already recorded this payment.
func (s *ReconcileService) ensureTransaction(ctx context.Context, p CapturedPayment) error {
	_, err := repo.FindTransactionByPaymentID(ctx, s.DB, p.PaymentID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	return repo.CreateTransaction(ctx, s.DB, &domain.Transaction{
		PaymentLinkID:  p.LinkID,
		PaymentID:      p.PaymentID,
		OrderID:        p.OrderID,
		Amount:         p.Amount,
		Currency:       p.Currency,
		Status:         domain.TransactionStatusCaptured,
		Method:         p.Method,
		Email:          p.Email,
		Contact:        p.Contact,
		WebhookPayload: datatypes.JSON(p.RawBody),
	})
}

// run parses and classifies the intent and fans out the postings.
func (s *ReconcileService) run(ctx context.Context, p CapturedPayment) *ReconciliationResult {
	result := &ReconciliationResult{Strategy: StrategyUnknown}
	defer func() { result.CompletedAt = time.Now().UTC() }()

	var intent PaymentIntent
	if p.NotesInfo == "" {
		result.Error = "payment carries no reconciliation notes"
		return result
	}
	if err := json.Unmarshal([]byte(p.NotesInfo), &intent); err != nil {
		result.Error = fmt.Sprintf("parse payment intent: %v", err)
		return result
	}

	strategy, items := classifyIntent(intent)
	result.Strategy = strategy
	if strategy == StrategyUnknown {
		result.Error = fmt.Sprintf(
			"unclassifiable payment intent: type=%q description=%q", intent.Type, intent.Description)
		return result
	}

	// The intent amount is what the link was issued for; fall back to the
	// captured amount when absent.
	amount := intent.Amount
	if amount <= 0 {
		amount = p.Amount
	}

	limit := s.Parallelism
	if limit < 1 {
		limit = 1
	}

	// Attempts land at their item's index so the aggregate order is stable
	// regardless of completion order.
	attempts := make([]PostingAttempt, len(items))
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			attempts[i] = s.post(ctx, strategy, item, intent, amount, p.Currency, p.PaymentID)
			return nil
		})
	}
	_ = g.Wait() // per-item failures live in the attempts, never here

	result.Attempts = attempts
	return result
}

// post performs one PMS posting and records its outcome.
func (s *ReconcileService) post(ctx context.Context, strategy PostingStrategy, itemID string, intent PaymentIntent, amount float64, currency, paymentID string) PostingAttempt {
	req := postingRequest{
		HotelID:       intent.HotelID,
		ReservationID: intent.ReservationID,
		Amount:        amount,
		Currency:      currency,
		PaymentMethod: paymentMethodCode,
		FolioWindowNo: defaultFolioWindow,
		Comment:       paymentID,
	}

	var (
		resp json.RawMessage
		err  error
	)
	switch strategy {
	case StrategyDepositByPolicy, StrategyAdhocDeposit:
		req.PolicyID = itemID
		resp, err = s.PMS.PostDepositPayment(ctx, hotel.DepositPaymentRequest{
			HotelID:         intent.HotelID,
			ReservationID:   intent.ReservationID,
			Amount:          amount,
			Currency:        currency,
			PaymentMethod:   paymentMethodCode,
			FolioWindowNo:   defaultFolioWindow,
			DepositPolicyID: itemID,
			Comment:         paymentID,
		})
	case StrategyPerFolio:
		req.FolioWindowNo = itemID
		resp, err = s.PMS.PostFolioPayment(ctx, hotel.FolioPaymentRequest{
			HotelID:       intent.HotelID,
			ReservationID: intent.ReservationID,
			Amount:        amount,
			Currency:      currency,
			PaymentMethod: paymentMethodCode,
			FolioWindowNo: itemID,
			Comment:       paymentID,
		})
	}

	att := PostingAttempt{
		Strategy:  strategy,
		ItemID:    itemID,
		Request:   req,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		att.Status = "failed"
		att.Error = err.Error()
		postingAttemptsTotal.WithLabelValues(string(strategy), "failed").Inc()
		log.Warn().Err(err).
			Str("payment_id", paymentID).
			Str("strategy", string(strategy)).
			Str("item_id", itemID).
			Msg("pms posting failed")
		return att
	}
	att.Status = "success"
	att.Response = resp
	postingAttemptsTotal.WithLabelValues(string(strategy), "success").Inc()
	return att
}
