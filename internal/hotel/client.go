// Package hotel – Client
//
// This file implements the stateless request wrapper over the PMS REST API.
// Every call obtains a token from the TokenSource, attaches the hotel-scope
// headers, and issues a fresh network round-trip — reservation data is never
// cached here.
//
// Error mapping: a 401 clears the cached token and surfaces
// ErrAuthentication without retrying (the caller decides); any other failure
// becomes an *UpstreamError carrying the upstream detail/title message.
package hotel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roseate/go-payments-backend/internal/config"
)

// Client issues authenticated, hotel-scoped requests against the PMS.
// It is safe for concurrent use.
type Client struct {
	cfg    config.HotelConfig
	tokens *TokenSource
	http   *http.Client
}

// NewClient constructs a Client sharing the given TokenSource. A nil HTTP
// client falls back to a default with a 30s timeout.
func NewClient(cfg config.HotelConfig, tokens *TokenSource, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, tokens: tokens, http: client}
}

// apiError is the error body shape the PMS returns (RFC 7807 style).
type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// do performs one authenticated request and returns the raw response body.
func (c *Client) do(ctx context.Context, method, rawURL, hotelID string, payload any) (json.RawMessage, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("hotel api: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("hotel api: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-hotelid", hotelID)
	req.Header.Set("x-app-key", c.cfg.AppKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Token might be stale or revoked; force a fresh login next time.
		c.tokens.Clear()
		return nil, fmt.Errorf("hotel api: %w", ErrAuthentication)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		_ = json.Unmarshal(raw, &ae)
		msg := ae.Detail
		if msg == "" {
			msg = ae.Title
		}
		if msg == "" {
			msg = "request failed"
		}
		return nil, &UpstreamError{Status: resp.StatusCode, Message: msg}
	}
	return json.RawMessage(raw), nil
}

// GetReservation fetches reservation details for a hotel/reservation pair.
func (c *Client) GetReservation(ctx context.Context, hotelID, reservationID string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/rsv/v1/hotels/%s/reservations/%s?fetchInstructions=Reservation",
		c.cfg.BaseURL, url.PathEscape(hotelID), url.PathEscape(reservationID))
	return c.do(ctx, http.MethodGet, u, hotelID, nil)
}

// GetDepositFolio fetches the deposit folio with projected revenue.
func (c *Client) GetDepositFolio(ctx context.Context, hotelID, reservationID string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/csh/v1/hotels/%s/depositFolio?id=%s&fetchInstructions=ProjectedRevenue",
		c.cfg.BaseURL, url.PathEscape(hotelID), url.QueryEscape(reservationID))
	return c.do(ctx, http.MethodGet, u, hotelID, nil)
}

// GetCheckoutFolio fetches the checkout folio with postings and balances.
func (c *Client) GetCheckoutFolio(ctx context.Context, hotelID, reservationID string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/csh/v1/hotels/%s/reservations/%s/folios"+
		"?folioWindowNo=1&limit=50&fetchInstructions=Postings&fetchInstructions=Totalbalance"+
		"&fetchInstructions=Transactioncodes&fetchInstructions=Windowbalances",
		c.cfg.BaseURL, url.PathEscape(hotelID), url.PathEscape(reservationID))
	return c.do(ctx, http.MethodGet, u, hotelID, nil)
}

// CompleteReservation bundles the reservation document with its deposit folio.
type CompleteReservation struct {
	Reservation  json.RawMessage `json:"reservation"`
	DepositFolio json.RawMessage `json:"depositFolio"`
}

// GetCompleteReservation fetches the reservation and its deposit folio in
// parallel and returns both.
func (c *Client) GetCompleteReservation(ctx context.Context, hotelID, reservationID string) (*CompleteReservation, error) {
	var out CompleteReservation
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := c.GetReservation(gctx, hotelID, reservationID)
		out.Reservation = r
		return err
	})
	g.Go(func() error {
		f, err := c.GetDepositFolio(gctx, hotelID, reservationID)
		out.DepositFolio = f
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReservationValidation is the outcome of a reservation status check.
type ReservationValidation struct {
	Valid   bool   `json:"valid"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// reservationDoc mirrors the slice of the reservation response we inspect.
type reservationDoc struct {
	Reservations struct {
		Reservation []struct {
			ReservationStatus string `json:"reservationStatus"`
		} `json:"reservation"`
	} `json:"reservations"`
}

// ValidateReservation fetches a reservation and reports whether it can take
// payments (exists and is not cancelled).
func (c *Client) ValidateReservation(ctx context.Context, hotelID, reservationID string) (*ReservationValidation, error) {
	raw, err := c.GetReservation(ctx, hotelID, reservationID)
	if err != nil {
		return nil, err
	}
	var doc reservationDoc
	if err := json.Unmarshal(raw, &doc); err != nil || len(doc.Reservations.Reservation) == 0 {
		return &ReservationValidation{Valid: false, Message: "Reservation not found"}, nil
	}
	status := doc.Reservations.Reservation[0].ReservationStatus
	if status == "Cancel" || status == "Cancelled" {
		return &ReservationValidation{Valid: false, Status: status, Message: "This reservation has been cancelled"}, nil
	}
	return &ReservationValidation{Valid: true, Status: status}, nil
}

// idRef identifies a PMS entity by type and id.
type idRef struct {
	Type      string `json:"type,omitempty"`
	ID        string `json:"id"`
	IDContext string `json:"idContext,omitempty"`
}

// moneyAmount is a posting amount with its currency code.
type moneyAmount struct {
	Amount       float64 `json:"amount"`
	CurrencyCode string  `json:"currencyCode"`
}

// paymentMethodRef selects the payment method and folio view for a posting.
type paymentMethodRef struct {
	PaymentMethod string `json:"paymentMethod"`
	FolioView     string `json:"folioView,omitempty"`
}

// DepositPaymentRequest describes one deposit posting against a reservation.
// DepositPolicyID is optional; when empty the PMS applies its default policy.
type DepositPaymentRequest struct {
	HotelID         string
	ReservationID   string
	Amount          float64
	Currency        string
	PaymentMethod   string
	FolioWindowNo   string
	DepositPolicyID string
	Comment         string
}

// depositPaymentCriteria is the wire shape of a deposit posting.
type depositPaymentCriteria struct {
	Criteria struct {
		ReservationID                 idRef             `json:"reservationId"`
		GuaranteeCode                 string            `json:"guaranteeCode"`
		DepositPolicyID               *idRef            `json:"depositPolicyId,omitempty"`
		UpdateReservationPaymentMeth  bool              `json:"updateReservationPaymentMethod"`
		HotelID                       string            `json:"hotelId"`
		PaymentMethod                 paymentMethodRef  `json:"paymentMethod"`
		PostingReference              string            `json:"postingReference"`
		PostingAmount                 moneyAmount       `json:"postingAmount"`
		Comments                      string            `json:"comments"`
		ApplyCCSurcharge              bool              `json:"applyCCSurcharge"`
		OverrideInsufficientCC        bool              `json:"overrideInsufficientCC"`
		OverrideARCreditLimit         bool              `json:"overrideARCreditLimit"`
		CashierID                     string            `json:"cashierId"`
		FolioWindowNo                 string            `json:"folioWindowNo"`
	} `json:"criteria"`
}

// PostDepositPayment posts a guarantee/advance deposit payment against the
// reservation's deposit folio.
func (c *Client) PostDepositPayment(ctx context.Context, r DepositPaymentRequest) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/csh/v1/hotels/%s/reservations/%s/depositPayments",
		c.cfg.BaseURL, url.PathEscape(r.HotelID), url.PathEscape(r.ReservationID))

	var p depositPaymentCriteria
	cr := &p.Criteria
	cr.ReservationID = idRef{Type: "Reservation", ID: r.ReservationID}
	cr.GuaranteeCode = "GDP"
	if r.DepositPolicyID != "" {
		cr.DepositPolicyID = &idRef{Type: "PolicyScheduleId", ID: r.DepositPolicyID}
	}
	cr.HotelID = r.HotelID
	cr.PaymentMethod = paymentMethodRef{PaymentMethod: r.PaymentMethod, FolioView: r.FolioWindowNo}
	cr.PostingReference = "TransactionId"
	cr.PostingAmount = moneyAmount{Amount: r.Amount, CurrencyCode: r.Currency}
	cr.Comments = r.Comment
	cr.CashierID = c.cfg.CashierID
	cr.FolioWindowNo = r.FolioWindowNo

	return c.do(ctx, http.MethodPost, u, r.HotelID, p)
}

// FolioPaymentRequest describes one payment posting against a folio window.
type FolioPaymentRequest struct {
	HotelID       string
	ReservationID string
	Amount        float64
	Currency      string
	PaymentMethod string
	FolioWindowNo string
	Comment       string
}

// folioPaymentCriteria is the wire shape of a folio payment posting.
type folioPaymentCriteria struct {
	Criteria struct {
		OverrideInsufficientCC bool             `json:"overrideInsufficientCC"`
		ApplyCCSurcharge       bool             `json:"applyCCSurcharge"`
		VATOffset              bool             `json:"vATOffset"`
		ReservationID          idRef            `json:"reservationId"`
		PaymentMethod          paymentMethodRef `json:"paymentMethod"`
		PostingReference       string           `json:"postingReference"`
		PostingAmount          moneyAmount      `json:"postingAmount"`
		CashierID              string           `json:"cashierId"`
		HotelID                string           `json:"hotelId"`
		FolioWindowNo          string           `json:"folioWindowNo"`
		OverrideARCreditLimit  bool             `json:"overrideARCreditLimit"`
	} `json:"criteria"`
}

// PostFolioPayment posts a payment against the given folio window of a
// checked-in reservation.
func (c *Client) PostFolioPayment(ctx context.Context, r FolioPaymentRequest) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/csh/v1/hotels/%s/reservations/%s/payments",
		c.cfg.BaseURL, url.PathEscape(r.HotelID), url.PathEscape(r.ReservationID))

	var p folioPaymentCriteria
	cr := &p.Criteria
	cr.ReservationID = idRef{Type: "Reservation", ID: r.ReservationID, IDContext: "OPERA"}
	cr.PaymentMethod = paymentMethodRef{PaymentMethod: r.PaymentMethod}
	cr.PostingReference = r.Comment
	cr.PostingAmount = moneyAmount{Amount: r.Amount, CurrencyCode: r.Currency}
	cr.CashierID = c.cfg.CashierID
	cr.HotelID = r.HotelID
	cr.FolioWindowNo = r.FolioWindowNo

	return c.do(ctx, http.MethodPost, u, r.HotelID, p)
}
